package service

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/hupe1980/kernelmesh/core"
)

// codecCache caches tokenizer codecs by encoding; building a codec is
// comparatively expensive.
var (
	codecMu    sync.RWMutex
	codecCache = map[tokenizer.Encoding]tokenizer.Codec{}
)

// EstimateUsage computes token usage for a prompt/completion pair with
// tiktoken. It is used when a provider does not report usage (streaming
// responses, mock services). Anthropic and unknown models are counted with
// the cl100k encoding, which is close enough for provenance metadata.
func EstimateUsage(model, prompt, completion string) *core.TokenUsage {
	codec := codecFor(model)
	usage := &core.TokenUsage{
		PromptTokens:     countTokens(codec, prompt),
		CompletionTokens: countTokens(codec, completion),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return usage
}

func codecFor(model string) tokenizer.Codec {
	encoding := tokenizer.Cl100kBase
	if strings.HasPrefix(strings.ToLower(model), "gpt-4o") || strings.HasPrefix(strings.ToLower(model), "gpt-5") {
		encoding = tokenizer.O200kBase
	}

	codecMu.RLock()
	cached, ok := codecCache[encoding]
	codecMu.RUnlock()
	if ok {
		return cached
	}

	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil
	}

	codecMu.Lock()
	codecCache[encoding] = codec
	codecMu.Unlock()

	return codec
}

// countTokens falls back to a crude len/4 heuristic when no codec is
// available, so usage estimation never fails an invocation.
func countTokens(codec tokenizer.Codec, text string) int {
	if text == "" {
		return 0
	}
	if codec == nil {
		return (len(text) + 3) / 4
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(ids)
}
