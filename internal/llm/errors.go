package llm

import (
	"errors"
	"strings"

	"github.com/gifia/fraud-intel/pkg/gemini"
)

// ErrorKind classifies a provider failure so callers dispatch on a typed
// result instead of matching error text themselves.
type ErrorKind int

const (
	// KindTransient covers timeouts, 5xx and malformed responses: safe to
	// try the next model or provider.
	KindTransient ErrorKind = iota
	// KindRateLimited means the provider reported quota or rate
	// exhaustion; remaining attempts against it are pointless.
	KindRateLimited
	// KindFatal covers auth and configuration failures.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindFatal:
		return "fatal"
	default:
		return "transient"
	}
}

// ProviderError wraps a provider failure with its classified kind.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// quotaTokens are the substrings the upstream services embed in quota and
// rate-limit error messages. Matching is confined to classifyGemini; the
// rest of the gateway sees only ErrorKind.
var quotaTokens = []string{"quota", "rate", "429", "exceeded", "limit"}

// classifyGemini maps a raw Gemini call error to an ErrorKind.
func classifyGemini(err error) ErrorKind {
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return KindRateLimited
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return KindFatal
		}
		if containsQuotaToken(apiErr.Body) {
			return KindRateLimited
		}
		return KindTransient
	}

	if containsQuotaToken(err.Error()) {
		return KindRateLimited
	}
	return KindTransient
}

func containsQuotaToken(msg string) bool {
	lower := strings.ToLower(msg)
	for _, tok := range quotaTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
