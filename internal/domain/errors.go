package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidReference is the parent of every reference parse failure.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrMalformedReference signals text that does not match the reference grammar.
	ErrMalformedReference = fmt.Errorf("%w: malformed", ErrInvalidReference)
	// ErrUnknownBook signals a syntactically valid reference with an unknown book token.
	ErrUnknownBook = fmt.Errorf("%w: unknown book", ErrInvalidReference)
	// ErrInvalidTranslation signals an unsupported translation code.
	ErrInvalidTranslation = errors.New("invalid translation")
	// ErrInvalidBookmark signals a bookmark that fails validation.
	ErrInvalidBookmark = errors.New("invalid bookmark")

	// ErrQuotaExceeded signals an exhausted daily AI quota.
	ErrQuotaExceeded = errors.New("daily ai quota exceeded")
	// ErrAIProviderError signals a completion provider failure.
	ErrAIProviderError = errors.New("ai provider error")
	// ErrUnauthorized signals a request without a usable user identity.
	ErrUnauthorized = errors.New("unauthorized")
)

// QuotaExceededError wraps ErrQuotaExceeded with the limit that was hit.
type QuotaExceededError struct {
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: used %d of %d", ErrQuotaExceeded.Error(), e.Used, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// NewQuotaExceeded creates a quota exceeded error.
func NewQuotaExceeded(limit, used int) error {
	return &QuotaExceededError{Limit: limit, Used: used}
}
