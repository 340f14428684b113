package errors

import (
	"net/url"
	"unicode"
)

// MaxSpecBytes is the maximum accepted size of a raw specification.
// Specifications larger than this are rejected before parsing to protect
// the normalizer (and the HTTP API) from pathological inputs.
const MaxSpecBytes = 10 << 20 // 10 MiB

// ValidateSpecText validates a raw specification blob before parsing.
//
// The validation rules are intentionally conservative:
//   - No empty input
//   - No null bytes (never valid in JSON/HJSON text)
//   - Maximum size of [MaxSpecBytes]
//
// Syntax validation is done separately by the HJSON parser.
func ValidateSpecText(data []byte) error {
	if len(data) == 0 {
		return New(ErrCodeInvalidSpec, "specification cannot be empty")
	}
	if len(data) > MaxSpecBytes {
		return New(ErrCodeInvalidSpec, "specification too large (max %d bytes)", MaxSpecBytes)
	}
	for _, b := range data {
		if b == 0 {
			return New(ErrCodeInvalidSpec, "specification contains null bytes")
		}
	}
	return nil
}

// ValidateFetchURL validates a URL before a data loader fetches it.
// Only absolute http/https URLs with a host are accepted; anything else
// (file://, relative paths, embedded credentials) is rejected.
func ValidateFetchURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidParameter, "url cannot be empty")
	}
	for _, r := range raw {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidParameter, "url contains invalid control characters")
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidParameter, err, "invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidParameter, "unsupported url scheme %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidParameter, "url %q has no host", raw)
	}
	if u.User != nil {
		return New(ErrCodeInvalidParameter, "url must not contain credentials")
	}
	return nil
}
