// Package resolver expands abbreviated identifiers. Full IDs are 36-char
// UUID strings; an 8-character case-sensitive prefix is accepted anywhere a
// full ID is, provided it denotes exactly one record in its namespace.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortIDLength is the abbreviated identifier length handed out for display.
const ShortIDLength = 8

// ErrNotFound reports a prefix matching no ID in the namespace.
var ErrNotFound = errors.New("resolver: no matching id")

// AmbiguousError reports a prefix matching more than one ID. It carries the
// candidates so the caller can disambiguate; collapsing this into NotFound
// would lose exactly the information the caller needs.
type AmbiguousError struct {
	Prefix     string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("resolver: %q is ambiguous (%s)", e.Prefix, strings.Join(e.Candidates, ", "))
}

// Source is one ID namespace (files, attachments, or a single entity
// type's records).
type Source interface {
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, prefix string) ([]string, error)

func (f SourceFunc) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return f(ctx, prefix)
}

// IsFullID reports whether candidate already has full-ID shape. Full IDs
// pass through Resolve without a lookup.
func IsFullID(candidate string) bool {
	if len(candidate) != 36 {
		return false
	}
	_, err := uuid.Parse(candidate)
	return err == nil
}

// IsShortID reports whether candidate has abbreviated-ID shape: exactly
// ShortIDLength lower-case hex digits, the first block of a textual UUID.
func IsShortID(candidate string) bool {
	if len(candidate) != ShortIDLength {
		return false
	}
	for _, r := range candidate {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// Resolve expands candidate to the unique full ID it denotes. A full-shaped
// candidate is returned unchanged; anything else is treated as a
// case-sensitive prefix. Uniqueness is judged at the instant of the lookup;
// no stronger guarantee is made against concurrent ID creation.
func Resolve(ctx context.Context, candidate string, src Source) (string, error) {
	if IsFullID(candidate) {
		return candidate, nil
	}
	matches, err := src.IDsWithPrefix(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", candidate, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrNotFound, candidate)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Prefix: candidate, Candidates: matches}
	}
}
