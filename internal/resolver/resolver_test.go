package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource is an in-memory namespace for tests.
type memSource []string

func (m memSource) IDsWithPrefix(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, id := range m {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out, nil
}

func TestResolveFullIDPassthrough(t *testing.T) {
	full := uuid.NewString()

	// No lookup happens for a full-shaped ID: an empty namespace is fine.
	got, err := Resolve(context.Background(), full, memSource{})

	require.NoError(t, err)
	assert.Equal(t, full, got)
}

func TestResolveUniquePrefix(t *testing.T) {
	a := "11111111-aaaa-4bbb-8ccc-000000000001"
	b := "22222222-aaaa-4bbb-8ccc-000000000002"
	src := memSource{a, b}

	got, err := Resolve(context.Background(), "11111111", src)

	require.NoError(t, err)
	assert.Equal(t, a, got)

	// A unique prefix resolves to the same value as the full ID.
	full, err := Resolve(context.Background(), a, src)
	require.NoError(t, err)
	assert.Equal(t, got, full)
}

func TestResolveAmbiguous(t *testing.T) {
	a := "33333333-aaaa-4bbb-8ccc-000000000001"
	b := "33333333-aaaa-4bbb-8ccc-000000000002"

	_, err := Resolve(context.Background(), "33333333", memSource{a, b})

	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "33333333", ambiguous.Prefix)
	assert.ElementsMatch(t, []string{a, b}, ambiguous.Candidates)
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve(context.Background(), "deadbeef", memSource{uuid.NewString()})

	assert.ErrorIs(t, err, ErrNotFound)

	var ambiguous *AmbiguousError
	assert.False(t, errors.As(err, &ambiguous), "NotFound and Ambiguous must stay distinct")
}

func TestResolveSourceError(t *testing.T) {
	src := SourceFunc(func(context.Context, string) ([]string, error) {
		return nil, errors.New("db down")
	})

	_, err := Resolve(context.Background(), "deadbeef", src)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolveCaseSensitive(t *testing.T) {
	id := "abcdef12-aaaa-4bbb-8ccc-000000000001"

	_, err := Resolve(context.Background(), "ABCDEF12", memSource{id})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsFullID(t *testing.T) {
	assert.True(t, IsFullID(uuid.NewString()))
	assert.False(t, IsFullID("abcdef12"))
	assert.False(t, IsFullID(""))
	assert.False(t, IsFullID("not-a-uuid-but-36-characters-long!!!"))
}

func TestIsShortID(t *testing.T) {
	assert.True(t, IsShortID("abcdef12"))
	assert.True(t, IsShortID("00000000"))
	assert.False(t, IsShortID("ABCDEF12"))
	assert.False(t, IsShortID("abcdef1"))
	assert.False(t, IsShortID("abcdef123"))
	assert.False(t, IsShortID("abc/ef12"))
	assert.False(t, IsShortID("/some/path"))
}
