package scraper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, Code(""), CodeOf(nil))
	require.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	require.Equal(t, CodePermissionDenied, CodeOf(NewError(CodePermissionDenied, "nope", nil)))

	wrapped := fmt.Errorf("outer: %w", NewError(CodeFetchFailed, "boom", errors.New("conn refused")))
	require.Equal(t, CodeFetchFailed, CodeOf(wrapped))
}

func TestMessageOf_HidesUnclassifiedDetail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "internal error", MessageOf(errors.New("dsn=secret")))
	require.Equal(t, "boom", MessageOf(NewError(CodeInternal, "boom", errors.New("detail"))))
}

func TestStorageError_CarriesReason(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewStorageError(StorageUnavailable, cause)
	require.ErrorIs(t, err, cause)

	reason, ok := StorageReasonOf(fmt.Errorf("upsert: %w", err))
	require.True(t, ok)
	require.Equal(t, StorageUnavailable, reason)

	_, ok = StorageReasonOf(errors.New("plain"))
	require.False(t, ok)
}
