package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "doccheck/pkg/platform/audit"
)

func event(name string) audit.Event {
	return audit.Event{Action: audit.ActionTextValidated, DocumentName: name}
}

func names(events []audit.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.DocumentName)
	}
	return out
}

func TestListRecentIsNewestFirst(t *testing.T) {
	store := NewInMemoryStore(10)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, event(name)))
	}

	all, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names(all))

	two, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, names(two))
}

func TestOldestEventsAreOverwritten(t *testing.T) {
	store := NewInMemoryStore(3)
	ctx := context.Background()
	for i := range 5 {
		require.NoError(t, store.Append(ctx, event(fmt.Sprintf("doc-%d", i))))
	}

	got, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-4", "doc-3", "doc-2"}, names(got))
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, int64(2), store.Dropped())
}

func TestClear(t *testing.T) {
	store := NewInMemoryStore(3)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, event("a")))

	store.Clear()

	got, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
