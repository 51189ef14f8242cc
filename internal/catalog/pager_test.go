package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errPagerMiss = errors.New("key missing")

type memoryPagerStore struct {
	data map[string]string
}

func newPagerMemStore() *memoryPagerStore {
	return &memoryPagerStore{data: map[string]string{}}
}

func (s *memoryPagerStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.data[key] = value.(string)
	return nil
}

func (s *memoryPagerStore) Get(_ context.Context, key string) (string, error) {
	if value, ok := s.data[key]; ok {
		return value, nil
	}
	return "", errPagerMiss
}

func (s *memoryPagerStore) CacheKey(scope, id string) string {
	return strings.Join([]string{"store", "cache", scope, id}, ":")
}

func newPagerPrefs(store *memoryPagerStore) *PagerPrefs {
	return NewPagerPrefs(store, func(err error) bool { return errors.Is(err, errPagerMiss) })
}

func TestPagerPrefs_RememberAndLookup(t *testing.T) {
	prefs := newPagerPrefs(newPagerMemStore())
	ctx := context.Background()

	size, err := prefs.Remember(ctx, "session-a", 48)
	require.NoError(t, err)
	require.Equal(t, 48, size)
	require.Equal(t, 48, prefs.Lookup(ctx, "session-a", 24))
}

func TestPagerPrefs_Clamps(t *testing.T) {
	prefs := newPagerPrefs(newPagerMemStore())
	ctx := context.Background()

	size, err := prefs.Remember(ctx, "s", 1)
	require.NoError(t, err)
	require.Equal(t, pagerMinSize, size)

	size, err = prefs.Remember(ctx, "s", 10000)
	require.NoError(t, err)
	require.Equal(t, pagerMaxSize, size)
}

func TestPagerPrefs_LookupFallsBack(t *testing.T) {
	store := newPagerMemStore()
	prefs := newPagerPrefs(store)
	ctx := context.Background()

	require.Equal(t, 24, prefs.Lookup(ctx, "unknown", 24))

	store.data[store.CacheKey(pagerScope, "garbled")] = "not-a-number"
	require.Equal(t, 24, prefs.Lookup(ctx, "garbled", 24))
}
