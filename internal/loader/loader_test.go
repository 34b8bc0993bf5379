package loader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"riptide/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_CoalescesOneBatch(t *testing.T) {
	ctx := context.Background()

	var calls int
	var seenKeys []uint
	l := New("users", func(_ context.Context, keys []uint) (map[uint]*models.User, error) {
		calls++
		seenKeys = keys
		out := make(map[uint]*models.User, len(keys))
		for _, k := range keys {
			out[k] = &models.User{ID: k, Username: "u"}
		}
		return out, nil
	})

	t1 := l.Load(ctx, 1)
	t2 := l.Load(ctx, 2)
	t3 := l.Load(ctx, 3)

	u1, err := t1()
	require.NoError(t, err)
	assert.Equal(t, uint(1), u1.ID)

	u2, err := t2()
	require.NoError(t, err)
	assert.Equal(t, uint(2), u2.ID)

	u3, err := t3()
	require.NoError(t, err)
	assert.Equal(t, uint(3), u3.ID)

	assert.Equal(t, 1, calls, "all three keys must resolve through one fetch")
	assert.ElementsMatch(t, []uint{1, 2, 3}, seenKeys)
}

func TestLoader_DeduplicatesKeys(t *testing.T) {
	ctx := context.Background()

	var calls int
	var batchLen int
	l := New("users", func(_ context.Context, keys []uint) (map[uint]*models.User, error) {
		calls++
		batchLen = len(keys)
		return map[uint]*models.User{7: {ID: 7, Username: "dup"}}, nil
	})

	a := l.Load(ctx, 7)
	b := l.Load(ctx, 7)

	ua, err := a()
	require.NoError(t, err)
	ub, err := b()
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, batchLen, "duplicate key must occupy one batch slot")
	assert.Same(t, ua, ub, "both callers see the identical result")
}

func TestLoader_CachesAcrossFlushes(t *testing.T) {
	ctx := context.Background()

	var calls int
	l := New("users", func(_ context.Context, keys []uint) (map[uint]*models.User, error) {
		calls++
		out := make(map[uint]*models.User, len(keys))
		for _, k := range keys {
			out[k] = &models.User{ID: k}
		}
		return out, nil
	})

	first, err := l.Load(ctx, 1)()
	require.NoError(t, err)

	// Already resolved: no new fetch, same value.
	again, err := l.Load(ctx, 1)()
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, calls)

	// A genuinely new key starts a second batch.
	_, err = l.Load(ctx, 2)()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoader_AbsentKeyResolvesNil(t *testing.T) {
	ctx := context.Background()

	l := New("votes", func(_ context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.Vote, error) {
		return map[models.VoteKey]*models.Vote{}, nil
	})

	v, err := l.Load(ctx, models.VoteKey{PostID: 1, UserID: 2})()
	assert.NoError(t, err)
	assert.Nil(t, v, "missing row is an absent value, not an error")
}

func TestLoader_BatchErrorFailsAllCallers(t *testing.T) {
	ctx := context.Background()

	fetchErr := errors.New("bulk select failed")
	l := New("users", func(_ context.Context, keys []uint) (map[uint]*models.User, error) {
		return nil, fetchErr
	})

	t1 := l.Load(ctx, 1)
	t2 := l.Load(ctx, 2)

	_, err1 := t1()
	_, err2 := t2()
	assert.ErrorIs(t, err1, fetchErr)
	assert.ErrorIs(t, err2, fetchErr)
}

func TestLoader_ConcurrentLoads(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	l := New("users", func(_ context.Context, keys []uint) (map[uint]*models.User, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		out := make(map[uint]*models.User, len(keys))
		for _, k := range keys {
			out[k] = &models.User{ID: k}
		}
		return out, nil
	})

	const n = 20
	thunks := make([]Thunk[*models.User], n)
	for i := 0; i < n; i++ {
		thunks[i] = l.Load(ctx, uint(i%5))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := thunks[i]()
			assert.NoError(t, err)
			assert.Equal(t, uint(i%5), u.ID)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
