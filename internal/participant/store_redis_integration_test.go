//go:build integration

package participant_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/participant"
	"rollcall/pkg/platform/sentinel"
	"rollcall/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *participant.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = participant.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

// TestConcurrentCreateUniqueEmail verifies that only one of many concurrent
// registrations with the same email wins the claim.
func (s *RedisStoreSuite) TestConcurrentCreateUniqueEmail() {
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Create(ctx, participant.Participant{Email: "racer@x.com"})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should win the email")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "remaining creates should conflict")
}

// TestConcurrentCreateDistinctIDs verifies id uniqueness under parallel load.
func (s *RedisStoreSuite) TestConcurrentCreateDistinctIDs() {
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	ids := make(chan int64, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			created, err := s.store.Create(ctx, participant.Participant{
				Email: string(rune('a'+n)) + "@x.com",
			})
			if err == nil {
				ids <- created.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		s.False(seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	s.Len(seen, goroutines)
}
