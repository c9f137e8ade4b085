package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore(DefaultTTL)
	s.now = time.Now()
	s.store.now = func() time.Time { return s.now }
}

func (s *MemoryStoreSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

func (s *MemoryStoreSuite) TestPutGet() {
	ctx := context.Background()

	s.Run("get returns the stored code", func() {
		s.Require().NoError(s.store.Put(ctx, "a@x.com", "123456"))
		code, err := s.store.Get(ctx, "a@x.com")
		s.Require().NoError(err)
		s.Equal("123456", code)
	})

	s.Run("put replaces any previous code", func() {
		s.Require().NoError(s.store.Put(ctx, "a@x.com", "111111"))
		s.Require().NoError(s.store.Put(ctx, "a@x.com", "222222"))
		code, err := s.store.Get(ctx, "a@x.com")
		s.Require().NoError(err)
		s.Equal("222222", code)
	})

	s.Run("get on unknown identifier returns ErrNotFound", func() {
		_, err := s.store.Get(ctx, "nobody@x.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "a@x.com", "123456"))

	s.advance(DefaultTTL + time.Second)

	_, err := s.store.Get(ctx, "a@x.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	ok, err := s.store.ConsumeIfMatch(ctx, "a@x.com", "123456")
	s.Require().NoError(err)
	s.False(ok, "expired code must not verify")
}

func (s *MemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "a@x.com", "123456"))
	s.Require().NoError(s.store.Delete(ctx, "a@x.com"))

	_, err := s.store.Get(ctx, "a@x.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Idempotent on absent entries.
	s.Require().NoError(s.store.Delete(ctx, "a@x.com"))
}

func (s *MemoryStoreSuite) TestConsumeIfMatch() {
	ctx := context.Background()

	s.Run("consumes a matching code exactly once", func() {
		s.Require().NoError(s.store.Put(ctx, "a@x.com", "123456"))

		ok, err := s.store.ConsumeIfMatch(ctx, "a@x.com", "123456")
		s.Require().NoError(err)
		s.True(ok)

		ok, err = s.store.ConsumeIfMatch(ctx, "a@x.com", "123456")
		s.Require().NoError(err)
		s.False(ok, "a consumed code must not verify again")
	})

	s.Run("leaves a mismatched code in place", func() {
		s.Require().NoError(s.store.Put(ctx, "b@x.com", "654321"))

		ok, err := s.store.ConsumeIfMatch(ctx, "b@x.com", "000000")
		s.Require().NoError(err)
		s.False(ok)

		code, err := s.store.Get(ctx, "b@x.com")
		s.Require().NoError(err)
		s.Equal("654321", code)
	})
}

func (s *MemoryStoreSuite) TestReserveResend() {
	ctx := context.Background()

	ok, err := s.store.ReserveResend(ctx, "a@x.com", time.Minute)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.ReserveResend(ctx, "a@x.com", time.Minute)
	s.Require().NoError(err)
	s.False(ok, "second reservation inside the window must be rejected")

	s.advance(time.Minute + time.Second)

	ok, err = s.store.ReserveResend(ctx, "a@x.com", time.Minute)
	s.Require().NoError(err)
	s.True(ok, "reservation after the window must succeed")
}
