package participant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/pkg/platform/sentinel"
)

const (
	tableKey  = "participants:table"
	emailsKey = "participants:emails"
	nextIDKey = "participants:next_id"
)

// RedisStore keeps all participant records as JSON fields of a single hash,
// with a companion hash mapping email to id for uniqueness and lookup.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, p Participant) (Participant, error) {
	id, err := s.client.Incr(ctx, nextIDKey).Result()
	if err != nil {
		return Participant{}, fmt.Errorf("next participant id: %w: %w", sentinel.ErrUnavailable, err)
	}

	// Claim the email before writing the record. A lost race burns the id,
	// which keeps the counter monotonic and the ids unique.
	claimed, err := s.client.HSetNX(ctx, emailsKey, p.Email, id).Result()
	if err != nil {
		return Participant{}, fmt.Errorf("claim email: %w: %w", sentinel.ErrUnavailable, err)
	}
	if !claimed {
		return Participant{}, fmt.Errorf("email %q already registered: %w", p.Email, sentinel.ErrConflict)
	}

	p.ID = id
	p.Confirmed = false
	p.CreatedAt = time.Now().UTC()

	raw, err := json.Marshal(p)
	if err != nil {
		return Participant{}, fmt.Errorf("marshal participant: %w", err)
	}
	if err := s.client.HSet(ctx, tableKey, strconv.FormatInt(id, 10), raw).Err(); err != nil {
		return Participant{}, fmt.Errorf("store participant: %w: %w", sentinel.ErrUnavailable, err)
	}
	return p, nil
}

func (s *RedisStore) GetByID(ctx context.Context, id int64) (Participant, error) {
	raw, err := s.client.HGet(ctx, tableKey, strconv.FormatInt(id, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return Participant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Participant{}, fmt.Errorf("fetch participant: %w: %w", sentinel.ErrUnavailable, err)
	}
	var p Participant
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Participant{}, fmt.Errorf("unmarshal participant %d: %w", id, err)
	}
	return p, nil
}

func (s *RedisStore) GetByEmail(ctx context.Context, email string) (Participant, error) {
	idField, err := s.client.HGet(ctx, emailsKey, email).Result()
	if errors.Is(err, redis.Nil) {
		return Participant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Participant{}, fmt.Errorf("resolve email: %w: %w", sentinel.ErrUnavailable, err)
	}
	id, err := strconv.ParseInt(idField, 10, 64)
	if err != nil {
		return Participant{}, fmt.Errorf("corrupt email index entry %q: %w", idField, err)
	}
	return s.GetByID(ctx, id)
}

func (s *RedisStore) GetAll(ctx context.Context) ([]Participant, error) {
	fields, err := s.client.HGetAll(ctx, tableKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list participants: %w: %w", sentinel.ErrUnavailable, err)
	}
	participants := make([]Participant, 0, len(fields))
	for field, raw := range fields {
		var p Participant
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("unmarshal participant %s: %w", field, err)
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func (s *RedisStore) Delete(ctx context.Context, id int64) (bool, error) {
	p, err := s.GetByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// The record and its email index entry go in one transaction so a
	// half-applied delete cannot leave the address claimed by a dead id.
	pipe := s.client.TxPipeline()
	removed := pipe.HDel(ctx, tableKey, strconv.FormatInt(id, 10))
	pipe.HDel(ctx, emailsKey, p.Email)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete participant: %w: %w", sentinel.ErrUnavailable, err)
	}
	return removed.Val() > 0, nil
}

func (s *RedisStore) SetConfirmed(ctx context.Context, id int64) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Confirmed = true
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}
	if err := s.client.HSet(ctx, tableKey, strconv.FormatInt(id, 10), raw).Err(); err != nil {
		return fmt.Errorf("store participant: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
