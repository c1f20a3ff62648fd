package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

const defaultCacheTTL = time.Minute

// CachedUserRepository is a read-through cache in front of a
// UserRepository. Only FindByID is cached; it is the lookup the
// authentication gate performs on every request. Redis failures degrade to
// the underlying repository.
//
// Every user has a generation counter that writes and deletes bump. A cached
// entry carries the generation observed before the repository read that
// produced it and is served only while that generation is current, so a
// read racing a write can never reinstate the old record.
//
// Keys: user:<id> holds the entry, user:<id>:gen the generation.
type CachedUserRepository struct {
	ports.UserRepository
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

// cachedUser mirrors domain.User including the credential hash, which
// domain.User hides from JSON.
type cachedUser struct {
	ID           uint        `json:"id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type cacheEntry struct {
	Gen  int64      `json:"gen"`
	User cachedUser `json:"user"`
}

func NewCachedUserRepository(inner ports.UserRepository, client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedUserRepository{UserRepository: inner, client: client, ttl: ttl, log: log}
}

func (c *CachedUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	gen, cached, ok := c.lookup(ctx, id)
	if cached != nil {
		return cached, nil
	}

	user, err := c.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.store(ctx, gen, user)
	}
	return user, nil
}

func (c *CachedUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	updated, err := c.UserRepository.Update(ctx, user)
	c.evict(ctx, user.ID)
	return updated, err
}

func (c *CachedUserRepository) Delete(ctx context.Context, id uint) error {
	err := c.UserRepository.Delete(ctx, id)
	c.evict(ctx, id)
	return err
}

// lookup reads the entry and the current generation in one round trip. It
// returns the user only when the entry belongs to the current generation.
// ok is false when Redis could not be read, in which case nothing may be
// stored.
func (c *CachedUserRepository) lookup(ctx context.Context, id uint) (gen int64, user *domain.User, ok bool) {
	vals, err := c.client.MGet(ctx, c.key(id), c.genKey(id)).Result()
	if err != nil || len(vals) != 2 {
		c.log.Warn().Err(err).Uint("user_id", id).Msg("user cache read failed")
		return 0, nil, false
	}

	if s, isStr := vals[1].(string); isStr {
		gen, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.log.Warn().Err(err).Uint("user_id", id).Msg("user cache generation unreadable")
			return 0, nil, false
		}
	}

	raw, isStr := vals[0].(string)
	if !isStr {
		return gen, nil, true
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.log.Warn().Uint("user_id", id).Msg("discarding undecodable cache entry")
		return gen, nil, true
	}
	if entry.Gen != gen {
		return gen, nil, true
	}
	u := domain.User(entry.User)
	return gen, &u, true
}

func (c *CachedUserRepository) store(ctx context.Context, gen int64, user *domain.User) {
	raw, err := json.Marshal(cacheEntry{Gen: gen, User: cachedUser(*user)})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(user.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Uint("user_id", user.ID).Msg("user cache write failed")
	}
}

// evict bumps the generation first so entries written by in-flight reads
// are already stale when they land.
func (c *CachedUserRepository) evict(ctx context.Context, id uint) {
	if err := c.client.Incr(ctx, c.genKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Uint("user_id", id).Msg("user cache generation bump failed")
	}
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.log.Warn().Err(err).Uint("user_id", id).Msg("user cache evict failed")
	}
}

func (c *CachedUserRepository) key(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (c *CachedUserRepository) genKey(id uint) string {
	return fmt.Sprintf("user:%d:gen", id)
}
