package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/catuns/go-jwt-security/token"
)

// DefaultRedisKeyPrefix prefixes the hash key of every user.
const DefaultRedisKeyPrefix = "jwtsecurity:user:"

const (
	fieldPasswordHash = "password_hash"
	fieldAuthorities  = "authorities"
	fieldDisabled     = "disabled"
)

// RedisStore is a UserStore keeping one Redis hash per user. Authorities are
// stored comma separated.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store using client. An empty prefix selects
// DefaultRedisKeyPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(identifier string) string {
	return s.prefix + identifier
}

// Put adds or replaces a user.
func (s *RedisStore) Put(ctx context.Context, u UserRecord) error {
	if u.Username == "" {
		return errors.New("username cannot be empty")
	}

	key := s.key(u.Username)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldPasswordHash, u.PasswordHash,
			fieldAuthorities, token.JoinAuthorities(u.Authorities),
			fieldDisabled, strconv.FormatBool(u.Disabled),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store user %q: %w", u.Username, err)
	}
	return nil
}

// LookupByIdentifier reads the user's hash.
func (s *RedisStore) LookupByIdentifier(ctx context.Context, identifier string) (*UserRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.key(identifier)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", identifier, err)
	}
	if len(fields) == 0 {
		return nil, ErrUserNotFound
	}

	disabled := false
	if v, ok := fields[fieldDisabled]; ok && v != "" {
		disabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid disabled flag for user %q: %w", identifier, err)
		}
	}

	return &UserRecord{
		Username:     identifier,
		PasswordHash: fields[fieldPasswordHash],
		Authorities:  token.ParseAuthorities(fields[fieldAuthorities]),
		Disabled:     disabled,
	}, nil
}
