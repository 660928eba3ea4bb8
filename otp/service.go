package otp

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stepauth/stepauth/internal"
)

// Purpose scopes a challenge to the flow that issued it. A code issued for
// one purpose never validates for another.
type Purpose string

const (
	// PurposeRegister covers account registration challenges.
	PurposeRegister Purpose = "register"
	// PurposeLogin covers untrusted-device login challenges.
	PurposeLogin Purpose = "login"
	// PurposeForgotPassword covers password recovery challenges.
	PurposeForgotPassword Purpose = "forgot-password"
	// PurposeVerifyEmail covers email confirmation challenges.
	PurposeVerifyEmail Purpose = "verify-email"
)

// ErrUnavailable wraps transport failures against the challenge backend.
var ErrUnavailable = errors.New("challenge backend unavailable")

// Request describes the (account, purpose) pair a new challenge is
// generated for, plus the out-of-band recipient address.
type Request struct {
	Username  string
	Recipient string
	Purpose   Purpose
}

// Challenge is a generated one-time code with its validity window. The code
// value only exists in memory between Generate and Dispatch; Persist stores
// a hash.
type Challenge struct {
	ID        string
	Username  string
	Recipient string
	Purpose   Purpose
	Code      string
	ExpiresAt time.Time
}

// Dispatcher delivers a challenge out-of-band (typically email). The code
// must never be returned to the requesting caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, ch *Challenge) error
}

// NopDispatcher drops challenges. Useful when delivery happens through a
// side channel owned by the caller.
type NopDispatcher struct{}

// Dispatch discards the challenge.
func (NopDispatcher) Dispatch(context.Context, *Challenge) error { return nil }

// Config tunes challenge generation and validation.
type Config struct {
	CodeDigits  int
	TTL         time.Duration
	MaxAttempts int
	KeyPrefix   string
}

// RedisService is the default challenge service. At most one challenge is
// active per (username, purpose): Persist overwrites and InvalidateExisting
// deletes the single slot.
type RedisService struct {
	redis      *redis.Client
	config     Config
	dispatcher Dispatcher
}

// NewRedisService returns a challenge service over client. A nil dispatcher
// falls back to NopDispatcher.
func NewRedisService(client *redis.Client, cfg Config, dispatcher Dispatcher) (*RedisService, error) {
	if cfg.CodeDigits < 4 || cfg.CodeDigits > 10 {
		return nil, errors.New("invalid code digit count")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid challenge TTL")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, errors.New("invalid attempt budget")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "otp"
	}
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}

	return &RedisService{
		redis:      client,
		config:     cfg,
		dispatcher: dispatcher,
	}, nil
}

func (s *RedisService) codeKey(username string, purpose Purpose) string {
	return s.config.KeyPrefix + ":" + string(purpose) + ":" + username
}

func (s *RedisService) attemptsKey(username string, purpose Purpose) string {
	return s.codeKey(username, purpose) + ":attempts"
}

// InvalidateExisting drops any active challenge for (username, purpose).
func (s *RedisService) InvalidateExisting(ctx context.Context, username string, purpose Purpose) error {
	err := s.redis.Del(ctx, s.codeKey(username, purpose), s.attemptsKey(username, purpose)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Generate draws a fresh code for req. Nothing is stored until Persist.
func (s *RedisService) Generate(ctx context.Context, req Request) (*Challenge, error) {
	code, err := internal.RandomDigits(s.config.CodeDigits)
	if err != nil {
		return nil, err
	}

	return &Challenge{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Recipient: req.Recipient,
		Purpose:   req.Purpose,
		Code:      code,
		ExpiresAt: time.Now().Add(s.config.TTL),
	}, nil
}

// Persist stores the hash of ch's code under its (username, purpose) slot,
// replacing any previous challenge and resetting the attempt counter.
func (s *RedisService) Persist(ctx context.Context, ch *Challenge) error {
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		return errors.New("challenge already expired")
	}

	digest := hashCode(ch.Code)
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.codeKey(ch.Username, ch.Purpose), digest, ttl)
	pipe.Del(ctx, s.attemptsKey(ch.Username, ch.Purpose))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Dispatch hands ch to the configured delivery channel.
func (s *RedisService) Dispatch(ctx context.Context, ch *Challenge) error {
	return s.dispatcher.Dispatch(ctx, ch)
}

// Validate checks code against the active challenge for (username, purpose).
// A match consumes the challenge; a mismatch burns one attempt, and
// exhausting the budget consumes the challenge as well. Expired or absent
// challenges simply fail validation.
func (s *RedisService) Validate(ctx context.Context, username string, purpose Purpose, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	key := s.codeKey(username, purpose)
	stored, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) != 1 {
		attempts, err := s.redis.Incr(ctx, s.attemptsKey(username, purpose)).Result()
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if attempts >= int64(s.config.MaxAttempts) {
			if err := s.InvalidateExisting(ctx, username, purpose); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	if err := s.InvalidateExisting(ctx, username, purpose); err != nil {
		return false, err
	}
	return true, nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
