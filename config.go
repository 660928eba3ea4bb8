package stepauth

import (
	"errors"
	"time"
)

// Config groups the engine's tunables. Zero-value fields are filled from
// defaultConfig by the Builder.
type Config struct {
	JWT       JWTConfig
	Password  PasswordConfig
	Challenge ChallengeConfig
	Handle    HandleConfig
	Trust     TrustConfig
	Audit     AuditConfig

	// DefaultRole is assigned to every account created by Register.
	DefaultRole string
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig carries token signing material and claim defaults.
type JWTConfig struct {
	TTL           time.Duration
	SigningMethod string // "ed25519" or "hs256"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries the argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig tunes the default one-time-passcode service.
type ChallengeConfig struct {
	CodeDigits  int
	TTL         time.Duration
	MaxAttempts int
	KeyPrefix   string
}

/*
====================================
HANDLE CONFIG
====================================
*/

// HandleConfig tunes handle allocation. MaxAttempts bounds the collision
// retry loop; exhaustion surfaces as ErrHandleExhausted rather than
// spinning forever.
type HandleConfig struct {
	SuffixDigits int
	MaxAttempts  int
}

/*
====================================
TRUST CONFIG
====================================
*/

// TrustConfig tunes the trusted-device ledger. EntryTTL of zero keeps
// entries until a device change removes them.
type TrustConfig struct {
	KeyPrefix string
	EntryTTL  time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig tunes the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking flows when the buffer is
	// saturated. Dropped counts are observable via Engine.AuditDropped.
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			TTL:           15 * time.Minute,
			SigningMethod: "ed25519",
			Issuer:        "stepauth",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Challenge: ChallengeConfig{
			CodeDigits:  6,
			TTL:         10 * time.Minute,
			MaxAttempts: 5,
			KeyPrefix:   "otp",
		},
		Handle: HandleConfig{
			SuffixDigits: 4,
			MaxAttempts:  16,
		},
		Trust: TrustConfig{
			KeyPrefix: "trusted-device:",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		DefaultRole: "admin",
	}
}

func validateConfig(cfg Config) error {
	if cfg.DefaultRole == "" {
		return errors.New("default role must not be empty")
	}
	if cfg.Handle.SuffixDigits < 1 {
		return errors.New("handle suffix digits must be positive")
	}
	if cfg.Handle.MaxAttempts < 1 {
		return errors.New("handle allocation needs at least one attempt")
	}
	return nil
}
