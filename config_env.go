package stepauth

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	JWTTTL           time.Duration `env:"STEPAUTH_JWT_TTL" envDefault:"15m"`
	JWTSigningMethod string        `env:"STEPAUTH_JWT_SIGNING_METHOD" envDefault:"ed25519"`
	JWTIssuer        string        `env:"STEPAUTH_JWT_ISSUER" envDefault:"stepauth"`
	JWTAudience      string        `env:"STEPAUTH_JWT_AUDIENCE"`

	ChallengeCodeDigits  int           `env:"STEPAUTH_CHALLENGE_CODE_DIGITS" envDefault:"6"`
	ChallengeTTL         time.Duration `env:"STEPAUTH_CHALLENGE_TTL" envDefault:"10m"`
	ChallengeMaxAttempts int           `env:"STEPAUTH_CHALLENGE_MAX_ATTEMPTS" envDefault:"5"`

	HandleSuffixDigits int `env:"STEPAUTH_HANDLE_SUFFIX_DIGITS" envDefault:"4"`
	HandleMaxAttempts  int `env:"STEPAUTH_HANDLE_MAX_ATTEMPTS" envDefault:"16"`

	TrustEntryTTL time.Duration `env:"STEPAUTH_TRUST_ENTRY_TTL" envDefault:"0"`

	AuditEnabled    bool `env:"STEPAUTH_AUDIT_ENABLED" envDefault:"false"`
	AuditBufferSize int  `env:"STEPAUTH_AUDIT_BUFFER_SIZE" envDefault:"256"`

	DefaultRole string `env:"STEPAUTH_DEFAULT_ROLE" envDefault:"admin"`
}

// FromEnv builds a Config from STEPAUTH_* environment variables layered
// over the defaults. Signing keys are deliberately not read from the
// environment; set them on the returned Config before Build.
func FromEnv() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	cfg.JWT.TTL = raw.JWTTTL
	cfg.JWT.SigningMethod = raw.JWTSigningMethod
	cfg.JWT.Issuer = raw.JWTIssuer
	cfg.JWT.Audience = raw.JWTAudience
	cfg.Challenge.CodeDigits = raw.ChallengeCodeDigits
	cfg.Challenge.TTL = raw.ChallengeTTL
	cfg.Challenge.MaxAttempts = raw.ChallengeMaxAttempts
	cfg.Handle.SuffixDigits = raw.HandleSuffixDigits
	cfg.Handle.MaxAttempts = raw.HandleMaxAttempts
	cfg.Trust.EntryTTL = raw.TrustEntryTTL
	cfg.Audit.Enabled = raw.AuditEnabled
	cfg.Audit.BufferSize = raw.AuditBufferSize
	cfg.DefaultRole = raw.DefaultRole

	return cfg, nil
}
