package stepauth

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stepauth/stepauth/jwt"
	"github.com/stepauth/stepauth/otp"
	"github.com/stepauth/stepauth/password"
	"github.com/stepauth/stepauth/trust"
)

// Builder assembles an Engine. The zero builder plus a user store and a
// Redis client yields a working engine on defaults:
//
//	engine, err := stepauth.New().
//		WithConfig(cfg).
//		WithRedis(client).
//		WithUserStore(store).
//		Build()
type Builder struct {
	config     Config
	configSet  bool
	redis      *redis.Client
	users      UserStore
	challenges ChallengeService
	dispatcher otp.Dispatcher
	ledger     trust.Ledger
	auditSink  AuditSink
	now        func() time.Time
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// WithConfig sets the engine configuration. Zero-value fields are filled
// from defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.configSet = true
	return b
}

// WithRedis sets the Redis client backing the default challenge service and
// trust ledger. Not needed when both are supplied explicitly.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the credential store. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithChallengeService overrides the default Redis-backed challenge
// service.
func (b *Builder) WithChallengeService(svc ChallengeService) *Builder {
	b.challenges = svc
	return b
}

// WithDispatcher sets the out-of-band delivery channel used by the default
// challenge service. Ignored when WithChallengeService is used.
func (b *Builder) WithDispatcher(d otp.Dispatcher) *Builder {
	b.dispatcher = d
	return b
}

// WithTrustLedger overrides the default Redis-backed trusted-device ledger.
func (b *Builder) WithTrustLedger(l trust.Ledger) *Builder {
	b.ledger = l
	return b
}

// WithAuditSink sets the destination for audit events. Only consulted when
// auditing is enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the engine's time source. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration, fills defaults, and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	cfg := defaultConfig()
	if b.configSet {
		cfg = fillDefaults(b.config)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if b.users == nil {
		return nil, errors.New("user store is required")
	}

	challenges := b.challenges
	if challenges == nil {
		if b.redis == nil {
			return nil, errors.New("redis client required without a custom challenge service")
		}
		svc, err := otp.NewRedisService(b.redis, otp.Config{
			CodeDigits:  cfg.Challenge.CodeDigits,
			TTL:         cfg.Challenge.TTL,
			MaxAttempts: cfg.Challenge.MaxAttempts,
			KeyPrefix:   cfg.Challenge.KeyPrefix,
		}, b.dispatcher)
		if err != nil {
			return nil, err
		}
		challenges = svc
	}

	ledger := b.ledger
	if ledger == nil {
		if b.redis == nil {
			return nil, errors.New("redis client required without a custom trust ledger")
		}
		ledger = trust.NewRedisLedger(b.redis, cfg.Trust.KeyPrefix, cfg.Trust.EntryTTL)
	}

	tokens, err := jwt.NewManager(jwt.Config{
		TTL:           cfg.JWT.TTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		config:       cfg,
		users:        b.users,
		challenges:   challenges,
		ledger:       ledger,
		tokens:       tokens,
		passwordHash: hasher,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		now:          now,
	}, nil
}

// fillDefaults layers cfg over the package defaults so callers only set the
// fields they care about. Key material is never defaulted.
func fillDefaults(cfg Config) Config {
	def := defaultConfig()

	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = def.JWT.TTL
	}
	if cfg.JWT.SigningMethod == "" {
		cfg.JWT.SigningMethod = def.JWT.SigningMethod
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = def.JWT.Issuer
	}

	if cfg.Password == (PasswordConfig{}) {
		cfg.Password = def.Password
	}

	if cfg.Challenge.CodeDigits == 0 {
		cfg.Challenge.CodeDigits = def.Challenge.CodeDigits
	}
	if cfg.Challenge.TTL == 0 {
		cfg.Challenge.TTL = def.Challenge.TTL
	}
	if cfg.Challenge.MaxAttempts == 0 {
		cfg.Challenge.MaxAttempts = def.Challenge.MaxAttempts
	}
	if cfg.Challenge.KeyPrefix == "" {
		cfg.Challenge.KeyPrefix = def.Challenge.KeyPrefix
	}

	if cfg.Handle.SuffixDigits == 0 {
		cfg.Handle.SuffixDigits = def.Handle.SuffixDigits
	}
	if cfg.Handle.MaxAttempts == 0 {
		cfg.Handle.MaxAttempts = def.Handle.MaxAttempts
	}

	if cfg.Trust.KeyPrefix == "" {
		cfg.Trust.KeyPrefix = def.Trust.KeyPrefix
	}

	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}

	if cfg.DefaultRole == "" {
		cfg.DefaultRole = def.DefaultRole
	}

	return cfg
}
