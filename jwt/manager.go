package jwt

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the token signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs tokens with an Ed25519 private key.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs tokens with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config carries the signing material and claim defaults for a Manager.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Claims is the bundle signed into every issued token: the account's
// username (subject), its current role list, and the device the flow
// completed from. The bundle is built fresh per issuance and never stored.
type Claims struct {
	Roles    []string `json:"roles,omitempty"`
	DeviceID string   `json:"did,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and parses signed tokens. It is safe for concurrent use
// once constructed.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
			return nil, errors.New("invalid ed25519 private key size")
		}
		if len(cfg.PublicKey) != ed25519.PublicKeySize {
			return nil, errors.New("invalid ed25519 public key size")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// Issue signs a token for username carrying roles and the device context.
func (m *Manager) Issue(username string, roles []string, deviceID string) (string, error) {
	if username == "" {
		return "", errors.New("empty username")
	}

	now := time.Now()
	claims := Claims{
		Roles:    roles,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	switch m.config.SigningMethod {
	case MethodHS256:
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		return token.SignedString(m.config.PrivateKey)
	case MethodEd25519:
		token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
		return token.SignedString(ed25519.PrivateKey(m.config.PrivateKey))
	default:
		return "", errors.New("unsupported signing method")
	}
}

// Parse verifies a token and returns its claims. The signing method is
// pinned to the configured one; tokens signed any other way are rejected.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.config.Leeway),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}
	switch m.config.SigningMethod {
	case MethodHS256:
		options = append(options, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	case MethodEd25519:
		options = append(options, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		switch m.config.SigningMethod {
		case MethodHS256:
			return m.config.PrivateKey, nil
		case MethodEd25519:
			return ed25519.PublicKey(m.config.PublicKey), nil
		default:
			return nil, errors.New("unsupported signing method")
		}
	}, options...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
