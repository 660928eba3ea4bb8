package stepauth

import (
	"context"
	"time"

	"github.com/stepauth/stepauth/otp"
)

// Account is the credential-store record the engine orchestrates over.
// Username and Handle are unique case-insensitively among non-deleted
// accounts; PasswordHash is opaque to callers and only ever verified
// through the engine's hasher.
type Account struct {
	ID              string
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Gender          string
	Handle          string
	PasswordHash    string
	EmailConfirmed  bool
	TrustedDeviceID string
	AcceptedTerms   bool
	CreatedBy       string
	CreatedAt       time.Time
	ModifiedBy      string
	ModifiedAt      time.Time
	Deleted         bool
}

// UserStore is the credential-store contract callers implement to integrate
// stepauth with their database. All lookups are case-insensitive on
// username/handle and must exclude soft-deleted accounts. Create and Update
// are expected to enforce uniqueness atomically and return ErrDuplicateKey
// on conflict.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// HandleInUse reports whether handle is owned by any non-deleted
	// account other than exceptUsername.
	HandleInUse(ctx context.Context, handle, exceptUsername string) (bool, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	// Delete soft-deletes the account; subsequent lookups must not see it.
	Delete(ctx context.Context, username string) error
	AssignRole(ctx context.Context, username, role string) error
	Roles(ctx context.Context, username string) ([]string, error)
}

// ChallengeService is the one-time-passcode collaborator. The engine never
// inspects code values, only the validation verdict. otp.RedisService is
// the default implementation.
type ChallengeService interface {
	InvalidateExisting(ctx context.Context, username string, purpose otp.Purpose) error
	Generate(ctx context.Context, req otp.Request) (*otp.Challenge, error)
	Persist(ctx context.Context, ch *otp.Challenge) error
	Dispatch(ctx context.Context, ch *otp.Challenge) error
	Validate(ctx context.Context, username string, purpose otp.Purpose, code string) (bool, error)
}

// Profile is the user-facing payload of a terminal-success outcome,
// including the freshly issued token.
type Profile struct {
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Gender         string
	Handle         string
	EmailConfirmed bool
	Roles          []string
	Token          string
}

// FlowResult pairs a business outcome with its optional payload. Profile is
// populated only for terminal-success outcomes.
type FlowResult struct {
	Outcome Outcome
	Profile *Profile
}

// RegisterRequest drives the registration flow. An empty Code requests a
// challenge; a populated one attempts to complete registration.
type RegisterRequest struct {
	Username      string
	Password      string
	Email         string
	FirstName     string
	LastName      string
	Gender        string
	AcceptedTerms bool
	Code          string
}

// LoginRequest drives the login flow. Code is only consulted when the
// caller's device is not trusted.
type LoginRequest struct {
	Username string
	Password string
	Code     string
}

// ChangePasswordRequest drives the authenticated password change flow.
type ChangePasswordRequest struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

// ForgotPasswordRequest drives password recovery. Identity is proven by the
// one-time passcode, not the current password.
type ForgotPasswordRequest struct {
	Username    string
	NewPassword string
	Code        string
}

// VerifyEmailRequest drives email confirmation.
type VerifyEmailRequest struct {
	Username string
	Code     string
}

// UpdateProfileRequest drives profile mutation. Handle allocation re-runs
// with the account's own handle excluded from the uniqueness check.
type UpdateProfileRequest struct {
	Username  string
	FirstName string
	LastName  string
	Gender    string
}

func failure(outcome Outcome) *FlowResult {
	return &FlowResult{Outcome: outcome}
}

func success(outcome Outcome, profile *Profile) *FlowResult {
	return &FlowResult{Outcome: outcome, Profile: profile}
}
