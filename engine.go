package stepauth

import (
	"context"
	"time"

	"github.com/stepauth/stepauth/jwt"
	"github.com/stepauth/stepauth/otp"
	"github.com/stepauth/stepauth/password"
	"github.com/stepauth/stepauth/trust"
)

// Engine orchestrates the authentication flows over the external
// collaborators: the credential store, the challenge service, the trust
// ledger, and the token signer. Configure through [Builder] and treat as
// immutable afterwards.
type Engine struct {
	config       Config
	users        UserStore
	challenges   ChallengeService
	ledger       trust.Ledger
	tokens       *jwt.Manager
	passwordHash *password.Argon2
	audit        *auditDispatcher
	now          func() time.Time
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) ready() bool {
	return e != nil && e.users != nil && e.challenges != nil &&
		e.ledger != nil && e.tokens != nil && e.passwordHash != nil
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, username string, err error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.now(),
		EventType: eventType,
		Username:  username,
		DeviceID:  deviceIDFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

// sendChallenge runs the shared challenge-issue sub-step: invalidate any
// active challenge for (username, purpose), then generate, persist, and
// dispatch a fresh one.
func (e *Engine) sendChallenge(ctx context.Context, username, recipient string, purpose otp.Purpose) error {
	if err := e.challenges.InvalidateExisting(ctx, username, purpose); err != nil {
		return err
	}

	challenge, err := e.challenges.Generate(ctx, otp.Request{
		Username:  username,
		Recipient: recipient,
		Purpose:   purpose,
	})
	if err != nil {
		return err
	}
	if err := e.challenges.Persist(ctx, challenge); err != nil {
		return err
	}
	return e.challenges.Dispatch(ctx, challenge)
}

// issueProfile fetches the account's current role list and signs a token
// for it. Roles are always read fresh here, never reused from an earlier
// step of the flow.
func (e *Engine) issueProfile(ctx context.Context, account *Account) (*Profile, error) {
	roles, err := e.users.Roles(ctx, account.Username)
	if err != nil {
		return nil, err
	}

	token, err := e.tokens.Issue(account.Username, roles, deviceIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	return &Profile{
		Username:       account.Username,
		Email:          account.Email,
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		Gender:         account.Gender,
		Handle:         account.Handle,
		EmailConfirmed: account.EmailConfirmed,
		Roles:          roles,
		Token:          token,
	}, nil
}

func (e *Engine) stampModified(ctx context.Context, account *Account, fallback string) {
	modifier := callerUsernameFromContext(ctx)
	if modifier == "" {
		modifier = fallback
	}
	account.ModifiedBy = modifier
	account.ModifiedAt = e.now()
}
