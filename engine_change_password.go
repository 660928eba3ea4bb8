package stepauth

import (
	"context"
	"errors"
)

// ChangePassword rotates the password of an authenticated account. The
// current password is re-verified even though the caller already holds a
// token, so a hijacked session alone cannot rotate credentials. After the
// write the stored hash is read back and checked against the new password
// before any token is issued.
func (e *Engine) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*FlowResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventPasswordChangeFailure, false, req.Username, nil, func() map[string]string {
				return map[string]string{"reason": "unknown_account"}
			})
			return failure(OutcomeInvalidUsernamePassword), nil
		}
		return nil, err
	}

	match, err := e.passwordHash.Verify(req.CurrentPassword, account.PasswordHash)
	if err != nil || !match {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, account.Username, nil, func() map[string]string {
			return map[string]string{"reason": "bad_current_password"}
		})
		return failure(OutcomeInvalidPassword), nil
	}

	newHash, err := e.passwordHash.Hash(req.NewPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, account.Username, nil, func() map[string]string {
			return map[string]string{"reason": "password_policy"}
		})
		return failure(OutcomeSomethingWentWrong), nil
	}

	account.PasswordHash = newHash
	e.stampModified(ctx, account, account.Username)
	if err := e.users.Update(ctx, account); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, account.Username, err, nil)
		return failure(OutcomeSomethingWentWrong), nil
	}

	// Read-back check: the persisted hash must verify the new password, or
	// the store and the engine disagree about what was written.
	fresh, err := e.users.FindByUsername(ctx, account.Username)
	if err != nil {
		return nil, err
	}
	match, err = e.passwordHash.Verify(req.NewPassword, fresh.PasswordHash)
	if err != nil || !match {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, account.Username, nil, func() map[string]string {
			return map[string]string{"reason": "readback_mismatch"}
		})
		return failure(OutcomeInvalidPassword), nil
	}

	profile, err := e.issueProfile(ctx, fresh)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, account.Username, nil, nil)
	return success(OutcomePasswordChanged, profile), nil
}
