package stepauth

import (
	"context"
	"errors"
	"strings"

	"github.com/stepauth/stepauth/otp"
)

// ForgotPassword recovers an account the caller cannot sign in to. Without
// a code it issues a one-time-passcode challenge; with a valid code it
// overwrites the password and signs the caller in.
func (e *Engine) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*FlowResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventPasswordResetFailure, false, req.Username, nil, func() map[string]string {
				return map[string]string{"reason": "unknown_account"}
			})
			return failure(OutcomeInvalidUsernamePassword), nil
		}
		return nil, err
	}

	if strings.TrimSpace(req.Code) == "" {
		if err := e.sendChallenge(ctx, account.Username, account.Email, otp.PurposeForgotPassword); err != nil {
			return nil, err
		}
		e.emitAudit(ctx, auditEventPasswordResetRequest, true, account.Username, nil, nil)
		return failure(OutcomeVerificationCodeSent), nil
	}

	valid, err := e.challenges.Validate(ctx, account.Username, otp.PurposeForgotPassword, req.Code)
	if err != nil {
		return nil, err
	}
	if !valid {
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, account.Username, nil, func() map[string]string {
			return map[string]string{"reason": "invalid_code"}
		})
		return failure(OutcomeInvalidVerificationCode), nil
	}

	newHash, err := e.passwordHash.Hash(req.NewPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, account.Username, nil, func() map[string]string {
			return map[string]string{"reason": "password_policy"}
		})
		return failure(OutcomeSomethingWentWrong), nil
	}

	account.PasswordHash = newHash
	e.stampModified(ctx, account, account.Username)
	if err := e.users.Update(ctx, account); err != nil {
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, account.Username, err, nil)
		return failure(OutcomeSomethingWentWrong), nil
	}

	profile, err := e.issueProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventPasswordResetConfirm, true, account.Username, nil, nil)
	return success(OutcomeUserLoggedIn, profile), nil
}
