package stepauth

import (
	"context"
	"errors"
	"strings"

	"github.com/stepauth/stepauth/otp"
)

// VerifyEmail confirms ownership of the account's email address via a
// one-time-passcode challenge. The flow is idempotent: an already-confirmed
// address reports success without issuing another challenge.
func (e *Engine) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (Outcome, error) {
	if !e.ready() {
		return OutcomeUnknown, ErrEngineNotReady
	}

	account, err := e.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventEmailVerifyFailure, false, req.Username, nil, func() map[string]string {
				return map[string]string{"reason": "unknown_account"}
			})
			return OutcomeUserDoesNotExist, nil
		}
		return OutcomeUnknown, err
	}

	if account.EmailConfirmed {
		return OutcomeEmailVerified, nil
	}

	if strings.TrimSpace(req.Code) == "" {
		if err := e.sendChallenge(ctx, account.Username, account.Email, otp.PurposeVerifyEmail); err != nil {
			return OutcomeUnknown, err
		}
		e.emitAudit(ctx, auditEventEmailVerifyRequest, true, account.Username, nil, nil)
		return OutcomeVerificationCodeSent, nil
	}

	valid, err := e.challenges.Validate(ctx, account.Username, otp.PurposeVerifyEmail, req.Code)
	if err != nil {
		return OutcomeUnknown, err
	}
	if !valid {
		e.emitAudit(ctx, auditEventEmailVerifyFailure, false, account.Username, nil, func() map[string]string {
			return map[string]string{"reason": "invalid_code"}
		})
		return OutcomeInvalidVerificationCode, nil
	}

	account.EmailConfirmed = true
	e.stampModified(ctx, account, account.Username)
	if err := e.users.Update(ctx, account); err != nil {
		e.emitAudit(ctx, auditEventEmailVerifyFailure, false, account.Username, err, nil)
		return OutcomeSomethingWentWrong, nil
	}

	e.emitAudit(ctx, auditEventEmailVerifyConfirm, true, account.Username, nil, nil)
	return OutcomeEmailVerified, nil
}
