package stepauth

import (
	"context"
	"errors"
	"strings"

	"github.com/stepauth/stepauth/otp"
)

// Login runs the credential + step-up flow. Unknown accounts and wrong
// passwords collapse into the same outcome so callers cannot probe for
// usernames. A device the account already trusts skips the
// one-time-passcode step entirely; an untrusted device that completes it
// becomes the account's new trusted device.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*FlowResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventLoginFailure, false, req.Username, nil, func() map[string]string {
				return map[string]string{"reason": "unknown_account"}
			})
			return failure(OutcomeInvalidUsernamePassword), nil
		}
		return nil, err
	}

	deviceID := deviceIDFromContext(ctx)
	if deviceID == "" {
		return nil, ErrDeviceContextMissing
	}

	trusted, err := e.ValidateTrustedDevice(ctx, account.Username, deviceID)
	if err != nil {
		return nil, err
	}

	// The password gate holds on every path, trusted device or not. A stored
	// hash that fails to parse counts as a mismatch rather than leaking a
	// distinct outcome.
	match, err := e.passwordHash.Verify(req.Password, account.PasswordHash)
	if err != nil || !match {
		e.emitAudit(ctx, auditEventLoginFailure, false, account.Username, nil, func() map[string]string {
			return map[string]string{"reason": "bad_password"}
		})
		return failure(OutcomeInvalidUsernamePassword), nil
	}

	if !trusted {
		if strings.TrimSpace(req.Code) == "" {
			if err := e.sendChallenge(ctx, account.Username, account.Email, otp.PurposeLogin); err != nil {
				return nil, err
			}
			e.emitAudit(ctx, auditEventLoginChallengeSent, true, account.Username, nil, nil)
			return failure(OutcomeVerificationCodeSent), nil
		}

		valid, err := e.challenges.Validate(ctx, account.Username, otp.PurposeLogin, req.Code)
		if err != nil {
			return nil, err
		}
		if !valid {
			e.emitAudit(ctx, auditEventLoginFailure, false, account.Username, nil, func() map[string]string {
				return map[string]string{"reason": "invalid_code"}
			})
			return failure(OutcomeInvalidVerificationCode), nil
		}

		if err := e.UpdateDevice(ctx, account.Username); err != nil {
			return nil, err
		}
	}

	profile, err := e.issueProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventLoginSuccess, true, account.Username, nil, func() map[string]string {
		return map[string]string{"trusted_device": boolLabel(trusted)}
	})
	return success(OutcomeUserLoggedIn, profile), nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
