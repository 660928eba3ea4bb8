package stepauth

import (
	"context"
	"errors"
	"strings"

	"github.com/stepauth/stepauth/otp"
)

// Register runs the registration flow: duplicate check, one-time-passcode
// challenge, then an all-or-nothing create + role assignment + token
// issuance. A failed role assignment leaves no orphaned account.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*FlowResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	exists, err := e.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, req.Username, nil, nil)
		return failure(OutcomeUserAlreadyExists), nil
	}

	if strings.TrimSpace(req.Code) == "" {
		if err := e.sendChallenge(ctx, req.Username, req.Email, otp.PurposeRegister); err != nil {
			return nil, err
		}
		e.emitAudit(ctx, auditEventRegisterChallengeSent, true, req.Username, nil, nil)
		return failure(OutcomeVerificationCodeSent), nil
	}

	valid, err := e.challenges.Validate(ctx, req.Username, otp.PurposeRegister, req.Code)
	if err != nil {
		return nil, err
	}
	if !valid {
		e.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, nil, func() map[string]string {
			return map[string]string{"reason": "invalid_code"}
		})
		return failure(OutcomeInvalidVerificationCode), nil
	}

	deviceID := deviceIDFromContext(ctx)
	if deviceID == "" {
		return nil, ErrDeviceContextMissing
	}

	passwordHash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, nil, func() map[string]string {
			return map[string]string{"reason": "password_policy"}
		})
		return failure(OutcomeUnableToCompleteProcess), nil
	}

	handle, err := e.allocateHandle(ctx, req.FirstName, req.LastName, req.Username)
	if err != nil {
		if errors.Is(err, ErrHandleExhausted) {
			e.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, err, func() map[string]string {
				return map[string]string{"reason": "handle_exhausted"}
			})
			return failure(OutcomeUnableToCompleteProcess), nil
		}
		return nil, err
	}

	now := e.now()
	account := &Account{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		Handle:          handle,
		PasswordHash:    passwordHash,
		TrustedDeviceID: deviceID,
		AcceptedTerms:   req.AcceptedTerms,
		CreatedBy:       req.Username,
		CreatedAt:       now,
	}

	// Scoped all-or-nothing sequence: every durable write registers its
	// compensation, and the deferred rollback fires on any exit before
	// Commit.
	uow := newUnitOfWork()
	defer uow.Rollback(ctx)

	if err := e.users.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			// The store's unique constraint is the authoritative duplicate
			// check; the earlier existence probe can lose a race.
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, req.Username, err, nil)
			return failure(OutcomeUserAlreadyExists), nil
		}
		return nil, err
	}
	uow.OnRollback(func(ctx context.Context) error {
		return e.users.Delete(ctx, req.Username)
	})

	if err := e.users.AssignRole(ctx, req.Username, e.config.DefaultRole); err != nil {
		e.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, err, func() map[string]string {
			return map[string]string{"reason": "role_assignment_failed"}
		})
		return failure(OutcomeUnableToCompleteProcess), nil
	}

	profile, err := e.issueProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	uow.Commit()

	req.Password = ""
	e.emitAudit(ctx, auditEventRegisterSuccess, true, req.Username, nil, func() map[string]string {
		return map[string]string{"handle": handle}
	})
	return success(OutcomeUserRegistered, profile), nil
}
