package stepauth

import (
	"context"
	"errors"
)

// UpdateProfile applies name and gender edits and recomputes the handle
// when the name changed. An account's own current handle never counts as a
// collision, so an unchanged name keeps its handle.
func (e *Engine) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*FlowResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventProfileUpdateFailure, false, req.Username, nil, func() map[string]string {
				return map[string]string{"reason": "unknown_account"}
			})
			return failure(OutcomeUserDoesNotExist), nil
		}
		return nil, err
	}

	nameChanged := stripSpaces(req.FirstName) != stripSpaces(account.FirstName) ||
		stripSpaces(req.LastName) != stripSpaces(account.LastName)

	account.FirstName = req.FirstName
	account.LastName = req.LastName
	account.Gender = req.Gender

	current := account.Handle
	if nameChanged {
		current = ""
	}
	handle, err := e.reallocateHandle(ctx, current, req.FirstName, req.LastName, account.Username)
	if err != nil {
		if errors.Is(err, ErrHandleExhausted) {
			e.emitAudit(ctx, auditEventProfileUpdateFailure, false, account.Username, err, func() map[string]string {
				return map[string]string{"reason": "handle_exhausted"}
			})
			return failure(OutcomeUnableToCompleteProcess), nil
		}
		return nil, err
	}
	account.Handle = handle

	e.stampModified(ctx, account, account.Username)
	if err := e.users.Update(ctx, account); err != nil {
		e.emitAudit(ctx, auditEventProfileUpdateFailure, false, account.Username, err, nil)
		return failure(OutcomeSomethingWentWrong), nil
	}

	profile, err := e.issueProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventProfileUpdated, true, account.Username, nil, func() map[string]string {
		return map[string]string{"handle": handle}
	})
	return success(OutcomeProfileUpdated, profile), nil
}
