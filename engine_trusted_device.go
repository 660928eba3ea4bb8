package stepauth

import (
	"context"
	"errors"
	"log"
)

// ValidateTrustedDevice reports whether (username, deviceID) may bypass the
// one-time-passcode step. The ledger is consulted first; on a miss the
// account's stored trusted-device identifier decides, and a positive answer
// backfills the ledger. Correctness never depends on the ledger being
// populated — only latency does.
func (e *Engine) ValidateTrustedDevice(ctx context.Context, username, deviceID string) (bool, error) {
	if e == nil || e.ledger == nil || e.users == nil {
		return false, ErrEngineNotReady
	}
	if username == "" || deviceID == "" {
		return false, nil
	}

	cached, err := e.ledger.Get(ctx, username, deviceID)
	if err != nil {
		return false, err
	}
	if cached != "" {
		return true, nil
	}

	account, err := e.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	if account.TrustedDeviceID != deviceID {
		return false, nil
	}

	// Backfill only when still absent; the write is best-effort because the
	// account record stays authoritative.
	exists, err := e.ledger.Exists(ctx, username, deviceID)
	if err == nil && !exists {
		if err := e.ledger.Set(ctx, username, deviceID); err != nil {
			log.Print("stepauth: trust ledger backfill failed")
		}
	}

	return true, nil
}

// UpdateDevice promotes the device in the request context to the account's
// trusted device. Callers invoke it only after the one-time-passcode step
// has passed for an untrusted device. The previous device's ledger entry is
// removed first so no stale pair outlives the switch, then the new entry is
// written and the account persisted.
func (e *Engine) UpdateDevice(ctx context.Context, username string) error {
	if e == nil || e.ledger == nil || e.users == nil {
		return ErrEngineNotReady
	}

	newDeviceID := deviceIDFromContext(ctx)
	if newDeviceID == "" {
		return ErrDeviceContextMissing
	}

	account, err := e.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return err
	}

	if account.TrustedDeviceID != "" && account.TrustedDeviceID != newDeviceID {
		if err := e.ledger.Remove(ctx, username, account.TrustedDeviceID); err != nil {
			return err
		}
	}
	if err := e.ledger.Set(ctx, username, newDeviceID); err != nil {
		return err
	}

	account.TrustedDeviceID = newDeviceID
	e.stampModified(ctx, account, username)
	if err := e.users.Update(ctx, account); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventDevicePromoted, true, username, nil, nil)
	return nil
}
