package stepauth

import (
	"context"
	"strings"

	"github.com/stepauth/stepauth/internal"
)

// handleCandidate builds a handle from lower-cased, whitespace-stripped
// name parts plus a numeric suffix.
func handleCandidate(firstName, lastName, suffix string) string {
	return stripSpaces(firstName) + stripSpaces(lastName) + suffix
}

func stripSpaces(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// allocateHandle produces a handle unique among accounts other than owner.
// Collisions retry with a fresh random suffix up to the configured attempt
// budget; exhaustion returns ErrHandleExhausted instead of looping forever.
func (e *Engine) allocateHandle(ctx context.Context, firstName, lastName, owner string) (string, error) {
	for attempt := 0; attempt < e.config.Handle.MaxAttempts; attempt++ {
		suffix, err := internal.RandomDigits(e.config.Handle.SuffixDigits)
		if err != nil {
			return "", err
		}

		candidate := handleCandidate(firstName, lastName, suffix)
		inUse, err := e.users.HandleInUse(ctx, candidate, owner)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
	}

	return "", ErrHandleExhausted
}

// reallocateHandle keeps current when it is still free among other
// accounts (the owner's own handle never counts as a collision) and only
// allocates a new one otherwise.
func (e *Engine) reallocateHandle(ctx context.Context, current, firstName, lastName, owner string) (string, error) {
	if current != "" {
		inUse, err := e.users.HandleInUse(ctx, current, owner)
		if err != nil {
			return "", err
		}
		if !inUse {
			return current, nil
		}
	}

	return e.allocateHandle(ctx, firstName, lastName, owner)
}
