package stepauth

import "context"

type deviceIDContextKey struct{}
type callerUsernameContextKey struct{}

// WithDeviceID attaches the caller's device identifier to ctx. Every flow
// that evaluates or promotes device trust reads it from here; the HTTP
// layer is responsible for extracting it from the request.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

// WithCallerUsername attaches the authenticated caller's username to ctx.
// Used for audit stamping on mutations performed on behalf of a user.
func WithCallerUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, callerUsernameContextKey{}, username)
}

func deviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	deviceID, _ := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID
}

func callerUsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	username, _ := ctx.Value(callerUsernameContextKey{}).(string)
	return username
}
