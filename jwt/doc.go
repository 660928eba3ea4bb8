// Package jwt turns a claims bundle (username, role list, device context)
// into an opaque signed token and back. The surrounding request layer parses
// tokens to recover the caller's username for the device trust filter.
package jwt
