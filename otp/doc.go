// Package otp implements the one-time-passcode challenge service: code
// generation, single-active-challenge persistence keyed by (account,
// purpose), out-of-band dispatch, and single-use validation with an attempt
// budget.
package otp
