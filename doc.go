// Package stepauth is a step-up authentication orchestration engine. It
// decides, for registration, login, password change/recovery, and email
// verification, which step a caller must complete next — credential check,
// one-time-passcode challenge, trusted-device bypass, token issuance — and
// keeps account handles unique and device-trust state consistent across
// those steps.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// stepauth is the public surface. It exposes [Engine], [Builder], [Config],
// the flow request/result types, and the [UserStore] integration interface.
// The external collaborators live behind narrow contracts: the credential
// store ([UserStore]), the challenge service ([ChallengeService], default
// implementation in package otp), the trust ledger (package trust), and
// token signing (package jwt).
//
// # What this package must NOT do
//
//   - Own persistence schema: [UserStore] implementations decide storage;
//     the engine only requires case-insensitive, soft-delete-aware queries.
//   - Deliver challenges: codes leave through [otp.Dispatcher], never
//     through a flow result.
//   - Raise business outcomes as errors: every expected outcome is a
//     [Outcome] value; only collaborator failures surface as errors.
package stepauth
