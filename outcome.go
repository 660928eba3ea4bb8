package stepauth

// Outcome is the closed set of business results a flow can terminate with.
// Outcomes are returned, never raised: errors are reserved for collaborator
// failures outside the protocol.
type Outcome uint8

const (
	// OutcomeUnknown is the zero value and never returned by a flow.
	OutcomeUnknown Outcome = iota
	// OutcomeUserAlreadyExists terminates registration for a taken username.
	OutcomeUserAlreadyExists
	// OutcomeUserDoesNotExist terminates flows gated on account existence.
	OutcomeUserDoesNotExist
	// OutcomeInvalidUsernamePassword covers unknown accounts and failed
	// password checks without distinguishing the two.
	OutcomeInvalidUsernamePassword
	// OutcomeInvalidPassword rejects a wrong current password on change, or
	// flags an inconsistent credential store on re-verification.
	OutcomeInvalidPassword
	// OutcomeInvalidVerificationCode rejects a wrong, expired, or consumed
	// one-time passcode.
	OutcomeInvalidVerificationCode
	// OutcomeVerificationCodeSent means a challenge was issued and the
	// caller must repeat the request with the delivered code.
	OutcomeVerificationCodeSent
	// OutcomeUnableToCompleteProcess means registration could not finish;
	// no partial account remains.
	OutcomeUnableToCompleteProcess
	// OutcomeUserRegistered is registration's terminal success.
	OutcomeUserRegistered
	// OutcomeUserLoggedIn is the terminal success for login and for a
	// completed password recovery.
	OutcomeUserLoggedIn
	// OutcomePasswordChanged is change-password's terminal success.
	OutcomePasswordChanged
	// OutcomeProfileUpdated is update-profile's terminal success.
	OutcomeProfileUpdated
	// OutcomeEmailVerified is email verification's terminal success.
	OutcomeEmailVerified
	// OutcomeSomethingWentWrong reports a credential-subsystem failure
	// without leaking its cause.
	OutcomeSomethingWentWrong
)

var outcomeNames = map[Outcome]string{
	OutcomeUserAlreadyExists:       "user_already_exists",
	OutcomeUserDoesNotExist:        "user_does_not_exist",
	OutcomeInvalidUsernamePassword: "invalid_username_password",
	OutcomeInvalidPassword:         "invalid_password",
	OutcomeInvalidVerificationCode: "invalid_verification_code",
	OutcomeVerificationCodeSent:    "verification_code_sent",
	OutcomeUnableToCompleteProcess: "unable_to_complete_process",
	OutcomeUserRegistered:          "user_registered",
	OutcomeUserLoggedIn:            "user_logged_in",
	OutcomePasswordChanged:         "password_changed",
	OutcomeProfileUpdated:          "profile_updated",
	OutcomeEmailVerified:           "email_verified",
	OutcomeSomethingWentWrong:      "something_went_wrong",
}

var outcomeMessages = map[Outcome]string{
	OutcomeUserAlreadyExists:       "An account with this username already exists.",
	OutcomeUserDoesNotExist:        "No account matches this username.",
	OutcomeInvalidUsernamePassword: "Invalid username or password.",
	OutcomeInvalidPassword:         "Invalid password.",
	OutcomeInvalidVerificationCode: "Invalid verification code.",
	OutcomeVerificationCodeSent:    "A verification code has been sent.",
	OutcomeUnableToCompleteProcess: "Unable to complete the process. Please try again.",
	OutcomeUserRegistered:          "Account registered successfully.",
	OutcomeUserLoggedIn:            "Logged in successfully.",
	OutcomePasswordChanged:         "Password changed successfully.",
	OutcomeProfileUpdated:          "Profile updated successfully.",
	OutcomeEmailVerified:           "Email verified successfully.",
	OutcomeSomethingWentWrong:      "Something went wrong. Please try again.",
}

// String returns the stable snake_case identifier for o.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Message returns the stable user-facing text for o. Messages never expose
// collaborator details.
func (o Outcome) Message() string {
	if msg, ok := outcomeMessages[o]; ok {
		return msg
	}
	return outcomeMessages[OutcomeSomethingWentWrong]
}

// Success reports whether o is a terminal-success outcome.
func (o Outcome) Success() bool {
	switch o {
	case OutcomeUserRegistered, OutcomeUserLoggedIn, OutcomePasswordChanged,
		OutcomeProfileUpdated, OutcomeEmailVerified:
		return true
	}
	return false
}
