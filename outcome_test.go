package stepauth

import "testing"

func TestOutcomeString(t *testing.T) {
	cases := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeUserAlreadyExists, "user_already_exists"},
		{OutcomeVerificationCodeSent, "verification_code_sent"},
		{OutcomeUserLoggedIn, "user_logged_in"},
		{OutcomeUnknown, "unknown"},
		{Outcome(200), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.outcome.String(); got != tc.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tc.outcome, got, tc.want)
		}
	}
}

func TestOutcomeSuccess(t *testing.T) {
	successes := []Outcome{
		OutcomeUserRegistered,
		OutcomeUserLoggedIn,
		OutcomePasswordChanged,
		OutcomeProfileUpdated,
		OutcomeEmailVerified,
	}
	for _, o := range successes {
		if !o.Success() {
			t.Errorf("%v must classify as success", o)
		}
	}

	failures := []Outcome{
		OutcomeUnknown,
		OutcomeUserAlreadyExists,
		OutcomeUserDoesNotExist,
		OutcomeInvalidUsernamePassword,
		OutcomeInvalidPassword,
		OutcomeInvalidVerificationCode,
		OutcomeVerificationCodeSent,
		OutcomeUnableToCompleteProcess,
		OutcomeSomethingWentWrong,
	}
	for _, o := range failures {
		if o.Success() {
			t.Errorf("%v must not classify as success", o)
		}
	}
}

func TestOutcomeMessage(t *testing.T) {
	for o := range outcomeNames {
		if o.Message() == "" {
			t.Errorf("%v has no message", o)
		}
	}
	if Outcome(200).Message() != OutcomeSomethingWentWrong.Message() {
		t.Fatal("unknown outcomes must fall back to the generic message")
	}
}
