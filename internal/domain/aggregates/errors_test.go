package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("row gone")
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Code: CodeNotFound}, "not_found"},
		{&Error{Code: CodeNotFound, Op: "Session.Load"}, "Session.Load [not_found]"},
		{&Error{Code: CodeNotFound, Message: "missing"}, "[not_found] missing"},
		{&Error{Code: CodeNotFound, Op: "Session.Load", Cause: cause}, "Session.Load [not_found]: row gone"},
		{&Error{Code: CodeNotFound, Op: "Session.Load", Message: "missing", Cause: cause}, "Session.Load [not_found]: missing"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error(): want=%q got=%q", tc.want, got)
		}
	}
}

func TestCodeOfThroughWrapping(t *testing.T) {
	base := NewError(CodeConflict, "op", "stale", nil)
	wrapped := fmt.Errorf("resolve: %w", base)
	if CodeOf(wrapped) != CodeConflict || !IsCode(wrapped, CodeConflict) {
		t.Fatalf("CodeOf(wrapped) = %q", CodeOf(wrapped))
	}
	if CodeOf(errors.New("plain")) != "" || IsCode(nil, "") {
		t.Fatalf("plain errors carry no code")
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) must stay nil")
	}
}

func TestRetryable(t *testing.T) {
	cases := map[ErrorCode]bool{
		CodeConflict:           true,
		CodeRetryable:          true,
		CodeValidation:         false,
		CodePreconditionFailed: false,
		CodeInternal:           false,
	}
	for code, want := range cases {
		if got := Retryable(NewError(code, "op", "", nil)); got != want {
			t.Fatalf("Retryable(%s): want=%v got=%v", code, want, got)
		}
	}
	if Retryable(nil) {
		t.Fatalf("nil is not retryable")
	}
}

func TestContractTouches(t *testing.T) {
	if !SpotDiffSessionAggregateContract.Touches("solved_record") {
		t.Fatalf("session aggregate writes solved records")
	}
	if ProgressAggregateContract.Touches("game_session") {
		t.Fatalf("progress aggregate never writes sessions")
	}
}
