package logger

import "testing"

func TestFieldsRedactsSensitiveValues(t *testing.T) {
	l := &Logger{redact: true}
	in := []any{"access_token", "abc", "user_id", "u1", "OPENAI_API_KEY", "sk", "dangling"}
	got := l.fields(in)
	want := []any{"access_token", redacted, "user_id", "u1", "OPENAI_API_KEY", redacted, "dangling"}
	if len(got) != len(want) {
		t.Fatalf("len: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields[%d]: want=%v got=%v", i, want[i], got[i])
		}
	}
	if in[1] != "abc" {
		t.Fatalf("caller slice was modified")
	}
}

func TestFieldsPassthrough(t *testing.T) {
	in := []any{"email", "a@b.c"}
	if got := (&Logger{redact: false}).fields(in); got[1] != "a@b.c" {
		t.Fatalf("redaction off: got=%v", got[1])
	}
	clean := []any{"user_id", "u1"}
	if got := (&Logger{redact: true}).fields(clean); &got[0] != &clean[0] {
		t.Fatalf("clean fields should not be copied")
	}
}

func TestNewModes(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	for _, mode := range []string{"test", "production", "development"} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		log.With("service", "x").Debug("hello", "k", "v")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := New("production"); err == nil {
		t.Fatalf("expected error for bad LOG_LEVEL")
	}
}

func TestRedactionFollowsEnv(t *testing.T) {
	t.Setenv("LOG_REDACT", "false")
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.redact {
		t.Fatalf("LOG_REDACT=false must disable redaction")
	}
}
