package ctxutil

import (
	"context"
	"testing"
)

func TestTraceRoundTrip(t *testing.T) {
	if _, ok := TraceFrom(context.Background()); ok {
		t.Fatalf("empty context must not carry a trace")
	}
	ctx := WithTrace(context.Background(), Trace{TraceID: "t1", RequestID: "r1"})
	got, ok := TraceFrom(ctx)
	if !ok || got.TraceID != "t1" || got.RequestID != "r1" {
		t.Fatalf("TraceFrom: %+v ok=%v", got, ok)
	}
}

func TestTraceLogFields(t *testing.T) {
	cases := []struct {
		in   Trace
		want int
	}{
		{Trace{}, 0},
		{Trace{TraceID: "t"}, 2},
		{Trace{TraceID: "t", RequestID: "r"}, 4},
	}
	for _, tc := range cases {
		if got := tc.in.LogFields(); len(got) != tc.want {
			t.Fatalf("LogFields(%+v): want %d items got %v", tc.in, tc.want, got)
		}
	}
}

func TestDefault(t *testing.T) {
	var nilCtx context.Context
	if Default(nilCtx) == nil {
		t.Fatalf("Default(nil) must return a context")
	}
	if _, ok := TraceFrom(nilCtx); ok {
		t.Fatalf("nil context carries no trace")
	}
}
