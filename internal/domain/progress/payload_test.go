package progress

import (
	"testing"

	"github.com/google/uuid"
)

func TestPayloadRoundTripKeepsKind(t *testing.T) {
	sid := uuid.New()
	kind, raw, err := EncodePayload(SpotDifferencePayload{SessionID: sid, TotalDifferences: 5})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if kind != PayloadSpotDifference {
		t.Fatalf("kind: want=%s got=%s", PayloadSpotDifference, kind)
	}
	p, err := DecodePayload(kind, raw)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	sd, ok := p.(SpotDifferencePayload)
	if !ok || sd.SessionID != sid || sd.TotalDifferences != 5 {
		t.Fatalf("unexpected payload: %#v", p)
	}
}

func TestPayloadForExercise(t *testing.T) {
	p, err := PayloadFor("schulte", map[string]any{"grid_size": 5, "mistakes": 2})
	if err != nil {
		t.Fatalf("PayloadFor: %v", err)
	}
	if s, ok := p.(SchultePayload); !ok || s.GridSize != 5 || s.Mistakes != 2 {
		t.Fatalf("schulte payload: %#v", p)
	}
	p, err = PayloadFor("memory", map[string]any{"pairs": 8})
	if err != nil {
		t.Fatalf("PayloadFor: %v", err)
	}
	if p.Kind() != PayloadGeneric {
		t.Fatalf("unknown exercise should be generic, got %s", p.Kind())
	}
	if p, _ := PayloadFor("typing", nil); p != nil {
		t.Fatalf("empty fields should give nil payload")
	}
}
