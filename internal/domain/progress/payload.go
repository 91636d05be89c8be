package progress

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PayloadGeneric        = "generic"
	PayloadSpotDifference = "spot_difference"
	PayloadSchulte        = "schulte"
	PayloadTyping         = "typing"
)

// Payload is the exercise-specific part of a result.
type Payload interface {
	Kind() string
}

type SpotDifferencePayload struct {
	SessionID        uuid.UUID `json:"session_id"`
	TemplateID       uuid.UUID `json:"template_id"`
	TotalDifferences int       `json:"total_differences"`
}

func (SpotDifferencePayload) Kind() string { return PayloadSpotDifference }

type SchultePayload struct {
	GridSize int `json:"grid_size"`
	Mistakes int `json:"mistakes"`
}

func (SchultePayload) Kind() string { return PayloadSchulte }

type TypingPayload struct {
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
}

func (TypingPayload) Kind() string { return PayloadTyping }

type GenericPayload map[string]any

func (GenericPayload) Kind() string { return PayloadGeneric }

func EncodePayload(p Payload) (string, datatypes.JSON, error) {
	if p == nil {
		return PayloadGeneric, nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return p.Kind(), datatypes.JSON(raw), nil
}

func DecodePayload(kind string, raw datatypes.JSON) (Payload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var (
		p   Payload
		err error
	)
	switch kind {
	case PayloadSpotDifference:
		var v SpotDifferencePayload
		err = json.Unmarshal(raw, &v)
		p = v
	case PayloadSchulte:
		var v SchultePayload
		err = json.Unmarshal(raw, &v)
		p = v
	case PayloadTyping:
		var v TypingPayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		var v GenericPayload
		err = json.Unmarshal(raw, &v)
		p = v
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return p, nil
}

// PayloadFor picks the typed payload for an exercise from loosely-typed
// request fields. Unknown exercises keep the fields as a generic payload.
func PayloadFor(exerciseID string, fields map[string]any) (Payload, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	switch exerciseID {
	case "schulte", "schulte-table":
		return DecodePayload(PayloadSchulte, raw)
	case "typing", "typing-speed":
		return DecodePayload(PayloadTyping, raw)
	default:
		return GenericPayload(fields), nil
	}
}
