package action_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	Kind string `json:"type"`
}

type named struct {
	Type string
	Body string
}

type untyped struct {
	Body string
}

type customType string

func (c customType) ActionType() string { return string(c) }

func TestTypeOf_RecognisedShapes(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"action", action.New("PING", nil), "PING"},
		{"pointer to action", &action.Action{Type: "PING"}, "PING"},
		{"typed", customType("CUSTOM"), "CUSTOM"},
		{"map any", map[string]any{"type": "PING"}, "PING"},
		{"map string", map[string]string{"type": "PING"}, "PING"},
		{"map numeric type", map[string]any{"type": 7}, "7"},
		{"struct field", named{Type: "NAMED"}, "NAMED"},
		{"struct json tag", tagged{Kind: "TAGGED"}, "TAGGED"},
		{"pointer to struct", &named{Type: "NAMED"}, "NAMED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := action.TypeOf(tc.value)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
			assert.NoError(t, action.Validate(tc.value))
		})
	}
}

func TestValidate_RejectsMissingOrFalsyType(t *testing.T) {
	var nilAction *action.Action
	cases := []struct {
		name  string
		value any
	}{
		{"nil", nil},
		{"nil pointer", nilAction},
		{"empty map", map[string]any{}},
		{"empty type", map[string]any{"type": ""}},
		{"false type", map[string]any{"type": false}},
		{"zero type", map[string]any{"type": 0}},
		{"nil type", map[string]any{"type": nil}},
		{"int keyed map", map[int]string{0: "type"}},
		{"struct without type", untyped{Body: "x"}},
		{"empty struct type", named{}},
		{"scalar", 42},
		{"string", "PING"},
		{"empty action", action.Action{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := action.Validate(tc.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, action.ErrInvalidShape))

			var shapeErr *action.ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tc.value, shapeErr.Value)
		})
	}
}
