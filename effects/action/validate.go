package action

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/on-the-ground/effect_ive_dispatch/pure"
)

// ErrInvalidShape is matched by every error returned from Validate.
var ErrInvalidShape = errors.New("invalid action shape")

// ShapeError reports a value that was routed for dispatch without a usable type.
type ShapeError struct {
	Value any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf(
		"%v: %T has no action type; provide a non-empty type or register the effect with dispatch disabled",
		ErrInvalidShape, e.Value,
	)
}

func (e *ShapeError) Unwrap() error { return ErrInvalidShape }

// Validate returns a *ShapeError unless v carries a non-empty type discriminator.
func Validate(v any) error {
	if _, ok := TypeOf(v); !ok {
		return &ShapeError{Value: v}
	}
	return nil
}

// TypeOf extracts the type discriminator of v.
//
// It recognises, in order:
//   - values implementing Typed
//   - maps keyed by string holding a truthy "type" entry
//   - structs (or pointers to structs) with an exported Type field,
//     or a field tagged `json:"type"`
//
// nil, "", false and numeric zero count as missing.
func TypeOf(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}

	if t, ok := v.(Typed); ok {
		at := t.ActionType()
		return at, at != ""
	}

	if m, ok := v.(map[string]any); ok {
		return discriminator(m["type"])
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return "", false
		}
		field := rv.MapIndex(reflect.ValueOf("type").Convert(rv.Type().Key()))
		if !field.IsValid() {
			return "", false
		}
		return discriminator(field.Interface())
	case reflect.Struct:
		field, ok := typeField(rv)
		if !ok {
			return "", false
		}
		return discriminator(field.Interface())
	default:
		return "", false
	}
}

// typeFieldIndex finds the field carrying the action type of a struct type.
var typeFieldIndex = pure.Tableize2(func(rt reflect.Type) (int, bool) {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "type" || (name == "" && sf.Name == "Type") {
			return i, true
		}
	}
	return -1, false
}, 1024)

func typeField(rv reflect.Value) (reflect.Value, bool) {
	i, ok := typeFieldIndex(rv.Type())
	if !ok {
		return reflect.Value{}, false
	}
	return rv.Field(i), true
}

func discriminator(v any) (string, bool) {
	if !truthy(v) {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}
