package dispatch

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
)

var (
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
)

// Coerce converts a DynamicValue (the JSON-shaped {nil, bool, float64,
// string, []any, map[string]any} produced by encoding/json decoding into
// `any`) to a Go value assignable to target, per spec's coercion-kind
// table. The universal top type (interface{} with no methods) accepts any
// kind.
func Coerce(v any, target reflect.Type) (reflect.Value, error) {
	if target.Kind() == reflect.Interface && target.NumMethod() == 0 {
		if v == nil {
			return reflect.Zero(target), nil
		}
		return reflect.ValueOf(v), nil
	}

	if v == nil {
		switch target.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
			return reflect.Zero(target), nil
		default:
			return reflect.Value{}, fmt.Errorf("dispatch: null not permitted for primitive parameter type %s", target)
		}
	}

	switch val := v.(type) {
	case bool:
		if target.Kind() == reflect.Bool {
			return reflect.ValueOf(val).Convert(target), nil
		}
		return reflect.Value{}, fmt.Errorf("dispatch: boolean value not assignable to %s", target)

	case string:
		if target.Kind() == reflect.String {
			return reflect.ValueOf(val).Convert(target), nil
		}
		return reflect.Value{}, fmt.Errorf("dispatch: string value not assignable to %s", target)

	case float64:
		return coerceNumber(val, target)

	case []any:
		return coerceArray(val, target)

	case map[string]any:
		return coerceObject(val, target)

	default:
		return reflect.Value{}, fmt.Errorf("dispatch: unrecognized dynamic value kind %T", v)
	}
}

func coerceNumber(val float64, target reflect.Type) (reflect.Value, error) {
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return reflect.ValueOf(val).Convert(target), nil
	}
	switch target {
	case bigIntType, reflect.PtrTo(bigIntType):
		bi := big.NewInt(int64(val))
		if target.Kind() == reflect.Ptr {
			return reflect.ValueOf(bi), nil
		}
		return reflect.ValueOf(*bi), nil
	case bigFloatType, reflect.PtrTo(bigFloatType):
		bf := big.NewFloat(val)
		if target.Kind() == reflect.Ptr {
			return reflect.ValueOf(bf), nil
		}
		return reflect.ValueOf(*bf), nil
	}
	return reflect.Value{}, fmt.Errorf("dispatch: numeric value not assignable to %s", target)
}

func coerceArray(val []any, target reflect.Type) (reflect.Value, error) {
	switch target.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(target, len(val), len(val))
		for i, elem := range val {
			cv, err := Coerce(elem, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(cv)
		}
		return out, nil
	case reflect.Array:
		if target.Len() != len(val) {
			return reflect.Value{}, fmt.Errorf("dispatch: array length mismatch: want %d got %d", target.Len(), len(val))
		}
		out := reflect.New(target).Elem()
		for i, elem := range val {
			cv, err := Coerce(elem, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(cv)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("dispatch: array-shaped value not assignable to %s", target)
}

// coerceObject handles the open-world "object" parameter case: per
// SPEC_FULL.md §4.2 this is a JSON-style field-by-name deserialization into
// the target type, implemented as a marshal-then-unmarshal round trip
// through encoding/json rather than a hand-rolled field walk, since the
// target type is arbitrary user-defined struct shape.
func coerceObject(val map[string]any, target reflect.Type) (reflect.Value, error) {
	switch target.Kind() {
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64,
		reflect.Slice, reflect.Array:
		return reflect.Value{}, fmt.Errorf("dispatch: object-shaped value not assignable to %s", target)
	}

	raw, err := json.Marshal(val)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("dispatch: re-marshalling object value: %w", err)
	}
	out := reflect.New(target)
	if err := json.Unmarshal(raw, out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("dispatch: decoding object value into %s: %w", target, err)
	}
	return out.Elem(), nil
}

// CoerceSilent implements DESIGN.md's Open Question 3 resolution: when any
// value can't be decoded by Coerce, fall back to its fmt "%v" rendering for
// a string-kinded target, or to the target's zero value otherwise, rather
// than failing the call. Used only by
// Write, where there is no overload set whose shape disambiguation depends
// on a hard coercion failure; CoerceSilent itself never errors.
func CoerceSilent(v any, target reflect.Type) reflect.Value {
	cv, err := Coerce(v, target)
	if err == nil {
		return cv
	}
	s := fmt.Sprintf("%v", v)
	if target.Kind() == reflect.String {
		return reflect.ValueOf(s).Convert(target)
	}
	return reflect.Zero(target)
}
