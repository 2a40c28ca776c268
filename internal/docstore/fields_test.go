package docstore

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFieldGetters(t *testing.T) {
	data := map[string]any{
		"name":     "Milk",
		"float":    float64(3),
		"int32":    int32(7),
		"numeric":  "12",
		"number":   json.Number("42"),
		"flag":     true,
		"flagStr":  "false",
		"list":     []any{"a", 1, "b"},
		"csv":      "nuts, dairy ,,",
		"typed":    []string{"x"},
		"notAList": 5,
	}

	if got := String(data, "name", "def"); got != "Milk" {
		t.Errorf("String = %q", got)
	}
	if got := String(data, "missing", "def"); got != "def" {
		t.Errorf("String default = %q", got)
	}
	if got := String(data, "float", "def"); got != "def" {
		t.Errorf("String of a number should fall back, got %q", got)
	}

	intCases := map[string]int{"float": 3, "int32": 7, "numeric": 12, "number": 42, "missing": -1, "name": -1}
	for key, want := range intCases {
		if got := Int(data, key, -1); got != want {
			t.Errorf("Int(%s) = %d, want %d", key, got, want)
		}
	}

	if !Bool(data, "flag", false) || Bool(data, "flagStr", true) || !Bool(data, "missing", true) {
		t.Error("Bool getter returned unexpected values")
	}

	stringCases := map[string][]string{
		"list":     {"a", "b"},
		"csv":      {"nuts", "dairy"},
		"typed":    {"x"},
		"notAList": nil,
		"missing":  nil,
	}
	for key, want := range stringCases {
		if got := Strings(data, key); !reflect.DeepEqual(got, want) {
			t.Errorf("Strings(%s) = %v, want %v", key, got, want)
		}
	}
}
