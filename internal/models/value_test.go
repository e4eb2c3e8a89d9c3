package models

import (
	"encoding/json"
	"testing"
)

func TestValue_EqualIsStrict(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", StringValue("USD"), StringValue("USD"), true},
		{"different string", StringValue("USD"), StringValue("EUR"), false},
		{"number vs string", NumberValue(1), StringValue("1"), false},
		{"bool vs number", BoolValue(true), NumberValue(1), false},
		{"same bool", BoolValue(false), BoolValue(false), true},
		{"undefined vs false", Value{}, BoolValue(false), false},
		{"undefined vs empty string", Value{}, StringValue(""), false},
		{"undefined vs undefined", Value{}, Value{}, true},
	}
	for _, tc := range cases {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Errorf("%s: Equal = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValue_JSONDecode(t *testing.T) {
	var got struct {
		S Value `json:"s"`
		N Value `json:"n"`
		B Value `json:"b"`
		U Value `json:"u"`
	}
	if err := json.Unmarshal([]byte(`{"s":"EUR","n":25,"b":true,"u":null}`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.S.Equal(StringValue("EUR")) {
		t.Errorf("s = %v", got.S)
	}
	if !got.N.Equal(NumberValue(25)) {
		t.Errorf("n = %v", got.N)
	}
	if !got.B.Equal(BoolValue(true)) {
		t.Errorf("b = %v", got.B)
	}
	if got.U.IsDefined() {
		t.Errorf("u = %v, want undefined", got.U)
	}
}

func TestValue_JSONRejectsObjects(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"nested":1}`), &v); err == nil {
		t.Fatal("expected error for object value")
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &v); err == nil {
		t.Fatal("expected error for array value")
	}
}

func TestValue_JSONEncode(t *testing.T) {
	b, err := json.Marshal(Values{"currency": StringValue("JPY"), "rows": NumberValue(20), "sync": BoolValue(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"currency":"JPY","rows":20,"sync":false}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestValueOf_StorageScalars(t *testing.T) {
	// Firestore hands back whole numbers as int64.
	v, err := ValueOf(int64(10))
	if err != nil || !v.Equal(NumberValue(10)) {
		t.Fatalf("int64: got %v, %v", v, err)
	}
	if _, err := ValueOf([]string{"x"}); err == nil {
		t.Fatal("expected error for slice")
	}

	vals, err := ValuesOf(map[string]any{"a": "x", "b": 1.5, "c": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain := vals.Plain()
	if plain["a"] != "x" || plain["b"] != 1.5 || plain["c"] != true {
		t.Errorf("round trip mismatch: %v", plain)
	}
}

func TestValues_CloneDoesNotAlias(t *testing.T) {
	orig := Values{"k": StringValue("a")}
	c := orig.Clone()
	c["k"] = StringValue("b")
	if !orig["k"].Equal(StringValue("a")) {
		t.Fatal("clone aliased the original map")
	}

	var nilVals Values
	if nilVals.Get("missing").IsDefined() {
		t.Fatal("expected undefined from nil map")
	}
	if nilVals.Clone() == nil {
		t.Fatal("expected non-nil clone of nil map")
	}
}

func TestConfigOption_Accepts(t *testing.T) {
	min, max := 5.0, 50.0
	slider := ConfigOption{Key: "rows", Type: TypeNumber, UIControl: ControlSlider, Min: &min, Max: &max}
	dropdown := ConfigOption{
		Key: "currency", Type: TypeString, UIControl: ControlDropdown,
		Options: []Value{StringValue("USD"), StringValue("EUR")},
	}

	if err := slider.Accepts(NumberValue(20)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := slider.Accepts(NumberValue(60)); err == nil {
		t.Error("expected range error")
	}
	if err := slider.Accepts(StringValue("20")); err == nil {
		t.Error("expected type error")
	}
	if err := dropdown.Accepts(StringValue("EUR")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := dropdown.Accepts(StringValue("CHF")); err == nil {
		t.Error("expected option error")
	}
	if err := dropdown.Accepts(Value{}); err == nil {
		t.Error("expected undefined to be rejected")
	}
}
