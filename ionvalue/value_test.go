package ionvalue

import (
	"math/big"
	"testing"

	"github.com/amazon-ion/ion-go/ion"
)

func TestReadString_Scalars(t *testing.T) {
	tests := []struct {
		name string
		text string
		typ  ion.Type
	}{
		{name: "bool", text: "true", typ: ion.BoolType},
		{name: "int", text: "42", typ: ion.IntType},
		{name: "big int", text: "123456789012345678901234567890", typ: ion.IntType},
		{name: "float", text: "2.5e0", typ: ion.FloatType},
		{name: "decimal", text: "35.6", typ: ion.DecimalType},
		{name: "string", text: `"hello"`, typ: ion.StringType},
		{name: "symbol", text: "hello", typ: ion.SymbolType},
		{name: "quoted symbol", text: "'field1-true'", typ: ion.SymbolType},
		{name: "timestamp", text: "2021-06-01T12:00:00Z", typ: ion.TimestampType},
		{name: "untyped null", text: "null", typ: ion.NullType},
		{name: "typed null", text: "null.int", typ: ion.IntType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ReadString(tt.text)
			if err != nil {
				t.Fatalf("ReadString(%q) error = %v, want nil", tt.text, err)
			}
			if v.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", v.Type(), tt.typ)
			}
		})
	}
}

func TestReadString_BigInt(t *testing.T) {
	v := MustReadString("123456789012345678901234567890")
	i, ok := v.Int()
	if !ok {
		t.Fatalf("Int() ok = false, want true")
	}
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if i.Cmp(want) != 0 {
		t.Errorf("Int() = %v, want %v", i, want)
	}
}

func TestReadString_Annotations(t *testing.T) {
	v := MustReadString("'namespace'::Example::{}")
	annotations := v.Annotations()
	if len(annotations) != 2 || annotations[0] != "namespace" || annotations[1] != "Example" {
		t.Errorf("Annotations() = %v, want [namespace Example]", annotations)
	}
	if v.Type() != ion.StructType {
		t.Errorf("Type() = %v, want struct", v.Type())
	}
}

func TestReadString_StructRepeatedFields(t *testing.T) {
	v := MustReadString("{a: 1, b: 2, a: 3}")
	fields := v.Fields()
	if len(fields) != 3 {
		t.Fatalf("len(Fields()) = %d, want 3", len(fields))
	}
	if fields[0].Name != "a" || fields[1].Name != "b" || fields[2].Name != "a" {
		t.Errorf("field order = %v %v %v, want a b a", fields[0].Name, fields[1].Name, fields[2].Name)
	}
	first, ok := v.FieldByName("a")
	if !ok {
		t.Fatalf("FieldByName(a) ok = false, want true")
	}
	if i, _ := first.Int64(); i != 1 {
		t.Errorf("FieldByName(a) = %v, want 1", first)
	}
}

func TestReadAllString_MultipleValues(t *testing.T) {
	values, err := ReadAllString("1 2 {a: 3}")
	if err != nil {
		t.Fatalf("ReadAllString() error = %v, want nil", err)
	}
	if len(values) != 3 {
		t.Fatalf("len(values) = %d, want 3", len(values))
	}
}

func TestReadString_Errors(t *testing.T) {
	if _, err := ReadString(""); err == nil {
		t.Errorf("ReadString(empty) error = nil, want error")
	}
	if _, err := ReadString("1 2"); err == nil {
		t.Errorf("ReadString(two values) error = nil, want error")
	}
	if _, err := ReadString("{unclosed"); err == nil {
		t.Errorf("ReadString(malformed) error = nil, want error")
	}
}

func TestEqual_StructOrderIndependent(t *testing.T) {
	a := MustReadString(`{name: "price", template: "wireless"}`)
	b := MustReadString(`{template: "wireless", name: "price"}`)
	if !a.Equal(b) {
		t.Errorf("Equal() = false for reordered structs, want true")
	}
}

func TestEqual_RepeatedFieldsMultiset(t *testing.T) {
	a := MustReadString("{a: 1, a: 2}")
	b := MustReadString("{a: 2, a: 1}")
	c := MustReadString("{a: 1, a: 1}")
	if !a.Equal(b) {
		t.Errorf("Equal() = false for repeated-field permutation, want true")
	}
	if a.Equal(c) {
		t.Errorf("Equal() = true for differing multisets, want false")
	}
}

func TestEqual_ListOrderSignificant(t *testing.T) {
	a := MustReadString("[1, 2]")
	b := MustReadString("[2, 1]")
	if a.Equal(b) {
		t.Errorf("Equal() = true for reordered lists, want false")
	}
}

func TestEqual_Annotations(t *testing.T) {
	a := MustReadString("x::1")
	b := MustReadString("1")
	if a.Equal(b) {
		t.Errorf("Equal() = true despite differing annotations, want false")
	}
}

func TestEqual_Nulls(t *testing.T) {
	if !MustReadString("null.int").Equal(MustReadString("null.int")) {
		t.Errorf("Equal() = false for matching typed nulls, want true")
	}
	if MustReadString("null.int").Equal(MustReadString("null.string")) {
		t.Errorf("Equal() = true for differing typed nulls, want false")
	}
	if MustReadString("null.int").Equal(MustReadString("0")) {
		t.Errorf("Equal() = true for null vs zero, want false")
	}
}

func TestClone_Isolation(t *testing.T) {
	original := MustReadString(`{list: [1, 2], nested: {x: "y"}}`)
	clone := original.Clone()
	if !original.Equal(clone) {
		t.Fatalf("Clone() not Equal to original")
	}
	// Compare node identity to prove the clone does not share its nested
	// nodes with the original.
	cloneList, _ := clone.FieldByName("list")
	origList, _ := original.FieldByName("list")
	if cloneList == origList {
		t.Errorf("Clone() shares list node with original")
	}
}

func TestString_RoundTripsThroughReader(t *testing.T) {
	tests := []string{
		"null",
		"null.struct",
		"true",
		"-42",
		"123456789012345678901234567890",
		"35.6",
		"1.5e0",
		`"a \"quoted\" string"`,
		"'field1-true'",
		"plain",
		"2021-06-01T12:00:00Z",
		"[1, [2, 3], {a: 4}]",
		"(a b 1)",
		"ann::other::{'weird name': [1], x: null.bool}",
		"{{aGVsbG8=}}",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			v := MustReadString(text)
			reparsed, err := ReadString(v.String())
			if err != nil {
				t.Fatalf("ReadString(String()) error = %v for %q", err, v.String())
			}
			if !v.Equal(reparsed) {
				t.Errorf("round trip changed value: %q -> %q", text, v.String())
			}
		})
	}
}

func TestTypedGetters_WrongCategory(t *testing.T) {
	v := MustReadString(`"text"`)
	if _, ok := v.Int(); ok {
		t.Errorf("Int() ok = true on string, want false")
	}
	if _, ok := v.Bool(); ok {
		t.Errorf("Bool() ok = true on string, want false")
	}
	if _, ok := MustReadString("null.string").Text(); ok {
		t.Errorf("Text() ok = true on null.string, want false")
	}
}
