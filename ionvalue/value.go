// Package ionvalue provides an immutable in-memory tree for Amazon Ion
// values.
//
// ion-go exposes a streaming reader/writer but no document model, so this
// package carries the tree the cascading configuration engine operates on:
// every Ion type including typed nulls, annotations on any value, ordered
// struct fields with repeatable names, and arbitrary-precision ints and
// decimals. Values are built by the decoder in this package (or by the
// constructors below) and must not be mutated afterwards; the engine hands
// out clones where callers could otherwise reach interned state.
package ionvalue

import (
	"bytes"
	"math"
	"math/big"

	"github.com/amazon-ion/ion-go/ion"
)

// Field is one entry of a struct value. Names may repeat within a struct.
type Field struct {
	Name  string
	Value *Value
}

// Value is a single node of an Ion data tree.
type Value struct {
	typ         ion.Type
	null        bool
	annotations []string

	boolVal  bool
	intVal   *big.Int
	decVal   *ion.Decimal
	floatVal float64
	textVal  string // string and symbol
	tsVal    ion.Timestamp
	byteVal  []byte // blob and clob
	elems    []*Value
	fields   []Field
}

// NewNull returns a typed null. Use ion.NullType for the untyped null.
func NewNull(t ion.Type) *Value {
	return &Value{typ: t, null: true}
}

// NewBool returns a bool value.
func NewBool(b bool) *Value {
	return &Value{typ: ion.BoolType, boolVal: b}
}

// NewInt returns an int value.
func NewInt(i int64) *Value {
	return &Value{typ: ion.IntType, intVal: big.NewInt(i)}
}

// NewBigInt returns an int value holding a copy of i.
func NewBigInt(i *big.Int) *Value {
	return &Value{typ: ion.IntType, intVal: new(big.Int).Set(i)}
}

// NewDecimal returns a decimal value.
func NewDecimal(d *ion.Decimal) *Value {
	return &Value{typ: ion.DecimalType, decVal: d}
}

// NewFloat returns a float value.
func NewFloat(f float64) *Value {
	return &Value{typ: ion.FloatType, floatVal: f}
}

// NewString returns a string value.
func NewString(s string) *Value {
	return &Value{typ: ion.StringType, textVal: s}
}

// NewSymbol returns a symbol value.
func NewSymbol(s string) *Value {
	return &Value{typ: ion.SymbolType, textVal: s}
}

// NewTimestamp returns a timestamp value.
func NewTimestamp(ts ion.Timestamp) *Value {
	return &Value{typ: ion.TimestampType, tsVal: ts}
}

// NewBlob returns a blob value holding a copy of b.
func NewBlob(b []byte) *Value {
	return &Value{typ: ion.BlobType, byteVal: bytes.Clone(b)}
}

// NewClob returns a clob value holding a copy of b.
func NewClob(b []byte) *Value {
	return &Value{typ: ion.ClobType, byteVal: bytes.Clone(b)}
}

// NewList returns a list of the given elements.
func NewList(elems ...*Value) *Value {
	return &Value{typ: ion.ListType, elems: elems}
}

// NewSexp returns an s-expression of the given elements.
func NewSexp(elems ...*Value) *Value {
	return &Value{typ: ion.SexpType, elems: elems}
}

// NewStruct returns a struct with the given fields in order.
func NewStruct(fields ...Field) *Value {
	return &Value{typ: ion.StructType, fields: fields}
}

// WithAnnotations returns a copy of v carrying the given annotations.
func (v *Value) WithAnnotations(annotations ...string) *Value {
	c := v.shallowCopy()
	c.annotations = annotations
	return c
}

// Type reports the Ion type of v. Typed nulls report their type, the untyped
// null reports ion.NullType.
func (v *Value) Type() ion.Type {
	return v.typ
}

// IsNull reports whether v is a null of any type.
func (v *Value) IsNull() bool {
	return v.null
}

// IsText reports whether v is a non-null string or symbol.
func (v *Value) IsText() bool {
	return !v.null && (v.typ == ion.StringType || v.typ == ion.SymbolType)
}

// Annotations returns the value's annotations in order.
func (v *Value) Annotations() []string {
	if len(v.annotations) == 0 {
		return nil
	}
	out := make([]string, len(v.annotations))
	copy(out, v.annotations)
	return out
}

// Bool returns the bool payload. The second return is false for nulls and
// non-bool values.
func (v *Value) Bool() (bool, bool) {
	if v.null || v.typ != ion.BoolType {
		return false, false
	}
	return v.boolVal, true
}

// Int returns the integer payload as a copy.
func (v *Value) Int() (*big.Int, bool) {
	if v.null || v.typ != ion.IntType || v.intVal == nil {
		return nil, false
	}
	return new(big.Int).Set(v.intVal), true
}

// Int64 returns the integer payload when it fits into an int64 exactly.
func (v *Value) Int64() (int64, bool) {
	i, ok := v.Int()
	if !ok || !i.IsInt64() {
		return 0, false
	}
	return i.Int64(), true
}

// Decimal returns the decimal payload.
func (v *Value) Decimal() (*ion.Decimal, bool) {
	if v.null || v.typ != ion.DecimalType || v.decVal == nil {
		return nil, false
	}
	return v.decVal, true
}

// Float returns the float payload.
func (v *Value) Float() (float64, bool) {
	if v.null || v.typ != ion.FloatType {
		return 0, false
	}
	return v.floatVal, true
}

// Text returns the text of a string or symbol value.
func (v *Value) Text() (string, bool) {
	if !v.IsText() {
		return "", false
	}
	return v.textVal, true
}

// Timestamp returns the timestamp payload.
func (v *Value) Timestamp() (ion.Timestamp, bool) {
	if v.null || v.typ != ion.TimestampType {
		return ion.Timestamp{}, false
	}
	return v.tsVal, true
}

// Bytes returns a copy of a blob or clob payload.
func (v *Value) Bytes() ([]byte, bool) {
	if v.null || (v.typ != ion.BlobType && v.typ != ion.ClobType) {
		return nil, false
	}
	return bytes.Clone(v.byteVal), true
}

// Len reports the element count of a list or sexp, or the field count of a
// struct. Zero for anything else.
func (v *Value) Len() int {
	if v.null {
		return 0
	}
	switch v.typ {
	case ion.ListType, ion.SexpType:
		return len(v.elems)
	case ion.StructType:
		return len(v.fields)
	}
	return 0
}

// Elements returns the elements of a list or sexp in order.
func (v *Value) Elements() []*Value {
	if v.null || (v.typ != ion.ListType && v.typ != ion.SexpType) {
		return nil
	}
	out := make([]*Value, len(v.elems))
	copy(out, v.elems)
	return out
}

// Fields returns the fields of a struct in order.
func (v *Value) Fields() []Field {
	if v.null || v.typ != ion.StructType {
		return nil
	}
	out := make([]Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// FieldByName returns the first field with the given name.
func (v *Value) FieldByName(name string) (*Value, bool) {
	if v.null || v.typ != ion.StructType {
		return nil, false
	}
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Clone deep-copies v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := v.shallowCopy()
	if v.intVal != nil {
		c.intVal = new(big.Int).Set(v.intVal)
	}
	if v.byteVal != nil {
		c.byteVal = bytes.Clone(v.byteVal)
	}
	if v.elems != nil {
		c.elems = make([]*Value, len(v.elems))
		for i, e := range v.elems {
			c.elems[i] = e.Clone()
		}
	}
	if v.fields != nil {
		c.fields = make([]Field, len(v.fields))
		for i, f := range v.fields {
			c.fields[i] = Field{Name: f.Name, Value: f.Value.Clone()}
		}
	}
	return c
}

func (v *Value) shallowCopy() *Value {
	c := *v
	if len(v.annotations) > 0 {
		c.annotations = make([]string, len(v.annotations))
		copy(c.annotations, v.annotations)
	}
	return &c
}

// Equal reports Ion equivalence: same type, same annotations, and equal
// payloads. Struct fields compare as a name-keyed multiset, so field order
// does not matter; list and sexp order does.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.typ != o.typ || v.null != o.null {
		return false
	}
	if len(v.annotations) != len(o.annotations) {
		return false
	}
	for i, a := range v.annotations {
		if o.annotations[i] != a {
			return false
		}
	}
	if v.null {
		return true
	}
	switch v.typ {
	case ion.BoolType:
		return v.boolVal == o.boolVal
	case ion.IntType:
		return v.intVal.Cmp(o.intVal) == 0
	case ion.FloatType:
		if math.IsNaN(v.floatVal) && math.IsNaN(o.floatVal) {
			return true
		}
		return v.floatVal == o.floatVal
	case ion.DecimalType:
		return v.decVal.String() == o.decVal.String()
	case ion.TimestampType:
		return v.tsVal.String() == o.tsVal.String()
	case ion.StringType, ion.SymbolType:
		return v.textVal == o.textVal
	case ion.BlobType, ion.ClobType:
		return bytes.Equal(v.byteVal, o.byteVal)
	case ion.ListType, ion.SexpType:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i, e := range v.elems {
			if !e.Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case ion.StructType:
		return structFieldsEqual(v.fields, o.fields)
	}
	return true
}

// structFieldsEqual matches fields as a multiset keyed by name: every field
// of a must pair with a distinct, equal field of b.
func structFieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, fa := range a {
		found := false
		for i, fb := range b {
			if used[i] || fa.Name != fb.Name {
				continue
			}
			if fa.Value.Equal(fb.Value) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
