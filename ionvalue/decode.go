package ionvalue

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amazon-ion/ion-go/ion"
)

// ErrNoValue indicates an input that contained no Ion value.
var ErrNoValue = errors.New("input contains no ion value")

// ReadAll decodes every top-level value from r.
func ReadAll(r io.Reader) ([]*Value, error) {
	return readAll(ion.NewReader(r))
}

// ReadAllString decodes every top-level value from Ion text.
func ReadAllString(s string) ([]*Value, error) {
	return ReadAll(strings.NewReader(s))
}

// ReadString decodes a single value from Ion text. Input with zero or more
// than one top-level value is an error.
func ReadString(s string) (*Value, error) {
	values, err := ReadAllString(s)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoValue
	}
	if len(values) > 1 {
		return nil, fmt.Errorf("expected a single ion value, found %d", len(values))
	}
	return values[0], nil
}

// MustReadString is ReadString for tests and static literals; it panics on
// malformed input.
func MustReadString(s string) *Value {
	v, err := ReadString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func readAll(r ion.Reader) ([]*Value, error) {
	var values []*Value
	for r.Next() {
		v, err := fromCurrent(r)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading ion: %w", err)
	}
	return values, nil
}

// fromCurrent decodes the value the reader is positioned on. The caller has
// already called Next.
func fromCurrent(r ion.Reader) (*Value, error) {
	v := &Value{typ: r.Type()}

	annotations, err := r.Annotations()
	if err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}
	for _, tok := range annotations {
		if tok.Text != nil {
			v.annotations = append(v.annotations, *tok.Text)
		}
	}

	if r.IsNull() {
		v.null = true
		return v, nil
	}

	switch v.typ {
	case ion.BoolType:
		b, err := r.BoolValue()
		if err != nil {
			return nil, err
		}
		if b != nil {
			v.boolVal = *b
		}
	case ion.IntType:
		i, err := r.BigIntValue()
		if err != nil {
			return nil, err
		}
		v.intVal = i
	case ion.FloatType:
		f, err := r.FloatValue()
		if err != nil {
			return nil, err
		}
		if f != nil {
			v.floatVal = *f
		}
	case ion.DecimalType:
		d, err := r.DecimalValue()
		if err != nil {
			return nil, err
		}
		v.decVal = d
	case ion.TimestampType:
		ts, err := r.TimestampValue()
		if err != nil {
			return nil, err
		}
		if ts != nil {
			v.tsVal = *ts
		}
	case ion.StringType:
		s, err := r.StringValue()
		if err != nil {
			return nil, err
		}
		if s != nil {
			v.textVal = *s
		}
	case ion.SymbolType:
		tok, err := r.SymbolValue()
		if err != nil {
			return nil, err
		}
		if tok != nil && tok.Text != nil {
			v.textVal = *tok.Text
		}
	case ion.BlobType, ion.ClobType:
		b, err := r.ByteValue()
		if err != nil {
			return nil, err
		}
		v.byteVal = b
	case ion.ListType, ion.SexpType:
		if err := r.StepIn(); err != nil {
			return nil, err
		}
		for r.Next() {
			child, err := fromCurrent(r)
			if err != nil {
				return nil, err
			}
			v.elems = append(v.elems, child)
		}
		if err := r.Err(); err != nil {
			return nil, err
		}
		if err := r.StepOut(); err != nil {
			return nil, err
		}
	case ion.StructType:
		if err := r.StepIn(); err != nil {
			return nil, err
		}
		for r.Next() {
			tok, err := r.FieldName()
			if err != nil {
				return nil, err
			}
			name := ""
			if tok != nil && tok.Text != nil {
				name = *tok.Text
			}
			child, err := fromCurrent(r)
			if err != nil {
				return nil, err
			}
			v.fields = append(v.fields, Field{Name: name, Value: child})
		}
		if err := r.Err(); err != nil {
			return nil, err
		}
		if err := r.StepOut(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported ion type %v", v.typ)
	}

	return v, nil
}
