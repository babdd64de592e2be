package ionvalue

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/amazon-ion/ion-go/ion"
)

/*
 * Ion text rendering.
 *
 * Renders a Value tree back to Ion text that ion-go can re-read. ion-go does
 * not provide a document model, so rendering walks our own tree: annotations,
 * typed nulls, symbol quoting, string escaping, base64 blobs, and nested
 * containers. The output is a single-line canonical-ish form intended for
 * error messages, CLI output, and feeding ion.Unmarshal; it makes no attempt
 * to preserve source formatting.
 */

// String renders v as Ion text.
func (v *Value) String() string {
	var sb strings.Builder
	v.encode(&sb)
	return sb.String()
}

func (v *Value) encode(sb *strings.Builder) {
	if v == nil {
		sb.WriteString("null")
		return
	}
	for _, a := range v.annotations {
		writeSymbol(sb, a)
		sb.WriteString("::")
	}
	if v.null {
		sb.WriteString(nullText(v.typ))
		return
	}
	switch v.typ {
	case ion.BoolType:
		sb.WriteString(strconv.FormatBool(v.boolVal))
	case ion.IntType:
		sb.WriteString(v.intVal.String())
	case ion.FloatType:
		sb.WriteString(formatFloat(v.floatVal))
	case ion.DecimalType:
		sb.WriteString(v.decVal.String())
	case ion.TimestampType:
		sb.WriteString(v.tsVal.String())
	case ion.StringType:
		writeString(sb, v.textVal)
	case ion.SymbolType:
		writeSymbol(sb, v.textVal)
	case ion.BlobType:
		sb.WriteString("{{")
		sb.WriteString(base64.StdEncoding.EncodeToString(v.byteVal))
		sb.WriteString("}}")
	case ion.ClobType:
		sb.WriteString("{{")
		writeClobText(sb, v.byteVal)
		sb.WriteString("}}")
	case ion.ListType:
		sb.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.encode(sb)
		}
		sb.WriteByte(']')
	case ion.SexpType:
		sb.WriteByte('(')
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteByte(' ')
			}
			e.encode(sb)
		}
		sb.WriteByte(')')
	case ion.StructType:
		sb.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeSymbol(sb, f.Name)
			sb.WriteByte(':')
			f.Value.encode(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("null")
	}
}

func nullText(t ion.Type) string {
	switch t {
	case ion.BoolType:
		return "null.bool"
	case ion.IntType:
		return "null.int"
	case ion.FloatType:
		return "null.float"
	case ion.DecimalType:
		return "null.decimal"
	case ion.TimestampType:
		return "null.timestamp"
	case ion.SymbolType:
		return "null.symbol"
	case ion.StringType:
		return "null.string"
	case ion.ClobType:
		return "null.clob"
	case ion.BlobType:
		return "null.blob"
	case ion.ListType:
		return "null.list"
	case ion.SexpType:
		return "null.sexp"
	case ion.StructType:
		return "null.struct"
	}
	return "null"
}

// formatFloat renders an Ion float. Ion text requires an exponent (or a
// special form) to distinguish floats from ints and decimals.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	return s
}

// isIdentifierSymbol reports whether s can appear unquoted in Ion text.
func isIdentifierSymbol(s string) bool {
	if s == "" {
		return false
	}
	switch s {
	case "null", "true", "false", "nan":
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
		if alpha {
			continue
		}
		if c >= '0' && c <= '9' && i > 0 {
			continue
		}
		return false
	}
	return true
}

func writeSymbol(sb *strings.Builder, s string) {
	if isIdentifierSymbol(s) {
		sb.WriteString(s)
		return
	}
	sb.WriteByte('\'')
	writeEscaped(sb, s, '\'')
	sb.WriteByte('\'')
}

func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	writeEscaped(sb, s, '"')
	sb.WriteByte('"')
}

func writeClobText(sb *strings.Builder, b []byte) {
	sb.WriteByte('"')
	for _, c := range b {
		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			sb.WriteString("\\x")
			sb.WriteString(hexByte(c))
		}
	}
	sb.WriteByte('"')
}

func writeEscaped(sb *strings.Builder, s string, quote byte) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20:
			sb.WriteString("\\x")
			sb.WriteString(hexByte(c))
		default:
			sb.WriteByte(c)
		}
	}
}

func hexByte(c byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[c>>4], digits[c&0x0f]})
}
