package record

import "strconv"

// Value is a decoded column value. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	Kind  Type
	Int   int64
	Float float64
	Text  string
	Blob  []byte
}

// String renders v the way a result row's column is printed: decimal text
// for integers, UTF-8 text verbatim, empty for NULL. BLOB and FLOAT get a
// placeholder rendering only — this engine does not attempt to reproduce
// SQLite's exact floating-point or hex-blob formatting.
func (v Value) String() string {
	switch v.Kind {
	case Null:
		return ""
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case Text:
		return v.Text
	case Blob:
		return ""
	default:
		return ""
	}
}
