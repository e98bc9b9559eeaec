package record

import "sqliteql/errs"

// Type is the logical column type a serial type decodes to.
type Type int

const (
	Null Type = iota
	Int
	Float
	Text
	Blob
)

func (t Type) String() string {
	switch t {
	case Null:
		return "null"
	case Int:
		return "int"
	case Float:
		return "float"
	case Text:
		return "text"
	case Blob:
		return "blob"
	default:
		return "unknown"
	}
}

var intWidths = [6]int{1, 2, 3, 4, 6, 8}

// decodeSerialType maps a serial-type varint to its logical type and the
// number of body bytes it occupies. Serial types 8 and 9 (constants 0 and
// 1) and 0 (NULL) occupy zero body bytes; the caller recovers their value
// without touching the body.
func decodeSerialType(v uint64) (Type, int, error) {
	switch {
	case v == 0:
		return Null, 0, nil
	case v >= 1 && v <= 6:
		return Int, intWidths[v-1], nil
	case v == 7:
		return Float, 8, nil
	case v == 8 || v == 9:
		return Int, 0, nil
	case v == 10 || v == 11:
		return Null, 0, errs.New("record.decodeSerialType", errs.Malformed, errs.ErrReservedSerial)
	case v%2 == 0:
		return Blob, int((v - 12) / 2), nil
	default:
		return Text, int((v - 13) / 2), nil
	}
}
