// Package record decodes the packed row/index-key format shared by table
// and index b-tree cells: a header of serial-type varints followed by a
// body of concatenated column bytes.
package record

import (
	"encoding/binary"
	"math"

	"sqliteql/errs"
	"sqliteql/varint"
)

type column struct {
	typ    Type
	serial uint64 // raw serial-type varint, needed to tell constants 0 vs 1 apart
	width  int
	offset int // offset into body
}

// Record is a decoded row or index-key payload with typed, random-access
// column lookup.
type Record struct {
	columns []column
	body    []byte
}

// Decode parses payload as a record: a header-size varint (the size counts
// the varint's own bytes), the rest of the header as per-column
// serial-type varints, then the column bodies.
func Decode(payload []byte) (*Record, error) {
	h, hn, err := varint.Decode(payload)
	if err != nil {
		return nil, errs.New("record.Decode", errs.Malformed, err)
	}
	headerSize := int(h)
	if headerSize < hn || headerSize > len(payload) {
		return nil, errs.New("record.Decode", errs.Malformed, errBadHeaderSize)
	}

	var cols []column
	pos := hn
	bodyOffset := 0
	for pos < headerSize {
		st, n, err := varint.Decode(payload[pos:])
		if err != nil {
			return nil, errs.New("record.Decode", errs.Malformed, err)
		}
		typ, width, err := decodeSerialType(uint64(st))
		if err != nil {
			return nil, err
		}
		cols = append(cols, column{typ: typ, serial: uint64(st), width: width, offset: bodyOffset})
		bodyOffset += width
		pos += n
	}

	body := payload[headerSize:]
	if bodyOffset > len(body) {
		return nil, errs.New("record.Decode", errs.Malformed, errBodyTooShort)
	}

	return &Record{columns: cols, body: body}, nil
}

// ColumnCount returns the number of columns in the record header.
func (r *Record) ColumnCount() int {
	return len(r.columns)
}

// Column decodes the i-th column's value.
func (r *Record) Column(i int) (Value, error) {
	if i < 0 || i >= len(r.columns) {
		return Value{}, errs.New("record.Column", errs.OutOfRange, errColumnIndex)
	}
	c := r.columns[i]

	switch c.typ {
	case Null:
		return Value{Kind: Null}, nil
	case Int:
		return Value{Kind: Int, Int: decodeInt(c, r.body)}, nil
	case Float:
		bits := binary.BigEndian.Uint64(r.body[c.offset : c.offset+8])
		return Value{Kind: Float, Float: math.Float64frombits(bits)}, nil
	case Text:
		return Value{Kind: Text, Text: string(r.body[c.offset : c.offset+c.width])}, nil
	case Blob:
		return Value{Kind: Blob, Blob: r.body[c.offset : c.offset+c.width]}, nil
	default:
		return Value{}, errs.New("record.Column", errs.Malformed, errUnknownType)
	}
}

// decodeInt handles serial types 1-6 (1/2/3/4/6/8-byte two's complement
// integers) and the zero-width constants 0 and 1 for serial types 8/9.
func decodeInt(c column, body []byte) int64 {
	switch c.width {
	case 0:
		if c.serial == 9 {
			return 1
		}
		return 0
	case 1:
		return int64(int8(body[c.offset]))
	case 2:
		return int64(int16(binary.BigEndian.Uint16(body[c.offset : c.offset+2])))
	case 3:
		return int64(signExtend24(body[c.offset : c.offset+3]))
	case 4:
		return int64(int32(binary.BigEndian.Uint32(body[c.offset : c.offset+4])))
	case 6:
		return signExtend48(body[c.offset : c.offset+6])
	case 8:
		return int64(binary.BigEndian.Uint64(body[c.offset : c.offset+8]))
	default:
		return 0
	}
}

func signExtend24(b []byte) int32 {
	var buf [4]byte
	if b[0]&0x80 != 0 {
		buf[0] = 0xff
	}
	buf[1], buf[2], buf[3] = b[0], b[1], b[2]
	return int32(binary.BigEndian.Uint32(buf[:]))
}

func signExtend48(b []byte) int64 {
	var buf [8]byte
	if b[0]&0x80 != 0 {
		buf[0], buf[1] = 0xff, 0xff
	}
	copy(buf[2:], b)
	return int64(binary.BigEndian.Uint64(buf[:]))
}

type recordError string

func (e recordError) Error() string { return string(e) }

const (
	errBadHeaderSize recordError = "record header size exceeds payload"
	errBodyTooShort  recordError = "record body shorter than declared column widths"
	errColumnIndex   recordError = "column index out of range"
	errUnknownType   recordError = "unknown column type"
)
