// Package page decodes one b-tree page: its header, cell-pointer array,
// and each cell as one of the four table/index leaf/interior variants.
package page

import (
	"encoding/binary"

	"sqliteql/errs"
	"sqliteql/record"
	"sqliteql/varint"
)

// Type identifies which of the four b-tree page shapes a page decodes to.
type Type byte

const (
	IndexInterior Type = 0x02
	TableInterior Type = 0x05
	IndexLeaf     Type = 0x0a
	TableLeaf     Type = 0x0d
)

func (t Type) isLeaf() bool { return t == TableLeaf || t == IndexLeaf }

func (t Type) headerSize() int {
	if t.isLeaf() {
		return 8
	}
	return 12
}

func (t Type) valid() bool {
	switch t {
	case IndexInterior, TableInterior, IndexLeaf, TableLeaf:
		return true
	default:
		return false
	}
}

// Cell is a tagged union over the four cell shapes a page can hold.
type Cell struct {
	Type      Type
	RowID     int64          // TableLeaf, TableInterior
	LeftChild uint32         // TableInterior, IndexInterior
	Record    *record.Record // TableLeaf, IndexLeaf, IndexInterior
}

// ColumnValue reads the i-th logical column of a TableLeaf cell, honoring
// the rule that an INTEGER PRIMARY KEY column is an alias for the row-id
// and is stored as NULL in the record body rather than as real data.
func (c Cell) ColumnValue(i, pkIndex int) (record.Value, error) {
	if i == pkIndex {
		return record.Value{Kind: record.Int, Int: c.RowID}, nil
	}
	return c.Record.Column(i)
}

// Page is one decoded b-tree page.
type Page struct {
	Number       int
	Type         Type
	NCells       int
	ContentStart int
	Freeblock    int
	Fragmented   int
	RightMost    uint32 // only meaningful for interior pages
	Cells        []Cell
}

// Decode parses data (exactly one page's worth of bytes, including the
// 100-byte file header on page 1) into a Page. number is the 1-based page
// number, used only to locate the 100-byte offset on page 1.
func Decode(data []byte, number int) (*Page, error) {
	off := 0
	if number == 1 {
		off = 100
	}
	if len(data) < off+8 {
		return nil, errs.New("page.Decode", errs.Malformed, errShort)
	}

	typ := Type(data[off])
	if !typ.valid() {
		return nil, errs.Newf("page.Decode", errs.Malformed, errs.ErrInvalidPageType,
			map[string]any{"page": number, "byte": data[off]})
	}

	p := &Page{
		Number:       number,
		Type:         typ,
		Freeblock:    int(binary.BigEndian.Uint16(data[off+1:])),
		NCells:       int(binary.BigEndian.Uint16(data[off+3:])),
		ContentStart: int(binary.BigEndian.Uint16(data[off+5:])),
		Fragmented:   int(data[off+7]),
	}
	if p.ContentStart == 0 {
		p.ContentStart = 65536
	}

	hdrSize := typ.headerSize()
	if !typ.isLeaf() {
		if len(data) < off+12 {
			return nil, errs.New("page.Decode", errs.Malformed, errShort)
		}
		p.RightMost = binary.BigEndian.Uint32(data[off+8:])
	}

	ptrBase := off + hdrSize
	if len(data) < ptrBase+2*p.NCells {
		return nil, errs.New("page.Decode", errs.Malformed, errShort)
	}

	cells := make([]Cell, p.NCells)
	prevOffset := len(data)
	for i := 0; i < p.NCells; i++ {
		ptr := int(binary.BigEndian.Uint16(data[ptrBase+2*i:]))
		if ptr <= 0 || ptr > prevOffset || ptr >= len(data) {
			return nil, errs.New("page.Decode", errs.Malformed, errCellPointer)
		}
		cell, err := decodeCell(typ, data[ptr:prevOffset])
		if err != nil {
			return nil, err
		}
		cells[i] = cell
		prevOffset = ptr
	}
	p.Cells = cells

	if prevOffset < p.ContentStart {
		return nil, errs.New("page.Decode", errs.Malformed, errCursorOverrun)
	}

	return p, nil
}

// decodeCell decodes one cell. buf starts at the cell's own pointer and
// extends to the start of the previous (higher-offset) cell, which is
// always enough bytes for any cell shape this engine supports.
func decodeCell(typ Type, buf []byte) (Cell, error) {
	switch typ {
	case TableLeaf:
		size, n, err := varint.Decode(buf)
		if err != nil {
			return Cell{}, errs.New("page.decodeCell", errs.Malformed, err)
		}
		rowID, n2, err := varint.Decode(buf[n:])
		if err != nil {
			return Cell{}, errs.New("page.decodeCell", errs.Malformed, err)
		}
		start := n + n2
		if start+int(size) > len(buf) {
			return Cell{}, errs.New("page.decodeCell", errs.Unsupported, errs.ErrOverflowPage)
		}
		rec, err := record.Decode(buf[start : start+int(size)])
		if err != nil {
			return Cell{}, err
		}
		return Cell{Type: typ, RowID: rowID, Record: rec}, nil

	case TableInterior:
		if len(buf) < 4 {
			return Cell{}, errs.New("page.decodeCell", errs.Malformed, errShort)
		}
		left := binary.BigEndian.Uint32(buf)
		rowID, _, err := varint.Decode(buf[4:])
		if err != nil {
			return Cell{}, errs.New("page.decodeCell", errs.Malformed, err)
		}
		return Cell{Type: typ, LeftChild: left, RowID: rowID}, nil

	case IndexLeaf:
		size, n, err := varint.Decode(buf)
		if err != nil {
			return Cell{}, errs.New("page.decodeCell", errs.Malformed, err)
		}
		if n+int(size) > len(buf) {
			return Cell{}, errs.New("page.decodeCell", errs.Unsupported, errs.ErrOverflowPage)
		}
		rec, err := record.Decode(buf[n : n+int(size)])
		if err != nil {
			return Cell{}, err
		}
		return Cell{Type: typ, Record: rec}, nil

	case IndexInterior:
		if len(buf) < 4 {
			return Cell{}, errs.New("page.decodeCell", errs.Malformed, errShort)
		}
		left := binary.BigEndian.Uint32(buf)
		size, n, err := varint.Decode(buf[4:])
		if err != nil {
			return Cell{}, errs.New("page.decodeCell", errs.Malformed, err)
		}
		start := 4 + n
		if start+int(size) > len(buf) {
			return Cell{}, errs.New("page.decodeCell", errs.Unsupported, errs.ErrOverflowPage)
		}
		rec, err := record.Decode(buf[start : start+int(size)])
		if err != nil {
			return Cell{}, err
		}
		return Cell{Type: typ, LeftChild: left, Record: rec}, nil

	default:
		return Cell{}, errs.New("page.decodeCell", errs.Malformed, errs.ErrInvalidPageType)
	}
}

type pageError string

func (e pageError) Error() string { return string(e) }

const (
	errShort         pageError = "page too short for its header"
	errCellPointer    pageError = "cell pointer out of range"
	errCursorOverrun pageError = "cell cursor crossed content start"
)
