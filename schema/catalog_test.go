package schema

import (
	"bytes"
	"encoding/binary"
	"testing"

	"sqliteql/pager"
	"sqliteql/varint"
)

func encodeTextColumn(s string) (serial uint64, body []byte) {
	return uint64(13 + 2*len(s)), []byte(s)
}

func encodeIntColumn(v int64) (serial uint64, body []byte) {
	return 1, []byte{byte(v)}
}

func schemaRecord(typ, name, tblName string, root int64, sql string) []byte {
	cols := []struct {
		serial uint64
		body   []byte
	}{}
	add := func(s uint64, b []byte) {
		cols = append(cols, struct {
			serial uint64
			body   []byte
		}{s, b})
	}
	s, b := encodeTextColumn(typ)
	add(s, b)
	s, b = encodeTextColumn(name)
	add(s, b)
	s, b = encodeTextColumn(tblName)
	add(s, b)
	s, b = encodeIntColumn(root)
	add(s, b)
	s, b = encodeTextColumn(sql)
	add(s, b)

	var header []byte
	var body []byte
	for _, c := range cols {
		header = varint.Encode(header, c.serial)
		body = append(body, c.body...)
	}
	headerSize := uint64(len(header) + 1)
	for {
		candidate := uint64(varint.Len(headerSize) + len(header))
		if candidate == headerSize {
			break
		}
		headerSize = candidate
	}
	out := varint.Encode(nil, headerSize)
	out = append(out, header...)
	out = append(out, body...)
	return out
}

func buildCatalogFixture(pageSize int, entries [][5]string) []byte {
	buf := make([]byte, pageSize)
	buf[100] = 0x0d // TableLeaf
	binary.BigEndian.PutUint16(buf[103:], uint16(len(entries)))

	cursor := len(buf)
	ptrs := make([]int, len(entries))
	for i, e := range entries {
		var root int64
		switch e[3] {
		case "2":
			root = 2
		case "3":
			root = 3
		default:
			root = 2
		}
		payload := schemaRecord(e[0], e[1], e[2], root, e[4])
		var cell []byte
		cell = varint.Encode(cell, uint64(len(payload)))
		cell = varint.Encode(cell, uint64(i+1))
		cell = append(cell, payload...)
		cursor -= len(cell)
		copy(buf[cursor:], cell)
		ptrs[i] = cursor
	}
	binary.BigEndian.PutUint16(buf[100+5:], uint16(cursor))
	for i, p := range ptrs {
		binary.BigEndian.PutUint16(buf[100+8+2*i:], uint16(p))
	}
	return buf
}

func TestLoadCatalog(t *testing.T) {
	pageSize := 1024
	buf := buildCatalogFixture(pageSize, [][5]string{
		{"table", "apples", "apples", "2", "CREATE TABLE apples (id integer primary key autoincrement, name text, color text)"},
		{"index", "idx_apples_color", "apples", "3", "CREATE INDEX idx_apples_color ON apples(color)"},
	})
	pgr := pager.New(bytes.NewReader(buf), pageSize, 3, nil)

	cat, err := LoadCatalog(pgr)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(cat.Entries) != 2 {
		t.Fatalf("len(Entries) = %v, want 2", len(cat.Entries))
	}

	names := cat.TableNames(true)
	if len(names) != 1 || names[0] != "apples" {
		t.Errorf("TableNames() = %v, want [apples]", names)
	}

	idxs := cat.IndexesOn("apples")
	if len(idxs) != 1 || idxs[0].Name != "idx_apples_color" {
		t.Errorf("IndexesOn(apples) = %v", idxs)
	}

	if _, err := cat.Table("oranges"); err == nil {
		t.Errorf("Table(oranges) should error, table does not exist")
	}
}
