package main

import (
	"encoding/binary"
	"io"
	"os"
	"strings"
	"testing"

	"sqliteql/varint"
)

type fixtureCol struct {
	serial uint64
	body   []byte
}

func fixtureText(s string) fixtureCol { return fixtureCol{uint64(13 + 2*len(s)), []byte(s)} }
func fixtureInt(v int64) fixtureCol   { return fixtureCol{1, []byte{byte(v)}} }
func fixtureNull() fixtureCol         { return fixtureCol{0, nil} }

func fixtureRecord(cols []fixtureCol) []byte {
	var header, body []byte
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

func fixtureTableLeaf(pageSize, pageOffset int, rows [][2]any) []byte {
	buf := make([]byte, pageSize)
	buf[pageOffset] = 0x0d
	binary.BigEndian.PutUint16(buf[pageOffset+3:], uint16(len(rows)))

	cursor := len(buf)
	ptrs := make([]int, len(rows))
	for i, row := range rows {
		rowID := row[0].(int64)
		payload := row[1].([]byte)
		var cell []byte
		cell = varint.Encode(cell, uint64(len(payload)))
		cell = varint.Encode(cell, uint64(rowID))
		cell = append(cell, payload...)
		cursor -= len(cell)
		copy(buf[cursor:], cell)
		ptrs[i] = cursor
	}
	binary.BigEndian.PutUint16(buf[pageOffset+5:], uint16(cursor))
	for i, p := range ptrs {
		binary.BigEndian.PutUint16(buf[pageOffset+8+2*i:], uint16(p))
	}
	return buf
}

func fixtureIndexLeaf(pageSize int, entries [][2]any) []byte {
	buf := make([]byte, pageSize)
	buf[0] = 0x0a
	binary.BigEndian.PutUint16(buf[3:], uint16(len(entries)))

	cursor := len(buf)
	ptrs := make([]int, len(entries))
	for i, e := range entries {
		key := e[0].(string)
		rowID := e[1].(int64)
		payload := fixtureRecord([]fixtureCol{fixtureText(key), fixtureInt(rowID)})
		var cell []byte
		cell = varint.Encode(cell, uint64(len(payload)))
		cell = append(cell, payload...)
		cursor -= len(cell)
		copy(buf[cursor:], cell)
		ptrs[i] = cursor
	}
	binary.BigEndian.PutUint16(buf[5:], uint16(cursor))
	for i, p := range ptrs {
		binary.BigEndian.PutUint16(buf[8+2*i:], uint16(p))
	}
	return buf
}

// buildApplesFixtureForCLI assembles the same 3-page apples database used
// by the engine façade's own tests, duplicated here since this package
// cannot see sqliteql's unexported test helpers.
func buildApplesFixtureForCLI(pageSize int) []byte {
	tableSQL := "CREATE TABLE apples (id integer primary key autoincrement, name text, color text)"
	indexSQL := "CREATE INDEX idx_apples_color ON apples(color)"

	schemaEntries := [][2]any{
		{int64(1), fixtureRecord([]fixtureCol{
			fixtureText("table"), fixtureText("apples"), fixtureText("apples"), fixtureInt(2), fixtureText(tableSQL),
		})},
		{int64(2), fixtureRecord([]fixtureCol{
			fixtureText("index"), fixtureText("idx_apples_color"), fixtureText("apples"), fixtureInt(3), fixtureText(indexSQL),
		})},
	}
	page1 := fixtureTableLeaf(pageSize, 100, schemaEntries)

	rows := [][2]any{
		{int64(1), fixtureRecord([]fixtureCol{fixtureNull(), fixtureText("Granny Smith"), fixtureText("Light Green")})},
		{int64(2), fixtureRecord([]fixtureCol{fixtureNull(), fixtureText("Fuji"), fixtureText("Red")})},
		{int64(3), fixtureRecord([]fixtureCol{fixtureNull(), fixtureText("Honeycrisp"), fixtureText("Blush Red")})},
		{int64(4), fixtureRecord([]fixtureCol{fixtureNull(), fixtureText("Golden Delicious"), fixtureText("Yellow")})},
	}
	page2 := fixtureTableLeaf(pageSize, 0, rows)

	page3 := fixtureIndexLeaf(pageSize, [][2]any{
		{"blush red", int64(3)},
		{"light green", int64(1)},
		{"red", int64(2)},
		{"yellow", int64(4)},
	})

	header := make([]byte, 100)
	copy(header, "SQLite format 3\x00")
	binary.BigEndian.PutUint16(header[16:18], uint16(pageSize))
	header[18] = 1
	header[19] = 1
	binary.BigEndian.PutUint32(header[28:32], 3)
	binary.BigEndian.PutUint32(header[56:60], 1)

	var out []byte
	out = append(out, header...)
	out = append(out, page1[100:]...)
	out = append(out, page2...)
	out = append(out, page3...)
	return out
}

// writeTempDB writes buf to a temp file and returns its path, grounded on
// the teacher's main_test.go pattern of exercising the CLI against a real
// file on disk rather than mocking os.Open.
func writeTempDB(t *testing.T, buf []byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.db")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	defer f.Close()
	if _, err := f.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return f.Name()
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe() error = %v", err)
	}
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(out)
}

func TestRunSQLCommand(t *testing.T) {
	path := writeTempDB(t, buildApplesFixtureForCLI(4096))

	var runErr error
	out := captureStdout(t, func() {
		runErr = run(path, "SELECT id, name FROM apples WHERE color = 'Yellow'")
	})
	if runErr != nil {
		t.Fatalf("run() error = %v", runErr)
	}
	if strings.TrimSpace(out) != "4|Golden Delicious" {
		t.Errorf("run() output = %q, want %q", out, "4|Golden Delicious")
	}
}

func TestRunDotCommand(t *testing.T) {
	path := writeTempDB(t, buildApplesFixtureForCLI(4096))

	var runErr error
	out := captureStdout(t, func() {
		runErr = run(path, ".tables")
	})
	if runErr != nil {
		t.Fatalf("run() error = %v", runErr)
	}
	if out != "apples \n" {
		t.Errorf("run() output = %q, want %q", out, "apples \n")
	}
}

func TestRunMissingFile(t *testing.T) {
	if err := run("/nonexistent/path.db", ".tables"); err == nil {
		t.Errorf("run() with a missing file should error")
	}
}
