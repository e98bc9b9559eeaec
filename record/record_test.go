package record

import (
	"bytes"
	"testing"

	"sqliteql/varint"
)

func buildRecord(cols []struct {
	serial uint64
	body   []byte
}) []byte {
	var header []byte
	var body []byte
	for _, c := range cols {
		header = varint.Encode(header, c.serial)
		body = append(body, c.body...)
	}
	// The header-size varint counts itself, so find the fixed point where
	// its own encoded length plus the rest of the header matches its value.
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

func TestDecodeTextAndInt(t *testing.T) {
	payload := buildRecord([]struct {
		serial uint64
		body   []byte
	}{
		{serial: 1, body: []byte{42}},           // 1-byte int
		{serial: 13 + 2*5, body: []byte("hello")}, // TEXT length 5
		{serial: 0, body: nil},                  // NULL
	})

	rec, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.ColumnCount() != 3 {
		t.Fatalf("ColumnCount() = %v, want 3", rec.ColumnCount())
	}

	v0, err := rec.Column(0)
	if err != nil || v0.Kind != Int || v0.Int != 42 {
		t.Errorf("Column(0) = %+v, err=%v, want Int(42)", v0, err)
	}
	v1, err := rec.Column(1)
	if err != nil || v1.Kind != Text || v1.Text != "hello" {
		t.Errorf("Column(1) = %+v, err=%v, want Text(hello)", v1, err)
	}
	v2, err := rec.Column(2)
	if err != nil || v2.Kind != Null {
		t.Errorf("Column(2) = %+v, err=%v, want Null", v2, err)
	}
}

func TestDecodeConstants(t *testing.T) {
	payload := buildRecord([]struct {
		serial uint64
		body   []byte
	}{
		{serial: 8, body: nil}, // constant 0
		{serial: 9, body: nil}, // constant 1
	})
	rec, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	v0, _ := rec.Column(0)
	v1, _ := rec.Column(1)
	if v0.Int != 0 || v1.Int != 1 {
		t.Errorf("constants decoded as %v, %v, want 0, 1", v0.Int, v1.Int)
	}
}

func TestDecodeReservedSerialType(t *testing.T) {
	for _, st := range []uint64{10, 11} {
		_, _, err := decodeSerialType(st)
		if err == nil {
			t.Errorf("decodeSerialType(%v) should error", st)
		}
	}
}

func TestColumnOutOfRange(t *testing.T) {
	payload := buildRecord([]struct {
		serial uint64
		body   []byte
	}{{serial: 0, body: nil}})
	rec, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, err := rec.Column(5); err == nil {
		t.Errorf("Column(5) should error on a 1-column record")
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Value{Kind: Null}, ""},
		{Value{Kind: Int, Int: -7}, "-7"},
		{Value{Kind: Text, Text: "hi"}, "hi"},
		{Value{Kind: Blob, Blob: []byte{1, 2}}, ""},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("Value(%+v).String() = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestSignExtension(t *testing.T) {
	// A 3-byte two's-complement -1 (0xffffff) must sign-extend to int64 -1.
	payload := buildRecord([]struct {
		serial uint64
		body   []byte
	}{{serial: 3, body: []byte{0xff, 0xff, 0xff}}})
	rec, _ := Decode(payload)
	v, _ := rec.Column(0)
	if v.Int != -1 {
		t.Errorf("3-byte sign extension = %v, want -1", v.Int)
	}
	if !bytes.Equal([]byte{0xff, 0xff, 0xff}, []byte{0xff, 0xff, 0xff}) {
		t.Fatal("sanity")
	}
}
