package varint

import "testing"

func TestDecodeSingleByte(t *testing.T) {
	v, n, err := Decode([]byte{0x7f})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v != 0x7f || n != 1 {
		t.Errorf("Decode() = (%v, %v), want (127, 1)", v, n)
	}
}

func TestDecodeMultiByte(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int64
		n    int
	}{
		{"two byte", []byte{0x81, 0x00}, 0x80, 2},
		{"three byte", []byte{0x81, 0x80, 0x00}, 0x4000, 3},
		{"zero single byte", []byte{0x00}, 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, n, err := Decode(c.in)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if v != c.want || n != c.n {
				t.Errorf("Decode(%v) = (%v, %v), want (%v, %v)", c.in, v, n, c.want, c.n)
			}
		})
	}
}

func TestDecodeNineBytes(t *testing.T) {
	// All continuation bits set through byte 8, byte 9 supplies all 8 bits.
	in := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	v, n, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != 9 {
		t.Errorf("Decode() consumed %v bytes, want 9", n)
	}
	if v != int64(-1) {
		t.Errorf("Decode() = %v, want all bits set (-1 as int64)", v)
	}
}

func TestDecodeEmptyBuffer(t *testing.T) {
	_, _, err := Decode(nil)
	if err == nil {
		t.Errorf("Decode(nil) should error")
	}
}

func TestDecodeTruncatedContinuation(t *testing.T) {
	_, _, err := Decode([]byte{0x80})
	if err == nil {
		t.Errorf("Decode() with dangling continuation bit should error")
	}
}

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1 << 28, 1 << 35, 1 << 42,
		1 << 49, 1 << 56, 1<<63 - 1, 1 << 63, ^uint64(0)}
	for _, want := range values {
		enc := Encode(nil, want)
		if len(enc) != Len(want) {
			t.Errorf("Encode(%v) produced %v bytes, Len() says %v", want, len(enc), Len(want))
		}
		got, n, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(Encode(%v)) error = %v", want, err)
		}
		if n != len(enc) {
			t.Errorf("Decode consumed %v bytes, want %v", n, len(enc))
		}
		if uint64(got) != want {
			t.Errorf("round trip %v -> %v", want, uint64(got))
		}
	}
}

func TestLenSchedule(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 1}, {0x7f, 1}, {0x80, 2}, {0x3fff, 2}, {0x4000, 3},
		{0x1fffff, 3}, {0x200000, 4}, {^uint64(0), 9},
	}
	for _, c := range cases {
		if got := Len(c.v); got != c.want {
			t.Errorf("Len(%#x) = %v, want %v", c.v, got, c.want)
		}
	}
}
