package ucsidbg

import (
	"bytes"
	"testing"
)

func TestParseResponse(t *testing.T) {
	data, err := parseResponse("0x000102030405060708090a0b0c0d0e0f\n")
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	want := []byte{
		0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09, 0x08,
		0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00,
	}
	if !bytes.Equal(data, want) {
		t.Errorf("parseResponse = %x, want %x", data, want)
	}
}

func TestParseResponseNull(t *testing.T) {
	data, err := parseResponse("0x00000000000000000000000000000000")
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	for _, b := range data {
		if b != 0 {
			t.Fatalf("parseResponse = %x, want all zeros", data)
		}
	}
}

func TestParseResponseMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no prefix", "000102030405060708090a0b0c0d0e0f"},
		{"short", "0x0001"},
		{"long", "0x000102030405060708090a0b0c0d0e0f00"},
		{"bad digits", "0x000102030405060708090a0b0c0d0eZZ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseResponse(tc.text); err == nil {
				t.Errorf("parseResponse(%q) succeeded, want error", tc.text)
			}
		})
	}
}
