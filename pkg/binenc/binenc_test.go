package binenc_test

import (
	"bytes"
	"testing"

	"github.com/idelchi/goseal/pkg/binenc"
)

func TestBytes(t *testing.T) {
	t.Parallel()

	got, err := binenc.Bytes("héllo")
	if err != nil {
		t.Fatalf("Bytes(string) error: %v", err)
	}

	if !bytes.Equal(got, []byte("héllo")) {
		t.Errorf("Bytes(string) = %q", got)
	}

	original := []byte{1, 2, 3}

	got, err = binenc.Bytes(original)
	if err != nil {
		t.Fatalf("Bytes([]byte) error: %v", err)
	}

	original[0] = 9

	if got[0] != 1 {
		t.Error("Bytes([]byte) did not copy the input")
	}

	got, err = binenc.Bytes(nil)
	if err != nil || got != nil {
		t.Errorf("Bytes(nil) = %v, %v, want nil, nil", got, err)
	}

	if _, err := binenc.Bytes(42); err == nil {
		t.Error("Bytes(int) succeeded, want error")
	}
}

func TestTextDecode(t *testing.T) {
	t.Parallel()

	data := []byte{0x00, 0xFF, 0x10, 0x20}

	for _, encoding := range []binenc.Encoding{binenc.Base64, binenc.Base64URL, binenc.Hex} {
		t.Run(string(encoding), func(t *testing.T) {
			t.Parallel()

			text, err := binenc.Text(data, encoding)
			if err != nil {
				t.Fatalf("Text error: %v", err)
			}

			back, err := binenc.Decode(text, encoding)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}

			if !bytes.Equal(back, data) {
				t.Errorf("Decode(Text(%x)) = %x", data, back)
			}
		})
	}
}

func TestTextUTF8(t *testing.T) {
	t.Parallel()

	text, err := binenc.Text([]byte("plain"), binenc.UTF8)
	if err != nil {
		t.Fatalf("Text error: %v", err)
	}

	if text != "plain" {
		t.Errorf("Text = %q", text)
	}

	if _, err := binenc.Text([]byte{0xFF, 0xFE}, binenc.UTF8); err == nil {
		t.Error("Text accepted invalid UTF-8")
	}
}

func TestUnsupportedEncoding(t *testing.T) {
	t.Parallel()

	if _, err := binenc.Text([]byte("x"), "rot13"); err == nil {
		t.Error("Text accepted an unsupported encoding")
	}

	if _, err := binenc.Decode("x", "rot13"); err == nil {
		t.Error("Decode accepted an unsupported encoding")
	}
}

func TestBase64Helpers(t *testing.T) {
	t.Parallel()

	data := []byte("padded?")

	back, err := binenc.FromBase64(binenc.ToBase64(data))
	if err != nil || !bytes.Equal(back, data) {
		t.Errorf("FromBase64(ToBase64) = %q, %v", back, err)
	}

	back, err = binenc.FromBase64URL(binenc.ToBase64URL(data))
	if err != nil || !bytes.Equal(back, data) {
		t.Errorf("FromBase64URL(ToBase64URL) = %q, %v", back, err)
	}
}
