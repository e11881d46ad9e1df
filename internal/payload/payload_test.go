package payload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func encode(data []byte) EmbeddedPayload {
	return EmbeddedPayload{
		Base64:         base64.StdEncoding.EncodeToString(data),
		ExpectedDigest: Digest(data),
		Label:          "test patch",
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	data := []byte("PK\x03\x04 pretend archive bytes \x00\xff")
	p := encode(data)
	p.ExpectedDigest = strings.ToUpper(p.ExpectedDigest)

	path, err := Decode(p)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestDecodeIntegrityMismatchWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	t.Setenv("TMP", tmp)
	t.Setenv("TEMP", tmp)

	p := EmbeddedPayload{
		Base64:         "AAA=",
		ExpectedDigest: strings.Repeat("0", 64),
		Label:          "bad patch",
	}

	path, err := Decode(p)
	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	if path != "" {
		t.Fatalf("expected no path, got %q", path)
	}
	if integrity.Actual != Digest([]byte{0, 0}) {
		t.Fatalf("actual digest = %s", integrity.Actual)
	}
	if integrity.Expected != strings.Repeat("0", 64) {
		t.Fatalf("expected digest = %s", integrity.Expected)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir should be empty, found %d entries", len(entries))
	}
}

func TestDecodeMalformedBase64(t *testing.T) {
	_, err := Decode(EmbeddedPayload{Base64: "!!not base64!!", ExpectedDigest: "00", Label: "x"})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestRegistryFromDir(t *testing.T) {
	dir := t.TempDir()
	data := []byte("archive")
	p := encode(data)
	if err := os.WriteFile(filepath.Join(dir, "insurgency2.b64"), []byte(p.Base64+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "insurgency2.sha256"), []byte(p.ExpectedDigest+"  patch.zip\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := Registry{Dir: dir, Labels: map[string]string{"insurgency2": "Insurgency 2 Patch"}}
	got, err := reg.Lookup("insurgency2")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Label != "Insurgency 2 Patch" || got.ExpectedDigest != p.ExpectedDigest {
		t.Fatalf("unexpected payload: %+v", got)
	}
	raw, err := Verify(got)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !bytes.Equal(raw, data) {
		t.Fatalf("raw = %q", raw)
	}
}

func TestRegistryMissingPayload(t *testing.T) {
	_, err := Registry{}.Lookup("dayofinfamy")
	if !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}

	_, err = Registry{Dir: t.TempDir()}.Lookup("dayofinfamy")
	if !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload from dir, got %v", err)
	}
}
