package payload

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// EmbeddedPayload is a base64 archive bundled with the binary together with
// the SHA-256 it must hash to.
type EmbeddedPayload struct {
	Base64         string
	ExpectedDigest string // lowercase or uppercase hex
	Label          string
}

// DecodeError reports a payload whose base64 text is malformed.
type DecodeError struct {
	Label string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Label, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IntegrityError reports a payload whose digest differs from the expected one.
type IntegrityError struct {
	Label    string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("SHA-256 mismatch for %s: expected %s, got %s", e.Label, e.Expected, e.Actual)
}

// Digest returns the lowercase hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify decodes p and checks its digest without touching the filesystem.
func Verify(p EmbeddedPayload) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(p.Base64))
	if err != nil {
		return nil, &DecodeError{Label: p.Label, Err: err}
	}

	actual := Digest(raw)
	expected := strings.TrimSpace(p.ExpectedDigest)
	if !strings.EqualFold(actual, expected) {
		return nil, &IntegrityError{Label: p.Label, Expected: strings.ToLower(expected), Actual: actual}
	}
	return raw, nil
}

// Decode verifies p and writes the archive to a fresh temp file, returning
// its path. The file is closed before returning so other tools can open it;
// the caller owns deletion. Nothing is written when verification fails.
func Decode(p EmbeddedPayload) (string, error) {
	raw, err := Verify(p)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "ins2doi-payload-*.zip")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
