package disabler

import (
	"fmt"

	"github.com/saferwall/pe"
)

// ValidatePE checks that path parses as a PE image with an NT header.
func ValidatePE(path string) error {
	f, err := pe.New(path, &pe.Options{Fast: true})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if f.NtHeader.Signature != pe.ImageNTSignature {
		return fmt.Errorf("%s has no NT header", path)
	}
	return nil
}
