package payload

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// ErrNoPayload is returned when no archive is bundled for a game.
var ErrNoPayload = errors.New("no patch payload available")

//go:embed assets
var bundled embed.FS

// Registry resolves a game key to its payload. Files named <key>.b64 and
// <key>.sha256 are read from Dir when set, otherwise from the bundled assets.
type Registry struct {
	Dir    string
	Labels map[string]string
}

func (r Registry) Lookup(key string) (EmbeddedPayload, error) {
	var fsys fs.FS
	var err error
	if r.Dir != "" {
		fsys = os.DirFS(r.Dir)
	} else {
		fsys, err = fs.Sub(bundled, "assets")
		if err != nil {
			return EmbeddedPayload{}, err
		}
	}

	blob, err := fs.ReadFile(fsys, key+".b64")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EmbeddedPayload{}, fmt.Errorf("%w for %s", ErrNoPayload, key)
		}
		return EmbeddedPayload{}, err
	}
	if len(strings.TrimSpace(string(blob))) == 0 {
		return EmbeddedPayload{}, fmt.Errorf("%w for %s", ErrNoPayload, key)
	}

	sum, err := fs.ReadFile(fsys, key+".sha256")
	if err != nil {
		return EmbeddedPayload{}, fmt.Errorf("read digest for %s: %w", key, err)
	}

	label := r.Labels[key]
	if label == "" {
		label = path.Base(key) + " patch"
	}

	return EmbeddedPayload{
		Base64:         string(blob),
		ExpectedDigest: firstField(string(sum)),
		Label:          label,
	}, nil
}

// firstField accepts both a bare digest and sha256sum's "<digest>  <name>" form.
func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
