package firewall

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds the whole blocklist download.
const DefaultFetchTimeout = 30 * time.Second

// ListFileName is the fixed temp file the downloaded list is saved to.
const ListFileName = "rogue_ips.txt"

// Fetch downloads and parses the blocklist at url. client may be nil.
func Fetch(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building blocklist request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching blocklist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching blocklist: unexpected status %s", resp.Status)
	}
	ips, err := ParseList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading blocklist: %w", err)
	}
	return ips, nil
}

// ParseList returns one entry per non-blank line, skipping # comments.
func ParseList(r io.Reader) ([]string, error) {
	var ips []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ips = append(ips, line)
	}
	return ips, sc.Err()
}

// SaveList writes ips to the temp dir under ListFileName, replacing
// whatever a previous run left there.
func SaveList(ips []string) (string, error) {
	path := filepath.Join(os.TempDir(), ListFileName)
	data := strings.Join(ips, "\n")
	if len(ips) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return "", fmt.Errorf("saving blocklist: %w", err)
	}
	return path, nil
}

// ValidateEntries keeps entries that parse as an IP address or CIDR block.
func ValidateEntries(entries []string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}
	valid := make([]string, 0, len(entries))
	for _, e := range entries {
		if net.ParseIP(e) != nil {
			valid = append(valid, e)
			continue
		}
		if _, _, err := net.ParseCIDR(e); err == nil {
			valid = append(valid, e)
			continue
		}
		logger.Warn("dropping invalid blocklist entry", zap.String("entry", e))
	}
	return valid
}
