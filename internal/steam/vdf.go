package steam

import (
	"regexp"
	"strings"
)

// libraryPathPattern matches `"N" { ... "path" "X" ... }` blocks in
// libraryfolders.vdf. It only needs the path value, so nested blocks after
// the path (such as "apps") are never inspected.
var libraryPathPattern = regexp.MustCompile(`(?is)"\d+"\s*\{\s*[^}]*?"path"\s*"([^"]+)"`)

// ParseLibraryFolders extracts library paths from the text of a
// libraryfolders.vdf file, in document order. Escaped backslashes are
// unescaped. No existence check is made.
func ParseLibraryFolders(text string) []string {
	matches := libraryPathPattern.FindAllStringSubmatch(text, -1)
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		p := strings.ReplaceAll(m[1], `\\`, `\`)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
