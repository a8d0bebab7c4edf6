package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

func isTerminalWriter(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// parseMappingFlags turns repeated "original=path" flag values into the
// filename-to-path map consumed by mapped extraction.
func parseMappingFlags(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	mapping := make(map[string]string, len(values))
	for _, value := range values {
		name, path, found := strings.Cut(value, "=")
		name = strings.TrimSpace(name)
		path = strings.TrimSpace(path)
		if !found || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --map value %q (want original-name=path)", value)
		}
		if _, dup := mapping[name]; dup {
			return nil, fmt.Errorf("duplicate --map entry for %q", name)
		}
		mapping[name] = path
	}
	return mapping, nil
}

// truncate shortens s to at most max runes, ellipsized. Cuts fall on rune
// boundaries so multi-byte names stay valid UTF-8.
func truncate(s string, max int) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
