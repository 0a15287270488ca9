package assets

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// SafeBaseName reduces a client-supplied filename to its last path element
// and replaces anything but letters, digits, '-', '_' and '.' with '_'.
// Leading dots are dropped, so the result never names a parent directory or
// a hidden file. It may be empty.
func SafeBaseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return strings.TrimLeft(b.String(), ".")
}

// UniqueName builds a storage filename from an uploaded filename: safe base
// name, lower-cased extension (defaultExt when missing) and a
// "_<unix>_<8 hex>" suffix that keeps uploads in the same second apart.
func UniqueName(filename, defaultExt string, now time.Time) string {
	base := SafeBaseName(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	ext = strings.ToLower(ext)
	if ext == "" || ext == "." {
		ext = defaultExt
	}
	if stem == "" {
		stem = "file"
	}

	return fmt.Sprintf("%s_%d_%s%s", stem, now.Unix(), uuid.NewString()[:8], ext)
}
