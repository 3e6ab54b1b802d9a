// Package telemetry sanitizes values before they are reported, so that no user-identifying
// information leaves the machine.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

const UnknownLanguage = "unknown"

var (
	// KnownKernelLanguageAliases maps the language names reported by some kernels to the name
	// used by notebook editors.
	KnownKernelLanguageAliases = map[string]string{
		"qsharp": "q#",
		"csharp": "c#",
		"fsharp": "f#",
		"c++11":  "c++",
		"c++12":  "c++",
		"c++14":  "c++",
	}

	// KnownNotebookLanguages are reported as-is. Anything else is hashed.
	KnownNotebookLanguages = map[string]struct{}{
		"python":     {},
		"r":          {},
		"julia":      {},
		"c++":        {},
		"c#":         {},
		"f#":         {},
		"q#":         {},
		"powershell": {},
		"java":       {},
		"scala":      {},
		"haskell":    {},
		"bash":       {},
		"cling":      {},
		"rust":       {},
		"sas":        {},
		"sos":        {},
		"ocaml":      {},
	}
)

// SafeLanguage returns the language name if it is a well-known notebook language and a hash of
// it otherwise.
func SafeLanguage(language string) string {
	if language == "" {
		language = UnknownLanguage
	}
	language = strings.ToLower(language)

	if alias, ok := KnownKernelLanguageAliases[language]; ok {
		language = alias
	}

	if _, known := KnownNotebookLanguages[language]; known || language == UnknownLanguage {
		return language
	}

	return SafeHashedString(language)
}

// SafeVersion keeps at most the major, minor and patch components of a version string.
// Each component is read up to its first non-digit, so "3.10.4rc1" becomes "3.10.4".
// The second return value is false if no major version could be read.
func SafeVersion(version string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(version)+"...", ".")

	major, ok := leadingInt(parts[0])
	if !ok {
		return "", false
	}

	minor, ok := leadingInt(parts[1])
	if !ok {
		return fmt.Sprintf("%d", major), true
	}

	patch, ok := leadingInt(parts[2])
	if !ok {
		return fmt.Sprintf("%d.%d", major, minor), true
	}

	return fmt.Sprintf("%d.%d.%d", major, minor, patch), true
}

// SafeHashedString returns the hex-encoded SHA-256 digest of data.
func SafeHashedString(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// leadingInt parses the optionally signed run of decimal digits at the start of s, ignoring
// leading whitespace. A run that does not fit in an int64 is not a number.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	negative := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}

	var (
		value  int64
		digits int
	)
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		d := int64(s[digits] - '0')
		if value > (math.MaxInt64-d)/10 {
			return 0, false
		}
		value = value*10 + d
		digits++
	}

	if digits == 0 {
		return 0, false
	}

	if negative {
		value = -value
	}
	return value, true
}
