package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
)

// Scope is the subdirectory under the project's build-output directory where
// relcheck keeps its cache artifacts (git checkouts, registry downloads).
const Scope = "relcheck"

// Slugify derives a deterministic, filesystem-safe slug from an arbitrary
// identifier such as a git revision. The readable part is built from the
// identifier's alphanumeric words; a short content hash is appended so that
// distinct identifiers never map to the same slug, even when their readable
// parts coincide (e.g. "abc-123" vs "abc123").
func Slugify(s string) string {
	var words []string
	for _, run := range splitRuns(s) {
		for _, w := range camelcase.Split(run) {
			words = append(words, strings.ToLower(w))
		}
	}

	sum := sha256.Sum256([]byte(s))
	digest := hex.EncodeToString(sum[:4])

	if len(words) == 0 {
		return digest
	}
	return strings.Join(words, "-") + "-" + digest
}

// splitRuns breaks a string into its maximal alphanumeric runs, dropping
// every other character.
func splitRuns(s string) []string {
	var runs []string
	var cur strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			runs = append(runs, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		runs = append(runs, cur.String())
	}
	return runs
}
