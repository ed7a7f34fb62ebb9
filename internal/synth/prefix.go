package synth

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/asyncgen/asyncgen/internal/schema"
)

// PathSeparator separates segments of a channel name.
const PathSeparator = "/"

// LongestCommonPrefix returns the longest common leading substring of names,
// with one trailing path separator trimmed.
//
// After sorting, every name lies between the first and the last, so their
// common prefix is the common prefix of the whole set.
func LongestCommonPrefix(names []string) (string, error) {
	if len(names) == 0 {
		return "", &schema.EmptyInputError{What: "channel names"}
	}

	sorted := slices.Clone(names)
	slices.Sort(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]

	// Compare whole runes so the prefix never ends inside a character.
	i := 0
	for i < len(first) && i < len(last) {
		a, size := utf8.DecodeRuneInString(first[i:])
		b, sizeB := utf8.DecodeRuneInString(last[i:])
		if a != b || size != sizeB || first[i:i+size] != last[i:i+size] {
			break
		}
		i += size
	}
	return strings.TrimSuffix(first[:i], PathSeparator), nil
}

// ShortName strips prefix from the front of name, then one leading separator.
func ShortName(name, prefix string) string {
	short := strings.TrimPrefix(name, prefix)
	return strings.TrimPrefix(short, PathSeparator)
}
