package catalog

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NormalizeTitle makes titles comparable as a unique key: NFC form with
// surrounding and repeated whitespace removed.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(norm.NFC.String(title)), " ")
}

// NormalizeCategory title-cases a category so "science fiction" and
// "Science Fiction" land in the same bucket.
func NormalizeCategory(category string) string {
	c := strings.Join(strings.Fields(norm.NFC.String(category)), " ")
	return cases.Title(language.English).String(strings.ToLower(c))
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.Join(strings.Fields(norm.NFC.String(v)), " ")
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
