package breadcrumb

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the classification of one path segment.
type Kind int

// Segment kinds, in classification order.
const (
	KindStatic Kind = iota
	KindNumericID
	KindSlug
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindNumericID:
		return "numeric-id"
	case KindSlug:
		return "slug"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

//nolint:gochecknoglobals // Compiled once.
var numericID = regexp.MustCompile(`^\d+$`)

// Classify returns the kind of segments[i]. Numeric IDs look at the raw
// segment before them, never at its resolved label.
func Classify(segments []string, i int, labels, endpoints map[string]string) Kind {
	seg := segments[i]
	if _, ok := labels[seg]; ok {
		return KindStatic
	}
	if i > 0 && numericID.MatchString(seg) {
		if _, ok := endpoints[segments[i-1]]; ok {
			return KindNumericID
		}
	}
	return KindSlug
}

// Segments splits path into its non-empty segments.
func Segments(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FormatSlug capitalizes each hyphen-separated word and joins them with
// spaces. The rest of each word keeps its case.
func FormatSlug(seg string) string {
	caser := cases.Title(language.English, cases.NoLower)
	words := strings.Split(seg, "-")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// FallbackLabel is the label used when a record lookup fails.
func FallbackLabel(id string) string { return "Item " + id }
