// Package normalize converts a listing's raw, unordered attribute list into
// a typed NormalizedListing. Normalization is deterministic and
// side-effect-free: the same attribute sequence always yields the same
// record.
package normalize

import (
	"regexp"
	"strings"

	"cardhawk/internal/domain"
)

// firstEditionMarker is the exact flag value that sets FirstEdition. Empty-
// name attributes carrying any other value are ignored.
const firstEditionMarker = "1st Edition"

var numericToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

// NumericToken returns the first run of digits in s, optionally with a
// decimal point. The second return is false when s contains no digits.
func NumericToken(s string) (string, bool) {
	tok := numericToken.FindString(s)
	return tok, tok != ""
}

// Options control the normalization differences between deployments.
type Options struct {
	// FoldTitle folds any attribute whose name contains "Title" into the
	// canonical Title field. When false such attributes pass through to
	// Extra under their original names.
	FoldTitle bool
}

// Flatten builds a NormalizedListing from a raw attribute sequence.
// Recognized names map to typed fields; "Card Number" is reduced to its
// leading numeric token and treated as absent when no digits exist;
// everything else passes through to Extra. Flatten never fails: missing
// optional attributes simply leave their fields empty.
func Flatten(attrs []domain.RawAttribute, opts Options) domain.NormalizedListing {
	n := domain.NormalizedListing{Extra: map[string]string{}}

	for _, attr := range attrs {
		if attr.Name == "" {
			for _, v := range attr.Strings() {
				if v == firstEditionMarker {
					n.FirstEdition = true
				}
			}
			continue
		}

		val := strings.Join(attr.Strings(), ", ")

		switch {
		case opts.FoldTitle && strings.Contains(attr.Name, "Title"):
			n.Title = val
		case attr.Name == "Title":
			n.Title = val
		case attr.Name == "Card Number":
			if tok, ok := NumericToken(val); ok {
				n.CardNumber = tok
			}
		case attr.Name == "Set":
			n.Set = val
		case attr.Name == "Language":
			n.Language = val
		case attr.Name == "Grader":
			n.Grader = val
		case attr.Name == "Grade":
			n.Grade = val
		case attr.Name == "Serial":
			n.Serial = val
		default:
			n.Extra[attr.Name] = val
		}
	}

	return n
}

// Validate reports whether the record carries every attribute the matching
// and grading stages depend on. It returns domain.ErrMalformedListing
// otherwise; such listings are skipped, never partially processed.
func Validate(n domain.NormalizedListing) error {
	if n.Title == "" || n.Serial == "" || n.Language == "" || n.Set == "" ||
		n.Grader == "" || n.Grade == "" {
		return domain.ErrMalformedListing
	}
	return nil
}
