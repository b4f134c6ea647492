package textnorm

import (
	"strings"
	"unicode"
)

const (
	// negationWord is the standalone token treated as a negation marker.
	negationWord = "not"

	// minTokenLength is the minimum token length after stemming. Shorter
	// tokens carry too little signal and are dropped.
	minTokenLength = 3
)

// suffixes are stripped in this order; only the first matching suffix is
// removed. Ordering matters: "ing" must be tried before "s" so that
// "deletings" never stems twice.
var suffixes = []string{"ing", "ed", "s"}

// Normalize lowercases the input and collapses all runs of whitespace into
// single spaces, trimming the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// HasNegation reports whether the text contains a standalone "not" token.
// Substrings inside larger words ("notable", "cannot") do not count.
func HasNegation(s string) bool {
	for _, tok := range strings.Fields(Normalize(s)) {
		if tok == negationWord {
			return true
		}
	}
	return false
}

// StripNegation returns the normalized text with all standalone "not" tokens
// removed. Comparing the negation-stripped forms of two texts is how the
// matcher detects semantic inversion.
func StripNegation(s string) string {
	fields := strings.Fields(Normalize(s))
	out := fields[:0]
	for _, tok := range fields {
		if tok != negationWord {
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}

// Tokenize extracts comparable tokens from the text. It normalizes, splits on
// non-alphanumeric runes, drops stopwords, applies light suffix stemming, and
// drops anything shorter than three characters after stemming.
//
// The returned slice preserves input order and may contain duplicates; callers
// that need set semantics build their own sets.
func Tokenize(s string) []string {
	raw := splitAlnum(Normalize(s))

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if stopwords[tok] {
			continue
		}
		tok = Stem(tok)
		if len(tok) < minTokenLength {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Stem applies the light suffix-stripping stem: the first of "ing", "ed", "s"
// that leaves at least minTokenLength characters is removed, then a trailing
// "e" is dropped under the same length rule so that "deleting", "deleted",
// "deletes" and "delete" all reduce to the same form. Tokens that would be
// cut too short are returned unchanged.
func Stem(tok string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(tok, suf) && len(tok)-len(suf) >= minTokenLength {
			tok = tok[:len(tok)-len(suf)]
			break
		}
	}
	if strings.HasSuffix(tok, "e") && len(tok)-1 >= minTokenLength {
		tok = tok[:len(tok)-1]
	}
	return tok
}

// Bigrams returns the adjacent token pairs of the token sequence, each joined
// with a single space. A sequence of fewer than two tokens has no bigrams.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// splitAlnum splits the string into maximal runs of letters and digits.
func splitAlnum(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
