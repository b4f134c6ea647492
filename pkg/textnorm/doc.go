// Package textnorm provides the text canonicalization primitives used by the
// conflict matcher and the explanation builder.
//
// All functions in this package are pure and fully deterministic: the same
// input always produces the same output, with no dependence on process state,
// locale, or time. Trace replay depends on bit-identical re-derivation of
// normalized forms, so nothing here may ever consult mutable state.
//
// The pipeline is deliberately simple:
//
//	Normalize  - lowercase, collapse whitespace
//	Tokenize   - alphanumeric tokens, stoplist, light suffix stemming
//	Bigrams    - adjacent token pairs
//	HasNegation / StripNegation - standalone "not" detection and removal
//
// This is lexical canonicalization, not NLP. The stemmer only strips the
// "ing", "ed" and "s" suffixes so that surface variants of the same verb
// ("deleting", "deleted", "deletes") collapse to one comparable form.
package textnorm
