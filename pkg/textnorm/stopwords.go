package textnorm

// stopwords are dropped during tokenization: articles, pronouns, copulas,
// common filler, and the negation word itself (negation is handled separately
// by HasNegation/StripNegation, it must not leak into overlap scoring).
var stopwords = map[string]bool{
	// articles and filler
	"a": true, "an": true, "the": true, "to": true, "and": true,
	"or": true, "of": true, "in": true, "on": true, "for": true,
	"with": true, "at": true, "by": true, "from": true,

	// pronouns
	"i": true, "you": true, "we": true, "it": true, "he": true,
	"she": true, "they": true, "me": true, "us": true, "them": true,
	"my": true, "your": true, "our": true, "this": true, "that": true,

	// copulas and auxiliaries
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "am": true, "will": true, "would": true, "do": true,
	"does": true, "did": true, "can": true, "could": true,

	// negation marker
	"not": true,
}
