// Package semantic implements a conflict scorer backed by an OpenAI-compatible
// embeddings endpoint. The request and every candidate statement are embedded
// in a single call and compared by cosine similarity, producing one score per
// statement for the matcher to threshold.
//
// The scorer is optional. When it is absent or unreachable the matcher runs
// its lexical rules instead and records the fallback.
package semantic
