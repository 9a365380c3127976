// Package diff parses unified diffs into a lossless file/hunk/line model.
//
// Every byte of the source diff that is retained in a rendered report must
// be byte-identical to the original: file headers, hunk headers, markers,
// and whitespace are stored or reconstructed exactly. The only constructor
// is Parse, which accepts raw diff text from the authoritative retrieval
// source; there is deliberately no way to assemble a Model by hand, so a
// stale or paraphrased diff cannot sneak into a rendered report.
package diff
