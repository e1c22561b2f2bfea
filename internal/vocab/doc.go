// Package vocab parses two-column vocabulary tables into ordered rows and
// serializes failed rows back into the same format for retry. The delimiter
// rule tolerates commas inside parenthesized spans, so terms like
// "word, meaning (synonym, here)" split at the first comma outside
// parentheses.
package vocab
