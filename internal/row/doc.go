// Package row turns one vocabulary row into one numbered audio artifact:
// speech for the source term, a fixed pause, speech for the target term,
// concatenated in that order. A row failure never escalates; it is captured
// in the row's Result. Intermediate clips are always deleted before Process
// returns, whatever the outcome.
package row
