// Package batch drives the row pipeline over a parsed vocabulary table. Rows
// are processed strictly in input order, one at a time, with a fixed pacing
// delay between them so the synthesis endpoint is never hammered. Failures
// stay per-row; after the loop the manifest and the retry list are derived
// from the accumulated results.
package batch
