// Package media wraps the external ffmpeg/ffprobe tools used for silence
// generation, byte-level clip concatenation, and duration probing. The tools
// are treated as opaque collaborators; their absence is a fatal precondition
// reported before any row processing begins.
package media
