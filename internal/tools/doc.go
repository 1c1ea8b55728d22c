// Package tools runs external command line collaborators (ffmpeg, ffprobe,
// the audio encoder) and classifies their outcome.
//
// Every invocation yields a Result whose Outcome is OK, Missing or Failed.
// Result.Err converts the latter two into *MissingError and *ExitError so
// callers can branch with errors.As while the message stays readable.
package tools
