// Package ffprobe inspects source videos through ffprobe's JSON output.
//
// Inspect returns streams and container metadata in one call; the pipeline
// uses it to decide whether audio should be extracted and to estimate the
// frame count before decoding.
package ffprobe
