// Package preflight verifies that the directories and templates a conversion
// needs are usable before any video is touched.
//
// The convert command calls RunAll after loading configuration and aborts the
// batch when a required check fails. The check command prints every result.
package preflight
