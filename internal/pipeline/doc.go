// Package pipeline turns source videos into the textures, meshes, sounds and
// plugins a mod ships.
//
// A single video runs through pad (optional), probe, extract, audio encode,
// frame load, atlas composition and BC1 encoding, in that order, each step
// finishing before the next starts. A batch runs its videos one after another
// under a lock on the cache directory, patches the per-video mesh templates as
// each video completes and writes the shared plugins once at the end.
//
// Progress is reported to a ProgressSink in whole milestones: padding (only
// when enabled), extraction and atlas encoding each count one step per video.
package pipeline
