// Package templates selects, loads and patches the binary asset templates
// (meshes and plugins) that reference a converted video.
//
// Templates are opaque: they are never parsed. Each carries fixed-width ASCII
// tokens and float markers at unknown offsets which are rewritten in place by
// internal/binpatch. Source bytes are loaded once per batch and every output
// artifact is patched from a private clone.
//
// Token and marker contract:
//
//	AVMODIDENT                        mod id, every occurrence
//	AVMODTITLEPLACEHOLDER000          mod title, every occurrence (plugins)
//	AVVIDEOIDENT                      video id (every occurrence in meshes,
//	                                  first remaining occurrence in plugins)
//	AVVIDEOTITLEPLACEHOLDER000000000  video title, first remaining (plugins)
//	AVSOUNDFILE0.xwm                  sound file name, first remaining (plugins)
//	float 1001..1024                  display time of atlas slot 1..24 (meshes)
//	float 777                         controller frequency (meshes)
package templates
