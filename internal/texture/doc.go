// Package texture compresses atlases to BC1 and writes them as DDS files.
//
// BC1 (DXT1) stores each 4x4 pixel block in 8 bytes: two RGB565 endpoints and
// sixteen 2-bit palette indices. Blocks containing transparent pixels use the
// three-colour mode whose fourth index is transparent black. QualitySlow adds
// least-squares endpoint refinement and a neighbourhood search over the
// quantised endpoints, trading encode time for lower error.
package texture
