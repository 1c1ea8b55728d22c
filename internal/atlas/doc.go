// Package atlas packs ordered video frames into square texture atlases.
//
// An atlas holds up to 256 frames in a 16x16 grid, filled row-major. A video
// may produce at most 24 atlases; Plan rejects anything larger with a
// CapacityError before any pixels are touched. Atlas timings are expressed at
// a fixed 10 fps baseline regardless of the capture rate.
package atlas
