// Package identifier derives the fixed-width names written into output paths
// and binary templates.
//
// Every identifier is produced by Encode, which pads a name to a minimum byte
// width and never truncates. Template tokens have the same widths as the
// identifiers defined here, so a substituted identifier always occupies exactly
// the bytes of the token it replaces. Names are folded to printable ASCII
// before encoding so that byte length and character count agree.
package identifier
