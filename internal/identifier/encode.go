package identifier

import "strings"

// Side selects where padding is inserted.
type Side int

const (
	// Leading pads on the left: "abc" -> "XXabc".
	Leading Side = iota
	// Trailing pads on the right: "abc" -> "abc  ".
	Trailing
)

// Encode pads name with pad until it is at least width bytes long. A name that
// is already width bytes or longer is returned unchanged.
func Encode(name string, width int, pad byte, side Side) string {
	missing := width - len(name)
	if missing <= 0 {
		return name
	}
	fill := strings.Repeat(string(pad), missing)
	if side == Trailing {
		return name + fill
	}
	return fill + name
}

// CrossRef is the X-padded leading form used for identifiers that appear in
// paths and record editor IDs.
func CrossRef(name string, width int) string {
	return Encode(name, width, 'X', Leading)
}

// LeadingSpace is the space-padded leading form.
func LeadingSpace(name string, width int) string {
	return Encode(name, width, ' ', Leading)
}

// TrailingSpace is the space-padded trailing form used for display strings
// whose start must not shift.
func TrailingSpace(name string, width int) string {
	return Encode(name, width, ' ', Trailing)
}
