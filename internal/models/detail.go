package models

// Detail selects how much of a package the renderer prints.
type Detail int

const (
	// DetailNormal prints the pk3 name, its sorted bsp list and the
	// download URL.
	DetailNormal Detail = iota
	// DetailShort prints the pk3 name only.
	DetailShort
	// DetailLong prints full per-bsp metadata plus hash, size, date and
	// download URL.
	DetailLong
)

// String returns the string representation of Detail
func (d Detail) String() string {
	switch d {
	case DetailShort:
		return "short"
	case DetailLong:
		return "long"
	default:
		return "default"
	}
}

// ParseDetail maps the CLI's --short/--long flags onto a Detail. Long wins
// when both are set.
func ParseDetail(short, long bool) Detail {
	if long {
		return DetailLong
	}
	if short {
		return DetailShort
	}
	return DetailNormal
}
