package hunt

// Group classifies a location into a broad zone of the hunt map.
// Groups bias narration tone and map rendering only; they never
// affect progression.
type Group string

const (
	GroupUpperFloor Group = "upper_floor"
	GroupLowerFloor Group = "lower_floor"
	GroupOutdoor    Group = "outdoor"
	GroupUnknown    Group = "unknown" // fallback for undefined location ids

	// GroupAny is a wildcard for narration transition pools. It is not
	// a valid group for location definitions.
	GroupAny Group = "any"
)

// Valid reports whether g is a group that may appear in a location
// definition.
func (g Group) Valid() bool {
	switch g {
	case GroupUpperFloor, GroupLowerFloor, GroupOutdoor:
		return true
	}
	return false
}

// matches reports whether g satisfies a transition pool selector,
// treating GroupAny as a wildcard.
func (g Group) matches(sel Group) bool {
	return sel == GroupAny || sel == g
}
