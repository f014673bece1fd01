package models

import "strings"

// Kind identifies one of the three record families shared by sessions and
// subscriptions.
type Kind string

const (
	// KindQuran covers recitation circles (individual and group).
	KindQuran Kind = "quran"
	// KindAcademic covers private academic lessons.
	KindAcademic Kind = "academic"
	// KindCourse covers interactive course sessions and course enrolments.
	KindCourse Kind = "course"
)

// AllKinds lists every kind in its canonical order.
func AllKinds() []Kind {
	return []Kind{KindQuran, KindAcademic, KindCourse}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindQuran, KindAcademic, KindCourse:
		return true
	default:
		return false
	}
}

// ParseKind accepts the canonical names plus the aliases older callers use.
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "quran", "a":
		return KindQuran, true
	case "academic", "b":
		return KindAcademic, true
	case "course", "interactive", "c":
		return KindCourse, true
	default:
		return "", false
	}
}

// NormalizeKinds drops unknown and duplicate kinds and returns them in
// canonical order. An empty input means every kind.
func NormalizeKinds(kinds []Kind) []Kind {
	if len(kinds) == 0 {
		return AllKinds()
	}
	wanted := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		if k.Valid() {
			wanted[k] = struct{}{}
		}
	}
	result := make([]Kind, 0, len(wanted))
	for _, k := range AllKinds() {
		if _, ok := wanted[k]; ok {
			result = append(result, k)
		}
	}
	return result
}
