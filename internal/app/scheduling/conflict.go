package scheduling

import (
	"strings"
	"time"

	"github.com/mzajac/examflow/internal/app/models"
)

// Dimension is one axis on which two exam terms can collide.
type Dimension string

const (
	DimensionRoom     Dimension = "room"
	DimensionGroup    Dimension = "group"
	DimensionLecturer Dimension = "lecturer"
)

// DimensionSet is the set of dimensions shared by two overlapping terms.
// With three dimensions there are seven possible non-empty combinations, and
// downstream messaging distinguishes all of them.
type DimensionSet struct {
	Room     bool
	Group    bool
	Lecturer bool
}

// IsEmpty reports whether no dimension matched.
func (d DimensionSet) IsEmpty() bool {
	return !d.Room && !d.Group && !d.Lecturer
}

// Label renders the combination in stable "room,group,lecturer" order for
// user-facing conflict messages.
func (d DimensionSet) Label() string {
	parts := make([]string, 0, 3)
	if d.Room {
		parts = append(parts, string(DimensionRoom))
	}
	if d.Group {
		parts = append(parts, string(DimensionGroup))
	}
	if d.Lecturer {
		parts = append(parts, string(DimensionLecturer))
	}
	return strings.Join(parts, ",")
}

// TermSlot is the snapshot of a term the detector works on: the occupied
// time window plus the three collision keys. RoomID is nil when no room has
// been assigned; such a term can still conflict on group or lecturer.
type TermSlot struct {
	TermID     int64
	Date       time.Time
	StartMin   int
	EndMin     int
	RoomID     *int64
	GroupID    int64
	LecturerID int64
	Status     models.TermStatus
}

// Conflict pairs an overlapping sibling term with the exact set of
// dimensions it shares with the candidate.
type Conflict struct {
	Other      TermSlot
	Dimensions DimensionSet
}

// overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// matchingDimensions computes which collision keys the two slots share.
func matchingDimensions(a, b TermSlot) DimensionSet {
	var set DimensionSet
	if a.RoomID != nil && b.RoomID != nil && *a.RoomID == *b.RoomID {
		set.Room = true
	}
	if a.GroupID == b.GroupID {
		set.Group = true
	}
	if a.LecturerID == b.LecturerID {
		set.Lecturer = true
	}
	return set
}

// DetectConflicts returns every sibling that overlaps the candidate in time
// (same date, intersecting [start,end) intervals) and shares at least one of
// the room/group/lecturer keys, together with the exact matching set.
// A term never conflicts with itself, so a sibling carrying the candidate's
// own id is skipped when re-validating after an edit. Rejected siblings are
// skipped as well; callers normally exclude them at query time already.
func DetectConflicts(candidate TermSlot, siblings []TermSlot) []Conflict {
	var conflicts []Conflict
	for _, other := range siblings {
		if other.TermID != 0 && other.TermID == candidate.TermID {
			continue
		}
		if other.Status == models.StatusRejected {
			continue
		}
		if !sameDate(candidate.Date, other.Date) {
			continue
		}
		if !overlaps(candidate.StartMin, candidate.EndMin, other.StartMin, other.EndMin) {
			continue
		}
		dims := matchingDimensions(candidate, other)
		if dims.IsEmpty() {
			continue
		}
		conflicts = append(conflicts, Conflict{Other: other, Dimensions: dims})
	}
	return conflicts
}

// CombinedDimensions unions the matching sets of all reported conflicts,
// producing the single combination label surfaced to both parties.
func CombinedDimensions(conflicts []Conflict) DimensionSet {
	var set DimensionSet
	for _, c := range conflicts {
		set.Room = set.Room || c.Dimensions.Room
		set.Group = set.Group || c.Dimensions.Group
		set.Lecturer = set.Lecturer || c.Dimensions.Lecturer
	}
	return set
}

// sameDate compares two timestamps on their calendar date in UTC.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
