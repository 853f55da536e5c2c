package formflow

import "fmt"

// Level is one rung of the location hierarchy, ordered from site down to room.
type Level string

const (
	LevelSite     Level = "site"
	LevelBuilding Level = "building"
	LevelWing     Level = "wing"
	LevelArea     Level = "area"
	LevelFloor    Level = "floor"
	LevelRoom     Level = "room"
)

// Hierarchy lists every level in descending order. Index 0 is the root.
var Hierarchy = []Level{LevelSite, LevelBuilding, LevelWing, LevelArea, LevelFloor, LevelRoom}

func ParseLevel(s string) (Level, error) {
	for _, l := range Hierarchy {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown location level: %q", s)
}

// Index returns the level's position in Hierarchy, or -1 for an unknown level.
func (l Level) Index() int {
	for i, candidate := range Hierarchy {
		if candidate == l {
			return i
		}
	}
	return -1
}

// Child returns the immediately enclosed level. ok is false for room.
func (l Level) Child() (Level, bool) {
	i := l.Index()
	if i < 0 || i+1 >= len(Hierarchy) {
		return "", false
	}
	return Hierarchy[i+1], true
}

// Parent returns the immediately enclosing level. ok is false for site.
func (l Level) Parent() (Level, bool) {
	i := l.Index()
	if i <= 0 {
		return "", false
	}
	return Hierarchy[i-1], true
}

// Descendants returns every level strictly deeper than l, in hierarchy order.
func (l Level) Descendants() []Level {
	i := l.Index()
	if i < 0 {
		return nil
	}
	out := make([]Level, len(Hierarchy)-i-1)
	copy(out, Hierarchy[i+1:])
	return out
}
