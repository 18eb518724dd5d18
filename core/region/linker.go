package region

import (
	"errors"
	"sort"
)

// Reasons reported for links that could not be made.
const (
	ReasonMissingParent = "missing parent"
	ReasonCircular      = "circular inheritance"
)

// SkippedLink describes a declared parent that was not linked.
type SkippedLink struct {
	Region string
	Parent string
	Reason string
}

// RelinkParents resolves the parent ids declared in parents against regions
// and sets each region's Parent. Links that point to an unknown id or would
// create a cycle are skipped and reported; the maps are never modified.
// Regions are processed in id order so the outcome for cycles is stable.
func RelinkParents(regions map[string]*Region, parents map[*Region]string) []SkippedLink {
	children := make([]*Region, 0, len(parents))
	for r := range parents {
		children = append(children, r)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })

	var skipped []SkippedLink
	for _, child := range children {
		parentID := parents[child]
		if parentID == "" {
			continue
		}
		parent, ok := regions[parentID]
		if !ok {
			skipped = append(skipped, SkippedLink{Region: child.ID, Parent: parentID, Reason: ReasonMissingParent})
			continue
		}
		if err := child.SetParent(parent); err != nil {
			reason := err.Error()
			if errors.Is(err, ErrCircularInheritance) {
				reason = ReasonCircular
			}
			skipped = append(skipped, SkippedLink{Region: child.ID, Parent: parentID, Reason: reason})
		}
	}
	return skipped
}
