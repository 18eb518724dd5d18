package reconcile

import (
	"fmt"
	"sort"

	"region-sync/core/region"
)

// Reconcile compares the regions a manager holds with the regions stored for
// the same world and returns one result per id, sorted by id.
func Reconcile(memory, stored []*region.Region) []Result {
	memIndex := index(memory)
	storeIndex := index(stored)

	union := buildUnion(memIndex, storeIndex)

	results := make([]Result, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, memIndex, storeIndex))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})

	return results
}

func index(regions []*region.Region) map[string]*region.Region {
	out := make(map[string]*region.Region, len(regions))
	for _, r := range regions {
		out[r.ID] = r
	}
	return out
}

// buildUnion creates a union of the keys from both sources.
func buildUnion(memIndex, storeIndex map[string]*region.Region) map[string]struct{} {
	union := make(map[string]struct{}, len(memIndex))
	for key := range memIndex {
		union[key] = struct{}{}
	}
	for key := range storeIndex {
		union[key] = struct{}{}
	}
	return union
}

// buildResult creates a Result for a single key.
func buildResult(key string, memIndex, storeIndex map[string]*region.Region) Result {
	mem, memPresent := memIndex[key]
	stored, storePresent := storeIndex[key]

	result := Result{
		ID:            key,
		MemoryPresent: memPresent,
		StorePresent:  storePresent,
		Mismatch:      []string{},
	}

	if memPresent && storePresent {
		result.Mismatch = CompareFields(mem, stored)
	}

	return result
}

// CompareFields lists the fields in which two versions of a region differ.
func CompareFields(mem, stored *region.Region) []string {
	var mismatch []string
	add := func(field string, m, s any) {
		mismatch = append(mismatch, fmt.Sprintf("%s: memory=%v store=%v", field, m, s))
	}

	if mem.Kind() != stored.Kind() {
		add("type", mem.Kind(), stored.Kind())
	} else if !region.ShapeEqual(mem.Shape, stored.Shape) {
		add("shape", mem.Shape, stored.Shape)
	}
	if mem.Priority != stored.Priority {
		add("priority", mem.Priority, stored.Priority)
	}
	if mem.ParentID() != stored.ParentID() {
		add("parent", mem.ParentID(), stored.ParentID())
	}
	if !mem.Owners.Equal(stored.Owners) {
		add("owners", mem.Owners.Size(), stored.Owners.Size())
	}
	if !mem.Members.Equal(stored.Members) {
		add("members", mem.Members.Size(), stored.Members.Size())
	}

	names := make(map[string]struct{}, len(mem.Flags)+len(stored.Flags))
	for name := range mem.Flags {
		names[name] = struct{}{}
	}
	for name := range stored.Flags {
		names[name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		m, s := mem.Flags[name], stored.Flags[name]
		if !region.FlagEqual(m, s) {
			add("flags."+name, m, s)
		}
	}

	return mismatch
}
