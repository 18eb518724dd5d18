package region

// Equal reports whether two regions hold the same data. Sets and maps are
// compared by content, so a nil map equals an empty one. Parents are
// compared by id.
func (r *Region) Equal(o *Region) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.ID != o.ID || r.Priority != o.Priority || r.ParentID() != o.ParentID() {
		return false
	}
	if !ShapeEqual(r.Shape, o.Shape) || !r.Owners.Equal(o.Owners) || !r.Members.Equal(o.Members) {
		return false
	}
	if len(r.Flags) != len(o.Flags) {
		return false
	}
	for name, v := range r.Flags {
		w, ok := o.Flags[name]
		if !ok || !FlagEqual(v, w) {
			return false
		}
	}
	return true
}

// Equal reports whether two domains hold the same players and groups.
func (d Domain) Equal(o Domain) bool {
	if len(d.players) != len(o.players) || len(d.groups) != len(o.groups) {
		return false
	}
	for id := range d.players {
		if !o.HasPlayer(id) {
			return false
		}
	}
	for g := range d.groups {
		if !o.HasGroup(g) {
			return false
		}
	}
	return true
}

// ShapeEqual compares two shapes. A nil shape is treated as Global.
func ShapeEqual(a, b Shape) bool {
	if a == nil {
		a = Global{}
	}
	if b == nil {
		b = Global{}
	}
	switch s := a.(type) {
	case Cuboid:
		t, ok := b.(Cuboid)
		return ok && s == t
	case Polygon:
		t, ok := b.(Polygon)
		if !ok || s.MinY != t.MinY || s.MaxY != t.MaxY || len(s.Points) != len(t.Points) {
			return false
		}
		for i := range s.Points {
			if s.Points[i] != t.Points[i] {
				return false
			}
		}
		return true
	case Global:
		_, ok := b.(Global)
		return ok
	default:
		return false
	}
}

// FlagEqual compares two flag values, including their concrete type.
func FlagEqual(a, b FlagValue) bool {
	switch v := a.(type) {
	case ListFlag:
		w, ok := b.(ListFlag)
		if !ok || len(v) != len(w) {
			return false
		}
		for i := range v {
			if !FlagEqual(v[i], w[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		return a == b
	}
}
