package region

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// ErrCircularInheritance is returned when a parent assignment would make a
// region its own ancestor.
var ErrCircularInheritance = errors.New("circular inheritance")

// Kind identifies the geometry variant of a region.
type Kind string

const (
	KindCuboid  Kind = "cuboid"
	KindPolygon Kind = "polygon"
	KindGlobal  Kind = "global"
)

// BlockVector is an integer block position.
type BlockVector struct {
	X, Y, Z int
}

// BlockVector2 is an integer position on the horizontal plane.
type BlockVector2 struct {
	X, Z int
}

// Shape is the geometry of a region. It is implemented by Cuboid, Polygon
// and Global only.
type Shape interface {
	Kind() Kind
	isShape()
}

// Cuboid is an axis aligned box between Min and Max.
type Cuboid struct {
	Min BlockVector
	Max BlockVector
}

// Polygon is an extruded polygon between MinY and MaxY.
type Polygon struct {
	Points []BlockVector2
	MinY   int
	MaxY   int
}

// Global covers a whole world and has no geometry.
type Global struct{}

func (Cuboid) Kind() Kind  { return KindCuboid }
func (Polygon) Kind() Kind { return KindPolygon }
func (Global) Kind() Kind  { return KindGlobal }

func (Cuboid) isShape()  {}
func (Polygon) isShape() {}
func (Global) isShape()  {}

// Domain is a set of players and groups granted a relationship to a region.
type Domain struct {
	players map[uuid.UUID]struct{}
	groups  map[string]struct{}
}

// NewDomain returns an empty domain.
func NewDomain() Domain {
	return Domain{
		players: make(map[uuid.UUID]struct{}),
		groups:  make(map[string]struct{}),
	}
}

// AddPlayer adds a player identifier.
func (d *Domain) AddPlayer(id uuid.UUID) {
	if d.players == nil {
		d.players = make(map[uuid.UUID]struct{})
	}
	d.players[id] = struct{}{}
}

// AddGroup adds a group name.
func (d *Domain) AddGroup(name string) {
	if d.groups == nil {
		d.groups = make(map[string]struct{})
	}
	d.groups[name] = struct{}{}
}

// HasPlayer reports whether the player is part of the domain.
func (d Domain) HasPlayer(id uuid.UUID) bool {
	_, ok := d.players[id]
	return ok
}

// HasGroup reports whether the group is part of the domain.
func (d Domain) HasGroup(name string) bool {
	_, ok := d.groups[name]
	return ok
}

// Players returns the player identifiers in a stable order.
func (d Domain) Players() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(d.players))
	for id := range d.players {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Groups returns the group names in a stable order.
func (d Domain) Groups() []string {
	out := make([]string, 0, len(d.groups))
	for g := range d.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of players and groups in the domain.
func (d Domain) Size() int {
	return len(d.players) + len(d.groups)
}

// Region is a named, prioritized spatial policy object.
type Region struct {
	ID       string
	Shape    Shape
	Priority int
	Owners   Domain
	Members  Domain
	Flags    map[string]FlagValue
	Parent   *Region
}

// New creates a region with empty domains and flags.
func New(id string, shape Shape) *Region {
	return &Region{
		ID:      id,
		Shape:   shape,
		Owners:  NewDomain(),
		Members: NewDomain(),
		Flags:   make(map[string]FlagValue),
	}
}

// Kind returns the variant of the region's shape.
func (r *Region) Kind() Kind {
	if r.Shape == nil {
		return KindGlobal
	}
	return r.Shape.Kind()
}

// SetFlag sets or replaces a flag value. A nil value removes the flag.
func (r *Region) SetFlag(name string, value FlagValue) {
	if value == nil {
		delete(r.Flags, name)
		return
	}
	if r.Flags == nil {
		r.Flags = make(map[string]FlagValue)
	}
	r.Flags[name] = value
}

// ParentID returns the id of the parent region, or "" when there is none.
func (r *Region) ParentID() string {
	if r.Parent == nil {
		return ""
	}
	return r.Parent.ID
}

// SetParent links the region to parent. A nil parent clears the link.
// Assigning the region itself or one of its descendants fails with
// ErrCircularInheritance and leaves the current link untouched.
func (r *Region) SetParent(parent *Region) error {
	if parent == nil {
		r.Parent = nil
		return nil
	}
	for p := parent; p != nil; p = p.Parent {
		if p == r {
			return fmt.Errorf("region %q cannot inherit from %q: %w", r.ID, parent.ID, ErrCircularInheritance)
		}
	}
	r.Parent = parent
	return nil
}

// Location identifies a region by world and id. It compares by value.
type Location struct {
	World string
	ID    string
}

// String returns "world/id".
func (l Location) String() string {
	return l.World + "/" + l.ID
}
