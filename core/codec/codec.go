package codec

import (
	"fmt"
	"sort"
	"strings"

	"region-sync/core/region"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document field names.
const (
	FieldID       = "_id"
	FieldName     = "name"
	FieldWorld    = "world"
	FieldType     = "type"
	FieldParent   = "parent"
	FieldPriority = "priority"
	FieldMin      = "min"
	FieldMax      = "max"
	FieldPoints   = "points"
	FieldMinY     = "min_y"
	FieldMaxY     = "max_y"
	FieldFlags    = "flags"
	FieldOwners   = "owners"
	FieldMembers  = "members"
	FieldPlayers  = "players"
	FieldGroups   = "groups"
)

// FlagRegistry tells which flag names hold enum constants. Enum values are
// stored as plain strings and only the registry can tell them apart.
type FlagRegistry interface {
	IsEnum(name string) bool
}

// Record is a region together with its world, the declared parent id and
// the identity assigned by the database.
type Record struct {
	ID     primitive.ObjectID
	World  string
	Parent string
	Region *region.Region
}

// NewRecord wraps a region for persistence in world. The parent id is taken
// from the region's current parent link.
func NewRecord(world string, r *region.Region) *Record {
	return &Record{
		World:  world,
		Parent: r.ParentID(),
		Region: r,
	}
}

// Location returns the (world, id) key of the record.
func (rec *Record) Location() region.Location {
	return region.Location{World: rec.World, ID: rec.Region.ID}
}

// Encode converts a record into its document representation. The database
// identity is never written.
func Encode(rec *Record) bson.D {
	r := rec.Region
	doc := bson.D{
		{Key: FieldName, Value: r.ID},
		{Key: FieldWorld, Value: rec.World},
		{Key: FieldType, Value: string(r.Kind())},
	}
	if rec.Parent != "" {
		doc = append(doc, bson.E{Key: FieldParent, Value: rec.Parent})
	}
	if r.Priority != 0 {
		doc = append(doc, bson.E{Key: FieldPriority, Value: encodeInt(int64(r.Priority))})
	}

	switch s := r.Shape.(type) {
	case region.Cuboid:
		doc = append(doc,
			bson.E{Key: FieldMin, Value: encodeBlockVector(s.Min)},
			bson.E{Key: FieldMax, Value: encodeBlockVector(s.Max)},
		)
	case region.Polygon:
		points := make(bson.A, 0, len(s.Points))
		for _, p := range s.Points {
			points = append(points, bson.D{{Key: "x", Value: encodeInt(int64(p.X))}, {Key: "z", Value: encodeInt(int64(p.Z))}})
		}
		doc = append(doc,
			bson.E{Key: FieldPoints, Value: points},
			bson.E{Key: FieldMinY, Value: encodeInt(int64(s.MinY))},
			bson.E{Key: FieldMaxY, Value: encodeInt(int64(s.MaxY))},
		)
	case region.Global, nil:
	}

	if len(r.Flags) > 0 {
		names := make([]string, 0, len(r.Flags))
		for name := range r.Flags {
			names = append(names, name)
		}
		sort.Strings(names)
		flags := make(bson.D, 0, len(names))
		for _, name := range names {
			flags = append(flags, bson.E{Key: name, Value: encodeFlag(r.Flags[name])})
		}
		doc = append(doc, bson.E{Key: FieldFlags, Value: flags})
	}

	doc = append(doc,
		bson.E{Key: FieldOwners, Value: encodeDomain(r.Owners)},
		bson.E{Key: FieldMembers, Value: encodeDomain(r.Members)},
	)
	return doc
}

// Marshal encodes a record into raw BSON.
func Marshal(rec *Record) (bson.Raw, error) {
	b, err := bson.Marshal(Encode(rec))
	if err != nil {
		return nil, err
	}
	return bson.Raw(b), nil
}

// Decode converts a stored document back into a record, resolving enum flags
// through region.DefaultFlags. Unknown fields are ignored.
func Decode(raw bson.Raw) (*Record, error) {
	return DecodeWith(raw, region.DefaultFlags)
}

// DecodeWith is Decode with an explicit flag registry. A nil registry decodes
// every string flag as a StringFlag.
func DecodeWith(raw bson.Raw, registry FlagRegistry) (*Record, error) {
	name, err := requiredString(raw, FieldName)
	if err != nil {
		return nil, err
	}
	typ, err := requiredString(raw, FieldType)
	if err != nil {
		return nil, err
	}

	var shape region.Shape
	switch region.Kind(strings.ToLower(typ)) {
	case region.KindCuboid:
		minV, err := requiredBlockVector(raw, FieldMin)
		if err != nil {
			return nil, err
		}
		maxV, err := requiredBlockVector(raw, FieldMax)
		if err != nil {
			return nil, err
		}
		shape = region.Cuboid{Min: minV, Max: maxV}
	case region.KindPolygon:
		minY, err := requiredInt(raw, FieldMinY)
		if err != nil {
			return nil, err
		}
		maxY, err := requiredInt(raw, FieldMaxY)
		if err != nil {
			return nil, err
		}
		points, err := requiredPoints(raw)
		if err != nil {
			return nil, err
		}
		shape = region.Polygon{Points: points, MinY: minY, MaxY: maxY}
	case region.KindGlobal:
		shape = region.Global{}
	default:
		return nil, &UnsupportedVariantError{Type: typ}
	}

	r := region.New(name, shape)
	rec := &Record{Region: r}

	if rv, ok := lookup(raw, FieldID); ok {
		oid, ok := rv.ObjectIDOK()
		if !ok {
			return nil, &DecodeError{Field: FieldID, Err: fmt.Errorf("expected object id, got %s", rv.Type)}
		}
		rec.ID = oid
	}
	if rv, ok := lookup(raw, FieldWorld); ok {
		world, ok := rv.StringValueOK()
		if !ok {
			return nil, &DecodeError{Field: FieldWorld, Err: fmt.Errorf("expected string, got %s", rv.Type)}
		}
		rec.World = world
	}
	if rv, ok := lookup(raw, FieldParent); ok && rv.Type != bson.TypeNull {
		parent, ok := rv.StringValueOK()
		if !ok {
			return nil, &DecodeError{Field: FieldParent, Err: fmt.Errorf("expected string, got %s", rv.Type)}
		}
		rec.Parent = parent
	}
	if rv, ok := lookup(raw, FieldPriority); ok {
		p, err := intValue(rv)
		if err != nil {
			return nil, &DecodeError{Field: FieldPriority, Err: err}
		}
		r.Priority = p
	}

	if r.Owners, err = decodeDomain(raw, FieldOwners); err != nil {
		return nil, err
	}
	if r.Members, err = decodeDomain(raw, FieldMembers); err != nil {
		return nil, err
	}

	if rv, ok := lookup(raw, FieldFlags); ok && rv.Type != bson.TypeNull {
		flags, ok := rv.DocumentOK()
		if !ok {
			return nil, &DecodeError{Field: FieldFlags, Err: fmt.Errorf("expected document, got %s", rv.Type)}
		}
		elems, err := flags.Elements()
		if err != nil {
			return nil, &DecodeError{Field: FieldFlags, Err: err}
		}
		for _, el := range elems {
			if el.Value().Type == bson.TypeNull {
				continue
			}
			enum := registry != nil && registry.IsEnum(el.Key())
			v, err := decodeFlag(el.Value(), enum)
			if err != nil {
				return nil, &DecodeError{Field: FieldFlags + "." + el.Key(), Err: err}
			}
			r.SetFlag(el.Key(), v)
		}
	}

	return rec, nil
}

func encodeBlockVector(v region.BlockVector) bson.D {
	return bson.D{
		{Key: "x", Value: encodeInt(int64(v.X))},
		{Key: "y", Value: encodeInt(int64(v.Y))},
		{Key: "z", Value: encodeInt(int64(v.Z))},
	}
}

// encodeInt writes an int32 when the value fits and an int64 otherwise.
func encodeInt(v int64) any {
	if int64(int32(v)) == v {
		return int32(v)
	}
	return v
}

func encodeVector(v region.VectorFlag) bson.D {
	return bson.D{
		{Key: "x", Value: v.X},
		{Key: "y", Value: v.Y},
		{Key: "z", Value: v.Z},
	}
}

func encodeDomain(d region.Domain) bson.D {
	players := make(bson.A, 0)
	for _, id := range d.Players() {
		players = append(players, id.String())
	}
	groups := make(bson.A, 0)
	for _, g := range d.Groups() {
		groups = append(groups, g)
	}
	return bson.D{
		{Key: FieldPlayers, Value: players},
		{Key: FieldGroups, Value: groups},
	}
}

func encodeFlag(v region.FlagValue) any {
	switch f := v.(type) {
	case region.StringFlag:
		return string(f)
	case region.EnumFlag:
		return string(f)
	case region.BoolFlag:
		return bool(f)
	case region.IntFlag:
		return encodeInt(int64(f))
	case region.FloatFlag:
		return float64(f)
	case region.VectorFlag:
		return encodeVector(f)
	case region.LocationFlag:
		return bson.D{
			{Key: "direction", Value: encodeVector(f.Direction)},
			{Key: "position", Value: encodeVector(f.Position)},
			{Key: "pitch", Value: f.Pitch},
			{Key: "yaw", Value: f.Yaw},
		}
	case region.ListFlag:
		out := make(bson.A, 0, len(f))
		for _, item := range f {
			out = append(out, encodeFlag(item))
		}
		return out
	default:
		return nil
	}
}

// decodeFlag converts a stored flag value. Strings become EnumFlag values
// when enum is set, including the items of a list.
func decodeFlag(rv bson.RawValue, enum bool) (region.FlagValue, error) {
	switch rv.Type {
	case bson.TypeString:
		if enum {
			return region.EnumFlag(rv.StringValue()), nil
		}
		return region.StringFlag(rv.StringValue()), nil
	case bson.TypeBoolean:
		return region.BoolFlag(rv.Boolean()), nil
	case bson.TypeInt32:
		return region.IntFlag(rv.Int32()), nil
	case bson.TypeInt64:
		return region.IntFlag(rv.Int64()), nil
	case bson.TypeDouble:
		return region.FloatFlag(rv.Double()), nil
	case bson.TypeEmbeddedDocument:
		doc := rv.Document()
		if _, ok := lookup(doc, "position"); ok {
			return decodeLocation(doc)
		}
		return decodeVector(doc)
	case bson.TypeArray:
		values, err := rv.Array().Values()
		if err != nil {
			return nil, err
		}
		list := make(region.ListFlag, 0, len(values))
		for _, item := range values {
			v, err := decodeFlag(item, enum)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported flag value type %s", rv.Type)
	}
}

func decodeVector(doc bson.Raw) (region.VectorFlag, error) {
	var v region.VectorFlag
	for key, dst := range map[string]*float64{"x": &v.X, "y": &v.Y, "z": &v.Z} {
		rv, ok := lookup(doc, key)
		if !ok {
			continue
		}
		f, err := floatValue(rv)
		if err != nil {
			return v, fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}
	return v, nil
}

func decodeLocation(doc bson.Raw) (region.LocationFlag, error) {
	var loc region.LocationFlag
	for key, dst := range map[string]*region.VectorFlag{"position": &loc.Position, "direction": &loc.Direction} {
		rv, ok := lookup(doc, key)
		if !ok {
			continue
		}
		sub, ok := rv.DocumentOK()
		if !ok {
			return loc, fmt.Errorf("%s: expected document, got %s", key, rv.Type)
		}
		v, err := decodeVector(sub)
		if err != nil {
			return loc, fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
	}
	for key, dst := range map[string]*float64{"yaw": &loc.Yaw, "pitch": &loc.Pitch} {
		rv, ok := lookup(doc, key)
		if !ok {
			continue
		}
		f, err := floatValue(rv)
		if err != nil {
			return loc, fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}
	return loc, nil
}

func decodeDomain(raw bson.Raw, field string) (region.Domain, error) {
	d := region.NewDomain()
	rv, ok := lookup(raw, field)
	if !ok || rv.Type == bson.TypeNull {
		return d, nil
	}
	doc, ok := rv.DocumentOK()
	if !ok {
		return d, &DecodeError{Field: field, Err: fmt.Errorf("expected document, got %s", rv.Type)}
	}

	players, err := stringArray(doc, FieldPlayers)
	if err != nil {
		return d, &DecodeError{Field: field + "." + FieldPlayers, Err: err}
	}
	for _, p := range players {
		id, err := uuid.Parse(p)
		if err != nil {
			return d, &DecodeError{Field: field + "." + FieldPlayers, Err: err}
		}
		d.AddPlayer(id)
	}

	groups, err := stringArray(doc, FieldGroups)
	if err != nil {
		return d, &DecodeError{Field: field + "." + FieldGroups, Err: err}
	}
	for _, g := range groups {
		d.AddGroup(g)
	}
	return d, nil
}

func stringArray(doc bson.Raw, field string) ([]string, error) {
	rv, ok := lookup(doc, field)
	if !ok || rv.Type == bson.TypeNull {
		return nil, nil
	}
	arr, ok := rv.ArrayOK()
	if !ok {
		return nil, fmt.Errorf("expected array, got %s", rv.Type)
	}
	values, err := arr.Values()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.StringValueOK()
		if !ok {
			return nil, fmt.Errorf("expected string element, got %s", v.Type)
		}
		out = append(out, s)
	}
	return out, nil
}

func requiredPoints(raw bson.Raw) ([]region.BlockVector2, error) {
	rv, ok := lookup(raw, FieldPoints)
	if !ok {
		return nil, &MissingFieldError{Field: FieldPoints}
	}
	arr, ok := rv.ArrayOK()
	if !ok {
		return nil, &DecodeError{Field: FieldPoints, Err: fmt.Errorf("expected array, got %s", rv.Type)}
	}
	values, err := arr.Values()
	if err != nil {
		return nil, &DecodeError{Field: FieldPoints, Err: err}
	}
	points := make([]region.BlockVector2, 0, len(values))
	for i, v := range values {
		doc, ok := v.DocumentOK()
		if !ok {
			return nil, &DecodeError{Field: FieldPoints, Err: fmt.Errorf("point %d: expected document, got %s", i, v.Type)}
		}
		x, err := optionalInt(doc, "x")
		if err != nil {
			return nil, &DecodeError{Field: FieldPoints, Err: fmt.Errorf("point %d: %w", i, err)}
		}
		z, err := optionalInt(doc, "z")
		if err != nil {
			return nil, &DecodeError{Field: FieldPoints, Err: fmt.Errorf("point %d: %w", i, err)}
		}
		points = append(points, region.BlockVector2{X: x, Z: z})
	}
	return points, nil
}

func requiredBlockVector(raw bson.Raw, field string) (region.BlockVector, error) {
	var v region.BlockVector
	rv, ok := lookup(raw, field)
	if !ok {
		return v, &MissingFieldError{Field: field}
	}
	doc, ok := rv.DocumentOK()
	if !ok {
		return v, &DecodeError{Field: field, Err: fmt.Errorf("expected document, got %s", rv.Type)}
	}
	var err error
	if v.X, err = optionalInt(doc, "x"); err != nil {
		return v, &DecodeError{Field: field, Err: err}
	}
	if v.Y, err = optionalInt(doc, "y"); err != nil {
		return v, &DecodeError{Field: field, Err: err}
	}
	if v.Z, err = optionalInt(doc, "z"); err != nil {
		return v, &DecodeError{Field: field, Err: err}
	}
	return v, nil
}

func requiredString(raw bson.Raw, field string) (string, error) {
	rv, ok := lookup(raw, field)
	if !ok || rv.Type == bson.TypeNull {
		return "", &MissingFieldError{Field: field}
	}
	s, ok := rv.StringValueOK()
	if !ok {
		return "", &DecodeError{Field: field, Err: fmt.Errorf("expected string, got %s", rv.Type)}
	}
	return s, nil
}

func requiredInt(raw bson.Raw, field string) (int, error) {
	rv, ok := lookup(raw, field)
	if !ok {
		return 0, &MissingFieldError{Field: field}
	}
	i, err := intValue(rv)
	if err != nil {
		return 0, &DecodeError{Field: field, Err: err}
	}
	return i, nil
}

func optionalInt(doc bson.Raw, field string) (int, error) {
	rv, ok := lookup(doc, field)
	if !ok {
		return 0, nil
	}
	i, err := intValue(rv)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return i, nil
}

func lookup(raw bson.Raw, key string) (bson.RawValue, bool) {
	rv, err := raw.LookupErr(key)
	if err != nil {
		return bson.RawValue{}, false
	}
	return rv, true
}

func intValue(rv bson.RawValue) (int, error) {
	switch rv.Type {
	case bson.TypeInt32:
		return int(rv.Int32()), nil
	case bson.TypeInt64:
		return int(rv.Int64()), nil
	case bson.TypeDouble:
		f := rv.Double()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("expected integer, got %v", f)
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("expected integer, got %s", rv.Type)
	}
}

func floatValue(rv bson.RawValue) (float64, error) {
	switch rv.Type {
	case bson.TypeDouble:
		return rv.Double(), nil
	case bson.TypeInt32:
		return float64(rv.Int32()), nil
	case bson.TypeInt64:
		return float64(rv.Int64()), nil
	default:
		return 0, fmt.Errorf("expected number, got %s", rv.Type)
	}
}
