package codec_test

import (
	"errors"
	"testing"

	"region-sync/core/codec"
	"region-sync/core/region"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func populated(id string, shape region.Shape) *region.Region {
	r := region.New(id, shape)
	r.Priority = 7
	r.Owners.AddPlayer(uuid.MustParse("5f0c6a3e-2b1d-4c8e-9a7f-1e2d3c4b5a69"))
	r.Owners.AddGroup("admins")
	r.Members.AddGroup("builders")
	r.SetFlag("greeting", region.StringFlag("Welcome"))
	r.SetFlag("pvp", region.BoolFlag(false))
	r.SetFlag("heal-amount", region.IntFlag(4))
	r.SetFlag("big-number", region.IntFlag(1<<40))
	r.SetFlag("price", region.FloatFlag(12.5))
	r.SetFlag("anchor", region.VectorFlag{X: 1.5, Y: 64, Z: -3.25})
	r.SetFlag("teleport", region.LocationFlag{
		Position:  region.VectorFlag{X: 10, Y: 65, Z: 10},
		Direction: region.VectorFlag{X: 0, Y: 0, Z: 1},
		Yaw:       90,
		Pitch:     -15.5,
	})
	r.SetFlag("blocked-cmds", region.ListFlag{region.StringFlag("/home"), region.StringFlag("/spawn")})
	r.SetFlag("game-mode", region.EnumFlag("CREATIVE"))
	return r
}

func roundTrip(t *testing.T, rec *codec.Record) *codec.Record {
	t.Helper()
	raw, err := codec.Marshal(rec)
	require.NoError(t, err)
	out, err := codec.Decode(raw)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	shapes := map[string]region.Shape{
		"cuboid": region.Cuboid{Min: region.BlockVector{X: -5, Y: 0, Z: -5}, Max: region.BlockVector{X: 5, Y: 255, Z: 5}},
		"polygon": region.Polygon{
			Points: []region.BlockVector2{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}},
			MinY:   10,
			MaxY:   80,
		},
		"global": region.Global{},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			rec := &codec.Record{World: "world", Parent: "parent", Region: populated("r-"+name, shape)}

			out := roundTrip(t, rec)

			assert.Equal(t, rec.World, out.World)
			assert.Equal(t, rec.Parent, out.Parent)
			assert.Equal(t, rec.Region, out.Region)
			assert.True(t, out.ID.IsZero())
		})
	}
}

func TestSpawnScenario(t *testing.T) {
	spawn := region.New("spawn", region.Cuboid{Max: region.BlockVector{X: 10, Y: 10, Z: 10}})
	spawn.Priority = 5
	rec := codec.NewRecord("world", spawn)

	out := roundTrip(t, rec)

	assert.Equal(t, region.Location{World: "world", ID: "spawn"}, out.Location())
	assert.Equal(t, spawn, out.Region)
	assert.Equal(t, "", out.Parent)
}

func TestEncode(t *testing.T) {
	t.Run("OmitsZeroPriorityAndParent", func(t *testing.T) {
		doc := codec.Encode(&codec.Record{World: "world", Region: region.New("plain", region.Global{})})

		m := doc.Map()
		assert.NotContains(t, m, codec.FieldPriority)
		assert.NotContains(t, m, codec.FieldParent)
		assert.NotContains(t, m, codec.FieldFlags)
		assert.NotContains(t, m, codec.FieldMin)
		assert.NotContains(t, m, codec.FieldPoints)
		assert.NotContains(t, m, codec.FieldID)
		assert.Equal(t, "plain", m[codec.FieldName])
		assert.Equal(t, "world", m[codec.FieldWorld])
		assert.Equal(t, "global", m[codec.FieldType])
		assert.Contains(t, m, codec.FieldOwners)
		assert.Contains(t, m, codec.FieldMembers)
	})

	t.Run("WritesPriorityAndParent", func(t *testing.T) {
		r := region.New("child", region.Global{})
		r.Priority = 3
		doc := codec.Encode(&codec.Record{World: "world", Parent: "root", Region: r})

		m := doc.Map()
		assert.Equal(t, int32(3), m[codec.FieldPriority])
		assert.Equal(t, "root", m[codec.FieldParent])
	})

	t.Run("WidensPriorityBeyondInt32", func(t *testing.T) {
		r := region.New("wide", region.Global{})
		r.Priority = 1 << 31
		doc := codec.Encode(&codec.Record{World: "world", Region: r})

		assert.Equal(t, int64(1<<31), doc.Map()[codec.FieldPriority])
		assert.Equal(t, 1<<31, roundTrip(t, &codec.Record{World: "world", Region: r}).Region.Priority)
	})
}

func TestRoundTripBoundaries(t *testing.T) {
	const big = 1 << 33
	shapes := map[string]region.Shape{
		"cuboid": region.Cuboid{
			Min: region.BlockVector{X: -big, Y: -1 << 31, Z: 0},
			Max: region.BlockVector{X: big, Y: 1<<31 - 1, Z: 1 << 31},
		},
		"polygon": region.Polygon{
			Points: []region.BlockVector2{{X: -big, Z: big}, {X: 1 << 31, Z: 0}},
			MinY:   -big,
			MaxY:   big,
		},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			r := region.New("edge-"+name, shape)
			r.Priority = -big

			out := roundTrip(t, &codec.Record{World: "world", Region: r})

			assert.Equal(t, r, out.Region)
		})
	}
}

func TestEnumFlags(t *testing.T) {
	r := region.New("enum", region.Global{})
	r.SetFlag("game-mode", region.EnumFlag("CREATIVE"))
	r.SetFlag("spawn-modes", region.ListFlag{region.EnumFlag("ZOMBIE"), region.EnumFlag("CREEPER")})
	r.SetFlag("greeting", region.StringFlag("CREATIVE"))
	raw, err := codec.Marshal(&codec.Record{World: "world", Region: r})
	require.NoError(t, err)

	t.Run("RegisteredEnumsRoundTrip", func(t *testing.T) {
		registry := region.NewFlagRegistry("game-mode", " spawn-modes ")

		out, err := codec.DecodeWith(raw, registry)

		require.NoError(t, err)
		assert.Equal(t, r, out.Region)
	})

	t.Run("DefaultRegistry", func(t *testing.T) {
		out, err := codec.Decode(raw)

		require.NoError(t, err)
		assert.Equal(t, region.EnumFlag("CREATIVE"), out.Region.Flags["game-mode"])
		assert.Equal(t, region.StringFlag("CREATIVE"), out.Region.Flags["greeting"])
	})

	t.Run("NilRegistryDecodesStrings", func(t *testing.T) {
		out, err := codec.DecodeWith(raw, nil)

		require.NoError(t, err)
		assert.Equal(t, region.StringFlag("CREATIVE"), out.Region.Flags["game-mode"])
		assert.Equal(t, region.ListFlag{region.StringFlag("ZOMBIE"), region.StringFlag("CREEPER")}, out.Region.Flags["spawn-modes"])
	})
}

func TestRoundTripStructLiteral(t *testing.T) {
	r := &region.Region{ID: "literal", Shape: region.Polygon{MinY: 0, MaxY: 10}, Priority: 2}

	out := roundTrip(t, &codec.Record{World: "world", Region: r})

	assert.True(t, r.Equal(out.Region))
	assert.True(t, out.Region.Equal(r))
}

func mustRaw(t *testing.T, doc bson.D) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(doc)
	require.NoError(t, err)
	return bson.Raw(b)
}

func TestDecode(t *testing.T) {
	t.Run("MissingName", func(t *testing.T) {
		_, err := codec.Decode(mustRaw(t, bson.D{{Key: "type", Value: "global"}}))

		var missing *codec.MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, codec.FieldName, missing.Field)
		assert.True(t, errors.Is(err, codec.ErrDecode))
	})

	t.Run("MissingType", func(t *testing.T) {
		_, err := codec.Decode(mustRaw(t, bson.D{{Key: "name", Value: "x"}}))

		var missing *codec.MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, codec.FieldType, missing.Field)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := codec.Decode(mustRaw(t, bson.D{{Key: "name", Value: "x"}, {Key: "type", Value: "sphere"}}))

		var unsupported *codec.UnsupportedVariantError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "sphere", unsupported.Type)
	})

	t.Run("CuboidRequiresBounds", func(t *testing.T) {
		_, err := codec.Decode(mustRaw(t, bson.D{
			{Key: "name", Value: "x"},
			{Key: "type", Value: "cuboid"},
			{Key: "min", Value: bson.D{{Key: "x", Value: 1}}},
		}))

		var missing *codec.MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, codec.FieldMax, missing.Field)
	})

	t.Run("PolygonRequiresPoints", func(t *testing.T) {
		_, err := codec.Decode(mustRaw(t, bson.D{
			{Key: "name", Value: "x"},
			{Key: "type", Value: "polygon"},
			{Key: "min_y", Value: 0},
			{Key: "max_y", Value: 10},
		}))

		var missing *codec.MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, codec.FieldPoints, missing.Field)
	})

	t.Run("LegacyDocument", func(t *testing.T) {
		id := primitive.NewObjectID()
		rec, err := codec.Decode(mustRaw(t, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "legacy"},
			{Key: "world", Value: "nether"},
			{Key: "type", Value: "CUBOID"},
			{Key: "priority", Value: int64(2)},
			{Key: "min", Value: bson.D{{Key: "x", Value: 1.0}, {Key: "y", Value: int64(2)}, {Key: "z", Value: int32(3)}}},
			{Key: "max", Value: bson.D{{Key: "x", Value: 4}, {Key: "y", Value: 5}, {Key: "z", Value: 6}}},
			{Key: "unknown", Value: "ignored"},
		}))

		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, "nether", rec.World)
		assert.Equal(t, 2, rec.Region.Priority)
		assert.Equal(t, region.Cuboid{
			Min: region.BlockVector{X: 1, Y: 2, Z: 3},
			Max: region.BlockVector{X: 4, Y: 5, Z: 6},
		}, rec.Region.Shape)
		assert.Zero(t, rec.Region.Owners.Size())
	})

	t.Run("InvalidPlayer", func(t *testing.T) {
		_, err := codec.Decode(mustRaw(t, bson.D{
			{Key: "name", Value: "x"},
			{Key: "type", Value: "global"},
			{Key: "owners", Value: bson.D{{Key: "players", Value: bson.A{"not-a-uuid"}}}},
		}))

		var decodeErr *codec.DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "owners.players", decodeErr.Field)
	})

	t.Run("UnsupportedFlagValue", func(t *testing.T) {
		_, err := codec.Decode(mustRaw(t, bson.D{
			{Key: "name", Value: "x"},
			{Key: "type", Value: "global"},
			{Key: "flags", Value: bson.D{{Key: "when", Value: primitive.NewDateTimeFromTime(primitive.NewObjectID().Timestamp())}}},
		}))

		var decodeErr *codec.DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "flags.when", decodeErr.Field)
	})
}
