package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"region-sync/core/codec"
	"region-sync/core/region"
	"region-sync/core/regionstore"
	"region-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Prefix is the object prefix every snapshot is stored under.
const Prefix = "snapshots"

const (
	fieldWorld      = "world"
	fieldExportedAt = "exported_at"
	fieldRegions    = "regions"
)

// ErrWorldMismatch is returned when a snapshot belongs to another world.
var ErrWorldMismatch = errors.New("snapshot belongs to another world")

// Result summarizes an export or import.
type Result struct {
	World   string   `json:"world"`
	Object  string   `json:"object"`
	Regions int      `json:"regions"`
	Skipped int      `json:"skipped,omitempty"`
	Pruned  []string `json:"pruned,omitempty"`
}

// Service copies the regions of a world between the database and object
// storage as Extended JSON documents.
type Service struct {
	client   storage.Client
	cfg      storage.Config
	driver   *regionstore.Driver
	registry *region.MemoryRegistry
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a snapshot service. registry may be nil, in which case
// imports only reach the database.
func NewService(client storage.Client, cfg storage.Config, driver *regionstore.Driver, registry *region.MemoryRegistry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		cfg:      cfg,
		driver:   driver,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// ObjectPrefix returns the prefix holding the snapshots of a world.
func ObjectPrefix(world string) string {
	return path.Join(Prefix, world) + "/"
}

// Export writes every stored region of a world to a new snapshot object and
// prunes the oldest snapshots beyond the configured retention.
func (s *Service) Export(ctx context.Context, world string) (*Result, error) {
	regions, err := s.driver.Get(world).LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	docs := make(bson.A, 0, len(regions))
	for _, r := range regions {
		docs = append(docs, codec.Encode(codec.NewRecord(world, r)))
	}
	exportedAt := s.now().UTC()
	data, err := bson.MarshalExtJSON(bson.D{
		{Key: fieldWorld, Value: world},
		{Key: fieldExportedAt, Value: exportedAt},
		{Key: fieldRegions, Value: docs},
	}, true, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := storage.EnsureBucket(ctx, s.client, s.cfg.Bucket, s.cfg.Region); err != nil {
		return nil, err
	}

	object := ObjectPrefix(world) + exportedAt.Format("20060102T150405.000Z") + ".json"
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot %s: %w", object, err)
	}
	s.logger.Info("Exported snapshot", zap.String("world", world), zap.String("object", object), zap.Int("regions", len(regions)))

	res := &Result{World: world, Object: object, Regions: len(regions)}
	pruned, err := s.prune(ctx, world)
	if err != nil {
		s.logger.Warn("Failed to prune snapshots", zap.String("world", world), zap.Error(err))
	}
	res.Pruned = pruned
	return res, nil
}

// List returns the snapshot objects of a world, oldest first.
func (s *Service) List(ctx context.Context, world string) ([]string, error) {
	return storage.ListNames(ctx, s.client, s.cfg.Bucket, ObjectPrefix(world))
}

// Import reads a snapshot object and upserts its regions into the world.
// Regions stored in the database but absent from the snapshot are kept.
func (s *Service) Import(ctx context.Context, world, object string) (*Result, error) {
	body, err := s.client.GetObject(ctx, s.cfg.Bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", object, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", object, err)
	}

	var doc bson.Raw
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", object, err)
	}
	if stored, ok := doc.Lookup(fieldWorld).StringValueOK(); ok && stored != world {
		return nil, fmt.Errorf("%w: %s holds %q", ErrWorldMismatch, object, stored)
	}

	arr, ok := doc.Lookup(fieldRegions).ArrayOK()
	if !ok {
		return nil, fmt.Errorf("failed to parse snapshot %s: missing %s array", object, fieldRegions)
	}
	values, err := arr.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", object, err)
	}

	res := &Result{World: world, Object: object}
	byID := make(map[string]*region.Region, len(values))
	parents := make(map[*region.Region]string)
	for _, v := range values {
		raw, ok := v.DocumentOK()
		if !ok {
			res.Skipped++
			continue
		}
		rec, err := codec.Decode(raw)
		if err != nil {
			s.logger.Warn("Skipping snapshot region", zap.String("object", object), zap.Error(err))
			res.Skipped++
			continue
		}
		byID[rec.Region.ID] = rec.Region
		if rec.Parent != "" {
			parents[rec.Region] = rec.Parent
		}
	}
	for _, link := range region.RelinkParents(byID, parents) {
		s.logger.Warn("Snapshot parent not linked",
			zap.String("region", link.Region), zap.String("parent", link.Parent), zap.String("reason", link.Reason))
	}

	regions := make([]*region.Region, 0, len(byID))
	for _, r := range byID {
		regions = append(regions, r)
	}
	if err := s.driver.Get(world).SaveAll(ctx, regions); err != nil {
		return nil, err
	}
	if s.registry != nil {
		if manager, ok := s.registry.World(world); ok {
			for _, r := range regions {
				manager.AddRegion(r)
			}
		}
	}

	res.Regions = len(regions)
	s.logger.Info("Imported snapshot", zap.String("world", world), zap.String("object", object),
		zap.Int("regions", res.Regions), zap.Int("skipped", res.Skipped))
	return res, nil
}

func (s *Service) prune(ctx context.Context, world string) ([]string, error) {
	if s.cfg.Retention <= 0 {
		return nil, nil
	}
	names, err := s.List(ctx, world)
	if err != nil {
		return nil, err
	}
	if len(names) <= s.cfg.Retention {
		return nil, nil
	}

	var pruned []string
	for _, name := range names[:len(names)-s.cfg.Retention] {
		if err := s.client.RemoveObject(ctx, s.cfg.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return pruned, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		pruned = append(pruned, name)
	}
	return pruned, nil
}
