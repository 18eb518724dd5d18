package replication

import (
	"region-sync/core/region"
	"region-sync/core/regionstore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	session *Session
	handler *Handler
}

// NewFeature creates the replication feature around a session.
func NewFeature(session *Session, registry *region.MemoryRegistry, driver *regionstore.Driver, journal JournalReader, logger *zap.Logger) *Feature {
	return &Feature{
		session: session,
		handler: NewHandler(session, registry, driver, journal, logger),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "replication"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
