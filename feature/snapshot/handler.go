package snapshot

import (
	"errors"

	"region-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the snapshot HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the snapshot routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/snapshot")
	group.Get("/:world", h.HandleList)
	group.Post("/:world", h.HandleExport)
	group.Post("/:world/import", h.HandleImport)
}

// HandleExport writes a new snapshot of a world.
// @Summary Export Snapshot
// @Description Exports the stored regions of a world to object storage and prunes old snapshots.
// @Tags snapshot
// @Accept json
// @Produce json
// @Param world path string true "World name"
// @Success 201 {object} snapshot.Result "Snapshot"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshot/{world} [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	world := c.Params("world")
	res, err := h.service.Export(c.Context(), world)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Snapshot export failed", zap.String("world", world), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// HandleList lists the snapshots of a world.
// @Summary List Snapshots
// @Description Lists the snapshot objects stored for a world, oldest first.
// @Tags snapshot
// @Accept json
// @Produce json
// @Param world path string true "World name"
// @Success 200 {array} string "Object Names"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshot/{world} [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	names, err := h.service.List(c.Context(), c.Params("world"))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Snapshot list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

// HandleImport restores the snapshot named by the object query parameter.
// @Summary Import Snapshot
// @Description Restores a snapshot object into the database and the in-memory manager of a world.
// @Tags snapshot
// @Accept json
// @Produce json
// @Param world path string true "World name"
// @Param object query string true "Snapshot object name"
// @Success 200 {object} snapshot.Result "Imported"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "World Mismatch"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshot/{world}/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	object := c.Query("object")
	if object == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "object query parameter is required"})
	}

	world := c.Params("world")
	res, err := h.service.Import(c.Context(), world, object)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Snapshot import failed",
			zap.String("world", world), zap.String("object", object), zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrWorldMismatch) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}
