package replication

import (
	"context"
	"sort"
	"strconv"

	"region-sync/core/journal"
	"region-sync/core/logger"
	"region-sync/core/reconcile"
	"region-sync/core/region"
	"region-sync/core/regionstore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// JournalReader lists recent journal entries.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// RegionView is the JSON form of a region held by a manager.
type RegionView struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Priority int      `json:"priority"`
	Parent   string   `json:"parent,omitempty"`
	Owners   int      `json:"owners"`
	Members  int      `json:"members"`
	Flags    []string `json:"flags"`
}

// Handler serves the replication HTTP endpoints.
type Handler struct {
	session  *Session
	registry *region.MemoryRegistry
	driver   *regionstore.Driver
	journal  JournalReader
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. journal may be nil.
func NewHandler(session *Session, registry *region.MemoryRegistry, driver *regionstore.Driver, journal JournalReader, logger *zap.Logger) *Handler {
	return &Handler{
		session:  session,
		registry: registry,
		driver:   driver,
		journal:  journal,
		logger:   logger,
	}
}

// RegisterRoutes registers the replication and region routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/replication")
	group.Get("/status", h.HandleStatus)
	group.Get("/journal", h.HandleJournal)

	regions := app.Group("/regions")
	regions.Get("/:world", h.HandleRegions)
	regions.Post("/:world/save", h.HandleSave)
	regions.Get("/:world/drift", h.HandleDrift)
	regions.Post("/:world/reconcile", h.HandleReconcile)
}

// HandleStatus returns the session status.
// @Summary Replication Status
// @Description Returns the state of the oplog tailer, its resume position and event counters.
// @Tags replication
// @Accept json
// @Produce json
// @Success 200 {object} replication.Status "Status"
// @Router /replication/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.session.Status())
}

// HandleJournal returns the most recent journal entries.
// @Summary Replication Journal
// @Description Returns the most recent change events handled by the replication session, newest first.
// @Tags replication
// @Accept json
// @Produce json
// @Param limit query integer false "Maximum number of entries (default 50)"
// @Success 200 {array} journal.Entry "Journal Entries"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Journal Disabled"
// @Router /replication/journal [get]
func (h *Handler) HandleJournal(c *fiber.Ctx) error {
	if h.journal == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "journal disabled"})
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(journal.DefaultLimit)))
	if err != nil || limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
	}

	entries, err := h.journal.Recent(c.Context(), limit)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to read journal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entries)
}

// HandleRegions lists the regions a world's manager currently holds.
// @Summary List Regions
// @Description Lists the regions the in-memory manager of a world currently holds.
// @Tags regions
// @Accept json
// @Produce json
// @Param world path string true "World name"
// @Success 200 {array} replication.RegionView "Regions"
// @Failure 404 {object} map[string]string "Unknown World"
// @Router /regions/{world} [get]
func (h *Handler) HandleRegions(c *fiber.Ctx) error {
	manager, ok := h.registry.World(c.Params("world"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown world"})
	}
	regions := manager.Regions()
	views := make([]RegionView, 0, len(regions))
	for _, r := range regions {
		views = append(views, viewOf(r))
	}
	return c.JSON(views)
}

// HandleSave writes every region a world's manager holds to the database.
// @Summary Save Regions
// @Description Writes every region the in-memory manager of a world holds to the database.
// @Tags regions
// @Accept json
// @Produce json
// @Param world path string true "World name"
// @Success 200 {object} map[string]interface{} "Saved"
// @Failure 404 {object} map[string]string "Unknown World"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /regions/{world}/save [post]
func (h *Handler) HandleSave(c *fiber.Ctx) error {
	world := c.Params("world")
	manager, ok := h.registry.World(world)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown world"})
	}

	l := logger.WithRayID(h.logger, c)
	regions := manager.Regions()
	if err := h.driver.Get(world).SaveAll(c.Context(), regions); err != nil {
		l.Error("Failed to save regions", zap.String("world", world), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	l.Info("Saved regions", zap.String("world", world), zap.Int("count", len(regions)))
	return c.JSON(fiber.Map{"status": "saved", "count": len(regions)})
}

// HandleDrift compares a world's manager with the stored regions.
// @Summary Detect Drift
// @Description Compares the in-memory regions of a world with the stored ones without writing anything.
// @Tags regions
// @Accept json
// @Produce json
// @Param world path string true "World name"
// @Success 200 {object} map[string]interface{} "Plan"
// @Failure 404 {object} map[string]string "Unknown World"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /regions/{world}/drift [get]
func (h *Handler) HandleDrift(c *fiber.Ctx) error {
	return h.reconcile(c, reconcile.Options{DoSync: true, DoPurge: true, DryRun: true})
}

// HandleReconcile writes the manager's regions over a drifted store. Nothing
// is written unless confirm=true.
// @Summary Reconcile Regions
// @Description Writes the in-memory regions over a drifted store. Nothing is written unless confirm is true.
// @Tags regions
// @Accept json
// @Produce json
// @Param world path string true "World name"
// @Param sync query boolean false "Upsert regions missing or different in the store (default true)"
// @Param purge query boolean false "Delete stored regions unknown to the manager"
// @Param dry_run query boolean false "Only compute the plan"
// @Param confirm query boolean false "Confirm the writes"
// @Success 200 {object} map[string]interface{} "Plan and executed actions"
// @Failure 404 {object} map[string]string "Unknown World"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /regions/{world}/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	return h.reconcile(c, reconcile.Options{
		DoSync:    c.QueryBool("sync", true),
		DoPurge:   c.QueryBool("purge", false),
		DryRun:    c.QueryBool("dry_run", false),
		Confirmed: c.QueryBool("confirm", false),
	})
}

func (h *Handler) reconcile(c *fiber.Ctx, opts reconcile.Options) error {
	world := c.Params("world")
	manager, ok := h.registry.World(world)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown world"})
	}

	l := logger.WithRayID(h.logger, c)
	plan, executed, err := reconcile.ReconcileAndApply(c.Context(), world, manager, h.driver.Get(world), opts)
	if err != nil {
		l.Error("Reconcile failed", zap.String("world", world), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if executed > 0 {
		l.Info("Reconciled regions", zap.String("world", world), zap.Int("executed", executed))
	}
	return c.JSON(fiber.Map{"plan": plan, "executed": executed})
}

func viewOf(r *region.Region) RegionView {
	flags := make([]string, 0, len(r.Flags))
	for name := range r.Flags {
		flags = append(flags, name)
	}
	sort.Strings(flags)
	return RegionView{
		ID:       r.ID,
		Type:     string(r.Kind()),
		Priority: r.Priority,
		Parent:   r.ParentID(),
		Owners:   r.Owners.Size(),
		Members:  r.Members.Size(),
		Flags:    flags,
	}
}
