// Package server exposes saved workflows, the tool catalog and the
// simulator over HTTP.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/log"
	"github.com/meikuraledutech/canvas/persist"
	"github.com/meikuraledutech/canvas/simulate"
)

// RunResponse is the body returned by POST /workflows/:id/run.
type RunResponse struct {
	ID     string           `json:"id"`
	Visits []simulate.Visit `json:"visits"`
	Nodes  []string         `json:"nodes"`
}

type handler struct {
	store   canvas.Store
	catalog canvas.Catalog
	sim     *simulate.Simulator
	logger  *zap.Logger
}

// New builds the fiber app. A nil simulator runs with default settings.
func New(store canvas.Store, catalog canvas.Catalog, sim *simulate.Simulator, logger *zap.Logger) *fiber.App {
	if sim == nil {
		sim = simulate.New()
	}
	h := &handler{
		store:   store,
		catalog: catalog.Clone(),
		sim:     sim,
		logger:  log.Component(logger, "server"),
	}

	app := fiber.New()
	app.Use(h.logRequest)

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", h.createSchema)
	app.Delete("/schema", h.dropSchema)

	// ── Catalog ───────────────────────────────────────────────────────
	app.Get("/catalog", h.getCatalog)

	// ── Workflows ─────────────────────────────────────────────────────
	app.Post("/workflows", h.saveWorkflow)
	app.Get("/workflows", h.listWorkflows)
	app.Get("/workflows/:id", h.getWorkflow)
	app.Delete("/workflows/:id", h.deleteWorkflow)
	app.Get("/workflows/:id/export", h.exportWorkflow)
	app.Post("/workflows/:id/run", h.runWorkflow)

	return app
}

func (h *handler) logRequest(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.logger.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)))
	return err
}

func (h *handler) createSchema(c fiber.Ctx) error {
	if err := h.store.CreateSchema(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (h *handler) dropSchema(c fiber.Ctx) error {
	if err := h.store.DropSchema(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

func (h *handler) getCatalog(c fiber.Ctx) error {
	return c.JSON(h.catalog)
}

func (h *handler) saveWorkflow(c fiber.Ctx) error {
	wf, err := persist.Decode(c.Body(), persist.Defaults{Name: "Untitled Workflow", Catalog: h.catalog})
	if err != nil {
		return h.fail(c, err)
	}
	rec, err := h.store.SaveWorkflow(c.Context(), wf)
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Info("workflow saved", zap.String(log.KeyWorkflowID, rec.ID))
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *handler) listWorkflows(c fiber.Ctx) error {
	list, err := h.store.ListWorkflows(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *handler) getWorkflow(c fiber.Ctx) error {
	rec, err := h.record(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

func (h *handler) deleteWorkflow(c fiber.Ctx) error {
	if err := h.store.DeleteWorkflow(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) exportWorkflow(c fiber.Ctx) error {
	rec, err := h.record(c)
	if err != nil {
		return h.fail(c, err)
	}
	wf := rec.Workflow
	wf.ID, wf.CreatedAt = "", nil
	data, err := persist.Marshal(wf)
	if err != nil {
		return h.fail(c, err)
	}
	c.Attachment(persist.FileName(wf.Name))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

func (h *handler) runWorkflow(c fiber.Ctx) error {
	rec, err := h.record(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.sim.Run(c.Context(), rec.Workflow.CanvasItems, rec.Workflow.Connections, nil)
	if err != nil {
		return h.fail(c, err)
	}
	visits := res.Visits
	if visits == nil {
		visits = []simulate.Visit{}
	}
	return c.JSON(RunResponse{ID: rec.ID, Visits: visits, Nodes: res.Nodes()})
}

func (h *handler) record(c fiber.Ctx) (*canvas.Record, error) {
	rec, err := h.store.GetWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, canvas.ErrWorkflowNotFound
	}
	return rec, nil
}

// fail maps domain errors onto status codes.
func (h *handler) fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, canvas.ErrWorkflowNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, canvas.ErrMalformedWorkflow),
		errors.Is(err, canvas.ErrUnsupportedVersion):
		status = fiber.StatusBadRequest
	case errors.Is(err, canvas.ErrCycleDetected),
		errors.Is(err, canvas.ErrHopLimit),
		errors.Is(err, canvas.ErrDanglingEdge),
		errors.Is(err, canvas.ErrDuplicateEdge),
		errors.Is(err, canvas.ErrDuplicateNode),
		errors.Is(err, canvas.ErrInvalidAnchor):
		status = fiber.StatusUnprocessableEntity
	}
	if status == fiber.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
