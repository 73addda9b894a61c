package bank

import (
	"errors"
	"net/url"

	"storagebox/core/logger"
	"storagebox/feature/bank/ledger"
	"storagebox/feature/bank/pool"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the bank.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AddItemsRequest is the body of POST /bank/items.
type AddItemsRequest struct {
	Items []string `json:"items"`
}

// ObjectRequest names an object in the configured bucket.
type ObjectRequest struct {
	Object string `json:"object"`
}

// ResolveResponse is the body returned by the resolve endpoints.
type ResolveResponse struct {
	DeduplicationID string `json:"deduplication_id"`
	Item            string `json:"item"`
	Outcome         string `json:"outcome"`
}

// RegisterRoutes registers the bank routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/bank")
	group.Post("/items", h.HandleAddItems)
	group.Post("/items/import", h.HandleImport)
	group.Get("/items/imports", h.HandleListImports)
	group.Post("/items/export", h.HandleExport)
	group.Get("/resolve/:id", h.HandleResolve)
	group.Post("/resolve/:id", h.HandleResolve)
	group.Get("/stats", h.HandleStats)
}

// HandleAddItems adds items to the pool.
// @Summary Add Items
// @Description Adds items to the pool in batches. Items must be non-empty and shorter than the configured maximum size.
// @Tags bank
// @Accept json
// @Produce json
// @Param body body AddItemsRequest true "Items to add"
// @Success 201 {object} map[string]int "Added count"
// @Failure 400 {object} map[string]string "Invalid item"
// @Failure 502 {object} map[string]interface{} "Store kept rejecting part of the batch"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /bank/items [post]
func (h *Handler) HandleAddItems(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req AddItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "items must not be empty"})
	}

	added, err := h.service.AddItems(c.UserContext(), req.Items)
	if err != nil {
		return h.fail(c, l, "Add items failed", err, nil)
	}
	l.Info("Items added", zap.Int("added", added))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": added})
}

// HandleImport imports an item list object from the bucket.
// @Summary Import Item List
// @Description Reads a newline-delimited item list from the configured bucket and adds it to the pool. Empty lines and lines starting with '#' are skipped; other whitespace is kept.
// @Tags bank
// @Accept json
// @Produce json
// @Param body body ObjectRequest true "Object to import"
// @Success 201 {object} map[string]int "Added count"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]interface{} "Import failed"
// @Router /bank/items/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ObjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	added, err := h.service.ImportObject(c.UserContext(), req.Object)
	if err != nil {
		return h.fail(c, l, "Import failed", err, fiber.Map{"added": added})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": added})
}

// HandleListImports lists importable objects.
// @Summary List Item Lists
// @Description Lists the objects in the configured bucket under an optional prefix.
// @Tags bank
// @Produce json
// @Param prefix query string false "Object name prefix"
// @Success 200 {object} map[string]interface{} "Object names"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /bank/items/imports [get]
func (h *Handler) HandleListImports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.ListImports(c.UserContext(), c.Query("prefix"))
	if err != nil {
		return h.fail(c, l, "List imports failed", err, nil)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"objects": names})
}

// HandleExport writes the current pool to the bucket.
// @Summary Export Pool
// @Description Writes every unclaimed item to an object in the configured bucket, one per line.
// @Tags bank
// @Accept json
// @Produce json
// @Param body body ObjectRequest true "Target object"
// @Success 201 {object} map[string]int "Exported count"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /bank/items/export [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ObjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	n, err := h.service.ExportPool(c.UserContext(), req.Object)
	if err != nil {
		return h.fail(c, l, "Export failed", err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"exported": n, "object": req.Object})
}

// HandleResolve returns the item for a deduplication id.
// @Summary Resolve Deduplication ID
// @Description Returns the item bound to the id, claiming a fresh item from the pool the first time the id is seen. Repeated calls return the same item.
// @Tags bank
// @Produce json
// @Param id path string true "Deduplication ID, percent-encoded"
// @Success 200 {object} ResolveResponse
// @Failure 400 {object} map[string]string "Invalid id"
// @Failure 503 {object} map[string]string "No item available"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /bank/resolve/{id} [get]
// @Router /bank/resolve/{id} [post]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	// The router matches the raw path, so the id arrives still escaped. The
	// copy keeps it valid after fiber reuses the request buffer.
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid deduplication id encoding"})
	}
	id = utils.CopyString(id)

	res, err := h.service.Resolve(c.UserContext(), id)
	if err != nil {
		return h.fail(c, l.With(zap.String("deduplication_id", id)), "Resolve failed", err, nil)
	}
	return c.JSON(ResolveResponse{
		DeduplicationID: id,
		Item:            res.Item,
		Outcome:         string(res.Outcome),
	})
}

// HandleStats returns pool size and resolve counters.
// @Summary Bank Statistics
// @Description Returns the number of unclaimed items and the count of each resolve outcome. Counting scans the whole pool.
// @Tags bank
// @Produce json
// @Success 200 {object} Report
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /bank/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Stats(c.UserContext())
	if err != nil {
		return h.fail(c, l, "Stats failed", err, nil)
	}
	return c.JSON(report)
}

// fail maps service errors to HTTP responses. extra fields are merged into the body.
func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error, extra fiber.Map) error {
	status := fiber.StatusInternalServerError
	body := fiber.Map{"error": err.Error()}

	var partial *pool.PartialFailureError
	switch {
	case errors.Is(err, ErrNoItemAvailable):
		status = fiber.StatusServiceUnavailable
		body["error"] = ErrNoItemAvailable.Error()
	case errors.Is(err, pool.ErrClaimContention):
		status = fiber.StatusServiceUnavailable
	case errors.As(err, &partial):
		status = fiber.StatusBadGateway
		body["unprocessed"] = partial.Unprocessed
	case errors.Is(err, pool.ErrInvalidItem),
		errors.Is(err, pool.ErrItemTooLarge),
		errors.Is(err, pool.ErrTooManyBatches),
		errors.Is(err, ledger.ErrInvalidID),
		errors.Is(err, ledger.ErrIDTooLong),
		errors.Is(err, ErrInvalidRequest):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrStorageDisabled):
		status = fiber.StatusNotImplemented
	}

	for k, v := range extra {
		body[k] = v
	}

	if status >= fiber.StatusInternalServerError && status != fiber.StatusServiceUnavailable {
		l.Error(msg, zap.Error(err))
	} else {
		l.Debug(msg, zap.Error(err))
	}
	return c.Status(status).JSON(body)
}
