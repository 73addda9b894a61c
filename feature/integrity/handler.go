package integrity

import (
	"errors"

	"storagebox/core/logger"
	"storagebox/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/tables", h.HandleTablesCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/ledger", h.HandleLedgerCheck)
	group.Get("/ledger/:item", h.HandleItemAudit)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs every available check (Tables, Schema, Storage, Ledger). The ledger audit runs in dry-run mode and scans both tables.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := make(map[string]interface{})

	tables, _ := h.service.CheckTables(ctx)
	report["tables"] = tables

	if h.service.HasSchema() {
		if schema, err := h.service.CheckSchema(); err != nil {
			report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
		} else {
			report["schema"] = schema
		}
	}

	if h.service.HasStorage() {
		if st, err := h.service.CheckStorage(ctx); err != nil {
			report["storage"] = map[string]interface{}{"status": "error", "error": err.Error()}
		} else {
			report["storage"] = st
		}
	}

	if plan, _, err := h.service.CheckLedger(ctx, false); err != nil {
		report["ledger"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["ledger"] = plan.Summary
	}

	return c.JSON(report)
}

// HandleTablesCheck checks that both tables are reachable.
// @Summary Check Tables
// @Description Reads one record from the items and deduplication tables.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]checks.TableStatus "All tables reachable"
// @Failure 503 {object} map[string]checks.TableStatus "At least one table unreachable"
// @Router /integrity/tables [get]
func (h *Handler) HandleTablesCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, healthy := h.service.CheckTables(c.UserContext())
	if !healthy {
		l.Warn("Table check failed", zap.Any("tables", report))
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleSchemaCheck checks the sql schema.
// @Summary Check Schema
// @Description Checks that both sql tables have the expected columns, types and primary key. Only available with the sql backend.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 501 {object} map[string]string "Backend has no schema"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if err != nil {
		return h.fail(c, l, "Schema check failed", err)
	}
	if !report.Matched {
		l.Warn("Schema mismatch detected", zap.Strings("errors", report.Errors))
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the import bucket.
// @Summary Check Storage
// @Description Checks that the import bucket exists. Optionally creates it.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 501 {object} map[string]string "Storage not configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	report, err := h.service.CheckStorage(c.UserContext())
	if err != nil {
		return h.fail(c, l, "Storage check failed", err)
	}

	if !report.Exists {
		l.Warn("Bucket is missing", zap.String("bucket", report.Bucket))

		if fix {
			l.Info("Attempting to create bucket")
			if err := h.service.FixStorage(c.UserContext()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to create bucket",
					"details": err.Error(),
					"bucket":  report.Bucket,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"bucket": report.Bucket,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"report": report,
	})
}

// HandleLedgerCheck audits the pool against the ledger.
// @Summary Check Ledger
// @Description Finds items that are bound but still in the pool, and items bound to more than one id. With fix=true the double-accounted items are removed from the pool.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Remove bound items from the pool"
// @Success 200 {object} map[string]interface{} "Ledger Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/ledger [get]
func (h *Handler) HandleLedgerCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	plan, executed, err := h.service.CheckLedger(c.UserContext(), fix)
	if err != nil {
		return h.fail(c, l, "Ledger check failed", err)
	}

	status := "checked"
	if fix {
		status = "fixed"
	}
	return c.JSON(fiber.Map{
		"status":   status,
		"summary":  plan.Summary,
		"results":  plan.Results,
		"actions":  plan.Actions,
		"executed": executed,
	})
}

// HandleItemAudit audits one item.
// @Summary Audit Item
// @Description Reports whether an item is in the pool and which ids are bound to it. Served from an index cached for one minute.
// @Tags integrity
// @Produce json
// @Param item path string true "Item value"
// @Success 200 {object} reconcile.Result
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/ledger/{item} [get]
func (h *Handler) HandleItemAudit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	res, err := h.service.AuditItem(c.UserContext(), c.Params("item"))
	if err != nil {
		return h.fail(c, l, "Item audit failed", err)
	}
	return c.JSON(res)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	if errors.Is(err, ErrSchemaUnavailable) || errors.Is(err, ErrStorageDisabled) {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	}
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
