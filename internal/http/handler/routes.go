package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cybershang/b2bed/internal/events"
	"github.com/cybershang/b2bed/internal/model"
	"github.com/cybershang/b2bed/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; batch policy lives in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.UploaderService, bus *events.Bus) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/uploads", UploadFiles(svc))
	app.Get("/uploads", ListUploads(svc))

	app.Post("/gallery/removed", GalleryRemoved(bus))
}

// HealthCheck reports readiness. The database is only part of readiness when
// upload history is configured; without it the process has no dependency to
// probe.
//
// @Summary Readiness probe
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a bare liveness endpoint.
//
// @Summary Liveness probe
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadFiles accepts a multipart form with one or more entries under the
// "files" field, uploads them as one batch, and returns the per-file results.
// Per-file failures are reported inside the result array; only a failure that
// aborts the whole batch produces an error status.
//
// @Summary Upload files
// @Accept mpfd
// @Produce json
// @Param files formData file true "files to upload (repeatable)"
// @Success 201 {array} model.UploadResult
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /uploads [post]
func UploadFiles(svc service.UploaderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "multipart form with files is required")
		}

		headers := form.File["files"]
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		items := make([]model.UploadItem, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			payload, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
			}
			items = append(items, model.UploadItem{Payload: payload, OriginalName: fh.Filename})
		}

		results, err := svc.UploadBatch(c.UserContext(), items)
		if err != nil {
			if errors.Is(err, service.ErrNoItems) {
				return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
			}
			return writeError(c, fiber.StatusBadGateway, "STORAGE_ERROR", "storage backend rejected the batch")
		}
		return c.Status(fiber.StatusCreated).JSON(results)
	}
}

// GalleryRemoved accepts the host's gallery-removal notification and hands it
// to the remove-sync listener via the event bus. Deletion runs asynchronously,
// so the endpoint acknowledges with 202.
//
// @Summary Report removed gallery items
// @Accept json
// @Produce json
// @Param items body []model.RemovedItem true "removed items"
// @Success 202 {object} map[string]int
// @Failure 400 {object} errorPayload
// @Router /gallery/removed [post]
func GalleryRemoved(bus *events.Bus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []model.RemovedItem
		if err := c.BodyParser(&items); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be a JSON array of removed items")
		}

		bus.Publish(events.EventGalleryRemoved, events.Payload{"items": items})
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": len(items)})
	}
}

// ListUploads returns a page of the recorded upload history.
//
// @Summary List upload history
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.HistoryResult
// @Failure 400 {object} errorPayload
// @Failure 501 {object} errorPayload
// @Router /uploads [get]
func ListUploads(svc service.UploaderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.History(c.UserContext(), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrHistoryDisabled) {
				return writeError(c, fiber.StatusNotImplemented, "HISTORY_DISABLED", "upload history is not configured")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
