package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dkaraca/briefly/internal/cache"
	"github.com/dkaraca/briefly/internal/digest"
	"github.com/dkaraca/briefly/internal/jobs"
	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/middleware"
	"github.com/dkaraca/briefly/internal/pipeline"
	"github.com/dkaraca/briefly/internal/storage"
)

// Handlers bundles the API's collaborators.
type Handlers struct {
	pipeline *pipeline.Pipeline
	store    *storage.Storage
	cache    *cache.Cache
	jobs     *jobs.Store
}

func NewHandlers(p *pipeline.Pipeline, store *storage.Storage, c *cache.Cache, jobStore *jobs.Store) *Handlers {
	return &Handlers{pipeline: p, store: store, cache: c, jobs: jobStore}
}

// RunRequest is the body of POST /api/v1/digest/run.
type RunRequest struct {
	WebURLs         []string          `json:"web_urls" validate:"omitempty,dive,url"`
	RSSURLs         []string          `json:"rss_urls" validate:"omitempty,dive,url"`
	MaxItemsPerFeed int               `json:"max_items_per_feed" validate:"omitempty,min=1,max=50"`
	VideoRefs       []string          `json:"video_refs"`
	SocialRefs      []string          `json:"social_refs"`
	Recipients      []string          `json:"recipients" validate:"omitempty,dive,email"`
	Title           string            `json:"title"`
	Style           digest.StyleInput `json:"style"`
	ForceFresh      *bool             `json:"force_fresh"`
}

// toPipelineRequest applies the documented defaults: fetches are forced
// fresh unless the caller says otherwise.
func (r RunRequest) toPipelineRequest() pipeline.Request {
	req := pipeline.DefaultRequest()
	req.WebURLs = r.WebURLs
	req.RSSURLs = r.RSSURLs
	req.VideoRefs = r.VideoRefs
	req.SocialRefs = r.SocialRefs
	req.Recipients = r.Recipients
	if r.MaxItemsPerFeed > 0 {
		req.MaxItemsPerFeed = r.MaxItemsPerFeed
	}
	if r.Title != "" {
		req.Title = r.Title
	}
	req.Style = digest.ResolveStyle(r.Style)
	if r.ForceFresh != nil {
		req.ForceFresh = *r.ForceFresh
	}
	return req
}

// RunDigest executes one pipeline run synchronously and archives the
// result.
func (h *Handlers) RunDigest(c *fiber.Ctx) error {
	var body RunRequest
	if !middleware.ParseAndValidate(c, &body) {
		return nil
	}

	req := body.toPipelineRequest()
	result := h.pipeline.Run(c.Context(), req)

	if result.Success && h.store != nil {
		if archived, err := h.store.SaveDigest(c.Context(), req.Title, req.Style, result); err != nil {
			logger.Error().Err(err).Msg("Failed to archive digest")
		} else {
			c.Set("X-Digest-ID", archived.ID)
		}
	}

	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(result)
}

// ListDigests returns a page of archived digests.
func (h *Handlers) ListDigests(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))

	digests, err := h.store.ListDigests(c.Context(), page, pageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"digests":   digests,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetDigest returns one archived digest by ID.
func (h *Handlers) GetDigest(c *fiber.Ctx) error {
	archived, err := h.store.GetDigestByID(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(archived)
}

// DeleteDigest removes one archived digest. Admin only.
func (h *Handlers) DeleteDigest(c *fiber.Ctx) error {
	if err := h.store.DeleteDigest(c.Context(), c.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}

// ListStyles enumerates the predefined writing styles.
func (h *Handlers) ListStyles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"styles": digest.StyleNames()})
}

// ClearCache empties the freshness cache. Admin only.
func (h *Handlers) ClearCache(c *fiber.Ctx) error {
	h.cache.Clear(c.Context())
	return c.JSON(fiber.Map{"status": "cache cleared"})
}

// JobRequest is the body of POST /api/v1/jobs.
type JobRequest struct {
	ID      string     `json:"id" validate:"required"`
	Spec    string     `json:"spec" validate:"required"`
	Payload RunRequest `json:"payload"`
}

// CreateJob schedules a recurring pipeline run. Admin only.
func (h *Handlers) CreateJob(c *fiber.Ctx) error {
	var body JobRequest
	if !middleware.ParseAndValidate(c, &body) {
		return nil
	}

	job, err := h.jobs.Create(body.ID, body.Spec, body.Payload)
	if err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

// DeleteJob unschedules a job. Admin only.
func (h *Handlers) DeleteJob(c *fiber.Ctx) error {
	if err := h.jobs.Remove(c.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}

// ListJobs returns all scheduled jobs.
func (h *Handlers) ListJobs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"jobs": h.jobs.List()})
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// RunFromPayload converts a stored job payload back into a pipeline run.
// It backs the job store's trigger callback.
func (h *Handlers) RunFromPayload(jobID string, payload any) {
	body, ok := payload.(RunRequest)
	if !ok {
		logger.Error().Str("job", jobID).Msg("Job payload has unexpected shape, skipping run")
		return
	}

	ctx := context.Background()
	req := body.toPipelineRequest()
	result := h.pipeline.Run(ctx, req)

	if result.Success && h.store != nil {
		if _, err := h.store.SaveDigest(ctx, req.Title, req.Style, result); err != nil {
			logger.Error().Err(err).Str("job", jobID).Msg("Failed to archive scheduled digest")
		}
	}
	if !result.Success {
		logger.Warn().Str("job", jobID).Str("error", result.Error).Msg("Scheduled run produced no content")
	}
}
