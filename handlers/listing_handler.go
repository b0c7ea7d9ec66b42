package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gpuwatch/gpuwatch/jobs"
	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/services"
)

// ListingHandler serves the web UI and JSON API off the refresh job's
// cached snapshot. No request ever triggers a live fetch.
type ListingHandler struct {
	RefreshJob *jobs.SnapshotRefreshJob
}

func NewListingHandler(refreshJob *jobs.SnapshotRefreshJob) *ListingHandler {
	return &ListingHandler{RefreshJob: refreshJob}
}

// Home renders the all-models page.
func (h *ListingHandler) Home(c *fiber.Ctx) error {
	snapshot := h.RefreshJob.Snapshot()
	if snapshot == nil {
		return c.Render("index", h.viewModel("All GPU Listings", nil, nil, ""))
	}
	return c.Render("index", h.viewModel("All GPU Listings", snapshot, snapshot.AllListings(), ""))
}

// ModelPage renders one tracked model's page.
func (h *ListingHandler) ModelPage(c *fiber.Ctx) error {
	model, err := models.ParseGpuModel(c.Params("model"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString(err.Error())
	}

	snapshot := h.RefreshJob.Snapshot()
	title := model.DisplayName() + " Listings"
	if snapshot == nil {
		return c.Render("index", h.viewModel(title, nil, nil, model.Slug()))
	}
	return c.Render("index", h.viewModel(title, snapshot, snapshot.ListingsFor(model), model.Slug()))
}

// CheapestPage renders the cheapest-per-model page.
func (h *ListingHandler) CheapestPage(c *fiber.Ctx) error {
	snapshot := h.RefreshJob.Snapshot()
	viewData := h.viewModel("Cheapest Available Per Model", snapshot, nil, "")
	if snapshot != nil {
		viewData["Cheapest"] = snapshot.Cheapest
	}
	viewData["ShowCheapest"] = true
	return c.Render("index", viewData)
}

// GetListings returns all cached listings, re-queried with the request's
// filter/sort/limit parameters.
func (h *ListingHandler) GetListings(c *fiber.Ctx) error {
	snapshot := h.RefreshJob.Snapshot()
	if snapshot == nil {
		return h.snapshotPending(c)
	}
	opts, err := queryOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"refresh_id": snapshot.RefreshID,
		"fetched_at": snapshot.FetchedAt.Format(time.RFC3339),
		"error":      snapshot.LastError,
		"data":       services.ApplyQuery(snapshot.AllListings(), opts),
	})
}

// GetModelListings returns one model's cached listings.
func (h *ListingHandler) GetModelListings(c *fiber.Ctx) error {
	model, err := models.ParseGpuModel(c.Params("model"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	snapshot := h.RefreshJob.Snapshot()
	if snapshot == nil {
		return h.snapshotPending(c)
	}
	opts, err := queryOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"refresh_id": snapshot.RefreshID,
		"fetched_at": snapshot.FetchedAt.Format(time.RFC3339),
		"data":       services.ApplyQuery(snapshot.ListingsFor(model), opts),
	})
}

// GetCheapest returns the cached cheapest-per-model results.
func (h *ListingHandler) GetCheapest(c *fiber.Ctx) error {
	snapshot := h.RefreshJob.Snapshot()
	if snapshot == nil {
		return h.snapshotPending(c)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"refresh_id": snapshot.RefreshID,
		"fetched_at": snapshot.FetchedAt.Format(time.RFC3339),
		"data":       snapshot.Cheapest,
	})
}

func (h *ListingHandler) snapshotPending(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"error":   "first refresh has not completed yet",
	})
}

// viewModel assembles the template data shared by every HTML page.
func (h *ListingHandler) viewModel(title string, snapshot *models.Snapshot, listings []models.Listing, currentModel string) fiber.Map {
	viewData := fiber.Map{
		"Title":        title,
		"Listings":     listings,
		"Models":       models.AllGpuModels,
		"CurrentModel": currentModel,
		"LastUpdated":  "",
		"LastError":    "",
	}
	if snapshot != nil {
		viewData["LastUpdated"] = snapshot.FetchedAt.Format("2006-01-02 15:04:05")
		viewData["LastError"] = snapshot.LastError
	}
	return viewData
}

// queryOptions reads filter/sort/limit parameters off the request.
func queryOptions(c *fiber.Ctx) (models.QueryOptions, error) {
	opts := models.DefaultQueryOptions()
	opts.IncludeUnavailable = c.QueryBool("all", false)
	opts.Descending = c.QueryBool("desc", false)

	if sortParam := c.Query("sort"); sortParam != "" {
		sortBy, err := models.ParseSortColumn(sortParam)
		if err != nil {
			return opts, err
		}
		opts.SortBy = sortBy
	}

	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			return opts, fiber.NewError(fiber.StatusBadRequest, "limit must be a non-negative integer")
		}
		opts.Limit = &limit
	}
	return opts, nil
}
