// Package laws serves the reference directory of acts, government schemes
// and rights information pages. Entries are read-only through the API;
// Seed loads the development dataset.
package laws

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
)

type Handler struct {
	db *store.Store
}

func NewHandler(db *store.Store) *Handler {
	return &Handler{db: db}
}

// List filters by category and state at the store, then applies a
// case-insensitive title search in memory.
func (h *Handler) List(c *fiber.Ctx) error {
	q := h.db.Collection("laws").All()
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		q = q.Where("category", store.OpEqual, category)
	}
	if state := strings.TrimSpace(c.Query("state")); state != "" {
		q = q.Where("state", store.OpEqual, state)
	}
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	items := make([]models.Law, 0)
	for _, rec := range q.Stream() {
		var law models.Law
		if err := models.FromRecord(rec, &law); err != nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(law.Title), search) {
			continue
		}
		items = append(items, law)
	}

	return c.JSON(fiber.Map{"success": true, "laws": items, "count": len(items)})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	rec, err := h.db.Collection("laws").Get(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "law not found")
	}
	var law models.Law
	if err := models.FromRecord(rec, &law); err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"success": true, "law": law})
}

// Seed loads the sample lawyers and laws used for local development and
// demos. The route is only mounted when seeding is enabled.
func (h *Handler) Seed(c *fiber.Ctx) error {
	lawyers := h.db.Collection("lawyers")
	for _, lw := range SampleLawyers() {
		lawyers.Add(models.ToRecord(lw))
	}
	lawsCol := h.db.Collection("laws")
	for _, law := range SampleLaws() {
		lawsCol.Add(models.ToRecord(law))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Added 4 lawyers and 4 laws to database",
	})
}
