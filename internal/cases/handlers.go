// Package cases lets users track their legal matters: case metadata plus
// an append-only note log per case.
package cases

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
	"github.com/sunolegal/backend/pkg/validation"
)

type Handler struct {
	db *store.Store
}

func NewHandler(db *store.Store) *Handler {
	return &Handler{db: db}
}

type CreateCaseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Court       string `json:"court" validate:"max=200"`
	CaseNumber  string `json:"case_number" validate:"max=100"`
	HearingDate string `json:"hearing_date" validate:"max=30"`
}

// Create registers a new case for the caller, starting in "active".
func (h *Handler) Create(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	var in CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	kase := models.Case{
		UserID:      id.UID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Court:       strings.TrimSpace(in.Court),
		CaseNumber:  strings.TrimSpace(in.CaseNumber),
		HearingDate: strings.TrimSpace(in.HearingDate),
		Status:      "active",
		Notes:       []models.CaseNote{},
		Documents:   []string{},
		UpdatedAt:   models.Now(), // list ordering keys on updated_at from day one
	}
	caseID := h.db.Collection("cases").Add(models.ToRecord(kase))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"case_id": caseID,
	})
}

// List returns the caller's cases, most recently touched first.
func (h *Handler) List(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	rows := h.db.Collection("cases").
		Where("user_id", store.OpEqual, id.UID).
		OrderBy("updated_at", store.Desc).
		Stream()

	items := make([]models.Case, 0, len(rows))
	for _, rec := range rows {
		var kase models.Case
		if err := models.FromRecord(rec, &kase); err == nil {
			items = append(items, kase)
		}
	}
	return c.JSON(fiber.Map{"success": true, "cases": items, "count": len(items)})
}

// Get returns one case; only the owner may read it.
func (h *Handler) Get(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	rec, err := h.db.Collection("cases").Get(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "case not found")
	}
	var kase models.Case
	if err := models.FromRecord(rec, &kase); err != nil {
		return fiber.ErrInternalServerError
	}
	if kase.UserID != id.UID {
		return fiber.ErrForbidden
	}
	return c.JSON(fiber.Map{"success": true, "case": kase})
}

type addNoteRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// AddNote appends a timestamped note to an owned case. Notes are never
// edited or removed.
func (h *Handler) AddNote(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)
	caseID := c.Params("id")

	col := h.db.Collection("cases")
	rec, err := col.Get(caseID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "case not found")
	}
	var kase models.Case
	if err := models.FromRecord(rec, &kase); err != nil {
		return fiber.ErrInternalServerError
	}
	if kase.UserID != id.UID {
		return fiber.ErrForbidden
	}

	var in addNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	note := models.CaseNote{
		Content:   strings.TrimSpace(in.Content),
		Timestamp: models.Now(),
	}
	if err := col.Update(caseID, store.Record{
		"notes": store.ArrayUnion(models.ToRecord(note)),
	}); err != nil {
		return fiber.ErrInternalServerError
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "note": note})
}
