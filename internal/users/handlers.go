package users

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
	"github.com/sunolegal/backend/pkg/validation"
)

type Handler struct{ db *store.Store }

func NewHandler(db *store.Store) *Handler { return &Handler{db: db} }

type SaveProfileRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Phone    string `json:"phone" validate:"required,min=8,max=16"`
	Email    string `json:"email" validate:"omitempty,email,max=120"`
	City     string `json:"city" validate:"required,max=60"`
	State    string `json:"state" validate:"required,max=60"`
	Language string `json:"language" validate:"omitempty,max=20"`
	Role     string `json:"role" validate:"omitempty,oneof=user lawyer"`
}

// Save creates or merges the caller's profile. The uid comes from the
// verified identity, never the body; the admin role cannot be
// self-assigned.
func (h *Handler) Save(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	var in SaveProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	if in.Language == "" {
		in.Language = "en"
	}
	if in.Role == "" {
		in.Role = string(models.RoleUser)
	}

	profile := models.UserProfile{
		UID:      id.UID,
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		City:     strings.TrimSpace(in.City),
		State:    strings.TrimSpace(in.State),
		Language: in.Language,
		Role:     models.Role(in.Role),
	}

	rec := models.ToRecord(profile)
	rec["updated_at"] = models.Now()
	h.db.Collection("users").Set(id.UID, rec, true)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile saved successfully",
		"user_id": id.UID,
	})
}

// Get returns the caller's profile, or a not-found envelope when none has
// been saved yet (a normal empty result, not an error).
func (h *Handler) Get(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	rec, err := h.db.Collection("users").Get(id.UID)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Profile not found"})
	}
	var profile models.UserProfile
	if err := models.FromRecord(rec, &profile); err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"success": true, "profile": profile})
}
