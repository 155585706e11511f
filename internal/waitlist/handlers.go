// Package waitlist handles pre-launch signups for citizens and interested
// lawyers. Both endpoints are public and idempotent per email: resubmitting
// a known address succeeds with an "already registered" message instead of
// creating a second entry.
package waitlist

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/mailer"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
	"github.com/sunolegal/backend/pkg/validation"
)

type Handler struct {
	db   *store.Store
	mail mailer.Sender

	// guards the email query-then-insert on both collections
	mu sync.Mutex
}

func NewHandler(db *store.Store, mail mailer.Sender) *Handler {
	return &Handler{db: db, mail: mail}
}

type JoinRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	City     string `json:"city" validate:"required,max=60"`
	UserType string `json:"user_type" validate:"omitempty,oneof=citizen student business lawyer other"`
}

// Join adds an address to the waitlist and sends a confirmation email.
func (h *Handler) Join(c *fiber.Ctx) error {
	var in JoinRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	col := h.db.Collection("waitlist")

	h.mu.Lock()
	defer h.mu.Unlock()

	if rows := col.Where("email", store.OpEqual, email).Limit(1).Stream(); len(rows) > 0 {
		return c.JSON(fiber.Map{
			"success":     true,
			"waitlist_id": rows[0]["id"],
			"message":     "You're already on the waitlist!",
		})
	}

	entry := models.WaitlistEntry{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		City:     strings.TrimSpace(in.City),
		UserType: in.UserType,
		Status:   "pending",
	}
	entryID := col.Add(models.ToRecord(entry))

	mailer.Notify(h.mail, email, "Welcome to the SunoLegal waitlist",
		fmt.Sprintf("<p>Hi %s,</p><p>You're on the waitlist. We'll write to you as soon as your spot opens up.</p>", entry.Name))

	return c.JSON(fiber.Map{
		"success":     true,
		"waitlist_id": entryID,
		"message":     "You've been added to the waitlist!",
	})
}

// Count returns the number of waitlist signups.
func (h *Handler) Count(c *fiber.Ctx) error {
	n := len(h.db.Collection("waitlist").All().Stream())
	return c.JSON(fiber.Map{"success": true, "count": n})
}

type LawyerInterestRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=80"`
	Email        string `json:"email" validate:"required,email"`
	City         string `json:"city" validate:"required,max=60"`
	PracticeArea string `json:"practice_area" validate:"max=100"`
	Experience   string `json:"experience" validate:"max=20"`
}

// LawyerInterest records a lawyer's interest in joining the marketplace.
func (h *Handler) LawyerInterest(c *fiber.Ctx) error {
	var in LawyerInterestRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	col := h.db.Collection("lawyer_interest")

	h.mu.Lock()
	defer h.mu.Unlock()

	if rows := col.Where("email", store.OpEqual, email).Limit(1).Stream(); len(rows) > 0 {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "You've already registered your interest!",
		})
	}

	col.Add(store.Record{
		"name":          strings.TrimSpace(in.Name),
		"email":         email,
		"city":          strings.TrimSpace(in.City),
		"practice_area": strings.TrimSpace(in.PracticeArea),
		"experience":    strings.TrimSpace(in.Experience),
		"status":        "pending",
	})

	mailer.Notify(h.mail, email, "Thanks for your interest in SunoLegal",
		fmt.Sprintf("<p>Hi %s,</p><p>Thanks for registering your interest. Our team will reach out about onboarding and verification.</p>", strings.TrimSpace(in.Name)))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Thanks! We'll be in touch about onboarding.",
	})
}

// LawyerInterestCount returns the number of lawyer interest signups.
func (h *Handler) LawyerInterestCount(c *fiber.Ctx) error {
	n := len(h.db.Collection("lawyer_interest").All().Stream())
	return c.JSON(fiber.Map{"success": true, "count": n})
}
