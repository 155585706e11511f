package chat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
	"github.com/sunolegal/backend/pkg/validation"
)

type Handler struct {
	db        *store.Store
	assistant Assistant
}

func NewHandler(db *store.Store, assistant Assistant) *Handler {
	return &Handler{db: db, assistant: assistant}
}

type AskRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	SessionID string `json:"session_id"`
}

// Ask sends one message to the assistant and appends both turns to the
// session, creating it on first use. Sessions are owner-scoped; guests
// own the sessions they start.
func (h *Handler) Ask(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	var in AskRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s_%d", id.UID, time.Now().UnixNano())
	}

	sessions := h.db.Collection("chats")

	var history []Turn
	existing, err := sessions.Get(sessionID)
	if err == nil {
		var session models.ChatSession
		if err := models.FromRecord(existing, &session); err != nil {
			return fiber.ErrInternalServerError
		}
		if session.UserID != id.UID {
			return fiber.ErrForbidden
		}
		for _, m := range session.Messages {
			history = append(history, Turn{Role: m.Role, Content: m.Content})
		}
	}

	reply, err := h.assistant.Reply(history, in.Message)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	now := models.Now()
	userMsg := models.ChatMessage{Role: "user", Content: in.Message, Timestamp: now}
	botMsg := models.ChatMessage{Role: "assistant", Content: reply, Timestamp: models.Now()}

	if existing != nil {
		if err := sessions.Update(sessionID, store.Record{
			"messages": store.ArrayUnion(models.ToRecord(userMsg), models.ToRecord(botMsg)),
		}); err != nil {
			return fiber.ErrInternalServerError
		}
	} else {
		session := models.ChatSession{
			SessionID: sessionID,
			UserID:    id.UID,
			Messages:  []models.ChatMessage{userMsg, botMsg},
			CreatedAt: now,
			UpdatedAt: now,
		}
		sessions.Set(sessionID, models.ToRecord(session), false)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"response":   reply,
		"session_id": sessionID,
	})
}

// History returns one session's full message list, owner-only.
func (h *Handler) History(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)
	sessionID := c.Params("sessionID")

	rec, err := h.db.Collection("chats").Get(sessionID)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Chat not found"})
	}
	var session models.ChatSession
	if err := models.FromRecord(rec, &session); err != nil {
		return fiber.ErrInternalServerError
	}
	if session.UserID != id.UID {
		return fiber.ErrForbidden
	}
	return c.JSON(fiber.Map{"success": true, "chat": session})
}

// Sessions lists the caller's sessions newest-activity first with cursor
// pagination, shaped as previews.
func (h *Handler) Sessions(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	q := h.db.Collection("chats").
		Where("user_id", store.OpEqual, id.UID).
		OrderBy("updated_at", store.Desc)
	if cursor := strings.TrimSpace(c.Query("cursor")); cursor != "" {
		q = q.StartAfter(cursor)
	}

	rows, next := q.Page(limit)
	previews := make([]fiber.Map, 0, len(rows))
	for _, rec := range rows {
		var session models.ChatSession
		if err := models.FromRecord(rec, &session); err != nil {
			continue
		}
		var last string
		if n := len(session.Messages); n > 0 {
			last = session.Messages[n-1].Content
		}
		previews = append(previews, fiber.Map{
			"session_id":    session.SessionID,
			"last_message":  last,
			"updated_at":    session.UpdatedAt,
			"message_count": len(session.Messages),
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"chats":       previews,
		"next_cursor": next,
	})
}
