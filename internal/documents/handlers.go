// Package documents generates legal documents from templates, stores the
// bytes in the private blob store, and serves them back through signed
// URLs only. Raw storage paths are never directly downloadable.
package documents

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/blob"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
	"github.com/sunolegal/backend/pkg/validation"
)

const signedURLTTL = 15 * time.Minute

type Handler struct {
	db       *store.Store
	blobs    blob.Storage
	renderer Renderer
}

func NewHandler(db *store.Store, blobs blob.Storage, r Renderer) *Handler {
	return &Handler{db: db, blobs: blobs, renderer: r}
}

type GenerateRequest struct {
	DocumentType string         `json:"document_type" validate:"required"`
	Data         map[string]any `json:"data" validate:"required"`
}

// Generate renders a document, uploads it under the caller's namespace and
// records it. The response carries a short-lived signed URL, not the path.
func (h *Handler) Generate(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	var in GenerateRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	if !models.ValidDocumentType(in.DocumentType) {
		return fiber.NewError(fiber.StatusBadRequest,
			"document_type must be one of: rent_agreement, legal_notice, affidavit, consumer_complaint")
	}
	docType := models.DocumentType(in.DocumentType)

	data, contentType, err := h.renderer.Render(docType, in.Data)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "document generation failed")
	}

	docID := uuid.NewString()
	path := blob.MakePath("documents", id.UID, docID+".pdf")
	if err := h.blobs.Upload(path, data, id.UID, contentType); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "document upload failed")
	}

	doc := models.Document{
		UserID:      id.UID,
		Type:        docType,
		StoragePath: path,
		Data:        in.Data,
		Status:      "generated",
	}
	if err := h.db.Collection("documents").Create(docID, models.ToRecord(doc)); err != nil {
		return fiber.ErrInternalServerError
	}

	url, err := h.blobs.SignedURL(path, id.UID, id.IsAdmin, signedURLTTL)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"document_id":   docID,
		"document_type": docType,
		"download_url":  url,
		"expires_in":    int(signedURLTTL.Seconds()),
	})
}

// List returns the caller's documents, newest first, cursor paginated.
func (h *Handler) List(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	q := h.db.Collection("documents").
		Where("user_id", store.OpEqual, id.UID).
		OrderBy("created_at", store.Desc)
	if cursor := c.Query("cursor"); cursor != "" {
		q = q.StartAfter(cursor)
	}

	rows, next := q.Page(limit)
	items := make([]fiber.Map, 0, len(rows))
	for _, rec := range rows {
		var doc models.Document
		if err := models.FromRecord(rec, &doc); err != nil {
			continue
		}
		items = append(items, fiber.Map{
			"id":            doc.ID,
			"document_type": doc.Type,
			"status":        doc.Status,
			"created_at":    doc.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"documents":   items,
		"count":       len(items),
		"next_cursor": next,
	})
}

// SignedURL mints a fresh signed URL for one owned document.
func (h *Handler) SignedURL(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	rec, err := h.db.Collection("documents").Get(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	var doc models.Document
	if err := models.FromRecord(rec, &doc); err != nil {
		return fiber.ErrInternalServerError
	}

	url, err := h.blobs.SignedURL(doc.StoragePath, id.UID, id.IsAdmin, signedURLTTL)
	switch err {
	case nil:
	case blob.ErrNotFound:
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	case blob.ErrForbidden:
		return fiber.ErrForbidden
	default:
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"download_url": url,
		"expires_in":   int(signedURLTTL.Seconds()),
	})
}

// Redeem streams the bytes behind a signed token. No auth: the token is
// the capability, and it stops working once expired.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("token"))
	data, contentType, err := h.blobs.Resolve(token)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "link is invalid or has expired")
	}
	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.Send(data)
}
