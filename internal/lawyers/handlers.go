// Package lawyers serves the marketplace listing and the application /
// verification workflow: pending -> documents_uploaded -> approved or
// rejected, with approval minting a verified marketplace profile.
package lawyers

import (
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/blob"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
	"github.com/sunolegal/backend/pkg/validation"
)

type Handler struct {
	db    *store.Store
	blobs blob.Storage

	// guards the query-then-insert that enforces one application per
	// owner; the store has no cross-call transactions
	applyMu sync.Mutex
}

func NewHandler(db *store.Store, blobs blob.Storage) *Handler {
	return &Handler{db: db, blobs: blobs}
}

/* ============================= Marketplace ============================== */

// List filters lawyers by city (equality), specialization and language
// (array membership). Price bounds are applied after the query; the store
// only composes equality and membership filters.
func (h *Handler) List(c *fiber.Ctx) error {
	q := h.db.Collection("lawyers").All()
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		q = q.Where("city", store.OpEqual, city)
	}
	if spec := strings.TrimSpace(c.Query("specialization")); spec != "" {
		q = q.Where("specialization", store.OpArrayContains, spec)
	}
	if lang := strings.TrimSpace(c.Query("language")); lang != "" {
		q = q.Where("languages", store.OpArrayContains, lang)
	}
	minPrice, _ := strconv.Atoi(c.Query("min_price"))
	maxPrice, _ := strconv.Atoi(c.Query("max_price"))

	items := make([]models.Lawyer, 0)
	for _, rec := range q.Stream() {
		var lw models.Lawyer
		if err := models.FromRecord(rec, &lw); err != nil {
			continue
		}
		if minPrice > 0 && lw.Price < minPrice {
			continue
		}
		if maxPrice > 0 && lw.Price > maxPrice {
			continue
		}
		items = append(items, lw)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"lawyers": items,
		"count":   len(items),
	})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	rec, err := h.db.Collection("lawyers").Get(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "lawyer not found")
	}
	var lw models.Lawyer
	if err := models.FromRecord(rec, &lw); err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"success": true, "lawyer": lw})
}

/* ============================= Applications ============================= */

type ApplyRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=80"`
	BarCouncilID   string   `json:"bar_council_id" validate:"required,barcouncil"`
	Specialization []string `json:"specialization" validate:"required,min=1"`
	Languages      []string `json:"languages" validate:"required,min=1"`
	City           string   `json:"city" validate:"required,max=60"`
	State          string   `json:"state" validate:"required,max=60"`
	Experience     int      `json:"experience" validate:"gte=0,lte=70"`
	Price          int      `json:"price" validate:"required,gte=1"`
	Bio            string   `json:"bio" validate:"max=2000"`
}

// Apply files a lawyer application for the caller. One application per
// owner: any existing application blocks a new one regardless of its
// status.
func (h *Handler) Apply(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	var in ApplyRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	apps := h.db.Collection("lawyer_applications")

	h.applyMu.Lock()
	defer h.applyMu.Unlock()

	if existing := apps.Where("owner_user_id", store.OpEqual, id.UID).Limit(1).Stream(); len(existing) > 0 {
		return fiber.NewError(fiber.StatusConflict, "an application already exists for this account")
	}

	app := models.LawyerApplication{
		OwnerUserID:        id.UID,
		Name:               strings.TrimSpace(in.Name),
		BarCouncilID:       strings.ToUpper(strings.TrimSpace(in.BarCouncilID)),
		Specialization:     in.Specialization,
		Languages:          in.Languages,
		City:               strings.TrimSpace(in.City),
		State:              strings.TrimSpace(in.State),
		Experience:         in.Experience,
		Price:              in.Price,
		Bio:                strings.TrimSpace(in.Bio),
		VerificationStatus: models.ApplicationPending,
		Verified:           false,
		VerificationDocs:   []string{},
	}
	appID := apps.Add(models.ToRecord(app))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"application_id": appID,
		"status":         models.ApplicationPending,
	})
}

// Mine returns the caller's application.
func (h *Handler) Mine(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)
	rows := h.db.Collection("lawyer_applications").
		Where("owner_user_id", store.OpEqual, id.UID).Limit(1).Stream()
	if len(rows) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no application on file")
	}
	var app models.LawyerApplication
	if err := models.FromRecord(rows[0], &app); err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"success": true, "application": app})
}

// UploadDocs stores verification documents (PDF/PNG, max 10MB each) in the
// private blob store and appends their paths to the application. Only the
// owner may upload, and only while the application is not terminal.
func (h *Handler) UploadDocs(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)
	appID := c.Params("id")

	apps := h.db.Collection("lawyer_applications")
	rec, err := apps.Get(appID)
	if err != nil {
		return fiber.ErrNotFound
	}
	var app models.LawyerApplication
	if err := models.FromRecord(rec, &app); err != nil {
		return fiber.ErrInternalServerError
	}
	if app.OwnerUserID != id.UID {
		return fiber.ErrForbidden
	}
	if app.VerificationStatus == models.ApplicationApproved || app.VerificationStatus == models.ApplicationRejected {
		return fiber.NewError(fiber.StatusConflict, "application already resolved")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form required; use files[]")
	}
	files := form.File["files[]"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "files are required (use key: files[])")
	}
	if len(files) > 10 {
		return fiber.NewError(fiber.StatusBadRequest, "max 10 files allowed")
	}

	paths := make([]any, 0, len(files))
	results := make([]fiber.Map, 0, len(files))
	for _, fh := range files {
		res := fiber.Map{"name": fh.Filename, "size": fh.Size}

		if fh.Size <= 0 {
			res["error"] = "empty file"
			results = append(results, res)
			continue
		}
		if fh.Size > 10*1024*1024 {
			res["error"] = "max 10MB per file"
			results = append(results, res)
			continue
		}
		ct := fh.Header.Get("Content-Type")
		switch ct {
		case "application/pdf", "image/png", "image/jpeg":
			// ok
		default:
			res["error"] = "only PDF, PNG or JPEG are allowed"
			results = append(results, res)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			res["error"] = "open failed"
			results = append(results, res)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			res["error"] = "read failed"
			results = append(results, res)
			continue
		}

		path := blob.MakePath("verification", id.UID, fh.Filename)
		if err := h.blobs.Upload(path, data, id.UID, ct); err != nil {
			res["error"] = "upload failed"
			results = append(results, res)
			continue
		}
		paths = append(paths, path)
		res["path"] = path
		results = append(results, res)
	}

	if len(paths) > 0 {
		if err := apps.Update(appID, store.Record{
			"verification_docs":   store.ArrayUnion(paths...),
			"verification_status": string(models.ApplicationDocsReady),
		}); err != nil {
			return fiber.ErrInternalServerError
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "results": results})
}

/* ================================ Admin ================================= */

// AdminList returns applications, optionally filtered by status, newest
// first.
func (h *Handler) AdminList(c *fiber.Ctx) error {
	q := h.db.Collection("lawyer_applications").OrderBy("created_at", store.Desc)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("verification_status", store.OpEqual, status)
	}

	items := make([]models.LawyerApplication, 0)
	for _, rec := range q.Stream() {
		var app models.LawyerApplication
		if err := models.FromRecord(rec, &app); err == nil {
			items = append(items, app)
		}
	}
	return c.JSON(fiber.Map{"success": true, "applications": items, "count": len(items)})
}

// AdminDocs returns short-lived signed URLs for an application's
// verification documents.
func (h *Handler) AdminDocs(c *fiber.Ctx) error {
	rec, err := h.db.Collection("lawyer_applications").Get(c.Params("id"))
	if err != nil {
		return fiber.ErrNotFound
	}
	var app models.LawyerApplication
	if err := models.FromRecord(rec, &app); err != nil {
		return fiber.ErrInternalServerError
	}

	urls := make([]fiber.Map, 0, len(app.VerificationDocs))
	for _, path := range app.VerificationDocs {
		url, err := h.blobs.SignedURL(path, "", true, 15*time.Minute)
		if err != nil {
			continue
		}
		urls = append(urls, fiber.Map{"path": path, "url": url})
	}
	return c.JSON(fiber.Map{"success": true, "documents": urls})
}

type approveRequest struct {
	Notes string `json:"notes"`
}

// Approve resolves an application: a verified marketplace profile is
// created from the application fields and its id stamped back.
func (h *Handler) Approve(c *fiber.Ctx) error {
	appID := c.Params("id")
	apps := h.db.Collection("lawyer_applications")

	rec, err := apps.Get(appID)
	if err != nil {
		return fiber.ErrNotFound
	}
	var app models.LawyerApplication
	if err := models.FromRecord(rec, &app); err != nil {
		return fiber.ErrInternalServerError
	}
	if app.VerificationStatus == models.ApplicationApproved || app.VerificationStatus == models.ApplicationRejected {
		return fiber.NewError(fiber.StatusConflict, "application already resolved")
	}

	var in approveRequest
	_ = c.BodyParser(&in) // notes are optional

	profile := models.Lawyer{
		OwnerUserID:    app.OwnerUserID,
		Name:           app.Name,
		BarCouncilID:   app.BarCouncilID,
		Specialization: app.Specialization,
		Languages:      app.Languages,
		City:           app.City,
		State:          app.State,
		Experience:     app.Experience,
		Price:          app.Price,
		Bio:            app.Bio,
		Verified:       true,
	}
	profileID := h.db.Collection("lawyers").Add(models.ToRecord(profile))

	if err := apps.Update(appID, store.Record{
		"verification_status": string(models.ApplicationApproved),
		"verified":            true,
		"lawyer_profile_id":   profileID,
		"admin_notes":         strings.TrimSpace(in.Notes),
	}); err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"lawyer_profile_id": profileID,
		"status":            models.ApplicationApproved,
	})
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// Reject resolves an application with a reason; no profile is created.
func (h *Handler) Reject(c *fiber.Ctx) error {
	appID := c.Params("id")
	apps := h.db.Collection("lawyer_applications")

	rec, err := apps.Get(appID)
	if err != nil {
		return fiber.ErrNotFound
	}
	var app models.LawyerApplication
	if err := models.FromRecord(rec, &app); err != nil {
		return fiber.ErrInternalServerError
	}
	if app.VerificationStatus == models.ApplicationApproved || app.VerificationStatus == models.ApplicationRejected {
		return fiber.NewError(fiber.StatusConflict, "application already resolved")
	}

	var in rejectRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	if err := apps.Update(appID, store.Record{
		"verification_status": string(models.ApplicationRejected),
		"rejected_reason":     strings.TrimSpace(in.Reason),
	}); err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{"success": true, "status": models.ApplicationRejected})
}
