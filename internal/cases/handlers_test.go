package cases

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
)

func newTestApp(h *Handler, uid string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	app.Use(auth.InjectIdentity(auth.Identity{UID: uid}))
	app.Post("/api/cases/create", h.Create)
	app.Get("/api/cases/my", h.List)
	app.Get("/api/cases/:id", h.Get)
	app.Post("/api/cases/:id/notes", h.AddNote)
	return app
}

func createCase(t *testing.T, app *fiber.App, title string) string {
	t.Helper()
	body := `{"title":"` + title + `","description":"D","court":"District Court","case_number":"CC/2026/123"}`
	req := httptest.NewRequest("POST", "/api/cases/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 201 {
		t.Fatalf("create got %d", resp.StatusCode)
	}
	var out struct {
		CaseID string `json:"case_id"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out.CaseID
}

func Test_Create_StartsActiveWithEmptyNotes(t *testing.T) {
	db := store.New()
	app := newTestApp(NewHandler(db), "user1")
	caseID := createCase(t, app, "Property dispute")

	rec, err := db.Collection("cases").Get(caseID)
	if err != nil {
		t.Fatal(err)
	}
	var kase models.Case
	_ = models.FromRecord(rec, &kase)
	if kase.Status != "active" || kase.UserID != "user1" || len(kase.Notes) != 0 {
		t.Fatalf("case wrong: %+v", kase)
	}
}

func Test_Get_OwnerOnly(t *testing.T) {
	db := store.New()
	h := NewHandler(db)
	caseID := createCase(t, newTestApp(h, "owner"), "Mine")

	resp, _ := newTestApp(h, "owner").Test(httptest.NewRequest("GET", "/api/cases/"+caseID, nil))
	if resp.StatusCode != 200 {
		t.Fatalf("owner got %d", resp.StatusCode)
	}
	resp, _ = newTestApp(h, "intruder").Test(httptest.NewRequest("GET", "/api/cases/"+caseID, nil))
	if resp.StatusCode != 403 {
		t.Fatalf("intruder got %d", resp.StatusCode)
	}
}

func Test_AddNote_AppendsInOrder(t *testing.T) {
	db := store.New()
	h := NewHandler(db)
	app := newTestApp(h, "user1")
	caseID := createCase(t, app, "Hearing prep")

	for _, content := range []string{"first note", "second note"} {
		body := `{"content":"` + content + `"}`
		req := httptest.NewRequest("POST", "/api/cases/"+caseID+"/notes", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != 201 {
			t.Fatalf("add note got %d", resp.StatusCode)
		}
	}

	rec, _ := db.Collection("cases").Get(caseID)
	var kase models.Case
	_ = models.FromRecord(rec, &kase)
	if len(kase.Notes) != 2 {
		t.Fatalf("want 2 notes, got %d", len(kase.Notes))
	}
	if kase.Notes[0].Content != "first note" || kase.Notes[1].Content != "second note" {
		t.Fatalf("order wrong: %+v", kase.Notes)
	}
	if kase.Notes[0].Timestamp == "" {
		t.Fatal("note missing timestamp")
	}
}

func Test_AddNote_NonOwner_403(t *testing.T) {
	db := store.New()
	h := NewHandler(db)
	caseID := createCase(t, newTestApp(h, "owner"), "Mine")

	req := httptest.NewRequest("POST", "/api/cases/"+caseID+"/notes", strings.NewReader(`{"content":"sneaky"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := newTestApp(h, "intruder").Test(req)
	if resp.StatusCode != 403 {
		t.Fatalf("got %d", resp.StatusCode)
	}
}

func Test_List_RecentActivityFirst(t *testing.T) {
	db := store.New()
	h := NewHandler(db)
	app := newTestApp(h, "user1")

	first := createCase(t, app, "Older")
	createCase(t, app, "Newer")
	createCase(t, newTestApp(h, "other"), "Theirs")

	// touching the older case moves it to the top
	req := httptest.NewRequest("POST", "/api/cases/"+first+"/notes", strings.NewReader(`{"content":"update"}`))
	req.Header.Set("Content-Type", "application/json")
	_, _ = app.Test(req)

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/cases/my", nil))
	var out struct {
		Cases []struct {
			Title string `json:"title"`
		} `json:"cases"`
		Count int `json:"count"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.Count != 2 {
		t.Fatalf("want my 2 cases, got %d", out.Count)
	}
	if out.Cases[0].Title != "Older" {
		t.Fatalf("recency order wrong: %+v", out.Cases)
	}
}
