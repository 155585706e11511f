package blob

import (
	"strings"
	"testing"
	"time"
)

func tokenOf(t *testing.T, url string) string {
	t.Helper()
	i := strings.LastIndex(url, "/")
	if i < 0 {
		t.Fatalf("not a signed url: %s", url)
	}
	return url[i+1:]
}

func Test_Upload_BadPath_Rejected(t *testing.T) {
	m := NewMemory()
	for _, path := range []string{"", "loose.pdf", "documents/file.pdf"} {
		if err := m.Upload(path, []byte("x"), "u1", "application/pdf"); err != ErrBadPath {
			t.Fatalf("path %q: want ErrBadPath, got %v", path, err)
		}
	}
}

func Test_MakePath_FlattensFilename(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"doc.pdf", "verification/u1/doc.pdf"},
		{"../../other-user/doc.pdf", "verification/u1/doc.pdf"},
		{"nested/dir/doc.pdf", "verification/u1/doc.pdf"},
		{`C:\Users\x\doc.pdf`, "verification/u1/doc.pdf"},
		{"..", "verification/u1/file"},
		{"", "verification/u1/file"},
	}
	for _, tc := range cases {
		if got := MakePath("verification", "u1", tc.filename); got != tc.want {
			t.Fatalf("filename %q: want %q, got %q", tc.filename, tc.want, got)
		}
	}
}

func Test_Fetch_OwnershipMatrix(t *testing.T) {
	m := NewMemory()
	path := MakePath("documents", "u1", "a.pdf")
	_ = m.Upload(path, []byte("data"), "u1", "application/pdf")

	if _, _, err := m.Fetch(path, "u1", false); err != nil {
		t.Fatalf("owner denied: %v", err)
	}
	if _, _, err := m.Fetch(path, "intruder", false); err != ErrForbidden {
		t.Fatalf("stranger: want ErrForbidden, got %v", err)
	}
	if _, _, err := m.Fetch(path, "admin", true); err != nil {
		t.Fatalf("admin denied: %v", err)
	}
}

func Test_Fetch_Missing_IsNotFound_BeforeForbidden(t *testing.T) {
	m := NewMemory()
	path := MakePath("documents", "u1", "ghost.pdf")
	// even a non-owner learns only that the object does not exist
	if _, _, err := m.Fetch(path, "intruder", false); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func Test_SignedURL_TokenLifecycle(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return clock }

	path := MakePath("documents", "u1", "a.pdf")
	_ = m.Upload(path, []byte("data"), "u1", "application/pdf")

	url, err := m.SignedURL(path, "u1", false, 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	token := tokenOf(t, url)

	data, ct, err := m.Resolve(token)
	if err != nil || string(data) != "data" || ct != "application/pdf" {
		t.Fatalf("resolve: %v %q %q", err, data, ct)
	}

	// just before expiry still works
	clock = clock.Add(15*time.Minute - time.Second)
	if _, _, err := m.Resolve(token); err != nil {
		t.Fatalf("pre-expiry resolve failed: %v", err)
	}

	// at expiry the token dies, and stays dead
	clock = clock.Add(time.Second)
	if _, _, err := m.Resolve(token); err != ErrTokenInvalid {
		t.Fatalf("want ErrTokenInvalid at expiry, got %v", err)
	}
	clock = clock.Add(-time.Hour)
	if _, _, err := m.Resolve(token); err != ErrTokenInvalid {
		t.Fatalf("evicted token must not resurrect, got %v", err)
	}
}

func Test_SignedURL_TokensAreIndependent(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return clock }

	path := MakePath("documents", "u1", "a.pdf")
	_ = m.Upload(path, []byte("data"), "u1", "application/pdf")

	short, _ := m.SignedURL(path, "u1", false, time.Minute)
	long, _ := m.SignedURL(path, "u1", false, time.Hour)
	if short == long {
		t.Fatal("every mint must yield a fresh token")
	}

	clock = clock.Add(5 * time.Minute)
	if _, _, err := m.Resolve(tokenOf(t, short)); err != ErrTokenInvalid {
		t.Fatalf("short token should be expired, got %v", err)
	}
	if _, _, err := m.Resolve(tokenOf(t, long)); err != nil {
		t.Fatalf("long token must still resolve: %v", err)
	}
}

func Test_SignedURL_NonOwner_Forbidden(t *testing.T) {
	m := NewMemory()
	path := MakePath("verification", "u1", "bar.pdf")
	_ = m.Upload(path, []byte("data"), "u1", "application/pdf")

	if _, err := m.SignedURL(path, "intruder", false, time.Minute); err != ErrForbidden {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := m.SignedURL(path, "", true, time.Minute); err != nil {
		t.Fatalf("admin mint failed: %v", err)
	}
}

func Test_Resolve_DeletedObject_Invalid(t *testing.T) {
	m := NewMemory()
	path := MakePath("documents", "u1", "a.pdf")
	_ = m.Upload(path, []byte("data"), "u1", "application/pdf")

	url, _ := m.SignedURL(path, "u1", false, time.Hour)
	_ = m.Delete(path, "u1", false)

	if _, _, err := m.Resolve(tokenOf(t, url)); err != ErrTokenInvalid {
		t.Fatalf("want ErrTokenInvalid after delete, got %v", err)
	}
}

func Test_ListByOwner_ScopedToOwner(t *testing.T) {
	m := NewMemory()
	_ = m.Upload(MakePath("documents", "u1", "a.pdf"), []byte("1"), "u1", "application/pdf")
	_ = m.Upload(MakePath("documents", "u1", "b.pdf"), []byte("2"), "u1", "application/pdf")
	_ = m.Upload(MakePath("documents", "u2", "c.pdf"), []byte("3"), "u2", "application/pdf")

	got, err := m.ListByOwner("documents", "u1", "u1", false)
	if err != nil || len(got) != 2 {
		t.Fatalf("want 2 objects, got %d (%v)", len(got), err)
	}
	if _, err := m.ListByOwner("documents", "u1", "u2", false); err != ErrForbidden {
		t.Fatalf("cross-owner list: want ErrForbidden, got %v", err)
	}
}
