package blob

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

/*
Supabase wraps minimal calls to Supabase Storage REST API as the real
Storage backend.

Notes on authorization:
- If you use a legacy service_role JWT, send both `apikey` and
  `Authorization: Bearer <token>`.
- If you use a Secret API Key (sb_secret_...) that is NOT a JWT, some
  setups do NOT require the Authorization header; remove those lines then.

Ownership is carried in the path ({collection}/{ownerId}/...), so the
owner-or-admin checks run against the path's owner segment before any
network call.
*/
type Supabase struct {
	baseURL string // e.g. https://<project>.supabase.co
	apiKey  string // service_role JWT or secret API key
	bucket  string
	client  *http.Client
}

// NewSupabase reads SUPABASE_URL / SUPABASE_SERVICE_KEY / SUPABASE_BUCKET.
func NewSupabase() *Supabase {
	return &Supabase{
		baseURL: os.Getenv("SUPABASE_URL"),
		apiKey:  os.Getenv("SUPABASE_SERVICE_KEY"),
		bucket:  os.Getenv("SUPABASE_BUCKET"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Supabase) authorize(path, requesterID string, isAdmin bool) error {
	_, owner, err := SplitPath(path)
	if err != nil {
		return err
	}
	if owner != requesterID && !isAdmin {
		return ErrForbidden
	}
	return nil
}

// Upload sends an object to POST /storage/v1/object/{bucket}/{path},
// overwriting silently via the upsert header.
func (s *Supabase) Upload(path string, data []byte, ownerID, contentType string) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	req.Header.Set("apikey", s.apiKey)
	// See header note at the top of the file.
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("supabase upload error: %s | %s", res.Status, string(body))
	}
	return nil
}

// Fetch downloads an object via GET /storage/v1/object/{bucket}/{path}.
func (s *Supabase) Fetch(path, requesterID string, isAdmin bool) ([]byte, string, error) {
	if err := s.authorize(path, requesterID, isAdmin); err != nil {
		return nil, "", err
	}
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("apikey", s.apiKey)
	// See header note at the top of the file.
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return nil, "", fmt.Errorf("supabase fetch error: %s | %s", res.Status, string(body))
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}
	return data, res.Header.Get("Content-Type"), nil
}

// SignedURL creates a short-lived signed URL:
// POST /storage/v1/object/sign/{bucket}/{path}  body: {"expiresIn": <seconds>}
func (s *Supabase) SignedURL(path, requesterID string, isAdmin bool, ttl time.Duration) (string, error) {
	if err := s.authorize(path, requesterID, isAdmin); err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, path)

	body, _ := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	// See header note at the top of the file.
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("supabase sign error: %s | %s", res.Status, string(b))
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("empty signedURL in response")
	}

	// API returns a relative path; convert to absolute URL.
	return s.baseURL + "/storage/v1" + out.SignedURL, nil
}

// Resolve is not served locally: Supabase signed URLs redeem at the
// storage provider's edge.
func (s *Supabase) Resolve(string) ([]byte, string, error) {
	return nil, "", ErrTokenInvalid
}

// Delete removes an object by path. Idempotent: 404 is treated as already
// deleted only after the ownership check passes.
func (s *Supabase) Delete(path, requesterID string, isAdmin bool) error {
	if err := s.authorize(path, requesterID, isAdmin); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.apiKey)
	// See header note at the top of the file.
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("supabase delete error: %s | %s", res.Status, string(b))
	}
	return nil
}

// ListByOwner lists objects under {collection}/{ownerID}/ via
// POST /storage/v1/object/list/{bucket}.
func (s *Supabase) ListByOwner(collection, ownerID, requesterID string, isAdmin bool) ([]ObjectInfo, error) {
	if ownerID != requesterID && !isAdmin {
		return nil, ErrForbidden
	}
	url := fmt.Sprintf("%s/storage/v1/object/list/%s", s.baseURL, s.bucket)
	prefix := collection + "/" + ownerID

	body, _ := json.Marshal(map[string]any{"prefix": prefix, "limit": 1000})
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	// See header note at the top of the file.
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("supabase list error: %s | %s", res.Status, string(b))
	}

	var rows []struct {
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
		Metadata  struct {
			Size     int    `json:"size"`
			Mimetype string `json:"mimetype"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, err
	}

	out := make([]ObjectInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, ObjectInfo{
			Path:        prefix + "/" + r.Name,
			OwnerID:     ownerID,
			Size:        r.Metadata.Size,
			ContentType: r.Metadata.Mimetype,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}
