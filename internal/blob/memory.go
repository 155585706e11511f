package blob

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

type object struct {
	data        []byte
	ownerID     string
	contentType string
	createdAt   time.Time
}

type signedToken struct {
	path      string
	expiresAt time.Time
}

// Memory is the in-memory Storage implementation. Signed URLs decouple
// "who may request a download link" (ownership-checked here) from "who may
// redeem it" (anyone holding the unguessable token, time-boxed), mirroring
// real object-storage signed-URL semantics. Expired tokens are evicted
// lazily on lookup; there is no background sweep.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]object
	tokens  map[string]signedToken
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]object),
		tokens:  make(map[string]signedToken),
		now:     time.Now,
	}
}

func (m *Memory) Upload(path string, data []byte, ownerID, contentType string) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[path] = object{
		data:        buf,
		ownerID:     ownerID,
		contentType: contentType,
		createdAt:   m.now(),
	}
	return nil
}

func (m *Memory) Fetch(path, requesterID string, isAdmin bool) ([]byte, string, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	if !ok {
		return nil, "", ErrNotFound
	}
	if obj.ownerID != requesterID && !isAdmin {
		return nil, "", ErrForbidden
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, obj.contentType, nil
}

// SignedURL mints an opaque token mapped to {path, expiresAt} and returns
// a redeemable relative URL. Every call yields an independent token.
func (m *Memory) SignedURL(path, requesterID string, isAdmin bool, ttl time.Duration) (string, error) {
	if _, _, err := SplitPath(path); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	if !ok {
		return "", ErrNotFound
	}
	if obj.ownerID != requesterID && !isAdmin {
		return "", ErrForbidden
	}
	token := newToken()
	m.tokens[token] = signedToken{path: path, expiresAt: m.now().Add(ttl)}
	return "/api/files/signed/" + token, nil
}

func (m *Memory) Resolve(token string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.tokens[token]
	if !ok {
		return nil, "", ErrTokenInvalid
	}
	if !m.now().Before(st.expiresAt) {
		delete(m.tokens, token)
		return nil, "", ErrTokenInvalid
	}
	obj, ok := m.objects[st.path]
	if !ok {
		return nil, "", ErrTokenInvalid
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, obj.contentType, nil
}

func (m *Memory) Delete(path, requesterID string, isAdmin bool) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	if !ok {
		return ErrNotFound
	}
	if obj.ownerID != requesterID && !isAdmin {
		return ErrForbidden
	}
	delete(m.objects, path)
	return nil
}

func (m *Memory) ListByOwner(collection, ownerID, requesterID string, isAdmin bool) ([]ObjectInfo, error) {
	if ownerID != requesterID && !isAdmin {
		return nil, ErrForbidden
	}
	prefix := collection + "/" + ownerID + "/"
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ObjectInfo, 0)
	for path, obj := range m.objects {
		if strings.HasPrefix(path, prefix) {
			out = append(out, ObjectInfo{
				Path:        path,
				OwnerID:     obj.ownerID,
				Size:        len(obj.data),
				ContentType: obj.contentType,
				CreatedAt:   obj.createdAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}
