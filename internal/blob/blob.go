// Package blob provides private object storage behind one interface with
// two implementations: an in-memory emulation with signed-token access
// (dev/test) and a Supabase Storage REST client (real backend). The
// implementation is selected by configuration at process start.
package blob

import (
	"errors"
	"path"
	"strings"
	"time"
)

var (
	// ErrBadPath reports a malformed object path.
	ErrBadPath = errors.New("blob: object path needs {collection}/{ownerId}/{filename}")
	// ErrNotFound reports an absent object.
	ErrNotFound = errors.New("blob: object not found")
	// ErrForbidden reports an ownership/admin check failure on an existing
	// object.
	ErrForbidden = errors.New("blob: access denied")
	// ErrTokenInvalid reports an unknown or expired signed token.
	ErrTokenInvalid = errors.New("blob: signed token invalid or expired")
)

// ObjectInfo describes a stored object without its bytes.
type ObjectInfo struct {
	Path        string    `json:"path"`
	OwnerID     string    `json:"owner_id"`
	Size        int       `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage is the object-store boundary. Paths are hierarchical strings of
// the form {collection}/{ownerId}/{filename...}; the second segment names
// the owner the access checks run against.
type Storage interface {
	// Upload stores data under path, silently overwriting an existing
	// object.
	Upload(path string, data []byte, ownerID, contentType string) error
	// Fetch returns the object bytes after an owner-or-admin check.
	Fetch(path, requesterID string, isAdmin bool) ([]byte, string, error)
	// SignedURL runs the same access check as Fetch and returns a
	// short-lived URL that redeems without further authorization.
	SignedURL(path, requesterID string, isAdmin bool, ttl time.Duration) (string, error)
	// Resolve redeems a signed token minted by SignedURL. Implementations
	// whose URLs redeem at the storage provider's edge return
	// ErrTokenInvalid.
	Resolve(token string) ([]byte, string, error)
	// Delete removes an object after an owner-or-admin check.
	Delete(path, requesterID string, isAdmin bool) error
	// ListByOwner lists objects under {collection}/{ownerID}/ after an
	// owner-or-admin check.
	ListByOwner(collection, ownerID, requesterID string, isAdmin bool) ([]ObjectInfo, error)
}

// SplitPath validates a path and returns its collection and owner
// segments.
func SplitPath(path string) (collection, ownerID string, err error) {
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", ErrBadPath
	}
	return parts[0], parts[1], nil
}

// MakePath builds an object path under the given owner's namespace. The
// filename is reduced to its final segment so client-supplied names with
// separators or dot-dot cannot escape the owner's prefix.
func MakePath(collection, ownerID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "/" || name == "." || name == ".." {
		name = "file"
	}
	return collection + "/" + ownerID + "/" + name
}
