package models

import "time"

/* =============================== Enums ================================== */

// Role defines the type of user in the system.
type Role string

const (
	RoleUser   Role = "user"
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
)

// BookingStatus defines lifecycle states for a booking. Transitions are
// driven only by payment verification and webhook delivery.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingAuthorized BookingStatus = "authorized"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingFailed     BookingStatus = "payment_failed"
)

// ApplicationStatus defines lifecycle states for a lawyer application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationDocsReady ApplicationStatus = "documents_uploaded"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// DocumentType enumerates the generatable legal document templates.
type DocumentType string

const (
	DocRentAgreement     DocumentType = "rent_agreement"
	DocLegalNotice       DocumentType = "legal_notice"
	DocAffidavit         DocumentType = "affidavit"
	DocConsumerComplaint DocumentType = "consumer_complaint"
)

// ValidDocumentType reports whether t names a known template.
func ValidDocumentType(t string) bool {
	switch DocumentType(t) {
	case DocRentAgreement, DocLegalNotice, DocAffidavit, DocConsumerComplaint:
		return true
	}
	return false
}

/* =============================== Entities =============================== */

// UserProfile is an owner-scoped profile keyed by the verified uid.
type UserProfile struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Language string `json:"language"`
	Role     Role   `json:"role"`
}

// ChatMessage is a single turn in an assistant session.
type ChatMessage struct {
	Role      string `json:"role"` // "user" | "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatSession groups an append-only message sequence under one owner.
type ChatSession struct {
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt string        `json:"created_at,omitempty"`
	UpdatedAt string        `json:"updated_at,omitempty"`
}

// Document records one generated legal document. Immutable after creation
// except for Status.
type Document struct {
	ID          string         `json:"id,omitempty"`
	UserID      string         `json:"user_id"`
	Type        DocumentType   `json:"type"`
	StoragePath string         `json:"storage_path"`
	Data        map[string]any `json:"data"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at,omitempty"`
}

// Lawyer is a marketplace profile. Verified is settable only through the
// admin approval flow.
type Lawyer struct {
	ID             string   `json:"id,omitempty"`
	OwnerUserID    string   `json:"owner_user_id,omitempty"` // empty for seed data
	Name           string   `json:"name"`
	BarCouncilID   string   `json:"bar_council_id"`
	Specialization []string `json:"specialization"`
	Languages      []string `json:"languages"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Experience     int      `json:"experience"`
	Price          int      `json:"price"` // per 30 min consultation
	Rating         float64  `json:"rating"`
	Reviews        int      `json:"reviews"`
	Bio            string   `json:"bio,omitempty"`
	Verified       bool     `json:"verified"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

// LawyerApplication tracks the verification workflow for one prospective
// lawyer. OwnerUserID is set from caller identity, never from the body.
type LawyerApplication struct {
	ID                 string            `json:"id,omitempty"`
	OwnerUserID        string            `json:"owner_user_id"`
	Name               string            `json:"name"`
	BarCouncilID       string            `json:"bar_council_id"`
	Specialization     []string          `json:"specialization"`
	Languages          []string          `json:"languages"`
	City               string            `json:"city"`
	State              string            `json:"state"`
	Experience         int               `json:"experience"`
	Price              int               `json:"price"`
	Bio                string            `json:"bio,omitempty"`
	VerificationStatus ApplicationStatus `json:"verification_status"`
	Verified           bool              `json:"verified"`
	VerificationDocs   []string          `json:"verification_docs"` // blob paths, append-only
	AdminNotes         string            `json:"admin_notes,omitempty"`
	RejectedReason     string            `json:"rejected_reason,omitempty"`
	LawyerProfileID    string            `json:"lawyer_profile_id,omitempty"`
	CreatedAt          string            `json:"created_at,omitempty"`
}

// Booking is created pending; Amount is always recomputed server-side from
// the lawyer's price.
type Booking struct {
	ID               string        `json:"id,omitempty"`
	UserID           string        `json:"user_id"`
	LawyerID         string        `json:"lawyer_id"`
	ConsultationType string        `json:"consultation_type"` // chat | call | video
	Date             string        `json:"date"`
	TimeSlot         string        `json:"time_slot"`
	Duration         int           `json:"duration"` // minutes
	Amount           int           `json:"amount"`
	Status           BookingStatus `json:"status"`
	OrderID          string        `json:"order_id"`
	PaymentID        string        `json:"payment_id,omitempty"`
	FailureReason    string        `json:"failure_reason,omitempty"`
	CreatedAt        string        `json:"created_at,omitempty"`
}

// CaseNote is one append-only note on a tracked case.
type CaseNote struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Case is a user-tracked legal matter.
type Case struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Court       string     `json:"court,omitempty"`
	CaseNumber  string     `json:"case_number,omitempty"`
	HearingDate string     `json:"hearing_date,omitempty"`
	Status      string     `json:"status"`
	Notes       []CaseNote `json:"notes"`
	Documents   []string   `json:"documents"`
	CreatedAt   string     `json:"created_at,omitempty"`
	UpdatedAt   string     `json:"updated_at,omitempty"`
}

// Law is a static reference entry (act, scheme, or info page).
type Law struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	State        string   `json:"state"`
	Type         string   `json:"type"` // act | scheme | info
	Description  string   `json:"description"`
	Eligibility  string   `json:"eligibility"`
	HowToApply   string   `json:"how_to_apply"`
	RequiredDocs []string `json:"required_docs"`
	KeyPoints    []string `json:"key_points"`
}

// WaitlistEntry is a pre-launch signup. Email uniqueness is enforced by a
// query-before-insert at the handler, not a stored constraint.
type WaitlistEntry struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	City      string `json:"city"`
	UserType  string `json:"user_type"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

/* ============================ Timestamps ================================ */

// Now formats the current UTC time the way record timestamps are stored.
// RFC 3339 strings order lexicographically, which cursor pagination on
// created_at/updated_at relies on.
func Now() string { return time.Now().UTC().Format(time.RFC3339Nano) }
