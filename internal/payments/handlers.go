package payments

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/mailer"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
	"github.com/sunolegal/backend/pkg/validation"
)

// Handler owns booking creation, client payment verification, and webhook
// reconciliation.
type Handler struct {
	db   *store.Store
	gw   Gateway
	mail mailer.Sender

	keySecret     string // signs "orderID|paymentID" for client verification
	webhookSecret string // signs raw webhook bodies
}

func NewHandler(db *store.Store, gw Gateway, mail mailer.Sender) *Handler {
	return &Handler{
		db:            db,
		gw:            gw,
		mail:          mail,
		keySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		webhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
	}
}

/* ============================ Create Booking ============================ */

type CreateBookingRequest struct {
	LawyerID         string `json:"lawyer_id" validate:"required"`
	ConsultationType string `json:"consultation_type" validate:"required,oneof=chat call video"`
	Date             string `json:"date" validate:"required"`
	TimeSlot         string `json:"time_slot" validate:"required,timeslot"`
	Duration         int    `json:"duration" validate:"required,gte=1,lte=240"`
}

// Create loads the lawyer, derives the amount server-side, creates a
// gateway order, and persists the booking as pending. The amount is
// price-per-30-min times floor(duration/30); durations under 30 minutes
// price at zero.
func (h *Handler) Create(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)

	var in CreateBookingRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	rec, err := h.db.Collection("lawyers").Get(in.LawyerID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "lawyer not found")
	}
	var lw models.Lawyer
	if err := models.FromRecord(rec, &lw); err != nil {
		return fiber.ErrInternalServerError
	}

	amount := lw.Price * (in.Duration / 30)

	order, err := h.gw.CreateOrder(amount*100, "INR", map[string]string{
		"user_id":           id.UID,
		"lawyer_id":         in.LawyerID,
		"consultation_type": in.ConsultationType,
	})
	if err != nil {
		log.Printf("payments: create order failed: %v", err)
		return fiber.ErrInternalServerError
	}

	booking := models.Booking{
		UserID:           id.UID,
		LawyerID:         in.LawyerID,
		ConsultationType: in.ConsultationType,
		Date:             in.Date,
		TimeSlot:         in.TimeSlot,
		Duration:         in.Duration,
		Amount:           amount,
		Status:           models.BookingPending,
		OrderID:          order.ID,
	}
	bookingID := h.db.Collection("bookings").Add(models.ToRecord(booking))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"booking_id": bookingID,
		"order_id":   order.ID,
		"amount":     amount,
		"currency":   "INR",
	})
}

/* ============================ Verify Payment ============================ */

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// Verify checks the client-submitted signature and confirms every booking
// referencing the order. Signature mismatch is permanent: retrying the
// same request cannot succeed.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var in VerifyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	if !ValidPaymentSignature(h.keySecret, in.OrderID, in.PaymentID, in.Signature) {
		return fiber.NewError(fiber.StatusBadRequest, "payment signature verification failed")
	}

	h.transition(in.OrderID, models.BookingConfirmed, store.Record{
		"status":     string(models.BookingConfirmed),
		"payment_id": in.PaymentID,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment verified and booking confirmed",
	})
}

/* =============================== Webhook ================================ */

type webhookEvent struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Amount           int    `json:"amount"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Webhook processes gateway deliveries. The gateway delivers each event
// at least once and redelivers on any non-2xx response, so duplicates are
// a success path: the event-id and payment-id ledgers short-circuit
// reprocessing, and the ledger insert is write-once so concurrent
// duplicate deliveries cannot both win. Signature failures are permanent
// 400s; unexpected processing errors return 500 so the gateway retries.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	body := c.Body()
	if !ValidWebhookSignature(h.webhookSecret, body, c.Get("X-Razorpay-Signature")) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid webhook signature")
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "malformed webhook payload")
	}
	if recognizedEvent(ev.Event) && (ev.Payload.Payment.Entity.ID == "" || ev.Payload.Payment.Entity.OrderID == "") {
		return fiber.NewError(fiber.StatusBadRequest, "malformed webhook payload")
	}

	events := h.db.Collection("webhook_events")
	ledger := h.db.Collection("payments")

	if _, err := events.Get(ev.ID); err == nil {
		return c.JSON(fiber.Map{"success": true, "message": "event already processed"})
	}
	pay := ev.Payload.Payment.Entity
	if pay.ID != "" {
		if _, err := ledger.Get(pay.ID); err == nil && terminalEvent(ev.Event) {
			return c.JSON(fiber.Map{"success": true, "message": "payment already processed"})
		}
	}

	switch ev.Event {
	case "payment.captured":
		// Reserve the payment-id first: the write-once insert is the
		// atomic check-and-record, so a concurrent duplicate loses here.
		err := ledger.Create(pay.ID, store.Record{
			"order_id": pay.OrderID,
			"amount":   pay.Amount,
			"event":    ev.Event,
		})
		if err == store.ErrExists {
			return c.JSON(fiber.Map{"success": true, "message": "payment already processed"})
		}
		h.transition(pay.OrderID, models.BookingConfirmed, store.Record{
			"status":     string(models.BookingConfirmed),
			"payment_id": pay.ID,
		})
		h.notifyConfirmed(pay.OrderID)

	case "payment.failed":
		err := ledger.Create(pay.ID, store.Record{
			"order_id": pay.OrderID,
			"amount":   pay.Amount,
			"event":    ev.Event,
		})
		if err == store.ErrExists {
			return c.JSON(fiber.Map{"success": true, "message": "payment already processed"})
		}
		h.transition(pay.OrderID, models.BookingFailed, store.Record{
			"status":         string(models.BookingFailed),
			"payment_id":     pay.ID,
			"failure_reason": pay.ErrorDescription,
		})

	case "payment.authorized":
		// Not terminal enough to dedupe on the payment ledger.
		h.transition(pay.OrderID, models.BookingAuthorized, store.Record{
			"status":     string(models.BookingAuthorized),
			"payment_id": pay.ID,
		})

	default:
		// Unrecognized event types are acknowledged without a ledger entry.
		return c.JSON(fiber.Map{"success": true, "message": "event ignored"})
	}

	if err := events.Create(ev.ID, store.Record{"event": ev.Event, "payment_id": pay.ID}); err != nil && err != store.ErrExists {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"success": true, "message": "event processed"})
}

func terminalEvent(event string) bool {
	return event == "payment.captured" || event == "payment.failed"
}

func recognizedEvent(event string) bool {
	return terminalEvent(event) || event == "payment.authorized"
}

// transition applies partial to every booking on the order that may still
// move to target. Bookings already in a terminal state never leave it.
func (h *Handler) transition(orderID string, target models.BookingStatus, partial store.Record) {
	bookings := h.db.Collection("bookings")
	for _, rec := range bookings.Where("order_id", store.OpEqual, orderID).Stream() {
		var b models.Booking
		if err := models.FromRecord(rec, &b); err != nil {
			continue
		}
		if !allowedTransition(b.Status, target) {
			continue
		}
		if err := bookings.Update(b.ID, partial); err != nil {
			log.Printf("payments: booking %s update failed: %v", b.ID, err)
		}
	}
}

// allowedTransition encodes the booking state machine: pending may move
// anywhere, authorized may settle, terminal states are final.
func allowedTransition(from, to models.BookingStatus) bool {
	switch from {
	case models.BookingPending:
		return to == models.BookingAuthorized || to == models.BookingConfirmed || to == models.BookingFailed
	case models.BookingAuthorized:
		return to == models.BookingConfirmed || to == models.BookingFailed
	}
	return false
}

func (h *Handler) notifyConfirmed(orderID string) {
	for _, rec := range h.db.Collection("bookings").Where("order_id", store.OpEqual, orderID).Stream() {
		var b models.Booking
		if err := models.FromRecord(rec, &b); err != nil {
			continue
		}
		profile, err := h.db.Collection("users").Get(b.UserID)
		if err != nil {
			continue
		}
		var u models.UserProfile
		if err := models.FromRecord(profile, &u); err != nil || u.Email == "" {
			continue
		}
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>Your %s consultation on %s at %s is confirmed.</p>",
			u.Name, b.ConsultationType, b.Date, b.TimeSlot,
		)
		mailer.Notify(h.mail, u.Email, "Booking confirmed", body)
	}
}

/* ============================ List Bookings ============================= */

// List returns the caller's bookings newest first with cursor pagination:
// next_cursor carries the last page boundary's created_at and is null on
// the final page.
func (h *Handler) List(c *fiber.Ctx) error {
	id := auth.MustIdentity(c)
	limit := parseLimit(c)

	q := h.db.Collection("bookings").
		Where("user_id", store.OpEqual, id.UID).
		OrderBy("created_at", store.Desc)
	if cursor := strings.TrimSpace(c.Query("cursor")); cursor != "" {
		q = q.StartAfter(cursor)
	}

	rows, next := q.Page(limit)
	items := make([]models.Booking, 0, len(rows))
	for _, rec := range rows {
		var b models.Booking
		if err := models.FromRecord(rec, &b); err == nil {
			items = append(items, b)
		}
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"bookings":    items,
		"next_cursor": next,
	})
}

func parseLimit(c *fiber.Ctx) int {
	n, _ := strconv.Atoi(c.Query("limit", "10"))
	if n < 1 || n > 50 {
		n = 10
	}
	return n
}
