package payments

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/mailer"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/pkg/models"
)

/* ===== helpers ===== */

const (
	testKeySecret     = "key-secret"
	testWebhookSecret = "webhook-secret"
)

func newTestHandler(db *store.Store) *Handler {
	return &Handler{
		db:            db,
		gw:            Mock{},
		mail:          mailer.New(),
		keySecret:     testKeySecret,
		webhookSecret: testWebhookSecret,
	}
}

func newTestApp(h *Handler, uid string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	app.Post("/api/payments/webhook", h.Webhook)
	app.Use(auth.InjectIdentity(auth.Identity{UID: uid}))
	app.Post("/api/bookings/create", h.Create)
	app.Post("/api/bookings/verify-payment", h.Verify)
	app.Get("/api/bookings/my", h.List)
	return app
}

func seedLawyer(db *store.Store, price int) string {
	return db.Collection("lawyers").Add(models.ToRecord(models.Lawyer{
		Name:         "Adv. Test",
		BarCouncilID: "DL/11111/2015",
		City:         "Delhi",
		Price:        price,
		Verified:     true,
	}))
}

func createBooking(t *testing.T, app *fiber.App, lawyerID string, duration int) (bookingID, orderID string, amount int) {
	t.Helper()
	body := fmt.Sprintf(`{"lawyer_id":%q,"consultation_type":"call","date":"2026-09-15","time_slot":"14:30","duration":%d}`, lawyerID, duration)
	req := httptest.NewRequest("POST", "/api/bookings/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 201 {
		t.Fatalf("create booking got %d", resp.StatusCode)
	}
	var out struct {
		BookingID string `json:"booking_id"`
		OrderID   string `json:"order_id"`
		Amount    int    `json:"amount"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out.BookingID, out.OrderID, out.Amount
}

func postWebhook(t *testing.T, app *fiber.App, body, signature string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/payments/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	resp, _ := app.Test(req)
	return resp.StatusCode
}

func capturedEvent(eventID, paymentID, orderID string) string {
	return fmt.Sprintf(`{"id":%q,"event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":50000}}}}`,
		eventID, paymentID, orderID)
}

func bookingStatus(t *testing.T, db *store.Store, bookingID string) models.BookingStatus {
	t.Helper()
	rec, err := db.Collection("bookings").Get(bookingID)
	if err != nil {
		t.Fatal(err)
	}
	var b models.Booking
	if err := models.FromRecord(rec, &b); err != nil {
		t.Fatal(err)
	}
	return b.Status
}

/* ================== TESTS ================== */

func Test_CreateBooking_AmountIsPricePerHalfHour(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)

	for _, tc := range []struct {
		duration int
		want     int
	}{
		{29, 0},   // under one block prices at zero
		{30, 500}, // exactly one block
		{45, 500}, // partial second block does not count
		{60, 1000},
		{90, 1500},
	} {
		_, _, amount := createBooking(t, app, lawyerID, tc.duration)
		if amount != tc.want {
			t.Fatalf("duration %d: want amount %d, got %d", tc.duration, tc.want, amount)
		}
	}
}

func Test_CreateBooking_UnknownLawyer_404(t *testing.T) {
	db := store.New()
	app := newTestApp(newTestHandler(db), "user1")

	body := `{"lawyer_id":"ghost","consultation_type":"call","date":"2026-09-15","time_slot":"14:30","duration":30}`
	req := httptest.NewRequest("POST", "/api/bookings/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 404 {
		t.Fatalf("got %d", resp.StatusCode)
	}
}

func Test_CreateBooking_BadTimeSlot_400(t *testing.T) {
	db := store.New()
	app := newTestApp(newTestHandler(db), "user1")
	lawyerID := seedLawyer(db, 500)

	body := fmt.Sprintf(`{"lawyer_id":%q,"consultation_type":"call","date":"2026-09-15","time_slot":"2pm","duration":30}`, lawyerID)
	req := httptest.NewRequest("POST", "/api/bookings/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 400 {
		t.Fatalf("got %d", resp.StatusCode)
	}
}

func Test_VerifyPayment_ConfirmsBooking(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)
	bookingID, orderID, _ := createBooking(t, app, lawyerID, 30)

	sig := PaymentSignature(testKeySecret, orderID, "pay_1")
	body := fmt.Sprintf(`{"order_id":%q,"payment_id":"pay_1","signature":%q}`, orderID, sig)
	req := httptest.NewRequest("POST", "/api/bookings/verify-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("got %d", resp.StatusCode)
	}
	if st := bookingStatus(t, db, bookingID); st != models.BookingConfirmed {
		t.Fatalf("want confirmed, got %s", st)
	}
}

func Test_VerifyPayment_BadSignature_400(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)
	bookingID, orderID, _ := createBooking(t, app, lawyerID, 30)

	body := fmt.Sprintf(`{"order_id":%q,"payment_id":"pay_1","signature":"forged"}`, orderID)
	req := httptest.NewRequest("POST", "/api/bookings/verify-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 400 {
		t.Fatalf("got %d", resp.StatusCode)
	}
	if st := bookingStatus(t, db, bookingID); st != models.BookingPending {
		t.Fatalf("booking must stay pending, got %s", st)
	}
}

func Test_Webhook_Captured_ConfirmsOnce(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)
	bookingID, orderID, _ := createBooking(t, app, lawyerID, 30)

	body := capturedEvent("evt_1", "pay_1", orderID)
	sig := WebhookSignature(testWebhookSecret, []byte(body))

	if code := postWebhook(t, app, body, sig); code != 200 {
		t.Fatalf("first delivery got %d", code)
	}
	if st := bookingStatus(t, db, bookingID); st != models.BookingConfirmed {
		t.Fatalf("want confirmed, got %s", st)
	}

	// redelivery of the identical event is a success, not a conflict
	if code := postWebhook(t, app, body, sig); code != 200 {
		t.Fatalf("redelivery got %d", code)
	}
	if n := len(db.Collection("payments").All().Stream()); n != 1 {
		t.Fatalf("want 1 payment ledger entry, got %d", n)
	}
}

func Test_Webhook_SamePayment_DifferentEventID_Deduped(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)
	_, orderID, _ := createBooking(t, app, lawyerID, 30)

	body1 := capturedEvent("evt_1", "pay_1", orderID)
	postWebhook(t, app, body1, WebhookSignature(testWebhookSecret, []byte(body1)))

	body2 := capturedEvent("evt_2", "pay_1", orderID)
	if code := postWebhook(t, app, body2, WebhookSignature(testWebhookSecret, []byte(body2))); code != 200 {
		t.Fatalf("got %d", code)
	}
	if n := len(db.Collection("payments").All().Stream()); n != 1 {
		t.Fatalf("payment reprocessed: %d ledger entries", n)
	}
}

func Test_Webhook_InvalidSignature_400(t *testing.T) {
	db := store.New()
	app := newTestApp(newTestHandler(db), "user1")

	body := capturedEvent("evt_1", "pay_1", "order_x")
	if code := postWebhook(t, app, body, "bogus"); code != 400 {
		t.Fatalf("got %d", code)
	}
	if code := postWebhook(t, app, body, ""); code != 400 {
		t.Fatalf("missing header got %d", code)
	}
}

func Test_Webhook_Failed_MarksBookingFailed(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)
	bookingID, orderID, _ := createBooking(t, app, lawyerID, 30)

	body := fmt.Sprintf(`{"id":"evt_1","event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":%q,"amount":50000,"error_description":"card declined"}}}}`, orderID)
	if code := postWebhook(t, app, body, WebhookSignature(testWebhookSecret, []byte(body))); code != 200 {
		t.Fatalf("got %d", code)
	}
	if st := bookingStatus(t, db, bookingID); st != models.BookingFailed {
		t.Fatalf("want payment_failed, got %s", st)
	}

	rec, _ := db.Collection("bookings").Get(bookingID)
	if rec["failure_reason"] != "card declined" {
		t.Fatalf("failure reason not recorded: %+v", rec)
	}
}

func Test_Webhook_AuthorizedThenCaptured(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)
	bookingID, orderID, _ := createBooking(t, app, lawyerID, 30)

	authBody := fmt.Sprintf(`{"id":"evt_1","event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_1","order_id":%q,"amount":50000}}}}`, orderID)
	postWebhook(t, app, authBody, WebhookSignature(testWebhookSecret, []byte(authBody)))
	if st := bookingStatus(t, db, bookingID); st != models.BookingAuthorized {
		t.Fatalf("want authorized, got %s", st)
	}

	capBody := capturedEvent("evt_2", "pay_1", orderID)
	postWebhook(t, app, capBody, WebhookSignature(testWebhookSecret, []byte(capBody)))
	if st := bookingStatus(t, db, bookingID); st != models.BookingConfirmed {
		t.Fatalf("want confirmed, got %s", st)
	}
}

func Test_Webhook_TerminalStateIsFinal(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	app := newTestApp(h, "user1")
	lawyerID := seedLawyer(db, 500)
	bookingID, orderID, _ := createBooking(t, app, lawyerID, 30)

	capBody := capturedEvent("evt_1", "pay_1", orderID)
	postWebhook(t, app, capBody, WebhookSignature(testWebhookSecret, []byte(capBody)))

	failBody := fmt.Sprintf(`{"id":"evt_2","event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_2","order_id":%q,"amount":50000,"error_description":"late failure"}}}}`, orderID)
	postWebhook(t, app, failBody, WebhookSignature(testWebhookSecret, []byte(failBody)))

	if st := bookingStatus(t, db, bookingID); st != models.BookingConfirmed {
		t.Fatalf("confirmed booking regressed to %s", st)
	}
}

func Test_Webhook_UnrecognizedEvent_AcknowledgedWithoutLedger(t *testing.T) {
	db := store.New()
	app := newTestApp(newTestHandler(db), "user1")

	body := `{"id":"evt_1","event":"refund.processed","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_x","amount":1}}}}`
	if code := postWebhook(t, app, body, WebhookSignature(testWebhookSecret, []byte(body))); code != 200 {
		t.Fatalf("got %d", code)
	}
	if n := len(db.Collection("webhook_events").All().Stream()); n != 0 {
		t.Fatalf("ignored event must not be recorded, got %d entries", n)
	}
}

func Test_Webhook_MalformedPayload_400(t *testing.T) {
	db := store.New()
	app := newTestApp(newTestHandler(db), "user1")

	for _, body := range []string{
		`not json`,
		`{"event":"payment.captured"}`, // no event id
		`{"id":"evt_1","event":"payment.captured","payload":{"payment":{"entity":{"id":"","order_id":""}}}}`,
	} {
		if code := postWebhook(t, app, body, WebhookSignature(testWebhookSecret, []byte(body))); code != 400 {
			t.Fatalf("body %q: got %d", body, code)
		}
	}
}

func Test_ListBookings_OnlyMine_NewestFirst(t *testing.T) {
	db := store.New()
	h := newTestHandler(db)
	lawyerID := seedLawyer(db, 500)

	appA := newTestApp(h, "userA")
	appB := newTestApp(h, "userB")
	createBooking(t, appA, lawyerID, 30)
	createBooking(t, appA, lawyerID, 60)
	createBooking(t, appB, lawyerID, 30)

	req := httptest.NewRequest("GET", "/api/bookings/my", nil)
	resp, _ := appA.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("got %d", resp.StatusCode)
	}
	var out struct {
		Bookings []struct {
			UserID string `json:"user_id"`
			Amount int    `json:"amount"`
		} `json:"bookings"`
		NextCursor any `json:"next_cursor"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Bookings) != 2 {
		t.Fatalf("want 2 bookings, got %d", len(out.Bookings))
	}
	for _, b := range out.Bookings {
		if b.UserID != "userA" {
			t.Fatalf("foreign booking leaked: %+v", b)
		}
	}
	if out.Bookings[0].Amount != 1000 {
		t.Fatalf("newest first expected, got %+v", out.Bookings)
	}
	if out.NextCursor != nil {
		t.Fatalf("single page must have nil cursor, got %v", out.NextCursor)
	}
}
