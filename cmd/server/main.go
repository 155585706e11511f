package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/sunolegal/backend/internal/auth"
	"github.com/sunolegal/backend/internal/blob"
	"github.com/sunolegal/backend/internal/cases"
	"github.com/sunolegal/backend/internal/chat"
	"github.com/sunolegal/backend/internal/documents"
	"github.com/sunolegal/backend/internal/lawyers"
	"github.com/sunolegal/backend/internal/laws"
	"github.com/sunolegal/backend/internal/mailer"
	"github.com/sunolegal/backend/internal/payments"
	"github.com/sunolegal/backend/internal/store"
	"github.com/sunolegal/backend/internal/users"
	"github.com/sunolegal/backend/internal/waitlist"
)

func main() {
	_ = godotenv.Load()

	db := store.New()
	mail := mailer.New()
	verifier := auth.NewVerifier() // AUTH_MODE=mock for local development

	var blobs blob.Storage
	if os.Getenv("STORAGE_MODE") == "supabase" {
		blobs = blob.NewSupabase() // SUPABASE_URL / SUPABASE_SERVICE_KEY / SUPABASE_BUCKET
	} else {
		blobs = blob.NewMemory()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024, // verification uploads cap at 10MB per file
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getenv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"checks": fiber.Map{"store": "ok"},
		})
	})

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"checks": fiber.Map{"store": "ok"},
		})
	})

	requireAuth := auth.RequireAuth(verifier)

	// Users
	userH := users.NewHandler(db)
	api.Post("/users/profile", requireAuth, userH.Save)
	api.Get("/users/profile", requireAuth, userH.Get)

	// Chat assistant
	chatH := chat.NewHandler(db, chat.NewAssistant())
	chatLimit := limiter.New(limiter.Config{Max: 30, Expiration: time.Minute})
	api.Post("/chat/ask", requireAuth, chatLimit, chatH.Ask)
	api.Get("/chat/history/:sessionID", requireAuth, chatH.History)
	api.Get("/chat/sessions", requireAuth, chatH.Sessions)

	// Documents
	docH := documents.NewHandler(db, blobs, documents.NewRenderer())
	api.Post("/documents/generate", requireAuth, docH.Generate)
	api.Get("/documents", requireAuth, docH.List)
	api.Get("/documents/:id/url", requireAuth, docH.SignedURL)
	api.Get("/files/signed/:token", docH.Redeem) // token is the credential

	// Lawyer marketplace & verification
	lawyerH := lawyers.NewHandler(db, blobs)
	api.Get("/lawyers/list", lawyerH.List)
	api.Get("/lawyers/:id", lawyerH.Get)
	api.Post("/lawyers/apply", requireAuth, lawyerH.Apply)
	api.Get("/lawyers/application/mine", requireAuth, lawyerH.Mine)
	api.Post("/lawyers/application/:id/documents", requireAuth, lawyerH.UploadDocs)
	api.Get("/admin/applications", requireAuth, auth.RequireAdmin(), lawyerH.AdminList)
	api.Get("/admin/applications/:id/documents", requireAuth, auth.RequireAdmin(), lawyerH.AdminDocs)
	api.Post("/admin/applications/:id/approve", requireAuth, auth.RequireAdmin(), lawyerH.Approve)
	api.Post("/admin/applications/:id/reject", requireAuth, auth.RequireAdmin(), lawyerH.Reject)

	// Bookings & payments
	payH := payments.NewHandler(db, payments.NewGateway(), mail)
	api.Post("/bookings/create", requireAuth, payH.Create)
	api.Post("/bookings/verify-payment", requireAuth, payH.Verify)
	api.Get("/bookings/my", requireAuth, payH.List)
	api.Post("/payments/webhook", payH.Webhook) // gateway-signed, no auth

	// Case tracker
	caseH := cases.NewHandler(db)
	api.Post("/cases/create", requireAuth, caseH.Create)
	api.Get("/cases/my", requireAuth, caseH.List)
	api.Get("/cases/:id", requireAuth, caseH.Get)
	api.Post("/cases/:id/notes", requireAuth, caseH.AddNote)

	// Laws & schemes directory
	lawH := laws.NewHandler(db)
	api.Get("/laws/list", lawH.List)
	api.Get("/laws/:id", lawH.Get)

	// Waitlist (public, rate limited)
	waitH := waitlist.NewHandler(db, mail)
	waitLimit := limiter.New(limiter.Config{Max: 10, Expiration: time.Minute})
	api.Post("/waitlist", waitLimit, waitH.Join)
	api.Get("/waitlist/count", waitH.Count)
	api.Post("/lawyer-interest", waitLimit, waitH.LawyerInterest)
	api.Get("/lawyer-interest/count", waitH.LawyerInterestCount)

	// Only in dev mode
	if os.Getenv("APP_ENV") == "dev" {
		api.Post("/seed-data", lawH.Seed)
	}

	port := getenv("PORT", "8001")
	log.Println("Server running on :" + port)
	log.Fatal(app.Listen(":" + port))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
