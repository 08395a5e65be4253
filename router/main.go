package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/config"
	"github.com/sahilchouksey/course-market-api/database"
	"github.com/sahilchouksey/course-market-api/handlers"
	auth_handlers "github.com/sahilchouksey/course-market-api/handlers/auth"
	course_handlers "github.com/sahilchouksey/course-market-api/handlers/course"
	payment_handlers "github.com/sahilchouksey/course-market-api/handlers/payment"
	upload_handlers "github.com/sahilchouksey/course-market-api/handlers/upload"
	"github.com/sahilchouksey/course-market-api/services"
	"github.com/sahilchouksey/course-market-api/services/storage"
	"github.com/sahilchouksey/course-market-api/utils/auth"
	"github.com/sahilchouksey/course-market-api/utils/cache"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "course-market-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := store.GetDB()

	// Redis cache backs brute force protection on login
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	blacklistService := auth.NewBlacklistService(db)

	// Payment reconciliation wiring
	repos := database.NewRepositories(db)
	transactor := database.NewGormTransactor(db)
	enrollmentService := services.NewEnrollmentService()
	paymentService := services.NewPaymentService(repos, transactor, enrollmentService, services.PaymentConfig{
		KeyID:                   getEnv.RAZORPAY_KEY_ID,
		KeySecret:               getEnv.RAZORPAY_KEY_SECRET,
		WebhookSecret:           getEnv.RAZORPAY_WEBHOOK_SECRET,
		RequireWebhookSignature: getEnv.RAZORPAY_WEBHOOK_REQUIRE_SIGNATURE,
	})

	// Object storage for course material; optional in development
	var spacesClient *storage.SpacesClient
	if getEnv.DO_SPACES_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.DO_SPACES_KEY,
			SecretKey: getEnv.DO_SPACES_SECRET,
			Bucket:    getEnv.DO_SPACES_BUCKET,
			Region:    getEnv.DO_SPACES_REGION,
			Endpoint:  getEnv.DO_SPACES_ENDPOINT,
			CDNURL:    os.Getenv("DO_SPACES_CDN_URL"),
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize Spaces client: %v. Uploads will be disabled.", err)
		}
	}

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, blacklistService, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db)
	paymentHandler := payment_handlers.NewPaymentHandler(paymentService)
	uploadHandler := upload_handlers.NewUploadHandler(db, spacesClient)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Courses routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)                                              // Public: browse catalog
	courses.Get("/mine", authMiddleware.RequireInstructor(), courseHandler.MyCourses)        // Instructor: own courses
	courses.Get("/slug/:slug", courseHandler.GetCourseBySlug)                                // Public: course by slug
	courses.Get("/:id", courseHandler.GetCourse)                                             // Public: course detail
	courses.Get("/:id/access", authMiddleware.Optional(), courseHandler.GetAccess)           // Anyone: lesson gating info
	courses.Get("/:id/classwork", authMiddleware.Optional(), courseHandler.ListClasswork)    // Anyone: classwork list
	courses.Post("/", authMiddleware.RequireInstructor(), courseHandler.CreateCourse)        // Instructor: create course
	courses.Put("/:id", authMiddleware.RequireInstructor(), courseHandler.UpdateCourse)      // Owner: update course
	courses.Delete("/:id", authMiddleware.RequireInstructor(), courseHandler.DeleteCourse)   // Owner: delete course

	// Lessons (owner-managed, nested under courses)
	courses.Post("/:id/lessons", authMiddleware.RequireInstructor(), courseHandler.CreateLesson)
	courses.Put("/:id/lessons/:lessonId", authMiddleware.RequireInstructor(), courseHandler.UpdateLesson)
	courses.Delete("/:id/lessons/:lessonId", authMiddleware.RequireInstructor(), courseHandler.DeleteLesson)
	courses.Post("/:id/lessons/:lessonId/clips", authMiddleware.RequireInstructor(), courseHandler.CreateLessonClip)

	// Classwork (owner-managed)
	courses.Post("/:id/classwork", authMiddleware.RequireInstructor(), courseHandler.CreateClasswork)
	courses.Put("/:id/classwork/:classworkId", authMiddleware.RequireInstructor(), courseHandler.UpdateClasswork)
	courses.Delete("/:id/classwork/:classworkId", authMiddleware.RequireInstructor(), courseHandler.DeleteClasswork)

	// Lesson clips (gated by free preview or enrollment)
	api.Get("/lessons/:lessonId/clips", authMiddleware.Optional(), courseHandler.GetLessonClips)

	// Uploads (instructor-only)
	courses.Post("/:id/uploads/sign", authMiddleware.RequireInstructor(), uploadHandler.SignUpload)
	courses.Post("/:id/uploads/pdf", authMiddleware.RequireInstructor(), uploadHandler.UploadPDF)

	// Payments group; path kept compatible with existing checkout clients
	payments := app.Group("/api/payments")
	payments.Post("/create-order", authMiddleware.Optional(), paymentHandler.CreateOrder)
	payments.Post("/verify", authMiddleware.Optional(), paymentHandler.Verify)
	payments.Post("/webhook", paymentHandler.Webhook)
	payments.Post("/manual-record", authMiddleware.RequireAdmin(), paymentHandler.ManualRecord)
	payments.Get("/", authMiddleware.RequireAdmin(), paymentHandler.ListPayments)
}
