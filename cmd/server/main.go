package main // Entry point package

import (
	"log"  // Logging library
	"time" // OTP lifetime from config minutes

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/ecommerce-api/internal/auth"
	"github.com/iliyamo/ecommerce-api/internal/config"
	"github.com/iliyamo/ecommerce-api/internal/database"
	"github.com/iliyamo/ecommerce-api/internal/handler"
	"github.com/iliyamo/ecommerce-api/internal/queue"
	"github.com/iliyamo/ecommerce-api/internal/repository"
	"github.com/iliyamo/ecommerce-api/internal/router"
	"github.com/iliyamo/ecommerce-api/internal/service"
)

func main() {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config; exits on missing keys

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.RunMigrations(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// Redis backs token revocation and one-time codes.  Both are
	// security-critical, so a failed connection is fatal rather than a
	// degraded start.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	wishlist := repository.NewWishlistRepo(db)
	revoked := repository.NewRevokedTokenRepo(rdb)
	otps := repository.NewOtpRepo(rdb)

	tokens := auth.NewTokenService(cfg, users, revoked)
	otpManager := &auth.OtpManager{
		Store:      otps,
		Notifier:   queue_publisher.Notifier{},
		TTL:        time.Duration(cfg.OtpTTLMin) * time.Minute,
		BcryptCost: cfg.BcryptCost,
	}

	// The audit consumer tails the otp.issued queue and keeps its own
	// reconnect loop; losing RabbitMQ never takes the API down.
	go func() {
		if err := queue.StartOtpAuditConsumer(); err != nil {
			log.Printf("otp audit consumer stopped: %v", err)
		}
	}()

	userHandler := handler.NewUserHandler(users)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, otpManager), userHandler, tokens)
	router.RegisterCatalog(e, handler.NewCategoryHandler(categories), handler.NewProductHandler(products, wishlist), tokens)
	router.RegisterUserAdmin(e, userHandler, tokens)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
