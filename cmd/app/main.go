package main

import (
	"database/sql"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/marcusyeo/supermarket-backend/internal/cart"
	"github.com/marcusyeo/supermarket-backend/internal/checkout"
	"github.com/marcusyeo/supermarket-backend/internal/config"
	"github.com/marcusyeo/supermarket-backend/internal/mailer"
	"github.com/marcusyeo/supermarket-backend/internal/order"
	"github.com/marcusyeo/supermarket-backend/internal/payment"
	"github.com/marcusyeo/supermarket-backend/internal/product"
	"github.com/marcusyeo/supermarket-backend/internal/receipt"
	"github.com/marcusyeo/supermarket-backend/internal/refund"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

func main() {
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	bootstrapSchema(db)

	for _, dir := range []string{cfg.ReceiptsDir, cfg.UploadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logrus.WithError(err).WithField("dir", dir).Fatal("could not create data directory")
		}
	}

	app := fiber.New()
	setupCORS(app)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(productService, cfg.UploadsDir)

	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo, productService)
	cartHandler := cart.NewHandler(cartService)

	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo)
	orderHandler := order.NewHandler(orderService, productService)

	paymentRepo := payment.NewPostgresRepository(db)

	stripeProvider := payment.NewStripeProvider(cfg.StripeSecretKey,
		cfg.BaseURL+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		cfg.BaseURL+"/checkout?canceled=true")

	paypalProvider, err := payment.NewPayPalProvider(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalAPIBase)
	if err != nil {
		logrus.WithError(err).Fatal("paypal client setup failed")
	}

	hitpayProvider := payment.NewHitPayProvider(cfg.HitPayAPIKey, cfg.HitPayAPIBase, cfg.HitPayWebhookSalt,
		cfg.BaseURL+"/hitpay/return", cfg.BaseURL+"/webhooks/hitpay")

	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.GmailUser, cfg.GmailAppPassword)
	receipts := receipt.NewGenerator(cfg.ReceiptsDir)

	checkoutService := checkout.NewService(cartService, productService, orderRepo, paymentRepo,
		userService, receipts, cfg.Currency)
	checkoutHandler := checkout.NewHandler(checkoutService, checkout.NewGuard(),
		stripeProvider, paypalProvider, hitpayProvider,
		orderService, mail, receipts, userService, cfg.PayPalClientID, cfg.UploadsDir)

	refundRepo := refund.NewPostgresRepository(db)
	refundService := refund.NewService(refundRepo, orderRepo, paymentRepo, productService, userService,
		map[string]payment.Provider{
			payment.ProviderStripe: stripeProvider,
			payment.ProviderPayPal: paypalProvider,
			payment.ProviderHitPay: hitpayProvider,
		}, mail)
	refundHandler := refund.NewHandler(refundService, orderService)

	webhookHandler := payment.NewHandler(paymentRepo, hitpayProvider)

	// public surface: auth, provider webhooks, static receipts and uploads
	userHandler.RegisterPublicRoutes(app)
	webhookHandler.RegisterPublicRoutes(app)
	app.Static("/receipts", cfg.ReceiptsDir)
	app.Static("/uploads", cfg.UploadsDir)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		Filter: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/api/v1/sign-") ||
				strings.HasPrefix(p, "/webhooks/") ||
				strings.HasPrefix(p, "/receipts/") ||
				strings.HasPrefix(p, "/uploads/")
		},
	}))

	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	refundHandler.RegisterProtectedRoutes(app)

	userHandler.RegisterAdminRoutes(app)
	productHandler.RegisterAdminRoutes(app)
	orderHandler.RegisterAdminRoutes(app)
	refundHandler.RegisterAdminRoutes(app)

	logrus.WithField("addr", cfg.Addr).Info("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		logrus.WithError(err).Fatal("database open failed")
	}
	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("database ping failed")
	}
	return db
}

// bootstrapSchema creates the tables on first run so a fresh database works
// without a separate migration step.
func bootstrapSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
            id SERIAL PRIMARY KEY,
            "productName" TEXT NOT NULL,
            quantity INT NOT NULL DEFAULT 0,
            price NUMERIC(10,2) NOT NULL DEFAULT 0,
            image TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            address TEXT,
            contact TEXT,
            role TEXT NOT NULL DEFAULT 'user',
            "createdAt" TIMESTAMP DEFAULT NOW(),
            "updatedAt" TIMESTAMP DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS carts (
            "userId" INT PRIMARY KEY,
            items JSONB NOT NULL DEFAULT '[]'
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            "userId" INT NOT NULL,
            items JSONB NOT NULL DEFAULT '[]',
            total NUMERIC(10,2) NOT NULL DEFAULT 0,
            "paymentMethod" TEXT,
            "orderDate" TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            "bankScreenshot" TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS payment (
            order_id INT PRIMARY KEY,
            provider TEXT NOT NULL,
            provider_order_id TEXT,
            provider_payment_id TEXT,
            charge_resolved BOOLEAN NOT NULL DEFAULT FALSE,
            amount NUMERIC(10,2) NOT NULL DEFAULT 0,
            currency TEXT,
            payment_status TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS refund_requests (
            id SERIAL PRIMARY KEY,
            "orderId" INT NOT NULL,
            "userId" INT NOT NULL,
            reason TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            "adminNote" TEXT,
            "createdAt" TIMESTAMP DEFAULT NOW(),
            "decidedAt" TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS refunds (
            id SERIAL PRIMARY KEY,
            "orderId" INT NOT NULL,
            "requestId" INT NOT NULL,
            provider TEXT,
            "providerRefundId" TEXT,
            amount NUMERIC(10,2) NOT NULL DEFAULT 0,
            status TEXT,
            "createdAt" TIMESTAMP DEFAULT NOW()
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			logrus.WithError(err).Fatal("schema bootstrap failed")
		}
	}
}
