package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	bootstrap "github.com/phillip/frolic-api/bootstrap"
	config "github.com/phillip/frolic-api/config"
	controllers "github.com/phillip/frolic-api/controllers"
	middleware "github.com/phillip/frolic-api/middleware"
	payments "github.com/phillip/frolic-api/payments"
	routes "github.com/phillip/frolic-api/routes"
	services "github.com/phillip/frolic-api/services"
	store "github.com/phillip/frolic-api/store"
	utils "github.com/phillip/frolic-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utils.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	log := lg.Sugar()
	log.Infow("starting frolic api", "env", cfg.Env, "port", cfg.Port)

	if err := cfg.OpenMongo(); err != nil {
		log.Fatalf("mongo: %v", err)
	}
	db := cfg.Database()
	stores := store.New(db)

	var images utils.ImageStore = utils.DisabledImages{}
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Warnw("cloudinary disabled", "err", err)
		} else {
			images = cld
		}
	} else {
		log.Warn("cloudinary not configured; image uploads are disabled")
	}

	var gateway services.PaymentGateway = payments.NewSimulatedGateway()
	if cfg.PaymentProvider == "midtrans" {
		gateway = payments.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	}
	log.Infow("payment provider", "provider", cfg.PaymentProvider)

	var notifier services.Notifier
	if mailer := utils.NewZeptoMailer(cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom); mailer.Configured() {
		notifier = mailer
	} else {
		log.Warn("email not configured; payment receipts are not sent")
	}

	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	auth := services.NewAuthService(stores.Users, tokens, services.BcryptHasher{Cost: bcrypt.DefaultCost}, log)
	phase := bootstrap.NewPhase()

	deps := &controllers.Deps{
		Log:           log,
		Phase:         phase,
		Auth:          auth,
		Events:        services.NewEventService(stores.Events, stores.Registrations, log),
		Registrations: services.NewRegistrationService(stores.Events, stores.Registrations, stores.Users, log),
		Payments:      services.NewPaymentService(stores.Registrations, stores.Events, stores.Users, gateway, notifier, log),
		Catalogue:     services.NewCatalogueService(stores.Institutes, stores.Departments, stores.Galleries, images, log),
		Admin:         services.NewAdminService(auth, stores.Users, stores.Events, stores.Registrations, stores.Institutes, stores.Departments, log),
		Images:        images,
		DBPing:        cfg.PingMongo,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"ETag"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	r.MaxMultipartMemory = 32 << 20

	routes.SetupRoutes(r, deps)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()
	log.Infow("listening", "addr", srv.Addr)

	// requests get 503 until this finishes
	go func() {
		_ = bootstrap.Initialize(ctx, phase, log,
			bootstrap.Step{Name: "ping mongo", Run: cfg.PingMongo},
			bootstrap.Step{Name: "ensure indexes", Run: func(ctx context.Context) error {
				return store.EnsureIndexes(ctx, db)
			}},
			bootstrap.SeedAdmin(auth, bootstrap.AdminAccount{
				Email:    cfg.AdminEmail,
				Password: cfg.AdminPass,
				Phone:    cfg.AdminPhone,
			}, log),
		)
	}()

	<-ctx.Done()
	log.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		log.Warnf("http server shutdown failed: %v", err)
	}
	if err := cfg.MongoClient.Disconnect(doneCtx); err != nil {
		log.Warnf("mongo disconnect failed: %v", err)
	}
	log.Info("goodbye")
}
