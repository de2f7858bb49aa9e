// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"freshfold/internal/config"
	httptransport "freshfold/internal/http"
	"freshfold/internal/http/middleware"
	"freshfold/internal/infra"
	"freshfold/internal/modules/order"
	"freshfold/internal/modules/payment"
	"freshfold/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("FRESHFOLD_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	stripeClient := infra.NewStripe(cfg.Stripe.APIKey)

	userStore := user.NewStore(dbPool)
	userSvc := user.NewService(userStore)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, userSvc)

	paymentStore := payment.NewStore(dbPool)
	gateway := payment.NewStripeGateway(stripeClient)
	paymentSvc := payment.NewService(paymentStore, userSvc, orderStore, gateway, cfg.Stripe.WebhookSecret)

	limiter := middleware.RateLimit(
		middleware.NewRedisCounter(redisClient),
		cfg.RateLimit.Requests,
		cfg.RateLimit.Window,
	)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Users:          userSvc,
		Orders:         orderSvc,
		Payments:       paymentSvc,
		Verifier:       verifier,
		RateLimit:      limiter,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("freshfold-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
