package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"usdc-storefront/internal/client"
	"usdc-storefront/internal/config"
	"usdc-storefront/internal/repository"
	"usdc-storefront/internal/server"
	"usdc-storefront/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitSqliteClient(cfg.DatabaseURL)

	kv, err := client.NewRedisKVStore(&cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis:", err)
	}

	chain, err := client.NewChainClient(cfg.Chain.RPCURL)
	if err != nil {
		log.Fatal("failed to connect to chain rpc:", err)
	}

	shopifyClient := client.NewShopifyClient(&cfg.Shopify)

	reservationTTL := time.Duration(cfg.Checkout.ReservationTTLSeconds) * time.Second
	reservationRepo := repository.NewReservationRepository(kv, reservationTTL)
	txRecordRepo := repository.NewTxRecordRepository(kv, reservationTTL)
	orderAuditRepo := repository.NewOrderAuditRepository(db)

	verifierService := service.NewVerifierService(chain, &cfg.Chain)
	checkoutService := service.NewCheckoutService(
		reservationRepo,
		txRecordRepo,
		orderAuditRepo,
		verifierService,
		shopifyClient,
	)
	catalogService := service.NewCatalogService(shopifyClient, cfg.Shopify.CollectionHandle)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(checkoutService, catalogService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
