package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pos-system/internal/config"
	"pos-system/internal/database"
	"pos-system/internal/logger"
	"pos-system/internal/messaging"
	"pos-system/internal/models"
	"pos-system/internal/services/backoffice"
	"pos-system/internal/services/notification"
	"pos-system/internal/services/pos"
	"pos-system/internal/services/printer"
	"pos-system/internal/session"
)

func main() {
	// Parse command line flags
	var (
		mode              = flag.String("mode", "", "Service mode (pos-service, receipt-printer, backoffice-service, notification-subscriber)")
		port              = flag.Int("port", 3000, "HTTP port")
		printerName       = flag.String("printer-name", "", "Printer name (required for receipt-printer mode)")
		heartbeatInterval = flag.Int("heartbeat-interval", 30, "Heartbeat interval in seconds")
		prefetch          = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	// Validate required mode flag
	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Load .env if present; real environment still wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": *port,
	})

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	// Route to appropriate service
	switch *mode {
	case "pos-service":
		if err := runPosService(ctx, cfg, log, *port); err != nil {
			log.Error("service_failed", "POS service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "receipt-printer":
		if *printerName == "" {
			log.Error("validation_failed", "printer-name is required for receipt-printer mode", requestID, nil, nil)
			os.Exit(1)
		}
		if err := runReceiptPrinter(ctx, cfg, log, *printerName, *heartbeatInterval, *prefetch); err != nil {
			log.Error("service_failed", "Receipt printer failed", requestID, err, nil)
			os.Exit(1)
		}
	case "backoffice-service":
		if err := runBackofficeService(ctx, cfg, log, *port, *heartbeatInterval); err != nil {
			log.Error("service_failed", "Backoffice service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "notification-subscriber":
		if err := runNotificationSubscriber(ctx, cfg, log, *prefetch); err != nil {
			log.Error("service_failed", "Notification subscriber failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runPosService runs the order-entry HTTP service
func runPosService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	repo := pos.NewRepository(db, log, cfg.Loyalty)

	menuItems, err := repo.LoadMenu(ctx)
	if err != nil {
		return fmt.Errorf("failed to load menu: %w", err)
	}
	catalog := models.NewCatalog(menuItems)
	log.Info("menu_loaded", fmt.Sprintf("Loaded %d menu items", catalog.Size()), requestID, nil)

	sessions := session.NewStore(catalog, cfg.Pricing.TaxRate, cfg.Pricing.ServiceChargeRate)
	service := pos.NewService(repo, publisher, catalog, sessions, cfg, log)
	handler := pos.NewHandler(service, log)

	return serveHTTP(ctx, log, requestID, port, "POS Service", handler.SetupRoutes())
}

// runReceiptPrinter runs the receipt printer worker
func runReceiptPrinter(ctx context.Context, cfg *config.Config, log *logger.Logger, printerName string, heartbeatInterval, prefetch int) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.ReceiptPrintQueue, printerName, prefetch)
	publisher := messaging.NewPublisher(conn, log)

	worker := printer.NewWorker(
		printerName,
		time.Duration(heartbeatInterval)*time.Second,
		cfg.Restaurant.Name,
		cfg.Restaurant.Currency,
		db, consumer, publisher, log,
	)

	return worker.Start(ctx)
}

// runBackofficeService runs the order management HTTP service
func runBackofficeService(ctx context.Context, cfg *config.Config, log *logger.Logger, port, heartbeatInterval int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	publisher := messaging.NewPublisher(conn, log)

	service := backoffice.NewService(db, publisher, cfg, log, time.Duration(heartbeatInterval)*time.Second)
	handler := backoffice.NewHandler(service, log)

	return serveHTTP(ctx, log, requestID, port, "Backoffice Service", handler.SetupRoutes())
}

// runNotificationSubscriber runs the till notification subscriber
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	subscriber := notification.NewSubscriber(consumer, log)

	return subscriber.Start(ctx)
}

// serveHTTP starts an HTTP server and shuts it down when the context ends
func serveHTTP(ctx context.Context, log *logger.Logger, requestID string, port int, name string, mux *http.ServeMux) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Info("service_started", fmt.Sprintf("%s started on port %d", name, port), requestID, map[string]interface{}{
			"port": port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}
