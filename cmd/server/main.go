package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/minhngo/storefront/internal/auth"
	"github.com/minhngo/storefront/internal/cart"
	"github.com/minhngo/storefront/internal/catalog"
	"github.com/minhngo/storefront/internal/middleware"
	"github.com/minhngo/storefront/internal/server"
	"github.com/minhngo/storefront/internal/storage"
	"github.com/minhngo/storefront/internal/storage/sqlstore"
	"github.com/minhngo/storefront/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	port := getEnv("PORT", "3001")
	driver := getEnv("DB_DRIVER", sqlstore.DriverSQLite)
	dsn := getEnv("DB_PATH", "./data/storefront.db")
	if driver == sqlstore.DriverPostgres {
		dsn = getEnv("DATABASE_URL", "")
		if dsn == "" {
			slog.Error("DATABASE_URL is required with DB_DRIVER=postgres")
			os.Exit(1)
		}
	}
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlstore.New(driver, dsn)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", driver)

	logger := slog.Default()

	users := storage.NewUserStore(store)
	authenticator := auth.NewPasswordAuthenticator(users)
	jwtManager := auth.NewJWTManager(jwtSecret, auth.TokenDuration)

	cartRepo := cart.NewRepository(store)
	merger := cart.NewMerger(cartRepo)
	brands := catalog.NewBrandStore(store)

	mux := server.NewRouter(
		jwtManager,
		server.NewAuthHandler(authenticator, jwtManager, users, logger),
		server.NewCartHandler(cartRepo, merger, logger),
		server.NewBrandHandler(brands, logger),
		server.NewHealthHandler(store, logger),
	)

	handler := middleware.Logging(middleware.Metrics(middleware.CORS(mux)))

	// HTTP/2 without TLS for clients behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
