package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"vinylapi/internal/auth"
	apphttp "vinylapi/internal/http"
	"vinylapi/internal/library"
	"vinylapi/internal/media"
	"vinylapi/internal/store"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	jwtSecret := mustGetEnv("JWT_SECRET")
	adminEmail := mustGetEnv("ADMIN_EMAIL")
	adminPasswordHash := mustGetEnv("ADMIN_PASSWORD_HASH")
	allowedEmails := splitList(getEnv("ADMIN_ALLOWED_EMAILS", adminEmail))
	corsOrigins := splitList(getEnv("CORS_ALLOWED_ORIGINS", ""))

	httpClient := &http.Client{Timeout: 30 * time.Second}

	repo := buildRepository(httpClient)
	cache := store.NewCache(getEnv("CATALOG_CACHE_PATH", "data/records.json"))
	lib := library.New(repo, cache)
	warmUp(lib)

	uploader := media.NewUploader(
		httpClient,
		getEnv("MEDIA_BASE_URL", ""),
		mustGetEnv("CLOUDINARY_CLOUD_NAME"),
		mustGetEnv("CLOUDINARY_UPLOAD_PRESET"),
	)

	gate := auth.NewGate(jwtSecret, 12*time.Hour,
		[]auth.Credential{{Email: adminEmail, PasswordHash: adminPasswordHash}},
		allowedEmails,
	)

	router := newRouter(lib, repo, uploader, gate)

	rateLimit := apphttp.NewRateLimitMiddleware(10, 20)
	var handler http.Handler = router
	handler = rateLimit.Middleware(handler)
	handler = apphttp.RequestSizeLimitMiddleware(10 << 20)(handler)
	handler = apphttp.SecurityHeadersMiddleware(handler)
	if len(corsOrigins) > 0 {
		handler = apphttp.CORSMiddleware(corsOrigins)(handler)
	}
	handler = apphttp.RecoveryMiddleware(handler)
	handler = apphttp.AccessLogMiddleware(handler)
	handler = apphttp.RequestIDMiddleware(handler)

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// newRouter registers every route. Each admin route dispatches on method,
// so a wrong verb answers 405 before any body parsing.
func newRouter(lib *library.Library, repo store.Repository, uploader apphttp.Uploader, gate *auth.Gate) http.Handler {
	catalogHandler := apphttp.NewCatalogHandler(lib)
	adminHandler := apphttp.NewAdminHandler(repo, lib, uploader)
	authHandler := apphttp.NewAuthHandler(gate)

	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if lib.Count() == 0 && lib.FetchedAt().IsZero() {
			http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("/catalog", catalogHandler.List)
	router.HandleFunc("/catalog/search", catalogHandler.Search)
	router.HandleFunc("/catalog/filters", catalogHandler.Filters)

	router.Handle("/admin/login", apphttp.MethodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))

	requireAdmin := apphttp.AuthMiddleware(gate)
	router.Handle("/admin/access", requireAdmin(apphttp.MethodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(authHandler.Access),
	})))
	router.Handle("/admin/refresh", requireAdmin(apphttp.MethodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(adminHandler.Refresh),
	})))
	router.Handle("/admin/images", requireAdmin(apphttp.MethodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(adminHandler.UploadImage),
	})))
	router.Handle("/admin/records", requireAdmin(apphttp.MethodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(adminHandler.List),
		http.MethodPost:   http.HandlerFunc(adminHandler.Create),
		http.MethodPatch:  http.HandlerFunc(adminHandler.Update),
		http.MethodDelete: http.HandlerFunc(adminHandler.Delete),
	})))

	return router
}

// buildRepository picks the record-store backend. The hosted store is the
// real one; STORE_DRIVER=memory runs the API self-contained for local dev.
func buildRepository(httpClient *http.Client) store.Repository {
	if getEnv("STORE_DRIVER", "airtable") == "memory" {
		log.Println("using in-memory record store")
		return store.NewMemory()
	}
	return store.NewClient(
		httpClient,
		getEnv("STORE_BASE_URL", ""),
		mustGetEnv("STORE_BASE_ID"),
		getEnv("STORE_TABLE", "Vinyls"),
		mustGetEnv("STORE_API_KEY"),
	)
}

// warmUp loads the catalog before serving. A dead store at boot is not
// fatal: the cached snapshot, if any, serves until a refresh succeeds.
func warmUp(lib *library.Library) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := lib.Refresh(ctx); err != nil {
		log.Printf("initial catalog fetch failed: %v", err)
		if cacheErr := lib.LoadCached(); cacheErr != nil {
			log.Printf("no cached catalog available: %v", cacheErr)
			return
		}
		log.Printf("serving cached catalog from %s", lib.FetchedAt().Format(time.RFC3339))
		return
	}
	log.Printf("catalog loaded: %d records", lib.Count())
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
