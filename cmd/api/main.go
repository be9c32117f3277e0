package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"notebox-backend/internal/analytics"
	"notebox-backend/internal/auth"
	"notebox-backend/internal/bot"
	"notebox-backend/internal/config"
	"notebox-backend/internal/db"
	"notebox-backend/internal/items"
	"notebox-backend/internal/line"
	"notebox-backend/internal/vault"
)

// ----------------------
//        MAIN
// ----------------------

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("❌ Failed to connect DB:", err)
	}
	defer database.Close()

	log.Println("✅ Connected to PostgreSQL!")

	store := items.NewStore(database)
	exporter := vault.New(cfg.VaultDir)

	sessions := bot.NewSessions(cfg.SessionTTL, time.Now)
	executor := bot.NewExecutor(store, sessions, exporter, bot.Config{
		ListLimit: cfg.ListLimit,
		Origin:    "LINE",
		Events: func(ctx context.Context, userID, event string, props map[string]any) {
			_ = analytics.Log(ctx, database, analytics.Envelope{UserID: userID, Channel: "line"}, event, props)
		},
	}, time.Now)

	// opportunistic sweep; Get enforces the TTL regardless
	go func() {
		for range time.Tick(cfg.SessionTTL) {
			sessions.Sweep()
		}
	}()

	lineClient := line.NewClient(cfg.LineChannelToken)
	gate := auth.New([]byte(cfg.APIJWTSecret))

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- LINE WEBHOOK -----
	mux.HandleFunc("/webhook/line", line.WebhookHandler(database, cfg.LineChannelSecret, executor, lineClient))

	// ----- AUTH -----
	mux.HandleFunc("/auth/login", auth.LoginHandler([]byte(cfg.APIJWTSecret), cfg.APIPasswordHash))

	// ----- ITEMS API -----
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gate.Wrap(items.ListHandler(store))(w, r)
		case http.MethodPost:
			gate.Wrap(items.CreateHandler(database, store))(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/items/item", gate.Wrap(items.GetHandler(store)))
	mux.HandleFunc("/items/update", gate.Wrap(items.UpdateHandler(store)))
	mux.HandleFunc("/items/status", gate.Wrap(items.SetStatusHandler(store)))
	mux.HandleFunc("/items/type", gate.Wrap(items.ChangeTypeHandler(store)))
	mux.HandleFunc("/items/delete", gate.Wrap(items.DeleteHandler(store)))
	mux.HandleFunc("/stats", gate.Wrap(items.StatsHandler(store)))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Line-Signature"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	log.Println("🚀 API server is running on :8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}
