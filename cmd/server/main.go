package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/policy-play/backend/internal/admin"
	"github.com/policy-play/backend/internal/auth"
	"github.com/policy-play/backend/internal/database"
	"github.com/policy-play/backend/internal/escape"
	"github.com/policy-play/backend/internal/fallingball"
	"github.com/policy-play/backend/internal/games"
	"github.com/policy-play/backend/internal/generator"
	"github.com/policy-play/backend/internal/middleware"
	"github.com/policy-play/backend/internal/policies"
	"github.com/rs/cors"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize generator (shared Anthropic client)
	gen := generator.NewGenerator()

	// Initialize stores and services
	policyStore := policies.NewStore(db)
	policyService := policies.NewService(policyStore, gen)

	escapeStore := escape.NewStore(db)
	escapeService := escape.NewService(escapeStore, policyStore, gen)

	tapStore := fallingball.NewStore(db)
	tapService := fallingball.NewService(tapStore, policyStore, gen)

	gameStore := games.NewStore(db)
	gameService := games.NewService(gameStore, policyStore, gen)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	policyHandler := policies.NewHandler(policyService)
	escapeHandler := escape.NewHandler(escapeService)
	tapHandler := fallingball.NewHandler(tapService)
	gameHandler := games.NewHandler(gameService)
	adminHandler := admin.NewHandler(admin.NewStore(db), gen)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Policies
	protected.HandleFunc("/policies", policyHandler.List).Methods("GET")
	protected.HandleFunc("/policies/{id}", policyHandler.Get).Methods("GET")

	// Policy escape room
	protected.HandleFunc("/escape/generate/{policyID}", escapeHandler.Generate).Methods("POST")
	protected.HandleFunc("/escape/rooms/{policyID}/{level}", escapeHandler.GetRooms).Methods("GET")
	protected.HandleFunc("/escape/start", escapeHandler.Start).Methods("POST")
	protected.HandleFunc("/escape/submit/{attemptID}", escapeHandler.Submit).Methods("POST")
	protected.HandleFunc("/escape/finish/{attemptID}", escapeHandler.Finish).Methods("POST")
	protected.HandleFunc("/escape/leaderboard", escapeHandler.Leaderboard).Methods("GET")

	// Policy tap (falling ball)
	protected.HandleFunc("/policy-tap/generate/{policyID}", tapHandler.Generate).Methods("POST")
	protected.HandleFunc("/policy-tap/set/{id}", tapHandler.GetSet).Methods("GET")
	protected.HandleFunc("/policy-tap/start", tapHandler.Start).Methods("POST")
	protected.HandleFunc("/policy-tap/submit", tapHandler.Submit).Methods("POST")
	protected.HandleFunc("/policy-tap/finish", tapHandler.Finish).Methods("POST")
	protected.HandleFunc("/policy-tap/leaderboard", tapHandler.Leaderboard).Methods("GET")

	// Scenario and violation games
	protected.HandleFunc("/game/generate/{policyID}", gameHandler.Generate).Methods("POST")
	protected.HandleFunc("/game/generate-batch/{policyID}", gameHandler.GenerateBatch).Methods("POST")
	protected.HandleFunc("/game/session/{id}", gameHandler.GetSession).Methods("GET")
	protected.HandleFunc("/game/submit", gameHandler.Submit).Methods("POST")
	protected.HandleFunc("/games", gameHandler.ListSessions).Methods("GET")
	protected.HandleFunc("/user/scores", gameHandler.UserScores).Methods("GET")
	protected.HandleFunc("/leaderboard", gameHandler.Leaderboard).Methods("GET")

	// Admin routes
	adminRoutes := protected.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AdminOnly)
	adminRoutes.HandleFunc("/analytics/summary", adminHandler.AnalyticsSummary).Methods("GET")
	adminRoutes.HandleFunc("/policy/analyze", adminHandler.AnalyzePolicy).Methods("POST")

	uploadRoutes := protected.PathPrefix("/policies").Subrouter()
	uploadRoutes.Use(middleware.AdminOnly)
	uploadRoutes.HandleFunc("/upload", policyHandler.Upload).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
