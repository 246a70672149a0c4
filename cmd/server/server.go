package main

import (
	"fmt"
	"log"
	"net/http"

	"policypath/config"
	"policypath/db"
	"policypath/handlers"
	"policypath/services"
	"policypath/services/identity"
	"policypath/services/mentor"
	"policypath/services/quiz"
	"policypath/services/refindex"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable is required")
	}

	vaultRepo, err := db.NewPostgresVaultRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize vault database: %v", err)
	}
	defer vaultRepo.Close()

	examRepo, err := db.NewPostgresExamResultRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize exam result database: %v", err)
	}
	defer examRepo.Close()

	profileRepo, err := db.NewPostgresProfileRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize profile database: %v", err)
	}
	defer profileRepo.Close()

	historyRepo, err := db.NewPostgresHistoryRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize conversation database: %v", err)
	}
	defer historyRepo.Close()

	signals := services.LogSignalListener{}

	vaultService := services.NewVaultService(vaultRepo, signals)
	progressionService := services.NewProgressionService(profileRepo, signals)

	mentorService, err := mentor.NewService(cfg.AnthropicAPIKey, vaultService)
	if err != nil {
		log.Fatalf("Failed to initialize mentor service: %v", err)
	}

	sessionService := services.NewSessionService(historyRepo, mentorService, vaultService, progressionService, signals)

	var retriever quiz.ContextRetriever
	if cfg.PineconeAPIKey != "" {
		refindexService, err := refindex.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("Failed to initialize reference index service: %v", err)
		}
		retriever = refindexService
	} else {
		log.Printf("[WARN] PINECONE_API_KEY not set, quizzes will be generated without reference context")
	}

	quizService, err := quiz.NewService(cfg.OpenAIAPIKey, retriever, vaultService, examRepo, progressionService, signals, cfg.QuizPassThreshold)
	if err != nil {
		log.Fatalf("Failed to initialize quiz service: %v", err)
	}

	identityService := identity.NewService(cfg.SessionSecret)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	handlers.NewAuthHandler(identityService).RegisterRoutes(router)

	protected := router.NewRoute().Subrouter()
	protected.Use(handlers.SessionMiddleware(identityService))

	handlers.NewChatHandler(sessionService).RegisterRoutes(protected)
	handlers.NewVaultHandler(vaultService).RegisterRoutes(protected)
	handlers.NewQuizHandler(quizService, examRepo).RegisterRoutes(protected)
	handlers.NewProfileHandler(progressionService).RegisterRoutes(protected)

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
