package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/quizzable/backend/internal/auth"
	"github.com/quizzable/backend/internal/database"
	"github.com/quizzable/backend/internal/generator"
	"github.com/quizzable/backend/internal/middleware"
	"github.com/quizzable/backend/internal/quizzes"
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

	// Quiz generation pipeline
	gen := generator.New(generator.NewProseTagger(), generator.NewSynonymLookup())

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	quizStore := quizzes.NewStore(db)
	quizService := quizzes.NewService(quizStore, gen)
	quizHandler := quizzes.NewHandler(quizService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/quizzes", quizHandler.CreateQuiz).Methods("POST")
	protected.HandleFunc("/quizzes", quizHandler.ListQuizzes).Methods("GET")
	protected.HandleFunc("/quizzes/{id}", quizHandler.GetQuiz).Methods("GET")
	protected.HandleFunc("/quizzes/{id}/questions/{n}", quizHandler.GetQuestion).Methods("GET")
	protected.HandleFunc("/quizzes/{id}/questions/{n}/answer", quizHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/quizzes/{id}/results", quizHandler.GetResults).Methods("GET")
	protected.HandleFunc("/quizzes/{id}/report.pdf", quizHandler.DownloadReport).Methods("GET")

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
