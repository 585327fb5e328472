package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lesson-notes-server/internal/ai"
	"lesson-notes-server/internal/cache"
	"lesson-notes-server/internal/config"
	"lesson-notes-server/internal/document"
	"lesson-notes-server/internal/export"
	"lesson-notes-server/internal/handler"
	"lesson-notes-server/internal/middleware"
	"lesson-notes-server/internal/repository"
	"lesson-notes-server/internal/service"
	"lesson-notes-server/internal/websocket"
	"lesson-notes-server/pkg/logger"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatal("failed to connect to CouchDB", "error", err)
	}

	ctx := context.Background()

	exists, err := client.DBExists(ctx, cfg.Database.Name)
	if err != nil {
		log.Fatal("failed to check database existence", "error", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, cfg.Database.Name); err != nil {
			log.Fatal("failed to create database", "error", err)
		}
		log.Info("created database", "name", cfg.Database.Name)
	}

	if err := repository.EnsureIndexes(ctx, client, cfg.Database.Name); err != nil {
		log.Fatal("failed to create indexes", "error", err)
	}

	noteRepo := repository.NewNoteRepository(client, cfg.Database.Name)
	folderRepo := repository.NewFolderRepository(client, cfg.Database.Name)
	studyRepo := repository.NewStudyRepository(client, cfg.Database.Name)

	var listCache cache.NoteListCache = cache.NoopNoteListCache{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(cfg.Redis, log)
		if err != nil {
			log.Warn("redis unavailable, notes list cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer redisCache.Close()
			listCache = redisCache
		}
	}

	wsManager := websocket.NewManager(websocket.Options{
		MaxConnPerStudent: cfg.WebSocket.MaxConnPerUser,
		MaxMessageSize:    cfg.WebSocket.MaxMessageSize,
		WriteWait:         cfg.WebSocket.WriteWait,
		PongWait:          cfg.WebSocket.PongWait,
		PingPeriod:        cfg.WebSocket.PingPeriod,
	}, log)
	go wsManager.Run()

	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, flashcard and quiz generation disabled")
	}
	generator := ai.NewStudyGenerator(ai.NewOpenAIClient(cfg.OpenAI, log))

	renderer := document.NewRenderer(document.AssetBase{BaseURL: cfg.Assets.PublicBaseURL})
	pdf := export.NewChromePDF(cfg.Export.ChromePath, cfg.Export.PDFTimeout)

	authService := service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Expiration)
	resolver := service.NewNoteReuseResolver(noteRepo)
	noteService := service.NewNoteService(noteRepo, resolver, listCache, renderer, pdf, wsManager, log)
	folderService := service.NewFolderService(folderRepo, noteRepo, listCache)
	flashcardService := service.NewFlashcardService(noteRepo, studyRepo.Flashcards(), generator, log)
	quizService := service.NewQuizService(noteRepo, studyRepo.Quizzes(), studyRepo.ExamResults(), generator, log)

	wsManager.SetMessageHandler(handler.NewWebSocketMessageHandler(log))

	authHandler := handler.NewAuthHandler(authService, log)
	noteHandler := handler.NewNoteHandler(noteService, log)
	folderHandler := handler.NewFolderHandler(folderService, log)
	studyHandler := handler.NewStudyHandler(flashcardService, quizService, log)
	wsHandler := handler.NewWebSocketHandler(
		wsManager,
		cfg.JWT.Secret,
		cfg.WebSocket.ReadBufferSize,
		cfg.WebSocket.WriteBufferSize,
		cfg.CORS.AllowedOrigins,
		log,
	)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	launch := api.PathPrefix("/auth").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute)
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				limiter.Cleanup()
			}
		}()
		launch.Use(middleware.RateLimitMiddleware(limiter))
	}
	launch.Use(middleware.LMSKeyMiddleware(cfg.LMS.KeyHash))
	launch.HandleFunc("/iframe-token", authHandler.IframeToken).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/notes/get-or-create", noteHandler.GetOrCreate).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes/course", noteHandler.ListByCourse).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes", noteHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes", noteHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/notes/{id}/export-word", noteHandler.ExportWord).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}/export-pdf", noteHandler.ExportPDF).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}/flashcards", studyHandler.ListFlashcards).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}/quizzes", studyHandler.ListQuizzes).Methods("GET", "OPTIONS")

	protected.HandleFunc("/flashcards/generate", studyHandler.GenerateFlashcards).Methods("POST", "OPTIONS")
	protected.HandleFunc("/quiz/generate", studyHandler.GenerateQuiz).Methods("POST", "OPTIONS")
	protected.HandleFunc("/quiz/submit-exam", studyHandler.SubmitExam).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/folders", folderHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/folders", folderHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/folders/move-note", folderHandler.MoveNote).Methods("POST", "OPTIONS")
	protected.HandleFunc("/folders/{id}/rename", folderHandler.Rename).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/folders/{id}", folderHandler.Delete).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting lesson notes server", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"lesson-notes-server"}`))
}
