package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api"
	"github.com/Adnan8101/bharatverse/internal/adapter/api/handler"
	apimiddleware "github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
	"github.com/Adnan8101/bharatverse/internal/adapter/api/router"
	"github.com/Adnan8101/bharatverse/internal/adapter/repository"
	"github.com/Adnan8101/bharatverse/internal/domain/service"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/firebase"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/mail"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/presence"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/ratelimit"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/storage"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/websocket"
	"github.com/Adnan8101/bharatverse/internal/usecase"
	"github.com/Adnan8101/bharatverse/pkg/config"
	"github.com/Adnan8101/bharatverse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Service account from env var (production) or file path (local dev).
	serviceAccountPath := ""
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.FirebaseProject, serviceAccountPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	var mailer service.MailService
	if cfg.GmailClientID != "" {
		mailer, err = mail.NewGmailClient(ctx, cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, cfg.GmailSender)
		if err != nil {
			log.Fatalf("Failed to initialize Gmail client: %v", err)
		}
	} else {
		logger.Warn("Gmail credentials not configured, mail notifications disabled")
		mailer = mail.Noop{}
	}

	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	storeRepo := repository.NewFirestoreStoreRepository(firestoreClient)
	fileMetadataRepo := repository.NewFirestoreFileMetadataRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
	if err := firebaseAuthClient.TestConnection(ctx); err != nil {
		log.Fatalf("Firebase Auth connectivity check failed: %v", err)
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	typingTracker := presence.NewTracker(time.Duration(cfg.TypingTTLSeconds) * time.Second)
	typingTracker.StartJanitor(ctx)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	chatUseCase := usecase.NewChatUseCase(chatRepo, storeRepo, wsManager, mailer, typingTracker, rateLimiter, cfg.AdminDisplayName)
	storeUseCase := usecase.NewStoreUseCase(storeRepo)
	fileUseCase := usecase.NewFileUseCase(storageClient, fileMetadataRepo)

	// Client-originated socket frames (typing, mark_read) flow back into the
	// chat layer through this handler.
	wsManager.SetEventHandler(chatUseCase)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)

	chatHandler := handler.NewChatHandler(chatUseCase)
	storeHandler := handler.NewStoreHandler(storeUseCase)
	fileHandler := handler.NewFileHandler(fileUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	healthHandler := handler.NewHealthHandler()

	router.Setup(e, authMiddleware, chatHandler, storeHandler, fileHandler, wsHandler, healthHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
