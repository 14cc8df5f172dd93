package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/umlchat/umlchat-backend/internal/clients/openai"
	"github.com/umlchat/umlchat-backend/internal/clients/qdrant"
	"github.com/umlchat/umlchat-backend/internal/data/convstore"
	apphttp "github.com/umlchat/umlchat-backend/internal/http"
	httpH "github.com/umlchat/umlchat-backend/internal/http/handlers"
	httpMW "github.com/umlchat/umlchat-backend/internal/http/middleware"
	"github.com/umlchat/umlchat-backend/internal/modules/assist/steps"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
	"github.com/umlchat/umlchat-backend/internal/retrieval"
	"github.com/umlchat/umlchat-backend/internal/services"
)

type App struct {
	Log    *logger.Logger
	Router *gin.Engine
	Cfg    Config
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig()
	if cfg.JWTSecretKey == "" {
		log.Sync()
		return nil, fmt.Errorf("missing JWT_SECRET_KEY")
	}

	ai, err := openai.NewClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init openai client: %w", err)
	}

	qdrantCfg, err := qdrant.ResolveConfigFromEnv()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("resolve qdrant config: %w", err)
	}
	vectorStore, err := qdrant.NewVectorStore(log, qdrantCfg)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init vector store: %w", err)
	}

	retriever, err := retrieval.NewRetriever(log, ai, vectorStore, cfg.Retrieval)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init retriever: %w", err)
	}

	store, err := convstore.NewStore(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init conversation store: %w", err)
	}

	respondDeps := steps.RespondDeps{
		Log:       log,
		AI:        ai,
		Retriever: retriever,
		Store:     store,
		Models:    cfg.Models,
	}

	assistService, err := services.NewAssistService(log, respondDeps, store)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init assist service: %w", err)
	}
	authService, err := services.NewAuthService(log, cfg.JWTSecretKey)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Log:                 log,
		AuthMiddleware:      httpMW.NewAuthMiddleware(log, authService),
		AssistHandler:       httpH.NewAssistHandler(log, assistService),
		ConversationHandler: httpH.NewConversationHandler(assistService),
		HealthHandler:       httpH.NewHealthHandler(),
	})

	return &App{
		Log:    log,
		Router: router,
		Cfg:    cfg,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting server", "port", a.Cfg.Port)
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
