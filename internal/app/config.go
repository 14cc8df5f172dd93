package app

import (
	"github.com/umlchat/umlchat-backend/internal/modules/assist/steps"
	"github.com/umlchat/umlchat-backend/internal/pkg/envutil"
	"github.com/umlchat/umlchat-backend/internal/retrieval"
)

type Config struct {
	Port         string
	JWTSecretKey string

	Models    steps.ModelConfig
	Retrieval retrieval.Config
}

func LoadConfig() Config {
	return Config{
		Port:         envutil.String("PORT", "8080"),
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		Models: steps.ModelConfig{
			ChatModel:   envutil.String("CHAT_MODEL", "gpt-4-turbo"),
			RouteModel:  envutil.String("ROUTE_MODEL", "gpt-4o"),
			Temperature: envutil.Float32("MODEL_TEMPERATURE", 0.7),
		},
		Retrieval: retrieval.Config{
			FetchK:  envutil.Int("RETRIEVAL_FETCH_K", 5),
			SelectK: envutil.Int("RETRIEVAL_SELECT_K", 4),
			Lambda:  float64(envutil.Float32("RETRIEVAL_MMR_LAMBDA", 0.5)),
		},
	}
}
