package middlewares

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/services/shared/jwtmanager"

	"go.uber.org/zap"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*jwtmanager.Claims, error)
}

type Middlewares struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	TokenVerifier  TokenVerifier
	UserUsecase    contracts.UserUsecase
}

func NewMiddlewares(logger *zap.Logger, internalConfig *config.InternalConfig, tokenVerifier TokenVerifier, userUsecase contracts.UserUsecase) *Middlewares {
	return &Middlewares{
		Log:            logger,
		InternalConfig: internalConfig,
		TokenVerifier:  tokenVerifier,
		UserUsecase:    userUsecase,
	}
}
