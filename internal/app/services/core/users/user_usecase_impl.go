package users

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/shared/jwtmanager"
	"hospital-service/internal/app/services/shared/ratelimiter"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type tokenIssuer interface {
	CreateToken(ctx context.Context, user *models.User) (*jwtmanager.CreateTokenOutput, error)
}

type attemptLimiter interface {
	ApplyResourceLimiter(ctx context.Context, in *ratelimiter.ApplyResourceLimiterInput) (*ratelimiter.ApplyResourceLimiterOutput, error)
}

type userUsecase struct {
	UserRepository  contracts.UserRepository
	RedisRepository contracts.RedisRepository
	TokenIssuer     tokenIssuer
	LoginLimiter    attemptLimiter
	InternalConfig  *config.InternalConfig
	Log             *zap.Logger
	now             func() time.Time
}

var (
	userUsecaseInstance contracts.UserUsecase
	onceUserUsecase     sync.Once
)

func NewUserUsecase(
	userRepository contracts.UserRepository,
	redisRepository contracts.RedisRepository,
	jwtManager *jwtmanager.JWTManager,
	loginLimiter *ratelimiter.ResourceLimiter,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.UserUsecase {
	onceUserUsecase.Do(func() {
		userUsecaseInstance = newUserUsecase(userRepository, redisRepository, jwtManager, loginLimiter, internalConfig, logger)
	})
	return userUsecaseInstance
}

func newUserUsecase(
	userRepository contracts.UserRepository,
	redisRepository contracts.RedisRepository,
	issuer tokenIssuer,
	limiter attemptLimiter,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *userUsecase {
	return &userUsecase{
		UserRepository:  userRepository,
		RedisRepository: redisRepository,
		TokenIssuer:     issuer,
		LoginLimiter:    limiter,
		InternalConfig:  internalConfig,
		Log:             logger,
		now:             time.Now,
	}
}

func (uc *userUsecase) Signup(ctx context.Context, request *requests.Signup) (*responses.UserProfile, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("userUsecase.Signup called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEmailKey, request.Email),
	)

	email := normalizeEmail(request.Email)
	existingUser, err := uc.UserRepository.FindByEmail(ctx, email)
	if err != nil {
		uc.Log.Error("userUsecase.Signup error finding user by email",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if existingUser != nil {
		return nil, exceptions.ErrEmailAlreadyExist(nil)
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, exceptions.ErrHashPassword(err)
	}

	role := request.Role
	if role == "" {
		role = constvars.RolePatient
	}

	user := &models.User{
		FirstName: strings.TrimSpace(request.FirstName),
		LastName:  strings.TrimSpace(request.LastName),
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
	}
	user.SetCreatedAtUpdatedAt(uc.now())

	user, err = uc.UserRepository.Create(ctx, user)
	if err != nil {
		uc.Log.Error("userUsecase.Signup error creating user",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("userUsecase.Signup succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, user.ID.Hex()),
		zap.String(constvars.LoggingUserRoleKey, user.Role),
	)
	return toUserProfile(user), nil
}

func (uc *userUsecase) Login(ctx context.Context, request *requests.Login) (*responses.Login, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("userUsecase.Login called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEmailKey, request.Email),
	)

	email := normalizeEmail(request.Email)
	limit, err := uc.LoginLimiter.ApplyResourceLimiter(ctx, &ratelimiter.ApplyResourceLimiterInput{
		ResourceName:      email,
		LimiterGroupName:  constvars.RateLimiterGroupLogin,
		WindowDurationSec: uc.InternalConfig.Login.WindowInSeconds,
		MaxQuota:          uc.InternalConfig.Login.MaxAttempts,
	})
	if err != nil {
		uc.Log.Warn("userUsecase.Login limiter unavailable, continuing",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	} else if !limit.Allowed {
		uc.Log.Warn("userUsecase.Login too many attempts",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEmailKey, email),
			zap.Int("retry_after_seconds", limit.RetryAfterSecs),
		)
		return nil, exceptions.ErrTooManyRequests(nil, email)
	}

	user, err := uc.UserRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(request.Password, user.Password) {
		return nil, exceptions.ErrInvalidEmailOrPassword(nil)
	}

	token, err := uc.TokenIssuer.CreateToken(ctx, user)
	if err != nil {
		uc.Log.Error("userUsecase.Login error creating token",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("userUsecase.Login succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, user.ID.Hex()),
	)
	return &responses.Login{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      toUserProfile(user),
	}, nil
}

// Logout denylists the token id until the token would have expired anyway.
func (uc *userUsecase) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("userUsecase.Logout called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	ttl := expiresAt.Sub(uc.now())
	if ttl <= 0 {
		return nil
	}

	err := uc.RedisRepository.Set(ctx, revokedTokenKey(tokenID), true, ttl)
	if err != nil {
		uc.Log.Error("userUsecase.Logout error storing revoked token",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (uc *userUsecase) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return uc.RedisRepository.Exists(ctx, revokedTokenKey(tokenID))
}

func (uc *userUsecase) GetProfile(ctx context.Context, actor models.Actor) (*responses.UserProfile, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("userUsecase.GetProfile called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
	)

	if actor.IsSystem() {
		return nil, exceptions.ErrMissingActor(nil)
	}

	user, err := uc.UserRepository.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, exceptions.ErrUserNotExist(nil)
	}
	return toUserProfile(user), nil
}

func (uc *userUsecase) FindDoctors(ctx context.Context) ([]responses.UserProfile, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("userUsecase.FindDoctors called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	doctors, err := uc.UserRepository.FindByRole(ctx, constvars.RoleDoctor)
	if err != nil {
		uc.Log.Error("userUsecase.FindDoctors error finding doctors",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	profiles := make([]responses.UserProfile, 0, len(doctors))
	for i := range doctors {
		profiles = append(profiles, *toUserProfile(&doctors[i]))
	}
	return profiles, nil
}

func toUserProfile(user *models.User) *responses.UserProfile {
	return &responses.UserProfile{
		ID:        user.ID.Hex(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func revokedTokenKey(tokenID string) string {
	return fmt.Sprintf(constvars.RedisKeyRevokedTokenFormat, tokenID)
}
