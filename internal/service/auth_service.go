package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agent-chat-be/internal/config"
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/pkg/apperror"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/pkg/token"
	"agent-chat-be/internal/repository/specification"
	"agent-chat-be/internal/repository/unitofwork"

	"agent-chat-be/pkg/events"
	pkgNats "agent-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	VerifyEmail(ctx context.Context, tokenStr string) error
	ResendVerification(ctx context.Context, req *dto.ResendVerificationRequest) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	VerifyResetToken(ctx context.Context, tokenStr string) (bool, error)
}

// throttleTTL bounds how often a single email can trigger an outbound mail
// through the non-enumerating endpoints.
const throttleTTL = time.Minute

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	cfg            *config.Config
	issuer         *token.Issuer
	publisher      message.Publisher
	eventPublisher *pkgNats.Publisher
	log            logger.ILogger
	mapper         *mapper.UserMapper
	throttle       *gocache.Cache
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	cfg *config.Config,
	issuer *token.Issuer,
	publisher message.Publisher,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		cfg:            cfg,
		issuer:         issuer,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		log:            log,
		mapper:         &mapper.UserMapper{},
		throttle:       gocache.New(throttleTTL, 5*time.Minute),
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	taken, err := uow.UserRepository().Count(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if taken > 0 {
		return nil, apperror.AlreadyExists("username already registered")
	}

	taken, err = uow.UserRepository().Count(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if taken > 0 {
		return nil, apperror.AlreadyExists("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsVerified:   !s.cfg.EmailVerificationRequired,
		CreatedAt:    time.Now(),
	}

	// User + verification token must land together.
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// A racing registration can slip past the existence checks and trip
		// the unique index instead.
		if isDuplicateKey(err) {
			return nil, apperror.AlreadyExists("username or email already registered")
		}
		return nil, apperror.Internal(err)
	}

	var verificationToken string
	if s.cfg.EmailVerificationRequired {
		verificationToken, err = s.issueVerificationToken(ctx, uow, user.Id)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal(err)
	}

	if verificationToken != "" {
		s.publishEmailEvent(events.TopicEmailVerificationRequested, user.Email, verificationToken)
	}

	if err := s.eventPublisher.Publish(ctx, events.NewUserRegistered(user.Id, user.Username, user.Email)); err != nil {
		s.log.Warn("auth", "failed to publish USER_REGISTERED event", map[string]interface{}{"error": err})
	}

	return s.mapper.ToResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.InvalidCredentials("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.InvalidCredentials("invalid username or password")
	}

	// Unverified accounts get the same answer as a bad password so the
	// endpoint reveals nothing about account state.
	if s.cfg.EmailVerificationRequired && !user.IsVerified {
		return nil, apperror.InvalidCredentials("invalid username or password")
	}

	signed, err := s.issuer.Issue(token.Claims{
		UserId:   user.Id,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.eventPublisher.Publish(ctx, events.NewUserLogin(user.Id, user.Username)); err != nil {
		s.log.Warn("auth", "failed to publish USER_LOGIN event", map[string]interface{}{"error": err})
	}

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, tokenStr string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Consumption and the verified-flag flip commit together.
	if err := uow.Begin(ctx); err != nil {
		return apperror.Internal(err)
	}
	defer uow.Rollback()

	consumed, err := uow.UserRepository().ConsumeVerificationToken(ctx, tokenStr, time.Now())
	if err != nil {
		return apperror.Internal(err)
	}
	if consumed == nil {
		return apperror.InvalidToken("invalid or expired verification token")
	}

	if err := uow.UserRepository().MarkVerified(ctx, consumed.UserId); err != nil {
		return apperror.Internal(err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *authService) ResendVerification(ctx context.Context, req *dto.ResendVerificationRequest) error {
	if s.throttled("resend:" + req.Email) {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return apperror.Internal(err)
	}
	// Unknown or already-verified emails get the same silent success.
	if user == nil || user.IsVerified {
		return nil
	}

	verificationToken, err := s.issueVerificationToken(ctx, uow, user.Id)
	if err != nil {
		return err
	}

	s.publishEmailEvent(events.TopicEmailVerificationRequested, user.Email, verificationToken)
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	if s.throttled("forgot:" + req.Email) {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		// Don't leak whether the email exists.
		return nil
	}

	raw, err := token.NewRandomToken()
	if err != nil {
		return apperror.Internal(err)
	}

	now := time.Now()
	resetToken := &entity.PasswordResetToken{
		UserId:    user.Id,
		Token:     raw,
		ExpiresAt: now.Add(time.Duration(s.cfg.PasswordResetTokenExpireHours) * time.Hour),
		CreatedAt: now,
	}

	// Invalidate earlier tokens in the same transaction so at most one
	// reset token is live per user.
	if err := uow.Begin(ctx); err != nil {
		return apperror.Internal(err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().InvalidateUnusedResetTokens(ctx, user.Id, now); err != nil {
		return apperror.Internal(err)
	}
	if err := uow.UserRepository().CreateResetToken(ctx, resetToken); err != nil {
		return apperror.Internal(err)
	}
	if err := uow.Commit(); err != nil {
		return apperror.Internal(err)
	}

	s.publishEmailEvent(events.TopicPasswordResetRequested, user.Email, raw)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal(err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return apperror.Internal(err)
	}
	defer uow.Rollback()

	consumed, err := uow.UserRepository().ConsumeResetToken(ctx, req.Token, time.Now())
	if err != nil {
		return apperror.Internal(err)
	}
	if consumed == nil {
		return apperror.InvalidToken("invalid or expired reset token")
	}

	if err := uow.UserRepository().UpdatePassword(ctx, consumed.UserId, string(hash)); err != nil {
		return apperror.Internal(err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *authService) VerifyResetToken(ctx context.Context, tokenStr string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	resetToken, err := uow.UserRepository().FindResetToken(ctx, specification.ByToken{Token: tokenStr})
	if err != nil {
		return false, apperror.Internal(err)
	}
	if resetToken == nil || resetToken.IsUsed() || resetToken.IsExpired() {
		return false, nil
	}
	return true, nil
}

// issueVerificationToken creates and stores a fresh verification token for
// the user on the caller's unit of work.
func (s *authService) issueVerificationToken(ctx context.Context, uow unitofwork.UnitOfWork, userId uint) (string, error) {
	raw, err := token.NewRandomToken()
	if err != nil {
		return "", apperror.Internal(err)
	}

	now := time.Now()
	verificationToken := &entity.EmailVerificationToken{
		UserId:    userId,
		Token:     raw,
		ExpiresAt: now.Add(time.Duration(s.cfg.EmailVerificationTokenExpireHours) * time.Hour),
		CreatedAt: now,
	}

	if err := uow.UserRepository().CreateVerificationToken(ctx, verificationToken); err != nil {
		return "", apperror.Internal(err)
	}
	return raw, nil
}

func (s *authService) publishEmailEvent(topic, email, tokenStr string) {
	payload, err := json.Marshal(events.EmailTokenPayload{Email: email, Token: tokenStr})
	if err != nil {
		s.log.Error("auth", "failed to marshal email event", map[string]interface{}{"topic": topic, "error": err})
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.publisher.Publish(topic, msg); err != nil {
		// Mail delivery is best-effort; the primary operation already committed.
		s.log.Error("auth", "failed to publish email event", map[string]interface{}{"topic": topic, "error": err})
	}
}

// isDuplicateKey recognizes a unique-index violation, whether surfaced as
// gorm's translated error or the raw postgres error (code 23505).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *authService) throttled(key string) bool {
	if _, found := s.throttle.Get(key); found {
		return true
	}
	s.throttle.Set(key, struct{}{}, throttleTTL)
	return false
}
