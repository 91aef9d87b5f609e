package service

import (
	"context"

	"marketbot/pkg/apperr"
	"marketbot/pkg/logger"
	"marketbot/pkg/models"
	"marketbot/pkg/telegram"
	"marketbot/storage"
)

type UserService interface {
	// Authenticate verifies a Telegram init-data assertion, resolves or
	// creates the local user and opens a session. This is the only path
	// that creates users.
	Authenticate(ctx context.Context, initData string) (*models.User, string, error)
	ResolveSession(ctx context.Context, token string) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	stg      storage.IUserStorage
	sessions Sessions
	botToken string
	log      logger.ILogger
}

func NewUserService(stg storage.IStorage, sessions Sessions, botToken string, log logger.ILogger) UserService {
	return &userService{
		stg:      stg.User(),
		sessions: sessions,
		botToken: botToken,
		log:      log,
	}
}

func (s *userService) Authenticate(ctx context.Context, initData string) (*models.User, string, error) {
	if !telegram.VerifyInitData(initData, s.botToken) {
		return nil, "", apperr.ErrNotAuthenticated
	}

	tgUser, err := telegram.ParseUser(initData)
	if err != nil {
		return nil, "", apperr.ErrNotAuthenticated
	}

	user, err := s.stg.GetOrCreate(ctx, tgUser.ID,
		optional(tgUser.Username), optional(tgUser.FirstName), optional(tgUser.LastName))
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user authenticated", logger.Int64("user_id", user.ID), logger.Int64("telegram_id", user.TelegramID))
	return user, token, nil
}

func (s *userService) ResolveSession(ctx context.Context, token string) (int64, error) {
	return s.sessions.Resolve(ctx, token)
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrNotFound
	}
	return user, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
