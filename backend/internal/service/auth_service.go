package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthUnavailable    = errors.New("skylink is unavailable and no local account matches")
	ErrUserNotFound       = errors.New("user not found")
)

// LoginResult is a completed login: the response body plus the values the
// handler turns into cookies.
type LoginResult struct {
	Response     dto.LoginResponse
	SkylinkToken string
	CSRFToken    string
	ExpiresAt    time.Time
}

// AuthService session lifecycle.
type AuthService interface {
	// Login authenticates against Skylink, falling back to the configured local
	// accounts when Skylink cannot answer.
	Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error)
	Me(ctx context.Context, claims *jwt.Claims) (*dto.MeResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	upstream  Upstream
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	upstream Upstream,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		upstream:  upstream,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// LocalEmail is the local account email for a login name: the name itself when it
// already is an address, otherwise name@domain.
func LocalEmail(username, domain string) string {
	username = strings.TrimSpace(username)
	if strings.Contains(username, "@") {
		return strings.ToLower(username)
	}
	if domain == "" {
		domain = "sab.id"
	}
	return strings.ToLower(username) + "@" + domain
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	res, err := s.upstream.Login(ctx, username, req.Password)
	if err == nil {
		return s.loginSkylink(ctx, username, res)
	}

	if apiErr, ok := skylink.AsAPIError(err); ok && !apiErr.ServerSide() {
		s.logger.Info("skylink rejected login", zap.String("username", username), zap.Int("status", apiErr.StatusCode))
		return nil, ErrInvalidCredentials
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.logger.Warn("skylink unavailable, trying local accounts", zap.String("username", username), zap.Error(err))
	return s.loginLocal(ctx, username, req.Password)
}

func (s *authService) loginSkylink(ctx context.Context, username string, res *skylink.LoginResult) (*LoginResult, error) {
	profile := res.User
	if profile == nil || profile.Email == "" {
		p, err := s.upstream.Me(ctx, res.AccessToken)
		if err != nil {
			s.logger.Warn("skylink profile lookup failed", zap.Error(err))
		} else {
			profile = p
		}
	}

	email := LocalEmail(username, s.cfg.Auth.LocalEmailDomain)
	name := ""
	if profile != nil {
		if profile.Email != "" {
			email = strings.ToLower(profile.Email)
		}
		name = profile.Name
	}

	user, err := s.repo.User.UpsertByEmail(ctx, email, name)
	if err != nil {
		s.logger.Error("upsert user failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	result, err := s.issue(user, jwt.SourceSkylink)
	if err != nil {
		return nil, err
	}
	result.SkylinkToken = res.AccessToken
	result.CSRFToken = res.CSRFToken
	result.Response.CSRFToken = res.CSRFToken
	return result, nil
}

func (s *authService) loginLocal(ctx context.Context, username, password string) (*LoginResult, error) {
	domain := s.cfg.Auth.LocalEmailDomain
	email := LocalEmail(username, domain)

	var account *config.LocalUser
	for i := range s.cfg.Auth.LocalUsers {
		u := &s.cfg.Auth.LocalUsers[i]
		if LocalEmail(u.Username, domain) == email {
			account = u
			break
		}
	}
	if account == nil {
		return nil, ErrAuthUnavailable
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	name := account.Name
	if name == "" {
		name = account.Username
	}
	user, err := s.repo.User.UpsertByEmail(ctx, email, name)
	if err != nil {
		s.logger.Error("upsert local user failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("local fallback login", zap.String("email", email))
	return s.issue(user, jwt.SourceLocal)
}

func (s *authService) issue(user *model.User, source string) (*LoginResult, error) {
	token, claims, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Email, user.Role, source)
	if err != nil {
		s.logger.Error("sign session token failed", zap.Error(err))
		return nil, err
	}
	return &LoginResult{
		Response: dto.LoginResponse{
			AccessToken: token,
			ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
			Source:      source,
			User:        toUserResponse(user),
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *authService) Me(ctx context.Context, claims *jwt.Claims) (*dto.MeResponse, error) {
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &dto.MeResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Source:      claims.Source,
		LocalUserID: user.ID,
		LocalRole:   user.Role,
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Warn("blacklist token failed", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}
	return nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
