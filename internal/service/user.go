package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/dgrijalva/jwt-go"
	"github.com/oklog/ulid/v2"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const tokenTTL = 24 * time.Hour

// ReferralLinker receives every new user and its referrer.
type ReferralLinker interface {
	Link(ctx context.Context, userID int64, referredBy *int64) error
}

type UserService struct {
	repo        storage.UserStore
	privateKey  string
	adminLogins []string
	linker      ReferralLinker
	cost        int
}

func NewUserService(repo storage.UserStore, privateKey string, adminLogins []string) *UserService {
	return &UserService{
		repo:        repo,
		privateKey:  privateKey,
		adminLogins: adminLogins,
		cost:        bcrypt.DefaultCost,
	}
}

func (s *UserService) WithLinker(l ReferralLinker) *UserService {
	s.linker = l
	return s
}

func (s *UserService) WithCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Register creates the user and returns a signed token. A non-empty
// referralCode must belong to an existing user, who becomes the referrer.
func (s *UserService) Register(ctx context.Context, login, password, referralCode string) (string, error) {
	var referredBy *int64
	if code := strings.TrimSpace(referralCode); code != "" {
		referrer, err := s.repo.UserByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Log.Warn("unknown referral code", logger.String("code", code))
				return "", fmt.Errorf("%w: unknown referral code", domain.ErrInvalidReference)
			}
			return "", err
		}
		referredBy = &referrer.ID
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		logger.Log.Warn("error while hashing password")
		return "", fmt.Errorf("error while hashing password: %w", err)
	}

	u := &domain.User{
		Login:        login,
		Password:     string(hashedPassword),
		ReferralCode: ulid.Make().String(),
		ReferredBy:   referredBy,
		IsAdmin:      slices.Contains(s.adminLogins, login),
	}
	if err = s.repo.CreateUser(ctx, u); err != nil {
		return "", err
	}

	if s.linker != nil {
		if err := s.linker.Link(ctx, u.ID, u.ReferredBy); err != nil {
			logger.Log.Warn("error mirroring referral link", logger.Int64("user_id", u.ID), logger.Error(err))
		}
	}

	return generateJWTToken(u, s.privateKey)
}

func (s *UserService) Login(ctx context.Context, login, password string) (string, error) {
	user, err := s.repo.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Log.Warn("incorrect login", logger.String("login", login))
			return "", domain.ErrIncorrectCredentials
		}
		return "", err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		logger.Log.Warn("incorrect password", logger.String("login", login))
		return "", domain.ErrIncorrectCredentials
	}

	if user.IsBlocked {
		logger.Log.Warn("blocked user tried to log in", logger.String("login", login))
		return "", domain.ErrUserBlocked
	}

	return generateJWTToken(user, s.privateKey)
}

func (s *UserService) User(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.UserByID(ctx, id)
}

func (s *UserService) Users(ctx context.Context) ([]domain.User, error) {
	return s.repo.Users(ctx)
}

func (s *UserService) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	if err := s.repo.SetUserBlocked(ctx, id, blocked); err != nil {
		return err
	}

	logger.Log.Info("user block flag changed", logger.Int64("user_id", id), logger.Bool("blocked", blocked))
	return nil
}

func generateJWTToken(u *domain.User, privateKey string) (string, error) {
	claims := dto.Claims{
		Admin: u.IsAdmin,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(privateKey))
	if err != nil {
		return "", fmt.Errorf("error while signing token: %w", err)
	}

	return signedToken, nil
}
