package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	userRepository  repository.UserRepository
	tierRepository  repository.TierRepository
	tokenRepository repository.TokenRepository
	jwtSecret       string
	jwtExpiry       time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	tierRepository repository.TierRepository,
	tokenRepository repository.TokenRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:  userRepository,
		tierRepository:  tierRepository,
		tokenRepository: tokenRepository,
		jwtSecret:       jwtSecret,
		jwtExpiry:       jwtExpiry,
	}
}

// Register creates an account on the named tier (Basic when empty) and issues
// its API token.
func (s *AuthService) Register(username, password, tierName string) (*model.User, *model.Token, error) {
	username = strings.TrimSpace(username)

	err := validation.ValidateUsername(username)
	if err != nil {
		return nil, nil, newValidationError("username", err.Error())
	}

	err = s.ValidatePassword(password)
	if err != nil {
		return nil, nil, newValidationError("password", err.Error())
	}

	if tierName == "" {
		tierName = model.TierBasic
	}
	tier, err := s.tierRepository.ByName(tierName)
	if err != nil {
		if errors.Is(err, repository.ErrTierNotFound) {
			return nil, nil, newValidationError("tier", fmt.Sprintf("unknown tier %q", tierName))
		}
		return nil, nil, fmt.Errorf("failed to get tier: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: &hash,
		TierID:       &tier.ID,
		CreatedAt:    time.Now().UTC(),
		Tier:         tier,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, nil, ErrUsernameTaken
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username, "tier", tier.Name)
	return user, token, nil
}

func (s *AuthService) Login(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	err = s.ComparePassword(password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, loadTier(s.tierRepository, user)
}

// IssueToken returns the user's API token, creating it on first use.
func (s *AuthService) IssueToken(userID string) (*model.Token, error) {
	existing, err := s.tokenRepository.ByUserID(userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrTokenNotFound) {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	key, err := s.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.Token{UserID: userID, Key: key}
	err = s.tokenRepository.Create(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return token, nil
}

// Authenticate resolves an Authorization header value to a user with its tier
// loaded. Accepts "Token <key>" and "Bearer <jwt>".
func (s *AuthService) Authenticate(header string) (*model.User, error) {
	scheme, credentials, ok := strings.Cut(strings.TrimSpace(header), " ")
	credentials = strings.TrimSpace(credentials)
	if !ok || credentials == "" {
		return nil, ErrUnauthenticated
	}

	var userID string
	switch strings.ToLower(scheme) {
	case "token":
		token, err := s.tokenRepository.ByKey(credentials)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return nil, ErrInvalidToken
			}
			return nil, fmt.Errorf("failed to get token: %w", err)
		}

		err = s.tokenRepository.Touch(token.ID, time.Now().UTC())
		if err != nil {
			slog.Warn("failed to update token last use", "error", err, "token_id", token.ID)
		}
		userID = token.UserID
	case "bearer":
		claims, err := s.VerifyJWT(credentials)
		if err != nil {
			return nil, ErrInvalidToken
		}
		id, _ := claims["user_id"].(string)
		if id == "" {
			return nil, ErrInvalidToken
		}
		userID = id
	default:
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, loadTier(s.tierRepository, user)
}

func (s *AuthService) ValidatePassword(password string) error {
	return validation.ValidatePassword(password)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateKey returns a random 40 character hex key.
func (s *AuthService) GenerateKey() (string, error) {
	bytes := make([]byte, 20)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
