package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this username, email or rut already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid username/email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrUserNotFound         = errors.New("user not found")
)

const (
	MinPasswordLength    = 8
	TempPasswordLength   = 12
	tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenIssuer          = "fitcoach"
	defaultJWTExpiration = time.Hour
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RUT       string
	Role      domain.Role
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login accepts either the username or the email as identifier.
	Login(ctx context.Context, identifier, password string) (token string, user *domain.User, err error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error
	ParseToken(token string) (*TokenClaims, error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = defaultJWTExpiration
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(hashed), nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// createUser hashes password, stores user and clears the hash again.
func createUser(ctx context.Context, users repository.UserRepository, user *domain.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if _, err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrUserAlreadyExists
		}
		return err
	}
	user.PasswordHash = ""
	return nil
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" {
		return nil, invalid("username and email are required")
	}
	if !in.Role.Valid() {
		return nil, invalid("unknown role %q", in.Role)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		RUT:       strings.TrimSpace(in.RUT),
		Role:      in.Role,
	}
	if err := createUser(ctx, s.userRepo, user, in.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	}
	return s.userRepo.GetByUsername(ctx, identifier)
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", nil, invalid("username/email and password are required")
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		return "", nil, notFound(err, ErrAuthenticationFailed)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrAuthenticationFailed
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if newPassword == oldPassword {
		return invalid("new password must differ from the current one")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return notFound(s.userRepo.UpdatePassword(ctx, userID, hash), ErrUserNotFound)
}

// --- JWT Helper ---

// TokenClaims is the JWT payload.
type TokenClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

// ParseToken validates an HS256 token and returns its claims.
func (s *authService) ParseToken(tokenString string) (*TokenClaims, error) {
	return ParseToken(tokenString, s.jwtSecret)
}

func ParseToken(tokenString, secret string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}

// GenerateTempPassword returns a random alphanumeric password of
// TempPasswordLength characters.
func GenerateTempPassword() (string, error) {
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	buf := make([]byte, TempPasswordLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
