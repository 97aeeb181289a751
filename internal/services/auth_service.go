package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"foamworks/internal/caching"
	"foamworks/internal/common"
	"foamworks/internal/middleware"
	"foamworks/internal/models"
	"foamworks/internal/repositories"
)

const (
	tokenTTL        = 7 * 24 * time.Hour
	crewLoginLimit  = 10
	crewLoginWindow = 15 * time.Minute
)

// AuthService handles account creation and both login paths: owner
// credentials and field-crew PIN logins scoped to a company.
type AuthService interface {
	Signup(ctx context.Context, username, password, companyName, email string) (*models.Session, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	CrewLogin(ctx context.Context, ownerUsername, pin, remoteIP string) (*models.Session, error)
}

type authService struct {
	usersRepo repositories.UsersRepository
	cacheSvc  caching.CacheService
	jwtSecret []byte
}

func NewAuthService(usersRepo repositories.UsersRepository, cacheSvc caching.CacheService, jwtSecret string) AuthService {
	return &authService{
		usersRepo: usersRepo,
		cacheSvc:  cacheSvc,
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *authService) Signup(ctx context.Context, username, password, companyName, email string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	companyName = strings.TrimSpace(companyName)
	if username == "" || password == "" || companyName == "" {
		return nil, common.Invalidf("username, password, and company name are required")
	}

	if _, err := s.usersRepo.GetByUsername(ctx, username); err == nil {
		return nil, common.Conflictf("username %q is already taken", username)
	} else if common.KindOf(err) != common.KindNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.Internal("hash password", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		CompanyName:  companyName,
		Email:        email,
		CrewPIN:      newCrewPIN(),
	}
	if err := s.usersRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	session, err := s.issueSession(user, "admin")
	if err != nil {
		return nil, err
	}
	session.CrewPIN = user.CrewPIN
	return session, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := s.usersRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.Unauthorizedf("invalid username or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.Unauthorizedf("invalid username or password")
	}

	return s.issueSession(user, "admin")
}

// CrewLogin authenticates a crew member against the owner account's PIN.
// Attempts are rate limited per source IP to slow down PIN guessing.
func (s *authService) CrewLogin(ctx context.Context, ownerUsername, pin, remoteIP string) (*models.Session, error) {
	limited, err := s.cacheSvc.IsRateLimited(ctx, fmt.Sprintf("crew-login:%s", remoteIP), crewLoginLimit, crewLoginWindow)
	if err != nil {
		log.Printf("WARN: crew login rate limit check failed: %v", err)
	} else if limited {
		return nil, common.Unauthorizedf("too many login attempts, try again later")
	}

	user, err := s.usersRepo.GetByUsername(ctx, strings.TrimSpace(ownerUsername))
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.Unauthorizedf("invalid company or PIN")
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(user.CrewPIN), []byte(pin)) != 1 {
		return nil, common.Unauthorizedf("invalid company or PIN")
	}

	return s.issueSession(user, "crew")
}

// newCrewPIN returns a random four-digit PIN issued at signup.
func newCrewPIN() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "1000"
	}
	return strconv.FormatInt(1000+n.Int64(), 10)
}

func (s *authService) issueSession(user *models.User, role string) (*models.Session, error) {
	now := time.Now()
	claims := middleware.Claims{
		Username: user.Username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "foamworks",
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, common.Internal("sign token", err)
	}

	return &models.Session{
		Username:    user.Username,
		CompanyName: user.CompanyName,
		Role:        role,
		Token:       signed,
	}, nil
}
