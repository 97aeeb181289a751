package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"foamworks/internal/common"
	"foamworks/internal/middleware"
	"foamworks/internal/models"
)

type MockUsersRepository struct {
	mock.Mock
}

func (m *MockUsersRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSnapshot(ctx context.Context, tenantID string) (*models.Snapshot, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snapshot), args.Error(1)
}

func (m *MockCacheService) SetSnapshot(ctx context.Context, tenantID string, snapshot *models.Snapshot, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, snapshot, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSnapshot(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type AuthServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockUsersRepository
	mockCache *MockCacheService
	service   AuthService
	ctx       context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockUsersRepository{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewAuthService(suite.mockRepo, suite.mockCache, "test-secret")
	suite.ctx = context.Background()

	suite.mockRepo.Test(suite.T())
	suite.mockCache.Test(suite.T())
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestSignup_Success() {
	suite.mockRepo.On("GetByUsername", suite.ctx, "frank").
		Return(nil, common.NotFoundf("user not found"))
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		user := args.Get(1).(*models.User)
		assert.Equal(suite.T(), "frank", user.Username)
		assert.Equal(suite.T(), "Rapid Foam", user.CompanyName)
		assert.NotEqual(suite.T(), "hunter2", user.PasswordHash)
		assert.Len(suite.T(), user.CrewPIN, 4)
	})

	session, err := suite.service.Signup(suite.ctx, "frank", "hunter2", "Rapid Foam", "frank@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "frank", session.Username)
	assert.Equal(suite.T(), "Rapid Foam", session.CompanyName)
	assert.Equal(suite.T(), "admin", session.Role)
	assert.NotEmpty(suite.T(), session.Token)
	assert.NotEmpty(suite.T(), session.CrewPIN)
}

func (suite *AuthServiceTestSuite) TestSignup_UsernameTaken() {
	suite.mockRepo.On("GetByUsername", suite.ctx, "frank").
		Return(&models.User{Username: "frank"}, nil)

	_, err := suite.service.Signup(suite.ctx, "frank", "hunter2", "Rapid Foam", "")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindConflict, common.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestSignup_MissingFields() {
	_, err := suite.service.Signup(suite.ctx, "", "hunter2", "Rapid Foam", "")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindInvalid, common.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	require.NoError(suite.T(), err)

	suite.mockRepo.On("GetByUsername", suite.ctx, "frank").
		Return(&models.User{Username: "frank", PasswordHash: string(hash), CompanyName: "Rapid Foam"}, nil)

	session, err := suite.service.Login(suite.ctx, "frank", "hunter2")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "admin", session.Role)
	assert.Empty(suite.T(), session.CrewPIN)

	// issued token carries the username claim the middleware resolves by
	token, err := jwt.ParseWithClaims(session.Token, &middleware.Claims{}, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(suite.T(), err)
	claims := token.Claims.(*middleware.Claims)
	assert.Equal(suite.T(), "frank", claims.Username)
	assert.Equal(suite.T(), "admin", claims.Role)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	require.NoError(suite.T(), err)

	suite.mockRepo.On("GetByUsername", suite.ctx, "frank").
		Return(&models.User{Username: "frank", PasswordHash: string(hash)}, nil)

	_, err = suite.service.Login(suite.ctx, "frank", "wrong")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindUnauthorized, common.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownUser() {
	suite.mockRepo.On("GetByUsername", suite.ctx, "ghost").
		Return(nil, common.NotFoundf("user not found"))

	_, err := suite.service.Login(suite.ctx, "ghost", "whatever")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindUnauthorized, common.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestCrewLogin_Success() {
	suite.mockCache.On("IsRateLimited", suite.ctx, "crew-login:10.0.0.1", crewLoginLimit, crewLoginWindow).
		Return(false, nil)
	suite.mockRepo.On("GetByUsername", suite.ctx, "frank").
		Return(&models.User{Username: "frank", CompanyName: "Rapid Foam", CrewPIN: "4821"}, nil)

	session, err := suite.service.CrewLogin(suite.ctx, "frank", "4821", "10.0.0.1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "crew", session.Role)
	assert.Equal(suite.T(), "Rapid Foam", session.CompanyName)
}

func (suite *AuthServiceTestSuite) TestCrewLogin_WrongPIN() {
	suite.mockCache.On("IsRateLimited", suite.ctx, "crew-login:10.0.0.1", crewLoginLimit, crewLoginWindow).
		Return(false, nil)
	suite.mockRepo.On("GetByUsername", suite.ctx, "frank").
		Return(&models.User{Username: "frank", CrewPIN: "4821"}, nil)

	_, err := suite.service.CrewLogin(suite.ctx, "frank", "0000", "10.0.0.1")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindUnauthorized, common.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestCrewLogin_RateLimited() {
	suite.mockCache.On("IsRateLimited", suite.ctx, "crew-login:10.0.0.1", crewLoginLimit, crewLoginWindow).
		Return(true, nil)

	_, err := suite.service.CrewLogin(suite.ctx, "frank", "4821", "10.0.0.1")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindUnauthorized, common.KindOf(err))
}
