package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/teachcreate/internal/models"
	gameSession "github.com/KirkDiggler/teachcreate/internal/services/game_session"
	"github.com/KirkDiggler/teachcreate/internal/services/game_session/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testSecret = "test-secret"

type RouterTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
	token       string

	testTime    time.Time
	testUserID  string
	testSession *models.GameSession
}

func (s *RouterTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.mockCtrl)

	s.testTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.testUserID = "user-1"
	s.testSession = &models.GameSession{
		ID:        "session-1",
		ProductID: "product-1",
		CreatorID: s.testUserID,
		JoinCode:  "AB12CD",
		Status:    models.GameSessionStatusWaiting,
		Settings:  models.GameSettings{MaxPlayers: models.IntPtr(4)},
		CreatedAt: s.testTime,
	}

	s.router = s.newRouter(false)
	s.token = s.signToken(s.testUserID, testSecret)
}

func (s *RouterTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) newRouter(production bool) http.Handler {
	auth, err := NewAuthenticator(testSecret)
	s.Require().NoError(err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router, err := NewRouter(&Config{
		GameSessionService: s.mockService,
		Authenticator:      auth,
		Production:         production,
		AllowedOrigin:      "http://localhost:3000",
		Logger:             logger,
	})
	s.Require().NoError(err)
	return router
}

func (s *RouterTestSuite) signToken(subject, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	s.Require().NoError(err)
	return signed
}

func (s *RouterTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	return s.doWithRouter(s.router, method, path, body)
}

func (s *RouterTestSuite) doWithRouter(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) decodeError(rec *httptest.ResponseRecorder) errorResponse {
	var body errorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *RouterTestSuite) TestServerRunning() {
	rec := s.do(http.MethodGet, "/api", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("TeachCreate Server is running!", rec.Body.String())
	s.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func (s *RouterTestSuite) TestWildcardOriginOmitsCredentials() {
	auth, err := NewAuthenticator(testSecret)
	s.Require().NoError(err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router, err := NewRouter(&Config{
		GameSessionService: s.mockService,
		Authenticator:      auth,
		Logger:             logger,
	})
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodOptions, "/api/search/products/product-1/start-game", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Empty(rec.Header().Get("Access-Control-Allow-Credentials"))
}

func (s *RouterTestSuite) TestHealth() {
	s.mockService.EXPECT().Ping(gomock.Any()).Return(nil)
	rec := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())

	s.mockService.EXPECT().Ping(gomock.Any()).Return(errors.New("redis down"))
	rec = s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *RouterTestSuite) TestRequiresAuthentication() {
	req := httptest.NewRequest(http.MethodPost, "/api/search/products/product-1/start-game", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
	body := s.decodeError(rec)
	s.Equal("Authentication required", body.Error)
	s.Equal("Bearer token is required", body.Message)
}

func (s *RouterTestSuite) TestRejectsTokenWithWrongSecret() {
	s.token = s.signToken(s.testUserID, "other-secret")

	rec := s.do(http.MethodGet, "/api/search/products/product-1/game-sessions", "")

	s.Equal(http.StatusUnauthorized, rec.Code)
	body := s.decodeError(rec)
	s.Equal("Invalid token", body.Error)
	s.Equal("Token is invalid or expired", body.Message)
}

func (s *RouterTestSuite) TestRejectsExpiredToken() {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   s.testUserID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	s.Require().NoError(err)
	s.token = signed

	rec := s.do(http.MethodPost, "/api/search/game-sessions/session-1/start", "")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Invalid token", s.decodeError(rec).Error)
}

func (s *RouterTestSuite) TestPreflightSkipsAuth() {
	req := httptest.NewRequest(http.MethodOptions, "/api/search/products/product-1/start-game", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func (s *RouterTestSuite) TestStartGame() {
	s.mockService.EXPECT().
		CreateSession(gomock.Any(), &gameSession.CreateSessionInput{
			ProductID: "product-1",
			CreatorID: s.testUserID,
			Settings:  models.GameSettings{MaxPlayers: models.IntPtr(4)},
		}).
		Return(&gameSession.CreateSessionOutput{Session: s.testSession}, nil)

	rec := s.do(http.MethodPost, "/api/search/products/product-1/start-game", `{"settings":{"maxPlayers":4}}`)

	s.Equal(http.StatusCreated, rec.Code)

	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("waiting", body["status"])
	s.Regexp(`^[0-9A-F]{6}$`, body["join_code"])
	s.Equal(map[string]interface{}{"maxPlayers": float64(4)}, body["settings"])
	s.NotContains(body, "started_at")
	s.NotContains(body, "ended_at")
}

func (s *RouterTestSuite) TestStartGameWithoutBody() {
	s.mockService.EXPECT().
		CreateSession(gomock.Any(), &gameSession.CreateSessionInput{
			ProductID: "product-1",
			CreatorID: s.testUserID,
		}).
		Return(&gameSession.CreateSessionOutput{Session: s.testSession}, nil)

	rec := s.do(http.MethodPost, "/api/search/products/product-1/start-game", "")

	s.Equal(http.StatusCreated, rec.Code)
}

func (s *RouterTestSuite) TestStartGameInvalidMaxPlayers() {
	s.mockService.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		Return(nil, errors.Join(gameSession.ErrInvalidSettings, models.ErrMaxPlayersOutOfRange))

	rec := s.do(http.MethodPost, "/api/search/products/product-1/start-game", `{"settings":{"maxPlayers":1}}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Validation failed", s.decodeError(rec).Error)
}

func (s *RouterTestSuite) TestStartGameNonIntegerMaxPlayers() {
	rec := s.do(http.MethodPost, "/api/search/products/product-1/start-game", `{"settings":{"maxPlayers":"lots"}}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestStartGameCreationErrorIsBadRequest() {
	s.mockService.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("failed to create game session: connection refused"))

	rec := s.do(http.MethodPost, "/api/search/products/product-1/start-game", `{}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	body := s.decodeError(rec)
	s.Equal("Failed to start game", body.Error)
	s.Contains(body.Message, "connection refused")
}

func (s *RouterTestSuite) TestProductionHidesDetail() {
	router := s.newRouter(true)
	s.mockService.EXPECT().
		ListSessions(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("dial tcp 10.0.0.1:6379: connection refused"))

	rec := s.doWithRouter(router, http.MethodGet, "/api/search/products/product-1/game-sessions", "")

	s.Equal(http.StatusInternalServerError, rec.Code)
	body := s.decodeError(rec)
	s.NotContains(body.Message, "10.0.0.1")
}

func (s *RouterTestSuite) TestListSessions() {
	s.mockService.EXPECT().
		ListSessions(gomock.Any(), &gameSession.ListSessionsInput{
			ProductID: "product-1",
			CreatorID: s.testUserID,
		}).
		Return(&gameSession.ListSessionsOutput{Sessions: []*models.GameSession{s.testSession}}, nil)

	rec := s.do(http.MethodGet, "/api/search/products/product-1/game-sessions", "")

	s.Equal(http.StatusOK, rec.Code)
	var body ListSessionsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().Len(body.Sessions, 1)
	s.Equal("session-1", body.Sessions[0].ID)
}

func (s *RouterTestSuite) TestJoin() {
	s.mockService.EXPECT().
		JoinSession(gomock.Any(), &gameSession.JoinSessionInput{
			SessionID: "session-1",
			UserID:    s.testUserID,
			JoinCode:  "AB12CD",
		}).
		Return(&gameSession.JoinSessionOutput{
			Joined:    true,
			SessionID: "session-1",
			JoinCode:  "AB12CD",
			Status:    models.GameSessionStatusWaiting,
		}, nil)

	rec := s.do(http.MethodPost, "/api/search/game-sessions/session-1/join", `{"joinCode":"AB12CD"}`)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"joined":true,"session_id":"session-1","join_code":"AB12CD","status":"waiting"}`, rec.Body.String())
}

func (s *RouterTestSuite) TestJoinMissingCode() {
	rec := s.do(http.MethodPost, "/api/search/game-sessions/session-1/join", `{}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Join code is required", s.decodeError(rec).Message)
}

func (s *RouterTestSuite) TestJoinWrongCode() {
	s.mockService.EXPECT().
		JoinSession(gomock.Any(), gomock.Any()).
		Return(nil, gameSession.ErrInvalidJoinCode)

	rec := s.do(http.MethodPost, "/api/search/game-sessions/session-1/join", `{"joinCode":"000000"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid join code", s.decodeError(rec).Error)
}

func (s *RouterTestSuite) TestGetByJoinCode() {
	s.mockService.EXPECT().
		GetSessionByJoinCode(gomock.Any(), &gameSession.GetSessionByJoinCodeInput{JoinCode: "AB12CD"}).
		Return(&gameSession.GetSessionByJoinCodeOutput{Session: s.testSession}, nil)

	rec := s.do(http.MethodGet, "/api/search/game-sessions/code/AB12CD", "")
	s.Equal(http.StatusOK, rec.Code)

	s.mockService.EXPECT().
		GetSessionByJoinCode(gomock.Any(), gomock.Any()).
		Return(nil, gameSession.ErrSessionNotFound)

	rec = s.do(http.MethodGet, "/api/search/game-sessions/code/FFFFFF", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterTestSuite) TestStartAndEnd() {
	started := s.testTime.Add(time.Minute)
	active := *s.testSession
	active.Status = models.GameSessionStatusActive
	active.StartedAt = &started

	s.mockService.EXPECT().
		StartSession(gomock.Any(), &gameSession.StartSessionInput{SessionID: "session-1"}).
		Return(&gameSession.StartSessionOutput{Session: &active}, nil)

	rec := s.do(http.MethodPost, "/api/search/game-sessions/session-1/start", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"status":"active"`)

	s.mockService.EXPECT().
		EndSession(gomock.Any(), &gameSession.EndSessionInput{SessionID: "session-1"}).
		Return(nil, gameSession.ErrInvalidTransition)

	rec = s.do(http.MethodPost, "/api/search/game-sessions/session-1/end", "")
	s.Equal(http.StatusConflict, rec.Code)

	s.mockService.EXPECT().
		StartSession(gomock.Any(), gomock.Any()).
		Return(nil, gameSession.ErrSessionNotFound)

	rec = s.do(http.MethodPost, "/api/search/game-sessions/missing/start", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterTestSuite) TestNewRouterValidation() {
	_, err := NewRouter(nil)
	s.Error(err)

	_, err = NewRouter(&Config{GameSessionService: s.mockService})
	s.Error(err)

	_, err = NewAuthenticator("")
	s.Error(err)
}
