package game_session

import (
	"context"
	"time"

	"github.com/KirkDiggler/teachcreate/internal/models"
	"github.com/stretchr/testify/suite"
)

// repositoryBehaviourSuite holds the tests every backend must pass. Backend
// suites embed it and set repo in SetupTest.
type repositoryBehaviourSuite struct {
	suite.Suite
	repo    Repository
	ctx     context.Context
	testNow time.Time
}

func (s *repositoryBehaviourSuite) setupBehaviour(repo Repository) {
	s.repo = repo
	s.ctx = context.Background()
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *repositoryBehaviourSuite) createSession(productID, creatorID, joinCode string, createdAt time.Time) *models.GameSession {
	out, err := s.repo.CreateSession(s.ctx, &CreateSessionInput{
		ProductID: productID,
		CreatorID: creatorID,
		JoinCode:  joinCode,
		Status:    models.GameSessionStatusWaiting,
		Settings:  models.GameSettings{MaxPlayers: models.IntPtr(4)},
		CreatedAt: createdAt,
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.Session)
	return out.Session
}

func (s *repositoryBehaviourSuite) TestCreateAndGetSession() {
	created := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)

	s.NotEmpty(created.ID)
	s.Equal(models.GameSessionStatusWaiting, created.Status)
	s.Nil(created.StartedAt)
	s.Nil(created.EndedAt)

	retrieved, err := s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: created.ID})
	s.Require().NoError(err)

	s.Equal(created.ID, retrieved.ID)
	s.Equal("product-1", retrieved.ProductID)
	s.Equal("creator-1", retrieved.CreatorID)
	s.Equal("AB12CD", retrieved.JoinCode)
	s.Equal(models.GameSessionStatusWaiting, retrieved.Status)
	s.Require().NotNil(retrieved.Settings.MaxPlayers)
	s.Equal(4, *retrieved.Settings.MaxPlayers)
	s.True(s.testNow.Equal(retrieved.CreatedAt))
	s.Nil(retrieved.StartedAt)
	s.Nil(retrieved.EndedAt)
}

func (s *repositoryBehaviourSuite) TestCreateSessionJoinCodeConflict() {
	first := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)

	_, err := s.repo.CreateSession(s.ctx, &CreateSessionInput{
		ProductID: "product-2",
		CreatorID: "creator-2",
		JoinCode:  "AB12CD",
		Status:    models.GameSessionStatusWaiting,
		CreatedAt: s.testNow,
	})
	s.ErrorIs(err, ErrJoinCodeConflict)

	// The original holder keeps the code
	byCode, err := s.repo.GetSessionByJoinCode(s.ctx, &GetSessionByJoinCodeInput{JoinCode: "AB12CD"})
	s.Require().NoError(err)
	s.Equal(first.ID, byCode.ID)
}

func (s *repositoryBehaviourSuite) TestCreateSessionValidation() {
	_, err := s.repo.CreateSession(s.ctx, nil)
	s.Error(err)

	_, err = s.repo.CreateSession(s.ctx, &CreateSessionInput{
		CreatorID: "creator-1",
		JoinCode:  "AB12CD",
		Status:    models.GameSessionStatusWaiting,
	})
	s.Error(err)

	_, err = s.repo.CreateSession(s.ctx, &CreateSessionInput{
		ProductID: "product-1",
		CreatorID: "creator-1",
		JoinCode:  "AB12CD",
		Status:    "paused",
	})
	s.Error(err)
}

func (s *repositoryBehaviourSuite) TestGetSessionByJoinCode() {
	created := s.createSession("product-1", "creator-1", "0F3A9B", s.testNow)

	retrieved, err := s.repo.GetSessionByJoinCode(s.ctx, &GetSessionByJoinCodeInput{JoinCode: "0F3A9B"})
	s.Require().NoError(err)
	s.Equal(created.ID, retrieved.ID)

	_, err = s.repo.GetSessionByJoinCode(s.ctx, &GetSessionByJoinCodeInput{JoinCode: "FFFFFF"})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *repositoryBehaviourSuite) TestGetSessionNotFound() {
	_, err := s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: "missing"})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *repositoryBehaviourSuite) TestListSessionsNewestFirst() {
	older := s.createSession("product-1", "creator-1", "AAAAAA", s.testNow)
	newer := s.createSession("product-1", "creator-1", "BBBBBB", s.testNow.Add(time.Minute))
	s.createSession("product-1", "creator-2", "CCCCCC", s.testNow)
	s.createSession("product-2", "creator-1", "DDDDDD", s.testNow)

	out, err := s.repo.ListSessions(s.ctx, &ListSessionsInput{
		ProductID: "product-1",
		CreatorID: "creator-1",
	})
	s.Require().NoError(err)
	s.Require().Len(out.Sessions, 2)
	s.Equal(newer.ID, out.Sessions[0].ID)
	s.Equal(older.ID, out.Sessions[1].ID)
}

func (s *repositoryBehaviourSuite) TestListSessionsEmpty() {
	out, err := s.repo.ListSessions(s.ctx, &ListSessionsInput{
		ProductID: "product-1",
		CreatorID: "creator-1",
	})
	s.Require().NoError(err)
	s.NotNil(out.Sessions)
	s.Empty(out.Sessions)
}

func (s *repositoryBehaviourSuite) TestUpdateSessionStatusLifecycle() {
	created := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)
	startedAt := s.testNow.Add(time.Minute)
	endedAt := s.testNow.Add(10 * time.Minute)

	started, err := s.repo.UpdateSessionStatus(s.ctx, &UpdateSessionStatusInput{
		SessionID:      created.ID,
		Status:         models.GameSessionStatusActive,
		ExpectedStatus: models.GameSessionStatusWaiting,
		Timestamp:      startedAt,
	})
	s.Require().NoError(err)
	s.Equal(models.GameSessionStatusActive, started.Status)
	s.Require().NotNil(started.StartedAt)
	s.True(startedAt.Equal(*started.StartedAt))
	s.Nil(started.EndedAt)

	ended, err := s.repo.UpdateSessionStatus(s.ctx, &UpdateSessionStatusInput{
		SessionID:      created.ID,
		Status:         models.GameSessionStatusCompleted,
		ExpectedStatus: models.GameSessionStatusActive,
		Timestamp:      endedAt,
	})
	s.Require().NoError(err)
	s.Equal(models.GameSessionStatusCompleted, ended.Status)
	s.Require().NotNil(ended.StartedAt)
	s.Require().NotNil(ended.EndedAt)
	s.True(ended.StartedAt.Before(*ended.EndedAt))

	// The persisted record matches what was returned
	retrieved, err := s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: created.ID})
	s.Require().NoError(err)
	s.Equal(models.GameSessionStatusCompleted, retrieved.Status)
	s.True(endedAt.Equal(*retrieved.EndedAt))
	s.Equal("AB12CD", retrieved.JoinCode)
}

func (s *repositoryBehaviourSuite) TestUpdateSessionStatusUnconditionalOverwrites() {
	created := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)
	first := s.testNow.Add(time.Minute)
	second := s.testNow.Add(2 * time.Minute)

	_, err := s.repo.UpdateSessionStatus(s.ctx, &UpdateSessionStatusInput{
		SessionID: created.ID,
		Status:    models.GameSessionStatusActive,
		Timestamp: first,
	})
	s.Require().NoError(err)

	again, err := s.repo.UpdateSessionStatus(s.ctx, &UpdateSessionStatusInput{
		SessionID: created.ID,
		Status:    models.GameSessionStatusActive,
		Timestamp: second,
	})
	s.Require().NoError(err)
	s.True(second.Equal(*again.StartedAt))
}

func (s *repositoryBehaviourSuite) TestUpdateSessionStatusExpectedStatusMismatch() {
	created := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)

	_, err := s.repo.UpdateSessionStatus(s.ctx, &UpdateSessionStatusInput{
		SessionID:      created.ID,
		Status:         models.GameSessionStatusCompleted,
		ExpectedStatus: models.GameSessionStatusActive,
		Timestamp:      s.testNow.Add(time.Minute),
	})
	s.ErrorIs(err, ErrStatusMismatch)

	retrieved, err := s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: created.ID})
	s.Require().NoError(err)
	s.Equal(models.GameSessionStatusWaiting, retrieved.Status)
	s.Nil(retrieved.EndedAt)
}

func (s *repositoryBehaviourSuite) TestUpdateSessionStatusNotFound() {
	_, err := s.repo.UpdateSessionStatus(s.ctx, &UpdateSessionStatusInput{
		SessionID: "missing",
		Status:    models.GameSessionStatusActive,
		Timestamp: s.testNow,
	})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *repositoryBehaviourSuite) TestUpdateSessionStatusRejectsWaiting() {
	created := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)

	_, err := s.repo.UpdateSessionStatus(s.ctx, &UpdateSessionStatusInput{
		SessionID: created.ID,
		Status:    models.GameSessionStatusWaiting,
		Timestamp: s.testNow,
	})
	s.Error(err)
}

func (s *repositoryBehaviourSuite) TestPing() {
	s.NoError(s.repo.Ping(s.ctx))
}
