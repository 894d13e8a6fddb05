package game_session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SQLiteRepositoryTestSuite struct {
	repositoryBehaviourSuite
	path   string
	sqlite *sqliteRepository
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "sessions.db")

	repo, err := NewSQLite(&SQLiteConfig{Path: s.path})
	s.Require().NoError(err)
	s.sqlite = repo
	s.setupBehaviour(repo)
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	s.Require().NoError(s.sqlite.Close())
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func (s *SQLiteRepositoryTestSuite) TestReopenKeepsDataAndSkipsAppliedMigrations() {
	created := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)
	s.Require().NoError(s.sqlite.Close())

	reopened, err := NewSQLite(&SQLiteConfig{Path: s.path})
	s.Require().NoError(err)
	s.sqlite = reopened

	retrieved, err := reopened.GetSession(s.ctx, &GetSessionInput{SessionID: created.ID})
	s.Require().NoError(err)
	s.Equal("AB12CD", retrieved.JoinCode)

	var applied int
	s.Require().NoError(reopened.db.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&applied))
	s.Equal(1, applied)
}

func (s *SQLiteRepositoryTestSuite) TestSettingsStoredAsJSON() {
	created := s.createSession("product-1", "creator-1", "AB12CD", s.testNow)

	var settings string
	s.Require().NoError(s.sqlite.db.QueryRow(`SELECT settings FROM game_sessions WHERE id = ?`, created.ID).Scan(&settings))
	s.JSONEq(`{"maxPlayers":4}`, settings)
}

func (s *SQLiteRepositoryTestSuite) TestNewSQLiteValidation() {
	_, err := NewSQLite(nil)
	s.Error(err)

	_, err = NewSQLite(&SQLiteConfig{Path: "  "})
	s.Error(err)
}
