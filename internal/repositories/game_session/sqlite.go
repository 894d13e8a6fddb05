package game_session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KirkDiggler/teachcreate/internal/common/uuid"
	"github.com/KirkDiggler/teachcreate/internal/models"
	"github.com/KirkDiggler/teachcreate/internal/repositories/game_session/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const sessionColumns = `id, product_id, creator_id, join_code, status, settings, created_at, started_at, ended_at`

// SQLiteConfig holds configuration for the SQLite game session repository
type SQLiteConfig struct {
	// Path of the database file
	Path string

	// Optional ID source, defaults to random v4 UUIDs
	UUIDGenerator uuid.UUID
}

// sqliteRepository implements the Repository interface on a game_sessions table
type sqliteRepository struct {
	db   *sql.DB
	uuid uuid.UUID
}

// NewSQLite opens the database and applies embedded migrations
func NewSQLite(cfg *SQLiteConfig) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	dsn := "file:" + filepath.Clean(cfg.Path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var ids uuid.UUID = uuid.New()
	if cfg.UUIDGenerator != nil {
		ids = cfg.UUIDGenerator
	}

	return &sqliteRepository{
		db:   db,
		uuid: ids,
	}, nil
}

// Close closes the database handle
func (r *sqliteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CreateSession inserts one row; the UNIQUE join_code column rejects duplicates
func (r *sqliteRepository) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	session := &models.GameSession{
		ID:        r.uuid.NewUUID(),
		ProductID: input.ProductID,
		CreatorID: input.CreatorID,
		JoinCode:  input.JoinCode,
		Status:    input.Status,
		Settings:  input.Settings,
		CreatedAt: input.CreatedAt.UTC(),
	}

	settingsJSON, err := json.Marshal(session.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO game_sessions (id, product_id, creator_id, join_code, status, settings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.ProductID,
		session.CreatorID,
		session.JoinCode,
		string(session.Status),
		string(settingsJSON),
		session.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isJoinCodeConflict(err) {
			return nil, ErrJoinCodeConflict
		}
		return nil, fmt.Errorf("failed to insert game session: %w", err)
	}

	return &CreateSessionOutput{Session: session}, nil
}

// GetSession retrieves a session by ID
func (r *sqliteRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.GameSession, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM game_sessions WHERE id = ?`, input.SessionID)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return session, nil
}

// GetSessionByJoinCode retrieves the session holding a join code
func (r *sqliteRepository) GetSessionByJoinCode(ctx context.Context, input *GetSessionByJoinCodeInput) (*models.GameSession, error) {
	if input == nil || input.JoinCode == "" {
		return nil, errors.New("input and join code cannot be empty")
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM game_sessions WHERE join_code = ?`, input.JoinCode)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get game session by join code: %w", err)
	}
	return session, nil
}

// ListSessions retrieves a creator's sessions for a product, newest first
func (r *sqliteRepository) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	if input == nil || input.ProductID == "" || input.CreatorID == "" {
		return nil, errors.New("input, product ID and creator ID cannot be empty")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions
		 WHERE product_id = ? AND creator_id = ?
		 ORDER BY created_at DESC, id DESC`,
		input.ProductID,
		input.CreatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.GameSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game sessions: %w", err)
	}

	return &ListSessionsOutput{Sessions: sessions}, nil
}

// UpdateSessionStatus applies the transition in one conditional UPDATE
func (r *sqliteRepository) UpdateSessionStatus(ctx context.Context, input *UpdateSessionStatusInput) (*models.GameSession, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	column := "started_at"
	if input.Status == models.GameSessionStatusCompleted {
		column = "ended_at"
	}

	query := fmt.Sprintf(
		`UPDATE game_sessions SET status = ?, %s = ?
		 WHERE id = ? AND (? = '' OR status = ?)
		 RETURNING %s`,
		column, sessionColumns,
	)
	row := r.db.QueryRowContext(ctx, query,
		string(input.Status),
		input.Timestamp.UTC().UnixNano(),
		input.SessionID,
		string(input.ExpectedStatus),
		string(input.ExpectedStatus),
	)

	session, err := scanSession(row)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update game session: %w", err)
	}

	// Nothing matched: either the session is missing or its status differs
	current, err := r.GetSession(ctx, &GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: session is %s", ErrStatusMismatch, current.Status)
}

// Ping checks the database handle
func (r *sqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.GameSession, error) {
	var (
		session      models.GameSession
		status       string
		settingsJSON string
		createdAt    int64
		startedAt    sql.NullInt64
		endedAt      sql.NullInt64
	)

	err := row.Scan(
		&session.ID,
		&session.ProductID,
		&session.CreatorID,
		&session.JoinCode,
		&status,
		&settingsJSON,
		&createdAt,
		&startedAt,
		&endedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(settingsJSON), &session.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	session.Status = models.GameSessionStatus(status)
	session.CreatedAt = fromNanos(createdAt)
	if startedAt.Valid {
		t := fromNanos(startedAt.Int64)
		session.StartedAt = &t
	}
	if endedAt.Valid {
		t := fromNanos(endedAt.Int64)
		session.EndedAt = &t
	}

	return &session, nil
}

func fromNanos(value int64) time.Time {
	return time.Unix(0, value).UTC()
}

func isJoinCodeConflict(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
		return strings.Contains(sqliteErr.Error(), "game_sessions.join_code")
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "game_sessions.join_code")
}

// applyMigrations runs each embedded .sql file once, in name order
func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, file).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, file, time.Now().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}

	return nil
}
