package game_session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/teachcreate/internal/common/uuid"
	"github.com/KirkDiggler/teachcreate/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix   = "game_session:"
	joinCodeKeyPrefix  = "game_session:join_code:"
	productIndexPrefix = "game_session:product:"

	// Optimistic update attempts before giving up on a contended session
	maxWatchRetries = 3
)

// Config holds configuration for the Redis game session repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Optional ID source, defaults to random v4 UUIDs
	UUIDGenerator uuid.UUID
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	uuid   uuid.UUID
}

// NewRedis creates a new Redis-backed game session repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	var ids uuid.UUID = uuid.New()
	if cfg.UUIDGenerator != nil {
		ids = cfg.UUIDGenerator
	}

	return &redisRepository{
		client: cfg.RedisClient,
		uuid:   ids,
	}, nil
}

// validSessionID rejects IDs that would address another key family
func validSessionID(sessionID string) bool {
	return sessionID != "" && !strings.Contains(sessionID, ":")
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func joinCodeKey(joinCode string) string {
	return joinCodeKeyPrefix + joinCode
}

func productIndexKey(productID, creatorID string) string {
	return fmt.Sprintf("%s%s:creator:%s", productIndexPrefix, productID, creatorID)
}

// CreateSession claims the join code and stores the session record
func (r *redisRepository) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
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

	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game session: %w", err)
	}

	// The join code index doubles as the uniqueness constraint
	claimed, err := r.client.SetNX(ctx, joinCodeKey(session.JoinCode), session.ID, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim join code: %w", err)
	}
	if !claimed {
		return nil, ErrJoinCodeConflict
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), sessionJSON, 0)
		pipe.ZAdd(ctx, productIndexKey(session.ProductID, session.CreatorID), redis.Z{
			Score:  float64(session.CreatedAt.UnixNano()),
			Member: session.ID,
		})
		return nil
	})
	if err != nil {
		// Release the code so a retry can use it
		r.client.Del(ctx, joinCodeKey(session.JoinCode))
		return nil, fmt.Errorf("failed to save game session: %w", err)
	}

	return &CreateSessionOutput{Session: session}, nil
}

// GetSession retrieves a session by ID from Redis
func (r *redisRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.GameSession, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	if !validSessionID(input.SessionID) {
		return nil, ErrSessionNotFound
	}

	sessionJSON, err := r.client.Get(ctx, sessionKey(input.SessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}

	return decodeSession(sessionJSON)
}

// GetSessionByJoinCode resolves the join code index and loads the session
func (r *redisRepository) GetSessionByJoinCode(ctx context.Context, input *GetSessionByJoinCodeInput) (*models.GameSession, error) {
	if input == nil || input.JoinCode == "" {
		return nil, errors.New("input and join code cannot be empty")
	}

	sessionID, err := r.client.Get(ctx, joinCodeKey(input.JoinCode)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session ID for join code: %w", err)
	}

	return r.GetSession(ctx, &GetSessionInput{
		SessionID: sessionID,
	})
}

// ListSessions retrieves a creator's sessions for a product, newest first
func (r *redisRepository) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	if input == nil || input.ProductID == "" || input.CreatorID == "" {
		return nil, errors.New("input, product ID and creator ID cannot be empty")
	}

	sessionIDs, err := r.client.ZRevRange(ctx, productIndexKey(input.ProductID, input.CreatorID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game session IDs: %w", err)
	}

	if len(sessionIDs) == 0 {
		return &ListSessionsOutput{
			Sessions: []*models.GameSession{},
		}, nil
	}

	// Get all sessions in one round trip
	pipe := r.client.Pipeline()
	commands := make([]*redis.StringCmd, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		commands = append(commands, pipe.Get(ctx, sessionKey(sessionID)))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get game sessions: %w", err)
	}

	sessions := make([]*models.GameSession, 0, len(sessionIDs))
	for i, cmd := range commands {
		sessionJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Index entry without a record
				continue
			}
			return nil, fmt.Errorf("failed to get game session %s: %w", sessionIDs[i], err)
		}

		session, err := decodeSession(sessionJSON)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return &ListSessionsOutput{
		Sessions: sessions,
	}, nil
}

// UpdateSessionStatus rewrites the session under WATCH so a conditional
// update cannot race another writer
func (r *redisRepository) UpdateSessionStatus(ctx context.Context, input *UpdateSessionStatusInput) (*models.GameSession, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	if !validSessionID(input.SessionID) {
		return nil, ErrSessionNotFound
	}

	key := sessionKey(input.SessionID)
	var updated *models.GameSession

	txf := func(tx *redis.Tx) error {
		sessionJSON, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return ErrSessionNotFound
			}
			return err
		}

		session, err := decodeSession(sessionJSON)
		if err != nil {
			return err
		}

		if input.ExpectedStatus != "" && session.Status != input.ExpectedStatus {
			return fmt.Errorf("%w: session is %s", ErrStatusMismatch, session.Status)
		}

		applyStatus(session, input)

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal game session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrStatusMismatch):
			return nil, err
		default:
			return nil, fmt.Errorf("failed to update game session: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to update game session %s: %w", input.SessionID, redis.TxFailedErr)
}

// Ping checks the Redis connection
func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeSession(sessionJSON string) (*models.GameSession, error) {
	var session models.GameSession
	if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game session: %w", err)
	}
	return &session, nil
}
