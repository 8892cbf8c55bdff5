package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"clinicportal/internal/models"
	"clinicportal/internal/utils"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionTTL — окно неактивности: сессия молча исчезает, если между
	// запросами прошло больше.
	SessionTTL = 20 * time.Minute

	LockThreshold = 5
	LockDuration  = 30 * time.Second

	// счётчик неудач не живёт дольше этого окна (housekeeping)
	failCounterTTL = 15 * time.Minute
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Touch обновляет last_activity и продлевает TTL.
	Touch(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error

	// пер-ролевой счётчик неудачных входов + lockout
	FailLogin(ctx context.Context, role models.Role) (*models.LockState, error)
	LoginLocked(ctx context.Context, role models.Role) (*models.LockState, error)
	ResetFailures(ctx context.Context, role models.Role) error
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(id string) string     { return fmt.Sprintf("session:%s", id) }
func failKey(role models.Role) string { return fmt.Sprintf("login:fail:%s", role) }
func lockKey(role models.Role) string { return fmt.Sprintf("login:lock:%s", role) }

func (r *sessionRepository) Create(ctx context.Context, s *models.Session) error {
	id, err := utils.NewSessionID(32)
	if err != nil {
		return err
	}
	s.ID = id
	s.LastActivity = time.Now()
	return r.write(ctx, s)
}

func (r *sessionRepository) write(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to set session in Redis: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	s.ID = id
	return &s, nil
}

func (r *sessionRepository) Touch(ctx context.Context, s *models.Session) error {
	s.LastActivity = time.Now()
	return r.write(ctx, s)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FailLogin(ctx context.Context, role models.Role) (*models.LockState, error) {
	count, err := r.client.Incr(ctx, failKey(role)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to increment fail counter: %w", err)
	}
	if count == 1 {
		_ = r.client.Expire(ctx, failKey(role), failCounterTTL).Err()
	}

	state := &models.LockState{Role: role, FailCount: int(count)}
	if count >= LockThreshold {
		lockedUntil := time.Now().Add(LockDuration)
		if err := r.client.Set(ctx, lockKey(role),
			strconv.FormatInt(lockedUntil.Unix(), 10), LockDuration).Err(); err != nil {
			return nil, fmt.Errorf("failed to set lockout: %w", err)
		}
		_ = r.client.Del(ctx, failKey(role)).Err()
		state.LockedUntil = lockedUntil
	}
	return state, nil
}

func (r *sessionRepository) LoginLocked(ctx context.Context, role models.Role) (*models.LockState, error) {
	data, err := r.client.Get(ctx, lockKey(role)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lockout: %w", err)
	}
	unix, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lockout value: %w", err)
	}
	lockedUntil := time.Unix(unix, 0)
	if time.Now().After(lockedUntil) {
		// TTL ещё не успел убрать ключ
		return nil, nil
	}
	return &models.LockState{Role: role, LockedUntil: lockedUntil}, nil
}

func (r *sessionRepository) ResetFailures(ctx context.Context, role models.Role) error {
	if err := r.client.Del(ctx, failKey(role), lockKey(role)).Err(); err != nil {
		return fmt.Errorf("failed to reset fail counter: %w", err)
	}
	return nil
}
