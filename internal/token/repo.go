package token

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var errRotated = errors.New("refresh token already rotated")

// RefreshTokenDTO carries the necessary fields to persist a refresh token record.
type RefreshTokenDTO struct {
	PersonID  int64
	TokenHash string
	ExpiresAt time.Time
	UserAgent string
	IP        string
	DeviceID  string
}

// RefreshTokenRecord is a stored refresh token. Rotated tokens keep a link to
// their successor so a replayed token can revoke the whole chain.
type RefreshTokenRecord struct {
	ID         string
	PersonID   int64
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	RotatedAt  *time.Time
	ReplacedBy string
	UserAgent  string
	IP         string
	DeviceID   string
}

func (r *RefreshTokenRecord) Active(now time.Time) bool {
	return r.RevokedAt == nil && r.RotatedAt == nil && r.ExpiresAt.After(now)
}

type RefreshTokenRepo interface {
	Create(ctx context.Context, dto RefreshTokenDTO) (string, error)
	RevokeByID(ctx context.Context, id string) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error)
	RotateCreateNext(ctx context.Context, oldID string, dto RefreshTokenDTO) (string, error)
	MarkReuseAndRevokeChain(ctx context.Context, id string) error
}

type refreshTokenRepo struct {
	mu     sync.Mutex
	byID   map[string]*RefreshTokenRecord
	byHash map[string]string
	newID  func() string
	logger *zap.Logger
}

func NewRefreshTokenRepo(logger *zap.Logger) RefreshTokenRepo {
	return &refreshTokenRepo{
		byID:   make(map[string]*RefreshTokenRecord),
		byHash: make(map[string]string),
		newID:  randomID,
		logger: logger,
	}
}

func (r *refreshTokenRepo) Create(ctx context.Context, dto RefreshTokenDTO) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(dto), nil
}

func (r *refreshTokenRepo) insert(dto RefreshTokenDTO) string {
	rec := &RefreshTokenRecord{
		ID:        r.newID(),
		PersonID:  dto.PersonID,
		TokenHash: dto.TokenHash,
		ExpiresAt: dto.ExpiresAt,
		UserAgent: dto.UserAgent,
		IP:        dto.IP,
		DeviceID:  dto.DeviceID,
	}
	r.byID[rec.ID] = rec
	r.byHash[rec.TokenHash] = rec.ID
	return rec.ID
}

func (r *refreshTokenRepo) RevokeByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.RevokedAt != nil {
		// no-op if already revoked or not found
		r.logger.Debug("no refresh token revoked (not found or already revoked)", zap.String("id", id))
		return nil
	}
	now := time.Now().UTC()
	rec.RevokedAt = &now
	return nil
}

// FindByHash returns nil, nil for an unknown hash. Inactive records are
// returned as well so callers can detect reuse.
func (r *refreshTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byHash[tokenHash]
	if !ok {
		return nil, nil
	}
	rec := *r.byID[id]
	return &rec, nil
}

// RotateCreateNext performs rotation: inserts a new token record and marks the old as rotated linking replaced_by.
func (r *refreshTokenRepo) RotateCreateNext(ctx context.Context, oldID string, dto RefreshTokenDTO) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[oldID]
	if !ok || old.RotatedAt != nil || old.RevokedAt != nil {
		r.logger.Warn("refresh token rotation lost race", zap.String("id", oldID))
		return "", errRotated
	}
	newID := r.insert(dto)
	now := time.Now().UTC()
	old.RotatedAt = &now
	old.ReplacedBy = newID
	return newID, nil
}

// MarkReuseAndRevokeChain revokes the token and every successor it was rotated into.
func (r *refreshTokenRepo) MarkReuseAndRevokeChain(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for id != "" {
		rec, ok := r.byID[id]
		if !ok {
			break
		}
		if rec.RevokedAt == nil {
			rec.RevokedAt = &now
		}
		id = rec.ReplacedBy
	}
	return nil
}
