package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/resirent/internal/config"
	"github.com/mehmetcc/resirent/internal/person"
	"go.uber.org/zap"
)

// PersonLookup resolves the subject of a refresh token so refreshed access
// tokens carry current role and entitlement.
type PersonLookup interface {
	FindByID(ctx context.Context, id int64) (*person.Person, error)
}

type TokenService interface {
	Issue(ctx context.Context, p *person.Person, meta IssueMeta) (*IssueResult, error)
	ValidateAccess(ctx context.Context, tokenString string) (*Claims, error)
	Refresh(ctx context.Context, presentedRefresh string, meta IssueMeta) (*IssueResult, error)
}

type IssueResult struct {
	Pair             Pair
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type IssueMeta struct {
	UserAgent string
	IP        string
	DeviceID  string
}

type tokenService struct {
	logger      *zap.Logger
	refreshRepo RefreshTokenRepo
	persons     PersonLookup
	cfg         *config.JWTConfig
	signingAlg  jwt.SigningMethod
	now         func() time.Time
}

func NewTokenService(logger *zap.Logger, refreshRepo RefreshTokenRepo, persons PersonLookup, cfg *config.JWTConfig) TokenService {
	return &tokenService{
		logger:      logger,
		refreshRepo: refreshRepo,
		persons:     persons,
		cfg:         cfg,
		signingAlg:  jwt.SigningMethodHS256,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *tokenService) Issue(ctx context.Context, p *person.Person, meta IssueMeta) (*IssueResult, error) {
	issuedAt := s.now()
	accessToken, accessExp, err := s.signAccess(p, issuedAt)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		s.logger.Error("failed to generate refresh token", zap.Error(err))
		return nil, err
	}
	refreshExp := issuedAt.Add(s.cfg.RefreshTTL)

	_, err = s.refreshRepo.Create(ctx, RefreshTokenDTO{
		PersonID:  p.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: refreshExp,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		DeviceID:  meta.DeviceID,
	})
	if err != nil {
		return nil, err
	}

	return &IssueResult{
		Pair:             Pair{Access: accessToken, Refresh: refreshToken},
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *tokenService) ValidateAccess(ctx context.Context, tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.signingAlg.Alg()}),
		jwt.WithIssuer(s.cfg.JWTIssuer),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.TokenType != TypeAccess {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Refresh validates the presented refresh token, rotates it, and returns new tokens.
// Presenting an already rotated token revokes the chain it started.
func (s *tokenService) Refresh(ctx context.Context, presentedRefresh string, meta IssueMeta) (*IssueResult, error) {
	if presentedRefresh == "" {
		return nil, ErrMissingRefreshToken
	}
	now := s.now()
	rec, err := s.refreshRepo.FindByHash(ctx, hashToken(presentedRefresh))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInvalidRefreshToken
	}
	if rec.RotatedAt != nil {
		s.logger.Warn("rotated refresh token presented, revoking chain",
			zap.String("id", rec.ID),
			zap.Int64("person_id", rec.PersonID),
		)
		if err := s.refreshRepo.MarkReuseAndRevokeChain(ctx, rec.ID); err != nil {
			return nil, err
		}
		return nil, ErrRefreshTokenReused
	}
	if !rec.Active(now) {
		return nil, ErrInvalidRefreshToken
	}

	p, err := s.persons.FindByID(ctx, rec.PersonID)
	if err != nil {
		s.logger.Warn("refresh token subject lookup failed", zap.Int64("person_id", rec.PersonID), zap.Error(err))
		return nil, ErrInvalidRefreshToken
	}

	accessToken, accessExp, err := s.signAccess(p, now)
	if err != nil {
		return nil, err
	}

	newRefresh, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	refreshExp := now.Add(s.cfg.RefreshTTL)

	_, err = s.refreshRepo.RotateCreateNext(ctx, rec.ID, RefreshTokenDTO{
		PersonID:  rec.PersonID,
		TokenHash: hashToken(newRefresh),
		ExpiresAt: refreshExp,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		DeviceID:  meta.DeviceID,
	})
	if errors.Is(err, errRotated) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	return &IssueResult{
		Pair:             Pair{Access: accessToken, Refresh: newRefresh},
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *tokenService) signAccess(p *person.Person, issuedAt time.Time) (string, time.Time, error) {
	accessExp := issuedAt.Add(s.cfg.AccessTTL)
	claims := &Claims{
		UserID:              p.ID,
		Email:               p.Email,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Role:                p.Role(),
		AccountStatus:       p.AccountStatus(),
		ResidencesToPublish: p.ResidencesToPublish(),
		TokenType:           TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWTIssuer,
			Subject:   fmt.Sprint(p.ID),
			ExpiresAt: jwt.NewNumericDate(accessExp),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        randomID(),
		},
	}

	jwtToken := jwt.NewWithClaims(s.signingAlg, claims)
	if s.cfg.JWTKID != "" {
		jwtToken.Header["kid"] = s.cfg.JWTKID
	}
	signed, err := jwtToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, accessExp, nil
}

func randomID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(str string) string {
	h := sha256.Sum256([]byte(str))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
