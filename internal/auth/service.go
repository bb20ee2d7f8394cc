package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/resirent/internal/client"
	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
)

const (
	loginPath          = "login/"
	registerOwnerPath  = "register/owner/"
	registerRenterPath = "register/renter/"
)

// Doer is satisfied by *client.Client.
type Doer interface {
	Do(ctx context.Context, req *client.Request, out any) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*token.Claims, error)
	Logout(ctx context.Context) error
	Identity() *token.Claims
	RegisterRenter(ctx context.Context, reg RenterRegistration) (*RegisteredUser, error)
	RegisterOwner(ctx context.Context, reg OwnerRegistration) (*RegisteredUser, error)
}

type authService struct {
	api       Doer
	sessions  client.Sessions
	validator *validator.Validate
	logger    *zap.Logger
}

func NewAuthenticationService(api Doer, sessions client.Sessions, logger *zap.Logger) AuthService {
	return &authService{
		api:       api,
		sessions:  sessions,
		validator: httpx.NewValidator(),
		logger:    logger,
	}
}

// Login creates a session. The returned claims are nil when the API hands
// out an access token that cannot be decoded.
func (a *authService) Login(ctx context.Context, email, password string) (*token.Claims, error) {
	in := loginRequest{Email: email, Password: password}
	if err := a.validator.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	req, err := client.NewJSONRequest(http.MethodPost, loginPath, in)
	if err != nil {
		return nil, err
	}
	req.Credential = true

	var pair token.Pair
	if err := a.api.Do(ctx, req, &pair); err != nil {
		if client.IsUnauthorized(err) {
			a.logger.Info("login rejected")
			return nil, ErrInvalidCredentials
		}
		a.logger.Warn("login failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		a.logger.Error("login response without token pair")
		return nil, ErrLoginFailed
	}

	if err := a.sessions.Set(ctx, pair); err != nil {
		a.logger.Error("failed to store session", zap.Error(err))
		return nil, err
	}
	claims := a.sessions.Get().Claims
	if claims != nil {
		a.logger.Info("logged in",
			zap.Int64("user_id", claims.UserID),
			zap.String("role", string(claims.Role)),
		)
	}
	return claims, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		a.logger.Error("failed to clear session", zap.Error(err))
		return err
	}
	return nil
}

func (a *authService) Identity() *token.Claims {
	return a.sessions.Get().Claims
}

func (a *authService) RegisterRenter(ctx context.Context, reg RenterRegistration) (*RegisteredUser, error) {
	if err := a.validator.Struct(reg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	req, err := client.NewJSONRequest(http.MethodPost, registerRenterPath, reg)
	if err != nil {
		return nil, err
	}

	var out RegisteredUser
	if err := a.api.Do(ctx, req, &out); err != nil {
		a.logger.Warn("failed to register renter", zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (a *authService) RegisterOwner(ctx context.Context, reg OwnerRegistration) (*RegisteredUser, error) {
	if len(reg.IDFrontPhoto.Data) == 0 || len(reg.IDBackPhoto.Data) == 0 {
		return nil, ErrMissingIDPhotos
	}
	if err := a.validator.Struct(reg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	form := &client.Form{}
	form.Add("email", reg.Email)
	form.Add("username", reg.Username)
	form.Add("password", reg.Password)
	form.Add("first_name", reg.FirstName)
	form.Add("last_name", reg.LastName)
	form.Add("profile.address", reg.Address)
	form.Add("profile.phone_number", reg.PhoneNumber)
	form.Add("profile.residences_to_publish", strconv.Itoa(reg.ResidencesToPublish))
	form.AddFile("profile.id_front_photo", reg.IDFrontPhoto)
	form.AddFile("profile.id_back_photo", reg.IDBackPhoto)

	req, err := client.NewMultipartRequest(http.MethodPost, registerOwnerPath, form)
	if err != nil {
		return nil, err
	}

	var out RegisteredUser
	if err := a.api.Do(ctx, req, &out); err != nil {
		a.logger.Warn("failed to register owner", zap.Error(err))
		return nil, err
	}
	return &out, nil
}
