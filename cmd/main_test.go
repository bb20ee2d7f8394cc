package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mehmetcc/resirent/internal/config"
	"github.com/mehmetcc/resirent/internal/devapi"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(zap.NewNop())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func startDevAPI(t *testing.T) person.PersonRepo {
	t.Helper()
	logger := zap.NewNop()
	persons := person.NewPersonRepo(logger)
	tokens := token.NewTokenService(logger, token.NewRefreshTokenRepo(logger), persons, &config.JWTConfig{
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		JWTSecret:  "cli-secret",
		JWTIssuer:  "cli-test",
	})
	srv := httptest.NewServer(devapi.NewServer(logger, &config.DevServerConfig{}, persons, tokens).Handler())
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL+devapi.BasePath+"/")
	return persons
}

func TestWhoami_Anonymous(t *testing.T) {
	t.Setenv("SESSION_DRIVER", "memory")
	out, err := execute(t, "whoami")
	require.NoError(t, err)
	require.Equal(t, "anonymous\n", out)
}

func TestSessionSurvivesAcrossCommands(t *testing.T) {
	persons := startDevAPI(t)
	t.Setenv("SESSION_DRIVER", "sqlite")
	t.Setenv("SESSION_DSN", "file:"+filepath.Join(t.TempDir(), "session.db"))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = persons.Create(context.Background(), &person.PersonDTO{
		Email:     "owner@example.com",
		Username:  "owner",
		Password:  string(hash),
		FirstName: "Omer",
		LastName:  "Owner",
		Profile: &person.OwnerProfile{
			ResidencesToPublish: 2,
			AccountStatus:       person.AccountActive,
		},
	})
	require.NoError(t, err)

	_, err = execute(t, "login", "--email", "owner@example.com", "--password", "wrong-password")
	require.ErrorContains(t, err, "no active account")

	out, err := execute(t, "login", "--email", "owner@example.com", "--password", "password123")
	require.NoError(t, err)
	require.Contains(t, out, "role: owner")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Omer Owner <owner@example.com>")
	require.Contains(t, out, "listing limit: 2")

	out, err = execute(t, "dashboard")
	require.NoError(t, err)
	require.Contains(t, out, "Listings (0 of 2)")

	_, err = execute(t, "logout")
	require.NoError(t, err)
	out, err = execute(t, "whoami")
	require.NoError(t, err)
	require.Equal(t, "anonymous\n", out)

	_, err = execute(t, "dashboard")
	require.ErrorContains(t, err, "not signed in")
}
