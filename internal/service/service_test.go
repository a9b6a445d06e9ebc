package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmcamacho/auth-portal/internal/apperr"
	"github.com/jmcamacho/auth-portal/internal/auth"
	"github.com/jmcamacho/auth-portal/internal/config"
	"github.com/jmcamacho/auth-portal/internal/integrations/soapdir"
	"github.com/jmcamacho/auth-portal/internal/repository"
	"github.com/jmcamacho/auth-portal/internal/txlog"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc *Service
	cfg *config.Config
}

func newFixture(t *testing.T, usersJSON string, soapURL string) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	if err := os.WriteFile(usersPath, []byte(usersJSON), 0o600); err != nil {
		t.Fatalf("failed to write users fixture: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		UsersFile:   usersPath,
		ImageDir:    filepath.Join(dir, "images"),
		AltImageDir: filepath.Join(dir, "alt-images"),
		LogDir:      filepath.Join(dir, "logs"),
		SOAPAuthURL: soapURL,
	}

	tx, err := txlog.New(log, cfg.LogDir)
	if err != nil {
		t.Fatalf("failed to build transaction logger: %v", err)
	}
	t.Cleanup(func() { tx.Close() })

	repo := repository.NewRepository(cfg.UsersFile, log)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	var soap *soapdir.Client
	if soapURL != "" {
		soap = soapdir.NewClient(cfg, log)
	}
	return &fixture{
		svc: NewService(repo, tokens, soap, tx, log, cfg),
		cfg: cfg,
	}
}

func usersJSON(t *testing.T, passwordHash string) string {
	t.Helper()
	hashField := ""
	if passwordHash != "" {
		hashField = `"passwordHash": "` + passwordHash + `",`
	}
	return `{"users":[{"username":"juan.perez",` + hashField + `"response":{"resultCode":200,"firstName":"Juan","lastName":"Pérez","age":25,"profilePhoto":"/resources/images/avatar_1.png","video":"https://example.com/v1"}}]}`
}

func TestAuthenticateSuccess(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	result, err := f.svc.Authenticate(context.Background(), "juan.perez", "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token.Token == "" {
		t.Error("expected a token")
	}
	if result.Token.Type != "Bearer" {
		t.Errorf("expected Bearer type, got %q", result.Token.Type)
	}
	if result.UserInformation.FirstName != "Juan" {
		t.Errorf("unexpected profile: %+v", result.UserInformation)
	}

	tokens := auth.NewTokenService(f.cfg.JWTSecret, f.cfg.TokenTTL)
	claims, err := tokens.Verify(result.Token.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.Username != "juan.perez" {
		t.Errorf("unexpected token subject: %q", claims.Username)
	}
}

func TestAuthenticatePreservesUsernameCase(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	result, err := f.svc.Authenticate(context.Background(), "Juan.Perez", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokens := auth.NewTokenService(f.cfg.JWTSecret, f.cfg.TokenTTL)
	claims, err := tokens.Verify(result.Token.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.Username != "Juan.Perez" {
		t.Errorf("expected submitted casing in claims, got %q", claims.Username)
	}
}

func TestAuthenticateEmptyUsername(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	_, err := f.svc.Authenticate(context.Background(), "", "x")
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != "BAD_REQUEST" {
		t.Fatalf("expected BAD_REQUEST, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	_, err := f.svc.Authenticate(context.Background(), "nobody", "x")
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != "RESOURCE_NOT_FOUND" {
		t.Fatalf("expected RESOURCE_NOT_FOUND, got %v", err)
	}
	if appErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", appErr.Status)
	}
}

func TestAuthenticateVerifiesPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	f := newFixture(t, usersJSON(t, string(hash)), "")

	if _, err := f.svc.Authenticate(context.Background(), "juan.perez", "hunter2"); err != nil {
		t.Fatalf("expected correct password to authenticate, got %v", err)
	}

	_, err = f.svc.Authenticate(context.Background(), "juan.perez", "wrong")
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED for wrong password, got %v", err)
	}
}

func TestAuthenticateInlinesProfilePhoto(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	png := []byte{0x89, 'P', 'N', 'G'}
	if err := os.MkdirAll(f.cfg.ImageDir, 0o755); err != nil {
		t.Fatalf("failed to create image dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(f.cfg.ImageDir, "avatar_1.png"), png, 0o600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	result, err := f.svc.Authenticate(context.Background(), "juan.perez", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	if result.UserInformation.ProfilePhoto != want {
		t.Errorf("expected inlined photo, got %q", result.UserInformation.ProfilePhoto)
	}
}

func TestAuthenticateFallsBackToAltImageDir(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	png := []byte{0x89, 'P', 'N', 'G'}
	if err := os.MkdirAll(f.cfg.AltImageDir, 0o755); err != nil {
		t.Fatalf("failed to create alt image dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(f.cfg.AltImageDir, "avatar_1.png"), png, 0o600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	result, err := f.svc.Authenticate(context.Background(), "juan.perez", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.UserInformation.ProfilePhoto, "data:image/png;base64,") {
		t.Errorf("expected inlined photo from alternate dir, got %q", result.UserInformation.ProfilePhoto)
	}
}

func TestAuthenticateKeepsReferenceWhenPhotoMissing(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	result, err := f.svc.Authenticate(context.Background(), "juan.perez", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UserInformation.ProfilePhoto != "/resources/images/avatar_1.png" {
		t.Errorf("expected original reference, got %q", result.UserInformation.ProfilePhoto)
	}
}

func TestAuthenticateSoapProfileWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/soap+xml; charset=utf-8")
		io.WriteString(w, `<?xml version="1.0" encoding="utf-8"?>
<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
  <soap12:Body>
    <BackendResponse xmlns="http://backend.auth/">
      <resultCode>200</resultCode>
      <firstName>Juan Carlos</firstName>
      <lastName>Pérez Soto</lastName>
      <age>26</age>
      <profilePhoto></profilePhoto>
      <video>https://backend.example.com/v9</video>
    </BackendResponse>
  </soap12:Body>
</soap12:Envelope>`)
	}))
	defer srv.Close()

	f := newFixture(t, usersJSON(t, ""), srv.URL)

	result, err := f.svc.Authenticate(context.Background(), "juan.perez", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UserInformation.FirstName != "Juan Carlos" || result.UserInformation.Age != 26 {
		t.Errorf("expected backend profile, got %+v", result.UserInformation)
	}
}

func TestAuthenticateSoapRejectionPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := newFixture(t, usersJSON(t, ""), srv.URL)

	_, err := f.svc.Authenticate(context.Background(), "juan.perez", "x")
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED from backend rejection, got %v", err)
	}
}

func TestAuthenticateSoapOutageFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := newFixture(t, usersJSON(t, ""), srv.URL)

	result, err := f.svc.Authenticate(context.Background(), "juan.perez", "x")
	if err != nil {
		t.Fatalf("expected fallback to directory profile, got %v", err)
	}
	if result.UserInformation.FirstName != "Juan" {
		t.Errorf("expected directory profile, got %+v", result.UserInformation)
	}
}

func TestListUsers(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	users, err := f.svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[0].Username != "juan.perez" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestAuthenticateTokenFailure(t *testing.T) {
	f := newFixture(t, usersJSON(t, ""), "")

	f.svc.issueTokenFn = func(ctx context.Context, username string) (string, error) {
		return "", errors.New("signing failed")
	}
	_, err := f.svc.Authenticate(context.Background(), "juan.perez", "x")
	if err == nil || !strings.Contains(err.Error(), "failed to generate token") {
		t.Fatalf("expected wrapped token error, got %v", err)
	}
	if apperr.From(err) != nil {
		t.Errorf("expected a non-domain error, got %v", err)
	}
}
