// Package service orchestrates authentication: input validation,
// directory lookup, token issuance and profile assembly.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmcamacho/auth-portal/internal/apperr"
	"github.com/jmcamacho/auth-portal/internal/auth"
	"github.com/jmcamacho/auth-portal/internal/config"
	"github.com/jmcamacho/auth-portal/internal/integrations/soapdir"
	"github.com/jmcamacho/auth-portal/internal/models"
	"github.com/jmcamacho/auth-portal/internal/repository"
	"github.com/jmcamacho/auth-portal/internal/txlog"
	"github.com/jmcamacho/auth-portal/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service handles business logic. Every layer it calls into is wrapped
// with the transaction interceptor at construction time, so each
// request produces correlated start/outcome events per layer.
type Service struct {
	repo   *repository.Repository
	tokens *auth.TokenService
	soap   *soapdir.Client
	log    *logrus.Logger
	config *config.Config

	authenticateFn func(context.Context, models.LoginRequest) (*models.AuthResult, error)
	findUserFn     func(context.Context, string) (*models.User, error)
	issueTokenFn   func(context.Context, string) (string, error)
	soapProfileFn  func(context.Context, models.LoginRequest) (*models.Profile, error)
	listUsersFn    func(context.Context) ([]models.User, error)
}

// NewService initializes a new service. soap may be nil when no SOAP
// backend is configured.
func NewService(repo *repository.Repository, tokens *auth.TokenService, soap *soapdir.Client, tx *txlog.Logger, log *logrus.Logger, cfg *config.Config) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		soap:   soap,
		log:    log,
		config: cfg,
	}
	s.authenticateFn = txlog.Wrap(tx, "AuthService", "Authenticate", s.authenticate)
	s.findUserFn = txlog.Wrap(tx, "UserRepository", "FindByUsername", repo.FindByUsername)
	s.issueTokenFn = txlog.Wrap(tx, "TokenService", "Issue", func(ctx context.Context, username string) (string, error) {
		return tokens.Issue(username)
	})
	s.listUsersFn = txlog.Wrap0(tx, "UserRepository", "ListAll", repo.ListAll)
	if soap != nil {
		s.soapProfileFn = txlog.Wrap(tx, "SoapBackend", "Authenticate", func(ctx context.Context, req models.LoginRequest) (*models.Profile, error) {
			return soap.Authenticate(ctx, req.Username, req.Password)
		})
	}
	return s
}

// Authenticate validates the credentials and returns a bearer token
// with the user's profile.
//
// The reference system accepts the password without checking it
// against anything. That behavior is kept for records without a
// password hash so the shipped demo directory keeps working; records
// that carry a passwordHash are verified with bcrypt.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.AuthResult, error) {
	return s.authenticateFn(ctx, models.LoginRequest{Username: username, Password: password})
}

// ListUsers returns every record in the directory.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.listUsersFn(ctx)
}

func (s *Service) authenticate(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	if req.Username == "" {
		return nil, apperr.BadRequest("username is required")
	}

	user, err := s.findUserFn(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user", req.Username)
	}

	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			return nil, apperr.Unauthorized("invalid credentials")
		}
	}

	token, err := s.issueTokenFn(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	profile := user.Response
	if s.soapProfileFn != nil {
		p, soapErr := s.soapProfileFn(ctx, req)
		switch {
		case soapErr == nil:
			profile = *p
		case apperr.From(soapErr) != nil:
			return nil, soapErr
		default:
			// Transport failure: keep the directory profile.
			s.log.Warnf("SOAP backend unavailable, using directory profile: %v", soapErr)
		}
	}

	profile.ProfilePhoto = s.enrichPhoto(profile.ProfilePhoto)

	s.log.Infof("User logged in: %s", req.Username)
	return &models.AuthResult{
		Token:           models.TokenInfo{Token: token, Type: "Bearer"},
		UserInformation: profile,
	}, nil
}

// enrichPhoto inlines a filesystem photo reference as a data URI. The
// asset is looked up in two candidate directories; any failure leaves
// the original reference unchanged and never fails authentication.
func (s *Service) enrichPhoto(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:image") {
		return ref
	}
	base := filepath.Base(ref)
	for _, dir := range []string{s.config.ImageDir, s.config.AltImageDir} {
		data, err := utils.ImageToBase64(filepath.Join(dir, base))
		if err != nil {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(base), ".")
		if ext == "" {
			ext = "png"
		}
		return fmt.Sprintf("data:image/%s;base64,%s", ext, data)
	}
	s.log.Debugf("Profile photo %s not found in image directories, keeping reference", ref)
	return ref
}
