// Package services contains server-side business logic. This file implements
// AppService, the tenant registry: admin management of apps and their bearer
// tokens, and authentication of app requests.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/dbx"
	"github.com/Antoney20/archives/internal/logging"
	"github.com/Antoney20/archives/internal/server/auth"
	"github.com/Antoney20/archives/internal/server/models"
	"github.com/Antoney20/archives/internal/server/repositories/apps"
	"github.com/Antoney20/archives/internal/server/repositories/repomanager"
)

const (
	maxAppNameLength = 100
	maxTokenAttempts = 5
)

// newAppToken is a seam for injecting token collisions in tests.
var newAppToken = auth.NewAppToken

// now is the clock for created/uploaded timestamps.
var now = func() time.Time { return time.Now().UTC() }

// dummyDigest is compared against when an app name is unknown so that
// authentication does the same work either way.
var dummyDigest = auth.HashToken("")

type AppService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAppService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AppService {
	return &AppService{db: db, repomanager: m, logger: logger.With("module", "apps")}
}

// Register creates an active app named name and returns it with its token.
// The token is not recoverable afterwards.
func (s *AppService) Register(ctx context.Context, role auth.Role, name string) (*models.App, string, error) {
	if !role.IsAdmin() {
		return nil, "", common.ErrorForbidden
	}
	name, err := normalizeAppName(name)
	if err != nil {
		return nil, "", err
	}

	var (
		app   *models.App
		token string
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Apps(tx)

		_, err := repo.GetByName(ctx, name)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return internalError("lookup app", err)
		}

		var hash []byte
		token, hash, err = s.uniqueToken(ctx, repo)
		if err != nil {
			return err
		}

		app, err = repo.Create(ctx, &models.App{Name: name, TokenHash: hash, IsActive: true, CreatedAt: now()})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return internalError("create app", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "app registered", "app", app.Name, "id", app.ID)
	return app, token, nil
}

// RegenerateToken replaces the app's token. The previous token stops working
// as soon as this returns.
func (s *AppService) RegenerateToken(ctx context.Context, role auth.Role, name string) (*models.App, string, error) {
	if !role.IsAdmin() {
		return nil, "", common.ErrorForbidden
	}
	name = strings.TrimSpace(name)

	var (
		app   *models.App
		token string
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Apps(tx)

		var err error
		app, err = repo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return internalError("lookup app", err)
		}

		var hash []byte
		token, hash, err = s.uniqueToken(ctx, repo)
		if err != nil {
			return err
		}
		if err := repo.UpdateTokenHash(ctx, app.ID, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return internalError("update token", err)
		}
		app.TokenHash = hash
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "app token regenerated", "app", app.Name)
	return app, token, nil
}

// SetActive sets the app's active flag. Files are left untouched.
func (s *AppService) SetActive(ctx context.Context, role auth.Role, name string, active bool) (*models.App, error) {
	if !role.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	app, err := s.repomanager.Apps(s.db).SetActive(ctx, strings.TrimSpace(name), active)
	if err != nil {
		return nil, classify("set active", err)
	}
	s.logger.Info(ctx, "app activity changed", "app", app.Name, "is_active", app.IsActive)
	return app, nil
}

// Toggle flips the app's active flag.
func (s *AppService) Toggle(ctx context.Context, role auth.Role, name string) (*models.App, error) {
	if !role.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	app, err := s.repomanager.Apps(s.db).Toggle(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, classify("toggle app", err)
	}
	s.logger.Info(ctx, "app activity changed", "app", app.Name, "is_active", app.IsActive)
	return app, nil
}

func (s *AppService) List(ctx context.Context, role auth.Role) ([]*models.App, error) {
	if !role.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	list, err := s.repomanager.Apps(s.db).List(ctx)
	if err != nil {
		return nil, internalError("list apps", err)
	}
	return list, nil
}

// Authenticate returns the app only when name exists, token matches and the
// app is active. Every credential failure is common.ErrorUnauthorized.
func (s *AppService) Authenticate(ctx context.Context, name, token string) (*models.App, error) {
	if name == "" || token == "" {
		return nil, common.ErrorUnauthorized
	}

	app, err := s.repomanager.Apps(s.db).GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.TokenMatches(token, dummyDigest)
			return nil, common.ErrorUnauthorized
		}
		return nil, internalError("lookup app", err)
	}

	if !auth.TokenMatches(token, app.TokenHash) || !app.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return app, nil
}

// uniqueToken draws tokens until one has a digest not yet stored.
func (s *AppService) uniqueToken(ctx context.Context, repo apps.Repository) (string, []byte, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := newAppToken()
		if err != nil {
			return "", nil, internalError("generate token", err)
		}
		hash := auth.HashToken(token)

		exists, err := repo.TokenHashExists(ctx, hash)
		if err != nil {
			return "", nil, internalError("check token", err)
		}
		if !exists {
			return token, hash, nil
		}
		s.logger.Warn(ctx, "token collision, retrying", "attempt", attempt)
	}
	return "", nil, fmt.Errorf("%w: no unique token after %d attempts", common.ErrorInternal, maxTokenAttempts)
}

func normalizeAppName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: name is required", common.ErrorInvalidInput)
	case utf8.RuneCountInString(name) > maxAppNameLength:
		return "", fmt.Errorf("%w: name is longer than %d characters", common.ErrorInvalidInput, maxAppNameLength)
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return "", fmt.Errorf("%w: name must be usable as a directory name", common.ErrorInvalidInput)
	}
	return name, nil
}

// classify passes not-found through and turns anything else into an
// internal error.
func classify(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return internalError(op, err)
}

func internalError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrorInternal, err)
}
