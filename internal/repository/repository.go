// Package repository provides the file-backed user directory.
package repository

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/jmcamacho/auth-portal/internal/models"
	"github.com/sirupsen/logrus"
)

// usersFile is the on-disk shape of the directory.
type usersFile struct {
	Users []models.User `json:"users"`
}

// Repository reads user records from a JSON file. The file is read
// fresh on every lookup so edits take effect without a restart.
type Repository struct {
	path string
	log  *logrus.Logger
}

// NewRepository initializes a new repository over the given file path.
func NewRepository(path string, log *logrus.Logger) *Repository {
	return &Repository{path: path, log: log}
}

// FindByUsername retrieves a user by case-insensitive exact match.
// Returns (nil, nil) when the user is absent or the file cannot be
// read; read failures are logged, not propagated. The authentication
// path converts absence into a 404 domain error.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := r.loadUsers()
	if err != nil {
		r.log.Errorf("Failed to load users file: %v", err)
		return nil, nil
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// ListAll returns every user in the directory. On read failure the
// error is logged and an empty slice is returned.
func (r *Repository) ListAll(ctx context.Context) ([]models.User, error) {
	users, err := r.loadUsers()
	if err != nil {
		r.log.Errorf("Failed to load users file: %v", err)
		return []models.User{}, nil
	}
	return users, nil
}

func (r *Repository) loadUsers() ([]models.User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	var f usersFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Users, nil
}
