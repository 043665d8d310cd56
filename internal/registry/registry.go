// Package registry implements the allowed-users access list. The registry is
// persisted as a flat JSON file and is re-read on every call so that manual
// edits to the file take effect immediately. Mutations rewrite the whole file;
// concurrent writers can race and lose updates. That race is accepted: admin
// mutations are rare and the bot handles updates sequentially.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

var (
	// ErrDuplicate is returned when registering an already-known telegram id.
	ErrDuplicate = errors.New("user already registered")
	// ErrNotFound is returned when the target telegram id is not registered.
	ErrNotFound = errors.New("user not found")
	// ErrLastAdmin is returned when a mutation would leave the registry
	// without any admin.
	ErrLastAdmin = errors.New("cannot demote or remove the last admin")
)

// Store persists the full user list as one unit.
type Store interface {
	Load() ([]models.AllowedUser, error)
	Save(users []models.AllowedUser) error
}

// Registry exposes the access-control operations on top of a Store.
type Registry struct {
	store Store
}

// New creates a registry backed by the given store.
func New(store Store) *Registry {
	return &Registry{store: store}
}

// load degrades to an empty list when the store cannot be read, matching the
// original flat-file behavior: an unreadable registry locks everyone out
// instead of failing the whole turn.
func (r *Registry) load() []models.AllowedUser {
	users, err := r.store.Load()
	if err != nil {
		log.Printf("[REGISTRY] load failed, treating registry as empty: %v", err)
		return nil
	}
	return users
}

// IsAuthorized reports whether the telegram id is registered with any role.
func (r *Registry) IsAuthorized(telegramID string) bool {
	for _, u := range r.load() {
		if u.TelegramID == telegramID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the telegram id is registered with the admin role.
func (r *Registry) IsAdmin(telegramID string) bool {
	for _, u := range r.load() {
		if u.TelegramID == telegramID && u.IsAdmin() {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no user has ever been registered. The first caller
// after bootstrap becomes admin through this check.
func (r *Registry) IsEmpty() bool {
	return len(r.load()) == 0
}

// Register adds a new user. It fails with ErrDuplicate when the telegram id
// is already present.
func (r *Registry) Register(name, nik, telegramID string, role models.Role) error {
	users := r.load()
	for _, u := range users {
		if u.TelegramID == telegramID {
			return ErrDuplicate
		}
	}
	users = append(users, models.AllowedUser{
		Name:       name,
		NIK:        nik,
		TelegramID: telegramID,
		Role:       role,
	})
	if err := r.store.Save(users); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// Remove deletes a user. Removing the only remaining admin is refused so the
// registry can never end up admin-less.
func (r *Registry) Remove(telegramID string) error {
	users := r.load()
	idx := -1
	for i, u := range users {
		if u.TelegramID == telegramID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	if users[idx].IsAdmin() && r.adminCount(users) == 1 {
		return ErrLastAdmin
	}
	users = append(users[:idx], users[idx+1:]...)
	if err := r.store.Save(users); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// Promote raises a user to admin.
func (r *Registry) Promote(telegramID string) error {
	return r.setRole(telegramID, models.RoleAdmin)
}

// Dismiss lowers an admin back to a regular user. Dismissing the only
// remaining admin is refused.
func (r *Registry) Dismiss(telegramID string) error {
	users := r.load()
	for _, u := range users {
		if u.TelegramID == telegramID && u.IsAdmin() && r.adminCount(users) == 1 {
			return ErrLastAdmin
		}
	}
	return r.setRole(telegramID, models.RoleUser)
}

// ListAll returns every registered user in stored order.
func (r *Registry) ListAll() ([]models.AllowedUser, error) {
	return r.store.Load()
}

func (r *Registry) setRole(telegramID string, role models.Role) error {
	users := r.load()
	updated := false
	for i := range users {
		if users[i].TelegramID == telegramID {
			users[i].Role = role
			updated = true
			break
		}
	}
	if !updated {
		return ErrNotFound
	}
	if err := r.store.Save(users); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

func (r *Registry) adminCount(users []models.AllowedUser) int {
	n := 0
	for _, u := range users {
		if u.IsAdmin() {
			n++
		}
	}
	return n
}

// FileStore keeps the registry in a JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full user list. A missing file is an empty registry.
func (s *FileStore) Load() ([]models.AllowedUser, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var users []models.AllowedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return users, nil
}

// Save writes the full user list, replacing the previous contents.
func (s *FileStore) Save(users []models.AllowedUser) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	users []models.AllowedUser
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns a copy of the stored users.
func (s *MemStore) Load() ([]models.AllowedUser, error) {
	out := make([]models.AllowedUser, len(s.users))
	copy(out, s.users)
	return out, nil
}

// Save replaces the stored users.
func (s *MemStore) Save(users []models.AllowedUser) error {
	s.users = make([]models.AllowedUser, len(users))
	copy(s.users, users)
	return nil
}
