package auth

import "crypto/subtle"

// User represents an authenticated user identity
type User struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// UserStore authenticates users by credentials and resolves them by ID.
type UserStore interface {
	Authenticate(username, password string) (*User, bool)
	FindByID(id string) (*User, bool)
}

type staticUser struct {
	user     User
	password string
}

// StaticUserStore is an in-memory user store seeded with fixed accounts.
// It stands in for a real identity backend.
type StaticUserStore struct {
	users map[string]staticUser
}

// NewStaticUserStore creates the default in-memory user store
func NewStaticUserStore() *StaticUserStore {
	return &StaticUserStore{
		users: map[string]staticUser{
			"admin": {
				user: User{
					ID:       "1",
					Username: "admin",
					Email:    "admin@restaurantes.com",
					FullName: "Administrator",
					Role:     "admin",
					IsActive: true,
				},
				password: "admin123",
			},
			"maria": {
				user: User{
					ID:       "2",
					Username: "maria",
					Email:    "maria@restaurantes.com",
					FullName: "Maria Silva",
					Role:     "analyst",
					IsActive: true,
				},
				password: "maria123",
			},
		},
	}
}

// Authenticate checks the credentials and returns the matching user
func (s *StaticUserStore) Authenticate(username, password string) (*User, bool) {
	entry, ok := s.users[username]
	if !ok || !entry.user.IsActive {
		return nil, false
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(entry.password)) != 1 {
		return nil, false
	}
	u := entry.user
	return &u, true
}

// FindByID resolves a user by its identifier
func (s *StaticUserStore) FindByID(id string) (*User, bool) {
	for _, entry := range s.users {
		if entry.user.ID == id {
			u := entry.user
			return &u, true
		}
	}
	return nil, false
}

var _ UserStore = (*StaticUserStore)(nil)
