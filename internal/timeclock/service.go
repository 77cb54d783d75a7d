package timeclock

import (
	"fmt"
	"sort"
	"strings"

	"punchclock/internal/model"
)

// Service is the time-accounting core. It coordinates the session state
// machine, aggregation, and the weekly rollover against the Store. All
// operations take the username explicitly; there is no ambient current user.
type Service struct {
	store  Store
	clock  Clock
	logger Logger
}

// NewService creates a Service with the provided dependencies.
func NewService(store Store, clock Clock, logger Logger) *Service {
	return &Service{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// CreateUser registers a new user. The name is case-sensitive and acts as
// the primary key across all collections.
func (s *Service) CreateUser(name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, validationErrorf("username is required")
	}

	users, err := s.store.LoadUsers()
	if err != nil {
		return model.User{}, fmt.Errorf("loading users: %w", err)
	}
	if _, ok := users[name]; ok {
		return model.User{}, fmt.Errorf("%q: %w", name, ErrUserExists)
	}

	u := model.User{Created: s.clock.Now()}
	if err := s.store.SaveUser(name, u); err != nil {
		return model.User{}, fmt.Errorf("saving user: %w", err)
	}

	s.logger.Info("user created", "user", name)
	return u, nil
}

// Users returns all known users, sorted by name.
func (s *Service) Users() ([]string, map[string]model.User, error) {
	users, err := s.store.LoadUsers()
	if err != nil {
		return nil, nil, fmt.Errorf("loading users: %w", err)
	}
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, users, nil
}

// ensureUser loads the user record, creating it on first use.
func (s *Service) ensureUser(name string) (model.User, error) {
	if strings.TrimSpace(name) == "" {
		return model.User{}, validationErrorf("username is required")
	}

	users, err := s.store.LoadUsers()
	if err != nil {
		return model.User{}, fmt.Errorf("loading users: %w", err)
	}
	if u, ok := users[name]; ok {
		return u, nil
	}

	u := model.User{Created: s.clock.Now()}
	if err := s.store.SaveUser(name, u); err != nil {
		return model.User{}, fmt.Errorf("saving user: %w", err)
	}
	s.logger.Info("user created on first use", "user", name)
	return u, nil
}
