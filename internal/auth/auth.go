// Package auth holds the single configured (user, password) pair and
// answers AUTH credential checks.
package auth

import "sync"

// Service guards a single username/password pair under a mutex. The
// lock is not strictly needed for a pair this small, but it is kept so
// credentials can be rotated later (e.g. by a future CONFIG SET) without
// introducing a data race at that point.
type Service struct {
	mu       sync.Mutex
	user     string
	password string
}

// New creates a Service with the given default credentials.
func New(user, password string) *Service {
	return &Service{user: user, password: password}
}

// Authenticate reports whether username and password match the
// configured pair exactly.
func (s *Service) Authenticate(username, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return username == s.user && password == s.password
}

// DefaultUser returns the configured username, used by AUTH's two-arg
// form (password only), which authenticates against it implicitly.
func (s *Service) DefaultUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SetCredentials replaces the configured pair.
func (s *Service) SetCredentials(user, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.password = password
}
