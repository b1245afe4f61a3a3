package session

import (
	"context"
	"log"
	"sync"

	"backend/internal/authz"
	"backend/internal/model"
)

// State is the session lifecycle position.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticatedNoProfile
	StateAuthenticatedWithProfile
	// StateFailed is terminal until Reset: an unrecoverable identity-provider
	// failure, with the IdentityError retained on the store.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticatedNoProfile:
		return "authenticated-no-profile"
	case StateAuthenticatedWithProfile:
		return "authenticated-with-profile"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProfileWatcher is the live subscription to an account's profile record.
// Implementations must deliver the current record first, then every remote
// change in delivery order, until the returned cancel func is called.
// Profile-load failures, the initial read included, go through onError and
// keep the subscription alive; the returned error is reserved for identity
// provider failures, which the store treats as terminal.
type ProfileWatcher interface {
	Watch(ctx context.Context, accountID string, onUpdate func(ProfileRecord), onError func(error)) (cancel func(), err error)
}

// Directory supplies read-only org snapshots for branch/province checks.
type Directory interface {
	Provinces() map[string]model.Province
	Branches() map[string]model.Branch
}

// Store holds one authenticated identity and its profile. It is the single
// writer of session state; readers get immutable snapshots. Dependencies are
// injected so tests can substitute fixtures without process-wide state.
type Store struct {
	watcher ProfileWatcher
	dir     Directory

	mu              sync.Mutex
	state           State
	accountID       string
	profile         *model.UserProfile
	currentProvince string
	identityErr     *IdentityError

	// generation invalidates late callbacks from a torn-down subscription: a
	// stale watcher delivery must never overwrite a newer identity's profile.
	generation  uint64
	cancelWatch func()
	listeners   []func(model.UserProfile)
}

// NewStore builds an unauthenticated session store.
func NewStore(watcher ProfileWatcher, dir Directory) *Store {
	return &Store{watcher: watcher, dir: dir, state: StateUnauthenticated}
}

// SignIn binds the store to an authenticated account and starts the live
// profile subscription. Credential checking happens before this call; a
// failure to establish the subscription is an identity failure and moves the
// store to the terminal failed state.
func (s *Store) SignIn(ctx context.Context, accountID, email string) error {
	s.mu.Lock()
	s.teardownLocked()
	s.generation++
	gen := s.generation
	s.state = StateAuthenticating
	s.accountID = accountID
	s.profile = nil
	s.currentProvince = ""
	s.identityErr = nil
	s.mu.Unlock()

	cancel, err := s.watcher.Watch(ctx, accountID,
		func(rec ProfileRecord) { s.applyRecord(gen, accountID, email, rec) },
		func(watchErr error) { s.applyWatchError(gen, accountID, email, watchErr) },
	)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return nil
		}
		s.state = StateFailed
		s.identityErr = &IdentityError{Op: "sign-in", Err: err}
		return s.identityErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// Logged out (or re-signed-in) while the watch was starting.
		cancel()
		return nil
	}
	s.cancelWatch = cancel
	return nil
}

// applyRecord merges and installs a profile delivery, unless it is stale.
func (s *Store) applyRecord(gen uint64, accountID, email string, rec ProfileRecord) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}

	var p model.UserProfile
	if rec.Base == nil && rec.Auth == nil {
		// No record yet: degraded guest session, nothing persisted.
		p = DefaultProfile(accountID, email)
		s.state = StateAuthenticatedNoProfile
	} else {
		p = Merge(rec)
		if p.AccountID == "" {
			p.AccountID = accountID
		}
		s.state = StateAuthenticatedWithProfile
	}
	s.profile = &p
	if s.currentProvince == "" {
		s.currentProvince = p.ProvinceID
	}
	listeners := append([]func(model.UserProfile){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(p)
	}
}

// applyWatchError degrades the session to a guest profile rather than failing:
// a transient subscription hiccup must not take the whole shell down.
func (s *Store) applyWatchError(gen uint64, accountID, email string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	log.Printf("profile subscription error for %s: %v", accountID, err)
	if s.profile == nil {
		p := DefaultProfile(accountID, email)
		s.profile = &p
		s.state = StateAuthenticatedNoProfile
	}
}

// Logout tears the subscription down and returns to unauthenticated.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.generation++
	s.state = StateUnauthenticated
	s.accountID = ""
	s.profile = nil
	s.currentProvince = ""
	s.identityErr = nil
}

// Reset clears a retained identity error, leaving an unauthenticated store.
func (s *Store) Reset() {
	s.Logout()
}

func (s *Store) teardownLocked() {
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
}

// SwitchProvince moves the in-memory current-province pointer. It never
// mutates the stored accessible list.
func (s *Store) SwitchProvince(provinceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return ErrNotAuthenticated
	}
	if !authz.HasProvinceAccess(s.profile, provinceID) {
		return ErrAccessDenied
	}
	s.currentProvince = provinceID
	return nil
}

// OnProfileChanged registers an observer invoked after every applied profile
// update. Registration order is delivery order.
func (s *Store) OnProfileChanged(fn func(model.UserProfile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports an established identity, with or without a profile.
func (s *Store) IsAuthenticated() bool {
	st := s.State()
	return st == StateAuthenticatedNoProfile || st == StateAuthenticatedWithProfile
}

// IsLoading reports that the identity is known but the profile has not
// resolved yet. Consumers must suspend navigation decisions while true.
func (s *Store) IsLoading() bool {
	return s.State() == StateAuthenticating
}

// IdentityErr returns the retained identity error, if any.
func (s *Store) IdentityErr() *IdentityError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identityErr
}

// Profile returns a snapshot copy of the current profile, or nil.
func (s *Store) Profile() *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// CurrentProvince returns the in-memory current-province pointer.
func (s *Store) CurrentProvince() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentProvince
}

// HasPermission is the session-scoped evaluator shortcut.
func (s *Store) HasPermission(perm authz.Permission) bool {
	return authz.HasPermission(s.Profile(), perm)
}

// HasRole matches the session profile's role against any of roles.
func (s *Store) HasRole(roles ...authz.Role) bool {
	return authz.HasAnyRole(s.Profile(), roles...)
}

// HasProvinceAccess checks the session profile against a province id.
func (s *Store) HasProvinceAccess(provinceID string) bool {
	return authz.HasProvinceAccess(s.Profile(), provinceID)
}

// HasBranchAccess checks the session profile against a branch code using the
// directory's org snapshot.
func (s *Store) HasBranchAccess(branchCode string) bool {
	if s.dir == nil {
		return false
	}
	return authz.HasBranchAccess(s.Profile(), branchCode, s.dir.Branches(), s.dir.Provinces())
}

// HasDepartmentAccess checks the session profile's home department.
func (s *Store) HasDepartmentAccess(departmentCode string) bool {
	return authz.HasDepartmentAccess(s.Profile(), departmentCode)
}
