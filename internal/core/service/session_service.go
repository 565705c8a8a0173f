package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
	"github.com/careline/homecare-portal/internal/metrics"
)

// User-facing messages stored in the session error field.
const (
	msgInvalidCredentials  = "Invalid email or password"
	msgEmailExists         = "An account with this email already exists"
	msgNotAuthenticated    = "You must be signed in to update your profile"
	msgInvalidRole         = "Please choose a valid account type"
	msgInvalidRegistration = "Email and password are required"
	msgGeneric             = "Something went wrong, please try again"
)

// SessionOption customises a SessionStore.
type SessionOption func(*SessionStore)

// WithLatency delays login, register and profile updates by d. Zero disables it.
func WithLatency(d time.Duration) SessionOption {
	return func(s *SessionStore) { s.latency = d }
}

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// WithIDGenerator overrides how identity and notification ids are minted.
func WithIDGenerator(gen func() string) SessionOption {
	return func(s *SessionStore) { s.newID = gen }
}

// WithHashCost sets the bcrypt cost used for new registrations.
func WithHashCost(cost int) SessionOption {
	return func(s *SessionStore) { s.hashCost = cost }
}

// WithPublisher routes session events to a notification publisher.
func WithPublisher(p ports.NotificationPublisher) SessionOption {
	return func(s *SessionStore) { s.notify = p }
}

// SessionStore is the single source of truth for who is signed in.
//
// Mutating operations are serialized: a call made while another is in flight
// fails with domain.ErrOperationInFlight. Logout is always accepted and bumps
// the epoch, so a pending operation started before it cannot commit.
type SessionStore struct {
	creds ports.CredentialRepository
	slot  ports.IdentitySlot
	codec ports.IdentityCodec
	log   zerolog.Logger

	latency  time.Duration
	hashCost int
	now      func() time.Time
	newID    func() string
	notify   ports.NotificationPublisher

	restoreOnce sync.Once

	// slotMu orders slot writes. It is taken after mu, never before.
	slotMu sync.Mutex

	mu       sync.Mutex
	identity *domain.Identity
	inFlight bool
	lastErr  string
	epoch    uint64
}

var _ ports.SessionService = (*SessionStore)(nil)

// NewSessionStore returns an anonymous session. Call Restore once at startup.
func NewSessionStore(
	creds ports.CredentialRepository,
	slot ports.IdentitySlot,
	codec ports.IdentityCodec,
	log zerolog.Logger,
	opts ...SessionOption,
) *SessionStore {
	s := &SessionStore{
		creds:    creds,
		slot:     slot,
		codec:    codec,
		log:      log,
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{InFlight: s.inFlight, Error: s.lastErr}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

// Restore loads the identity saved by a previous process. Only the first call
// reads storage. A missing or unusable record leaves the session anonymous; an
// unusable one is also removed.
func (s *SessionStore) Restore(ctx context.Context) domain.Snapshot {
	s.restoreOnce.Do(func() { s.restore(ctx) })
	return s.Snapshot()
}

func (s *SessionStore) restore(ctx context.Context) {
	const op = "restore"

	data, err := s.slot.Load(ctx)
	if errors.Is(err, domain.ErrSlotEmpty) {
		metrics.SessionOperationsTotal.WithLabelValues(op, "anonymous").Inc()
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("identity slot unreadable, starting anonymous")
		metrics.SessionOperationsTotal.WithLabelValues(op, "error").Inc()
		return
	}

	id, err := s.codec.Decode(data)
	if err == nil {
		err = checkRestored(id)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding stored identity")
		s.slotMu.Lock()
		if clearErr := s.slot.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear identity slot")
		}
		s.slotMu.Unlock()
		metrics.SessionOperationsTotal.WithLabelValues(op, "malformed").Inc()
		return
	}

	s.mu.Lock()
	if s.identity == nil {
		s.identity = id
		metrics.SessionAuthenticated.Set(1)
	}
	s.mu.Unlock()

	metrics.SessionOperationsTotal.WithLabelValues(op, "success").Inc()
	s.log.Info().Str("user_id", id.ID).Str("role", id.Role.String()).Msg("session restored")
}

func checkRestored(id *domain.Identity) error {
	if id == nil || id.ID == "" || id.Email == "" {
		return fmt.Errorf("%w: missing id or email", domain.ErrMalformedStoredRecord)
	}
	if !id.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrMalformedStoredRecord, id.Role)
	}
	return nil
}

// Login signs in with an exact email and secret match.
func (s *SessionStore) Login(ctx context.Context, email, secret string) (domain.Snapshot, error) {
	const op = "login"
	start := time.Now()

	epoch, err := s.begin()
	if err != nil {
		s.observe(op, err, start)
		return s.Snapshot(), err
	}

	id, err := s.authenticate(ctx, email, secret)
	if err != nil {
		err = s.fail(epoch, err)
	} else {
		err = s.commit(epoch, func() error { return s.persistLocked(ctx, *id) })
	}
	s.observe(op, err, start)
	if err != nil {
		return s.Snapshot(), err
	}

	s.log.Info().Str("user_id", id.ID).Str("role", id.Role.String()).Msg("user signed in")
	s.publish(id.ID, "Welcome back", fmt.Sprintf("Welcome back, %s!", id.DisplayName()))
	return s.Snapshot(), nil
}

func (s *SessionStore) authenticate(ctx context.Context, email, secret string) (*domain.Identity, error) {
	if email == "" || secret == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	rec, err := s.creds.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.SecretHash), []byte(secret)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	id := rec.Identity
	return &id, nil
}

// Register creates an account and signs it in.
func (s *SessionStore) Register(ctx context.Context, in ports.RegisterInput) (domain.Snapshot, error) {
	const op = "register"
	start := time.Now()

	epoch, err := s.begin()
	if err != nil {
		s.observe(op, err, start)
		return s.Snapshot(), err
	}

	id, err := s.createAccount(ctx, in)
	if err != nil {
		err = s.fail(epoch, err)
	} else {
		err = s.commit(epoch, func() error { return s.persistLocked(ctx, *id) })
	}
	s.observe(op, err, start)
	if err != nil {
		return s.Snapshot(), err
	}

	s.log.Info().Str("user_id", id.ID).Str("role", id.Role.String()).Msg("user registered")
	s.publish(id.ID, "Registration successful", fmt.Sprintf("Welcome to the portal, %s.", id.DisplayName()))
	return s.Snapshot(), nil
}

func (s *SessionStore) createAccount(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	if in.Email == "" || in.Secret == "" {
		return nil, domain.ErrInvalidRegistration
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	_, err = s.creds.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailAlreadyExists
	case !errors.Is(err, domain.ErrCredentialNotFound):
		return nil, fmt.Errorf("find credential: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Secret), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	rec := &domain.CredentialRecord{
		Identity: domain.Identity{
			ID:          s.newID(),
			Email:       in.Email,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			Role:        role,
			Avatar:      in.Avatar,
			PhoneNumber: in.PhoneNumber,
			CreatedAt:   s.now(),
		},
		SecretHash: string(hash),
	}
	if err := s.creds.Create(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create credential: %w", err)
	}

	id := rec.Identity
	return &id, nil
}

// Logout clears the in-memory identity and then the slot. It always succeeds
// and is idempotent. Readers see the anonymous session while the slot is
// still being cleared.
func (s *SessionStore) Logout(ctx context.Context) domain.Snapshot {
	s.mu.Lock()
	prev := s.identity
	s.epoch++
	s.identity = nil
	s.lastErr = ""
	snap := s.snapshotLocked()
	s.slotMu.Lock()
	s.mu.Unlock()

	err := s.slot.Clear(ctx)
	s.slotMu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to clear identity slot")
	}

	metrics.SessionAuthenticated.Set(0)
	metrics.SessionOperationsTotal.WithLabelValues("logout", "success").Inc()

	if prev != nil {
		s.log.Info().Str("user_id", prev.ID).Msg("user signed out")
		s.publish(prev.ID, "Signed out", "You have been logged out.")
	}
	return snap
}

// UpdateProfile merges update into the signed-in identity.
func (s *SessionStore) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Snapshot, error) {
	const op = "update_profile"
	start := time.Now()

	epoch, err := s.begin()
	if err != nil {
		s.observe(op, err, start)
		return s.Snapshot(), err
	}

	s.mu.Lock()
	current := s.identity
	s.mu.Unlock()

	var merged domain.Identity
	switch {
	case current == nil:
		err = s.fail(epoch, domain.ErrNotAuthenticated)
	default:
		merged = update.Apply(*current)
		if err = s.simulateLatency(ctx); err != nil {
			err = s.fail(epoch, err)
		} else {
			err = s.commit(epoch, func() error { return s.persistLocked(ctx, merged) })
		}
	}
	s.observe(op, err, start)
	if err != nil {
		return s.Snapshot(), err
	}

	s.log.Info().Str("user_id", merged.ID).Msg("profile updated")
	s.publish(merged.ID, "Profile updated", "Your profile was updated successfully.")
	return s.Snapshot(), nil
}

// begin marks an operation in flight and returns the epoch it runs under.
func (s *SessionStore) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, domain.ErrOperationInFlight
	}
	s.inFlight = true
	return s.epoch, nil
}

// commit ends the in-flight operation and runs apply under the session lock,
// unless the session was logged out since begin.
func (s *SessionStore) commit(epoch uint64, apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if epoch != s.epoch {
		return domain.ErrSessionReset
	}
	return apply()
}

// fail ends the in-flight operation recording cause in the error field.
func (s *SessionStore) fail(epoch uint64, cause error) error {
	return s.commit(epoch, func() error {
		s.lastErr = userMessage(cause)
		return cause
	})
}

// persistLocked writes id to the slot and only then makes it current.
// Callers hold s.mu.
func (s *SessionStore) persistLocked(ctx context.Context, id domain.Identity) error {
	data, err := s.codec.Encode(id)
	if err != nil {
		s.lastErr = msgGeneric
		return fmt.Errorf("encode identity: %w", err)
	}
	s.slotMu.Lock()
	err = s.slot.Save(ctx, data)
	s.slotMu.Unlock()
	if err != nil {
		s.lastErr = msgGeneric
		return fmt.Errorf("save identity: %w", err)
	}
	s.identity = &id
	s.lastErr = ""
	metrics.SessionAuthenticated.Set(1)
	return nil
}

func (s *SessionStore) simulateLatency(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionStore) publish(userID, title, message string) {
	if s.notify == nil {
		return
	}
	s.notify.Publish(domain.Notification{
		ID:        s.newID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Kind:      domain.NotificationSystem,
		CreatedAt: s.now(),
	})
}

func (s *SessionStore) observe(op string, err error, start time.Time) {
	metrics.SessionOperationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
	metrics.SessionOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && userMessage(err) == msgGeneric {
		s.log.Error().Err(err).Str("operation", op).Msg("session operation failed")
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return msgEmailExists
	case errors.Is(err, domain.ErrNotAuthenticated):
		return msgNotAuthenticated
	case errors.Is(err, domain.ErrInvalidRole):
		return msgInvalidRole
	case errors.Is(err, domain.ErrInvalidRegistration):
		return msgInvalidRegistration
	default:
		return msgGeneric
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return "email_exists"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, domain.ErrOperationInFlight):
		return "in_flight"
	case errors.Is(err, domain.ErrSessionReset):
		return "reset"
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrInvalidRegistration):
		return "invalid_input"
	default:
		return "error"
	}
}
