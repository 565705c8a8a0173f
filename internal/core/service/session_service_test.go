package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
	"github.com/careline/homecare-portal/internal/infrastructure/slot"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubCredentialRepo struct {
	mu      sync.Mutex
	records []domain.CredentialRecord
	findErr error
	// gate, when set, blocks FindByEmail until it is closed. entered is
	// signalled once the call is blocked.
	gate    chan struct{}
	entered chan struct{}
}

func (r *stubCredentialRepo) FindByEmail(ctx context.Context, email string) (*domain.CredentialRecord, error) {
	if r.gate != nil {
		r.entered <- struct{}{}
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, rec := range r.records {
		if rec.Email == email {
			rec := rec
			return &rec, nil
		}
	}
	return nil, domain.ErrCredentialNotFound
}

func (r *stubCredentialRepo) Create(_ context.Context, rec *domain.CredentialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.Email == rec.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.records = append(r.records, *rec)
	return nil
}

func hashed(t *testing.T, secret string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

var fixtureCreated = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func seededCredentials(t *testing.T) *stubCredentialRepo {
	t.Helper()
	mk := func(id, email, first, last string, role domain.Role) domain.CredentialRecord {
		return domain.CredentialRecord{
			Identity: domain.Identity{
				ID: id, Email: email, FirstName: first, LastName: last, Role: role, CreatedAt: fixtureCreated,
			},
			SecretHash: hashed(t, "password"),
		}
	}
	return &stubCredentialRepo{records: []domain.CredentialRecord{
		mk("1", "patient@example.com", "Ahmed", "Hassan", domain.RolePatient),
		mk("2", "nurse@example.com", "Sara", "Ali", domain.RoleNurse),
		mk("3", "admin@example.com", "Mohammed", "Khaled", domain.RoleAdmin),
	}}
}

type stubSlot struct {
	mu       sync.Mutex
	data     []byte
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
	// clearGate, when set, blocks Clear until it is closed. clearEntered is
	// signalled once the call is blocked.
	clearGate    chan struct{}
	clearEntered chan struct{}
}

func (s *stubSlot) Load(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.data == nil {
		return nil, domain.ErrSlotEmpty
	}
	return append([]byte(nil), s.data...), nil
}

func (s *stubSlot) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *stubSlot) Clear(context.Context) error {
	if s.clearGate != nil {
		s.clearEntered <- struct{}{}
		<-s.clearGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.data = nil
	return nil
}

// stubCodec encodes identities as JSON through the domain type's tags.
type stubCodec struct{}

func (stubCodec) Encode(id domain.Identity) ([]byte, error) {
	return json.Marshal(id)
}

func (stubCodec) Decode(data []byte) (*domain.Identity, error) {
	var id domain.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, errors.Join(domain.ErrMalformedStoredRecord, err)
	}
	return &id, nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (p *recordingPublisher) Publish(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, n)
}

func (p *recordingPublisher) titles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.got))
	for _, n := range p.got {
		out = append(out, n.Title)
	}
	return out
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 100
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return strconv.Itoa(n)
	}
}

func newStore(creds ports.CredentialRepository, slot ports.IdentitySlot, opts ...SessionOption) *SessionStore {
	base := []SessionOption{
		WithHashCost(bcrypt.MinCost),
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { return fixtureCreated }),
	}
	return NewSessionStore(creds, slot, stubCodec{}, zerolog.Nop(), append(base, opts...)...)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestSessionStore_Login_SeededRoles(t *testing.T) {
	for _, tc := range []struct {
		email string
		role  domain.Role
		id    string
	}{
		{"patient@example.com", domain.RolePatient, "1"},
		{"nurse@example.com", domain.RoleNurse, "2"},
		{"admin@example.com", domain.RoleAdmin, "3"},
	} {
		t.Run(string(tc.role), func(t *testing.T) {
			slot := &stubSlot{}
			s := newStore(seededCredentials(t), slot)

			snap, err := s.Login(context.Background(), tc.email, "password")
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if !snap.IsAuthenticated() || snap.Identity.Role != tc.role || snap.Identity.ID != tc.id {
				t.Fatalf("unexpected snapshot: %+v", snap)
			}
			if snap.Error != "" || snap.InFlight {
				t.Fatalf("error/in-flight not cleared: %+v", snap)
			}
			if slot.saves != 1 {
				t.Fatalf("expected one slot write, got %d", slot.saves)
			}
		})
	}
}

func TestSessionStore_Login_InvalidCredentials(t *testing.T) {
	cases := []struct{ email, secret string }{
		{"nobody@example.com", "wrong"},
		{"nurse@example.com", "wrong"},
		{"NURSE@example.com", "password"},
		{"nurse@example.com", ""},
		{"", "password"},
	}
	for _, tc := range cases {
		slot := &stubSlot{}
		s := newStore(seededCredentials(t), slot)

		snap, err := s.Login(context.Background(), tc.email, tc.secret)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%q/%q: expected ErrInvalidCredentials, got %v", tc.email, tc.secret, err)
		}
		if snap.IsAuthenticated() {
			t.Fatalf("%q: session must stay anonymous", tc.email)
		}
		if snap.Error == "" || snap.InFlight {
			t.Fatalf("%q: unexpected snapshot %+v", tc.email, snap)
		}
		if slot.saves != 0 {
			t.Fatalf("%q: slot must not be written on failure", tc.email)
		}
	}
}

func TestSessionStore_Login_RepositoryError(t *testing.T) {
	creds := seededCredentials(t)
	creds.findErr = errors.New("db down")
	s := newStore(creds, &stubSlot{})

	snap, err := s.Login(context.Background(), "nurse@example.com", "password")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
	if snap.IsAuthenticated() || snap.Error != msgGeneric {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestSessionStore_Login_SlotWriteFailureLeavesSessionUnchanged(t *testing.T) {
	slot := &stubSlot{saveErr: errors.New("disk full")}
	s := newStore(seededCredentials(t), slot)

	snap, err := s.Login(context.Background(), "nurse@example.com", "password")
	if err == nil {
		t.Fatalf("expected error")
	}
	if snap.IsAuthenticated() || snap.InFlight {
		t.Fatalf("session must stay anonymous and settled: %+v", snap)
	}
}

func TestSessionStore_Login_ReplacesCurrentIdentity(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{})
	ctx := context.Background()

	if _, err := s.Login(ctx, "nurse@example.com", "password"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	snap, err := s.Login(ctx, "admin@example.com", "password")
	if err != nil || snap.Identity.Role != domain.RoleAdmin {
		t.Fatalf("second login = %+v, %v", snap, err)
	}
}

func TestSessionStore_Login_FailureKeepsPreviousIdentity(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{})
	ctx := context.Background()

	_, _ = s.Login(ctx, "nurse@example.com", "password")
	snap, err := s.Login(ctx, "nurse@example.com", "nope")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !snap.IsAuthenticated() || snap.Identity.Email != "nurse@example.com" {
		t.Fatalf("previous identity lost: %+v", snap)
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestSessionStore_Register_NovelEmailThenRestore(t *testing.T) {
	creds := seededCredentials(t)
	slot := &stubSlot{}
	s := newStore(creds, slot)

	snap, err := s.Register(context.Background(), ports.RegisterInput{
		Email:     "new@example.com",
		Secret:    "x",
		FirstName: "Lina",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !snap.IsAuthenticated() || snap.Identity.Role != domain.RolePatient {
		t.Fatalf("expected authenticated patient, got %+v", snap)
	}
	if snap.Identity.ID != "101" || !snap.Identity.CreatedAt.Equal(fixtureCreated) {
		t.Fatalf("unexpected id/created_at: %+v", snap.Identity)
	}

	// The new account can log in.
	if _, err := creds.FindByEmail(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("credential not appended: %v", err)
	}

	restarted := newStore(creds, slot)
	restored := restarted.Restore(context.Background())
	if !restored.IsAuthenticated() || restored.Identity.Email != "new@example.com" || restored.Identity.FirstName != "Lina" {
		t.Fatalf("restore after restart = %+v", restored)
	}
}

func TestSessionStore_Register_SignedRecordRestoresSameIdentity(t *testing.T) {
	creds := seededCredentials(t)
	identitySlot := &stubSlot{}
	codec, err := slot.NewSignedCodec("test-key")
	if err != nil {
		t.Fatalf("NewSignedCodec: %v", err)
	}
	clock := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 123456789, time.UTC) }
	open := func() *SessionStore {
		return NewSessionStore(creds, identitySlot, codec, zerolog.Nop(),
			WithHashCost(bcrypt.MinCost),
			WithIDGenerator(sequentialIDs()),
			WithClock(clock),
		)
	}

	snap, err := open().Register(context.Background(), ports.RegisterInput{
		Email:     "new@example.com",
		Secret:    "x",
		FirstName: "Lina",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	restored := open().Restore(context.Background())
	if !restored.IsAuthenticated() {
		t.Fatalf("restore after restart = %+v", restored)
	}
	got, want := *restored.Identity, *snap.Identity
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt = want.CreatedAt
	if got != want {
		t.Fatalf("restored %+v, want %+v", got, want)
	}
}

func TestSessionStore_Register_ExistingEmail(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{})
	ctx := context.Background()
	_, _ = s.Login(ctx, "admin@example.com", "password")
	before := s.Snapshot()

	snap, err := s.Register(ctx, ports.RegisterInput{Email: "nurse@example.com", Secret: "x", Role: "nurse"})
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
	if snap.Identity == nil || *snap.Identity != *before.Identity {
		t.Fatalf("identity changed: before %+v after %+v", before.Identity, snap.Identity)
	}
	if snap.Error != msgEmailExists {
		t.Fatalf("unexpected error message %q", snap.Error)
	}
}

func TestSessionStore_Register_ExistingEmailWhileAnonymous(t *testing.T) {
	slot := &stubSlot{}
	s := newStore(seededCredentials(t), slot)

	snap, err := s.Register(context.Background(), ports.RegisterInput{Email: "patient@example.com", Secret: "x"})
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
	if snap.IsAuthenticated() || slot.saves != 0 {
		t.Fatalf("session must stay anonymous and unpersisted")
	}
}

func TestSessionStore_Register_Validation(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{})
	ctx := context.Background()

	if _, err := s.Register(ctx, ports.RegisterInput{Email: "a@example.com"}); !errors.Is(err, domain.ErrInvalidRegistration) {
		t.Fatalf("expected ErrInvalidRegistration, got %v", err)
	}
	if _, err := s.Register(ctx, ports.RegisterInput{Email: "a@example.com", Secret: "x", Role: "doctor"}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if s.Snapshot().InFlight {
		t.Fatalf("in-flight flag leaked")
	}
}

func TestSessionStore_Register_ChosenRole(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{})
	snap, err := s.Register(context.Background(), ports.RegisterInput{Email: "n2@example.com", Secret: "x", Role: "nurse"})
	if err != nil || snap.Identity.Role != domain.RoleNurse {
		t.Fatalf("register nurse = %+v, %v", snap, err)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestSessionStore_Logout_Idempotent(t *testing.T) {
	slot := &stubSlot{}
	s := newStore(seededCredentials(t), slot)
	ctx := context.Background()
	_, _ = s.Login(ctx, "patient@example.com", "password")

	for i := 0; i < 2; i++ {
		snap := s.Logout(ctx)
		if snap.IsAuthenticated() || snap.Error != "" {
			t.Fatalf("logout %d: unexpected snapshot %+v", i, snap)
		}
	}
	if _, err := slot.Load(ctx); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("slot not cleared: %v", err)
	}
}

func TestSessionStore_Logout_ClearFailureStillSignsOut(t *testing.T) {
	slot := &stubSlot{}
	s := newStore(seededCredentials(t), slot)
	ctx := context.Background()
	_, _ = s.Login(ctx, "patient@example.com", "password")

	slot.clearErr = errors.New("io error")
	if snap := s.Logout(ctx); snap.IsAuthenticated() {
		t.Fatalf("logout must always succeed")
	}
}

func TestSessionStore_Logout_ClearsError(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{})
	ctx := context.Background()
	_, _ = s.Login(ctx, "x@example.com", "bad")

	if snap := s.Logout(ctx); snap.Error != "" {
		t.Fatalf("error not cleared: %q", snap.Error)
	}
}

// ---------------------------------------------------------------------------
// UpdateProfile
// ---------------------------------------------------------------------------

func TestSessionStore_UpdateProfile_ThenRestore(t *testing.T) {
	slot := &stubSlot{}
	creds := seededCredentials(t)
	s := newStore(creds, slot)
	ctx := context.Background()
	_, _ = s.Login(ctx, "patient@example.com", "password")

	phone := "0501234567"
	snap, err := s.UpdateProfile(ctx, domain.ProfileUpdate{PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if snap.Identity.PhoneNumber != phone || snap.Identity.Role != domain.RolePatient {
		t.Fatalf("unexpected identity: %+v", snap.Identity)
	}

	restored := newStore(creds, slot).Restore(ctx)
	if restored.Identity == nil || restored.Identity.PhoneNumber != phone {
		t.Fatalf("restore lost update: %+v", restored.Identity)
	}
}

func TestSessionStore_UpdateProfile_Anonymous(t *testing.T) {
	slot := &stubSlot{}
	s := newStore(seededCredentials(t), slot)
	name := "x"

	snap, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{FirstName: &name})
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if snap.Error != msgNotAuthenticated || snap.InFlight || slot.saves != 0 {
		t.Fatalf("unexpected state: %+v saves=%d", snap, slot.saves)
	}
}

func TestSessionStore_UpdateProfile_SlotFailureKeepsOldIdentity(t *testing.T) {
	slot := &stubSlot{}
	s := newStore(seededCredentials(t), slot)
	ctx := context.Background()
	_, _ = s.Login(ctx, "patient@example.com", "password")

	slot.saveErr = errors.New("disk full")
	name := "Changed"
	snap, err := s.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &name})
	if err == nil {
		t.Fatalf("expected error")
	}
	if snap.Identity.FirstName != "Ahmed" {
		t.Fatalf("identity partially mutated: %+v", snap.Identity)
	}
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

func TestSessionStore_Restore_Empty(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{})
	if snap := s.Restore(context.Background()); snap.IsAuthenticated() || snap.Error != "" {
		t.Fatalf("expected anonymous, got %+v", snap)
	}
}

func TestSessionStore_Restore_MalformedIsDiscarded(t *testing.T) {
	for name, data := range map[string]string{
		"garbage":      "{not json",
		"unknown role": `{"id":"9","email":"x@example.com","role":"guest"}`,
		"no email":     `{"id":"9","role":"nurse"}`,
	} {
		t.Run(name, func(t *testing.T) {
			slot := &stubSlot{data: []byte(data)}
			s := newStore(seededCredentials(t), slot)

			snap := s.Restore(context.Background())
			if snap.IsAuthenticated() || snap.Error != "" {
				t.Fatalf("expected silent anonymous start, got %+v", snap)
			}
			if slot.clears != 1 || slot.data != nil {
				t.Fatalf("malformed record not cleared")
			}
		})
	}
}

func TestSessionStore_Restore_LoadErrorStaysAnonymous(t *testing.T) {
	slot := &stubSlot{loadErr: errors.New("permission denied")}
	s := newStore(seededCredentials(t), slot)

	if snap := s.Restore(context.Background()); snap.IsAuthenticated() {
		t.Fatalf("expected anonymous")
	}
	if slot.clears != 0 {
		t.Fatalf("unreadable slot must not be cleared")
	}
}

func TestSessionStore_Restore_OnlyOnce(t *testing.T) {
	slot := &stubSlot{}
	creds := seededCredentials(t)
	s := newStore(creds, slot)
	ctx := context.Background()

	s.Restore(ctx)

	// A record written behind the store's back after startup is ignored.
	other := newStore(creds, slot)
	_, _ = other.Login(ctx, "nurse@example.com", "password")

	if snap := s.Restore(ctx); snap.IsAuthenticated() {
		t.Fatalf("second Restore must not reread storage")
	}
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func blockingStore(t *testing.T) (*SessionStore, *stubCredentialRepo, *stubSlot) {
	t.Helper()
	creds := seededCredentials(t)
	creds.gate = make(chan struct{})
	creds.entered = make(chan struct{}, 1)
	slot := &stubSlot{}
	return newStore(creds, slot), creds, slot
}

func TestSessionStore_RejectsConcurrentMutation(t *testing.T) {
	s, creds, _ := blockingStore(t)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "nurse@example.com", "password")
		done <- err
	}()
	<-creds.entered

	if !s.Snapshot().InFlight {
		t.Fatalf("expected in-flight flag while login is pending")
	}

	snap, err := s.Register(ctx, ports.RegisterInput{Email: "z@example.com", Secret: "x"})
	if !errors.Is(err, domain.ErrOperationInFlight) {
		t.Fatalf("expected ErrOperationInFlight, got %v", err)
	}
	if snap.Error != "" {
		t.Fatalf("rejected call must not touch the error field: %q", snap.Error)
	}

	close(creds.gate)
	if err := <-done; err != nil {
		t.Fatalf("pending login failed: %v", err)
	}
	if snap := s.Snapshot(); !snap.IsAuthenticated() || snap.InFlight {
		t.Fatalf("unexpected final snapshot: %+v", snap)
	}
}

func TestSessionStore_LogoutDuringFlightDiscardsCommit(t *testing.T) {
	s, creds, slot := blockingStore(t)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "nurse@example.com", "password")
		done <- err
	}()
	<-creds.entered

	s.Logout(ctx)
	close(creds.gate)

	if err := <-done; !errors.Is(err, domain.ErrSessionReset) {
		t.Fatalf("expected ErrSessionReset, got %v", err)
	}
	snap := s.Snapshot()
	if snap.IsAuthenticated() || snap.InFlight {
		t.Fatalf("logout must win: %+v", snap)
	}
	if slot.saves != 0 {
		t.Fatalf("discarded login must not write the slot")
	}
}

func TestSessionStore_LatencyHonoursCancellation(t *testing.T) {
	s := newStore(seededCredentials(t), &stubSlot{}, WithLatency(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := s.Login(ctx, "nurse@example.com", "password")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if snap.IsAuthenticated() || snap.InFlight {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func TestSessionStore_PublishesSessionEvents(t *testing.T) {
	pub := &recordingPublisher{}
	s := newStore(seededCredentials(t), &stubSlot{}, WithPublisher(pub))
	ctx := context.Background()

	_, _ = s.Login(ctx, "nurse@example.com", "bad")
	_, _ = s.Login(ctx, "nurse@example.com", "password")
	name := "Sarah"
	_, _ = s.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &name})
	s.Logout(ctx)
	s.Logout(ctx)

	got := pub.titles()
	want := []string{"Welcome back", "Profile updated", "Signed out"}
	if len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("published %v, want %v", got, want)
		}
	}
	for _, n := range pub.got {
		if n.UserID != "2" || n.Kind != domain.NotificationSystem {
			t.Fatalf("unexpected notification %+v", n)
		}
	}
}

func TestSessionStore_LogoutDoesNotBlockReadersDuringClear(t *testing.T) {
	identitySlot := &stubSlot{}
	s := newStore(seededCredentials(t), identitySlot)
	ctx := context.Background()
	if _, err := s.Login(ctx, "nurse@example.com", "password"); err != nil {
		t.Fatalf("login: %v", err)
	}

	identitySlot.clearGate = make(chan struct{})
	identitySlot.clearEntered = make(chan struct{}, 1)

	done := make(chan domain.Snapshot, 1)
	go func() { done <- s.Logout(ctx) }()
	<-identitySlot.clearEntered

	read := make(chan domain.Snapshot, 1)
	go func() { read <- s.Snapshot() }()
	select {
	case snap := <-read:
		if snap.IsAuthenticated() {
			t.Fatalf("expected anonymous snapshot while clearing, got %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("Snapshot blocked while the slot was being cleared")
	}

	close(identitySlot.clearGate)
	if snap := <-done; snap.IsAuthenticated() {
		t.Fatalf("logout = %+v", snap)
	}
	if identitySlot.data != nil {
		t.Fatalf("slot not cleared")
	}
}
