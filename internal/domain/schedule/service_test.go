package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/therabook/therabook/internal/domain/roster"
)

// -- Mock Repositories --

type mockScheduleRepo struct {
	scheds map[uuid.UUID]*Schedule
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{scheds: make(map[uuid.UUID]*Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, s *Schedule) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	m.scheds[s.ID] = s
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id uuid.UUID) (*Schedule, error) {
	s, ok := m.scheds[id]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	return s, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, s *Schedule) error {
	m.scheds[s.ID] = s
	return nil
}

func (m *mockScheduleRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, _, _ int) ([]*Schedule, int, error) {
	var result []*Schedule
	for _, s := range m.scheds {
		if s.OrganizationID == orgID {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

type mockSessionRepo struct {
	sessions map[uuid.UUID]*Session
	failNext error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, s *Session) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepo) CreateBatch(ctx context.Context, sessions []*Session) error {
	for _, s := range sessions {
		if err := m.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionRepo) Update(_ context.Context, s *Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) ListBySchedule(_ context.Context, scheduleID uuid.UUID) ([]*Session, error) {
	var result []*Session
	for _, s := range m.sessions {
		if s.ScheduleID != nil && *s.ScheduleID == scheduleID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) ListByOrganizationAndDateRange(_ context.Context, orgID uuid.UUID, from, to time.Time) ([]*Session, error) {
	var result []*Session
	for _, s := range m.sessions {
		if s.OrganizationID == orgID && !s.Date.Before(from) && s.Date.Before(to) {
			result = append(result, s)
		}
	}
	return result, nil
}

type mockStaffRepo struct{ staff []*roster.Staff }

func (m *mockStaffRepo) GetByID(_ context.Context, id uuid.UUID) (*roster.Staff, error) {
	for _, s := range m.staff {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockStaffRepo) ListByOrganization(_ context.Context, _ uuid.UUID) ([]*roster.Staff, error) {
	return m.staff, nil
}

type mockPatientRepo struct{ patients []*roster.Patient }

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*roster.Patient, error) {
	for _, p := range m.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockPatientRepo) ListByOrganization(_ context.Context, _ uuid.UUID) ([]*roster.Patient, error) {
	return m.patients, nil
}

func newTestService(staff []*roster.Staff, patients []*roster.Patient) (*Service, *mockScheduleRepo, *mockSessionRepo) {
	schedRepo := newMockScheduleRepo()
	sessRepo := newMockSessionRepo()
	svc := NewService(schedRepo, sessRepo, &mockStaffRepo{staff: staff}, &mockPatientRepo{patients: patients},
		nil, time.UTC, zerolog.Nop())
	return svc, schedRepo, sessRepo
}

// fakeTx records the transaction outcome; the embedded interface supplies
// the methods the service never calls.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeBeginner struct{ tx *fakeTx }

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	b.tx = &fakeTx{}
	return b.tx, nil
}

// -- Tests --

func TestService_ApplyBatch(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 1)
	svc, schedRepo, sessRepo := newTestService([]*roster.Staff{th}, []*roster.Patient{p})

	orgID := uuid.New()
	sched := &Schedule{OrganizationID: orgID, Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}

	res, err := svc.ApplyBatch(context.Background(), sched.ID, []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if len(res.Valid) != 1 {
		t.Fatalf("expected 1 accepted session, got %d", len(res.Valid))
	}
	if len(sessRepo.sessions) != 1 {
		t.Fatalf("expected 1 persisted session, got %d", len(sessRepo.sessions))
	}
	for _, s := range sessRepo.sessions {
		if s.OrganizationID != orgID {
			t.Error("persisted session missing organization id")
		}
		if s.ScheduleID == nil || *s.ScheduleID != sched.ID {
			t.Error("persisted session not linked to schedule")
		}
	}
	_ = schedRepo
}

func TestService_ApplyBatchRejectsPublished(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 1)
	svc, _, sessRepo := newTestService([]*roster.Staff{th}, []*roster.Patient{p})

	sched := &Schedule{OrganizationID: uuid.New(), Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if _, err := svc.Publish(context.Background(), sched.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	_, err := svc.ApplyBatch(context.Background(), sched.ID, []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
	})
	if !errors.Is(err, ErrScheduleNotDraft) {
		t.Errorf("expected ErrScheduleNotDraft, got %v", err)
	}
	if len(sessRepo.sessions) != 0 {
		t.Error("no sessions should be persisted for a published schedule")
	}
}

func TestService_PublishArchiveLifecycle(t *testing.T) {
	svc, _, _ := newTestService(nil, nil)

	sched := &Schedule{OrganizationID: uuid.New(), Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}

	got, err := svc.Publish(context.Background(), sched.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.Status != StatusPublished {
		t.Errorf("expected published, got %s", got.Status)
	}

	if _, err := svc.Publish(context.Background(), sched.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double publish should fail with ErrInvalidTransition, got %v", err)
	}

	got, err = svc.Archive(context.Background(), sched.ID)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if got.Status != StatusArchived {
		t.Errorf("expected archived, got %s", got.Status)
	}
}

func TestService_ApplyBatchCommitsTransaction(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 1)
	svc, _, _ := newTestService([]*roster.Staff{th}, []*roster.Patient{p})
	beginner := &fakeBeginner{}
	svc.txer = beginner

	sched := &Schedule{OrganizationID: uuid.New(), Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}

	if _, err := svc.ApplyBatch(context.Background(), sched.ID, []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
	}); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if beginner.tx == nil || !beginner.tx.committed {
		t.Error("batch persistence should commit its transaction")
	}
}

func TestService_ApplyBatchRollsBackOnWriteFailure(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 1)
	svc, _, sessRepo := newTestService([]*roster.Staff{th}, []*roster.Patient{p})
	beginner := &fakeBeginner{}
	svc.txer = beginner
	sessRepo.failNext = errors.New("connection reset")

	sched := &Schedule{OrganizationID: uuid.New(), Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}

	if _, err := svc.ApplyBatch(context.Background(), sched.ID, []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
	}); err == nil {
		t.Fatal("expected the write failure to propagate")
	}
	if beginner.tx == nil || beginner.tx.committed || !beginner.tx.rolledBack {
		t.Error("failed batch persistence should roll back, not commit")
	}
}

func TestService_DeleteSession(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 1)
	svc, _, sessRepo := newTestService([]*roster.Staff{th}, []*roster.Patient{p})

	sched := &Schedule{OrganizationID: uuid.New(), Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	res, err := svc.ApplyBatch(context.Background(), sched.ID, []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
	})
	if err != nil || len(res.Valid) != 1 {
		t.Fatalf("ApplyBatch: %v, %+v", err, res)
	}

	if err := svc.DeleteSession(context.Background(), res.Valid[0].ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if len(sessRepo.sessions) != 0 {
		t.Error("session not removed")
	}

	if err := svc.DeleteSession(context.Background(), res.Valid[0].ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for a deleted session, got %v", err)
	}
}

func TestService_DeleteSessionRefusedOncePublished(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 1)
	svc, _, sessRepo := newTestService([]*roster.Staff{th}, []*roster.Patient{p})

	sched := &Schedule{OrganizationID: uuid.New(), Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	res, err := svc.ApplyBatch(context.Background(), sched.ID, []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
	})
	if err != nil || len(res.Valid) != 1 {
		t.Fatalf("ApplyBatch: %v, %+v", err, res)
	}
	if _, err := svc.Publish(context.Background(), sched.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := svc.DeleteSession(context.Background(), res.Valid[0].ID); !errors.Is(err, ErrScheduleNotDraft) {
		t.Errorf("expected ErrScheduleNotDraft, got %v", err)
	}
	if len(sessRepo.sessions) != 1 {
		t.Error("published session must remain")
	}
}

func TestService_ListSessionsInRange(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 2)
	svc, _, _ := newTestService([]*roster.Staff{th}, []*roster.Patient{p})

	orgID := uuid.New()
	sched := &Schedule{OrganizationID: orgID, Name: "Week 23", WeekOf: monday}
	if err := svc.CreateSchedule(context.Background(), sched); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	nextMonday := monday.AddDate(0, 0, 7)
	if _, err := svc.ApplyBatch(context.Background(), sched.ID, []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
		candidate(th, p, nextMonday, "09:00", "10:00"),
	}); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	// The upper bound is exclusive; only the first week's session is in.
	got, err := svc.ListSessionsInRange(context.Background(), orgID, "2025-06-02", "2025-06-09")
	if err != nil {
		t.Fatalf("ListSessionsInRange: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 session in range, got %d", len(got))
	}
	if !SameDay(got[0].Date, monday) {
		t.Errorf("wrong session returned, date %v", got[0].Date)
	}
}

func TestService_ListSessionsInRangeRejectsBadBounds(t *testing.T) {
	svc, _, _ := newTestService(nil, nil)
	orgID := uuid.New()

	cases := [][2]string{
		{"06/02/2025", "2025-06-09"},
		{"2025-06-02", "tomorrow"},
		{"2025-06-09", "2025-06-02"},
		{"2025-06-02", "2025-06-02"},
	}
	for _, c := range cases {
		if _, err := svc.ListSessionsInRange(context.Background(), orgID, c[0], c[1]); !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("ListSessionsInRange(%q, %q) expected ErrInvalidDateRange, got %v", c[0], c[1], err)
		}
	}
}

func TestService_ValidateBatchDoesNotPersist(t *testing.T) {
	th := testTherapist("Sarah Miller")
	p := testPatient("Tom Weber", "P-001", 1)
	svc, _, sessRepo := newTestService([]*roster.Staff{th}, []*roster.Patient{p})

	res, err := svc.ValidateBatch(context.Background(), uuid.New(), []GeneratedSession{
		candidate(th, p, monday, "09:00", "10:00"),
	})
	if err != nil {
		t.Fatalf("ValidateBatch: %v", err)
	}
	if len(res.Valid) != 1 {
		t.Fatalf("expected acceptance, got %+v", res.Errors)
	}
	if len(sessRepo.sessions) != 0 {
		t.Error("ValidateBatch must not persist sessions")
	}
}
