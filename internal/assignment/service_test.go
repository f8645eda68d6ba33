package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/shared"
)

type memoryRepo struct {
	seq         int64
	subSeq      int64
	assignments map[int64]Assignment
	submissions map[int64][]Submission
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{assignments: map[int64]Assignment{}, submissions: map[int64][]Submission{}}
}

func (m *memoryRepo) ListAll(ctx context.Context) ([]Assignment, error) {
	out := make([]Assignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) ListBySession(ctx context.Context, sessionID int64) ([]Assignment, error) {
	var out []Assignment
	for _, a := range m.assignments {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id int64) (Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return Assignment{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) Create(ctx context.Context, input NewAssignment) (Assignment, error) {
	m.seq++
	a := Assignment{ID: m.seq, SessionID: input.SessionID, Title: input.Title, DueDate: input.DueDate}
	m.assignments[a.ID] = a
	return a, nil
}

func (m *memoryRepo) Update(ctx context.Context, id int64, input NewAssignment) (Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return Assignment{}, shared.ErrNotFound
	}
	a.Title = input.Title
	a.DueDate = input.DueDate
	m.assignments[id] = a
	return a, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.assignments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.assignments, id)
	return nil
}

func (m *memoryRepo) Submit(ctx context.Context, input NewSubmission) (Submission, error) {
	// One submission per user per assignment; a resubmission replaces it.
	for i, sub := range m.submissions[input.AssignmentID] {
		if sub.UserID == input.UserID {
			sub.SubmissionURL = input.SubmissionURL
			sub.Note = input.Note
			m.submissions[input.AssignmentID][i] = sub
			return sub, nil
		}
	}
	m.subSeq++
	sub := Submission{ID: m.subSeq, AssignmentID: input.AssignmentID, UserID: input.UserID, SubmissionURL: input.SubmissionURL, Note: input.Note, CompletedOn: time.Now()}
	m.submissions[input.AssignmentID] = append(m.submissions[input.AssignmentID], sub)
	return sub, nil
}

func (m *memoryRepo) ListSubmissions(ctx context.Context, assignmentID int64) ([]Submission, error) {
	return m.submissions[assignmentID], nil
}

type stubSessions struct {
	known map[int64]bool
}

func (s *stubSessions) FindSessionByID(ctx context.Context, id int64) (*authz.SessionRecord, error) {
	if !s.known[id] {
		return nil, shared.ErrNotFound
	}
	return &authz.SessionRecord{ID: id}, nil
}

func newTestService() *Service {
	return NewService(newMemoryRepo(), &stubSessions{known: map[int64]bool{10: true}})
}

func TestCreateRequiresExistingSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, NewAssignment{SessionID: 42, Title: "Worksheet"})
	require.ErrorIs(t, err, shared.ErrNotFound)

	a, err := svc.Create(ctx, NewAssignment{SessionID: 10, Title: "Worksheet"})
	require.NoError(t, err)
	require.NotZero(t, a.ID)

	_, err = svc.Create(ctx, NewAssignment{SessionID: 10, Title: "  "})
	require.Error(t, err)
}

func TestGetEnforcesSessionScope(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, NewAssignment{SessionID: 10, Title: "Worksheet"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, 10, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	// Addressing the assignment through a different session reads as missing.
	_, err = svc.Get(ctx, 11, a.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubmitReplacesPriorHandIn(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, NewAssignment{SessionID: 10, Title: "Worksheet"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 10, NewSubmission{AssignmentID: a.ID, UserID: 3, SubmissionURL: "https://example.com/v1"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 10, NewSubmission{AssignmentID: a.ID, UserID: 3, SubmissionURL: "https://example.com/v2"})
	require.NoError(t, err)

	subs, err := svc.ListSubmissions(ctx, 10, a.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "https://example.com/v2", subs[0].SubmissionURL)
}

func TestSubmitRequiresURL(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, NewAssignment{SessionID: 10, Title: "Worksheet"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 10, NewSubmission{AssignmentID: a.ID, UserID: 3, SubmissionURL: " "})
	require.Error(t, err)
}
