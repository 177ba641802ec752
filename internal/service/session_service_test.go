package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"assessment-service/internal/config"
	"assessment-service/internal/fallback"
	"assessment-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// fakeStore is an in-memory SessionStore with the same atomic
// single-document update semantics the orchestrator expects from Mongo.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*models.AssessmentSession
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*models.AssessmentSession)}
}

func (f *fakeStore) Create(ctx context.Context, session *models.AssessmentSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	session.ID = fmt.Sprintf("sess-%d", f.seq)
	stored := *session
	stored.Questions = append([]models.Question(nil), session.Questions...)
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*models.AssessmentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no session %s", id)
	}
	copied := *stored
	copied.Questions = append([]models.Question(nil), stored.Questions...)
	copied.Answers = append([]models.Answer(nil), stored.Answers...)
	return &copied, nil
}

func (f *fakeStore) Update(ctx context.Context, id string, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("no session %s", id)
	}
	applyFields(stored, fields)
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id, status string, from ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("no session %s", id)
	}
	for _, prior := range from {
		if stored.Status == prior {
			stored.Status = status
			stored.UpdatedAt = time.Now()
			return nil
		}
	}
	// No match means no-op, mirroring a filtered UpdateOne.
	return nil
}

func (f *fakeStore) PushQuestions(ctx context.Context, id string, items []models.Question, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("no session %s", id)
	}
	stored.Questions = append(stored.Questions, items...)
	applyFields(stored, fields)
	return nil
}

func applyFields(s *models.AssessmentSession, fields bson.M) {
	for key, value := range fields {
		switch key {
		case "status":
			s.Status = value.(string)
		case "section_ready.aptitude":
			s.SectionReady.Aptitude = value.(bool)
		case "section_ready.behavioral":
			s.SectionReady.Behavioral = value.(bool)
		case "section_ready.domain":
			s.SectionReady.Domain = value.(bool)
		case "answers":
			s.Answers = value.([]models.Answer)
		case "test_results":
			s.TestResults = value.(*models.TestResults)
		}
	}
	s.UpdatedAt = time.Now()
}

// fakeGenerator returns placeholder-style items, or nothing for sections
// configured to fail.
type fakeGenerator struct {
	failSections map[int]bool
	delay        time.Duration
}

func (f *fakeGenerator) GenerateSection(ctx context.Context, sectionNumber int, categories []string, itemType string, profile models.UserProfile, target int) []models.Question {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failSections[sectionNumber] {
		return nil
	}
	return fallback.Placeholders(sectionNumber, itemType, categories, target)
}

func newTestService(store SessionStore, gen SectionGenerator, policy string) *SessionService {
	return NewSessionService(store, gen, nil, &config.Config{
		ItemsPerSection: 4,
		FailurePolicy:   policy,
	})
}

func waitForStatus(t *testing.T, store *fakeStore, id string, statuses ...string) *models.AssessmentSession {
	t.Helper()
	want := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var last *models.AssessmentSession
	require.Eventually(t, func() bool {
		session, err := store.FindByID(context.Background(), id)
		if err != nil {
			return false
		}
		last = session
		return want[session.Status]
	}, 2*time.Second, 5*time.Millisecond, "last status: %+v", last)
	return last
}

func TestCreateSessionReachesReady(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyInvalidate)

	session, err := svc.CreateSession(context.Background(), "user-1", models.UserProfile{
		Skills: []string{"go"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, models.StatusCreated, session.Status)

	final := waitForStatus(t, store, session.ID, models.StatusReady)
	assert.True(t, final.SectionReady.All())
	assert.Len(t, final.Questions, 12)

	// Readiness invariant: a ready section holds exactly its target count.
	for _, section := range []int{models.SectionAptitude, models.SectionBehavioral, models.SectionDomain} {
		require.True(t, final.SectionReady.ForSection(section))
		assert.Len(t, final.QuestionsForSection(section), 4)
	}
}

func TestSectionCompletionStatusTransitions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyInvalidate)

	session := &models.AssessmentSession{UserID: "u", Status: models.StatusGenerating}
	require.NoError(t, store.Create(context.Background(), session))

	// Behavioral alone keeps the session GENERATING: the UI starts with aptitude.
	items := fallback.Placeholders(models.SectionBehavioral, models.TypeScenario, []string{"leadership"}, 4)
	svc.applySectionResult(context.Background(), session.ID, models.SectionBehavioral, items)
	current, _ := store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusGenerating, current.Status)

	// Aptitude completion makes it PARTIAL_READY.
	items = fallback.Placeholders(models.SectionAptitude, models.TypeMCQ, []string{"logic"}, 4)
	svc.applySectionResult(context.Background(), session.ID, models.SectionAptitude, items)
	current, _ = store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusPartialReady, current.Status)

	// Domain completes the set: READY.
	items = fallback.Placeholders(models.SectionDomain, models.TypeMCQ, []string{"go"}, 4)
	svc.applySectionResult(context.Background(), session.ID, models.SectionDomain, items)
	current, _ = store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusReady, current.Status)
	assert.True(t, current.SectionReady.All())
}

func TestSectionFailureInvalidatePolicy(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{failSections: map[int]bool{models.SectionDomain: true}}
	svc := newTestService(store, gen, config.FailurePolicyInvalidate)

	session, err := svc.CreateSession(context.Background(), "user-1", models.UserProfile{})
	require.NoError(t, err)

	final := waitForStatus(t, store, session.ID, models.StatusFailed)
	assert.Equal(t, models.StatusFailed, final.Status)
	assert.False(t, final.SectionReady.Domain)
}

func TestSectionFailureKeepPartialPolicy(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyKeepPartial)

	session := &models.AssessmentSession{UserID: "u", Status: models.StatusGenerating}
	require.NoError(t, store.Create(context.Background(), session))

	// Aptitude ready first, then the domain section fails completely: the
	// partial session stays usable.
	items := fallback.Placeholders(models.SectionAptitude, models.TypeMCQ, []string{"logic"}, 4)
	svc.applySectionResult(context.Background(), session.ID, models.SectionAptitude, items)
	svc.applySectionResult(context.Background(), session.ID, models.SectionDomain, nil)

	current, _ := store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusPartialReady, current.Status)
}

func TestSectionFailureKeepPartialNothingReadyYet(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyKeepPartial)

	session := &models.AssessmentSession{UserID: "u", Status: models.StatusGenerating}
	require.NoError(t, store.Create(context.Background(), session))

	svc.applySectionResult(context.Background(), session.ID, models.SectionDomain, nil)
	current, _ := store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusFailed, current.Status)

	// A later success still rescues the session under keep-partial.
	items := fallback.Placeholders(models.SectionAptitude, models.TypeMCQ, []string{"logic"}, 4)
	svc.applySectionResult(context.Background(), session.ID, models.SectionAptitude, items)
	current, _ = store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusPartialReady, current.Status)
}

func TestFailedStompsReadyUnderInvalidate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyInvalidate)

	session := &models.AssessmentSession{UserID: "u", Status: models.StatusGenerating}
	require.NoError(t, store.Create(context.Background(), session))

	items := fallback.Placeholders(models.SectionAptitude, models.TypeMCQ, []string{"logic"}, 4)
	svc.applySectionResult(context.Background(), session.ID, models.SectionAptitude, items)
	svc.applySectionResult(context.Background(), session.ID, models.SectionDomain, nil)

	current, _ := store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusFailed, current.Status)
}

func TestConcurrentSectionCompletions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{delay: 2 * time.Millisecond}, config.FailurePolicyInvalidate)

	session, err := svc.CreateSession(context.Background(), "user-1", models.UserProfile{
		Skills:    []string{"go", "sql"},
		Interests: []string{"backend"},
	})
	require.NoError(t, err)

	final := waitForStatus(t, store, session.ID, models.StatusReady)
	assert.Len(t, final.Questions, 12)
	for _, section := range []int{models.SectionAptitude, models.SectionBehavioral, models.SectionDomain} {
		assert.Len(t, final.QuestionsForSection(section), 4)
	}
}

func TestSubmitAnswersCompletesSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyInvalidate)

	session := &models.AssessmentSession{UserID: "u", Status: models.StatusReady}
	require.NoError(t, store.Create(context.Background(), session))

	answers := []models.Answer{
		{QuestionID: "q1", SelectedOptionIndex: models.IntPtr(0)},
		{QuestionID: "q2", SelectedOptionIndex: nil},
	}
	results := &models.TestResults{TotalQuestions: 12, Attempted: 10, Correct: 7, Wrong: 3}
	require.NoError(t, svc.SubmitAnswers(context.Background(), session.ID, answers, results))

	current, _ := store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusCompleted, current.Status)
	assert.Len(t, current.Answers, 2)
	require.NotNil(t, current.TestResults)
	assert.Equal(t, 7, current.TestResults.Correct)
}

func TestSubmitAnswersRejectsResubmission(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyInvalidate)

	session := &models.AssessmentSession{UserID: "u", Status: models.StatusReady}
	require.NoError(t, store.Create(context.Background(), session))

	first := []models.Answer{{QuestionID: "q1", SelectedOptionIndex: models.IntPtr(0)}}
	results := &models.TestResults{TotalQuestions: 1, Attempted: 1, Correct: 1}
	require.NoError(t, svc.SubmitAnswers(context.Background(), session.ID, first, results))

	// The session is completed; a second submission must not replace the
	// stored answers or the counter snapshot.
	second := []models.Answer{{QuestionID: "q1", SelectedOptionIndex: models.IntPtr(1)}}
	err := svc.SubmitAnswers(context.Background(), session.ID, second, &models.TestResults{TotalQuestions: 1})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	current, _ := store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusCompleted, current.Status)
	require.Len(t, current.Answers, 1)
	require.NotNil(t, current.Answers[0].SelectedOptionIndex)
	assert.Equal(t, 0, *current.Answers[0].SelectedOptionIndex)
	require.NotNil(t, current.TestResults)
	assert.Equal(t, 1, current.TestResults.Correct)
}

func TestSubmitAnswersValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{}, config.FailurePolicyInvalidate)

	session := &models.AssessmentSession{UserID: "u", Status: models.StatusReady}
	require.NoError(t, store.Create(context.Background(), session))

	// Missing snapshot is rejected before any mutation.
	err := svc.SubmitAnswers(context.Background(), session.ID, nil, nil)
	assert.ErrorIs(t, err, ErrMissingResults)

	// Duplicate answers for one question are rejected.
	dup := []models.Answer{
		{QuestionID: "q1", SelectedOptionIndex: models.IntPtr(0)},
		{QuestionID: "q1", SelectedOptionIndex: models.IntPtr(1)},
	}
	err = svc.SubmitAnswers(context.Background(), session.ID, dup, &models.TestResults{TotalQuestions: 1})
	assert.ErrorIs(t, err, ErrDuplicateAnswer)

	// Session untouched by the rejected submissions.
	current, _ := store.FindByID(context.Background(), session.ID)
	assert.Equal(t, models.StatusReady, current.Status)
	assert.Empty(t, current.Answers)

	// Unknown session surfaces as not found.
	err = svc.SubmitAnswers(context.Background(), "missing", nil, &models.TestResults{TotalQuestions: 1})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeGenerator{}, config.FailurePolicyInvalidate)
	_, err := svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDomainCategories(t *testing.T) {
	got := domainCategories(models.UserProfile{
		Skills:    []string{"go", "sql", "go"},
		Interests: []string{"backend", "sql"},
	})
	assert.Equal(t, []string{"go", "sql", "backend"}, got)

	assert.Equal(t, []string{"general domain knowledge"}, domainCategories(models.UserProfile{}))
}
