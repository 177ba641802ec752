package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"assessment-service/internal/config"
	"assessment-service/internal/event"
	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrMissingResults     = errors.New("missing required results fields")
	ErrDuplicateAnswer    = errors.New("duplicate answer for question")
	ErrAlreadySubmitted   = errors.New("session already has a submission")
	ErrSessionNotScorable = errors.New("session has no questions to score")
)

// SessionStore is the document-store contract the orchestrator requires:
// every call is atomic at session-document granularity.
type SessionStore interface {
	Create(ctx context.Context, session *models.AssessmentSession) error
	FindByID(ctx context.Context, id string) (*models.AssessmentSession, error)
	Update(ctx context.Context, id string, fields bson.M) error
	// UpdateStatus advances the status only from one of the given prior
	// statuses; anything else is a no-op.
	UpdateStatus(ctx context.Context, id, status string, from ...string) error
	PushQuestions(ctx context.Context, id string, items []models.Question, fields bson.M) error
}

// SectionGenerator produces exactly target items for a section. An empty
// return is the pathological total-failure case and fails the session.
type SectionGenerator interface {
	GenerateSection(ctx context.Context, sectionNumber int, categories []string, itemType string, profile models.UserProfile, target int) []models.Question
}

// sectionPlan describes one generation task.
type sectionPlan struct {
	number     int
	itemType   string
	categories []string
}

// Default category tags for the fixed sections. Domain categories come from
// the candidate's declared skill and interest tags.
var (
	aptitudeCategories = []string{
		"logical reasoning",
		"numerical ability",
		"verbal reasoning",
		"pattern recognition",
		"problem solving",
	}
	behavioralCategories = []string{
		"conflict resolution",
		"attention to detail",
		"leadership",
		"adaptability",
		"emotional stability",
	}
)

// sectionWorkers bounds the per-session generation pool: one worker per
// section.
const sectionWorkers = 3

type SessionService struct {
	store     SessionStore
	generator SectionGenerator
	publisher *event.EventPublisher

	itemsPerSection int
	failurePolicy   string
}

func NewSessionService(store SessionStore, generator SectionGenerator, publisher *event.EventPublisher, cfg *config.Config) *SessionService {
	return &SessionService{
		store:           store,
		generator:       generator,
		publisher:       publisher,
		itemsPerSection: cfg.ItemsPerSection,
		failurePolicy:   cfg.FailurePolicy,
	}
}

// CreateSession persists a new session and kicks off generation in the
// background; the id is returned immediately so the caller can poll.
func (s *SessionService) CreateSession(ctx context.Context, userID string, profile models.UserProfile) (*models.AssessmentSession, error) {
	now := time.Now()
	session := &models.AssessmentSession{
		UserID:      userID,
		UserProfile: profile,
		Status:      models.StatusCreated,
		Questions:   []models.Question{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	go s.runGeneration(session.ID, profile)

	s.publisher.PublishSessionEvent(event.SessionCreated, session.ID, userID)
	return session, nil
}

// runGeneration marks the session GENERATING and runs the three section tasks
// on a bounded worker pool. Each completion applies its own read-modify-write
// transition; sections never wait on each other.
func (s *SessionService) runGeneration(sessionID string, profile models.UserProfile) {
	ctx := context.Background()

	err := s.store.UpdateStatus(ctx, sessionID, models.StatusGenerating, models.StatusCreated)
	if err != nil {
		log.Printf("Session %s: failed to mark generating: %v", sessionID, err)
	}

	plans := []sectionPlan{
		{models.SectionAptitude, models.TypeMCQ, aptitudeCategories},
		{models.SectionBehavioral, models.TypeScenario, behavioralCategories},
		{models.SectionDomain, models.TypeMCQ, domainCategories(profile)},
	}

	tasks := make(chan sectionPlan, len(plans))
	var wg sync.WaitGroup
	for w := 0; w < sectionWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plan := range tasks {
				items := s.generator.GenerateSection(ctx, plan.number, plan.categories, plan.itemType, profile, s.itemsPerSection)
				s.applySectionResult(ctx, sessionID, plan.number, items)
			}
		}()
	}
	for _, plan := range plans {
		tasks <- plan
	}
	close(tasks)
	wg.Wait()
}

// applySectionResult is one section-completion transition. The item append
// and the ready flag land in a single document update touching only this
// section's slot, so sibling completions never overwrite each other; the
// status then advances through a monotonic conditional update.
func (s *SessionService) applySectionResult(ctx context.Context, sessionID string, section int, items []models.Question) {
	if len(items) == 0 {
		s.failSession(ctx, sessionID, section)
		return
	}

	err := s.store.PushQuestions(ctx, sessionID, items, bson.M{
		"section_ready." + models.SectionKey(section): true,
	})
	if err != nil {
		log.Printf("Session %s: section %d write failed: %v", sessionID, section, err)
		return
	}

	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		log.Printf("Session %s: reload after section %d completion failed: %v", sessionID, section, err)
		return
	}
	s.advanceStatus(ctx, session)

	s.publisher.PublishSessionEvent(event.SectionReady, sessionID, session.UserID)
	log.Printf("Session %s: section %d ready (%d items)", sessionID, section, len(items))
}

// advanceStatus applies the readiness merge rules: READY requires all three
// slots filled, PARTIAL_READY requires the aptitude slot (the section the UI
// starts with). Under the invalidate policy FAILED wins over everything, so
// it is never a valid prior status here; under keep-partial a failed session
// is rescued by any usable readiness.
func (s *SessionService) advanceStatus(ctx context.Context, session *models.AssessmentSession) {
	var desired string
	switch {
	case session.SectionReady.All():
		desired = models.StatusReady
	case session.SectionReady.Aptitude:
		desired = models.StatusPartialReady
	default:
		return
	}
	if desired == session.Status {
		return
	}

	from := []string{models.StatusCreated, models.StatusGenerating}
	if desired == models.StatusReady {
		from = append(from, models.StatusPartialReady)
	}
	if s.failurePolicy == config.FailurePolicyKeepPartial {
		from = append(from, models.StatusFailed)
	}

	if err := s.store.UpdateStatus(ctx, session.ID, desired, from...); err != nil {
		log.Printf("Session %s: status advance to %s failed: %v", session.ID, desired, err)
		return
	}
	if desired == models.StatusReady {
		s.publisher.PublishSessionEvent(event.SessionReady, session.ID, session.UserID)
	}
}

// failSession applies the configured failure policy when a section produced
// zero items even after fallback.
func (s *SessionService) failSession(ctx context.Context, sessionID string, section int) {
	log.Printf("Session %s: section %d produced no items, applying %s policy", sessionID, section, s.failurePolicy)

	// invalidate fails the session regardless of other sections' progress;
	// keep-partial only fails sessions with nothing usable yet.
	from := []string{models.StatusCreated, models.StatusGenerating}
	if s.failurePolicy == config.FailurePolicyInvalidate {
		from = append(from, models.StatusPartialReady, models.StatusReady)
	}
	if err := s.store.UpdateStatus(ctx, sessionID, models.StatusFailed, from...); err != nil {
		log.Printf("Session %s: failed to mark failed: %v", sessionID, err)
		return
	}
	s.publisher.PublishSessionEvent(event.SessionFailed, sessionID, "")
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*models.AssessmentSession, error) {
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SubmitAnswers stores the candidate's answers and the submission-time
// counter snapshot as-is and completes the session. Answers are written once;
// a completed session rejects further submissions. All validation happens
// before any state mutation.
func (s *SessionService) SubmitAnswers(ctx context.Context, id string, answers []models.Answer, results *models.TestResults) error {
	if results == nil {
		return ErrMissingResults
	}
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		if a.QuestionID == "" {
			return fmt.Errorf("%w: answer with empty question id", ErrMissingResults)
		}
		if seen[a.QuestionID] {
			return fmt.Errorf("%w %s", ErrDuplicateAnswer, a.QuestionID)
		}
		seen[a.QuestionID] = true
	}

	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.Status == models.StatusCompleted {
		return ErrAlreadySubmitted
	}

	err = s.store.Update(ctx, id, bson.M{
		"answers":      answers,
		"test_results": results,
		"status":       models.StatusCompleted,
	})
	if err != nil {
		return fmt.Errorf("store submission: %w", err)
	}
	s.publisher.PublishSessionEvent(event.SessionCompleted, id, session.UserID)
	return nil
}

// domainCategories derives the domain section's categories from the
// candidate's declared tags. The profile is treated as pre-validated input;
// no free-text sniffing happens here.
func domainCategories(profile models.UserProfile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tag := range append(append([]string{}, profile.Skills...), profile.Interests...) {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		out = []string{"general domain knowledge"}
	}
	return out
}
