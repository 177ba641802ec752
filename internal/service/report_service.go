package service

import (
	"context"
	"log"

	"assessment-service/internal/models"
	"assessment-service/internal/scoring"
)

// ReportStore persists scored reports for later retrieval. FindBySession
// returns an error when no report exists yet for the session.
type ReportStore interface {
	Create(ctx context.Context, report *models.AssessmentReport) error
	FindBySession(ctx context.Context, sessionID string) (*models.AssessmentReport, error)
	FindByUser(ctx context.Context, userID string) ([]models.AssessmentReport, error)
}

type ReportService struct {
	sessions SessionStore
	reports  ReportStore
}

func NewReportService(sessions SessionStore, reports ReportStore) *ReportService {
	return &ReportService{sessions: sessions, reports: reports}
}

// BuildReport scores a session and persists the snapshot. Each session gets
// at most one stored report: a previously persisted report is returned as-is.
func (s *ReportService) BuildReport(ctx context.Context, sessionID string) (*models.AssessmentReport, error) {
	if s.reports != nil {
		if existing, err := s.reports.FindBySession(ctx, sessionID); err == nil && existing != nil {
			return existing, nil
		}
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if len(session.Questions) == 0 {
		return nil, ErrSessionNotScorable
	}

	report := scoring.BuildReport(session)
	if s.reports != nil {
		if err := s.reports.Create(ctx, report); err != nil {
			// The report itself is still good; persistence is best effort.
			log.Printf("Session %s: failed to persist report: %v", sessionID, err)
		}
	}
	return report, nil
}

func (s *ReportService) ReportsForUser(ctx context.Context, userID string) ([]models.AssessmentReport, error) {
	if s.reports == nil {
		return nil, nil
	}
	return s.reports.FindByUser(ctx, userID)
}
