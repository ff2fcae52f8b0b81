package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
	"github.com/courtside/courtside-api/pkg/export"
)

type enrollmentLister interface {
	ListByCoach(ctx context.Context, coachID string) ([]models.EnrollmentDetail, error)
}

type tournamentReader interface {
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders coach schedules and tournament brackets as
// downloadable files. Exports are generated synchronously per request.
type ExportService struct {
	enrollments enrollmentLister
	tournaments tournamentReader
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(enrollments enrollmentLister, tournaments tournamentReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		enrollments: enrollments,
		tournaments: tournaments,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
	}
}

// CoachSessionsCSV renders every session across a coach's active and past
// enrollments, one row per session, ordered by program then session index.
func (s *ExportService) CoachSessionsCSV(ctx context.Context, coachID string) ([]byte, string, error) {
	details, err := s.enrollments.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, "", err
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].ProgramTitle < details[j].ProgramTitle
	})

	rows := make([]map[string]string, 0)
	for i := range details {
		detail := &details[i]
		for j := range detail.Sessions {
			session := &detail.Sessions[j]
			rows = append(rows, map[string]string{
				"Program":    detail.ProgramTitle,
				"Sport":      detail.ProgramSport,
				"Student":    detail.StudentID,
				"Session":    fmt.Sprintf("%d", session.Index),
				"Slot":       session.Slot,
				"Date":       formatSessionDate(session.SessionDate),
				"Status":     string(session.Status),
				"Attendance": formatAttendance(session.Attendance),
			})
		}
	}

	dataset := export.Dataset{
		Headers: []string{"Program", "Sport", "Student", "Session", "Slot", "Date", "Status", "Attendance"},
		Rows:    rows,
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("coach_sessions_%s.csv", time.Now().UTC().Format("20060102_150405"))
	return payload, filename, nil
}

// BracketPDF renders the full bracket of a tournament, round by round.
func (s *ExportService) BracketPDF(ctx context.Context, tournamentID string) ([]byte, string, error) {
	t, err := s.tournaments.FindByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "tournament not found")
		}
		return nil, "", err
	}

	rows := make([]map[string]string, 0, len(t.Matches))
	for i := range t.Matches {
		match := &t.Matches[i]
		rows = append(rows, map[string]string{
			"Round":     fmt.Sprintf("%d", match.Round),
			"Match":     fmt.Sprintf("%d", match.MatchNumber),
			"Player A":  formatEntrant(match.PlayerA),
			"Player B":  formatEntrant(match.PlayerB),
			"Score":     fmt.Sprintf("%d - %d", match.ScoreA, match.ScoreB),
			"Winner":    formatEntrant(match.Winner),
			"Court":     match.Court,
			"Scheduled": formatSessionDate(match.ScheduledAt),
			"Status":    string(match.Status),
		})
	}

	dataset := export.Dataset{
		Headers: []string{"Round", "Match", "Player A", "Player B", "Score", "Winner", "Court", "Scheduled", "Status"},
		Rows:    rows,
	}
	payload, err := s.pdf.Render(dataset, fmt.Sprintf("%s Bracket", t.Title))
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("bracket_%s_%s.pdf", t.ID, time.Now().UTC().Format("20060102_150405"))
	return payload, filename, nil
}

func formatSessionDate(t *time.Time) string {
	if t == nil {
		return "TBD"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatAttendance(a *models.AttendanceValue) string {
	if a == nil {
		return ""
	}
	return string(*a)
}

func formatEntrant(e *models.Entrant) string {
	if e == nil {
		return "TBD"
	}
	return e.ID
}
