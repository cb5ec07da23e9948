package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/mie-portal/portal-api/pkg/errors"
	"github.com/mie-portal/portal-api/pkg/export"
)

type reportScheduleLookup interface {
	CountEntriesByTeacher(ctx context.Context, teacherID string) (int, error)
}

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table, title string) ([]byte, error)
}

// ReportFormat selects the rendered file type.
type ReportFormat string

// Supported report formats.
const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// TeacherLoad summarises how many schedule entries reference a teacher.
type TeacherLoad struct {
	TeacherID    string `json:"teacher_id"`
	TeacherUID   string `json:"teacher_uid"`
	ScheduledFor int    `json:"scheduled_for"`
}

// ReportService renders grade rosters as downloadable files and computes
// teacher scheduling load figures.
type ReportService struct {
	grades    *GradeService
	schedules reportScheduleLookup
	identity  teacherResolver
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(grades *GradeService, schedules reportScheduleLookup, identity teacherResolver, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{grades: grades, schedules: schedules, identity: identity, csv: csv, pdf: pdf, logger: logger}
}

// RosterReport renders the graded roster for a (teacher, subject) pair in
// the requested format.
func (s *ReportService) RosterReport(ctx context.Context, teacherRef, subjectID string, semester int, acadYear string, format ReportFormat) ([]byte, string, error) {
	roster, err := s.grades.Roster(ctx, teacherRef, subjectID, semester, acadYear)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Columns: []string{"Student Number", "Last Name", "First Name", "Course", "Percent", "Status", "Graded Date"},
	}
	for _, row := range roster {
		percent := ""
		status := ""
		gradedDate := ""
		if row.Percent != nil {
			percent = fmt.Sprintf("%.2f", *row.Percent)
			status = row.Status
		}
		if row.GradedDate != nil {
			gradedDate = row.GradedDate.Format("2006-01-02")
		}
		table.Rows = append(table.Rows, []string{
			row.StudentNumber,
			row.LastName,
			row.FirstName,
			row.Course,
			percent,
			status,
			gradedDate,
		})
	}

	switch format {
	case FormatCSV:
		data, err := s.csv.Render(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case FormatPDF:
		title := fmt.Sprintf("Grade Roster %s %s", subjectID, acadYear)
		data, err := s.pdf.Render(table, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	}
	return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown report format "+strings.TrimSpace(string(format)))
}

// TeacherLoad reports how many schedule entries currently reference the
// teacher across all student schedules.
func (s *ReportService) TeacherLoad(ctx context.Context, teacherRef string) (*TeacherLoad, error) {
	teacher, err := s.identity.ResolveTeacher(ctx, teacherRef)
	if err != nil {
		return nil, err
	}
	count, err := s.schedules.CountEntriesByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count schedule entries")
	}
	return &TeacherLoad{TeacherID: teacher.ID, TeacherUID: teacher.TeacherUID, ScheduledFor: count}, nil
}
