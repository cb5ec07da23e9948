package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mie-portal/portal-api/internal/models"
)

const gradeColumns = "id, student_id, student_number, semester, acad_year, entries, created_at, updated_at"

// GradeRepository manages persistence for student grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grade records matching the filter, newest first.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	base := "FROM grades WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.StudentNumber != "" {
		conditions = append(conditions, fmt.Sprintf("student_number = $%d", len(args)+1))
		args = append(args, filter.StudentNumber)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY acad_year DESC, semester DESC", gradeColumns, base)
	var records []models.GradeRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return records, nil
}

// FindByID fetches a grade record by its storage identity.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.GradeRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE id = $1", gradeColumns)
	var record models.GradeRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByStudentAndTerm fetches the unique grade record for a student in
// one semester of an academic year.
func (r *GradeRepository) FindByStudentAndTerm(ctx context.Context, studentNumber string, semester int, acadYear string) (*models.GradeRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE student_number = $1 AND semester = $2 AND acad_year = $3", gradeColumns)
	var record models.GradeRecord
	if err := r.db.GetContext(ctx, &record, query, studentNumber, semester, acadYear); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new grade record.
func (r *GradeRepository) Create(ctx context.Context, record *models.GradeRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO grades (id, student_id, student_number, semester, acad_year, entries, created_at, updated_at)
		VALUES (:id, :student_id, :student_number, :semester, :acad_year, :entries, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create grade record: %w", err)
	}
	return nil
}

// Update replaces an existing grade record's term and entries.
func (r *GradeRepository) Update(ctx context.Context, record *models.GradeRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET semester = :semester, acad_year = :acad_year, entries = :entries, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update grade record: %w", err)
	}
	return nil
}

// Delete removes a grade record by its storage identity.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM grades WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete grade record: %w", err)
	}
	return nil
}
