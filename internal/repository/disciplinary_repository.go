package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mie-portal/portal-api/internal/models"
)

const disciplinaryColumns = "d.id, d.teacher_id, d.student_number, d.violation, d.sanction, d.severity, d.remarks, d.date, d.created_at, d.updated_at"

const disciplinaryDetailColumns = disciplinaryColumns + `,
	a.firstname AS teacher_firstname,
	a.lastname AS teacher_lastname,
	a.photo AS teacher_photo`

// DisciplinaryRepository manages persistence for disciplinary records.
type DisciplinaryRepository struct {
	db *sqlx.DB
}

// NewDisciplinaryRepository constructs a DisciplinaryRepository.
func NewDisciplinaryRepository(db *sqlx.DB) *DisciplinaryRepository {
	return &DisciplinaryRepository{db: db}
}

// ListByStudentNumber returns a student's disciplinary history with the
// filing teacher's identity joined in, newest violation first.
func (r *DisciplinaryRepository) ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.DisciplinaryRecordDetail, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM disciplinary_records d
		JOIN teachers t ON t.id = d.teacher_id
		JOIN accounts a ON a.id = t.account_id
		WHERE d.student_number = $1
		ORDER BY d.date DESC`, disciplinaryDetailColumns)

	var records []models.DisciplinaryRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, studentNumber); err != nil {
		return nil, fmt.Errorf("list disciplinary records: %w", err)
	}
	return records, nil
}

// FindByID fetches a disciplinary record by its storage identity.
func (r *DisciplinaryRepository) FindByID(ctx context.Context, id string) (*models.DisciplinaryRecord, error) {
	const query = `SELECT id, teacher_id, student_number, violation, sanction, severity, remarks, date, created_at, updated_at
		FROM disciplinary_records WHERE id = $1`
	var record models.DisciplinaryRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new disciplinary record.
func (r *DisciplinaryRepository) Create(ctx context.Context, record *models.DisciplinaryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.Date.IsZero() {
		record.Date = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO disciplinary_records (id, teacher_id, student_number, violation, sanction, severity, remarks, date, created_at, updated_at)
		VALUES (:id, :teacher_id, :student_number, :violation, :sanction, :severity, :remarks, :date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create disciplinary record: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a disciplinary record.
func (r *DisciplinaryRepository) Update(ctx context.Context, record *models.DisciplinaryRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE disciplinary_records
		SET violation = :violation, sanction = :sanction, severity = :severity, remarks = :remarks, date = :date, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update disciplinary record: %w", err)
	}
	return nil
}

// DeleteMany removes the given disciplinary records and reports how many
// rows were actually deleted.
func (r *DisciplinaryRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM disciplinary_records WHERE id IN (?)", ids)
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}
	query = r.db.Rebind(query)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete disciplinary records: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete disciplinary records: %w", err)
	}
	return affected, nil
}
