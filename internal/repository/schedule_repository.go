package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mie-portal/portal-api/internal/models"
)

const scheduleColumns = "id, student_number, semester, acad_year, entries, created_at, updated_at"

// ScheduleRepository manages persistence for student schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedules matching filters along with total count.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StudentNumber != "" {
		conditions = append(conditions, fmt.Sprintf("student_number = $%d", len(args)+1))
		args = append(args, filter.StudentNumber)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.AcadYear != "" {
		conditions = append(conditions, fmt.Sprintf("acad_year = $%d", len(args)+1))
		args = append(args, filter.AcadYear)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", scheduleColumns, base, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return schedules, total, nil
}

// FindByID fetches a schedule by its storage identity.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByTeacherAndSubject returns schedules containing an entry for the
// given (teacher, subject) pair, via JSONB containment on the entry list.
func (r *ScheduleRepository) ListByTeacherAndSubject(ctx context.Context, teacherID, subjectID string) ([]models.Schedule, error) {
	probe, err := json.Marshal([]map[string]string{{"teacher_id": teacherID, "subject_id": subjectID}})
	if err != nil {
		return nil, fmt.Errorf("build schedule probe: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM schedules WHERE entries @> $1::jsonb", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, string(probe)); err != nil {
		return nil, fmt.Errorf("list schedules by teacher and subject: %w", err)
	}
	return schedules, nil
}

// CountEntriesByTeacher reports how many schedule entries reference the teacher.
func (r *ScheduleRepository) CountEntriesByTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM schedules, jsonb_array_elements(entries) AS entry WHERE entry->>'teacher_id' = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, teacherID); err != nil {
		return 0, fmt.Errorf("count schedule entries by teacher: %w", err)
	}
	return total, nil
}

// Create inserts a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, student_number, semester, acad_year, entries, created_at, updated_at)
		VALUES (:id, :student_number, :semester, :acad_year, :entries, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update replaces an existing schedule record.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET student_number = :student_number, semester = :semester, acad_year = :acad_year, entries = :entries, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule by its storage identity.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedules WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
