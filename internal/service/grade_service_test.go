package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mie-portal/portal-api/internal/models"
)

type mockGradeRepo struct {
	records map[string]*models.GradeRecord
	created []*models.GradeRecord
	updated []*models.GradeRecord
}

func gradeKey(studentNumber string, semester int, acadYear string) string {
	return studentNumber + "|" + acadYear + "|" + string(rune('0'+semester))
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	var out []models.GradeRecord
	for _, r := range m.records {
		if filter.StudentNumber != "" && r.StudentNumber != filter.StudentNumber {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.GradeRecord, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) FindByStudentAndTerm(ctx context.Context, studentNumber string, semester int, acadYear string) (*models.GradeRecord, error) {
	if r, ok := m.records[gradeKey(studentNumber, semester, acadYear)]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) Create(ctx context.Context, record *models.GradeRecord) error {
	record.ID = "g-" + record.StudentNumber
	if m.records == nil {
		m.records = map[string]*models.GradeRecord{}
	}
	m.records[gradeKey(record.StudentNumber, record.Semester, record.AcadYear)] = record
	m.created = append(m.created, record)
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, record *models.GradeRecord) error {
	m.updated = append(m.updated, record)
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type mockGradeScheduleLookup struct {
	schedules []models.Schedule
}

func (m *mockGradeScheduleLookup) ListByTeacherAndSubject(ctx context.Context, teacherID, subjectID string) ([]models.Schedule, error) {
	return m.schedules, nil
}

type mockGradeStudentLookup struct {
	students map[string]*models.Student
}

func (m *mockGradeStudentLookup) FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Student, error) {
	if s, ok := m.students[studentNumber]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockGradeAccountLookup struct {
	accounts map[string]*models.Account
}

func (m *mockGradeAccountLookup) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func newGradeServiceFixture() (*GradeService, *mockGradeRepo) {
	teacher := &models.Teacher{ID: "t1", AccountID: "acc-t1"}
	repo := &mockGradeRepo{records: map[string]*models.GradeRecord{}}
	schedules := &mockGradeScheduleLookup{schedules: []models.Schedule{
		{StudentNumber: "2021-00001"},
		{StudentNumber: "2021-00002"},
	}}
	students := &mockGradeStudentLookup{students: map[string]*models.Student{
		"2021-00001": {ID: "s1", AccountID: "acc-s1", StudentNumber: "2021-00001", Course: "BSCS"},
		"2021-00002": {ID: "s2", AccountID: "acc-s2", StudentNumber: "2021-00002", Course: "BSIT"},
	}}
	accounts := &mockGradeAccountLookup{accounts: map[string]*models.Account{
		"acc-s1": {ID: "acc-s1", FirstName: "Juan", LastName: "Dela Cruz"},
		"acc-s2": {ID: "acc-s2", FirstName: "Maria", LastName: "Santos"},
	}}
	svc := NewGradeService(repo, schedules, students, accounts, &staticTeacherResolver{teacher: teacher}, nil, nil)
	return svc, repo
}

func TestGradeStatusThreshold(t *testing.T) {
	assert.Equal(t, "Passed", GradeStatus(75))
	assert.Equal(t, "Passed", GradeStatus(100))
	assert.Equal(t, "Failed", GradeStatus(74.99))
	assert.Equal(t, "Failed", GradeStatus(0))
}

func TestUpsertCreatesTermRecord(t *testing.T) {
	svc, repo := newGradeServiceFixture()

	record, err := svc.Upsert(context.Background(), UpsertGradeRequest{
		StudentNumber: "2021-00001",
		TeacherRef:    "acc-t1",
		SubjectID:     "subj1",
		Semester:      1,
		AcadYear:      "2025-2026",
		Percent:       88,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Len(t, record.Entries, 1)
	assert.Equal(t, "t1", record.Entries[0].TeacherID)
	assert.Equal(t, float64(88), record.Entries[0].Percent)
}

func TestUpsertReplacesExistingEntry(t *testing.T) {
	svc, repo := newGradeServiceFixture()
	repo.records[gradeKey("2021-00001", 1, "2025-2026")] = &models.GradeRecord{
		ID:            "g1",
		StudentNumber: "2021-00001",
		Semester:      1,
		AcadYear:      "2025-2026",
		Entries: models.GradeEntries{
			{TeacherID: "t1", SubjectID: "subj1", Percent: 60, GradedDate: time.Now().Add(-time.Hour)},
			{TeacherID: "t2", SubjectID: "subj2", Percent: 90},
		},
	}

	record, err := svc.Upsert(context.Background(), UpsertGradeRequest{
		StudentNumber: "2021-00001",
		TeacherRef:    "acc-t1",
		SubjectID:     "subj1",
		Semester:      1,
		AcadYear:      "2025-2026",
		Percent:       82,
	})
	require.NoError(t, err)
	require.Len(t, record.Entries, 2)
	assert.Equal(t, float64(82), record.Entries[0].Percent)
	assert.Equal(t, float64(90), record.Entries[1].Percent)
	require.Len(t, repo.updated, 1)
	assert.Empty(t, repo.created)
}

func TestRosterOverlaysGrades(t *testing.T) {
	svc, repo := newGradeServiceFixture()
	repo.records[gradeKey("2021-00001", 1, "2025-2026")] = &models.GradeRecord{
		StudentNumber: "2021-00001",
		Semester:      1,
		AcadYear:      "2025-2026",
		Entries: models.GradeEntries{
			{TeacherID: "t1", SubjectID: "subj1", Percent: 91, GradedDate: time.Now()},
		},
	}

	roster, err := svc.Roster(context.Background(), "acc-t1", "subj1", 1, "2025-2026")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	graded := roster[0]
	assert.Equal(t, "2021-00001", graded.StudentNumber)
	assert.Equal(t, "Juan", graded.FirstName)
	require.NotNil(t, graded.Percent)
	assert.Equal(t, float64(91), *graded.Percent)
	assert.Equal(t, "Passed", graded.Status)

	ungraded := roster[1]
	assert.Equal(t, "2021-00002", ungraded.StudentNumber)
	assert.Nil(t, ungraded.Percent)
	assert.Empty(t, ungraded.Status)
}
