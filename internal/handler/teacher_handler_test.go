package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/mie-portal/portal-api/internal/middleware"
	"github.com/mie-portal/portal-api/internal/models"
	"github.com/mie-portal/portal-api/internal/service"
)

type teacherRepoStub struct {
	teacher models.Teacher
	saved   models.SubjectAssignments
}

func (s *teacherRepoStub) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	return []models.Teacher{s.teacher}, 1, nil
}

func (s *teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	t := s.teacher
	return &t, nil
}

func (s *teacherRepoStub) FindByAccountID(ctx context.Context, accountID string) (*models.Teacher, error) {
	t := s.teacher
	return &t, nil
}

func (s *teacherRepoStub) UpdateSubjects(ctx context.Context, id string, subjects models.SubjectAssignments) error {
	s.saved = subjects
	return nil
}

type subjectFinderStub struct{}

func (s *subjectFinderStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	return &models.Subject{ID: id, Code: "MATH101"}, nil
}

type teacherResolverStub struct {
	teacher models.Teacher
}

func (s *teacherResolverStub) ResolveTeacher(ctx context.Context, ref string) (*models.Teacher, error) {
	t := s.teacher
	return &t, nil
}

func newTeacherHandlerFixture() (*TeacherHandler, *teacherRepoStub) {
	repo := &teacherRepoStub{teacher: models.Teacher{ID: "teach-1", AccountID: "acc-1", TeacherUID: "T-100"}}
	svc := service.NewTeacherService(repo, &subjectFinderStub{}, &teacherResolverStub{teacher: repo.teacher}, nil, nil, nil)
	return NewTeacherHandler(svc), repo
}

func TestTeacherHandlerUpdateSubjects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTeacherHandlerFixture()

	payload := []byte(`{"subjects":[{"subject_id":"sub-1","day":"Monday","time":"08:00-09:30","room":"101"}]}`)
	req, _ := http.NewRequest(http.MethodPut, "/teachers/teach-1/subjects", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "teach-1"}}

	handler.UpdateSubjects(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.saved, 1)
	require.Equal(t, 4, repo.saved[0].Slots)
}

func TestTeacherHandlerUpdateSubjectsConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTeacherHandlerFixture()

	payload := []byte(`{"subjects":[
		{"subject_id":"sub-1","day":"Monday","time":"08:00-09:30"},
		{"subject_id":"sub-2","day":"Monday","time":"09:30-10:30"}
	]}`)
	req, _ := http.NewRequest(http.MethodPut, "/teachers/teach-1/subjects", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "teach-1"}}

	handler.UpdateSubjects(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Nil(t, repo.saved)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "SCHEDULE_CONFLICT", body.Error.Code)
}

func TestTeacherHandlerUpdateSubjectsBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTeacherHandlerFixture()

	req, _ := http.NewRequest(http.MethodPut, "/teachers/teach-1/subjects", bytes.NewReader([]byte(`{"subjects":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.UpdateSubjects(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeacherHandlerUpdateSubjectsForbiddenForOtherAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTeacherHandlerFixture()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{AccountID: "acc-other", Role: models.RoleStudent})
		c.Next()
	})
	router.PUT("/teachers/:id/subjects", internalmiddleware.RBAC(string(models.RoleAdmin), "SELF"), handler.UpdateSubjects)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/teachers/teach-1/subjects", bytes.NewReader([]byte(`{"subjects":[]}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTeacherHandlerUpdateSubjectsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTeacherHandlerFixture()
	router := gin.New()
	router.PUT("/teachers/:id/subjects", internalmiddleware.RBAC(string(models.RoleAdmin)), handler.UpdateSubjects)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/teachers/teach-1/subjects", bytes.NewReader([]byte(`{"subjects":[]}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
