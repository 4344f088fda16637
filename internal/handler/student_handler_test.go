package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/config"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/handler"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/metrics"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/model"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/repository"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/router"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/service"
)

// memRepo is an in-memory StudentRepository with the same error contract as
// the PostgreSQL implementation, so handler tests can drive the full
// request pipeline without a database.
type memRepo struct {
	nextID   int
	students map[int]model.Student
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, students: make(map[int]model.Student)}
}

func (r *memRepo) Create(_ context.Context, s *model.Student) error {
	for _, existing := range r.students {
		if existing.Email == s.Email {
			return repository.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	s.ID = r.nextID
	s.CreatedAt = now
	s.UpdatedAt = now
	r.nextID++
	r.students[s.ID] = *s
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id int) (*model.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *memRepo) List(_ context.Context) ([]model.Student, error) {
	ids := make([]int, 0, len(r.students))
	for id := range r.students {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	students := make([]model.Student, 0, len(ids))
	for _, id := range ids {
		students = append(students, r.students[id])
	}
	return students, nil
}

func (r *memRepo) Update(_ context.Context, id int, patch model.StudentPatch) (*model.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Email != nil && *patch.Email != s.Email {
		for other, existing := range r.students {
			if other != id && existing.Email == *patch.Email {
				return nil, repository.ErrDuplicateEmail
			}
		}
	}
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Age != nil {
		s.Age = *patch.Age
	}
	if patch.Grade != nil {
		s.Grade = *patch.Grade
	}
	if patch.Email != nil {
		s.Email = *patch.Email
	}
	s.UpdatedAt = time.Now().UTC()
	r.students[id] = s
	return &s, nil
}

func (r *memRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.students[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.students, id)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := service.NewStudentService(repo, zerolog.Nop())
	h := handler.NewStudentHandler(svc)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	cfg := &config.Config{GinMode: gin.TestMode}
	return router.SetupRouter(h, m, registry, zerolog.Nop(), cfg), repo
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func alicePayload() map[string]interface{} {
	return map[string]interface{}{
		"name":  "Alice",
		"age":   10,
		"grade": "5th",
		"email": "alice@example.com",
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/api/v1/health", "/api/v1/healthcheck"} {
		rec := doRequest(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}

func TestCreateStudent(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/api/v1/students", alicePayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, "alice@example.com", data["email"])
	assert.Equal(t, float64(1), data["id"])
	assert.NotEmpty(t, data["created_at"])
	assert.NotEmpty(t, data["updated_at"])
}

func TestCreateStudent_MalformedJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["status"])
}

func TestCreateStudent_ValidationDetails(t *testing.T) {
	r, _ := newTestRouter(t)

	payload := alicePayload()
	payload["name"] = "A1ice"
	rec := doRequest(r, http.MethodPost, "/api/v1/students", payload)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	details := body["details"].(map[string]interface{})
	assert.Contains(t, details, "name")
}

func TestCreateStudent_DuplicateEmail(t *testing.T) {
	r, repo := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/api/v1/students", alicePayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(r, http.MethodPost, "/api/v1/students", alicePayload())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["status"])
	assert.Len(t, repo.students, 1, "no row may be added on conflict")
}

func TestCreateStudent_IgnoresReadOnlyAndUnknownFields(t *testing.T) {
	r, _ := newTestRouter(t)

	payload := alicePayload()
	payload["id"] = 999
	payload["created_at"] = "1999-01-01T00:00:00Z"
	payload["favorite_color"] = "blue"
	rec := doRequest(r, http.MethodPost, "/api/v1/students", payload)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.NotEqual(t, "1999-01-01T00:00:00Z", data["created_at"])
}

func TestListStudents_EmptyIsArray(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/api/v1/students", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	data, ok := body["data"].([]interface{})
	require.True(t, ok, "data must be a JSON array, got %T", body["data"])
	assert.Empty(t, data)
}

func TestGetStudent_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/api/v1/students/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["status"])
}

func TestGetStudent_NonIntegerID(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/api/v1/students/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource not found", decode(t, rec)["message"])
}

func TestUpdateStudent_PartialPatch(t *testing.T) {
	r, _ := newTestRouter(t)
	doRequest(r, http.MethodPost, "/api/v1/students", alicePayload())

	rec := doRequest(r, http.MethodPut, "/api/v1/students/1", map[string]interface{}{"age": 11})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["age"])
	assert.Equal(t, "Alice", data["name"], "untouched fields must survive a patch")
}

func TestUpdateStudent_EmailConflict(t *testing.T) {
	r, repo := newTestRouter(t)
	doRequest(r, http.MethodPost, "/api/v1/students", alicePayload())

	bob := alicePayload()
	bob["name"] = "Bob"
	bob["email"] = "bob@example.com"
	doRequest(r, http.MethodPost, "/api/v1/students", bob)

	rec := doRequest(r, http.MethodPut, "/api/v1/students/2", map[string]interface{}{"email": "alice@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "bob@example.com", repo.students[2].Email, "original row must be unchanged")
}

func TestUpdateStudent_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodPut, "/api/v1/students/99", map[string]interface{}{"age": 11})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStudent_Lifecycle(t *testing.T) {
	r, _ := newTestRouter(t)
	doRequest(r, http.MethodPost, "/api/v1/students", alicePayload())

	rec := doRequest(r, http.MethodDelete, "/api/v1/students/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Contains(t, body["message"], "1")
	assert.NotContains(t, body, "data")

	rec = doRequest(r, http.MethodGet, "/api/v1/students/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStudent_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodDelete, "/api/v1/students/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/api/v1/students", alicePayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	id := int(decode(t, rec)["data"].(map[string]interface{})["id"].(float64))

	rec = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/students/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, float64(10), data["age"])
	assert.Equal(t, "5th", data["grade"])
	assert.Equal(t, "alice@example.com", data["email"])
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/api/v2/teachers", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Resource not found", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	doRequest(r, http.MethodGet, "/api/v1/students", nil)

	rec := doRequest(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), `path="/api/v1/students"`)
}
