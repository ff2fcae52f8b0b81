package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/internal/service"
)

type fakeEnrollmentRepo struct {
	items map[string]*models.Enrollment
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if f.items == nil {
		f.items = make(map[string]*models.Enrollment)
	}
	for i := range enrollment.Sessions {
		if enrollment.Sessions[i].ID == "" {
			enrollment.Sessions[i].ID = enrollment.ID + "-s" + string(rune('a'+i))
		}
	}
	cp := *enrollment
	f.items[enrollment.ID] = &cp
	return nil
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if enrollment, ok := f.items[id]; ok {
		cp := *enrollment
		cp.Sessions = append([]models.Session(nil), enrollment.Sessions...)
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) Save(ctx context.Context, enrollment *models.Enrollment) error {
	cp := *enrollment
	f.items[enrollment.ID] = &cp
	return nil
}

func (f *fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (f *fakeEnrollmentRepo) ListByCoach(ctx context.Context, coachID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (f *fakeEnrollmentRepo) CoachSlotTaken(ctx context.Context, coachID string, day time.Time, slot string) (bool, error) {
	return false, nil
}

type fakeProgramReader struct{}

func (f *fakeProgramReader) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	return &models.TrainingProgram{
		ID:            id,
		Title:         "Junior Tennis",
		Sport:         "tennis",
		Level:         "beginner",
		DurationDays:  60,
		TotalSessions: 10,
		Price:         decimal.RequireFromString("500.00"),
		Slots:         pq.StringArray{"morning"},
		CoachID:       "coach-1",
	}, nil
}

func newEnrollmentHandler() (*EnrollmentHandler, *fakeEnrollmentRepo) {
	repo := &fakeEnrollmentRepo{}
	svc := service.NewEnrollmentService(repo, &fakeProgramReader{}, zap.NewNop())
	return NewEnrollmentHandler(svc), repo
}

func TestEnrollmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newEnrollmentHandler()

	body, _ := json.Marshal(map[string]interface{}{
		"student_id":   "student-1",
		"program_id":   "prog-1",
		"slot":         "morning",
		"payment_type": "full_advance",
		"start_date":   "2026-03-01T00:00:00Z",
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.items, 1)

	var envelope struct {
		Data models.Enrollment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.EnrollmentStatusActive, envelope.Data.Status)
	assert.Len(t, envelope.Data.Sessions, 10)
}

func TestEnrollmentHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newEnrollmentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrollmentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newEnrollmentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollmentHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newEnrollmentHandler()

	svc := service.NewEnrollmentService(repo, &fakeProgramReader{}, zap.NewNop())
	enrollment, err := svc.Enroll(context.Background(), service.EnrollRequest{
		StudentID:   "student-1",
		ProgramID:   "prog-1",
		Slot:        "morning",
		PaymentType: models.PaymentTypeFullAdvance,
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"reason": "injury"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/enrollments/"+enrollment.ID+"/cancel", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: enrollment.ID}}

	handler.Cancel(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.Enrollment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.EnrollmentStatusCancelled, envelope.Data.Status)
	assert.True(t, envelope.Data.Payment.RefundAmount.Equal(decimal.RequireFromString("500.00")))
}
