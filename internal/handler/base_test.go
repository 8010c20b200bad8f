package handler

import (
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/walkin-api/internal/form"
	"github.com/jwalitptl/walkin-api/internal/model"
	apperrors "github.com/jwalitptl/walkin-api/pkg/errors"
)

type fieldErr struct{ fields []form.FieldError }

func (e *fieldErr) Error() string                  { return "invalid" }
func (e *fieldErr) FieldErrors() []form.FieldError { return e.fields }

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not logged in", model.ErrNotLoggedIn, http.StatusUnauthorized},
		{"bad request", apperrors.BadRequest("bad", nil), http.StatusBadRequest},
		{"not found", apperrors.NotFound("patient record", nil), http.StatusNotFound},
		{"conflict", apperrors.Conflict("taken", nil), http.StatusConflict},
		{"store down", apperrors.Unavailable("store", errors.New("dial tcp")), http.StatusBadGateway},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondErrorIncludesFieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/patients", nil)

	err := apperrors.BadRequest("form has invalid fields", &fieldErr{fields: []form.FieldError{{Field: "lastName", Message: "is required"}}})
	RespondError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"form has invalid fields","errors":[{"field":"lastName","message":"is required"}]}`, w.Body.String())
	assert.True(t, c.IsAborted())
}

func TestSessionDefaultsToAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, Session(c).IsLoggedIn())

	SetSession(c, &model.StaffSession{User: "nurse"})
	assert.True(t, Session(c).IsLoggedIn())
	assert.Equal(t, "nurse", Session(c).Username())
}

func TestRespondErrorWithDataKeepsPayload(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/patients", nil)

	RespondErrorWithData(c, apperrors.Unavailable("store", errors.New("dial tcp")), map[string]string{"patient_number": "GUE-1"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"store unavailable","data":{"patient_number":"GUE-1"}}`, w.Body.String())
	assert.Len(t, c.Errors, 1)
}

func TestAttachmentEscapesFilename(t *testing.T) {
	tests := []string{
		"patient_records.csv",
		"Status_All Departments_All Months_All Years.csv",
		`Status_Dept "B"_March_2024.csv`,
	}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Attachment(c, name)

			disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
			require.NoError(t, err)
			assert.Equal(t, "attachment", disposition)
			assert.Equal(t, name, params["filename"])
		})
	}
}
