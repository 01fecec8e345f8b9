package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSendError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendError(c, http.StatusNotFound, ErrCodeNotFound, "Project not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Project not found", body["message"])
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, ErrCodeNotFound, errObj["code"])
	assert.Equal(t, "Project not found", errObj["message"])
}

func TestSendPaginated_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendPaginated(c, http.StatusOK, []string{"a", "b"}, 12, 2, 2)

	var body struct {
		Data struct {
			Items []string `json:"items"`
			Total int64    `json:"total"`
			Page  int      `json:"page"`
			Limit int      `json:"limit"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Data.Items)
	assert.EqualValues(t, 12, body.Data.Total)
	assert.Equal(t, 2, body.Data.Page)
	assert.Equal(t, 2, body.Data.Limit)
}

func TestAppError(t *testing.T) {
	err := NewValidationError("Invalid status", "status must be one of TODO, DONE")
	assert.Equal(t, "VALIDATION_ERROR: Invalid status (status must be one of TODO, DONE)", err.Error())
	assert.Equal(t, "NOT_FOUND: gone", NewNotFoundError("gone", "").Error())

	var wrapped error = err
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrCodeValidation, appErr.Code)
}
