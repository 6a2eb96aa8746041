package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papererp/backend/internal/interfaces/http/dto"
)

type validationTestRequest struct {
	Name   string `json:"name" binding:"required"`
	Reason string `json:"reason" binding:"omitempty,oneof=RETURN GOODWILL ADJUSTMENT"`
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	SetupValidator()

	engine := gin.New()
	engine.POST("/items", func(c *gin.Context) {
		var req validationTestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"reason":"BOGUS"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-777")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-777", resp.Error.RequestID)

	require.Len(t, resp.Error.Details, 2)
	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	// Field names come from json tags, not struct names
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "reason")
	assert.Contains(t, fields["reason"], "Must be one of")
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
