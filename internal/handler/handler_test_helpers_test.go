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

	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

const (
	ownStudent   = "0b6f1c2e-9a4d-4e8b-a1c3-5d7e9f0a2b4c"
	otherStudent = "8e2d4f6a-1b3c-4d5e-9f7a-0c2e4a6b8d0f"
	classUUID    = "4a1b2c3d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
)

// studentsByUser maps account ids to student profiles.
type studentsByUser map[string]string

func (s studentsByUser) GetByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	id, ok := s[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &models.StudentDetail{Student: models.Student{ID: id, UserID: userID}}, nil
}

func newTestContext(method, target string, body interface{}, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var payload *bytes.Buffer
	switch v := body.(type) {
	case nil:
		payload = &bytes.Buffer{}
	case string:
		payload = bytes.NewBufferString(v)
	default:
		raw, _ := json.Marshal(v)
		payload = bytes.NewBuffer(raw)
	}
	req, _ := http.NewRequest(method, target, payload)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func withParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *appErrors.Error {
	t.Helper()
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error
}
