// internal/handlers/common_test.go

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/logger"
	"hotelac/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetLevel(logger.ErrorLevel)
	os.Exit(m.Run())
}

func record(t *testing.T, write func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	write(c)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestOkEnvelope(t *testing.T) {
	w, resp := record(t, func(c *gin.Context) {
		ok(c, "done", gin.H{"value": 1})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "done", resp.Msg)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Err)
}

func TestFailMapsErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		kind service.ErrorKind
		want int
	}{
		{"not_found", service.KindNotFound, http.StatusBadRequest},
		{"precondition", service.KindPrecondition, http.StatusBadRequest},
		{"out_of_range", service.KindOutOfRange, http.StatusBadRequest},
		{"invalid_argument", service.KindInvalidArgument, http.StatusBadRequest},
		{"internal", service.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := record(t, func(c *gin.Context) {
				fail(c, &service.EngineError{Kind: tc.kind, Message: "boom"})
			})
			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, tc.want, resp.Code)
			assert.Equal(t, "boom", resp.Msg)
			assert.Equal(t, "boom", resp.Err)
		})
	}
}

func TestBadRequestEnvelope(t *testing.T) {
	w, resp := record(t, func(c *gin.Context) {
		badRequest(c, assert.AnError)
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "Invalid request", resp.Msg)
	assert.NotEmpty(t, resp.Err)
}
