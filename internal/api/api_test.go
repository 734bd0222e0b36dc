package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aleksanderujek/oro/internal/dashboard"
	"github.com/aleksanderujek/oro/internal/engine"
	"github.com/aleksanderujek/oro/internal/expense"
	"github.com/aleksanderujek/oro/internal/mapping"
	"github.com/aleksanderujek/oro/internal/provider"
	"github.com/aleksanderujek/oro/internal/query"
	"github.com/aleksanderujek/oro/internal/similarity"
	"github.com/aleksanderujek/oro/internal/testutil"
)

const testJWTSecret = "test-secret-key"

// testAPI wires the full router over an in-memory store, exactly as the
// serve command does.
type testAPI struct {
	router *gin.Engine
	db     *testutil.TestDB
	mock   *provider.Mock
	userID string
	token  string
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	mock := provider.NewMock()
	resolver := mapping.NewResolver(db.Storage, similarity.NewTrigramScorer())
	eng := engine.New(db.Storage, resolver, mock)

	handler := NewHandler(
		db.Storage,
		expense.NewService(db.Storage, eng),
		query.New(db.Storage),
		dashboard.New(db.Storage),
		eng,
		resolver,
	)
	router := NewRouter(handler, []byte(testJWTSecret))

	id := uuid.New().String()
	return &testAPI{
		router: router,
		db:     db,
		mock:   mock,
		userID: id,
		token:  signToken(t, id),
	}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// do performs an authenticated JSON request against the router.
func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.doWithToken(t, method, path, body, a.token)
}

// doAnonymous performs a request without an Authorization header.
func (a *testAPI) doAnonymous(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.doWithToken(t, method, path, body, "")
}

func (a *testAPI) doWithToken(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

// errorCode extracts the discriminated code from an error body.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, w, &resp)
	return resp.Code
}

// createExpense posts a minimal expense and returns the response body.
func (a *testAPI) createExpense(t *testing.T, name string, amount float64, occurredAt time.Time) createExpenseResponse {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/v1/expenses", createExpenseRequest{
		Name:       name,
		Amount:     amount,
		OccurredAt: occurredAt,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp createExpenseResponse
	decode(t, w, &resp)
	return resp
}
