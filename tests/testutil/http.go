package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase drives one request through a single handler.
type HTTPTestCase struct {
	Name    string
	Method  string
	Path    string
	Body    any
	Headers map[string]string
	// Params fills gin path parameters (":id" and friends)
	Params gin.Params
	// User signs the request in; Admin gives it the manage permission
	User      *uuid.UUID
	Admin     bool
	SessionID string

	ExpectedStatus int
	// ExpectedCode is the envelope error code, e.g. "ERR_NOT_FOUND"
	ExpectedCode string
	Setup        func(t *testing.T, tc *TestContext)
	Validate     func(t *testing.T, tc *TestContext)
}

// RunHTTPTestCases runs each case as a subtest.
func RunHTTPTestCases(t *testing.T, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, handler, tc)
		})
	}
}

// RunHTTPTestCase builds the request, signs it in if asked, calls handler
// and checks status and envelope code.
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) {
	t.Helper()

	var body io.Reader
	if tc.Body != nil {
		body = ToJSONReader(t, tc.Body)
	}
	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	path := tc.Path
	if path == "" {
		path = "/"
	}

	req := httptest.NewRequest(method, path, body)
	if tc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tc.Headers {
		req.Header.Set(k, v)
	}

	testCtx := NewTestContextFor(t, req)
	testCtx.Context.Params = tc.Params
	if tc.User != nil {
		testCtx.SetUser(*tc.User, tc.Admin)
	}
	if tc.SessionID != "" {
		testCtx.SetSessionID(tc.SessionID)
	}
	if tc.Setup != nil {
		tc.Setup(t, testCtx)
	}

	handler(testCtx.Context)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, testCtx.ResponseCode(), "body: %s", testCtx.ResponseBody())
	}
	if tc.ExpectedCode != "" {
		AssertErrorResponse(t, testCtx, tc.ExpectedCode)
	}
	if tc.Validate != nil {
		tc.Validate(t, testCtx)
	}
}

// Envelope decodes the standard response wrapper.
func Envelope(t *testing.T, tc *TestContext) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &resp), "body is not an envelope: %s", tc.ResponseBody())
	return resp
}

// JSONResponse parses the response body as a generic JSON object.
func JSONResponse(t *testing.T, tc *TestContext) map[string]any {
	t.Helper()

	var result map[string]any
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &result), "Failed to parse JSON response")
	return result
}

// DataAs decodes the envelope's data field into T.
func DataAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &wrapper))
	var out T
	require.NoError(t, json.Unmarshal(wrapper.Data, &out), "data: %s", wrapper.Data)
	return out
}

// AssertSuccessResponse asserts a success envelope without an error.
func AssertSuccessResponse(t *testing.T, tc *TestContext) {
	t.Helper()

	resp := Envelope(t, tc)
	assert.True(t, resp.Success, "expected success, body: %s", tc.ResponseBody())
	assert.Nil(t, resp.Error)
}

// AssertErrorResponse asserts a failure envelope carrying expectedCode.
func AssertErrorResponse(t *testing.T, tc *TestContext, expectedCode string) {
	t.Helper()

	resp := Envelope(t, tc)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error, "expected error object, body: %s", tc.ResponseBody())
	assert.Equal(t, expectedCode, resp.Error.Code)
}

// AsGuest returns headers carrying a guest cart session.
func AsGuest(sessionID string) map[string]string {
	return map[string]string{middleware.SessionIDHeader: sessionID}
}

// ToJSONReader marshals v for use as a request body.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
