// Package testutil provides common test utilities for the commerce backend:
// sqlmock-backed GORM handles, gin test contexts with a signed-in caller,
// and polling assertions for the async event bus.
package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/infrastructure/auth"
	"github.com/adfinitum/backend/internal/infrastructure/logger"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is a GORM handle on sqlmock speaking the postgres dialect. Pings
// are routed through the mock so Database.Ping can be tested.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens the mock; the connection is closed on cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "open sqlmock")

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err, "open gorm on sqlmock")

	t.Cleanup(func() { _ = sqlDB.Close() })
	return &MockDB{DB: db, Mock: mock, SqlDB: sqlDB}
}

// ExpectationsWereMet fails t on any unmet or unexpected statement.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}

// TestContext is a gin context bound to a response recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext creates a context for "GET /".
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()
	return NewTestContextFor(t, httptest.NewRequest(http.MethodGet, "/", nil))
}

// NewTestContextFor creates a context serving req.
func NewTestContextFor(t *testing.T, req *http.Request) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = req
	return &TestContext{Context: c, Recorder: w, Engine: engine}
}

// SetRequestID stores id where the RequestID middleware would.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set(logger.GinRequestIDKey, id)
	tc.Context.Request.Header.Set(middleware.RequestIDHeader, id)
}

// SetUser signs the context in the way the JWT middleware does
func (tc *TestContext) SetUser(id uuid.UUID, canManage bool) {
	SignIn(tc.Context, id, canManage)
}

// SetSessionID attaches a guest cart session
func (tc *TestContext) SetSessionID(id string) {
	tc.Context.Request.Header.Set(middleware.SessionIDHeader, id)
	tc.Context.Set(middleware.SessionIDKey, id)
}

// SignIn stores caller claims on c under the JWT middleware keys.
func SignIn(c *gin.Context, id uuid.UUID, canManage bool) {
	role := "customer"
	if canManage {
		role = "admin"
	}
	c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: id.String(), Role: role, CanManage: canManage})
	c.Set(middleware.JWTUserIDKey, id.String())
	c.Set(middleware.JWTRoleKey, role)
	c.Set(middleware.JWTCanManageKey, canManage)
}

// AsUser is SignIn as middleware
func AsUser(id uuid.UUID, canManage bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		SignIn(c, id, canManage)
		c.Next()
	}
}

// ResponseBody returns the response body as bytes.
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the HTTP status code.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID derives a stable UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("adfinitum-test:"+seed))
}

// TestUserID is the customer used by handler tests.
func TestUserID() uuid.UUID {
	return NewTestUUID("customer")
}

// TestAdminID is the staff account used by handler tests.
func TestAdminID() uuid.UUID {
	return NewTestUUID("admin")
}

// ContextWithTimeout returns a context cancelled after timeout or when the
// test ends, whichever is first.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(t.Context(), timeout)
}

// AssertEventually polls condition until it holds or timeout passes.
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) bool {
	t.Helper()
	return assert.Eventually(t, condition, timeout, interval, msgAndArgs...)
}
