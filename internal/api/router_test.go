package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/audit"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/db"
	"pharma-elog-backend/internal/lifecycle"
	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/mutation"
	"pharma-elog-backend/internal/mw"
	"pharma-elog-backend/internal/store"
)

type apiFixture struct {
	router *gin.Engine
	store  store.Store
}

func setupRouter(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)

	// A named in-memory database keeps every pooled connection on the same
	// data while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	recorder := audit.NewRecorder()
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Issuer:     "pharma-elog-test",
		TTL:        time.Hour,
		SigningKey: []byte("test-signing-key"),
	})
	engine := lifecycle.NewEngine(s, auth.NewVerifier(s), recorder)
	interceptor := mutation.NewInterceptor(s, recorder, bcrypt.MinCost)
	handler := NewHandler(s, engine, interceptor, tokens, recorder, 3600)

	router := NewRouter(s, handler, tokens, RouterOptions{
		RateLimitPerSec: 1000,
		RateBurst:       1000,
		CacheTTL:        time.Millisecond,
	})

	f := &apiFixture{router: router, store: s}
	f.seedUser(t, "admin", "admin-pass", model.RoleAdmin)
	f.seedUser(t, "jdoe", "op-pass", model.RoleOperator)
	f.seedUser(t, "qauser", "qa-pass", model.RoleQA)
	return f
}

func (f *apiFixture) seedUser(t *testing.T, username, password string, role model.Role) {
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.store.DB().Create(&model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		FullName:     username,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}).Error)
}

// login returns the session cookie for the given account.
func (f *apiFixture) login(t *testing.T, username, password string) *http.Cookie {
	w := f.do(t, "POST", "/api/auth/login", gin.H{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == mw.SessionCookie {
			return cookie
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, "POST", "/api/auth/login", gin.H{"username": "jdoe", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, "POST", "/api/auth/login", gin.H{"username": "nobody", "password": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, "POST", "/api/auth/login", gin.H{"username": "jdoe"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginResponseOmitsPasswordHash(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, "POST", "/api/auth/login", gin.H{"username": "jdoe", "password": "op-pass"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.Contains(t, w.Body.String(), `"username":"jdoe"`)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, "GET", "/api/logs", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, "GET", "/api/equipment", nil, &http.Cookie{Name: mw.SessionCookie, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogLifecycleOverHTTP(t *testing.T) {
	f := setupRouter(t)
	admin := f.login(t, "admin", "admin-pass")
	operator := f.login(t, "jdoe", "op-pass")

	// Admin registers the asset.
	w := f.do(t, "POST", "/api/equipment", gin.H{
		"equipmentId": "EQ-1",
		"name":        "Bioreactor B-204",
		"type":        "Bioreactor",
		"location":    "Room 101",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	equip := decode[model.Equipment](t, w)

	// Operator drafts an entry.
	w = f.do(t, "POST", "/api/logs", gin.H{
		"equipmentId":  equip.ID,
		"activityType": "Calibration",
		"startTime":    "2024-03-15T09:00:00Z",
		"description":  "pH probe calibration",
	}, operator)
	require.Equal(t, http.StatusCreated, w.Code)
	entry := decode[model.LogEntry](t, w)
	assert.Equal(t, model.LogDraft, entry.Status)

	// Submission with a wrong password is an authentication failure.
	w = f.do(t, "POST", "/api/logs/"+entry.ID+"/submit", gin.H{
		"username": "jdoe", "password": "wrong", "reason": "done",
	}, operator)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A missing reason never reaches the engine.
	w = f.do(t, "POST", "/api/logs/"+entry.ID+"/submit", gin.H{
		"username": "jdoe", "password": "op-pass",
	}, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid signature.
	w = f.do(t, "POST", "/api/logs/"+entry.ID+"/submit", gin.H{
		"username": "jdoe", "password": "op-pass", "reason": "entry complete",
	}, operator)
	require.Equal(t, http.StatusOK, w.Code)
	submitted := decode[model.LogEntry](t, w)
	assert.Equal(t, model.LogSubmitted, submitted.Status)

	// Resubmitting a submitted entry conflicts.
	w = f.do(t, "POST", "/api/logs/"+entry.ID+"/submit", gin.H{
		"username": "jdoe", "password": "op-pass", "reason": "again",
	}, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Submitted entries are no longer editable.
	w = f.do(t, "PATCH", "/api/logs/"+entry.ID, gin.H{"description": "amended"}, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	// An operator signature cannot approve.
	w = f.do(t, "POST", "/api/logs/"+entry.ID+"/approve", gin.H{
		"username": "jdoe", "password": "op-pass", "reason": "self approval",
	}, operator)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// QA approves. The approver signs with their own credentials even though
	// the request rides on the operator's session.
	w = f.do(t, "POST", "/api/logs/"+entry.ID+"/approve", gin.H{
		"username": "qauser", "password": "qa-pass", "reason": "reviewed and correct",
	}, operator)
	require.Equal(t, http.StatusOK, w.Code)
	approved := decode[model.LogEntry](t, w)
	assert.Equal(t, model.LogApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)

	// The audit trail has the whole story, newest first.
	w = f.do(t, "GET", "/api/audit", nil, operator)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[[]model.AuditRecord](t, w)
	require.NotEmpty(t, records)
	assert.Equal(t, model.AuditApprove, records[0].Action)
}

func TestSubmitUnknownLogIs404(t *testing.T) {
	f := setupRouter(t)
	operator := f.login(t, "jdoe", "op-pass")

	w := f.do(t, "POST", "/api/logs/missing/submit", gin.H{
		"username": "jdoe", "password": "op-pass", "reason": "done",
	}, operator)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEquipmentOutcomes(t *testing.T) {
	f := setupRouter(t)
	admin := f.login(t, "admin", "admin-pass")

	w := f.do(t, "POST", "/api/equipment", gin.H{
		"equipmentId": "EQ-1", "name": "Autoclave A-1", "type": "Autoclave", "location": "Room 210",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	unused := decode[model.Equipment](t, w)

	w = f.do(t, "POST", "/api/equipment", gin.H{
		"equipmentId": "EQ-2", "name": "Autoclave A-2", "type": "Autoclave", "location": "Room 210",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	used := decode[model.Equipment](t, w)

	w = f.do(t, "POST", "/api/logs", gin.H{
		"equipmentId":  used.ID,
		"activityType": "Cleaning",
		"startTime":    "2024-03-15T09:00:00Z",
		"description":  "CIP cycle",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)

	// No dependents: removed outright.
	w = f.do(t, "DELETE", "/api/equipment/"+unused.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(mutation.Decommissioned))

	// Dependent log entries: kept, marked Offline.
	w = f.do(t, "DELETE", "/api/equipment/"+used.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(mutation.MarkedOffline))

	w = f.do(t, "GET", "/api/equipment/"+used.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	kept := decode[model.Equipment](t, w)
	assert.Equal(t, model.EquipmentOffline, kept.Status)
}

func TestUserRoutesAdminOnly(t *testing.T) {
	f := setupRouter(t)
	operator := f.login(t, "jdoe", "op-pass")

	w := f.do(t, "POST", "/api/users", gin.H{
		"username": "intruder", "password": "x", "fullName": "Intruder", "role": "Operator", "isActive": true,
	}, operator)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListUsersNeverExposesHashes(t *testing.T) {
	f := setupRouter(t)
	admin := f.login(t, "admin", "admin-pass")

	w := f.do(t, "GET", "/api/users", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$")
	assert.NotContains(t, w.Body.String(), "passwordHash")

	users := decode[[]model.UserSummary](t, w)
	require.Len(t, users, 3)
	for _, u := range users {
		assert.NotEmpty(t, u.Username)
		assert.True(t, u.IsActive)
		assert.False(t, u.CreatedAt.IsZero())
	}
}

func TestLogoutClearsCookieAndAudits(t *testing.T) {
	f := setupRouter(t)
	operator := f.login(t, "jdoe", "op-pass")

	w := f.do(t, "POST", "/api/auth/logout", nil, operator)
	require.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == mw.SessionCookie && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	w = f.do(t, "GET", "/api/audit", nil, f.login(t, "admin", "admin-pass"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"LOGOUT"`)
	assert.Contains(t, w.Body.String(), `"LOGIN"`)
}

func TestDashboardStats(t *testing.T) {
	f := setupRouter(t)
	admin := f.login(t, "admin", "admin-pass")

	w := f.do(t, "POST", "/api/equipment", gin.H{
		"equipmentId": "EQ-1", "name": "Autoclave A-1", "type": "Autoclave", "location": "Room 210",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, "GET", "/api/dashboard/stats", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[store.DashboardStats](t, w)
	assert.Equal(t, int64(1), stats.EquipmentByStatus["Operational"])
	assert.Equal(t, int64(3), stats.ActiveUsers)
}

func TestAuditLimitValidation(t *testing.T) {
	f := setupRouter(t)
	admin := f.login(t, "admin", "admin-pass")

	w := f.do(t, "GET", "/api/audit?limit=banana", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
