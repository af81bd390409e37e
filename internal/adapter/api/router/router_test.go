package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ecotrack/internal/adapter/api"
	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/adapter/repository/memory"
	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/infrastructure/ratelimit"
	"ecotrack/internal/infrastructure/storage"
	"ecotrack/internal/infrastructure/token"
	ws "ecotrack/internal/infrastructure/websocket"
	"ecotrack/internal/usecase"
	"ecotrack/pkg/response"
)

type testApp struct {
	e       *echo.Echo
	tokens  *token.Manager
	users   repository.UserRepository
	reports repository.ReportRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := memory.NewUserRepository()
	reports := memory.NewReportRepository()
	requests := memory.NewNgoRequestRepository()
	admins := memory.NewAdminConfigRepository()
	otps := memory.NewOTPRepository()
	tokens := token.NewManager("router-test-secret")

	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads", 0)
	require.NoError(t, err)

	limits := usecase.UploadLimits{MaxFiles: 5, MaxSize: 5 << 20}
	lifecycle := usecase.NewReportLifecycleUseCase(reports, files, nil, limits)
	scanner := usecase.NewOverdueScannerUseCase(reports, lifecycle, nil, time.Hour, 50)
	ngos := usecase.NewNgoUseCase(requests, users, files, nil, limits)

	handler.Setup(handler.Dependencies{
		Auth: usecase.NewAuthUseCase(users, admins, otps, token.BcryptHasher{Cost: bcrypt.MinCost}, tokens, nil, nil,
			usecase.SessionConfig{}),
		Users:     usecase.NewUserUseCase(users, files, limits),
		Reports:   usecase.NewReportUseCase(reports, users, files, limits),
		Lifecycle: lifecycle,
		Ngos:      ngos,
		Admin:     usecase.NewAdminUseCase(users, admins, scanner),
		Cookies:   handler.CookieConfig{FrontendURL: "http://localhost:5173"},
	})
	handler.SetupHealthHandler(nil)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	limiter := ratelimit.NewRateLimiter(ratelimit.Limit{Every: time.Second, Burst: 100}, map[string]ratelimit.Limit{
		ActionLogin: {Every: time.Hour, Burst: 3},
	})
	Setup(e, middleware.NewAuthMiddleware(tokens, users), limiter, handler.NewWebSocketHandler(ws.NewManager(), nil))

	return &testApp{e: e, tokens: tokens, users: users, reports: reports}
}

func (a *testApp) seedUser(t *testing.T, id string, role entity.Role) string {
	t.Helper()
	now := time.Now()
	require.NoError(t, a.users.Create(context.Background(), &entity.User{
		ID:                 id,
		Name:               id,
		Email:              id + "@example.com",
		Role:               role,
		City:               "Pune",
		IsProfileCompleted: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}))

	tok, err := a.tokens.Issue(id, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(req *http.Request, bearer string) *httptest.ResponseRecorder {
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// multipartRequest builds a form with fields and fileCount PNG images under fileField.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileField string, fileCount int) *http.Request {
	t.Helper()

	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(8, 8, color.White), imaging.PNG))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for i := 0; i < fileCount; i++ {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="photo%d.png"`, fileField, i))
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(png.Bytes())
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, rec)
	require.NotNil(t, env.Error, rec.Body.String())
	return env.Error.Code
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass",
	}), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	me := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	me.AddCookie(cookies[0])
	rec = app.do(me, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var user entity.User
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &user))
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, entity.RoleUser, user.Role)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Asha", "email": "not-an-email", "password": "s3cret-pass",
	}), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t)

	body := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	for i := 0; i < 3; i++ {
		rec := app.do(jsonRequest(http.MethodPost, "/api/auth/login", body), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := app.do(jsonRequest(http.MethodPost, "/api/auth/login", body), "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	citizen := app.seedUser(t, "citizen", entity.RoleUser)
	ngoA := app.seedUser(t, "ngo-a", entity.RoleNGO)
	ngoB := app.seedUser(t, "ngo-b", entity.RoleNGO)

	rec := app.do(multipartRequest(t, http.MethodPost, "/api/reports", map[string]string{
		"title":        "Garbage pile",
		"description":  "Near the bus stop",
		"landmark":     "Bus stop 4",
		"city":         "Pune",
		"autoLocation": `{"lat":18.52,"lng":73.85}`,
	}, "photos", 2), citizen)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created entity.Report
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.Len(t, created.Photos, 2)
	assert.Equal(t, entity.ReportStatusPending, created.Status)

	due := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	take := "/api/ngo/take/" + created.ID

	rec = app.do(jsonRequest(http.MethodPut, take, map[string]string{"dueDate": due}), citizen)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(jsonRequest(http.MethodPut, take, map[string]string{"dueDate": due}), ngoA)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(jsonRequest(http.MethodPut, take, map[string]string{"dueDate": due}), ngoB)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", errorCode(t, rec))

	complete := "/api/ngo/complete/" + created.ID
	rec = app.do(multipartRequest(t, http.MethodPut, complete, map[string]string{"description": "Cleared"}, "resolvedImages", 0), ngoA)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(multipartRequest(t, http.MethodPut, complete, nil, "resolvedImages", 1), ngoB)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(multipartRequest(t, http.MethodPut, complete, map[string]string{"description": "Cleared"}, "resolvedImages", 1), ngoA)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var completed entity.Report
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &completed))
	assert.Equal(t, entity.ReportStatusCompleted, completed.Status)
	assert.Len(t, completed.ResolvedImages, 1)
	assert.Equal(t, "Cleared", completed.ResolutionDescription)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/ngo/completed/ngo-a", nil), citizen)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestUpvoteTwiceFails(t *testing.T) {
	app := newTestApp(t)
	citizen := app.seedUser(t, "citizen", entity.RoleUser)
	require.NoError(t, app.reports.Create(context.Background(), &entity.Report{
		ID: "r1", Title: "Broken light", City: "Pune", Status: entity.ReportStatusPending, CreatedAt: time.Now(),
	}))

	rec := app.do(httptest.NewRequest(http.MethodPost, "/api/reports/r1/upvote", nil), citizen)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodPost, "/api/reports/r1/upvote", nil), citizen)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/reports/r1/upvote", nil), citizen)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/reports/r1/upvote", nil), citizen)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(jsonRequest(http.MethodPost, "/api/reports/r1/comments", map[string]string{"text": "Same on my street"}), citizen)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/reports/commented", nil), citizen)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestPublicReportFeed(t *testing.T) {
	app := newTestApp(t)
	for i, city := range []string{"Pune", "Pune", "Goa"} {
		require.NoError(t, app.reports.Create(context.Background(), &entity.Report{
			ID: fmt.Sprintf("r%d", i), City: city, Status: entity.ReportStatusPending, CreatedAt: time.Now(),
		}))
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/reports?city=Pune&limit=1", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page response.PaginatedResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/reports?status=archived", nil), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesAreRoleGated(t *testing.T) {
	app := newTestApp(t)
	citizen := app.seedUser(t, "citizen", entity.RoleUser)
	admin := app.seedUser(t, "admin", entity.RoleAdmin)

	for _, path := range []string{"/api/admin/users", "/api/admin/reports", "/api/admin/ngo-requests", "/api/admin/scanner/status"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil), citizen)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)

		rec = app.do(httptest.NewRequest(http.MethodGet, path, nil), admin)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := app.do(httptest.NewRequest(http.MethodDelete, "/api/admin/users/admin", nil), admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNgoRequestApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	admin := app.seedUser(t, "admin", entity.RoleAdmin)

	rec := app.do(multipartRequest(t, http.MethodPost, "/api/auth/request-ngo", map[string]string{
		"name":               "Green Pune",
		"email":              "green@example.com",
		"registrationNumber": "MH-123",
		"city":               "Pune",
		"mobileNumber":       "9876543210",
	}, "logo", 1), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var request entity.NgoRequest
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &request))

	rec = app.do(jsonRequest(http.MethodPut, "/api/admin/ngo-requests/"+request.ID, map[string]string{"action": "maybe"}), admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(jsonRequest(http.MethodPut, "/api/admin/ngo-requests/"+request.ID, map[string]string{"action": "approve"}), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user, err := app.users.GetByEmail(context.Background(), "green@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleNGO, user.Role)

	rec = app.do(jsonRequest(http.MethodPut, "/api/admin/ngo-requests/"+request.ID, map[string]string{"action": "reject"}), admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGoogleLoginUnconfigured(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/auth/google", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=x&state=y", nil), "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get(echo.HeaderLocation), "/login"))
}
