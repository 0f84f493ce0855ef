package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/security"
	"bloodbank-backend/internal/service"
)

type testEnv struct {
	router      *mux.Router
	tokens      security.TokenManager
	revocations security.RevocationList
	registry    *prometheus.Registry

	auth         *MockAuthService
	users        *MockUserService
	inventory    *MockInventoryService
	donations    *MockDonationService
	requests     *MockRequestService
	eligibility  *MockEligibilityService
	reports      *MockReportService
	notification *MockNotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &testEnv{
		tokens:       security.NewTokenManager("test-secret-test-secret-test-secret", time.Hour),
		revocations:  security.NewRevocationList(client),
		registry:     prometheus.NewRegistry(),
		auth:         new(MockAuthService),
		users:        new(MockUserService),
		inventory:    new(MockInventoryService),
		donations:    new(MockDonationService),
		requests:     new(MockRequestService),
		eligibility:  new(MockEligibilityService),
		reports:      new(MockReportService),
		notification: new(MockNotificationService),
	}
	env.router = NewRouter(Services{
		Auth:         env.auth,
		User:         env.users,
		Inventory:    env.inventory,
		Donation:     env.donations,
		Request:      env.requests,
		Eligibility:  env.eligibility,
		Report:       env.reports,
		Notification: env.notification,
	}, RouterOptions{
		Auth:     NewAuthenticator(env.tokens, env.revocations),
		Metrics:  metrics.New(env.registry),
		Gatherer: env.registry,
	})
	return env
}

func (e *testEnv) token(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	token, err := e.tokens.GenerateAccessToken(userID, userID+"@example.com", role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealthz(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/healthz", nil, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("Unhealthy", func(t *testing.T) {
		router := NewRouter(Services{}, RouterOptions{
			Auth:   NewAuthenticator(security.NewTokenManager("secret", time.Hour), nil),
			Health: func(context.Context) error { return errors.New("db down") },
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/admin/dashboard", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "no token, authorization denied", errorBody(t, rec))
	})

	t.Run("Garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/admin/dashboard", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Wrong role", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/admin/dashboard", nil, env.token(t, "donor-1", domain.RoleDonor))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Revoked token", func(t *testing.T) {
		token := env.token(t, "admin-1", domain.RoleAdmin)
		claims, err := env.tokens.ValidateToken(token)
		require.NoError(t, err)
		require.NoError(t, env.revocations.Revoke(context.Background(), claims.ID, time.Hour))

		rec := env.do(t, http.MethodGet, "/api/admin/dashboard", nil, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token has been revoked", errorBody(t, rec))
	})

	t.Run("Admin allowed", func(t *testing.T) {
		env.reports.On("Dashboard", mock.Anything).Return(&domain.DashboardStats{TotalDonors: 3}, nil).Once()

		rec := env.do(t, http.MethodGet, "/api/admin/stats", nil, env.token(t, "admin-1", domain.RoleAdmin))
		require.Equal(t, http.StatusOK, rec.Code)
		var stats domain.DashboardStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, int32(3), stats.TotalDonors)
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("Register", func(t *testing.T) {
		env := newTestEnv(t)
		dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
		env.auth.On("Register", mock.Anything, service.RegisterInput{
			Name:        "Dana",
			Email:       "dana@example.com",
			Password:    "secret1",
			Role:        domain.RoleDonor,
			BloodType:   domain.BloodTypeOPos,
			DateOfBirth: &dob,
		}).Return(&domain.User{ID: "u-1", Role: domain.RoleDonor}, "tok", nil)

		rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
			"name": "Dana", "email": "dana@example.com", "password": "secret1",
			"bloodType": "O+", "dateOfBirth": "1990-05-01",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "u-1", resp.User.ID)
	})

	t.Run("Register malformed body", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/auth/register", "{", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Register duplicate", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Register", mock.Anything, mock.Anything).Return(nil, "", domain.Conflictf("user already exists"))

		rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
			"name": "Dana", "email": "dana@example.com", "password": "secret1",
		}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "user already exists", errorBody(t, rec))
	})

	t.Run("Login bad credentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Login", mock.Anything, "a@example.com", "nope").Return(nil, "", service.ErrInvalidCredentials)

		rec := env.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "a@example.com", Password: "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid email or password", errorBody(t, rec))
	})

	t.Run("Logout passes claims", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Logout", mock.Anything, mock.MatchedBy(func(c *security.UserClaims) bool {
			return c != nil && c.UserID == "rec-1"
		})).Return(nil)

		rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, env.token(t, "rec-1", domain.RoleRecipient))
		assert.Equal(t, http.StatusOK, rec.Code)
		env.auth.AssertExpectations(t)
	})
}

func TestDonorHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "donor-1", domain.RoleDonor)

	t.Run("Schedule", func(t *testing.T) {
		date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		env.donations.On("Schedule", mock.Anything, "donor-1", date, "Central").
			Return(&domain.Donation{ID: "d-1", DonorID: "donor-1", Status: domain.DonationStatusScheduled}, nil)

		rec := env.do(t, http.MethodPost, "/api/donor/schedule", map[string]string{"date": "2025-07-01", "location": "Central"}, token)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("Schedule without date", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/donor/schedule", map[string]string{"location": "Central"}, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "donation date is required", errorBody(t, rec))
	})

	t.Run("Eligibility", func(t *testing.T) {
		env.eligibility.On("Check", mock.Anything, "donor-1").Return(&domain.Eligibility{IsEligible: true}, nil)

		rec := env.do(t, http.MethodGet, "/api/donor/eligibility", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"isEligible":true`)
	})

	t.Run("Recipient cannot use donor routes", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/donor/history", nil, env.token(t, "rec-1", domain.RoleRecipient))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRecipientHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "rec-1", domain.RoleRecipient)

	t.Run("Create", func(t *testing.T) {
		env.requests.On("Create", mock.Anything, "rec-1", service.CreateRequestInput{
			BloodType: domain.BloodTypeANeg, Units: 2, Location: "North", Urgency: domain.UrgencyHigh,
		}).Return(&domain.BloodRequest{ID: "r-1", RecipientID: "rec-1", Status: domain.RequestStatusPending}, nil)

		rec := env.do(t, http.MethodPost, "/api/recipient/requests", CreateBloodRequest{
			BloodType: domain.BloodTypeANeg, Units: 2, Location: "North", Urgency: domain.UrgencyHigh,
		}, token)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("Create rejects zero units", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/recipient/requests", CreateBloodRequest{BloodType: domain.BloodTypeANeg}, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Cancel foreign request", func(t *testing.T) {
		env.requests.On("Cancel", mock.Anything, "r-9", "rec-1").Return(nil, domain.NotFoundf("request not found"))

		rec := env.do(t, http.MethodPut, "/api/recipient/requests/r-9/cancel", nil, token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "request not found", errorBody(t, rec))
	})

	t.Run("List empty", func(t *testing.T) {
		env.requests.On("ListMine", mock.Anything, "rec-1").Return([]domain.BloodRequest{}, nil)

		rec := env.do(t, http.MethodGet, "/api/recipient/requests", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestInventoryHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", domain.RoleAdmin)

	t.Run("Public list", func(t *testing.T) {
		env.inventory.On("Query", mock.Anything, (*domain.BloodType)(nil)).
			Return([]domain.InventoryItem{{BloodType: domain.BloodTypeAPos, Units: 12}}, nil)

		rec := env.do(t, http.MethodGet, "/api/inventory", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"bloodType":"A+"`)
	})

	t.Run("Get by type", func(t *testing.T) {
		env.inventory.On("Query", mock.Anything, mock.MatchedBy(func(bt *domain.BloodType) bool {
			return bt != nil && *bt == domain.BloodTypeABNeg
		})).Return(nil, domain.NotFoundf("blood type not found in inventory"))

		rec := env.do(t, http.MethodGet, "/api/inventory/AB-", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Low stock threshold", func(t *testing.T) {
		env.inventory.On("LowStock", mock.Anything, int32(4)).Return(nil, nil)

		rec := env.do(t, http.MethodGet, "/api/inventory/low-stock?threshold=4", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("Writes need admin", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/inventory/add", map[string]any{"bloodType": "O-", "units": 3}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Put takes type from path", func(t *testing.T) {
		env.inventory.On("SetAbsolute", mock.Anything, domain.BloodTypeBNeg, int32(7)).
			Return(&domain.InventoryItem{BloodType: domain.BloodTypeBNeg, Units: 7}, nil)

		rec := env.do(t, http.MethodPut, "/api/inventory/B-", map[string]any{"units": 7}, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Remove insufficient", func(t *testing.T) {
		env.inventory.On("Remove", mock.Anything, domain.BloodTypeONeg, int32(50)).Return(nil, domain.ErrInsufficientStock)

		rec := env.do(t, http.MethodPost, "/api/inventory/remove", map[string]any{"bloodType": "O-", "units": 50}, admin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "not enough units available", errorBody(t, rec))
	})

	t.Run("Add without units", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/inventory/add", map[string]any{"bloodType": "O-"}, admin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", domain.RoleAdmin)

	t.Run("Recent donations default limit", func(t *testing.T) {
		env.donations.On("Recent", mock.Anything, int32(defaultRecentLimit)).Return([]domain.Donation{{ID: "d-1"}}, nil)

		rec := env.do(t, http.MethodGet, "/api/admin/recent-donations", nil, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Illegal donation transition", func(t *testing.T) {
		env.donations.On("SetStatus", mock.Anything, "d-1", domain.DonationStatusScheduled).
			Return(nil, domain.Conflictf("cannot move donation from completed to scheduled"))

		rec := env.do(t, http.MethodPut, "/api/admin/donations/d-1/status", StatusRequest{Status: "scheduled"}, admin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unexpected error hidden", func(t *testing.T) {
		env.requests.On("SetStatus", mock.Anything, "r-1", domain.RequestStatusApproved).
			Return(nil, errors.New("connection reset"))

		rec := env.do(t, http.MethodPut, "/api/admin/requests/r-1/status", StatusRequest{Status: "approved"}, admin)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", errorBody(t, rec))
	})

	t.Run("List requests filter", func(t *testing.T) {
		env.requests.On("List", mock.Anything, domain.RequestFilter{Status: domain.RequestStatusPending, Limit: 20}).
			Return([]domain.BloodRequest{}, nil)

		rec := env.do(t, http.MethodGet, "/api/admin/requests?status=pending&limit=20", nil, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Delete user", func(t *testing.T) {
		env.users.On("DeleteUser", mock.Anything, "u-7").Return(nil)

		rec := env.do(t, http.MethodDelete, "/api/admin/users/u-7", nil, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
		env.users.AssertExpectations(t)
	})

	t.Run("Broadcast", func(t *testing.T) {
		env.notification.On("Broadcast", mock.Anything, service.BroadcastInput{
			Type: domain.NotificationDonationDrive, Recipients: []string{"a@example.com"}, Message: "Drive on Friday",
		}).Return(&domain.BroadcastResult{Recipients: 1, Sent: 1}, nil)

		rec := env.do(t, http.MethodPost, "/api/admin/notifications/send", BroadcastRequest{
			Type: domain.NotificationDonationDrive, Recipients: []string{"a@example.com"}, Message: "Drive on Friday",
		}, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Active donors default limit", func(t *testing.T) {
		env.reports.On("ActiveDonors", mock.Anything, int32(defaultActiveDonorsLimit)).Return(&domain.ActiveDonorsReport{}, nil)

		rec := env.do(t, http.MethodGet, "/api/admin/reports/active-donors", nil, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestExportDonationReport(t *testing.T) {
	env := newTestEnv(t)
	since := time.Date(2025, 6, 9, 0, 0, 0, 0, time.Local)
	env.reports.On("DonationReport", mock.Anything, domain.ReportPeriodWeek).Return(&domain.DonationReport{
		Period:         domain.ReportPeriodWeek,
		Since:          since,
		TotalDonations: 3,
		TotalUnits:     3,
		ByBloodType: map[string]*domain.GroupStat{
			"O+": {Count: 2, Units: 2},
			"A-": {Count: 1, Units: 1},
		},
		ByDate: map[string]*domain.GroupStat{"2025-06-10": {Count: 3, Units: 3}},
	}, nil)

	rec := env.do(t, http.MethodGet, "/api/admin/reports/donations/export?period=week", nil, env.token(t, "admin-1", domain.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "donations-week-20250609.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "By Blood Type", "By Date"}, f.GetSheetList())
	first, err := f.GetCellValue("By Blood Type", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A-", first)
	total, err := f.GetCellValue("Summary", "C2")
	require.NoError(t, err)
	assert.Equal(t, "3", total)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.inventory.On("Search", mock.Anything, domain.BloodType("")).Return([]domain.InventoryItem{}, nil)

	env.do(t, http.MethodGet, "/api/inventory/search", nil, "")
	rec := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bloodbank_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/api/inventory/search"`)
}
