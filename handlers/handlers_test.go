package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"repairhub/database/kvstore"
	cityRepo "repairhub/database/repository/city"
	notificationRepo "repairhub/database/repository/notification"
	"repairhub/models"
	"repairhub/services/admin"
	"repairhub/services/booking"
	"repairhub/services/catalog"
	"repairhub/services/draft"
	"repairhub/services/notification"
	"repairhub/services/ranking"
	"repairhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the JWT and device middleware. X-Test-User overrides
// the user for a single request.
func asUser(userID, deviceID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set(utils.CtxUserID, u)
		} else {
			c.Set(utils.CtxUserID, userID)
		}
		c.Set(utils.CtxDeviceID, deviceID)
		c.Next()
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubCatalog struct {
	lookupErr error
}

func (s stubCatalog) Cities(context.Context) ([]models.CitySummary, error) {
	return []models.CitySummary{{ID: "c1", Name: "London"}}, nil
}

func (s stubCatalog) LookupPostcode(_ context.Context, raw string) (*models.ServiceCity, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return &models.ServiceCity{CityID: "c1", CityName: "London", StateName: "England"}, nil
}

func (s stubCatalog) Categories(context.Context) ([]models.Category, error) { return nil, nil }
func (s stubCatalog) Brands(context.Context, string) ([]models.Brand, error) {
	return nil, errors.New("mongo down")
}
func (s stubCatalog) Devices(context.Context, string) ([]models.Device, error)     { return nil, nil }
func (s stubCatalog) Faults(context.Context, string) ([]models.Fault, error)       { return nil, nil }
func (s stubCatalog) ServiceTypes(context.Context) ([]models.ServiceType, error)   { return nil, nil }
func (s stubCatalog) DurationTypes(context.Context) ([]models.DurationType, error) { return nil, nil }

func catalogRouter(svc CatalogService) *gin.Engine {
	h := NewCatalogHandler(svc)
	r := gin.New()
	r.GET("/api/cities", h.GetCitiesHandler)
	r.GET("/api/lookup-postcode", h.LookupPostcodeHandler)
	r.GET("/api/catalog/categories", h.GetCategoriesHandler)
	r.GET("/api/catalog/brands", h.GetBrandsHandler)
	return r
}

func TestCatalogHandlers(t *testing.T) {
	r := catalogRouter(stubCatalog{})

	w := do(r, http.MethodGet, "/api/cities", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "London")

	w = do(r, http.MethodGet, "/api/lookup-postcode", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/lookup-postcode?pincode=sw1a1aa", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/catalog/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodGet, "/api/catalog/brands?category_id=phones", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLookupPostcodeNotServiced(t *testing.T) {
	r := catalogRouter(stubCatalog{lookupErr: catalog.ErrNotServiced})
	w := do(r, http.MethodGet, "/api/lookup-postcode?pincode=ZZ1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Service not available in this area.")
}

type stubRanker struct {
	res  ranking.Result
	seen []*float64
}

func (s *stubRanker) Rank(_ context.Context, _ string, lat, lng *float64) ranking.Result {
	s.seen = []*float64{lat, lng}
	return s.res
}

func TestNearbyAgentsHandler(t *testing.T) {
	rk := &stubRanker{res: ranking.Result{Agents: []models.RankedAgent{{Agent: models.Agent{ID: "a1"}, Distance: 1.5}}}}
	h := NewAgentHandler(rk)
	r := gin.New()
	r.GET("/api/agents/nearby", h.NearbyAgentsHandler)

	w := do(r, http.MethodGet, "/api/agents/nearby?city_id=c1&lat=51.5&lng=-0.12", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"a1"`)
	require.NotNil(t, rk.seen[0])
	assert.Equal(t, 51.5, *rk.seen[0])

	for _, q := range []string{
		"lat=north",
		"lat=NaN&lng=0",
		"lat=Inf&lng=0",
		"lat=51.5&lng=-Inf",
		"lat=90.5&lng=0",
		"lat=-91&lng=0",
		"lat=0&lng=180.01",
		"lat=0&lng=-200",
	} {
		rk.seen = nil
		w = do(r, http.MethodGet, "/api/agents/nearby?city_id=c1&"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Nil(t, rk.seen, q)
	}

	w = do(r, http.MethodGet, "/api/agents/nearby?city_id=c1&lat=-90&lng=180", "")
	assert.Equal(t, http.StatusOK, w.Code)

	rk.res = ranking.Result{Agents: []models.RankedAgent{}, Err: utils.TryAgainMessage}
	w = do(r, http.MethodGet, "/api/agents/nearby?city_id=c1", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Nil(t, rk.seen[0])
}

type sessionCatalog struct{}

func (sessionCatalog) LookupPostcode(context.Context, string) (*models.ServiceCity, error) {
	return nil, catalog.ErrNotServiced
}
func (sessionCatalog) FindDevice(context.Context, string, string) (*models.Device, error) {
	return nil, catalog.ErrNotFound
}
func (sessionCatalog) SelectFaults(context.Context, string, []string) ([]models.SelectedFault, error) {
	return nil, catalog.ErrNotFound
}
func (sessionCatalog) ServiceTypeByName(_ context.Context, name string) (*models.ServiceType, error) {
	return &models.ServiceType{ID: "st", Name: name}, nil
}
func (sessionCatalog) DurationByName(_ context.Context, name string) (*models.DurationType, error) {
	return &models.DurationType{ID: "dt", Name: name}, nil
}

type memBookings struct {
	inserted []*models.BookingPayload
}

func (m *memBookings) Insert(_ context.Context, p *models.BookingPayload) (string, error) {
	m.inserted = append(m.inserted, p)
	return "oid-1", nil
}

type nopQueue struct{}

func (nopQueue) EnqueueContext(context.Context, *asynq.Task, ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{}, nil
}

func bookingRouter(t *testing.T, userID string) (*gin.Engine, *memBookings) {
	t.Helper()
	store := &memBookings{}
	submitter := booking.NewSubmitter(store, nopQueue{}, nil)
	drafts := draft.NewManager(kvstore.NewMemoryStore(), nil, draft.DefaultExpiry, time.Hour)
	svc := booking.NewSessionService(kvstore.NewMemoryStore(), drafts, sessionCatalog{}, &stubRanker{}, submitter, nil)
	h := NewBookingHandler(svc, submitter)

	r := gin.New()
	g := r.Group("/api", asUser(userID, "device-1"))
	g.POST("/bookings/create", h.CreateBookingHandler)
	g.POST("/booking/session", h.StartSessionHandler)
	g.GET("/booking/session/:id", h.GetSessionHandler)
	g.PATCH("/booking/session/:id", h.UpdateSessionHandler)
	g.DELETE("/booking/session/:id", h.CancelSessionHandler)
	g.POST("/booking/session/:id/next", h.NextStepHandler)
	g.POST("/booking/session/:id/previous", h.PreviousStepHandler)
	g.POST("/booking/session/:id/resume", h.ResumeHandler)
	g.POST("/booking/session/:id/submit", h.SubmitHandler)
	g.GET("/booking/draft", h.GetDraftHandler)
	g.DELETE("/booking/draft", h.DiscardDraftHandler)
	return r, store
}

func TestSessionLifecycleHandlers(t *testing.T) {
	r, _ := bookingRouter(t, "u1")

	w := do(r, http.MethodPost, "/api/booking/session", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var started struct {
		Session struct {
			SessionID  string   `json:"sessionId"`
			Missing    []string `json:"missing_fields"`
			CanProceed bool     `json:"can_proceed"`
		} `json:"session"`
		Draft *models.BookingDraft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	id := started.Session.SessionID
	require.NotEmpty(t, id)
	assert.False(t, started.Session.CanProceed)
	assert.Contains(t, started.Session.Missing, "imei_number")
	assert.Nil(t, started.Draft)

	w = do(r, http.MethodPost, "/api/booking/session/"+id+"/next", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var blocked utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blocked))
	assert.Contains(t, blocked.Fields, "category")

	w = do(r, http.MethodPatch, "/api/booking/session/"+id, `{"model":"Nokia 3310"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var rejected utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rejected))
	assert.Equal(t, []string{"model"}, rejected.Fields)

	w = do(r, http.MethodPatch, "/api/booking/session/"+id, `{"imei_number":"12ab"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"field_errors":{"imei_number"`)

	w = do(r, http.MethodPatch, "/api/booking/session/"+id, `{"category":"phones"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/booking/session/"+id+"/previous", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/booking/session/"+id+"/submit", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/booking/session/"+id+"/resume", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/api/booking/session/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/booking/session/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionOwnership(t *testing.T) {
	r, _ := bookingRouter(t, "u1")
	w := do(r, http.MethodPost, "/api/booking/session", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var started struct {
		Session struct {
			SessionID string `json:"sessionId"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	req := httptest.NewRequest(http.MethodGet, "/api/booking/session/"+started.Session.SessionID, nil)
	req.Header.Set("X-Test-User", "u2")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDraftHandlersWithoutDraft(t *testing.T) {
	r, _ := bookingRouter(t, "u1")
	w := do(r, http.MethodGet, "/api/booking/draft", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodDelete, "/api/booking/draft", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateBookingHandler(t *testing.T) {
	r, store := bookingRouter(t, "u1")

	w := do(r, http.MethodPost, "/api/bookings/create", `{"city_id":"c1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "field device_id is missing")
	assert.Empty(t, store.inserted)

	body := `{
		"user_id": "someone-else",
		"device_id": "dev-13", "city_id": "c1", "service_type_id": "st",
		"scheduled_date": "2026-10-15", "scheduled_time": "10:00",
		"pricing_service_charge": 89, "pricing_delivery_charge": 0, "pricing_total": 89,
		"payment_method": "cash",
		"address_street": "10 Downing St", "address_city": "London", "address_state": "England",
		"address_pincode": "SW1A1AA", "address_latitude": 51.5, "address_longitude": -0.12,
		"address_full": "10 Downing St, London", "location_type": "residential",
		"imei_number": "356938035643809"
	}`
	w = do(r, http.MethodPost, "/api/bookings/create", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var receipt models.BookingReceipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	assert.True(t, strings.HasPrefix(receipt.BookingID, "BK-"))
	assert.Equal(t, "oid-1", receipt.ID)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "u1", store.inserted[0].UserID)
}

type stubNotifications struct {
	limit   int
	markErr error
}

func (s *stubNotifications) List(_ context.Context, userID string, limit int) (*notification.Inbox, error) {
	s.limit = limit
	return &notification.Inbox{Notifications: []models.Notification{{ID: "n1", UserID: userID}}, UnreadCount: 1}, nil
}

func (s *stubNotifications) MarkRead(context.Context, string, string) error { return s.markErr }

func (s *stubNotifications) NotifyBookingCreated(context.Context, models.BookingCreatedPayload) error {
	return nil
}

func TestNotificationHandlers(t *testing.T) {
	svc := &stubNotifications{}
	h := NewNotificationHandler(svc)
	r := gin.New()
	r.Use(asUser("u1", ""))
	r.GET("/api/notifications", h.GetNotificationsHandler)
	r.PATCH("/api/notifications", h.MarkReadHandler)

	w := do(r, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, notification.DefaultListLimit, svc.limit)
	assert.Contains(t, w.Body.String(), `"n1"`)

	w = do(r, http.MethodGet, "/api/notifications?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/notifications", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/notifications", `{"id":"n1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.markErr = errors.New("mongo down")
	w = do(r, http.MethodPatch, "/api/notifications", `{"id":"n1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ownedNotifications keeps notifications in memory and, like the Mongo
// repository, only matches a notification for its owner.
type ownedNotifications struct {
	items []models.Notification
}

func (r *ownedNotifications) ListByUser(_ context.Context, userID string, _ int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *ownedNotifications) MarkRead(_ context.Context, userID, id string) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].IsRead = true
			return nil
		}
	}
	return notificationRepo.ErrNotFound
}

func (r *ownedNotifications) Create(_ context.Context, n *models.Notification) error {
	r.items = append(r.items, *n)
	return nil
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	repo := &ownedNotifications{items: []models.Notification{{ID: "n-alice", UserID: "alice"}}}
	svc, err := notification.NewDefaultNotificationService(repo, nil, nil)
	require.NoError(t, err)
	h := NewNotificationHandler(svc)
	r := gin.New()
	r.Use(asUser("alice", ""))
	r.PATCH("/api/notifications", h.MarkReadHandler)

	req := httptest.NewRequest(http.MethodPatch, "/api/notifications", strings.NewReader(`{"id":"n-alice"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "bob")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, repo.items[0].IsRead)

	w = do(r, http.MethodPatch, "/api/notifications", `{"id":"n-alice"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.items[0].IsRead)
}

type stubAdmin struct {
	admin.AdminService
	err error
}

func (s stubAdmin) DeleteCity(context.Context, string) error { return s.err }

func (s stubAdmin) RejectApplication(context.Context, string, string) error { return s.err }

func TestAdminErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusNoContent},
		{cityRepo.ErrNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewAdminHandler(stubAdmin{err: tc.err})
		r := gin.New()
		r.DELETE("/cities/:id", h.DeleteCity)
		w := do(r, http.MethodDelete, "/cities/c1", "")
		assert.Equal(t, tc.code, w.Code, "err=%v", tc.err)
	}

	h := NewAdminHandler(stubAdmin{err: admin.ErrAlreadyReviewed})
	r := gin.New()
	r.POST("/applications/:id/reject", h.RejectApplication)
	w := do(r, http.MethodPost, "/applications/a1/reject", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
