package main

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camguard/camguard"
)

// fakeStore stubs the store surface a test touches; everything else panics
// through the embedded nil interface.
type fakeStore struct {
	camguard.Store

	users     map[string]*camguard.User
	servers   map[string]*camguard.CamServer
	companies []*camguard.Company
	incident  *camguard.Incident
	camera    *camguard.Camera
	camServer *camguard.CamServer

	lastQuery  camguard.ListQuery
	markedAck  *time.Time
	markedBy   string
	markedBad  *bool
	markCalled bool
}

func (f *fakeStore) GetUserByToken(_ context.Context, token string) (*camguard.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, camguard.ErrNotFound
}

func (f *fakeStore) GetCamServerByAccessToken(_ context.Context, token string) (*camguard.CamServer, error) {
	if v, ok := f.servers[token]; ok {
		return v, nil
	}
	return nil, camguard.ErrNotFound
}

func (f *fakeStore) ListCompanies(_ context.Context, q camguard.ListQuery) ([]*camguard.Company, error) {
	f.lastQuery = q
	return f.companies, nil
}

func (f *fakeStore) GetIncident(_ context.Context, id int64) (*camguard.Incident, error) {
	if f.incident == nil || f.incident.ID != id {
		return nil, camguard.ErrNotFound
	}
	return f.incident, nil
}

func (f *fakeStore) GetCamera(_ context.Context, id int64) (*camguard.Camera, error) {
	if f.camera == nil || f.camera.ID != id {
		return nil, camguard.ErrNotFound
	}
	return f.camera, nil
}

func (f *fakeStore) GetCamServer(_ context.Context, id int64) (*camguard.CamServer, error) {
	if f.camServer == nil || f.camServer.ID != id {
		return nil, camguard.ErrNotFound
	}
	return f.camServer, nil
}

func (f *fakeStore) MarkIncident(_ context.Context, _ int64, ack *time.Time, inaccurate *bool, byUser string) (*camguard.Incident, error) {
	f.markCalled = true
	f.markedAck = ack
	f.markedBad = inaccurate
	f.markedBy = byUser
	return f.incident, nil
}

func newTestServer(store camguard.Store) (*server, *fiber.App) {
	s := &server{
		store: store,
		cfg: Config{
			NotificationWindow: time.Hour,
			StreamInterval:     time.Second,
		},
		log: slog.New(slog.DiscardHandler),
	}
	app := fiber.New()
	s.routes(app)
	return s, app
}

func intp(v int64) *int64 { return &v }

func TestAuthMissingToken(t *testing.T) {
	_, app := newTestServer(&fakeStore{})

	req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthBearerToken(t *testing.T) {
	store := &fakeStore{users: map[string]*camguard.User{
		"tok-1": {ID: 1, Email: "op@acme.io", IsActive: true},
	}}
	_, app := newTestServer(store)

	req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListCompaniesClampsToOwnCompany(t *testing.T) {
	store := &fakeStore{
		users: map[string]*camguard.User{
			"tok-1": {ID: 1, CompanyID: intp(7)},
		},
		companies: []*camguard.Company{{ID: 7, Name: "Acme"}},
	}
	_, app := newTestServer(store)

	req := httptest.NewRequest("GET", "/api/v1/companies/", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, store.lastQuery.Filters, 1)
	f := store.lastQuery.Filters[0]
	assert.Equal(t, "id", f.Field.Key())
	assert.Equal(t, camguard.OpEq, f.Op)
	assert.Equal(t, int64(7), f.Value)
}

func TestCreateCompanyRequiresSuperuser(t *testing.T) {
	store := &fakeStore{users: map[string]*camguard.User{
		"tok-1": {ID: 1, CompanyID: intp(7)},
	}}
	_, app := newTestServer(store)

	req := httptest.NewRequest("POST", "/api/v1/companies/", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAcknowledgeWithinWindow(t *testing.T) {
	companyID := int64(7)
	store := &fakeStore{
		users: map[string]*camguard.User{
			"tok-1": {ID: 1, Email: "op@acme.io", CompanyID: &companyID},
		},
		incident:  &camguard.Incident{ID: 5, CameraID: 3, CreatedAt: time.Now().Add(-time.Minute)},
		camera:    &camguard.Camera{ID: 3, CamServerID: 2},
		camServer: &camguard.CamServer{ID: 2, CompanyID: &companyID},
	}
	_, app := newTestServer(store)

	req := httptest.NewRequest("GET", "/api/v1/incidents/5/acknowledged", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.True(t, store.markCalled)
	require.NotNil(t, store.markedAck)
	assert.Nil(t, store.markedBad)
	assert.Equal(t, "op@acme.io", store.markedBy)
}

func TestAcknowledgeExpiredWindow(t *testing.T) {
	companyID := int64(7)
	store := &fakeStore{
		users: map[string]*camguard.User{
			"tok-1": {ID: 1, CompanyID: &companyID},
		},
		incident:  &camguard.Incident{ID: 5, CameraID: 3, CreatedAt: time.Now().Add(-2 * time.Hour)},
		camera:    &camguard.Camera{ID: 3, CamServerID: 2},
		camServer: &camguard.CamServer{ID: 2, CompanyID: &companyID},
	}
	_, app := newTestServer(store)

	req := httptest.NewRequest("GET", "/api/v1/incidents/5/acknowledged", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.False(t, store.markCalled)
}

func TestBridgeIdentity(t *testing.T) {
	store := &fakeStore{servers: map[string]*camguard.CamServer{
		"srv-tok": {ID: 2, Name: "warehouse"},
	}}
	_, app := newTestServer(store)

	req := httptest.NewRequest("GET", "/api/v1/cam-servers/me", nil)
	req.Header.Set("Access-Token", "srv-tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/v1/cam-servers/me", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestFieldRefParsing(t *testing.T) {
	assert.Equal(t, camguard.FieldRef{Name: "name"}, fieldRef("name"))
	assert.Equal(t, camguard.FieldRef{Name: "company_id", Via: "cam_server"}, fieldRef("cam_server.company_id"))
}
