package booking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"repairhub/database/kvstore"
	"repairhub/models"
	"repairhub/services/catalog"
	"repairhub/services/draft"
	"repairhub/services/ranking"
	"repairhub/services/tasks"
	"repairhub/services/wizard"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct{}

func (fakeCatalog) LookupPostcode(_ context.Context, raw string) (*models.ServiceCity, error) {
	if raw != "SW1A1AA" {
		return nil, catalog.ErrNotServiced
	}
	return &models.ServiceCity{
		CityID: "c1", CityName: "London", StateID: "s1", StateName: "England",
		Latitude: f64(51.5074), Longitude: f64(-0.1278),
	}, nil
}

func (fakeCatalog) FindDevice(_ context.Context, brandID, model string) (*models.Device, error) {
	if brandID == "apple" && model == "iPhone 13" {
		return &models.Device{ID: "dev-13", Model: model, BrandID: brandID}, nil
	}
	return nil, catalog.ErrNotFound
}

func (fakeCatalog) SelectFaults(_ context.Context, deviceID string, ids []string) ([]models.SelectedFault, error) {
	out := []models.SelectedFault{}
	for _, id := range ids {
		if id != "screen" {
			return nil, catalog.ErrNotFound
		}
		out = append(out, models.SelectedFault{ID: "screen", Name: "Screen", Price: 89})
	}
	return out, nil
}

func (fakeCatalog) ServiceTypeByName(_ context.Context, name string) (*models.ServiceType, error) {
	return &models.ServiceType{ID: "st-" + name, Name: name}, nil
}

func (fakeCatalog) DurationByName(_ context.Context, name string) (*models.DurationType, error) {
	if name != "standard" && name != "express" {
		return nil, catalog.ErrNotFound
	}
	return &models.DurationType{ID: "dt-" + name, Name: name, ExtraCharge: 10}, nil
}

// retiredDuration is a catalogue from which one duration option was removed.
type retiredDuration struct {
	fakeCatalog
	name string
}

func (c retiredDuration) DurationByName(ctx context.Context, name string) (*models.DurationType, error) {
	if name == c.name {
		return nil, fmt.Errorf("duration %q: %w", name, catalog.ErrNotFound)
	}
	return c.fakeCatalog.DurationByName(ctx, name)
}

type agentList []models.Agent

func (a agentList) FindEligible(context.Context, string) ([]models.Agent, error) {
	return a, nil
}

func testAgent(id string, lat, lng float64) models.Agent {
	return models.Agent{
		ID: id, CityID: "c1", Status: models.AgentStatusApproved, IsOnline: true,
		Latitude: f64(lat), Longitude: f64(lng),
	}
}

type harness struct {
	svc      *SessionService
	sessions *kvstore.MemoryStore
	drafts   *kvstore.MemoryStore
	bookings *fakeBookingStore
	queue    *mockEnqueuer
}

func newHarness(t *testing.T, ranker Ranker) *harness {
	t.Helper()
	h := &harness{
		sessions: kvstore.NewMemoryStore(),
		drafts:   kvstore.NewMemoryStore(),
		bookings: &fakeBookingStore{},
		queue:    new(mockEnqueuer),
	}
	h.queue.On("EnqueueContext", mock.Anything, tasks.TypeBookingCreated).Return(&asynq.TaskInfo{}, nil)
	if ranker == nil {
		ranker = ranking.NewEngine(agentList{
			testAgent("far", 51.55, -0.1278),
			testAgent("near", 51.51, -0.1278),
		}, nil)
	}
	drafts := draft.NewManager(h.drafts, nil, draft.DefaultExpiry, time.Hour)
	h.svc = NewSessionService(h.sessions, drafts, fakeCatalog{}, ranker, NewSubmitter(h.bookings, h.queue, nil), nil)
	return h
}

func str(s string) *string { return &s }

func TestWizardEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	sess, offer, err := h.svc.Start(ctx, "u1", "device-1")
	require.NoError(t, err)
	assert.Nil(t, offer)
	id := sess.SessionID

	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{
		CategoryID: str("phones"),
		BrandID:    str("apple"),
		Model:      str("iPhone 13"),
		FaultIDs:   []string{"screen"},
		IMEI:       str("356938035643809"),
	})
	require.NoError(t, err)
	assert.Equal(t, "dev-13", sess.State.Form.Device.DeviceID)
	_, err = h.svc.Next(ctx, id, "u1")
	require.NoError(t, err)

	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{
		Pincode: str("sw1a 1aa"),
		Street:  str("10 Downing St"),
	})
	require.NoError(t, err)
	assert.Equal(t, "London", sess.State.Form.Location.City)
	_, err = h.svc.Next(ctx, id, "u1")
	require.NoError(t, err)

	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{ServiceType: str(models.ServiceLocalDropoff)})
	require.NoError(t, err)
	require.Len(t, sess.State.Agents, 2)
	assert.Equal(t, "near", sess.State.Agents[0].ID)

	_, err = h.svc.Update(ctx, id, "u1", models.FormPatch{AgentID: str("near")})
	require.NoError(t, err)
	_, err = h.svc.Next(ctx, id, "u1")
	require.NoError(t, err)

	_, err = h.svc.Update(ctx, id, "u1", models.FormPatch{Duration: str("standard")})
	require.NoError(t, err)
	_, err = h.svc.Next(ctx, id, "u1")
	require.NoError(t, err)

	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{PaymentMethod: str("card")})
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, sess.State.Step)

	pricing, err := h.svc.Quote(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 99.0, pricing.Total)

	receipt, err := h.svc.Submit(ctx, id, "u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.BookingID, "BK-"))

	require.Len(t, h.bookings.saved, 1)
	b := h.bookings.saved[0]
	assert.Equal(t, "dev-13", b.DeviceID)
	assert.NotEmpty(t, b.Faults)
	assert.Equal(t, "st-local_dropoff", b.ServiceTypeID)
	assert.Equal(t, "dt-standard", b.DurationTypeID)
	assert.Equal(t, "near", b.AgentID)
	assert.Equal(t, 99.0, *b.PricingTotal)
	assert.Equal(t, "10 Downing St, London, England, SW1A1AA", b.AddressFull)

	_, err = h.svc.Get(ctx, id, "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, h.drafts.Len(), "submitted booking leaves no draft behind")
	h.queue.AssertExpectations(t)
}

func TestNextBlockedWithoutFaults(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	sess, _, err := h.svc.Start(ctx, "u1", "d1")
	require.NoError(t, err)

	_, err = h.svc.Update(ctx, sess.SessionID, "u1", models.FormPatch{
		CategoryID: str("phones"), BrandID: str("apple"), Model: str("iPhone 13"), IMEI: str("356938035643809"),
	})
	require.NoError(t, err)

	got, err := h.svc.Next(ctx, sess.SessionID, "u1")
	var stepErr *wizard.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, []string{"faults"}, stepErr.Fields)
	assert.Equal(t, models.StepDeviceDetails, got.State.Step)
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	sess, _, err := h.svc.Start(ctx, "u1", "d1")
	require.NoError(t, err)
	id := sess.SessionID

	_, err = h.svc.Update(ctx, id, "u1", models.FormPatch{FaultIDs: []string{"screen"}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "faults", ve.Field)

	_, err = h.svc.Update(ctx, id, "u1", models.FormPatch{BrandID: str("apple"), Model: str("Nokia 3310")})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "model", ve.Field)

	stored, err := h.svc.Get(ctx, id, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored.State.Form.Device.BrandID, "rejected patches are not stored")

	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{IMEI: str("123")})
	require.NoError(t, err)
	assert.Equal(t, wizard.MsgIMEIFormat, sess.State.FieldErrors["imei_number"])

	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{Pincode: str("N1 9GU")})
	require.NoError(t, err)
	assert.Equal(t, wizard.MsgNotServiced, sess.State.FieldErrors["address_pincode"])
	assert.Empty(t, sess.State.Form.Location.CityID)
}

func TestDeviceCascade(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	sess, _, _ := h.svc.Start(ctx, "u1", "d1")
	id := sess.SessionID

	_, err := h.svc.Update(ctx, id, "u1", models.FormPatch{
		CategoryID: str("phones"), BrandID: str("apple"), Model: str("iPhone 13"), FaultIDs: []string{"screen"},
	})
	require.NoError(t, err)

	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{BrandID: str("samsung")})
	require.NoError(t, err)
	d := sess.State.Form.Device
	assert.Equal(t, "phones", d.CategoryID)
	assert.Equal(t, "samsung", d.BrandID)
	assert.Empty(t, d.Model)
	assert.Empty(t, d.DeviceID)
	assert.Empty(t, d.Faults)
}

func TestPinOutOfBounds(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	sess, _, _ := h.svc.Start(ctx, "u1", "d1")

	sess, err := h.svc.Update(ctx, sess.SessionID, "u1", models.FormPatch{
		Pincode: str("SW1A1AA"),
		Pin:     &models.Coordinate{Lat: 53.48, Lng: -2.24},
	})
	require.NoError(t, err)
	loc := sess.State.Form.Location
	assert.True(t, loc.OutOfBounds)
	assert.Nil(t, loc.Latitude)
	assert.Equal(t, wizard.MsgOutOfBounds, sess.State.FieldErrors["location"])
}

func TestSessionOwnership(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	sess, _, _ := h.svc.Start(ctx, "u1", "d1")

	_, err := h.svc.Get(ctx, sess.SessionID, "intruder")
	assert.ErrorIs(t, err, ErrSessionForbidden)

	_, err = h.svc.Get(ctx, "missing", "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStartOffersResumableDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	form := models.BookingForm{}
	form.Location.Street = "1 High St"
	require.NoError(t, h.svc.Drafts.Save(ctx, draft.SlotKey("d1"), form, 3, "u1"))

	sess, offer, err := h.svc.Start(ctx, "u1", "d1")
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, 3, offer.CurrentStep)

	sess, err = h.svc.Resume(ctx, sess.SessionID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, sess.State.Step)
	assert.Equal(t, "1 High St", sess.State.Form.Location.Street)
}

func TestStartClearsStepOneDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	require.NoError(t, h.svc.Drafts.Save(ctx, draft.SlotKey("d1"), models.BookingForm{}, 1, "u1"))

	sess, offer, err := h.svc.Start(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.Nil(t, offer)
	assert.Equal(t, 0, h.drafts.Len())

	_, err = h.svc.Resume(ctx, sess.SessionID, "u1")
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestCancelClearsDraftAndSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	sess, _, _ := h.svc.Start(ctx, "u1", "d1")
	require.NoError(t, h.svc.Drafts.Save(ctx, draft.SlotKey("d1"), models.BookingForm{}, 2, "u1"))

	require.NoError(t, h.svc.Cancel(ctx, sess.SessionID, "u1"))
	assert.Equal(t, 0, h.drafts.Len())
	assert.Equal(t, 0, h.sessions.Len())
}

// racingRanker issues a competing update while the first ranking is in
// flight, so the first result must be discarded.
type racingRanker struct {
	calls int
	race  func()
}

func (r *racingRanker) Rank(ctx context.Context, cityID string, lat, lng *float64) ranking.Result {
	r.calls++
	call := r.calls
	if call == 1 && r.race != nil {
		r.race()
	}
	id := "first"
	if call > 1 {
		id = "second"
	}
	return ranking.Result{Agents: []models.RankedAgent{{Agent: testAgent(id, *lat, *lng)}}}
}

func TestStaleRankingDiscarded(t *testing.T) {
	ctx := context.Background()
	r := &racingRanker{}
	h := newHarness(t, r)

	sess, _, _ := h.svc.Start(ctx, "u1", "d1")
	id := sess.SessionID
	_, err := h.svc.Update(ctx, id, "u1", models.FormPatch{Pincode: str("SW1A1AA")})
	require.NoError(t, err)

	r.race = func() {
		_, err := h.svc.Update(ctx, id, "u1", models.FormPatch{Pin: &models.Coordinate{Lat: 51.51, Lng: -0.13}})
		require.NoError(t, err)
	}
	sess, err = h.svc.Update(ctx, id, "u1", models.FormPatch{ServiceType: str(models.ServicePostal)})
	require.NoError(t, err)

	require.Len(t, sess.State.Agents, 1)
	assert.Equal(t, "second", sess.State.Agents[0].ID)
	assert.Equal(t, 2, r.calls)
}

// toDurationStep drives a fresh session through the first three steps.
func toDurationStep(t *testing.T, h *harness) string {
	t.Helper()
	ctx := context.Background()
	sess, _, err := h.svc.Start(ctx, "u1", "device-1")
	require.NoError(t, err)
	id := sess.SessionID

	patches := []models.FormPatch{
		{CategoryID: str("phones"), BrandID: str("apple"), Model: str("iPhone 13"), FaultIDs: []string{"screen"}, IMEI: str("356938035643809")},
		{Pincode: str("SW1A 1AA"), Street: str("10 Downing St")},
		{ServiceType: str(models.ServiceLocalDropoff)},
	}
	for _, p := range patches {
		_, err = h.svc.Update(ctx, id, "u1", p)
		require.NoError(t, err)
		if p.ServiceType != nil {
			_, err = h.svc.Update(ctx, id, "u1", models.FormPatch{AgentID: str("near")})
			require.NoError(t, err)
		}
		_, err = h.svc.Next(ctx, id, "u1")
		require.NoError(t, err)
	}
	return id
}

func TestUnknownDurationRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	id := toDurationStep(t, h)

	_, err := h.svc.Update(ctx, id, "u1", models.FormPatch{Duration: str("no-such-duration")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "duration", ve.Field)

	_, err = h.svc.Next(ctx, id, "u1")
	var se *wizard.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.StepDuration, se.Step)

	stored, err := h.svc.Get(ctx, id, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored.State.Form.Duration.Name)
}

func TestSubmitWithRetiredDuration(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	id := toDurationStep(t, h)

	_, err := h.svc.Update(ctx, id, "u1", models.FormPatch{Duration: str("express")})
	require.NoError(t, err)
	_, err = h.svc.Next(ctx, id, "u1")
	require.NoError(t, err)
	_, err = h.svc.Update(ctx, id, "u1", models.FormPatch{PaymentMethod: str("card")})
	require.NoError(t, err)

	h.svc.Catalog = retiredDuration{name: "express"}
	_, err = h.svc.Submit(ctx, id, "u1")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "duration", ve.Field)
	assert.Empty(t, h.bookings.saved)

	_, err = h.svc.Get(ctx, id, "u1")
	assert.NoError(t, err, "a failed submit keeps the session")
}
