package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"repairhub/database/kvstore"
	"repairhub/models"
	"repairhub/services/catalog"
	"repairhub/services/draft"
	"repairhub/services/ranking"
	"repairhub/services/wizard"
	"repairhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionPrefix = "wizard:"

// Catalog is the catalogue lookups the wizard depends on.
type Catalog interface {
	LookupPostcode(ctx context.Context, raw string) (*models.ServiceCity, error)
	FindDevice(ctx context.Context, brandID, model string) (*models.Device, error)
	SelectFaults(ctx context.Context, deviceID string, ids []string) ([]models.SelectedFault, error)
	ServiceTypeByName(ctx context.Context, name string) (*models.ServiceType, error)
	DurationByName(ctx context.Context, name string) (*models.DurationType, error)
}

// Ranker ranks agents around a customer pin.
type Ranker interface {
	Rank(ctx context.Context, cityID string, lat, lng *float64) ranking.Result
}

// SessionService runs booking wizards held server side between requests.
type SessionService struct {
	Sessions  kvstore.Store
	Drafts    *draft.Manager
	Catalog   Catalog
	Ranker    Ranker
	Submitter *Submitter
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewSessionService(sessions kvstore.Store, drafts *draft.Manager, cat Catalog, ranker Ranker, submitter *Submitter, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		Sessions:  sessions,
		Drafts:    drafts,
		Catalog:   cat,
		Ranker:    ranker,
		Submitter: submitter,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Start opens a new wizard at step one. When the device holds a resumable
// draft for userID it is returned as an offer; unusable drafts are cleared.
func (s *SessionService) Start(ctx context.Context, userID, deviceID string) (*models.WizardSession, *models.BookingDraft, error) {
	now := s.Now()
	sess := &models.WizardSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		DeviceID:  deviceID,
		State:     models.NewWizardState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, nil, err
	}

	slot := draft.SlotKey(deviceID)
	offer := s.Drafts.LoadForUser(ctx, slot, userID)
	if offer != nil && !draft.IsResumable(offer) {
		if err := s.Drafts.Clear(ctx, slot); err != nil {
			s.Logger.Warn("failed to clear unusable draft", zap.String("slot", slot), zap.Error(err))
		}
		offer = nil
	}

	s.Logger.Info("booking session started",
		zap.String("sessionID", sess.SessionID),
		zap.String("userID", userID),
		zap.Bool("draftOffered", offer != nil))
	return sess, offer, nil
}

// Get returns a session owned by userID.
func (s *SessionService) Get(ctx context.Context, id, userID string) (*models.WizardSession, error) {
	return s.load(ctx, id, userID)
}

// Update applies a form patch. Rejected input is reported as a
// *ValidationError and leaves the stored session unchanged.
func (s *SessionService) Update(ctx context.Context, id, userID string, p models.FormPatch) (*models.WizardSession, error) {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	m := wizard.New(&sess.State)
	before := rankInputs(sess.State.Form)

	if err := s.applyDevice(ctx, m, p); err != nil {
		return nil, err
	}
	if err := s.applyLocation(ctx, m, p); err != nil {
		return nil, err
	}
	if err := s.checkDuration(ctx, p); err != nil {
		return nil, err
	}
	applyService(m, p)

	if after := rankInputs(sess.State.Form); after != before {
		if sess, err = s.refreshAgents(ctx, sess); err != nil {
			return nil, err
		}
		m = wizard.New(&sess.State)
	}

	if p.AgentID != nil {
		if err := m.SelectAgent(*p.AgentID); err != nil {
			return nil, newValidationError("selected_agent", err.Error())
		}
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.saveDraft(sess)
	return sess, nil
}

func (s *SessionService) applyDevice(ctx context.Context, m *wizard.Machine, p models.FormPatch) error {
	d := &m.State.Form.Device

	if p.CategoryID != nil && *p.CategoryID != d.CategoryID {
		d.CategoryID = *p.CategoryID
		d.BrandID, d.Model, d.DeviceID, d.Faults = "", "", "", nil
	}
	if p.BrandID != nil && *p.BrandID != d.BrandID {
		d.BrandID = *p.BrandID
		d.Model, d.DeviceID, d.Faults = "", "", nil
	}
	if p.Model != nil && *p.Model != d.Model {
		d.Model = *p.Model
		d.DeviceID, d.Faults = "", nil
		if d.Model != "" {
			dev, err := s.Catalog.FindDevice(ctx, d.BrandID, d.Model)
			if errors.Is(err, catalog.ErrNotFound) {
				return newValidationError("model", "Unknown device model.")
			}
			if err != nil {
				return fmt.Errorf("resolve device: %w", err)
			}
			d.DeviceID = dev.ID
		}
	}
	if p.FaultIDs != nil {
		if d.DeviceID == "" {
			return newValidationError("faults", "Select a device model first.")
		}
		faults, err := s.Catalog.SelectFaults(ctx, d.DeviceID, p.FaultIDs)
		if errors.Is(err, catalog.ErrNotFound) {
			return newValidationError("faults", "Unknown fault for this device.")
		}
		if err != nil {
			return fmt.Errorf("resolve faults: %w", err)
		}
		d.Faults = faults
	}
	if p.CustomFault != nil {
		d.CustomFault = *p.CustomFault
	}
	if p.Images != nil {
		d.Images = p.Images
	}
	if p.IMEI != nil {
		d.IMEI = *p.IMEI
		m.SetFieldError("imei_number", wizard.ValidateIMEI(d.IMEI))
	}
	return nil
}

func (s *SessionService) applyLocation(ctx context.Context, m *wizard.Machine, p models.FormPatch) error {
	loc := &m.State.Form.Location

	if p.Pincode != nil {
		code := wizard.NormalizePostcode(*p.Pincode)
		switch {
		case code == "":
			*loc = wizard.ResolveLocation(*loc, "", nil)
			m.SetFieldError("address_pincode", "")
		default:
			city, err := s.Catalog.LookupPostcode(ctx, code)
			switch {
			case errors.Is(err, catalog.ErrNotServiced):
				*loc = wizard.ResolveLocation(*loc, code, nil)
				m.SetFieldError("address_pincode", wizard.MsgNotServiced)
			case err != nil:
				return fmt.Errorf("lookup postcode: %w", err)
			default:
				*loc = wizard.ResolveLocation(*loc, code, city)
				m.SetFieldError("address_pincode", "")
			}
		}
		m.SetFieldError("location", "")
	}
	if p.Street != nil {
		loc.Street = *p.Street
	}
	if p.Landmark != nil {
		loc.Landmark = *p.Landmark
	}
	if p.LocationType != nil {
		loc.LocationType = *p.LocationType
	}
	if p.Pin != nil {
		*loc = wizard.DropPin(*loc, p.Pin.Lat, p.Pin.Lng)
		if loc.OutOfBounds {
			m.SetFieldError("location", wizard.MsgOutOfBounds)
		} else {
			m.SetFieldError("location", "")
		}
	}
	return nil
}

// checkDuration rejects a duration option the catalogue does not offer.
func (s *SessionService) checkDuration(ctx context.Context, p models.FormPatch) error {
	if p.Duration == nil || *p.Duration == "" {
		return nil
	}
	_, err := s.Catalog.DurationByName(ctx, *p.Duration)
	if errors.Is(err, catalog.ErrNotFound) {
		return newValidationError("duration", "Unknown duration option.")
	}
	if err != nil {
		return fmt.Errorf("resolve duration: %w", err)
	}
	return nil
}

func applyService(m *wizard.Machine, p models.FormPatch) {
	f := &m.State.Form
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&f.Service.ServiceType, p.ServiceType)
	set(&f.Service.CollectionDate, p.CollectionDate)
	set(&f.Service.CollectionTime, p.CollectionTime)
	set(&f.Service.DeliveryDate, p.DeliveryDate)
	set(&f.Service.DeliveryTime, p.DeliveryTime)
	set(&f.Duration.Name, p.Duration)
	set(&f.Duration.PromoCode, p.PromoCode)
	set(&f.Payment.Method, p.PaymentMethod)
}

// rankInputs captures the fields whose change invalidates the ranked agents.
func rankInputs(f models.BookingForm) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		f.Service.ServiceType, f.Location.CityID, fmtCoord(f.Location.Latitude), fmtCoord(f.Location.Longitude), f.Location.Pincode)
}

func fmtCoord(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.7f", *v)
}

// refreshAgents re-ranks agents for agent-based service types and clears them
// otherwise. The ranking runs between two saves; a result whose token has
// been superseded by a concurrent update is dropped.
func (s *SessionService) refreshAgents(ctx context.Context, sess *models.WizardSession) (*models.WizardSession, error) {
	m := wizard.New(&sess.State)
	form := sess.State.Form
	if !wizard.AgentBased(form.Service.ServiceType) {
		m.ClearAgents()
		return sess, nil
	}

	token := m.BeginRanking()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	res := s.Ranker.Rank(ctx, form.Location.CityID, form.Location.Latitude, form.Location.Longitude)

	latest, err := s.load(ctx, sess.SessionID, sess.UserID)
	if err != nil {
		return nil, err
	}
	if !wizard.New(&latest.State).ApplyRanking(token, res) {
		utils.AgentRankingsTotal.WithLabelValues("stale").Inc()
		s.Logger.Debug("discarded stale ranking", zap.String("sessionID", sess.SessionID), zap.Uint64("token", token))
	}
	return latest, nil
}

// RefreshAgents re-runs the ranking, for retrying after a failed fetch.
func (s *SessionService) RefreshAgents(ctx context.Context, id, userID string) (*models.WizardSession, error) {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sess, err = s.refreshAgents(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Next advances the wizard. A *wizard.StepError is returned with the
// unchanged session when the current step is incomplete.
func (s *SessionService) Next(ctx context.Context, id, userID string) (*models.WizardSession, error) {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := wizard.New(&sess.State).Next(); err != nil {
		utils.WizardTransitionsTotal.WithLabelValues("forward", "blocked").Inc()
		return sess, err
	}
	utils.WizardTransitionsTotal.WithLabelValues("forward", "ok").Inc()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.saveDraft(sess)
	return sess, nil
}

// Previous steps back without validation.
func (s *SessionService) Previous(ctx context.Context, id, userID string) (*models.WizardSession, error) {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !wizard.New(&sess.State).Previous() {
		utils.WizardTransitionsTotal.WithLabelValues("back", "noop").Inc()
		return sess, nil
	}
	utils.WizardTransitionsTotal.WithLabelValues("back", "ok").Inc()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.saveDraft(sess)
	return sess, nil
}

// Resume loads the device's draft for userID into the session.
func (s *SessionService) Resume(ctx context.Context, id, userID string) (*models.WizardSession, error) {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	d := s.Drafts.LoadForUser(ctx, draft.SlotKey(sess.DeviceID), userID)
	if !draft.IsResumable(d) {
		return nil, ErrNoDraft
	}

	sess.State.Form = d.Form
	sess.State.Step = d.CurrentStep
	sess.State.FieldErrors = nil
	wizard.New(&sess.State)

	if sess, err = s.refreshAgents(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.Logger.Info("booking draft resumed", zap.String("sessionID", id), zap.Int("step", sess.State.Step))
	return sess, nil
}

// Quote prices the session's current selections.
func (s *SessionService) Quote(ctx context.Context, sess *models.WizardSession) (models.Pricing, error) {
	var charge float64
	if name := sess.State.Form.Duration.Name; name != "" {
		dt, err := s.Catalog.DurationByName(ctx, name)
		if err != nil {
			return models.Pricing{}, fmt.Errorf("resolve duration: %w", err)
		}
		charge = dt.ExtraCharge
	}
	return wizard.Quote(sess.State.Form.Device.Faults, charge), nil
}

// Submit turns a finished wizard into a booking. On success the draft and
// the session are removed; on failure both are left as they were.
func (s *SessionService) Submit(ctx context.Context, id, userID string) (*models.BookingReceipt, error) {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := wizard.New(&sess.State).ReadyToSubmit(); err != nil {
		return nil, err
	}

	form := sess.State.Form
	st, err := s.Catalog.ServiceTypeByName(ctx, form.Service.ServiceType)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, newValidationError("service_type", "This service type is no longer available.")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve service type: %w", err)
	}
	refs := BookingRefs{ServiceTypeID: st.ID}
	if form.Duration.Name != "" {
		dt, err := s.Catalog.DurationByName(ctx, form.Duration.Name)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, newValidationError("duration", "This duration option is no longer available.")
		}
		if err != nil {
			return nil, fmt.Errorf("resolve duration: %w", err)
		}
		refs.DurationTypeID = dt.ID
		refs.DurationCharge = dt.ExtraCharge
	}

	payload := BuildPayload(userID, &sess.State, refs, s.Now())
	receipt, err := s.Submitter.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := s.Drafts.Clear(ctx, draft.SlotKey(sess.DeviceID)); err != nil {
		s.Logger.Warn("failed to clear draft after booking", zap.String("sessionID", id), zap.Error(err))
	}
	if err := s.Sessions.Delete(ctx, sessionPrefix+id); err != nil {
		s.Logger.Warn("failed to delete booking session", zap.String("sessionID", id), zap.Error(err))
	}
	return receipt, nil
}

// Cancel starts over: the draft and the session are removed.
func (s *SessionService) Cancel(ctx context.Context, id, userID string) error {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.Drafts.Clear(ctx, draft.SlotKey(sess.DeviceID)); err != nil {
		s.Logger.Warn("failed to clear draft", zap.String("sessionID", id), zap.Error(err))
	}
	if err := s.Sessions.Delete(ctx, sessionPrefix+id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.Logger.Info("booking session cancelled", zap.String("sessionID", id))
	return nil
}

// Draft returns the device's resumable draft for userID, or nil.
func (s *SessionService) Draft(ctx context.Context, userID, deviceID string) *models.BookingDraft {
	d := s.Drafts.LoadForUser(ctx, draft.SlotKey(deviceID), userID)
	if !draft.IsResumable(d) {
		return nil
	}
	return d
}

// DiscardDraft clears the device's draft slot.
func (s *SessionService) DiscardDraft(ctx context.Context, deviceID string) error {
	return s.Drafts.Clear(ctx, draft.SlotKey(deviceID))
}

func (s *SessionService) saveDraft(sess *models.WizardSession) {
	if sess.State.Step < models.StepLocation {
		return
	}
	s.Drafts.DebouncedSave(draft.SlotKey(sess.DeviceID), sess.State.Form, sess.State.Step, sess.UserID)
}

func (s *SessionService) load(ctx context.Context, id, userID string) (*models.WizardSession, error) {
	data, err := s.Sessions.Get(ctx, sessionPrefix+id)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess models.WizardSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return &sess, nil
}

func (s *SessionService) save(ctx context.Context, sess *models.WizardSession) error {
	sess.UpdatedAt = s.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.Sessions.Set(ctx, sessionPrefix+sess.SessionID, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
