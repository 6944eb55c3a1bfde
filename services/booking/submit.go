package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"repairhub/models"
	"repairhub/services/tasks"
	"repairhub/services/wizard"
	"repairhub/utils"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingStore persists submitted bookings.
type BookingStore interface {
	Insert(ctx context.Context, b *models.BookingPayload) (string, error)
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Submitter validates and stores booking payloads.
type Submitter struct {
	Store  BookingStore
	Tasks  TaskEnqueuer
	Logger *zap.Logger
	Now    func() time.Time
}

func NewSubmitter(store BookingStore, tasks TaskEnqueuer, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{Store: store, Tasks: tasks, Logger: logger, Now: time.Now}
}

// requiredField pairs a column name with its presence check, in the order the
// booking API reports them.
type requiredField struct {
	name    string
	present func(*models.BookingPayload) bool
}

var requiredFields = []requiredField{
	{"user_id", func(p *models.BookingPayload) bool { return p.UserID != "" }},
	{"device_id", func(p *models.BookingPayload) bool { return p.DeviceID != "" }},
	{"city_id", func(p *models.BookingPayload) bool { return p.CityID != "" }},
	{"service_type_id", func(p *models.BookingPayload) bool { return p.ServiceTypeID != "" }},
	{"scheduled_date", func(p *models.BookingPayload) bool { return p.ScheduledDate != "" }},
	{"scheduled_time", func(p *models.BookingPayload) bool { return p.ScheduledTime != "" }},
	{"pricing_service_charge", func(p *models.BookingPayload) bool { return p.PricingServiceCharge != nil }},
	{"pricing_delivery_charge", func(p *models.BookingPayload) bool { return p.PricingDeliveryCharge != nil }},
	{"pricing_total", func(p *models.BookingPayload) bool { return p.PricingTotal != nil }},
	{"payment_method", func(p *models.BookingPayload) bool { return p.PaymentMethod != "" }},
	{"address_street", func(p *models.BookingPayload) bool { return p.AddressStreet != "" }},
	{"address_city", func(p *models.BookingPayload) bool { return p.AddressCity != "" }},
	{"address_state", func(p *models.BookingPayload) bool { return p.AddressState != "" }},
	{"address_pincode", func(p *models.BookingPayload) bool { return p.AddressPincode != "" }},
	{"address_latitude", func(p *models.BookingPayload) bool { return p.AddressLatitude != nil }},
	{"address_longitude", func(p *models.BookingPayload) bool { return p.AddressLongitude != nil }},
	{"address_full", func(p *models.BookingPayload) bool { return p.AddressFull != "" }},
	{"location_type", func(p *models.BookingPayload) bool { return p.LocationType != "" }},
	{"imei_number", func(p *models.BookingPayload) bool { return p.IMEINumber != "" }},
}

// CheckRequired returns a *FieldError for the first missing required field.
func CheckRequired(p *models.BookingPayload) error {
	for _, f := range requiredFields {
		if !f.present(p) {
			return &FieldError{Field: f.name}
		}
	}
	return nil
}

// NewBookingID returns an id of the form BK-<unix-ms>-<suffix>.
func NewBookingID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
	return fmt.Sprintf("BK-%d-%s", now.UnixMilli(), suffix)
}

// Submit checks the payload, fills defaults, stores it and queues the
// booking notification. A failed enqueue is logged, not returned.
func (s *Submitter) Submit(ctx context.Context, p *models.BookingPayload) (*models.BookingReceipt, error) {
	if err := CheckRequired(p); err != nil {
		utils.BookingsSubmittedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	now := s.Now()
	if p.BookingID == "" {
		p.BookingID = NewBookingID(now)
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentStatusPending
	}
	if p.Status == "" {
		p.Status = models.BookingStatusPending
	}
	p.CreatedAt = now

	id, err := s.Store.Insert(ctx, p)
	if err != nil {
		utils.BookingsSubmittedTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to store booking: %w", err)
	}
	utils.BookingsSubmittedTotal.WithLabelValues("created").Inc()
	s.Logger.Info("booking created", zap.String("bookingID", p.BookingID), zap.String("userID", p.UserID))

	s.enqueueCreated(ctx, p)
	return &models.BookingReceipt{BookingID: p.BookingID, ID: id}, nil
}

func (s *Submitter) enqueueCreated(ctx context.Context, p *models.BookingPayload) {
	if s.Tasks == nil {
		return
	}
	payload := models.BookingCreatedPayload{
		BookingID: p.BookingID,
		UserID:    p.UserID,
		AgentID:   p.AgentID,
	}
	if p.PricingTotal != nil {
		payload.Total = *p.PricingTotal
	}
	task, opts, err := tasks.NewBookingCreatedTask(payload)
	if err != nil {
		s.Logger.Error("failed to build booking task", zap.Error(err))
		return
	}
	if _, err := s.Tasks.EnqueueContext(ctx, task, opts...); err != nil {
		s.Logger.Warn("failed to enqueue booking task", zap.String("bookingID", p.BookingID), zap.Error(err))
	}
}

// BookingRefs are the catalogue ids and charges resolved for a wizard.
type BookingRefs struct {
	ServiceTypeID  string
	DurationTypeID string
	DurationCharge float64
}

// BuildPayload maps a completed wizard to a booking payload. The schedule
// comes from the collection slot when one was chosen, otherwise from now.
func BuildPayload(userID string, state *models.WizardState, refs BookingRefs, now time.Time) *models.BookingPayload {
	form := state.Form
	pricing := wizard.Quote(form.Device.Faults, refs.DurationCharge)

	faults := make([]models.FaultLine, 0, len(form.Device.Faults))
	for _, f := range form.Device.Faults {
		faults = append(faults, models.FaultLine{ID: f.ID, Name: f.Name, Price: f.Price})
	}

	scheduledDate := form.Service.CollectionDate
	scheduledTime := form.Service.CollectionTime
	if scheduledDate == "" {
		scheduledDate = now.Format("2006-01-02")
	}
	if scheduledTime == "" {
		scheduledTime = now.Format("15:04")
	}

	loc := form.Location
	var notes string
	if form.Device.CustomFault != "" {
		notes = "Custom fault: " + form.Device.CustomFault
	}

	return &models.BookingPayload{
		UserID:         userID,
		DeviceID:       form.Device.DeviceID,
		CityID:         loc.CityID,
		ServiceTypeID:  refs.ServiceTypeID,
		DurationTypeID: refs.DurationTypeID,
		AgentID:        form.Service.AgentID,

		ScheduledDate:  scheduledDate,
		ScheduledTime:  scheduledTime,
		CollectionDate: form.Service.CollectionDate,
		CollectionTime: form.Service.CollectionTime,
		DeliveryDate:   form.Service.DeliveryDate,
		DeliveryTime:   form.Service.DeliveryTime,

		PricingServiceCharge:  &pricing.ServiceCharge,
		PricingDeliveryCharge: &pricing.DeliveryCharge,
		PricingDiscount:       pricing.Discount,
		PricingTotal:          &pricing.Total,

		PaymentMethod: form.Payment.Method,
		Faults:        faults,
		Images:        form.Device.Images,
		PromoCode:     form.Duration.PromoCode,
		Notes:         notes,
		IMEINumber:    form.Device.IMEI,

		AddressStreet:     loc.Street,
		AddressCity:       loc.City,
		AddressState:      loc.State,
		AddressPincode:    loc.Pincode,
		AddressLandmark:   loc.Landmark,
		AddressLatitude:   loc.Latitude,
		AddressLongitude:  loc.Longitude,
		AddressFull:       FullAddress(loc),
		LocationType:      loc.LocationType,
		IsAddressVerified: loc.Checked && !loc.OutOfBounds,
	}
}

// FullAddress joins the non-empty address parts with commas.
func FullAddress(loc models.Location) string {
	var parts []string
	for _, p := range []string{loc.Street, loc.Landmark, loc.City, loc.State, loc.Pincode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
