package models

import "time"

// Wizard steps.
const (
	StepDeviceDetails = 1
	StepLocation      = 2
	StepServiceType   = 3
	StepDuration      = 4
	StepPayment       = 5
)

// WizardState is the in-flight booking wizard.
type WizardState struct {
	Step        int               `json:"current_step"`
	Form        BookingForm       `json:"form"`
	Agents      []RankedAgent     `json:"filtered_agents"`
	AgentsError string            `json:"agents_error,omitempty"`
	RankToken   uint64            `json:"rank_token"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// NewWizardState returns a wizard at step 1 with an empty form.
func NewWizardState() WizardState {
	return WizardState{
		Step: StepDeviceDetails,
		Form: BookingForm{Location: Location{LocationType: "residential"}},
	}
}

// WizardSession holds a wizard between requests.
type WizardSession struct {
	SessionID string      `json:"sessionId"`
	UserID    string      `json:"userId"`
	DeviceID  string      `json:"deviceId"`
	State     WizardState `json:"state"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// BookingDraft is a locally persisted snapshot of a wizard, owned by one user.
type BookingDraft struct {
	Form        BookingForm `json:"form"`
	CurrentStep int         `json:"current_step"`
	UserID      string      `json:"user_id"`
	LastSaved   time.Time   `json:"last_saved"`
}
