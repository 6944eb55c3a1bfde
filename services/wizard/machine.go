package wizard

import (
	"repairhub/models"
	"repairhub/services/ranking"
)

// Machine drives a WizardState through its five steps.
type Machine struct {
	State *models.WizardState
}

func New(state *models.WizardState) *Machine {
	m := &Machine{State: state}
	m.Clamp()
	return m
}

// Clamp forces the step into [1, 5].
func (m *Machine) Clamp() {
	switch {
	case m.State.Step < models.StepDeviceDetails:
		m.State.Step = models.StepDeviceDetails
	case m.State.Step > models.StepPayment:
		m.State.Step = models.StepPayment
	}
}

// Next advances one step when the current step is complete.
func (m *Machine) Next() error {
	if missing := Missing(m.State.Form, m.State.Step); len(missing) > 0 {
		return &StepError{Step: m.State.Step, Fields: missing}
	}
	if m.State.Step < models.StepPayment {
		m.State.Step++
	}
	return nil
}

// Previous steps back without re-validating. It reports whether the step changed.
func (m *Machine) Previous() bool {
	if m.State.Step <= models.StepDeviceDetails {
		return false
	}
	m.State.Step--
	return true
}

// ReadyToSubmit checks that the wizard sits on the payment step with a
// payment method and a confirmed location.
func (m *Machine) ReadyToSubmit() error {
	if m.State.Step != models.StepPayment {
		return ErrNotFinalStep
	}
	if missing := Missing(m.State.Form, models.StepPayment); len(missing) > 0 {
		return &StepError{Step: models.StepPayment, Fields: missing}
	}
	if missing := Missing(m.State.Form, models.StepLocation); len(missing) > 0 {
		return &StepError{Step: models.StepLocation, Fields: missing}
	}
	return nil
}

// BeginRanking issues a new ranking token. Any result carrying an older token
// is discarded by ApplyRanking. The selected agent is cleared.
func (m *Machine) BeginRanking() uint64 {
	m.State.RankToken++
	m.State.Form.Service.AgentID = ""
	return m.State.RankToken
}

// ApplyRanking replaces the ranked list with res if token is still current.
func (m *Machine) ApplyRanking(token uint64, res ranking.Result) bool {
	if token != m.State.RankToken {
		return false
	}
	m.State.Agents = res.Agents
	if m.State.Agents == nil {
		m.State.Agents = []models.RankedAgent{}
	}
	m.State.AgentsError = res.Err
	m.State.Form.Service.AgentID = ""
	return true
}

// ClearAgents drops the ranked list and any selection, invalidating
// in-flight rankings.
func (m *Machine) ClearAgents() {
	m.State.RankToken++
	m.State.Agents = []models.RankedAgent{}
	m.State.AgentsError = ""
	m.State.Form.Service.AgentID = ""
}

// SelectAgent picks an agent from the current ranked list. An empty id
// clears the selection.
func (m *Machine) SelectAgent(id string) error {
	if id == "" {
		m.State.Form.Service.AgentID = ""
		return nil
	}
	for _, a := range m.State.Agents {
		if a.ID == id {
			m.State.Form.Service.AgentID = id
			return nil
		}
	}
	return ErrUnknownAgent
}

// SetFieldError records or, for an empty message, clears an inline error.
func (m *Machine) SetFieldError(field, msg string) {
	if msg == "" {
		delete(m.State.FieldErrors, field)
		return
	}
	if m.State.FieldErrors == nil {
		m.State.FieldErrors = make(map[string]string)
	}
	m.State.FieldErrors[field] = msg
}
