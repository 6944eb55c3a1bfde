// Package draft persists the in-progress booking wizard so a user can resume
// it after a reload. Drafts are scoped to one user and expire after a quiet
// period.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"repairhub/database/kvstore"
	"repairhub/models"
	"repairhub/utils"

	"go.uber.org/zap"
)

const (
	DefaultExpiry   = 15 * time.Minute
	DefaultDebounce = 500 * time.Millisecond

	slotPrefix = "booking_draft"
)

// SlotKey returns the storage key of a client's draft slot.
func SlotKey(deviceID string) string {
	if deviceID == "" {
		return slotPrefix
	}
	return slotPrefix + ":" + deviceID
}

type pendingWrite struct {
	timer  *time.Timer
	form   models.BookingForm
	step   int
	userID string
}

// Manager saves, loads, expires and clears booking drafts.
type Manager struct {
	store    kvstore.Store
	logger   *zap.Logger
	expiry   time.Duration
	debounce time.Duration

	// Now is the clock used for last_saved stamps and expiry checks.
	Now func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingWrite
	// writeMu orders debounced writes against Clear so a cleared slot is
	// never rewritten by a write that was already in flight.
	writeMu sync.Mutex
}

func NewManager(store kvstore.Store, logger *zap.Logger, expiry, debounce time.Duration) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Manager{
		store:    store,
		logger:   logger,
		expiry:   expiry,
		debounce: debounce,
		Now:      time.Now,
		pending:  make(map[string]*pendingWrite),
	}
}

// Save overwrites the slot with the given form and step, stamped now.
func (m *Manager) Save(ctx context.Context, slot string, form models.BookingForm, step int, userID string) error {
	d := models.BookingDraft{
		Form:        form,
		CurrentStep: step,
		UserID:      userID,
		LastSaved:   m.Now(),
	}
	data, err := json.Marshal(d)
	if err != nil {
		utils.DraftWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := m.store.Set(ctx, slot, data); err != nil {
		utils.DraftWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("save draft: %w", err)
	}
	utils.DraftWritesTotal.WithLabelValues("ok").Inc()
	return nil
}

// DebouncedSave schedules a Save for slot. Calls arriving within the quiet
// window replace each other and only the last one is written.
func (m *Manager) DebouncedSave(slot string, form models.BookingForm, step int, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.pending[slot]; ok {
		prev.timer.Stop()
	}
	pw := &pendingWrite{form: form, step: step, userID: userID}
	pw.timer = time.AfterFunc(m.debounce, func() { m.fire(slot, pw) })
	m.pending[slot] = pw
}

func (m *Manager) fire(slot string, pw *pendingWrite) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.pending[slot] != pw {
		m.mu.Unlock()
		return
	}
	delete(m.pending, slot)
	m.mu.Unlock()

	m.write(slot, pw)
}

func (m *Manager) write(slot string, pw *pendingWrite) {
	if err := m.Save(context.Background(), slot, pw.form, pw.step, pw.userID); err != nil {
		m.logger.Warn("draft save failed", zap.String("slot", slot), zap.Error(err))
	}
}

// Flush writes every pending debounced draft now.
func (m *Manager) Flush() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	pending := m.pending
	m.pending = make(map[string]*pendingWrite)
	m.mu.Unlock()

	for slot, pw := range pending {
		pw.timer.Stop()
		m.write(slot, pw)
	}
}

// LoadForUser returns the slot's draft when it belongs to userID and has not
// expired. Drafts owned by someone else or past expiry are deleted. Unreadable
// drafts are reported as absent.
func (m *Manager) LoadForUser(ctx context.Context, slot, userID string) *models.BookingDraft {
	data, err := m.store.Get(ctx, slot)
	if errors.Is(err, kvstore.ErrNotFound) {
		utils.DraftLoadsTotal.WithLabelValues("absent").Inc()
		return nil
	}
	if err != nil {
		m.logger.Warn("draft read failed", zap.String("slot", slot), zap.Error(err))
		utils.DraftLoadsTotal.WithLabelValues("corrupt").Inc()
		return nil
	}

	var d models.BookingDraft
	if err := json.Unmarshal(data, &d); err != nil {
		m.logger.Warn("draft unreadable", zap.String("slot", slot), zap.Error(err))
		utils.DraftLoadsTotal.WithLabelValues("corrupt").Inc()
		return nil
	}

	if d.UserID != userID {
		utils.DraftLoadsTotal.WithLabelValues("mismatch").Inc()
		m.clearQuietly(ctx, slot)
		return nil
	}
	if m.IsExpired(&d) {
		utils.DraftLoadsTotal.WithLabelValues("expired").Inc()
		m.clearQuietly(ctx, slot)
		return nil
	}

	utils.DraftLoadsTotal.WithLabelValues("found").Inc()
	return &d
}

// IsExpired reports whether a draft is missing, unstamped or older than the
// expiry window. A draft exactly at the window edge is still valid.
func (m *Manager) IsExpired(d *models.BookingDraft) bool {
	if d == nil || d.LastSaved.IsZero() {
		return true
	}
	return m.Now().Sub(d.LastSaved) > m.expiry
}

// Clear removes the slot and cancels any pending debounced write for it.
func (m *Manager) Clear(ctx context.Context, slot string) error {
	m.mu.Lock()
	if pw, ok := m.pending[slot]; ok {
		pw.timer.Stop()
		delete(m.pending, slot)
	}
	m.mu.Unlock()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := m.store.Delete(ctx, slot); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

func (m *Manager) clearQuietly(ctx context.Context, slot string) {
	if err := m.Clear(ctx, slot); err != nil {
		m.logger.Warn("draft clear failed", zap.String("slot", slot), zap.Error(err))
	}
}

// IsResumable reports whether a draft holds enough progress to offer a resume.
func IsResumable(d *models.BookingDraft) bool {
	if d == nil {
		return false
	}
	return d.CurrentStep >= models.StepLocation || d.Form.Location.HasAddressData()
}
