// Package catalog serves the read side of the booking wizard: service cities,
// postcode resolution and the device/fault/service catalogue.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	catalogRepo "repairhub/database/repository/catalog"
	cityRepo "repairhub/database/repository/city"
	"repairhub/models"
	"repairhub/services/wizard"

	"go.uber.org/zap"
)

var (
	ErrNotServiced = errors.New("postcode is not serviced")
	ErrNotFound    = errors.New("catalog entry not found")
)

// CityReader is the city data the catalog needs.
type CityReader interface {
	ListSummaries(ctx context.Context) ([]models.CitySummary, error)
	ListActive(ctx context.Context) ([]models.City, error)
	GetState(ctx context.Context, id string) (*models.State, error)
}

// CatalogReader is the catalogue data the wizard reads.
type CatalogReader interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Brands(ctx context.Context, categoryID string) ([]models.Brand, error)
	Devices(ctx context.Context, brandID string) ([]models.Device, error)
	FindDevice(ctx context.Context, brandID, model string) (*models.Device, error)
	Faults(ctx context.Context, deviceID string) ([]models.Fault, error)
	ServiceTypes(ctx context.Context) ([]models.ServiceType, error)
	DurationTypes(ctx context.Context) ([]models.DurationType, error)
}

// Service caches city lists and exposes catalogue lookups.
type Service struct {
	cities  CityReader
	catalog CatalogReader
	logger  *zap.Logger

	summaries *TTLCache[[]models.CitySummary]
	active    *TTLCache[[]models.City]
}

func NewService(cities CityReader, catalog CatalogReader, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cities:    cities,
		catalog:   catalog,
		logger:    logger,
		summaries: NewTTLCache[[]models.CitySummary](ttl),
		active:    NewTTLCache[[]models.City](ttl),
	}
}

// Cities lists service cities ordered by name.
func (s *Service) Cities(ctx context.Context) ([]models.CitySummary, error) {
	list, cached, err := s.summaries.Get(ctx, s.cities.ListSummaries)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	s.logger.Debug("cities listed", zap.Bool("cached", cached), zap.Int("count", len(list)))
	return list, nil
}

// InvalidateCities drops cached city data after an admin change.
func (s *Service) InvalidateCities() {
	s.summaries.Invalidate()
	s.active.Invalidate()
}

// LookupPostcode resolves a raw postcode to the active city that serves it.
func (s *Service) LookupPostcode(ctx context.Context, raw string) (*models.ServiceCity, error) {
	code := wizard.NormalizePostcode(raw)
	if code == "" {
		return nil, ErrNotServiced
	}

	cities, _, err := s.active.Get(ctx, s.cities.ListActive)
	if err != nil {
		return nil, fmt.Errorf("list active cities: %w", err)
	}

	for _, c := range cities {
		if !slices.Contains(c.Pincodes, code) {
			continue
		}
		state, err := s.cities.GetState(ctx, c.StateID)
		if errors.Is(err, cityRepo.ErrNotFound) {
			s.logger.Warn("city has no state", zap.String("cityID", c.ID), zap.String("stateID", c.StateID))
			return nil, ErrNotServiced
		}
		if err != nil {
			return nil, fmt.Errorf("get state %s: %w", c.StateID, err)
		}
		return &models.ServiceCity{
			CityID:    c.ID,
			CityName:  c.Name,
			StateID:   state.ID,
			StateName: state.Name,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		}, nil
	}
	return nil, ErrNotServiced
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.catalog.Categories(ctx)
}

func (s *Service) Brands(ctx context.Context, categoryID string) ([]models.Brand, error) {
	return s.catalog.Brands(ctx, categoryID)
}

func (s *Service) Devices(ctx context.Context, brandID string) ([]models.Device, error) {
	return s.catalog.Devices(ctx, brandID)
}

func (s *Service) Faults(ctx context.Context, deviceID string) ([]models.Fault, error) {
	return s.catalog.Faults(ctx, deviceID)
}

func (s *Service) ServiceTypes(ctx context.Context) ([]models.ServiceType, error) {
	return s.catalog.ServiceTypes(ctx)
}

func (s *Service) DurationTypes(ctx context.Context) ([]models.DurationType, error) {
	return s.catalog.DurationTypes(ctx)
}

// FindDevice resolves a brand's model name to its catalogue entry.
func (s *Service) FindDevice(ctx context.Context, brandID, model string) (*models.Device, error) {
	d, err := s.catalog.FindDevice(ctx, brandID, model)
	if errors.Is(err, catalogRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return d, err
}

// SelectFaults resolves fault ids against a device's active faults, caching
// each fault's current name and price.
func (s *Service) SelectFaults(ctx context.Context, deviceID string, ids []string) ([]models.SelectedFault, error) {
	if len(ids) == 0 {
		return []models.SelectedFault{}, nil
	}
	faults, err := s.catalog.Faults(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("list faults: %w", err)
	}
	byID := make(map[string]models.Fault, len(faults))
	for _, f := range faults {
		byID[f.ID] = f
	}
	out := make([]models.SelectedFault, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("fault %s: %w", id, ErrNotFound)
		}
		out = append(out, models.SelectedFault{ID: f.ID, Name: f.Name, Price: f.Price})
	}
	return out, nil
}

// ServiceTypeByName finds an active service type.
func (s *Service) ServiceTypeByName(ctx context.Context, name string) (*models.ServiceType, error) {
	types, err := s.catalog.ServiceTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list service types: %w", err)
	}
	for i := range types {
		if types[i].Name == name {
			return &types[i], nil
		}
	}
	return nil, fmt.Errorf("service type %q: %w", name, ErrNotFound)
}

// DurationByName finds an active duration option.
func (s *Service) DurationByName(ctx context.Context, name string) (*models.DurationType, error) {
	types, err := s.catalog.DurationTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list duration types: %w", err)
	}
	for i := range types {
		if types[i].Name == name {
			return &types[i], nil
		}
	}
	return nil, fmt.Errorf("duration %q: %w", name, ErrNotFound)
}
