package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"repairhub/database/repository"
	"repairhub/models"
	"repairhub/services/wizard"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrAlreadyReviewed = errors.New("application has already been reviewed")
)

// CacheInvalidator drops cached city listings.
type CacheInvalidator interface {
	InvalidateCities()
}

// DefaultAdminService is the production implementation.
type DefaultAdminService struct {
	Cities       repository.CityRepository
	Catalog      repository.CatalogRepository
	Agents       repository.AgentRepository
	Applications repository.ApplicationRepository
	Cache        CacheInvalidator
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewDefaultAdminService(
	cities repository.CityRepository,
	catalog repository.CatalogRepository,
	agents repository.AgentRepository,
	applications repository.ApplicationRepository,
	cache CacheInvalidator,
	logger *zap.Logger,
) *DefaultAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAdminService{
		Cities:       cities,
		Catalog:      catalog,
		Agents:       agents,
		Applications: applications,
		Cache:        cache,
		Logger:       logger,
		Now:          time.Now,
	}
}

// NormalizePincodes normalizes, de-duplicates and drops empty codes,
// keeping first-seen order.
func NormalizePincodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = wizard.NormalizePostcode(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (s *DefaultAdminService) invalidate() {
	if s.Cache != nil {
		s.Cache.InvalidateCities()
	}
}

func (s *DefaultAdminService) CreateCity(ctx context.Context, in CityInput) (*models.City, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.StateID == "" || in.Latitude == nil || in.Longitude == nil {
		return nil, fmt.Errorf("%w: name, state and coordinates are required", ErrInvalidInput)
	}
	if _, err := s.Cities.GetState(ctx, in.StateID); err != nil {
		return nil, fmt.Errorf("state %s: %w", in.StateID, err)
	}
	now := s.Now()
	city := &models.City{
		ID:        uuid.NewString(),
		Name:      name,
		StateID:   in.StateID,
		Pincodes:  NormalizePincodes(in.Pincodes),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Cities.Create(ctx, city); err != nil {
		return nil, err
	}
	s.invalidate()
	s.Logger.Info("city created", zap.String("cityID", city.ID), zap.String("name", city.Name))
	return city, nil
}

func (s *DefaultAdminService) UpdatePincodes(ctx context.Context, cityID string, pincodes []string) ([]string, error) {
	codes := NormalizePincodes(pincodes)
	if err := s.Cities.UpdatePincodes(ctx, cityID, codes); err != nil {
		return nil, err
	}
	s.invalidate()
	return codes, nil
}

func (s *DefaultAdminService) SetCityActive(ctx context.Context, cityID string, active bool) error {
	if err := s.Cities.SetActive(ctx, cityID, active); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *DefaultAdminService) DeleteCity(ctx context.Context, cityID string) error {
	if err := s.Cities.Delete(ctx, cityID); err != nil {
		return err
	}
	s.invalidate()
	s.Logger.Info("city deleted", zap.String("cityID", cityID))
	return nil
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return name, nil
}

func (s *DefaultAdminService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	c := &models.Category{ID: uuid.NewString(), Name: name}
	if err := s.Catalog.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DefaultAdminService) DeleteCategory(ctx context.Context, id string) error {
	return s.Catalog.DeleteCategory(ctx, id)
}

func (s *DefaultAdminService) CreateBrand(ctx context.Context, categoryID, name string) (*models.Brand, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	if categoryID == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	b := &models.Brand{ID: uuid.NewString(), Name: name, CategoryID: categoryID}
	if err := s.Catalog.CreateBrand(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DefaultAdminService) DeleteBrand(ctx context.Context, id string) error {
	return s.Catalog.DeleteBrand(ctx, id)
}

func (s *DefaultAdminService) CreateDevice(ctx context.Context, categoryID, brandID, model string) (*models.Device, error) {
	model, err := requireName(model)
	if err != nil {
		return nil, err
	}
	if brandID == "" {
		return nil, fmt.Errorf("%w: brand is required", ErrInvalidInput)
	}
	d := &models.Device{ID: uuid.NewString(), Model: model, BrandID: brandID, CategoryID: categoryID}
	if err := s.Catalog.CreateDevice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DefaultAdminService) DeleteDevice(ctx context.Context, id string) error {
	return s.Catalog.DeleteDevice(ctx, id)
}

func (s *DefaultAdminService) CreateFault(ctx context.Context, in FaultInput) (*models.Fault, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.DeviceID == "" || in.Price < 0 {
		return nil, fmt.Errorf("%w: device and a non-negative price are required", ErrInvalidInput)
	}
	f := &models.Fault{
		ID:          uuid.NewString(),
		DeviceID:    in.DeviceID,
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		IsActive:    true,
	}
	if err := s.Catalog.CreateFault(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *DefaultAdminService) DeactivateFault(ctx context.Context, id string) error {
	return s.Catalog.DeactivateFault(ctx, id)
}

func (s *DefaultAdminService) UpdateDurationCharge(ctx context.Context, id string, extraCharge float64) error {
	if extraCharge < 0 {
		return fmt.Errorf("%w: extra charge cannot be negative", ErrInvalidInput)
	}
	return s.Catalog.UpdateDurationCharge(ctx, id, extraCharge)
}

func (s *DefaultAdminService) PendingApplications(ctx context.Context) ([]models.AgentApplication, error) {
	return s.Applications.ListByStatus(ctx, models.AgentStatusPending)
}

// ApproveApplication turns a pending application into an approved, offline agent.
func (s *DefaultAdminService) ApproveApplication(ctx context.Context, id, notes string) (*models.Agent, error) {
	app, err := s.Applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.AgentStatusPending {
		return nil, ErrAlreadyReviewed
	}

	now := s.Now()
	agent := &models.Agent{
		ID:        uuid.NewString(),
		UserID:    app.UserID,
		Name:      app.Name,
		ShopName:  app.ShopName,
		Phone:     app.Phone,
		Email:     app.Email,
		Address:   app.Address,
		CityID:    app.CityID,
		StateID:   app.StateID,
		Latitude:  app.Latitude,
		Longitude: app.Longitude,
		Status:    models.AgentStatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Agents.Upsert(ctx, agent); err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	if err := s.Applications.SetStatus(ctx, id, models.AgentStatusApproved, notes); err != nil {
		return nil, fmt.Errorf("mark application approved: %w", err)
	}
	s.Logger.Info("agent application approved", zap.String("applicationID", id), zap.String("agentID", agent.ID))
	return agent, nil
}

func (s *DefaultAdminService) RejectApplication(ctx context.Context, id, notes string) error {
	app, err := s.Applications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if app.Status != models.AgentStatusPending {
		return ErrAlreadyReviewed
	}
	if err := s.Applications.SetStatus(ctx, id, models.AgentStatusRejected, notes); err != nil {
		return err
	}
	s.Logger.Info("agent application rejected", zap.String("applicationID", id))
	return nil
}

func (s *DefaultAdminService) SetAgentOnline(ctx context.Context, agentID string, online bool) error {
	return s.Agents.SetOnline(ctx, agentID, online)
}
