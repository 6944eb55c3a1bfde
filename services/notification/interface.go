package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"repairhub/database/repository"
	notificationRepo "repairhub/database/repository/notification"
	"repairhub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultListLimit is how many notifications the bell menu shows.
const DefaultListLimit = 7

// NotificationService stores and lists in-app notifications.
type NotificationService interface {
	List(ctx context.Context, userID string, limit int) (*Inbox, error)
	MarkRead(ctx context.Context, userID, id string) error
	NotifyBookingCreated(ctx context.Context, p models.BookingCreatedPayload) error
}

// Inbox is a user's newest notifications plus how many of them are unread.
type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// AgentLookup resolves an agent to the user account that receives its notifications.
type AgentLookup interface {
	GetByID(ctx context.Context, id string) (*models.Agent, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	repo   repository.NotificationRepository
	agents AgentLookup
	logger *zap.Logger
	now    func() time.Time
}

func NewDefaultNotificationService(repo repository.NotificationRepository, agents AgentLookup, logger *zap.Logger) (*DefaultNotificationService, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification service initialization error: repository is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{repo: repo, agents: agents, logger: logger, now: time.Now}, nil
}

func (s *DefaultNotificationService) List(ctx context.Context, userID string, limit int) (*Inbox, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	list, err := s.repo.ListByUser(ctx, userID, int64(limit))
	if err != nil {
		return nil, err
	}
	inbox := &Inbox{Notifications: list}
	for _, n := range list {
		if !n.IsRead {
			inbox.UnreadCount++
		}
	}
	return inbox, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return notificationRepo.ErrNotFound
	}
	return s.repo.MarkRead(ctx, userID, id)
}

// NotifyBookingCreated tells the customer, and the chosen agent if any, about
// a new booking. A missing agent does not fail the customer notification.
func (s *DefaultNotificationService) NotifyBookingCreated(ctx context.Context, p models.BookingCreatedPayload) error {
	if p.UserID == "" || p.BookingID == "" {
		return errors.New("booking notification needs a user and a booking id")
	}

	customer := s.build(p.BookingID, p.UserID, "Booking received",
		fmt.Sprintf("Your repair booking %s has been received. Total: %.2f", p.BookingID, p.Total))
	if err := s.repo.Create(ctx, customer); err != nil {
		return fmt.Errorf("notify customer: %w", err)
	}

	if p.AgentID == "" || s.agents == nil {
		return nil
	}
	agent, err := s.agents.GetByID(ctx, p.AgentID)
	if err != nil {
		s.logger.Warn("booking agent not found", zap.String("agentID", p.AgentID), zap.Error(err))
		return nil
	}
	if strings.TrimSpace(agent.UserID) == "" {
		return nil
	}
	msg := s.build(p.BookingID, agent.UserID, "New booking", fmt.Sprintf("You have a new repair booking: %s", p.BookingID))
	if err := s.repo.Create(ctx, msg); err != nil {
		return fmt.Errorf("notify agent: %w", err)
	}
	return nil
}

// bookingNotificationID is stable per booking and recipient, so a retried
// task finds the notification it already wrote.
func bookingNotificationID(bookingID, userID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(bookingID+"|"+userID)).String()
}

func (s *DefaultNotificationService) build(bookingID, userID, title, message string) *models.Notification {
	return &models.Notification{
		ID:        bookingNotificationID(bookingID, userID),
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	}
}
