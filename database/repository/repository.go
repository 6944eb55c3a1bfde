package repository

import (
	"context"

	agentRepo "repairhub/database/repository/agent"
	bookingRepo "repairhub/database/repository/bookingrepo"
	catalogRepo "repairhub/database/repository/catalog"
	cityRepo "repairhub/database/repository/city"
	notificationRepo "repairhub/database/repository/notification"
)

// Re-export the AgentRepository interfaces and constructors.
type AgentRepository = agentRepo.AgentRepository

type ApplicationRepository = agentRepo.ApplicationRepository

var NewMongoAgentRepo = agentRepo.NewMongoAgentRepo

var NewMongoApplicationRepo = agentRepo.NewMongoApplicationRepo

// Re-export the CityRepository interface and constructor.
type CityRepository = cityRepo.CityRepository

var NewMongoCityRepo = cityRepo.NewMongoCityRepo

// Re-export the CatalogRepository interface and constructor.
type CatalogRepository = catalogRepo.CatalogRepository

var NewMongoCatalogRepo = catalogRepo.NewMongoCatalogRepo

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// Re-export the NotificationRepository interface and constructor.
type NotificationRepository = notificationRepo.NotificationRepository

var NewMongoNotificationRepo = notificationRepo.NewMongoNotificationRepo

// Indexer is implemented by repositories that manage their own indexes.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}
