package handlers

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Catalog       *CatalogHandler
	Agents        *AgentHandler
	Booking       *BookingHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
}
