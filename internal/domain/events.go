package domain

import "time"

// Event names used by subscribers to dispatch handlers. Part of the wire
// contract alongside the channel patterns in channels.go.
const (
	EventThreadMessage          = "tenant-user-message"
	EventThreadMessageRead      = "tenant-user-message-read"
	EventThreadMessageDelivered = "tenant-user-message-delivered"
	EventScheduledMessageUpdate = "scheduled-message-update"
	EventPaymentNotification    = "payment-notification"
	EventTicketCreated          = "ticket-created"
	EventTicketUpdated          = "ticket-updated"
	EventTicketCommentAdded     = "ticket-comment-added"
)

// ThreadMessage is broadcast when a chat message lands in a thread.
type ThreadMessage struct {
	TenantID  string    `json:"tenantId"`
	ThreadKey string    `json:"threadKey"`
	MessageID string    `json:"messageId"`
	SenderID  string    `json:"senderId"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sentAt"`
}

// ThreadReadReceipt is broadcast when a recipient reads a thread message.
type ThreadReadReceipt struct {
	TenantID  string    `json:"tenantId"`
	ThreadKey string    `json:"threadKey"`
	MessageID string    `json:"messageId"`
	ReaderID  string    `json:"readerId"`
	ReadAt    time.Time `json:"readAt"`
}

// ThreadDeliveryReceipt is broadcast when a thread message reaches a
// recipient's device.
type ThreadDeliveryReceipt struct {
	TenantID    string    `json:"tenantId"`
	ThreadKey   string    `json:"threadKey"`
	MessageID   string    `json:"messageId"`
	RecipientID string    `json:"recipientId"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// ScheduledMessageUpdate is broadcast when a scheduled message changes state
// (scheduled, sent, cancelled, failed).
type ScheduledMessageUpdate struct {
	TenantID     string    `json:"tenantId"`
	SenderID     string    `json:"senderId"`
	ScheduledID  string    `json:"scheduledId"`
	Status       string    `json:"status"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

// PaymentNotification is broadcast when a payment settles or fails.
type PaymentNotification struct {
	TenantID  string `json:"tenantId"`
	PaymentID string `json:"paymentId"`
	OrderCode string `json:"orderCode"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	State     string `json:"state"`
}

// TicketCreated is broadcast when a support ticket is opened.
type TicketCreated struct {
	TenantID  string `json:"tenantId"`
	TicketID  string `json:"ticketId"`
	Subject   string `json:"subject"`
	Priority  string `json:"priority"`
	CreatedBy string `json:"createdBy"`
}

// TicketUpdated is broadcast when a support ticket changes status or
// assignment.
type TicketUpdated struct {
	TenantID  string `json:"tenantId"`
	TicketID  string `json:"ticketId"`
	Status    string `json:"status"`
	UpdatedBy string `json:"updatedBy"`
}

// TicketCommentAdded is broadcast when a comment lands on a support ticket.
type TicketCommentAdded struct {
	TenantID  string `json:"tenantId"`
	TicketID  string `json:"ticketId"`
	CommentID string `json:"commentId"`
	AuthorID  string `json:"authorId"`
}

// TenantNotification carries an arbitrary caller-named event onto a tenant's
// notifications channel.
type TenantNotification struct {
	TenantID string `json:"tenantId"`
	Event    string `json:"event"`
	Payload  any    `json:"payload"`
}
