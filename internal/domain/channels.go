package domain

import "strings"

// Channel name prefixes understood by the broker. Private channels require a
// signed subscription proof; presence channels additionally expose the
// member roster to subscribers.
const (
	PrivateChannelPrefix  = "private-"
	PresenceChannelPrefix = "presence-"
)

// Channel naming is a pure function of scope identifiers: the same scope
// always yields the same name and distinct scopes never collide. Both
// publisher and subscriber compute these independently, so the patterns are
// part of the wire contract and must stay stable.

// ThreadChannel is the presence channel carrying messages and receipts for
// one conversation thread of a tenant.
func ThreadChannel(tenantID, threadKey string) string {
	return PresenceChannelPrefix + tenantID + ".thread." + threadKey
}

// ScheduledChannel is the private channel carrying scheduled-message updates
// for one sender of a tenant.
func ScheduledChannel(tenantID, senderID string) string {
	return PrivateChannelPrefix + "scheduled." + tenantID + "." + senderID
}

// TenantNotificationsChannel is the private channel carrying payment and
// generic notifications for a tenant.
func TenantNotificationsChannel(tenantID string) string {
	return PrivateChannelPrefix + "tenant." + tenantID + ".notifications"
}

// TenantTicketsChannel is the private channel carrying support-ticket
// lifecycle events for a tenant.
func TenantTicketsChannel(tenantID string) string {
	return PrivateChannelPrefix + "tenant." + tenantID + ".tickets"
}

// IsPresenceChannel reports whether the channel name has the presence shape.
func IsPresenceChannel(name string) bool {
	return strings.HasPrefix(name, PresenceChannelPrefix)
}

// IsPrivateChannel reports whether the channel name has the private shape.
func IsPrivateChannel(name string) bool {
	return strings.HasPrefix(name, PrivateChannelPrefix)
}
