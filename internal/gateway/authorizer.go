package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
)

// AuthRequest is a channel subscription request relayed by the broker SDK.
type AuthRequest struct {
	SocketID    string         `json:"socketId"`
	ChannelName string         `json:"channelName"`
	ChannelData map[string]any `json:"channelData,omitempty"`
}

// AuthResponse is the exact wire payload relayed back to the subscribing
// client. ChannelData is the string form of the presence payload, present
// only for presence channels.
type AuthResponse struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}

// Authorizer proves to a subscribing client that it may join a private or
// presence channel, by signing the socket+channel pair with the broker
// secret. Eligibility for the channel is the caller's responsibility; this
// component only proves possession of the shared secret.
type Authorizer struct {
	resolver *Resolver
}

func NewAuthorizer(resolver *Resolver) *Authorizer {
	return &Authorizer{resolver: resolver}
}

// Authorize computes the signed subscription proof for the request. The
// string-to-sign must match byte-for-byte what the broker edge reconstructs:
// "<socketId>:<channel>" for private channels,
// "<socketId>:<channel>:<channelDataJSON>" for presence channels.
func (a *Authorizer) Authorize(ctx context.Context, req AuthRequest) (*AuthResponse, error) {
	client := a.resolver.Resolve(ctx)
	if client == nil {
		return nil, domain.ErrBroadcastingDisabled
	}

	// Config sources are not whitespace-clean; a stray trailing newline in
	// the secret silently produces a signature mismatch.
	key := strings.TrimSpace(client.Config.Key)
	secret := strings.TrimSpace(client.Config.Secret)

	stringToSign := req.SocketID + ":" + req.ChannelName

	var channelData string
	if domain.IsPresenceChannel(req.ChannelName) {
		if len(req.ChannelData) == 0 {
			return nil, domain.ErrMissingPresenceData
		}

		encoded, err := json.Marshal(req.ChannelData)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to serialize presence data",
				"channel", req.ChannelName, "socket_id", req.SocketID, "error", err)
			return nil, fmt.Errorf("serialize presence data: %w", err)
		}

		// channel_data goes out serialized exactly once: the string must
		// parse back to JSON, never a double-encoded blob.
		var decoded any
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			slog.ErrorContext(ctx, "Presence data failed round-trip check",
				"channel", req.ChannelName, "socket_id", req.SocketID, "error", err)
			return nil, fmt.Errorf("presence data round-trip: %w", err)
		}

		channelData = string(encoded)
		stringToSign += ":" + channelData
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(stringToSign))
	signature := hex.EncodeToString(mac.Sum(nil))

	return &AuthResponse{
		Auth:        key + ":" + signature,
		ChannelData: channelData,
	}, nil
}
