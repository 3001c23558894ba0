package domain

import "errors"

var (
	// ErrBroadcastingDisabled means the broker config is absent or has
	// enabled=false. All gateway operations become no-ops.
	ErrBroadcastingDisabled = errors.New("broadcasting is disabled")
	// ErrMissingPresenceData means a presence channel was requested without
	// a presence payload. The subscription must be rejected.
	ErrMissingPresenceData = errors.New("presence channel requires presence data")
	// ErrSettingsNotFound means no broker settings row exists for the
	// deployment's tenant.
	ErrSettingsNotFound = errors.New("broker settings not found")
)
