package errors

import "fmt"

// Broker and envelope level failures, raised before any handler runs.
var (
	ErrEmptyMessage      = fmt.Errorf("message.value is empty")
	ErrMalformedEnvelope = fmt.Errorf("malformed event envelope")
)

// Handler failures. The wording is relied upon by alerting, keep it stable.
var (
	ErrInvalidEventData  = fmt.Errorf("Invalid event data")
	ErrMessageNotStored  = fmt.Errorf("Failed to store a message to database")
	ErrChannelNotStored  = fmt.Errorf("Failed to store a channel to database")
	ErrRequesterNotAdded = fmt.Errorf("Failed to add requester")
)

var (
	ErrChannelNotFound      = fmt.Errorf("channel not found")
	ErrSinkFull             = fmt.Errorf("sink buffer is full")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrUnknownStoreDriver   = fmt.Errorf("unknown store driver")
	ErrUnknownFailurePolicy = fmt.Errorf("unknown failure policy")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
)

// InvalidEventData reports a payload that is missing or does not match its declared type.
// raw is embedded verbatim for diagnostics.
func InvalidEventData(raw []byte) error {
	data := string(raw)
	if len(raw) == 0 {
		data = "undefined"
	}
	return fmt.Errorf("%w: %s", ErrInvalidEventData, data)
}

// RequesterNotAdded is returned when the creator of a channel could not join it.
func RequesterNotAdded(requesterID, channelID string) error {
	return fmt.Errorf("%w %s to channel %s", ErrRequesterNotAdded, requesterID, channelID)
}
