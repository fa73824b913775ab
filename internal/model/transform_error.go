package model

import "errors"

// ErrMalformedEvent is returned for records that cannot be decoded as a RawEvent.
var ErrMalformedEvent = errors.New("malformed event")

// TransformError records a transform failure for a raw event.
type TransformError struct {
	Type       EventTag `json:"type"`
	Timestamp  string   `json:"timestamp"`
	FA2Address string   `json:"fa2_address,omitempty"`
	TokenID    string   `json:"token_id,omitempty"`
	Error      string   `json:"error"`
}

// NewTransformError builds a TransformError from whatever identifiers the event carries.
func NewTransformError(event RawEvent, err error) TransformError {
	out := TransformError{
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Error:     err.Error(),
	}
	if event.Token != nil {
		out.FA2Address = event.Token.FA2Address
		out.TokenID = event.Token.TokenID
	}
	return out
}
