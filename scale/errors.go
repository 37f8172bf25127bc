package scale

import "errors"

// ErrTransport is the parent of every transport failure. Use errors.Is to test for it.
var ErrTransport = errors.New("scale: transport failure")

// Transport failures abort a handshake and roll the session back.
var (
	// ErrLinkFailed indicates that the link layer connection could not be established.
	ErrLinkFailed = transportError("link failed")

	// ErrServiceNotFound indicates that the expected GATT service is missing.
	ErrServiceNotFound = transportError("service not found")

	// ErrCharacteristicNotFound indicates that an expected characteristic is missing.
	ErrCharacteristicNotFound = transportError("characteristic not found")

	// ErrDescriptorNotFound indicates that the notification enable descriptor is missing.
	ErrDescriptorNotFound = transportError("descriptor not found")

	// ErrNotifyUnsupported indicates that a characteristic cannot notify.
	ErrNotifyUnsupported = transportError("notifications not supported")

	// ErrWriteFailed indicates that a characteristic or descriptor write failed.
	ErrWriteFailed = transportError("write failed")
)

// Frame errors are reported as Events. They discard the offending frame only.
var (
	// ErrChecksumMismatch indicates that a frame failed checksum validation.
	ErrChecksumMismatch = errors.New("scale: checksum mismatch")

	// ErrMalformedFrame indicates that a frame has an invalid length or header.
	ErrMalformedFrame = errors.New("scale: malformed frame")

	// ErrUnknownFrame indicates a well formed frame of a type the decoder doesn't handle.
	ErrUnknownFrame = errors.New("scale: unknown frame")
)

var (
	// ErrNotConnected indicates that an operation requires the connected state.
	ErrNotConnected = errors.New("scale: not connected")

	// ErrLinkLost indicates that the transport dropped an established link.
	ErrLinkLost = errors.New("scale: link lost")

	// ErrReconnectExhausted indicates that the configured reconnect attempts ran out.
	ErrReconnectExhausted = errors.New("scale: reconnect attempts exhausted")

	// ErrInvalidTransition is returned when a state transition is not allowed.
	ErrInvalidTransition = errors.New("scale: invalid state transition")

	// ErrConfigNil indicates that a nil Config was provided.
	ErrConfigNil = errors.New("scale: config is nil")
)

type wrappedError struct {
	msg string
}

func (e *wrappedError) Error() string        { return "scale: " + e.msg }
func (e *wrappedError) Is(target error) bool { return target == ErrTransport }

func transportError(msg string) error {
	return &wrappedError{msg: msg}
}
