package framing

import "errors"

var (
	// ErrNeedMoreData means the buffered bytes do not yet hold a complete frame.
	ErrNeedMoreData = errors.New("need more data")
	// ErrProtocolViolation is wrapped by every error that makes the stream untrustworthy.
	ErrProtocolViolation = errors.New("frame protocol violation")
	ErrZeroLengthFrame   = errors.New("zero length frame")
	ErrFrameTooLarge     = errors.New("frame too large")
)
