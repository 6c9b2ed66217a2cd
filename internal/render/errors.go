package render

import (
	"errors"

	"miirender/internal/mii"
)

// ProtocolMessage turns a request failure into the text of an error line.
func ProtocolMessage(err error) string {
	var ve *mii.VerifyError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, mii.ErrChecksumInvalid):
		return "data CRC16 verification failed"
	case errors.Is(err, mii.ErrFormatUnrecognized):
		return "unknown data type (" + err.Error() + ")"
	case errors.Is(err, ErrResourceUnavailable):
		return "model initialization failed: " + err.Error()
	default:
		return err.Error()
	}
}
