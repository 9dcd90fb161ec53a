// Package decode parses captured frames through layers 2-4 (Ethernet,
// IPv4/IPv6, TCP/UDP). Every function here is pure: given a byte view it
// returns a typed header plus the remaining payload view, or a DecodeError.
// Nothing in this package allocates beyond the header values it returns.
package decode

import (
	"fmt"

	"github.com/mel2oo/netsniff/memview"
	"github.com/pkg/errors"
)

// DecodeError reports that a frame could not be parsed at some layer. It is
// always local to one frame: callers drop the frame and continue.
type DecodeError struct {
	msg string
	err error
}

func newDecodeError(format string, args ...interface{}) *DecodeError {
	return &DecodeError{msg: fmt.Sprintf(format, args...)}
}

func wrapDecodeError(err error, format string, args ...interface{}) *DecodeError {
	return &DecodeError{msg: fmt.Sprintf(format, args...), err: err}
}

func (e *DecodeError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *DecodeError) Unwrap() error {
	return e.err
}

var errShortBuffer = errors.New("buffer too short to decode")

// Protocol identifies the layer-4 (or layer-3 next-header) protocol carried
// by a packet.
type Protocol int

const (
	ProtocolUnknown Protocol = iota
	ProtocolTCP
	ProtocolUDP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	default:
		return "Unknown"
	}
}

// requireLen returns a DecodeError naming layer if view does not hold at
// least n bytes.
func requireLen(layer string, view memview.MemView, n int64) error {
	if view.Len() < n {
		return newDecodeError("%s: need %d bytes, have %d", layer, n, view.Len())
	}
	return nil
}
