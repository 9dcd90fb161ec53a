// Package capture owns the platform capture handle: it lists interfaces,
// opens one in promiscuous mode, and drains raw frames onto a bounded
// hand-off channel, honoring the shared lifecycle state.
package capture

import (
	"net"
	"time"

	"github.com/google/gopacket/pcap"
	"github.com/pkg/errors"
)

// errTimeout is returned by NextPacket when the read timeout set on the
// handle (used so the capture stage can periodically re-check the
// lifecycle state) expires without a packet arriving. Callers should treat
// it as "no packet this cycle", not a capture failure.
var errTimeout = errors.New("capture: read timeout")

// ErrTimeout reports whether err is the read-timeout sentinel.
func ErrTimeout(err error) bool {
	return err == errTimeout
}

// The same default as tcpdump; large enough that we never truncate an
// Ethernet/IPv4/IPv6/TCP/UDP header.
const defaultSnapLen = 262144

// Device describes one host capture interface.
type Device struct {
	Name        string
	Description string
	// Addresses holds the device's own addresses rendered in normal human
	// notation (dotted-decimal or colon-hex), for display in the report
	// heading.
	Addresses []string
	// IPs holds the same addresses as net.IP, so a caller can render them
	// with the decoder's own address rendering rule (needed to compare
	// against a decoded packet's source/destination for direction
	// determination; normal notation and the decoder's rule disagree for
	// IPv6).
	IPs []net.IP
}

// ListDevices returns every capture interface visible to the platform
// library.
func ListDevices() ([]Device, error) {
	ifaces, err := pcap.FindAllDevs()
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate capture interfaces")
	}

	devices := make([]Device, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addresses))
		ips := make([]net.IP, 0, len(iface.Addresses))
		for _, a := range iface.Addresses {
			if a.IP != nil {
				addrs = append(addrs, a.IP.String())
				ips = append(ips, a.IP)
			}
		}
		devices = append(devices, Device{
			Name:        iface.Name,
			Description: iface.Description,
			Addresses:   addrs,
			IPs:         ips,
		})
	}
	return devices, nil
}

// Handle is an open capture handle. NextPacket blocks until a frame is
// available, the read timeout expires (reported as the ErrTimeout
// sentinel), the handle is closed (io.EOF), or another capture error
// occurs.
type Handle interface {
	NextPacket() (data []byte, ts Timestamp, err error)
	Close()
}

// Timestamp is the platform capture timestamp as a (seconds, microseconds)
// pair, kept as plain integers so it crosses goroutine boundaries without
// referencing a platform-specific type.
type Timestamp struct {
	Seconds      int64
	Microseconds int64
}

// FromTime converts a time.Time, as returned by the platform capture
// library, into a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp{
		Seconds:      t.Unix(),
		Microseconds: int64(t.Nanosecond() / 1000),
	}
}

// UnixNano returns the timestamp as nanoseconds since the Unix epoch, the
// unit the flow table orders on.
func (ts Timestamp) UnixNano() int64 {
	return ts.Seconds*int64(time.Second) + ts.Microseconds*int64(time.Microsecond)
}

// pcapHandle adapts *pcap.Handle to Handle.
type pcapHandle struct {
	handle *pcap.Handle
}

// Open activates device in promiscuous mode and returns a live Handle.
func Open(device string) (Handle, error) {
	inactive, err := pcap.NewInactiveHandle(device)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create capture handle for %q", device)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(defaultSnapLen); err != nil {
		return nil, errors.Wrap(err, "failed to set snap length")
	}
	if err := inactive.SetPromisc(true); err != nil {
		return nil, errors.Wrap(err, "failed to enable promiscuous mode")
	}
	if err := inactive.SetTimeout(time.Second); err != nil {
		return nil, errors.Wrap(err, "failed to set read timeout")
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to activate capture on %q", device)
	}

	return &pcapHandle{handle: handle}, nil
}

// OpenOffline replays a previously captured pcap file as a Handle, useful
// for tests and offline analysis.
func OpenOffline(path string) (Handle, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open pcap file %q", path)
	}
	return &pcapHandle{handle: handle}, nil
}

func (h *pcapHandle) NextPacket() ([]byte, Timestamp, error) {
	data, ci, err := h.handle.ReadPacketData()
	if err != nil {
		if err == pcap.NextErrorTimeoutExpired {
			return nil, Timestamp{}, errTimeout
		}
		return nil, Timestamp{}, err
	}
	return data, FromTime(ci.Timestamp), nil
}

func (h *pcapHandle) Close() {
	h.handle.Close()
}
