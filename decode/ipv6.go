package decode

import (
	"fmt"

	"github.com/mel2oo/netsniff/memview"
)

const (
	ipv6HeaderLen_bytes = 40
	ipv6ProtoTCP        = 0x06
	ipv6ProtoUDP        = 0x11
)

// IPv6Header is the decoded form of a fixed 40-byte IPv6 header. Extension
// headers are not walked; Protocol reflects the next-header field directly.
type IPv6Header struct {
	SrcAddr  string
	DstAddr  string
	Protocol Protocol
}

// DecodeIPv6 parses the fixed 40-byte IPv6 header from view.
func DecodeIPv6(view memview.MemView) (IPv6Header, memview.MemView, error) {
	if err := requireLen("ipv6", view, ipv6HeaderLen_bytes); err != nil {
		return IPv6Header{}, memview.MemView{}, err
	}

	hdr := IPv6Header{
		SrcAddr: ipv6String(view, 8),
		DstAddr: ipv6String(view, 24),
	}

	switch view.GetByte(6) {
	case ipv6ProtoTCP:
		hdr.Protocol = ProtocolTCP
	case ipv6ProtoUDP:
		hdr.Protocol = ProtocolUDP
	default:
		hdr.Protocol = ProtocolUnknown
	}

	return hdr, view.SubView(ipv6HeaderLen_bytes, view.Len()), nil
}

// ipv6String renders the 16 bytes starting at offset as lowercase hex with
// no separators (no colon grouping, matching the source's rendering rule).
func ipv6String(view memview.MemView, offset int64) string {
	buf := make([]byte, 16)
	for i := int64(0); i < 16; i++ {
		buf[i] = view.GetByte(offset + i)
	}
	return fmt.Sprintf("%x", buf)
}
