package decode

import (
	"fmt"

	"github.com/mel2oo/netsniff/memview"
)

const (
	ipv4ProtoTCP = 0x06
	ipv4ProtoUDP = 0x11
)

// IPv4Header is the decoded form of an IPv4 header, including any options
// (accounted for via IHL but not individually parsed).
type IPv4Header struct {
	SrcAddr  string
	DstAddr  string
	Protocol Protocol
}

// DecodeIPv4 parses view as an IPv4 header. The header length is read from
// the IHL nibble; the returned payload view starts right after it.
func DecodeIPv4(view memview.MemView) (IPv4Header, memview.MemView, error) {
	if err := requireLen("ipv4", view, 20); err != nil {
		return IPv4Header{}, memview.MemView{}, err
	}

	ihl := view.GetByte(0) & 0x0F
	headerLen := int64(ihl) * 4
	if err := requireLen("ipv4 (IHL)", view, headerLen); err != nil {
		return IPv4Header{}, memview.MemView{}, err
	}

	hdr := IPv4Header{
		SrcAddr: ipv4String(view, 12),
		DstAddr: ipv4String(view, 16),
	}

	switch view.GetByte(9) {
	case ipv4ProtoTCP:
		hdr.Protocol = ProtocolTCP
	case ipv4ProtoUDP:
		hdr.Protocol = ProtocolUDP
	default:
		return IPv4Header{}, view, newDecodeError(
			"unsupported IPv4 next-protocol 0x%02x", view.GetByte(9))
	}

	return hdr, view.SubView(headerLen, view.Len()), nil
}

func ipv4String(view memview.MemView, offset int64) string {
	return fmt.Sprintf("%d.%d.%d.%d",
		view.GetByte(offset), view.GetByte(offset+1), view.GetByte(offset+2), view.GetByte(offset+3))
}
