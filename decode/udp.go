package decode

import "github.com/mel2oo/netsniff/memview"

const udpHeaderLen_bytes = 8

// UDPHeader is the decoded form of a UDP header.
type UDPHeader struct {
	SrcPort uint16
	DstPort uint16
}

// DecodeUDP parses the source/destination ports from view and returns the
// payload starting at byte 8.
func DecodeUDP(view memview.MemView) (UDPHeader, memview.MemView, error) {
	if err := requireLen("udp", view, udpHeaderLen_bytes); err != nil {
		return UDPHeader{}, memview.MemView{}, err
	}

	hdr := UDPHeader{
		SrcPort: view.GetUint16(0),
		DstPort: view.GetUint16(2),
	}

	return hdr, view.SubView(udpHeaderLen_bytes, view.Len()), nil
}
