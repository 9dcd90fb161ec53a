package decode

import "github.com/mel2oo/netsniff/memview"

// The spec fixes a 20-byte TCP header; options are not parsed. Their bytes
// are counted as part of the reported payload length, which is acceptable
// because the aggregator only consumes the byte count, not the payload.
const tcpHeaderLen_bytes = 20

// TCPHeader is the decoded form of the fixed portion of a TCP header.
type TCPHeader struct {
	SrcPort uint16
	DstPort uint16
}

// DecodeTCP parses the source/destination ports from view and returns the
// payload starting at the fixed 20-byte offset.
func DecodeTCP(view memview.MemView) (TCPHeader, memview.MemView, error) {
	if err := requireLen("tcp", view, tcpHeaderLen_bytes); err != nil {
		return TCPHeader{}, memview.MemView{}, err
	}

	hdr := TCPHeader{
		SrcPort: view.GetUint16(0),
		DstPort: view.GetUint16(2),
	}

	return hdr, view.SubView(tcpHeaderLen_bytes, view.Len()), nil
}
