package decode

import (
	"fmt"

	"github.com/mel2oo/netsniff/memview"
)

const ethernetHeaderLen_bytes = 14

// EtherType identifies the payload protocol carried by an Ethernet frame.
type EtherType int

const (
	EtherTypeUnknown EtherType = iota
	EtherTypeIPv4
	EtherTypeIPv6
	EtherTypeARP
)

const (
	etherTypeIPv4 = 0x0800
	etherTypeARP  = 0x0806
	etherTypeIPv6 = 0x86DD
)

// EthernetHeader is the decoded form of a 14-byte Ethernet II header.
type EthernetHeader struct {
	DstMAC string
	SrcMAC string
	Type   EtherType
}

// DecodeEthernet parses the first 14 bytes of view as an Ethernet II header
// and returns the remaining payload view.
func DecodeEthernet(view memview.MemView) (EthernetHeader, memview.MemView, error) {
	if err := requireLen("ethernet", view, ethernetHeaderLen_bytes); err != nil {
		return EthernetHeader{}, memview.MemView{}, err
	}

	hdr := EthernetHeader{
		DstMAC: macString(view, 0),
		SrcMAC: macString(view, 6),
	}

	word := view.GetUint16(12)
	switch word {
	case etherTypeIPv4:
		hdr.Type = EtherTypeIPv4
	case etherTypeARP:
		hdr.Type = EtherTypeARP
	case etherTypeIPv6:
		hdr.Type = EtherTypeIPv6
	default:
		return EthernetHeader{}, memview.MemView{}, newDecodeError(
			"Cannot get the correct ether type, received 0x%04x", word)
	}

	return hdr, view.SubView(ethernetHeaderLen_bytes, view.Len()), nil
}

// macString renders the 6 bytes starting at offset as lowercase hex with no
// separators, e.g. "50eb71238e67".
func macString(view memview.MemView, offset int64) string {
	buf := make([]byte, 6)
	for i := int64(0); i < 6; i++ {
		buf[i] = view.GetByte(offset + i)
	}
	return fmt.Sprintf("%02x%02x%02x%02x%02x%02x", buf[0], buf[1], buf[2], buf[3], buf[4], buf[5])
}
