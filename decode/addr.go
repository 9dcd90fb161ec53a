package decode

import (
	"fmt"
	"net"
)

// RenderAddr formats ip the same way the IPv4/IPv6 decoders render a
// packet's source/destination address, so an interface's own address can be
// compared against a decoded packet's address for direction determination.
// Normal net.IP notation (dotted-decimal for v4, colon-grouped hex for v6)
// does not match the decoder's IPv6 rendering rule, which concatenates all
// 16 bytes with no separators.
func RenderAddr(ip net.IP) string {
	if v4 := ip.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.%d", v4[0], v4[1], v4[2], v4[3])
	}
	v6 := ip.To16()
	if v6 == nil {
		return ip.String()
	}
	return fmt.Sprintf("%x", []byte(v6))
}
