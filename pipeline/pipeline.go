// Package pipeline implements the decode/aggregate stage: it drains raw
// frames from the capture stage, decodes them layer by layer, determines
// direction against the interface's own addresses, and folds the result
// into the flow table.
package pipeline

import (
	"github.com/mel2oo/netsniff/capture"
	"github.com/mel2oo/netsniff/decode"
	"github.com/mel2oo/netsniff/flow"
	"github.com/mel2oo/netsniff/sets"
	"github.com/sirupsen/logrus"
)

// Stage consumes RawFrames from In until it is closed, updating Table. It
// never blocks on anything but the channel receive and the table's mutex.
type Stage struct {
	In       <-chan capture.RawFrame
	Table    *flow.Table
	OwnAddrs sets.Set[string]
	Log      *logrus.Entry
}

// Run drains In until it is closed (which happens once the capture stage
// exits and the caller closes the channel).
func (s *Stage) Run() {
	for frame := range s.In {
		s.process(frame)
	}
}

func (s *Stage) process(frame capture.RawFrame) {
	defer frame.Release()

	view := frame.View()

	eth, ipView, err := decode.DecodeEthernet(view)
	if err != nil {
		s.Log.WithError(err).Debug("dropping frame: ethernet decode failed")
		return
	}

	var (
		srcAddr, dstAddr string
		protocol         decode.Protocol
		l4View           = ipView
	)

	switch eth.Type {
	case decode.EtherTypeIPv4:
		ip, payload, err := decode.DecodeIPv4(ipView)
		if err != nil {
			s.Log.WithError(err).Debug("dropping frame: ipv4 decode failed")
			return
		}
		srcAddr, dstAddr, protocol, l4View = ip.SrcAddr, ip.DstAddr, ip.Protocol, payload

	case decode.EtherTypeIPv6:
		ip, payload, err := decode.DecodeIPv6(ipView)
		if err != nil {
			s.Log.WithError(err).Debug("dropping frame: ipv6 decode failed")
			return
		}
		srcAddr, dstAddr, protocol, l4View = ip.SrcAddr, ip.DstAddr, ip.Protocol, payload

	default:
		// ARP or anything else: not an IP packet, nothing to aggregate.
		return
	}

	if protocol == decode.ProtocolUnknown {
		s.Log.WithField("src", srcAddr).Debug("dropping frame: unsupported L4 protocol")
		return
	}

	var srcPort, dstPort uint16
	switch protocol {
	case decode.ProtocolTCP:
		tcp, payload, err := decode.DecodeTCP(l4View)
		if err != nil {
			s.Log.WithError(err).Debug("dropping frame: tcp decode failed")
			return
		}
		srcPort, dstPort, l4View = tcp.SrcPort, tcp.DstPort, payload

	case decode.ProtocolUDP:
		udp, payload, err := decode.DecodeUDP(l4View)
		if err != nil {
			s.Log.WithError(err).Debug("dropping frame: udp decode failed")
			return
		}
		srcPort, dstPort, l4View = udp.SrcPort, udp.DstPort, payload
	}

	peerAddr, peerPort := directionalPeer(s.OwnAddrs, srcAddr, dstAddr, srcPort, dstPort)

	key := flow.Key{Addr: peerAddr, Port: peerPort}
	bytesN := uint64(l4View.Len())

	s.Table.Merge(key, protocol, bytesN, frame.Timestamp.UnixNano())
}

// directionalPeer returns the remote endpoint of a packet: if srcAddr is
// one of our own addresses the packet was Transmitted and the peer is the
// destination; otherwise it was Received and the peer is the source.
func directionalPeer(own sets.Set[string], srcAddr, dstAddr string, srcPort, dstPort uint16) (string, uint16) {
	if own.Contains(srcAddr) {
		return dstAddr, dstPort
	}
	return srcAddr, srcPort
}
