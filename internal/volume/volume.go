// Package volume implements the passive Volume service: it listens for
// multicast-driven level updates pushed by devices that accepted a CMC
// volume subscribe, and otherwise stays out of the way. Decoding the level
// payload itself is out of scope (spec.md §4.4 notes it is a documented TODO
// in the original source); this package's job is to keep the recv loop
// intact and correctly drop SEND-typed frames.
package volume

import (
	"context"
	"net"

	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/logging"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
	"github.com/s0600204/network-audio-controller/internal/svcmetrics"
	"github.com/s0600204/network-audio-controller/internal/svctransport"
)

// Port is the fixed port the Volume service listens on; unlike the other
// services it is not offset by 40000 since it only ever receives pushes.
const Port = 8751

// HeaderLength mirrors the ARC/CMC frame header.
const HeaderLength = 10

// Update is a raw, undecoded volume-push notification, handed to the
// application layer for whatever limited use it wants to make of it
// (spec.md leaves decoding explicitly out of scope).
type Update struct {
	From net.Addr
	Data []byte
}

// Service is the process-wide Volume transport.
type Service struct {
	transport *svctransport.Transport
}

// NewService constructs the Volume service, bound to Port. onUpdate is
// invoked for every push notification received; it may be nil, in which
// case pushes are logged at debug and dropped.
func NewService(onUpdate func(Update), logger *logging.Logger, metrics *svcmetrics.Metrics) *Service {
	s := &Service{}
	var push svctransport.PushFunc
	if onUpdate != nil {
		push = func(data []byte, from net.Addr) {
			onUpdate(Update{From: from, Data: data})
		}
	}
	s.transport = svctransport.New("volume", Port, decodeResponse, logger, metrics, svctransport.WithPushHandler(push))
	return s
}

func (s *Service) Start(ctx context.Context) error { return s.transport.Start(ctx) }
func (s *Service) Stop()                           { s.transport.Stop() }

// decodeResponse classifies every inbound Volume-service datagram as a push
// (type SEND): the Volume service never originates requests of its own, so
// there is never a pending entry to correlate against.
func decodeResponse(data []byte) (svctransport.Decoded, error) {
	if len(data) < HeaderLength {
		return svctransport.Decoded{}, &ncerr.DecodeError{Offset: 0, Length: HeaderLength, Reason: "frame shorter than volume header"}
	}
	idx, err := codec.DecodeInt16(data, 4)
	if err != nil {
		return svctransport.Decoded{}, err
	}
	return svctransport.Decoded{MessageIndex: idx, IsSend: true}, nil
}
