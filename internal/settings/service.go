package settings

import (
	"context"
	"net"

	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/logging"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
	"github.com/s0600204/network-audio-controller/internal/svcmetrics"
	"github.com/s0600204/network-audio-controller/internal/svctransport"
)

// Service is the process-wide Settings transport. All Settings commands are
// fire-and-forget (spec.md §4.4); responses are matched to their pending
// entry and discarded, never awaited by the caller. No error byte in a
// response is inspected.
type Service struct {
	transport *svctransport.Transport
}

// NewService constructs the Settings service, bound to LocalPort.
func NewService(logger *logging.Logger, metrics *svcmetrics.Metrics) *Service {
	s := &Service{}
	s.transport = svctransport.New("settings", LocalPort, decodeResponse, logger, metrics)
	return s
}

func (s *Service) Start(ctx context.Context) error { return s.transport.Start(ctx) }
func (s *Service) Stop()                           { s.transport.Stop() }

func decodeResponse(data []byte) (svctransport.Decoded, error) {
	if len(data) < HeaderLength+2 {
		return svctransport.Decoded{}, &ncerr.DecodeError{Offset: 0, Length: HeaderLength, Reason: "frame shorter than Settings header"}
	}
	idx, err := codec.DecodeInt16(data, 4)
	if err != nil {
		return svctransport.Decoded{}, err
	}
	return svctransport.Decoded{MessageIndex: idx, IsSend: false}, nil
}

// send builds and enqueues a frame. label is not carried on the wire — it
// is the payload's own leading prefix hextet, reused here only to tag the
// pending-table entry for logging/metrics, the same role commandCode plays
// elsewhere in this codebase.
func (s *Service) send(dest *net.UDPAddr, mac net.HardwareAddr, tag uint16, label uint16, payload []byte) {
	idx := s.transport.NextIndex()
	f := NewFrame(idx, mac, tag, payload)
	s.transport.Send(dest, idx, label, f, nil)
}

// Identify pulses the device's identify LED. The real protocol carries a
// zero MAC in the frame header for this command.
func (s *Service) Identify(dest *net.UDPAddr) {
	s.send(dest, ZeroMAC, 0, prefixIdentify, BuildIdentify())
}

// GetModel requests the device's Dante model string. The frame carries the
// MAC of the local interface facing the device, not a placeholder.
func (s *Service) GetModel(dest *net.UDPAddr) error {
	mac, err := localInterfaceMAC(dest.IP)
	if err != nil {
		return err
	}
	s.send(dest, mac, 0, prefixGetModel, BuildGetModel())
	return nil
}

// GetMakeModel requests the device's make/model string.
func (s *Service) GetMakeModel(dest *net.UDPAddr) error {
	mac, err := localInterfaceMAC(dest.IP)
	if err != nil {
		return err
	}
	s.send(dest, mac, 0, prefixGetMakeModel, BuildGetMakeModel())
	return nil
}

// SetSampleRate issues a set-sample-rate command after validating rate
// against AllowedSampleRates.
func (s *Service) SetSampleRate(dest *net.UDPAddr, rate int) error {
	if err := ValidateSampleRate(rate); err != nil {
		return err
	}
	s.send(dest, GainPseudoMAC, 0, prefixSampleRate, BuildSetSampleRate(rate))
	return nil
}

// SetEncoding issues a set-encoding command after validating bits against
// AllowedEncodings. The frame carries the MAC of the local interface
// facing the device.
func (s *Service) SetEncoding(dest *net.UDPAddr, bits int) error {
	if err := ValidateEncoding(bits); err != nil {
		return err
	}
	mac, err := localInterfaceMAC(dest.IP)
	if err != nil {
		return err
	}
	s.send(dest, mac, 0, prefixEncoding, BuildSetEncoding(bits))
	return nil
}

// SetGain issues a set-gain-level command after validating level against
// 1..5.
func (s *Service) SetGain(dest *net.UDPAddr, channelType byte, channelNumber, level int) error {
	if err := ValidateGainLevel(level); err != nil {
		return err
	}
	s.send(dest, GainPseudoMAC, 0, prefixGain, BuildSetGain(channelType, channelNumber, level))
	return nil
}

// SetAES67 enables or disables AES67 mode, using the Settings service's
// AES67 pseudo-MAC and AES67Tag in place of the peer's own MAC.
func (s *Service) SetAES67(dest *net.UDPAddr, enable bool) {
	s.send(dest, AES67PseudoMAC, AES67Tag, prefixAES67, BuildSetAES67(enable))
}

// localInterfaceMAC resolves the hardware address of the local interface
// that would carry traffic to peer, for commands that report "the address
// I'm heard on" back to the device rather than using a placeholder.
func localInterfaceMAC(peer net.IP) (net.HardwareAddr, error) {
	_, mac, err := codec.LocalInterfaceFor(peer)
	return mac, err
}
