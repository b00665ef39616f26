package arc

import (
	"context"
	"net"
	"strconv"

	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/logging"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
	"github.com/s0600204/network-audio-controller/internal/svcmetrics"
	"github.com/s0600204/network-audio-controller/internal/svctransport"
)

// Service is the process-wide ARC transport: one UDP socket shared across
// every discovered device, addressed per-call by destination and dialect
// (each device may be on a different protocol version).
type Service struct {
	transport *svctransport.Transport
}

// NewService constructs the ARC service, bound to LocalPort.
func NewService(logger *logging.Logger, metrics *svcmetrics.Metrics) *Service {
	s := &Service{}
	s.transport = svctransport.New("arc", LocalPort, decodeResponse, logger, metrics)
	return s
}

// Start binds the ARC socket.
func (s *Service) Start(ctx context.Context) error { return s.transport.Start(ctx) }

// Stop shuts the ARC socket down.
func (s *Service) Stop() { s.transport.Stop() }

func decodeResponse(data []byte) (svctransport.Decoded, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return svctransport.Decoded{}, err
	}
	return svctransport.Decoded{
		MessageIndex: hdr.MessageIndex,
		IsSend:       hdr.Direction == DirectionSend,
	}, nil
}

// result is the value delivered on the channel every request/response call
// waits on.
type result struct {
	frame []byte
	err   error
}

// call sends a frame to dest and blocks until the correlated response
// arrives or the request times out.
func (s *Service) call(dest *net.UDPAddr, version codec.Version, command uint16, body []byte) ([]byte, error) {
	idx := s.transport.NextIndex()
	frame := NewFrame(version, idx, command, DirectionSend, body)

	ch := make(chan result, 1)
	s.transport.Send(dest, idx, command, frame, func(resp []byte, err error) {
		ch <- result{frame: resp, err: err}
	})
	r := <-ch
	return r.frame, r.err
}

// fireAndForget sends a frame with no pending callback registered — used
// for subscribe/unsubscribe, whose responses are ignored per spec.md §4.3;
// callers follow up with a fresh page fetch to observe the result.
func (s *Service) fireAndForget(dest *net.UDPAddr, version codec.Version, command uint16, body []byte) {
	idx := s.transport.NextIndex()
	frame := NewFrame(version, idx, command, DirectionSend, body)
	s.transport.Send(dest, idx, command, frame, nil)
}

// GetChannelCounts issues CmdChannelCounts and parses the response.
func (s *Service) GetChannelCounts(dest *net.UDPAddr, version codec.Version) (ChannelCounts, error) {
	frame, err := s.call(dest, version, CmdChannelCounts, nil)
	if err != nil {
		return ChannelCounts{}, err
	}
	return ParseChannelCounts(frame)
}

// SetDeviceName issues CmdSetDeviceName. An empty name resets to factory.
func (s *Service) SetDeviceName(dest *net.UDPAddr, version codec.Version, name string) error {
	if name != "" {
		if err := ValidateDeviceName(name); err != nil {
			return err
		}
	}
	_, err := s.call(dest, version, CmdSetDeviceName, BuildSetDeviceName(name))
	return err
}

// ResetDeviceName is SetDeviceName with an empty payload (spec.md §8
// scenario 6): the device reverts to its factory name.
func (s *Service) ResetDeviceName(dest *net.UDPAddr, version codec.Version) error {
	_, err := s.call(dest, version, CmdSetDeviceName, nil)
	return err
}

// GetDeviceName issues CmdGetDeviceName.
func (s *Service) GetDeviceName(dest *net.UDPAddr, version codec.Version) (string, error) {
	frame, err := s.call(dest, version, CmdGetDeviceName, nil)
	if err != nil {
		return "", err
	}
	return ParseDeviceName(frame)
}

// GetDeviceInfo issues CmdDeviceInfo.
func (s *Service) GetDeviceInfo(dest *net.UDPAddr, version codec.Version) (DeviceInfo, error) {
	frame, err := s.call(dest, version, CmdDeviceInfo, nil)
	if err != nil {
		return DeviceInfo{}, err
	}
	return ParseDeviceInfo(frame)
}

// SetLatency issues CmdSetLatency with latencyMS converted to nanoseconds.
func (s *Service) SetLatency(dest *net.UDPAddr, version codec.Version, latencyMS int) error {
	if latencyMS < 0 {
		return &ncerr.InvalidInputError{Field: "latency", Value: strconv.Itoa(latencyMS), Reason: "must not be negative"}
	}
	_, err := s.call(dest, version, CmdSetLatency, BuildSetLatency(latencyMS))
	return err
}

// GetRXPage issues one RX channel page request and parses the response.
func (s *Service) GetRXPage(dest *net.UDPAddr, version codec.Version, page, expected int) ([]ChannelDef, error) {
	d := DialectFor(version)
	frame, err := s.call(dest, version, RXPageCommand(d), BuildRXPageRequest(page, d))
	if err != nil {
		return nil, err
	}
	return ParseRXPage(frame, expected, d)
}

// GetTXPage issues one TX channel page request and parses the response.
func (s *Service) GetTXPage(dest *net.UDPAddr, version codec.Version, page, expected int) ([]ChannelDef, error) {
	d := DialectFor(version)
	frame, err := s.call(dest, version, TXPageCommand(d), BuildTXPageRequest(page, d))
	if err != nil {
		return nil, err
	}
	return ParseTXPage(frame, expected, d)
}

// SetRXChannelName issues the dialect-appropriate set-RX-name command.
func (s *Service) SetRXChannelName(dest *net.UDPAddr, version codec.Version, channelNumber int, name string) error {
	if err := ValidateChannelName(name); err != nil {
		return err
	}
	d := DialectFor(version)
	_, err := s.call(dest, version, SetRXNameCommand(d), BuildSetChannelName(channelNumber, name))
	return err
}

// SetTXChannelName issues the dialect-appropriate set-TX-name command.
func (s *Service) SetTXChannelName(dest *net.UDPAddr, version codec.Version, channelNumber int, name string) error {
	if err := ValidateChannelName(name); err != nil {
		return err
	}
	d := DialectFor(version)
	_, err := s.call(dest, version, SetTXNameCommand(d), BuildSetChannelName(channelNumber, name))
	return err
}

// Subscribe fires the subscribe command; its response is ignored (see
// fireAndForget) — callers re-fetch the RX page to observe the result.
func (s *Service) Subscribe(dest *net.UDPAddr, version codec.Version, rxChannelNumber int, txChannelName, txDeviceName string) {
	d := DialectFor(version)
	body := BuildSubscribe(rxChannelNumber, txChannelName, txDeviceName, d)
	s.fireAndForget(dest, version, SubscribeCommand(d), body)
}

// Unsubscribe fires the unsubscribe command for rxChannelNumber.
func (s *Service) Unsubscribe(dest *net.UDPAddr, version codec.Version, rxChannelNumber int) {
	d := DialectFor(version)
	body := BuildUnsubscribe(rxChannelNumber)
	s.fireAndForget(dest, version, UnsubscribeCommand(d), body)
}
