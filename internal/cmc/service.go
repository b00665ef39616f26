package cmc

import (
	"context"
	"net"

	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/logging"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
	"github.com/s0600204/network-audio-controller/internal/svcmetrics"
	"github.com/s0600204/network-audio-controller/internal/svctransport"
)

// Service is the process-wide CMC transport.
type Service struct {
	transport  *svctransport.Transport
	volumePort uint16
}

// NewService constructs the CMC service, bound to LocalPort. volumePort is
// advertised to devices as where to push volume-level updates.
func NewService(volumePort uint16, logger *logging.Logger, metrics *svcmetrics.Metrics) *Service {
	s := &Service{volumePort: volumePort}
	s.transport = svctransport.New("cmc", LocalPort, decodeResponse, logger, metrics)
	return s
}

func (s *Service) Start(ctx context.Context) error { return s.transport.Start(ctx) }
func (s *Service) Stop()                           { s.transport.Stop() }

func decodeResponse(data []byte) (svctransport.Decoded, error) {
	if len(data) < HeaderLength {
		return svctransport.Decoded{}, &ncerr.DecodeError{Offset: 0, Length: HeaderLength, Reason: "frame shorter than CMC header"}
	}
	idx, err := codec.DecodeInt16(data, 4)
	if err != nil {
		return svctransport.Decoded{}, err
	}
	dir, err := codec.DecodeInt16(data, 8)
	if err != nil {
		return svctransport.Decoded{}, err
	}
	return svctransport.Decoded{MessageIndex: idx, IsSend: dir == 0x0000}, nil
}

func frame(version codec.Version, idx, command uint16, body []byte) []byte {
	f := make([]byte, 0, HeaderLength+len(body))
	f = codec.EncodePacketVersion(f, version)
	f = codec.EncodeInt16(f, 0)
	f = codec.EncodeInt16(f, idx)
	f = codec.EncodeInt16(f, command)
	f = codec.EncodeInt16(f, 0x0000)
	f = append(f, body...)
	total := codec.EncodeInt16(nil, uint16(len(f)))
	f[2], f[3] = total[0], total[1]
	return f
}

// SubscribeVolume asks dest to start pushing volume-level updates for
// deviceName to localMAC/localIP:VolumePort. Returns an
// *ncerr.UnsupportedError if the device declines.
func (s *Service) SubscribeVolume(dest *net.UDPAddr, version codec.Version, localMAC net.HardwareAddr, localIP net.IP, deviceName string) error {
	idx := s.transport.NextIndex()
	body := BuildVolumeSubscribe(localMAC, localIP, s.volumePort, deviceName)
	f := frame(version, idx, CmdVolumeSubscribe, body)

	ch := make(chan struct {
		resp []byte
		err  error
	}, 1)
	s.transport.Send(dest, idx, CmdVolumeSubscribe, f, func(resp []byte, err error) {
		ch <- struct {
			resp []byte
			err  error
		}{resp, err}
	})
	r := <-ch
	if r.err != nil {
		return r.err
	}
	if IsUnsupported(r.resp) {
		return &ncerr.UnsupportedError{Operation: "volume subscribe", Device: deviceName}
	}
	return nil
}

// UnsubscribeVolume is fire-and-forget, mirroring spec.md §4.4.
func (s *Service) UnsubscribeVolume(dest *net.UDPAddr, version codec.Version, deviceName string) {
	idx := s.transport.NextIndex()
	f := frame(version, idx, CmdVolumeUnsubscribe, BuildVolumeUnsubscribe(deviceName))
	s.transport.Send(dest, idx, CmdVolumeUnsubscribe, f, nil)
}
