package discovery

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/dns/dnsmessage"
	"golang.org/x/net/ipv4"

	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/logging"
)

// MDNSPort is the standard multicast DNS port.
const MDNSPort = 5353

// MaxPacketSize is a safe upper bound for an mDNS UDP payload.
const MaxPacketSize = 4096

var mdnsGroup = net.ParseIP("224.0.0.251")

// dnteServiceNames maps the mDNS service-type strings observed on the wire
// to this package's short service keys.
var dnteServiceNames = map[string]string{
	"_netaudio-arc._udp.local.":  ServiceARC,
	"_netaudio-cmc._udp.local.":  ServiceCMC,
	"_netaudio-dbc._udp.local.":  ServiceDBC,
	"_netaudio-chan._udp.local.": ServiceChan,
}

// Browser watches the network for Dante service announcements and feeds
// Fusion events, grounded on the teacher's mDNS reflector socket/retry
// idiom (internal/services/mdns/service.go) and its dnsmessage-based parser
// (internal/services/mdns/parser.go).
type Browser struct {
	fusion     *Fusion
	interfaces []string
	logger     *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBrowser constructs a Browser that feeds ev into fusion, listening on
// the named interfaces (empty = all multicast-capable, up interfaces).
func NewBrowser(fusion *Fusion, interfaces []string, logger *logging.Logger) *Browser {
	return &Browser{fusion: fusion, interfaces: interfaces, logger: logger.WithComponent("discovery")}
}

// Start resolves interfaces, joins the mDNS multicast group, and launches
// the retry/bind loop and receive loop.
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()

	b.wg.Add(1)
	go b.retryStartLoop(ctx)
	return nil
}

// Stop cancels the browser's context and waits for its goroutines to exit.
func (b *Browser) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
}

// retryStartLoop mirrors the teacher's mDNS reflector retryStartLoop: retry
// binding every 5s until it succeeds or the context is cancelled.
func (b *Browser) retryStartLoop(ctx context.Context) {
	defer b.wg.Done()

	if err := b.attemptStart(ctx); err == nil {
		return
	} else {
		b.logger.Warn("failed to bind mDNS socket, will retry", "error", err)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.attemptStart(ctx); err == nil {
				return
			} else {
				b.logger.Warn("retry bind failed", "error", err)
			}
		}
	}
}

func (b *Browser) attemptStart(ctx context.Context) error {
	conn, err := net.ListenPacket("udp4", ":"+strconv.Itoa(MDNSPort))
	if err != nil {
		return err
	}
	pc := ipv4.NewPacketConn(conn)

	ifaces, err := b.resolveInterfaces()
	if err != nil {
		b.logger.Warn("interface resolution failed", "error", err)
	}
	for _, iface := range ifaces {
		if err := pc.JoinGroup(iface, &net.UDPAddr{IP: mdnsGroup}); err != nil {
			b.logger.Warn("failed to join mDNS group", "interface", iface.Name, "error", err)
			continue
		}
	}
	pc.SetControlMessage(ipv4.FlagInterface, true)

	b.wg.Add(1)
	go b.recvLoop(ctx, pc)
	return nil
}

func (b *Browser) resolveInterfaces() ([]*net.Interface, error) {
	if len(b.interfaces) > 0 {
		var out []*net.Interface
		for _, name := range b.interfaces {
			iface, err := net.InterfaceByName(name)
			if err != nil {
				b.logger.Warn("configured interface not found", "interface", name, "error", err)
				continue
			}
			out = append(out, iface)
		}
		return out, nil
	}

	all, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []*net.Interface
	for i := range all {
		iface := all[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagMulticast == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		out = append(out, &iface)
	}
	return out, nil
}

func (b *Browser) recvLoop(ctx context.Context, pc *ipv4.PacketConn) {
	defer b.wg.Done()
	defer pc.Close()

	buf := make([]byte, MaxPacketSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		pc.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, _, src, err := pc.ReadFrom(buf)
		if err != nil {
			continue
		}
		var srcIP net.IP
		if udpAddr, ok := src.(*net.UDPAddr); ok {
			srcIP = udpAddr.IP
		}
		b.parseAndApply(buf[:n], srcIP)
	}
}

func (b *Browser) parseAndApply(data []byte, srcIP net.IP) {
	var parser dnsmessage.Parser
	if _, err := parser.Start(data); err != nil {
		return
	}
	if err := parser.SkipAllQuestions(); err != nil {
		return
	}

	type bucket struct {
		serverName string
		port       uint16
		txt        map[string]string
	}
	byService := make(map[string]*bucket)

	for _, section := range []func() (dnsmessage.Resource, error){parser.Answer, parser.Authority, parser.Additional} {
		for {
			rr, err := section()
			if err == dnsmessage.ErrSectionDone {
				break
			}
			if err != nil {
				break
			}
			name := rr.Header.Name.String()
			svcKey, instance := matchService(name)
			if svcKey == "" {
				continue
			}
			bk, ok := byService[svcKey]
			if !ok {
				bk = &bucket{txt: make(map[string]string)}
				byService[svcKey] = bk
			}
			_ = instance

			switch body := rr.Body.(type) {
			case *dnsmessage.SRVResource:
				bk.port = body.Port
				bk.serverName = strings.TrimSuffix(body.Target.String(), ".")
			case *dnsmessage.TXTResource:
				for _, txt := range body.TXT {
					if idx := strings.Index(txt, "="); idx > 0 {
						bk.txt[txt[:idx]] = txt[idx+1:]
					}
				}
			}
		}
	}

	for svcKey, bk := range byService {
		if bk.serverName == "" {
			continue
		}
		version := parseVersionForService(svcKey, bk.txt)
		b.fusion.Apply(Event{
			ServerName: bk.serverName,
			Service:    svcKey,
			PeerIPv4:   peerIPv4(srcIP),
			Descriptor: ServiceDescriptor{Port: int(bk.port), Version: version},
		})
	}
}

func peerIPv4(ip net.IP) string {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.String()
	}
	return ""
}

func parseVersionForService(service string, txt map[string]string) codec.Version {
	var key string
	switch service {
	case ServiceARC:
		key = "arcp_vers"
	case ServiceCMC:
		key = "cmcp_vers"
	default:
		return codec.Version{}
	}
	v, err := codec.ParseTXTVersion(txt[key])
	if err != nil {
		return codec.Version{}
	}
	return v
}

// matchService maps an mDNS resource name such as
// "My Mixer._netaudio-arc._udp.local." to its service key ("arc") and
// instance label ("My Mixer").
func matchService(name string) (service, instance string) {
	for suffix, key := range dnteServiceNames {
		if strings.HasSuffix(name, suffix) {
			instance = strings.TrimSuffix(name, "."+suffix)
			return key, instance
		}
	}
	return "", ""
}
