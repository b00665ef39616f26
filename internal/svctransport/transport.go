// Package svctransport implements the UDP socket, send queue, and
// pending-message table shared by every Dante service (ARC, CMC, Settings,
// Volume). One Transport is owned per service; the service package supplies
// the decode hook that pulls message index and direction out of a response.
package svctransport

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/s0600204/network-audio-controller/internal/logging"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
	"github.com/s0600204/network-audio-controller/internal/svcmetrics"
)

// Quantum is the readiness-wait granularity the main loop uses to notice
// shutdown and pending-table timeouts promptly.
const Quantum = 200 * time.Millisecond

// DefaultDeadline is how long a pending message waits for a correlated
// response before it is purged and reported as a TimeoutError.
const DefaultDeadline = time.Second

// outbound is one queued (destination, bytes) pair awaiting sendto.
type outbound struct {
	dest net.Addr
	data []byte
}

// pending is one in-flight request awaiting a correlated response.
type pending struct {
	destination string
	commandCode uint16
	enqueued    time.Time
	callback    func(resp []byte, err error)
}

// Decoded is what a service's frame decoder extracts from a raw datagram,
// independent of ARC/CMC/Settings-specific layout.
type Decoded struct {
	MessageIndex uint16
	IsSend       bool // true: unsolicited push (type SEND, 0x0000)
}

// DecodeFunc pulls the message index and direction out of a raw datagram.
// Services whose header layout differs (Settings' 24-byte header vs ARC/CMC's
// 10-byte one) supply their own.
type DecodeFunc func(data []byte) (Decoded, error)

// PushFunc handles an unsolicited SEND-typed datagram (volume notifications,
// or a log-and-drop no-op for services that never receive pushes).
type PushFunc func(data []byte, from net.Addr)

// Transport owns one bound UDP socket plus its send queue and pending table.
type Transport struct {
	name       string
	localPort  int
	decode     DecodeFunc
	onPush     PushFunc
	deadline   time.Duration
	logger     *logging.Logger
	metrics    *svcmetrics.Metrics

	mu       sync.Mutex
	conn     *net.UDPConn
	outq     []outbound
	pendingT map[uint16]*pending
	nextIdx  uint32

	shuttingDown atomic.Bool
	wg           sync.WaitGroup
}

// Option configures a Transport at construction.
type Option func(*Transport)

// WithDeadline overrides the default 1s pending-message deadline.
func WithDeadline(d time.Duration) Option {
	return func(t *Transport) { t.deadline = d }
}

// WithPushHandler installs a handler for unsolicited SEND-typed datagrams.
// Without one, pushes are logged at debug and dropped.
func WithPushHandler(fn PushFunc) Option {
	return func(t *Transport) { t.onPush = fn }
}

// New constructs a Transport bound to localPort, decoding responses with fn.
func New(name string, localPort int, fn DecodeFunc, logger *logging.Logger, metrics *svcmetrics.Metrics, opts ...Option) *Transport {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Transport{
		name:      name,
		localPort: localPort,
		decode:    fn,
		deadline:  DefaultDeadline,
		logger:    logger.WithComponent(name),
		metrics:   metrics,
		pendingT:  make(map[uint16]*pending),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start binds the socket and launches the reader/writer loop and the
// pending-table sweeper, retrying the bind every 5s if the port is held.
func (t *Transport) Start(ctx context.Context) error {
	conn, err := t.bind()
	if err != nil {
		t.logger.Warn("bind failed, will retry", "port", t.localPort, "error", err)
		t.wg.Add(1)
		go t.retryStartLoop(ctx)
		return nil
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	t.wg.Add(1)
	go t.loop(ctx)
	return nil
}

// retryStartLoop mirrors the teacher's mDNS reflector rebind loop: retry
// every 5s until the socket binds or the context is cancelled.
func (t *Transport) retryStartLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn, err := t.bind()
			if err != nil {
				t.logger.Warn("retry bind failed", "port", t.localPort, "error", err)
				continue
			}
			t.mu.Lock()
			t.conn = conn
			t.mu.Unlock()
			t.logger.Info("bound after retry", "port", t.localPort)
			t.wg.Add(1)
			go t.loop(ctx)
			return
		}
	}
}

func (t *Transport) bind() (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var opErr error
			err := c.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if opErr != nil {
					return
				}
				opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return opErr
		},
	}
	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(t.localPort))
	pc, err := lc.ListenPacket(context.Background(), "udp4", addr)
	if err != nil {
		return nil, &ncerr.TransportError{Destination: addr, Err: err}
	}
	return pc.(*net.UDPConn), nil
}

// Stop cooperatively shuts the transport down: the next readiness quantum
// observes the flag and the loop goroutine returns.
func (t *Transport) Stop() {
	t.shuttingDown.Store(true)
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	t.wg.Wait()
}

func (t *Transport) loop(ctx context.Context) {
	defer t.wg.Done()

	buf := make([]byte, 4096)
	sweep := time.NewTicker(Quantum)
	defer sweep.Stop()

	for {
		if t.shuttingDown.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			t.sweepTimeouts()
			t.flushOutbound()
		default:
		}

		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(Quantum))
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if t.shuttingDown.Load() {
				return
			}
			continue // timeout is expected; re-check shutdown/sweep
		}
		t.handle(buf[:n], from)
	}
}

func (t *Transport) handle(data []byte, from net.Addr) {
	dec, err := t.decode(data)
	if err != nil {
		t.logger.Warn("dropping malformed response", "from", from, "error", err)
		if t.metrics != nil {
			t.metrics.IncDrop()
		}
		return
	}
	if dec.IsSend {
		if t.onPush != nil {
			t.onPush(data, from)
		} else {
			t.logger.Debug("dropping unsolicited push", "from", from)
		}
		return
	}

	t.mu.Lock()
	p, ok := t.pendingT[dec.MessageIndex]
	if ok {
		delete(t.pendingT, dec.MessageIndex)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Warn("unmatched response index", "index", dec.MessageIndex, "from", from)
		if t.metrics != nil {
			t.metrics.IncDrop()
		}
		return
	}
	if t.metrics != nil {
		t.metrics.ObservePendingDepth(t.pendingDepth())
	}
	if p.callback != nil {
		p.callback(data, nil)
	}
}

// NextIndex returns the next monotonically increasing 16-bit message index,
// wrapping modulo 2^16.
func (t *Transport) NextIndex() uint16 {
	return uint16(atomic.AddUint32(&t.nextIdx, 1))
}

// Send enqueues data for delivery to dest, registering a pending-table entry
// keyed by idx so a later correlated response invokes cb. cb may be nil for
// fire-and-forget commands (Settings, subscribe/unsubscribe).
func (t *Transport) Send(dest *net.UDPAddr, idx uint16, commandCode uint16, data []byte, cb func(resp []byte, err error)) {
	t.mu.Lock()
	t.pendingT[idx] = &pending{
		destination: dest.String(),
		commandCode: commandCode,
		enqueued:    time.Now(),
		callback:    cb,
	}
	t.outq = append(t.outq, outbound{dest: dest, data: data})
	depth := len(t.pendingT)
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.ObservePendingDepth(depth)
	}
	t.flushOutbound()
}

func (t *Transport) flushOutbound() {
	t.mu.Lock()
	conn := t.conn
	q := t.outq
	t.outq = nil
	t.mu.Unlock()

	if conn == nil {
		return
	}
	for _, ob := range q {
		if _, err := conn.WriteTo(ob.data, ob.dest); err != nil {
			t.logger.Warn("send failed", "destination", ob.dest, "error", err)
		}
	}
}

func (t *Transport) sweepTimeouts() {
	deadline := t.deadline
	now := time.Now()

	var expired []struct {
		idx uint16
		p   *pending
	}
	t.mu.Lock()
	for idx, p := range t.pendingT {
		if now.Sub(p.enqueued) > deadline {
			expired = append(expired, struct {
				idx uint16
				p   *pending
			}{idx, p})
			delete(t.pendingT, idx)
		}
	}
	t.mu.Unlock()

	for _, e := range expired {
		if t.metrics != nil {
			t.metrics.IncTimeout()
		}
		err := &ncerr.TimeoutError{MessageIndex: e.idx, CommandCode: e.p.commandCode, Destination: e.p.destination}
		t.logger.Debug("pending message timed out", "index", e.idx, "destination", e.p.destination)
		if e.p.callback != nil {
			e.p.callback(nil, err)
		}
	}
}

func (t *Transport) pendingDepth() int {
	return len(t.pendingT)
}
