// Package app wires the ARC, CMC, Settings, and Volume services, mDNS
// discovery, and the reconciled domain registry into a single façade,
// grounded on the teacher's control-plane daemon lifecycle
// (cmd.RunCtl/internal/device.Manager) adapted to this protocol engine.
package app

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/s0600204/network-audio-controller/internal/arc"
	"github.com/s0600204/network-audio-controller/internal/cmc"
	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/config"
	"github.com/s0600204/network-audio-controller/internal/discovery"
	"github.com/s0600204/network-audio-controller/internal/logging"
	"github.com/s0600204/network-audio-controller/internal/model"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
	"github.com/s0600204/network-audio-controller/internal/settings"
	"github.com/s0600204/network-audio-controller/internal/svcmetrics"
	"github.com/s0600204/network-audio-controller/internal/volume"
)

// App is the daemon's control-plane façade: service singletons, discovery,
// and the reconciled registry, behind one lifecycle.
type App struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *svcmetrics.Metrics
	runID   uuid.UUID

	registry *model.Registry

	arc      *arc.Service
	cmc      *cmc.Service
	settings *settings.Service
	volume   *volume.Service

	fusion  *discovery.Fusion
	browser *discovery.Browser

	cancel func()
}

// New constructs an App wired from cfg. Nothing is started until Run.
func New(cfg *config.Config, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.Default()
	}
	runID := uuid.New()
	logger = logger.WithComponent("app")
	logger.Logger = logger.Logger.With("run_id", runID.String())

	registry := model.NewRegistry()

	a := &App{
		cfg:      cfg,
		logger:   logger,
		runID:    runID,
		registry: registry,
		arc:      arc.NewService(logger, svcmetrics.New(nil, "arc")),
		cmc:      cmc.NewService(uint16(volume.Port), logger, svcmetrics.New(nil, "cmc")),
		settings: settings.NewService(logger, svcmetrics.New(nil, "settings")),
	}
	a.volume = volume.NewService(a.onVolumeUpdate, logger, svcmetrics.New(nil, "volume"))
	a.fusion = discovery.NewFusion(a.onDeviceComplete, a.onDeviceDisconnected)

	var interfaces []string
	if cfg != nil && cfg.Discovery != nil {
		interfaces = cfg.Discovery.Interfaces
	}
	a.browser = discovery.NewBrowser(a.fusion, interfaces, logger)
	return a
}

// RunID returns the façade's session identifier, attached to every log
// line for correlation across a process lifetime.
func (a *App) RunID() uuid.UUID { return a.runID }

// Registry exposes the reconciled domain registry for read access.
func (a *App) Registry() *model.Registry { return a.registry }

// Run starts every service socket and the discovery browser, and blocks
// until ctx is cancelled or one of them returns a fatal error.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.arc.Start(gctx) })
	g.Go(func() error { return a.cmc.Start(gctx) })
	g.Go(func() error { return a.settings.Start(gctx) })
	g.Go(func() error { return a.volume.Start(gctx) })
	g.Go(func() error { return a.browser.Start(gctx) })

	<-gctx.Done()
	a.Stop()
	return g.Wait()
}

// Stop tears down every running service and the discovery browser.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.arc.Stop()
	a.cmc.Stop()
	a.settings.Stop()
	a.volume.Stop()
	a.browser.Stop()
}

// onDeviceComplete runs when discovery.Fusion completes a record: it
// registers the device in the registry and kicks off the initial paged
// channel-list fetch.
func (a *App) onDeviceComplete(rec *discovery.Record) {
	dev := a.registry.RegisterDevice(rec.ServerName, rec.PeerIPv4,
		toModelDescriptor(rec.Services[discovery.ServiceARC]),
		toModelDescriptor(rec.Services[discovery.ServiceCMC]),
		toModelDescriptor(rec.Services[discovery.ServiceDBC]),
	)
	a.logger.Info("device discovered", "device", dev.ServerName, "ipv4", dev.IPv4)
	go a.refreshChannels(dev.ID, dev.ServerName, rec.PeerIPv4, toModelDescriptor(rec.Services[discovery.ServiceARC]).Version)
}

func (a *App) onDeviceDisconnected(rec *discovery.Record) {
	a.registry.MarkStale(rec.ServerName)
	a.logger.Info("device disconnected", "device", rec.ServerName)
}

func (a *App) onVolumeUpdate(u volume.Update) {
	a.logger.Debug("volume update", "from", u.From, "bytes", len(u.Data))
}

func toModelDescriptor(d discovery.ServiceDescriptor) model.ServiceDescriptor {
	return model.ServiceDescriptor{Port: d.Port, Version: d.Version}
}

// refreshChannels fetches channel counts, then issues every RX/TX page
// request and reconciles the results into the registry, per spec.md §4.6.
func (a *App) refreshChannels(deviceID model.DeviceID, serverName, ipv4 string, version codec.Version) {
	dest := &net.UDPAddr{IP: net.ParseIP(ipv4), Port: arc.PeerPort}

	counts, err := a.arc.GetChannelCounts(dest, version)
	if err != nil {
		a.logger.Warn("channel counts failed", "device", serverName, "error", err)
		return
	}
	a.registry.SetChannelCounts(deviceID, counts.RX, counts.TX)

	rxPages := arc.PageCount(counts.RX)
	for page := 0; page < rxPages; page++ {
		expected := arc.ChannelsOnPage(page, counts.RX)
		defs, err := a.arc.GetRXPage(dest, version, page, expected)
		if err != nil {
			a.logger.Warn("rx page fetch failed", "device", serverName, "page", page, "error", err)
			continue
		}
		if err := a.registry.ReconcileRXPage(deviceID, defs, page == 0); err != nil {
			a.logger.Warn("rx page reconcile failed", "device", serverName, "page", page, "error", err)
		}
	}

	txPages := arc.PageCount(counts.TX)
	for page := 0; page < txPages; page++ {
		expected := arc.ChannelsOnPage(page, counts.TX)
		defs, err := a.arc.GetTXPage(dest, version, page, expected)
		if err != nil {
			a.logger.Warn("tx page fetch failed", "device", serverName, "page", page, "error", err)
			continue
		}
		if err := a.registry.ReconcileTXPage(deviceID, defs); err != nil {
			a.logger.Warn("tx page reconcile failed", "device", serverName, "page", page, "error", err)
		}
	}
}

// deviceDest resolves a registered device's ARC destination address.
func (a *App) deviceDest(serverName string) (*net.UDPAddr, codec.Version, error) {
	dev, err := a.registry.DeviceByServerName(serverName)
	if err != nil {
		return nil, codec.Version{}, err
	}
	if dev.IPv4 == "" {
		return nil, codec.Version{}, &ncerr.NotFoundError{Kind: "device address", Key: serverName}
	}
	return &net.UDPAddr{IP: net.ParseIP(dev.IPv4), Port: arc.PeerPort}, dev.ARC.Version, nil
}

// RenameDevice issues SetDeviceName (or ResetDeviceName when name is empty)
// against the named device.
func (a *App) RenameDevice(serverName, name string) error {
	dest, version, err := a.deviceDest(serverName)
	if err != nil {
		return err
	}
	if name == "" {
		return a.arc.ResetDeviceName(dest, version)
	}
	return a.arc.SetDeviceName(dest, version, name)
}

// SetLatency issues SetLatency against the named device.
func (a *App) SetLatency(serverName string, latencyMS int) error {
	dest, version, err := a.deviceDest(serverName)
	if err != nil {
		return err
	}
	return a.arc.SetLatency(dest, version, latencyMS)
}

// Subscribe routes an RX channel to a TX channel and refreshes channel
// state for the subscribing device.
func (a *App) Subscribe(serverName string, rxChannelNumber int, txChannelName, txDeviceName string) error {
	dest, version, err := a.deviceDest(serverName)
	if err != nil {
		return err
	}
	a.arc.Subscribe(dest, version, rxChannelNumber, txChannelName, txDeviceName)
	time.Sleep(200 * time.Millisecond)
	dev, err := a.registry.DeviceByServerName(serverName)
	if err != nil {
		return err
	}
	go a.refreshChannels(dev.ID, serverName, dev.IPv4, version)
	return nil
}

// Unsubscribe clears an RX channel's subscription.
func (a *App) Unsubscribe(serverName string, rxChannelNumber int) error {
	dest, version, err := a.deviceDest(serverName)
	if err != nil {
		return err
	}
	a.arc.Unsubscribe(dest, version, rxChannelNumber)
	time.Sleep(200 * time.Millisecond)
	dev, err := a.registry.DeviceByServerName(serverName)
	if err != nil {
		return err
	}
	go a.refreshChannels(dev.ID, serverName, dev.IPv4, version)
	return nil
}

// Identify pulses the identify LED on the named device's Settings service.
func (a *App) Identify(serverName string) error {
	dev, err := a.registry.DeviceByServerName(serverName)
	if err != nil {
		return err
	}
	a.settings.Identify(&net.UDPAddr{IP: net.ParseIP(dev.IPv4), Port: settings.PeerPort})
	return nil
}

// SetAES67 toggles AES67 mode on the named device.
func (a *App) SetAES67(serverName string, enable bool) error {
	dev, err := a.registry.DeviceByServerName(serverName)
	if err != nil {
		return err
	}
	a.settings.SetAES67(&net.UDPAddr{IP: net.ParseIP(dev.IPv4), Port: settings.PeerPort}, enable)
	return nil
}
