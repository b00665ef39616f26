// Command nacctl is the thin CLI translator for the Dante control-plane
// façade: it parses typed arguments, calls into internal/app, and renders
// results as JSON. It owns no protocol knowledge of its own, mirroring the
// teacher's main.go dispatch-by-subcommand style.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/s0600204/network-audio-controller/internal/app"
	"github.com/s0600204/network-audio-controller/internal/config"
	"github.com/s0600204/network-audio-controller/internal/model"
)

const usageExitCode = 64

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(usageExitCode)
	}

	switch os.Args[1] {
	case "device":
		runDevice(os.Args[2:])
	case "channel":
		runChannel(os.Args[2:])
	case "subscription":
		runSubscription(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "nacctl: unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(usageExitCode)
	}
}

func printUsage() {
	fmt.Println(`nacctl - Dante control-plane client

Usage:
  nacctl device list [--config <file>]
  nacctl device configure --device <name> [--rename <name>] [--reset]
                           [--latency <ms>] [--identify]
                           [--aes67-enable] [--aes67-disable]
  nacctl channel list --device <name> [--type rx|tx]
  nacctl subscription list --device <name>
  nacctl subscription add --device <name> --rx <number> --tx-channel <name> [--tx-device <name>]
  nacctl subscription remove --device <name> --rx <number>`)
}

// bootApp builds an App and runs its discovery/service lifecycle for a
// short settling window so the registry has a chance to populate before the
// command reads from it. Spec.md explicitly scopes the CLI as a thin,
// external consumer of the façade — it owns no protocol state of its own.
func bootApp(configFile string) (*app.App, context.CancelFunc) {
	cfg := config.Default()
	if configFile != "" {
		if loaded, err := config.LoadFile(configFile); err == nil {
			cfg = loaded
		} else {
			fmt.Fprintf(os.Stderr, "nacctl: config load failed, using defaults: %v\n", err)
		}
	}

	a := app.New(cfg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)
	time.Sleep(1500 * time.Millisecond)
	return a, cancel
}

func runDevice(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "nacctl: device requires a subcommand")
		os.Exit(usageExitCode)
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("device list", flag.ExitOnError)
		configFile := fs.String("config", "", "configuration file")
		fs.Parse(args[1:])

		a, cancel := bootApp(*configFile)
		defer cancel()

		out := make([]deviceJSON, 0)
		for _, d := range a.Registry().Devices() {
			out = append(out, toDeviceJSON(d))
		}
		emit(out)

	case "configure":
		// Sample rate, encoding and gain are not settable from this command.
		fs := flag.NewFlagSet("device configure", flag.ExitOnError)
		configFile := fs.String("config", "", "configuration file")
		deviceName := fs.String("device", "", "target device server name")
		rename := fs.String("rename", "", "new device name")
		reset := fs.Bool("reset", false, "reset device name to factory default")
		latencyMS := fs.Int("latency", -1, "latency in milliseconds")
		identify := fs.Bool("identify", false, "pulse the identify LED")
		aes67Enable := fs.Bool("aes67-enable", false, "enable AES67 mode")
		aes67Disable := fs.Bool("aes67-disable", false, "disable AES67 mode")
		fs.Parse(args[1:])

		if *deviceName == "" {
			fmt.Fprintln(os.Stderr, "nacctl: --device is required")
			os.Exit(usageExitCode)
		}

		a, cancel := bootApp(*configFile)
		defer cancel()

		var firstErr error
		note := func(err error) {
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}

		if *reset {
			note(a.RenameDevice(*deviceName, ""))
		} else if *rename != "" {
			note(a.RenameDevice(*deviceName, *rename))
		}
		if *latencyMS >= 0 {
			note(a.SetLatency(*deviceName, *latencyMS))
		}
		if *identify {
			note(a.Identify(*deviceName))
		}
		if *aes67Enable {
			note(a.SetAES67(*deviceName, true))
		}
		if *aes67Disable {
			note(a.SetAES67(*deviceName, false))
		}

		if firstErr != nil {
			fmt.Fprintf(os.Stderr, "nacctl: %v\n", firstErr)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "nacctl: unknown device subcommand %q\n", args[0])
		os.Exit(usageExitCode)
	}
}

func runChannel(args []string) {
	if len(args) == 0 || args[0] != "list" {
		fmt.Fprintln(os.Stderr, "nacctl: channel requires subcommand \"list\"")
		os.Exit(usageExitCode)
	}
	fs := flag.NewFlagSet("channel list", flag.ExitOnError)
	configFile := fs.String("config", "", "configuration file")
	deviceName := fs.String("device", "", "target device server name")
	channelType := fs.String("type", "", "rx or tx, omit for both")
	fs.Parse(args[1:])

	if *deviceName == "" {
		fmt.Fprintln(os.Stderr, "nacctl: --device is required")
		os.Exit(usageExitCode)
	}
	if *channelType != "" && *channelType != "rx" && *channelType != "tx" {
		fmt.Fprintln(os.Stderr, "nacctl: --type must be \"rx\" or \"tx\"")
		os.Exit(usageExitCode)
	}

	a, cancel := bootApp(*configFile)
	defer cancel()

	dev, err := a.Registry().DeviceByServerName(*deviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nacctl: %v\n", err)
		os.Exit(1)
	}

	out := make([]channelJSON, 0)
	if *channelType == "" || *channelType == "rx" {
		for _, rx := range a.Registry().RxChannels(dev.ID) {
			out = append(out, toRXChannelJSON(a, rx))
		}
	}
	if *channelType == "" || *channelType == "tx" {
		for _, txID := range dev.TX {
			if tx, err := a.Registry().TxChannel(txID); err == nil {
				out = append(out, toTXChannelJSON(tx))
			}
		}
	}
	emit(out)
}

func runSubscription(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "nacctl: subscription requires a subcommand")
		os.Exit(usageExitCode)
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("subscription list", flag.ExitOnError)
		configFile := fs.String("config", "", "configuration file")
		deviceName := fs.String("device", "", "target device server name")
		fs.Parse(args[1:])

		if *deviceName == "" {
			fmt.Fprintln(os.Stderr, "nacctl: --device is required")
			os.Exit(usageExitCode)
		}

		a, cancel := bootApp(*configFile)
		defer cancel()

		dev, err := a.Registry().DeviceByServerName(*deviceName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "nacctl: %v\n", err)
			os.Exit(1)
		}

		out := make([]subscriptionJSON, 0)
		for _, rx := range a.Registry().RxChannels(dev.ID) {
			sub, err := a.Registry().Subscription(rx.Subscription)
			if err != nil {
				continue
			}
			out = append(out, toSubscriptionJSON(a, rx, sub))
		}
		emit(out)

	case "add":
		fs := flag.NewFlagSet("subscription add", flag.ExitOnError)
		configFile := fs.String("config", "", "configuration file")
		deviceName := fs.String("device", "", "target device server name")
		rx := fs.Int("rx", -1, "rx channel number")
		txChannel := fs.String("tx-channel", "", "tx channel name")
		txDevice := fs.String("tx-device", ".", "tx device name (\".\" for loopback)")
		fs.Parse(args[1:])

		if *deviceName == "" || *rx < 0 || *txChannel == "" {
			fmt.Fprintln(os.Stderr, "nacctl: --device, --rx, and --tx-channel are required")
			os.Exit(usageExitCode)
		}

		a, cancel := bootApp(*configFile)
		defer cancel()

		if err := a.Subscribe(*deviceName, *rx, *txChannel, *txDevice); err != nil {
			fmt.Fprintf(os.Stderr, "nacctl: %v\n", err)
			os.Exit(1)
		}

	case "remove":
		fs := flag.NewFlagSet("subscription remove", flag.ExitOnError)
		configFile := fs.String("config", "", "configuration file")
		deviceName := fs.String("device", "", "target device server name")
		rx := fs.Int("rx", -1, "rx channel number")
		fs.Parse(args[1:])

		if *deviceName == "" || *rx < 0 {
			fmt.Fprintln(os.Stderr, "nacctl: --device and --rx are required")
			os.Exit(usageExitCode)
		}

		a, cancel := bootApp(*configFile)
		defer cancel()

		if err := a.Unsubscribe(*deviceName, *rx); err != nil {
			fmt.Fprintf(os.Stderr, "nacctl: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "nacctl: unknown subscription subcommand %q\n", args[0])
		os.Exit(usageExitCode)
	}
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "nacctl: encode output: %v\n", err)
		os.Exit(1)
	}
}

type deviceJSON struct {
	Name         string `json:"name"`
	IPv4         string `json:"ipv4"`
	ChannelCount [2]int `json:"channel_count"`
	ARCVersion   string `json:"arc_version"`
	CMCVersion   string `json:"cmc_version"`
	SampleRate   uint32 `json:"sample_rate"`
}

func toDeviceJSON(d *model.Device) deviceJSON {
	return deviceJSON{
		Name:         d.ServerName,
		IPv4:         d.IPv4,
		ChannelCount: [2]int{d.RXCount, d.TXCount},
		ARCVersion:   d.ARC.Version.String(),
		CMCVersion:   d.CMC.Version.String(),
		SampleRate:   d.SampleRate,
	}
}

type channelJSON struct {
	Type         string `json:"type"`
	Number       int    `json:"number"`
	Name         string `json:"name"`
	FriendlyName string `json:"friendly_name,omitempty"`
	StatusCode   *int   `json:"status_code,omitempty"`
	Subscription string `json:"subscription,omitempty"`
}

func toRXChannelJSON(a *app.App, rx *model.RxChannel) channelJSON {
	status := rx.StatusCode
	c := channelJSON{
		Type:         "rx",
		Number:       rx.Number,
		Name:         rx.Name,
		FriendlyName: rx.FriendlyName,
		StatusCode:   &status,
	}
	if sub, err := a.Registry().Subscription(rx.Subscription); err == nil && sub.HasTX {
		if tx, err := a.Registry().TxChannel(sub.TX); err == nil {
			c.Subscription = tx.Name
		}
	}
	return c
}

func toTXChannelJSON(tx *model.TxChannel) channelJSON {
	return channelJSON{
		Type:         "tx",
		Number:       tx.Number,
		Name:         tx.Name,
		FriendlyName: tx.FriendlyName,
	}
}

type subscriptionJSON struct {
	RXChannel  int      `json:"rx_channel"`
	TXChannel  *string  `json:"tx_channel"`
	StatusCode int      `json:"status_code"`
	StatusText []string `json:"status_text"`
}

func toSubscriptionJSON(a *app.App, rx *model.RxChannel, sub *model.Subscription) subscriptionJSON {
	out := subscriptionJSON{
		RXChannel:  rx.Number,
		StatusCode: sub.StatusCode,
		StatusText: model.StatusText(sub.StatusCode),
	}
	if sub.HasTX {
		if tx, err := a.Registry().TxChannel(sub.TX); err == nil {
			name := tx.Name
			out.TXChannel = &name
		}
	}
	return out
}
