package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"eddystone-radar.klederson.com/internal/app"
	"eddystone-radar.klederson.com/internal/beacon"
	"eddystone-radar.klederson.com/internal/bluetooth"
	"eddystone-radar.klederson.com/internal/config"
	"eddystone-radar.klederson.com/internal/logging"
	"eddystone-radar.klederson.com/internal/metrics"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "eddystone-radar",
		Short: "Eddystone Radar - Terminal tracker for nearby Eddystone beacons",
		Long: `Eddystone Radar listens for Eddystone UID, EID, URL and telemetry frames,
keeps a live list of nearby beacons and drops the ones that stop
refreshing within the expiration window.

Requires sudo or CAP_NET_ADMIN capability for real Bluetooth scanning.
Use --demo flag for demonstration mode without Bluetooth hardware.`,
		SilenceUsage: true,
		RunE:         run,
	}
	config.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel, cfg.Headless)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []beacon.Option{beacon.WithExpiration(cfg.Expiration), beacon.WithLogger(log)}
	if cfg.MetricsAddr != "" {
		promReg := prometheus.NewRegistry()
		opts = append(opts, beacon.WithMetrics(beacon.NewMetrics(promReg)))
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, promReg, log); err != nil {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	bus := bluetooth.NewBus()
	var scanner beacon.ScanController
	if cfg.Demo {
		scanner = bluetooth.NewMockScanner(bus, config.DemoBeacons, config.DemoInterval, 1)
	} else {
		scanner = bluetooth.NewBLEScanner(bus, log)
	}
	reg := beacon.New(bus, scanner, opts...)

	if cfg.Headless {
		return runHeadless(ctx, reg, log)
	}
	return runTUI(reg, cfg, log)
}

func runTUI(reg *beacon.Registry, cfg config.Config, log *zap.Logger) error {
	model := app.New(reg, cfg.Adapter)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	detach := model.Attach(p)
	defer detach()

	if err := reg.Start(); err != nil {
		printPermissionHint(err)
		return err
	}

	_, err := p.Run()
	if stopErr := reg.Stop(); stopErr != nil {
		log.Warn("Stopping registry", zap.Error(stopErr))
	}
	return err
}

func runHeadless(ctx context.Context, reg *beacon.Registry, log *zap.Logger) error {
	reg.Subscribe(func(ev beacon.Event) {
		b := ev.Beacon
		log.Info("Beacon "+ev.Kind.String(),
			zap.String("uid", b.UID),
			zap.String("id", b.ID),
			zap.Stringer("frame", b.Kind),
			zap.Int("rssi", b.RSSI),
			zap.Float64("distance", b.Distance()),
			zap.String("url", b.URL),
			zap.Bool("telemetry", b.HasTelemetry),
			zap.Float64("temp", b.Temp),
			zap.Int("voltage", b.Voltage),
		)
	})

	if err := reg.Start(); err != nil {
		printPermissionHint(err)
		return err
	}
	<-ctx.Done()
	return reg.Stop()
}

func printPermissionHint(err error) {
	fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
	fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
	fmt.Fprintln(os.Stderr, "Try one of:")
	fmt.Fprintln(os.Stderr, "  sudo ./eddystone-radar")
	fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./eddystone-radar")
	fmt.Fprintln(os.Stderr, "  ./eddystone-radar --demo    (demo mode, no hardware needed)")
}
