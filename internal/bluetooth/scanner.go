package bluetooth

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"
)

var eddystoneUUID = bluetooth.New16BitUUID(EddystoneServiceUUID)

// BLEScanner scans for Eddystone advertisements and publishes the decoded
// frames on a Bus.
type BLEScanner struct {
	adapter *bluetooth.Adapter
	bus     *Bus
	log     *zap.Logger
	running atomic.Bool
}

// NewBLEScanner creates a scanner on the default adapter.
func NewBLEScanner(bus *Bus, log *zap.Logger) *BLEScanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &BLEScanner{
		adapter: bluetooth.DefaultAdapter,
		bus:     bus,
		log:     log,
	}
}

// StartScanning enables the adapter and begins scanning in a goroutine.
func (s *BLEScanner) StartScanning() error {
	if s.running.Load() {
		return nil
	}
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	s.running.Store(true)
	go func() {
		if err := s.adapter.Scan(s.handle); err != nil {
			s.log.Warn("BLE scan ended", zap.Error(err))
		}
	}()
	return nil
}

func (s *BLEScanner) handle(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
	if !s.running.Load() {
		return
	}

	for _, sd := range result.ServiceData() {
		if sd.UUID != eddystoneUUID {
			continue
		}
		addr := result.Address.String()
		f, err := ParseServiceData(addr, int(result.RSSI), sd.Data)
		if err != nil {
			s.log.Debug("Dropping service data", zap.String("uid", addr), zap.Error(err))
			continue
		}
		s.bus.Publish(f)
	}
}

// StopScanning halts the scan.
func (s *BLEScanner) StopScanning() error {
	if !s.running.Swap(false) {
		return nil
	}
	if err := s.adapter.StopScan(); err != nil {
		return fmt.Errorf("failed to stop BLE scan: %w", err)
	}
	return nil
}
