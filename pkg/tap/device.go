package tap

import "sync"

// Device is a complete TAP front end: raw pins pass through the synchronizer
// before reaching the controller. Tick may be called from several goroutines.
type Device struct {
	cfg Config

	mu   sync.Mutex
	sync *Synchronizer
	ctrl *Controller
}

// NewDevice validates cfg and builds a device in Test-Logic-Reset.
func NewDevice(cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	syncer, err := NewSynchronizer(cfg.SyncStages)
	if err != nil {
		return nil, err
	}
	ctrl, err := NewController(cfg.IRWidth)
	if err != nil {
		return nil, err
	}
	return &Device{cfg: cfg, sync: syncer, ctrl: ctrl}, nil
}

// Tick runs one domain clock with the given raw pin levels. reset is the
// asynchronous controller reset and also clears the synchronizer.
func (d *Device) Tick(raw Signals, drShiftIn, reset bool) Outputs {
	d.mu.Lock()
	defer d.mu.Unlock()

	if reset {
		d.sync.Reset()
	}
	synced := d.sync.Sample(raw)
	return d.ctrl.Tick(Inputs{
		Signals:   synced,
		DRShiftIn: drShiftIn,
		Reset:     reset,
	})
}

// Controller exposes the state machine for inspection and hooks.
func (d *Device) Controller() *Controller {
	return d.ctrl
}

// Config returns the validated configuration the device was built with.
func (d *Device) Config() Config {
	return d.cfg
}
