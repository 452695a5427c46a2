package metrics

import (
	"runtime"
	"sync"
)

// Device is the execution context a run threads through its metrics. There
// is one compute budget and metrics hold it one at a time: Acquire blocks
// until the slot is free and the returned func gives it back. Workers is the
// fan out a metric may use internally while it holds the slot.
type Device struct {
	workers int
	lock    sync.Mutex
}

// NewDevice returns a Device allowing the given number of workers.
func NewDevice(workers int) *Device {
	if workers <= 0 || workers > runtime.GOMAXPROCS(0) {
		workers = 1
	}
	return &Device{workers: workers}
}

// Workers returns the fan out a metric may use.
func (d *Device) Workers() int {
	return d.workers
}

// Acquire takes exclusive use of the device until the returned func is called.
func (d *Device) Acquire() func() {
	d.lock.Lock()
	return d.lock.Unlock
}
