// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

var errNoPin = errors.New("no pin")

// sensor is the state shared by all the handles of one device.
type sensor struct {
	mu         sync.Mutex
	d          *i2c.Dev
	cfg        Config
	debug      DebugF
	didTimeout bool
	mode       OperatingMode
	// gen is bumped on every mode transition so stale handles can be
	// detected even when the sensor comes back to the same mode.
	gen     uint64
	dynamic bool
}

// enter switches the sensor to mode and returns the handle representing it.
// s.mu must be held.
func (s *sensor) enter(mode OperatingMode) handle {
	s.debug("vl6180x: %s -> %s", s.mode, mode)
	s.mode = mode
	s.gen++
	return handle{s: s, mode: mode, gen: s.gen}
}

func (s *sensor) String() string {
	return fmt.Sprintf("VL6180X{%s}", s.d)
}

// handle is a reference to the sensor valid as long as the sensor stays in
// the mode it was created for.
type handle struct {
	s    *sensor
	mode OperatingMode
	gen  uint64
}

// lock takes the sensor lock. On success the caller must call unlock.
func (h *handle) lock() error {
	h.s.mu.Lock()
	if h.s.dynamic || h.s.gen != h.gen {
		h.s.mu.Unlock()
		return ErrHandleReleased
	}
	return nil
}

func (h *handle) unlock() {
	h.s.mu.Unlock()
}

// reads holds the operations valid in every powered on mode.
type reads struct {
	h handle
}

// String implements conn.Resource.
func (r *reads) String() string {
	return r.h.s.String()
}

// Mode returns the mode the handle was created for.
func (r *reads) Mode() OperatingMode {
	return r.h.mode
}

// Config returns a copy of the active configuration.
func (r *reads) Config() Config {
	r.h.s.mu.Lock()
	defer r.h.s.mu.Unlock()
	return r.h.s.cfg
}

// EnableDebug routes the register accesses and mode transitions to f.
func (r *reads) EnableDebug(f DebugF) {
	r.h.s.mu.Lock()
	defer r.h.s.mu.Unlock()
	r.h.s.debug = f
}

// ReadRange returns the last range measurement, or ErrResultNotReady if no
// measurement completed since the last read.
func (r *reads) ReadRange() (physic.Distance, error) {
	if err := r.h.lock(); err != nil {
		return 0, err
	}
	defer r.h.unlock()
	return r.h.s.readRange(false)
}

// ReadRangeBlocking waits for a range measurement, polling the interrupt
// status at most Config.IOTimeout() times.
func (r *reads) ReadRangeBlocking() (physic.Distance, error) {
	if err := r.h.lock(); err != nil {
		return 0, err
	}
	defer r.h.unlock()
	return r.h.s.readRange(true)
}

// ReadAmbient returns the last raw ambient light measurement, or
// ErrResultNotReady.
func (r *reads) ReadAmbient() (uint16, error) {
	if err := r.h.lock(); err != nil {
		return 0, err
	}
	defer r.h.unlock()
	return r.h.s.readAmbient(false)
}

// ReadAmbientBlocking waits for a raw ambient light measurement.
func (r *reads) ReadAmbientBlocking() (uint16, error) {
	if err := r.h.lock(); err != nil {
		return 0, err
	}
	defer r.h.unlock()
	return r.h.s.readAmbient(true)
}

// ReadAmbientLux returns the last ambient light measurement in lux, or
// ErrResultNotReady.
func (r *reads) ReadAmbientLux() (float64, error) {
	if err := r.h.lock(); err != nil {
		return 0, err
	}
	defer r.h.unlock()
	return r.h.s.readAmbientLux(false)
}

// ReadAmbientLuxBlocking waits for an ambient light measurement in lux.
func (r *reads) ReadAmbientLuxBlocking() (float64, error) {
	if err := r.h.lock(); err != nil {
		return 0, err
	}
	defer r.h.unlock()
	return r.h.s.readAmbientLux(true)
}

// InterruptStatus returns RESULT__INTERRUPT_STATUS_GPIO.
func (r *reads) InterruptStatus() (InterruptStatus, error) {
	if err := r.h.lock(); err != nil {
		return 0, err
	}
	defer r.h.unlock()
	return r.h.s.interruptStatus()
}

// ClearRangeInterrupt clears the range interrupt.
func (r *reads) ClearRangeInterrupt() error {
	return r.clear(clearRangeInterrupt)
}

// ClearAmbientInterrupt clears the ambient interrupt.
func (r *reads) ClearAmbientInterrupt() error {
	return r.clear(clearAmbientInterrupt)
}

// ClearErrorInterrupt clears the error interrupt.
func (r *reads) ClearErrorInterrupt() error {
	return r.clear(clearErrorInterrupt)
}

// ClearAllInterrupts clears the range, ambient and error interrupts.
func (r *reads) ClearAllInterrupts() error {
	return r.clear(clearAllInterrupts)
}

func (r *reads) clear(mask byte) error {
	if err := r.h.lock(); err != nil {
		return err
	}
	defer r.h.unlock()
	return r.h.s.clearInterrupts(mask)
}

// InterruptAsserted reports whether the GPIO1 line connected to pin is
// asserted. GPIO1 is configured active high.
func (r *reads) InterruptAsserted(pin gpio.PinIn) bool {
	return pin.Read() == gpio.High
}

// Identification reads the model and module identification registers.
func (r *reads) Identification() (Identification, error) {
	if err := r.h.lock(); err != nil {
		return Identification{}, err
	}
	defer r.h.unlock()
	return r.h.s.identification()
}

// RangeDiagnostics reads the intermediate results of the last range
// measurement.
func (r *reads) RangeDiagnostics() (RangeDiagnostics, error) {
	if err := r.h.lock(); err != nil {
		return RangeDiagnostics{}, err
	}
	defer r.h.unlock()
	return r.h.s.rangeDiagnostics()
}

// powerOff drives XSHUT low and returns the PoweredOff handle.
func (r *reads) powerOff(pin gpio.PinOut) (*PoweredOff, error) {
	if err := r.h.lock(); err != nil {
		return nil, err
	}
	defer r.h.unlock()
	if err := r.h.s.powerOff(pin); err != nil {
		return nil, err
	}
	return &PoweredOff{h: r.h.s.enter(ModePoweredOff)}, nil
}

func (s *sensor) powerOff(pin gpio.PinOut) error {
	if pin == nil {
		return &PinError{Err: errNoPin}
	}
	if err := pin.Out(gpio.Low); err != nil {
		return &PinError{Err: err}
	}
	return nil
}

// powerOnAndInit drives XSHUT high, waits for the boot to complete and
// initializes the device.
func (s *sensor) powerOnAndInit(pin gpio.PinOut) error {
	if pin == nil {
		return &PinError{Err: errNoPin}
	}
	if err := pin.Out(gpio.High); err != nil {
		return &PinError{Err: err}
	}
	// The device boots at the default address.
	s.d.Addr = DefaultAddress
	if err := s.waitBooted(); err != nil {
		return err
	}
	if s.cfg.address != DefaultAddress {
		if err := s.writeByte(regI2CSlaveDeviceAddress, byte(s.cfg.address)); err != nil {
			return err
		}
		s.d.Addr = s.cfg.address
	}
	return s.init()
}

// Dev is a handle to a VL6180X in Ready mode.
//
// Measurements can be started in single shot or continuous mode. Starting a
// continuous mode returns a new handle and releases this one.
type Dev struct {
	reads
}

// NewI2C returns a device that communicates over I²C to a VL6180X. The
// device is identified and initialized. The Config can be nil, defaults are
// then used, and it is copied so later changes to it have no effect.
func NewI2C(b i2c.Bus, cfg *Config) (*Dev, error) {
	c := NewConfig()
	if cfg != nil {
		c = *cfg
	}
	s := &sensor{
		d:     &i2c.Dev{Bus: b, Addr: c.address},
		cfg:   c,
		debug: noop,
		mode:  ModeReady,
		gen:   1,
	}
	if err := s.init(); err != nil {
		return nil, fmt.Errorf("vl6180x: failed to initialize: %w", err)
	}
	return &Dev{reads{handle{s: s, mode: ModeReady, gen: s.gen}}}, nil
}

// Halt implements conn.Resource. No measurement runs in Ready mode, pending
// interrupts are cleared.
func (d *Dev) Halt() error {
	return d.ClearAllInterrupts()
}

// StartRangeSingle starts a single range measurement. Read it with
// ReadRange or ReadRangeBlocking.
func (d *Dev) StartRangeSingle() error {
	return d.startRangeSingle()
}

// StartAmbientSingle starts a single ambient light measurement. Read it with
// ReadAmbient, ReadAmbientLux or their blocking variants.
func (d *Dev) StartAmbientSingle() error {
	return d.startAmbientSingle()
}

// PollRangeSingleBlocking starts a single range measurement and waits for it.
func (d *Dev) PollRangeSingleBlocking() (physic.Distance, error) {
	if err := d.h.lock(); err != nil {
		return 0, err
	}
	defer d.h.unlock()
	if err := d.h.s.startRangeSingle(); err != nil {
		return 0, err
	}
	return d.h.s.readRange(true)
}

// PollAmbientSingleBlocking starts a single ambient light measurement and
// waits for the raw count.
func (d *Dev) PollAmbientSingleBlocking() (uint16, error) {
	if err := d.h.lock(); err != nil {
		return 0, err
	}
	defer d.h.unlock()
	if err := d.h.s.startAmbientSingle(); err != nil {
		return 0, err
	}
	return d.h.s.readAmbient(true)
}

// PollAmbientLuxSingleBlocking starts a single ambient light measurement and
// waits for it, in lux.
func (d *Dev) PollAmbientLuxSingleBlocking() (float64, error) {
	if err := d.h.lock(); err != nil {
		return 0, err
	}
	defer d.h.unlock()
	if err := d.h.s.startAmbientSingle(); err != nil {
		return 0, err
	}
	return d.h.s.readAmbientLux(true)
}

// StartRangeContinuous starts continuous range measurements, one every
// Config.RangeInterMeasurementPeriod().
func (d *Dev) StartRangeContinuous() (*RangeContinuous, error) {
	if err := d.h.lock(); err != nil {
		return nil, err
	}
	defer d.h.unlock()
	if err := d.h.s.toggleRangeContinuous(); err != nil {
		return nil, err
	}
	return &RangeContinuous{reads{d.h.s.enter(ModeRangeContinuous)}}, nil
}

// StartAmbientContinuous starts continuous ambient light measurements, one
// every Config.AmbientInterMeasurementPeriod().
func (d *Dev) StartAmbientContinuous() (*AmbientContinuous, error) {
	if err := d.h.lock(); err != nil {
		return nil, err
	}
	defer d.h.unlock()
	if err := d.h.s.toggleAmbientContinuous(); err != nil {
		return nil, err
	}
	return &AmbientContinuous{reads{d.h.s.enter(ModeAmbientContinuous)}}, nil
}

// StartInterleavedContinuous starts interleaved measurements: every ambient
// measurement is immediately followed by a range measurement, at
// Config.AmbientInterMeasurementPeriod().
//
// It fails with InvalidConfigurationValueError when
// (convergence+5) + integration*1.1 > period*0.9.
func (d *Dev) StartInterleavedContinuous() (*InterleavedContinuous, error) {
	if err := d.h.lock(); err != nil {
		return nil, err
	}
	defer d.h.unlock()
	if err := d.h.s.enableInterleaved(); err != nil {
		return nil, err
	}
	return &InterleavedContinuous{reads{d.h.s.enter(ModeInterleavedContinuous)}}, nil
}

// ChangeAddress changes the I²C address of the device. The new address is
// lost when the device is powered off.
func (d *Dev) ChangeAddress(addr uint16) error {
	if err := d.h.lock(); err != nil {
		return err
	}
	defer d.h.unlock()
	return d.h.s.changeAddress(addr)
}

func (s *sensor) changeAddress(addr uint16) error {
	c := s.cfg
	if err := c.SetAddress(addr); err != nil {
		return err
	}
	if err := s.writeByte(regI2CSlaveDeviceAddress, byte(addr)); err != nil {
		return err
	}
	s.cfg.address = addr
	s.d.Addr = addr
	return nil
}

// SetRangeScaling changes the range scaling factor, 1, 2 or 3.
func (d *Dev) SetRangeScaling(f uint8) error {
	if err := d.h.lock(); err != nil {
		return err
	}
	defer d.h.unlock()
	return d.h.s.changeRangeScaling(f)
}

func (s *sensor) changeRangeScaling(f uint8) error {
	c := s.cfg
	if err := c.SetRangeScaling(f); err != nil {
		return err
	}
	return s.setRangeScaling(f)
}

// PowerOff drives the XSHUT pin low. The device loses its configuration and
// address.
func (d *Dev) PowerOff(xshut gpio.PinOut) (*PoweredOff, error) {
	return d.powerOff(xshut)
}

// IntoDynamic releases all the handles and returns a Dynamic that checks the
// mode at runtime.
func (d *Dev) IntoDynamic() (*Dynamic, error) {
	if err := d.h.lock(); err != nil {
		return nil, err
	}
	defer d.h.unlock()
	d.h.s.dynamic = true
	d.h.s.gen++
	return &Dynamic{s: d.h.s}, nil
}

func (r *reads) startRangeSingle() error {
	if err := r.h.lock(); err != nil {
		return err
	}
	defer r.h.unlock()
	return r.h.s.startRangeSingle()
}

func (r *reads) startAmbientSingle() error {
	if err := r.h.lock(); err != nil {
		return err
	}
	defer r.h.unlock()
	return r.h.s.startAmbientSingle()
}

var _ conn.Resource = &Dev{}
