// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Dynamic is a VL6180X whose mode is checked at runtime instead of being
// encoded in the handle type. It is useful when the mode is only known at
// runtime, for example when it comes from a configuration file.
//
// Methods not valid in the current mode return an InvalidMethodError and
// have no effect.
type Dynamic struct {
	s *sensor
}

// lock takes the sensor lock if op is allowed in the current mode. On
// success the caller must unlock s.mu.
func (d *Dynamic) lock(op operation) error {
	d.s.mu.Lock()
	if !op.allowedIn(d.s.mode) {
		m := d.s.mode
		d.s.mu.Unlock()
		return &InvalidMethodError{Mode: m}
	}
	return nil
}

func (d *Dynamic) String() string {
	return d.s.String()
}

// Mode returns the current operating mode.
func (d *Dynamic) Mode() OperatingMode {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return d.s.mode
}

// Config returns a copy of the active configuration.
func (d *Dynamic) Config() Config {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return d.s.cfg
}

// EnableDebug routes the register accesses and mode transitions to f.
func (d *Dynamic) EnableDebug(f DebugF) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.debug = f
}

// TimeoutOccurred reports whether a blocking read timed out since the last
// call.
func (d *Dynamic) TimeoutOccurred() bool {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	t := d.s.didTimeout
	d.s.didTimeout = false
	return t
}

// Halt implements conn.Resource. It stops the continuous measurement, if
// any, and goes back to Ready.
func (d *Dynamic) Halt() error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	var err error
	switch d.s.mode {
	case ModeRangeContinuous:
		err = d.s.toggleRangeContinuous()
	case ModeAmbientContinuous:
		err = d.s.toggleAmbientContinuous()
	case ModeInterleavedContinuous:
		err = d.s.disableInterleaved()
	default:
		return nil
	}
	if err != nil {
		return err
	}
	d.s.enter(ModeReady)
	return nil
}

// TryReadRange is ReadRange.
func (d *Dynamic) TryReadRange() (physic.Distance, error) {
	if err := d.lock(opRead); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	return d.s.readRange(false)
}

// TryReadRangeBlocking is ReadRangeBlocking.
func (d *Dynamic) TryReadRangeBlocking() (physic.Distance, error) {
	if err := d.lock(opRead); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	return d.s.readRange(true)
}

// TryReadAmbient is ReadAmbient.
func (d *Dynamic) TryReadAmbient() (uint16, error) {
	if err := d.lock(opRead); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	return d.s.readAmbient(false)
}

// TryReadAmbientBlocking is ReadAmbientBlocking.
func (d *Dynamic) TryReadAmbientBlocking() (uint16, error) {
	if err := d.lock(opRead); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	return d.s.readAmbient(true)
}

// TryReadAmbientLux is ReadAmbientLux.
func (d *Dynamic) TryReadAmbientLux() (float64, error) {
	if err := d.lock(opRead); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	return d.s.readAmbientLux(false)
}

// TryReadAmbientLuxBlocking is ReadAmbientLuxBlocking.
func (d *Dynamic) TryReadAmbientLuxBlocking() (float64, error) {
	if err := d.lock(opRead); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	return d.s.readAmbientLux(true)
}

// TryInterruptStatus is InterruptStatus.
func (d *Dynamic) TryInterruptStatus() (InterruptStatus, error) {
	if err := d.lock(opRead); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	return d.s.interruptStatus()
}

// TryClearRangeInterrupt is ClearRangeInterrupt.
func (d *Dynamic) TryClearRangeInterrupt() error {
	return d.clear(clearRangeInterrupt)
}

// TryClearAmbientInterrupt is ClearAmbientInterrupt.
func (d *Dynamic) TryClearAmbientInterrupt() error {
	return d.clear(clearAmbientInterrupt)
}

// TryClearErrorInterrupt is ClearErrorInterrupt.
func (d *Dynamic) TryClearErrorInterrupt() error {
	return d.clear(clearErrorInterrupt)
}

// TryClearAllInterrupts is ClearAllInterrupts.
func (d *Dynamic) TryClearAllInterrupts() error {
	return d.clear(clearAllInterrupts)
}

func (d *Dynamic) clear(mask byte) error {
	if err := d.lock(opRead); err != nil {
		return err
	}
	defer d.s.mu.Unlock()
	return d.s.clearInterrupts(mask)
}

// TryIdentification is Identification.
func (d *Dynamic) TryIdentification() (Identification, error) {
	if err := d.lock(opRead); err != nil {
		return Identification{}, err
	}
	defer d.s.mu.Unlock()
	return d.s.identification()
}

// TryRangeDiagnostics is RangeDiagnostics.
func (d *Dynamic) TryRangeDiagnostics() (RangeDiagnostics, error) {
	if err := d.lock(opRead); err != nil {
		return RangeDiagnostics{}, err
	}
	defer d.s.mu.Unlock()
	return d.s.rangeDiagnostics()
}

// TryStartRangeSingle is StartRangeSingle. Valid in Ready and
// AmbientContinuous.
func (d *Dynamic) TryStartRangeSingle() error {
	if err := d.lock(opStartRangeSingle); err != nil {
		return err
	}
	defer d.s.mu.Unlock()
	return d.s.startRangeSingle()
}

// TryStartAmbientSingle is StartAmbientSingle. Valid in Ready and
// RangeContinuous.
func (d *Dynamic) TryStartAmbientSingle() error {
	if err := d.lock(opStartAmbientSingle); err != nil {
		return err
	}
	defer d.s.mu.Unlock()
	return d.s.startAmbientSingle()
}

// TryPollRangeSingleBlocking is PollRangeSingleBlocking. Valid in Ready.
func (d *Dynamic) TryPollRangeSingleBlocking() (physic.Distance, error) {
	if err := d.lock(opPollSingle); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	if err := d.s.startRangeSingle(); err != nil {
		return 0, err
	}
	return d.s.readRange(true)
}

// TryPollAmbientSingleBlocking is PollAmbientSingleBlocking. Valid in Ready.
func (d *Dynamic) TryPollAmbientSingleBlocking() (uint16, error) {
	if err := d.lock(opPollSingle); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	if err := d.s.startAmbientSingle(); err != nil {
		return 0, err
	}
	return d.s.readAmbient(true)
}

// TryPollAmbientLuxSingleBlocking is PollAmbientLuxSingleBlocking. Valid in
// Ready.
func (d *Dynamic) TryPollAmbientLuxSingleBlocking() (float64, error) {
	if err := d.lock(opPollSingle); err != nil {
		return 0, err
	}
	defer d.s.mu.Unlock()
	if err := d.s.startAmbientSingle(); err != nil {
		return 0, err
	}
	return d.s.readAmbientLux(true)
}

// TryStartRangeContinuous switches from Ready to RangeContinuous.
func (d *Dynamic) TryStartRangeContinuous() error {
	return d.transition(opStartRangeContinuous, ModeRangeContinuous, d.s.toggleRangeContinuous)
}

// TryStopRangeContinuous switches from RangeContinuous to Ready.
func (d *Dynamic) TryStopRangeContinuous() error {
	return d.transition(opStopRangeContinuous, ModeReady, d.s.toggleRangeContinuous)
}

// TryStartAmbientContinuous switches from Ready to AmbientContinuous.
func (d *Dynamic) TryStartAmbientContinuous() error {
	return d.transition(opStartAmbientContinuous, ModeAmbientContinuous, d.s.toggleAmbientContinuous)
}

// TryStopAmbientContinuous switches from AmbientContinuous to Ready.
func (d *Dynamic) TryStopAmbientContinuous() error {
	return d.transition(opStopAmbientContinuous, ModeReady, d.s.toggleAmbientContinuous)
}

// TryStartInterleavedContinuous switches from Ready to
// InterleavedContinuous.
func (d *Dynamic) TryStartInterleavedContinuous() error {
	return d.transition(opStartInterleaved, ModeInterleavedContinuous, d.s.enableInterleaved)
}

// TryStopInterleavedContinuous switches from InterleavedContinuous to Ready.
func (d *Dynamic) TryStopInterleavedContinuous() error {
	return d.transition(opStopInterleaved, ModeReady, d.s.disableInterleaved)
}

// TryPowerOff drives the XSHUT pin low. Valid in every mode but PoweredOff.
func (d *Dynamic) TryPowerOff(xshut gpio.PinOut) error {
	return d.transition(opPowerOff, ModePoweredOff, func() error {
		return d.s.powerOff(xshut)
	})
}

// TryPowerOnAndInit powers on and initializes the device. Valid in
// PoweredOff.
func (d *Dynamic) TryPowerOnAndInit(xshut gpio.PinOut) error {
	return d.transition(opPowerOn, ModeReady, func() error {
		return d.s.powerOnAndInit(xshut)
	})
}

// TryChangeAddress is ChangeAddress. Valid in Ready.
func (d *Dynamic) TryChangeAddress(addr uint16) error {
	if err := d.lock(opConfigure); err != nil {
		return err
	}
	defer d.s.mu.Unlock()
	return d.s.changeAddress(addr)
}

// TrySetRangeScaling is SetRangeScaling. Valid in Ready.
func (d *Dynamic) TrySetRangeScaling(f uint8) error {
	if err := d.lock(opConfigure); err != nil {
		return err
	}
	defer d.s.mu.Unlock()
	return d.s.changeRangeScaling(f)
}

// transition runs f and switches to mode if op is allowed and f succeeds.
func (d *Dynamic) transition(op operation, mode OperatingMode, f func() error) error {
	if err := d.lock(op); err != nil {
		return err
	}
	defer d.s.mu.Unlock()
	if err := f(); err != nil {
		return err
	}
	d.s.enter(mode)
	return nil
}

var _ conn.Resource = &Dynamic{}
