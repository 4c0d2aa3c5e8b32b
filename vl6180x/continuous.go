// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"periph.io/x/conn/v3/gpio"
)

// RangeContinuous is a handle to a VL6180X measuring range continuously.
type RangeContinuous struct {
	reads
}

// StartAmbientSingle starts a single ambient light measurement while range
// measurements keep running.
func (r *RangeContinuous) StartAmbientSingle() error {
	return r.startAmbientSingle()
}

// StopRangeContinuous stops the range measurements and returns the Ready
// handle.
func (r *RangeContinuous) StopRangeContinuous() (*Dev, error) {
	if err := r.h.lock(); err != nil {
		return nil, err
	}
	defer r.h.unlock()
	if err := r.h.s.toggleRangeContinuous(); err != nil {
		return nil, err
	}
	return &Dev{reads{r.h.s.enter(ModeReady)}}, nil
}

// PowerOff drives the XSHUT pin low. Measurements stop with the device.
func (r *RangeContinuous) PowerOff(xshut gpio.PinOut) (*PoweredOff, error) {
	return r.powerOff(xshut)
}

// AmbientContinuous is a handle to a VL6180X measuring ambient light
// continuously.
type AmbientContinuous struct {
	reads
}

// StartRangeSingle starts a single range measurement while ambient light
// measurements keep running.
func (a *AmbientContinuous) StartRangeSingle() error {
	return a.startRangeSingle()
}

// StopAmbientContinuous stops the ambient light measurements and returns the
// Ready handle.
func (a *AmbientContinuous) StopAmbientContinuous() (*Dev, error) {
	if err := a.h.lock(); err != nil {
		return nil, err
	}
	defer a.h.unlock()
	if err := a.h.s.toggleAmbientContinuous(); err != nil {
		return nil, err
	}
	return &Dev{reads{a.h.s.enter(ModeReady)}}, nil
}

// PowerOff drives the XSHUT pin low.
func (a *AmbientContinuous) PowerOff(xshut gpio.PinOut) (*PoweredOff, error) {
	return a.powerOff(xshut)
}

// InterleavedContinuous is a handle to a VL6180X measuring ambient light
// and range alternately.
type InterleavedContinuous struct {
	reads
}

// StopInterleavedContinuous stops the measurements and returns the Ready
// handle.
func (i *InterleavedContinuous) StopInterleavedContinuous() (*Dev, error) {
	if err := i.h.lock(); err != nil {
		return nil, err
	}
	defer i.h.unlock()
	if err := i.h.s.disableInterleaved(); err != nil {
		return nil, err
	}
	return &Dev{reads{i.h.s.enter(ModeReady)}}, nil
}

// PowerOff drives the XSHUT pin low.
func (i *InterleavedContinuous) PowerOff(xshut gpio.PinOut) (*PoweredOff, error) {
	return i.powerOff(xshut)
}
