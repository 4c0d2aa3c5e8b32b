// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"periph.io/x/conn/v3/gpio"
)

// PoweredOff is a handle to a VL6180X held in shutdown by its XSHUT pin.
type PoweredOff struct {
	h handle
}

func (p *PoweredOff) String() string {
	return p.h.s.String()
}

// PowerOnAndInit drives the XSHUT pin high, waits for the device to boot
// and initializes it with the current configuration.
//
// The device boots at DefaultAddress, the configured address is programmed
// again. On failure the handle stays valid.
func (p *PoweredOff) PowerOnAndInit(xshut gpio.PinOut) (*Dev, error) {
	if err := p.h.lock(); err != nil {
		return nil, err
	}
	defer p.h.unlock()
	if err := p.h.s.powerOnAndInit(xshut); err != nil {
		return nil, err
	}
	return &Dev{reads{p.h.s.enter(ModeReady)}}, nil
}
