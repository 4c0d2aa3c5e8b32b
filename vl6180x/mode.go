// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import "fmt"

// OperatingMode is the measurement mode the sensor is in.
type OperatingMode uint8

// Operating modes.
const (
	ModePoweredOff OperatingMode = iota
	ModeReady
	ModeRangeContinuous
	ModeAmbientContinuous
	ModeInterleavedContinuous
)

func (m OperatingMode) String() string {
	switch m {
	case ModePoweredOff:
		return "PoweredOff"
	case ModeReady:
		return "Ready"
	case ModeRangeContinuous:
		return "RangeContinuous"
	case ModeAmbientContinuous:
		return "AmbientContinuous"
	case ModeInterleavedContinuous:
		return "InterleavedContinuous"
	default:
		return fmt.Sprintf("OperatingMode(%d)", uint8(m))
	}
}

// operation identifies a mode gated operation.
type operation uint8

const (
	opRead operation = iota
	opStartRangeSingle
	opStartAmbientSingle
	opPollSingle
	opStartRangeContinuous
	opStopRangeContinuous
	opStartAmbientContinuous
	opStopAmbientContinuous
	opStartInterleaved
	opStopInterleaved
	opConfigure
	opPowerOff
	opPowerOn
)

// allowed lists the modes each operation is valid in.
var allowed = map[operation][]OperatingMode{
	opRead:                   {ModeReady, ModeRangeContinuous, ModeAmbientContinuous, ModeInterleavedContinuous},
	opStartRangeSingle:       {ModeReady, ModeAmbientContinuous},
	opStartAmbientSingle:     {ModeReady, ModeRangeContinuous},
	opPollSingle:             {ModeReady},
	opStartRangeContinuous:   {ModeReady},
	opStopRangeContinuous:    {ModeRangeContinuous},
	opStartAmbientContinuous: {ModeReady},
	opStopAmbientContinuous:  {ModeAmbientContinuous},
	opStartInterleaved:       {ModeReady},
	opStopInterleaved:        {ModeInterleavedContinuous},
	opConfigure:              {ModeReady},
	opPowerOff:               {ModeReady, ModeRangeContinuous, ModeAmbientContinuous, ModeInterleavedContinuous},
	opPowerOn:                {ModePoweredOff},
}

func (o operation) allowedIn(m OperatingMode) bool {
	for _, a := range allowed[o] {
		if a == m {
			return true
		}
	}
	return false
}
