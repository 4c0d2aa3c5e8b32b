// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import "fmt"

// RangeStatus is the error code in bits 7:4 of RESULT__RANGE_STATUS.
type RangeStatus uint8

// Range status codes. Codes 9 and 10 are not defined.
const (
	RangeNoError                  RangeStatus = 0
	RangeVcselContinuityTest      RangeStatus = 1
	RangeVcselWatchdogTest        RangeStatus = 2
	RangeVcselWatchdog            RangeStatus = 3
	RangePll1Lock                 RangeStatus = 4
	RangePll2Lock                 RangeStatus = 5
	RangeEarlyConvergenceEstimate RangeStatus = 6
	RangeMaxConvergence           RangeStatus = 7
	RangeIgnore                   RangeStatus = 8
	RangeMaxSignalToNoiseRatio    RangeStatus = 11
	RangeRawRangingAlgoUnderflow  RangeStatus = 12
	RangeRawRangingAlgoOverflow   RangeStatus = 13
	RangeRangingAlgoUnderflow     RangeStatus = 14
	RangeRangingAlgoOverflow      RangeStatus = 15
)

var rangeStatusNames = map[RangeStatus]string{
	RangeNoError:                  "NoError",
	RangeVcselContinuityTest:      "VcselContinuityTest",
	RangeVcselWatchdogTest:        "VcselWatchdogTest",
	RangeVcselWatchdog:            "VcselWatchdog",
	RangePll1Lock:                 "Pll1Lock",
	RangePll2Lock:                 "Pll2Lock",
	RangeEarlyConvergenceEstimate: "EarlyConvergenceEstimate",
	RangeMaxConvergence:           "MaxConvergence",
	RangeIgnore:                   "RangeIgnore",
	RangeMaxSignalToNoiseRatio:    "MaxSignalToNoiseRatio",
	RangeRawRangingAlgoUnderflow:  "RawRangingAlgoUnderflow",
	RangeRawRangingAlgoOverflow:   "RawRangingAlgoOverflow",
	RangeRangingAlgoUnderflow:     "RangingAlgoUnderflow",
	RangeRangingAlgoOverflow:      "RangingAlgoOverflow",
}

func (r RangeStatus) String() string {
	if n, ok := rangeStatusNames[r]; ok {
		return n
	}
	return fmt.Sprintf("RangeStatus(%d)", uint8(r))
}

// DecodeRangeStatus decodes the value of RESULT__RANGE_STATUS. It returns an
// UnknownRegisterCodeError for undefined codes.
func DecodeRangeStatus(raw byte) (RangeStatus, error) {
	s := RangeStatus(raw >> 4)
	if _, ok := rangeStatusNames[s]; !ok {
		return 0, &UnknownRegisterCodeError{Code: raw >> 4}
	}
	return s, nil
}

// AmbientStatus is the error code in bits 7:4 of RESULT__ALS_STATUS.
type AmbientStatus uint8

// Ambient status codes.
const (
	AmbientNoError   AmbientStatus = 0
	AmbientOverflow  AmbientStatus = 1
	AmbientUnderflow AmbientStatus = 2
)

func (a AmbientStatus) String() string {
	switch a {
	case AmbientNoError:
		return "NoError"
	case AmbientOverflow:
		return "Overflow"
	case AmbientUnderflow:
		return "Underflow"
	default:
		return fmt.Sprintf("AmbientStatus(%d)", uint8(a))
	}
}

// DecodeAmbientStatus decodes the value of RESULT__ALS_STATUS.
func DecodeAmbientStatus(raw byte) (AmbientStatus, error) {
	s := AmbientStatus(raw >> 4)
	if s > AmbientUnderflow {
		return 0, &UnknownRegisterCodeError{Code: raw >> 4}
	}
	return s, nil
}

// InterruptStatus is the value of RESULT__INTERRUPT_STATUS_GPIO.
//
// Bits 7:6 hold the error, bits 5:3 the ambient event and bits 2:0 the range
// event.
type InterruptStatus uint8

const (
	errorFieldMask   = 0xC0
	ambientFieldMask = 0x38
	rangeFieldMask   = 0x07
)

// InterruptCondition is a condition that can be tested on an
// InterruptStatus.
type InterruptCondition uint8

// Interrupt conditions.
const (
	NoError InterruptCondition = iota
	LaserSafetyError
	PllError
	NoAmbientEvents
	AmbientLevelLow
	AmbientLevelHigh
	AmbientOutOfWindow
	AmbientNewSampleReady
	NoRangeEvents
	RangeLevelLow
	RangeLevelHigh
	RangeOutOfWindow
	RangeNewSampleReady
)

var interruptConditions = [...]struct {
	name    string
	mask    uint8
	pattern uint8
}{
	NoError:               {"NoError", errorFieldMask, 0x00},
	LaserSafetyError:      {"LaserSafetyError", errorFieldMask, 0x40},
	PllError:              {"PllError", errorFieldMask, 0x80},
	NoAmbientEvents:       {"NoAmbientEvents", ambientFieldMask, 0x00},
	AmbientLevelLow:       {"AmbientLevelLow", ambientFieldMask, 0x08},
	AmbientLevelHigh:      {"AmbientLevelHigh", ambientFieldMask, 0x10},
	AmbientOutOfWindow:    {"AmbientOutOfWindow", ambientFieldMask, 0x18},
	AmbientNewSampleReady: {"AmbientNewSampleReady", ambientFieldMask, 0x20},
	NoRangeEvents:         {"NoRangeEvents", rangeFieldMask, 0x00},
	RangeLevelLow:         {"RangeLevelLow", rangeFieldMask, 0x01},
	RangeLevelHigh:        {"RangeLevelHigh", rangeFieldMask, 0x02},
	RangeOutOfWindow:      {"RangeOutOfWindow", rangeFieldMask, 0x03},
	RangeNewSampleReady:   {"RangeNewSampleReady", rangeFieldMask, 0x04},
}

func (c InterruptCondition) String() string {
	if int(c) < len(interruptConditions) {
		return interruptConditions[c].name
	}
	return fmt.Sprintf("InterruptCondition(%d)", uint8(c))
}

// HasStatus reports whether the condition holds. The No* conditions hold
// when their field is empty.
func (s InterruptStatus) HasStatus(c InterruptCondition) bool {
	if int(c) >= len(interruptConditions) {
		return false
	}
	ic := interruptConditions[c]
	return uint8(s)&ic.mask == ic.pattern
}

// RangeEvent reports whether any range event is pending.
func (s InterruptStatus) RangeEvent() bool {
	return s&rangeFieldMask != 0
}

// AmbientEvent reports whether any ambient event is pending.
func (s InterruptStatus) AmbientEvent() bool {
	return s&ambientFieldMask != 0
}

func (s InterruptStatus) String() string {
	return fmt.Sprintf("InterruptStatus(error=%d, ambient=%d, range=%d)", uint8(s)>>6, (uint8(s)>>3)&7, uint8(s)&7)
}
