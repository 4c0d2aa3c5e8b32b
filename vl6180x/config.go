// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import "fmt"

const (
	// DefaultAddress is the power on I²C address of the VL6180X.
	DefaultAddress uint16 = 0x29
	// MinAddress is the lowest usable 7 bit I²C address.
	MinAddress uint16 = 0x08
	// MaxAddress is the highest usable 7 bit I²C address.
	MaxAddress uint16 = 0x77

	maxInterMeasurementPeriod = 2550
)

// InterruptMode selects the condition that raises the range or ambient
// interrupt on GPIO1.
type InterruptMode uint8

// Interrupt modes. Refer to SYSTEM__INTERRUPT_CONFIG_GPIO in the datasheet.
const (
	InterruptDisabled InterruptMode = iota
	InterruptLevelLow
	InterruptLevelHigh
	InterruptOutOfWindow
	InterruptNewSampleReady
)

func (m InterruptMode) String() string {
	switch m {
	case InterruptDisabled:
		return "Disabled"
	case InterruptLevelLow:
		return "LevelLow"
	case InterruptLevelHigh:
		return "LevelHigh"
	case InterruptOutOfWindow:
		return "OutOfWindow"
	case InterruptNewSampleReady:
		return "NewSampleReady"
	default:
		return fmt.Sprintf("InterruptMode(%d)", uint8(m))
	}
}

// Config holds the sensor configuration. The zero value is not valid, use
// NewConfig.
//
// Each setter either stores the value or returns an error and leaves the
// Config untouched.
type Config struct {
	ioMode2v8 bool
	address   uint16
	// ptpOffset is the part to part range offset in mm at 1x scaling.
	ptpOffset int16
	ioTimeout uint16

	rangeScaling         uint8
	readoutAveraging     uint8
	rangeMaxConvergence  uint8
	rangeIMP             uint16
	rangeVHVRate         uint8
	rangeInterruptMode   InterruptMode
	rangeThresholdLow    uint8
	rangeThresholdHigh   uint8
	ambientGainLevel     uint8
	ambientIntegration   uint16
	ambientIMP           uint16
	ambientInterruptMode InterruptMode
	ambientThresholdLow  uint16
	ambientThresholdHigh uint16
}

// NewConfig returns the datasheet recommended configuration.
func NewConfig() Config {
	return Config{
		ioMode2v8:            true,
		address:              DefaultAddress,
		ioTimeout:            500,
		rangeScaling:         1,
		readoutAveraging:     48,
		rangeMaxConvergence:  49,
		rangeIMP:             100,
		rangeVHVRate:         255,
		rangeInterruptMode:   InterruptNewSampleReady,
		rangeThresholdLow:    0,
		rangeThresholdHigh:   0xFF,
		ambientGainLevel:     6,
		ambientIntegration:   100,
		ambientIMP:           500,
		ambientInterruptMode: InterruptNewSampleReady,
		ambientThresholdLow:  0,
		ambientThresholdHigh: 0xFFFF,
	}
}

// IOMode2V8 reports whether the I/O level is 2.8V instead of 1.8V.
func (c Config) IOMode2V8() bool {
	return c.ioMode2v8
}

// SetIOMode2V8 selects 2.8V (true) or 1.8V (false) I/O.
func (c *Config) SetIOMode2V8(v bool) {
	c.ioMode2v8 = v
}

// Address returns the I²C address.
func (c Config) Address() uint16 {
	return c.address
}

// SetAddress sets the I²C address used to talk to the device.
func (c *Config) SetAddress(addr uint16) error {
	if addr < MinAddress || addr > MaxAddress {
		return &InvalidAddressError{Address: addr}
	}
	c.address = addr
	return nil
}

// PartToPartRangeOffset returns the factory calibrated range offset in mm,
// at 1x scaling. It is only meaningful after initialization.
func (c Config) PartToPartRangeOffset() int16 {
	return c.ptpOffset
}

// IOTimeout returns the number of interrupt status polls done by blocking
// reads before giving up.
func (c Config) IOTimeout() uint16 {
	return c.ioTimeout
}

// SetIOTimeout sets the number of polls done by blocking reads. It must be at
// least 1.
func (c *Config) SetIOTimeout(n uint16) error {
	if n == 0 {
		return &InvalidConfigurationValueError{Value: n}
	}
	c.ioTimeout = n
	return nil
}

// RangeScaling returns the range scaling factor.
func (c Config) RangeScaling() uint8 {
	return c.rangeScaling
}

// SetRangeScaling sets the range scaling factor, 1, 2 or 3. The measurable
// range is multiplied by the factor and the resolution divided by it.
func (c *Config) SetRangeScaling(f uint8) error {
	if f < 1 || f > 3 {
		return &InvalidScalingFactorError{Factor: f}
	}
	c.rangeScaling = f
	return nil
}

// ReadoutAveragingPeriodMultiplier returns READOUT__AVERAGING_SAMPLE_PERIOD.
func (c Config) ReadoutAveragingPeriodMultiplier() uint8 {
	return c.readoutAveraging
}

// SetReadoutAveragingPeriodMultiplier sets the readout averaging period. Each
// unit adds 64.5µs to the measurement, the default 48 is 4.3ms.
func (c *Config) SetReadoutAveragingPeriodMultiplier(v uint8) {
	c.readoutAveraging = v
}

// RangeMaxConvergenceTime returns the range max convergence time in ms.
func (c Config) RangeMaxConvergenceTime() uint8 {
	return c.rangeMaxConvergence
}

// SetRangeMaxConvergenceTime sets the range max convergence time, 2 to 63ms.
func (c *Config) SetRangeMaxConvergenceTime(ms uint8) error {
	if ms < 2 || ms > 63 {
		return &InvalidConfigurationValueError{Value: uint16(ms)}
	}
	c.rangeMaxConvergence = ms
	return nil
}

// RangeInterMeasurementPeriod returns the range continuous mode period in ms.
func (c Config) RangeInterMeasurementPeriod() uint16 {
	return c.rangeIMP
}

// SetRangeInterMeasurementPeriod sets the range continuous mode period. It
// must be a multiple of 10ms, at most 2550ms and leave 10% margin over the
// convergence time plus 5ms. The bound uses the convergence time configured
// at the time of the call.
func (c *Config) SetRangeInterMeasurementPeriod(ms uint16) error {
	// ms*0.9 >= conv+5, in integer math.
	lower := (uint32(c.rangeMaxConvergence) + 5) * 10
	if ms%10 != 0 || ms < 10 || ms > maxInterMeasurementPeriod || uint32(ms)*9 < lower {
		return &InvalidConfigurationValueError{Value: ms}
	}
	c.rangeIMP = ms
	return nil
}

// RangeVHVRecalibrationRate returns SYSRANGE__VHV_REPEAT_RATE.
func (c Config) RangeVHVRecalibrationRate() uint8 {
	return c.rangeVHVRate
}

// SetRangeVHVRecalibrationRate sets the number of range measurements between
// automatic VHV recalibrations. 0 disables them.
func (c *Config) SetRangeVHVRecalibrationRate(n uint8) {
	c.rangeVHVRate = n
}

// RangeInterruptMode returns the range interrupt mode.
func (c Config) RangeInterruptMode() InterruptMode {
	return c.rangeInterruptMode
}

// SetRangeInterruptMode sets the range interrupt mode.
func (c *Config) SetRangeInterruptMode(m InterruptMode) error {
	if m > InterruptNewSampleReady {
		return &InvalidConfigurationValueError{Value: uint16(m)}
	}
	c.rangeInterruptMode = m
	return nil
}

// RangeInterruptThresholds returns the raw range thresholds.
func (c Config) RangeInterruptThresholds() (low, high uint8) {
	return c.rangeThresholdLow, c.rangeThresholdHigh
}

// SetRangeInterruptThresholds sets the raw range thresholds used by the
// LevelLow, LevelHigh and OutOfWindow interrupt modes. The values are in
// counts, so in mm at 1x scaling.
func (c *Config) SetRangeInterruptThresholds(low, high uint8) error {
	if low > high {
		return &InvalidConfigurationValueError{Value: uint16(low)}
	}
	c.rangeThresholdLow, c.rangeThresholdHigh = low, high
	return nil
}

// AmbientAnalogueGainLevel returns the ambient gain level.
func (c Config) AmbientAnalogueGainLevel() uint8 {
	return c.ambientGainLevel
}

// SetAmbientAnalogueGainLevel sets the ambient gain level, 0 to 7. Levels map
// to gains 1.01, 1.28, 1.72, 2.60, 5.21, 10.32, 20 and 40.
func (c *Config) SetAmbientAnalogueGainLevel(l uint8) error {
	if l > 7 {
		return &InvalidConfigurationValueError{Value: uint16(l)}
	}
	c.ambientGainLevel = l
	return nil
}

// AmbientIntegrationPeriod returns the ambient integration period in ms.
func (c Config) AmbientIntegrationPeriod() uint16 {
	return c.ambientIntegration
}

// SetAmbientIntegrationPeriod sets the ambient integration period, 1 to
// 256ms.
func (c *Config) SetAmbientIntegrationPeriod(ms uint16) error {
	if ms < 1 || ms > 256 {
		return &InvalidConfigurationValueError{Value: ms}
	}
	c.ambientIntegration = ms
	return nil
}

// AmbientInterMeasurementPeriod returns the ambient continuous mode period in
// ms.
func (c Config) AmbientInterMeasurementPeriod() uint16 {
	return c.ambientIMP
}

// SetAmbientInterMeasurementPeriod sets the ambient continuous mode period. It
// must be a multiple of 10ms, at most 2550ms, and leave 10% margin over 1.1
// times the integration period configured at the time of the call.
func (c *Config) SetAmbientInterMeasurementPeriod(ms uint16) error {
	// ms*0.9 >= integ*1.1, in integer math.
	lower := uint32(c.ambientIntegration) * 11
	if ms%10 != 0 || ms < 10 || ms > maxInterMeasurementPeriod || uint32(ms)*9 < lower {
		return &InvalidConfigurationValueError{Value: ms}
	}
	c.ambientIMP = ms
	return nil
}

// AmbientInterruptMode returns the ambient interrupt mode.
func (c Config) AmbientInterruptMode() InterruptMode {
	return c.ambientInterruptMode
}

// SetAmbientInterruptMode sets the ambient interrupt mode.
func (c *Config) SetAmbientInterruptMode(m InterruptMode) error {
	if m > InterruptNewSampleReady {
		return &InvalidConfigurationValueError{Value: uint16(m)}
	}
	c.ambientInterruptMode = m
	return nil
}

// AmbientInterruptThresholds returns the raw ambient thresholds.
func (c Config) AmbientInterruptThresholds() (low, high uint16) {
	return c.ambientThresholdLow, c.ambientThresholdHigh
}

// SetAmbientInterruptThresholds sets the raw ambient thresholds, in counts.
func (c *Config) SetAmbientInterruptThresholds(low, high uint16) error {
	if low > high {
		return &InvalidConfigurationValueError{Value: low}
	}
	c.ambientThresholdLow, c.ambientThresholdHigh = low, high
	return nil
}

// InterruptConfig returns the SYSTEM__INTERRUPT_CONFIG_GPIO value, range mode
// in bits 2:0 and ambient mode in bits 5:3.
func (c Config) InterruptConfig() byte {
	return byte(c.rangeInterruptMode) | byte(c.ambientInterruptMode)<<3
}

// RangeScalerCode returns the RANGE_SCALER value for the scaling factor.
func (c Config) RangeScalerCode() uint16 {
	return rangeScalerCodes[c.rangeScaling]
}

// AmbientAnalogueGain returns the gain for the configured gain level.
func (c Config) AmbientAnalogueGain() float64 {
	return ambientGains[c.ambientGainLevel]
}

func (c Config) rangeIMPCode() byte {
	return byte(c.rangeIMP/10 - 1)
}

func (c Config) ambientIMPCode() byte {
	return byte(c.ambientIMP/10 - 1)
}

func (c Config) ambientIntegrationCode() uint16 {
	return c.ambientIntegration - 1
}

func (c Config) ambientGainCode() byte {
	return ambientGainCodes[c.ambientGainLevel]
}

// interleavedCompatible reports whether a range measurement fits in the
// ambient period: (conv+5) + integ*1.1 <= imp*0.9.
func (c Config) interleavedCompatible() bool {
	need := (uint32(c.rangeMaxConvergence)+5)*10 + uint32(c.ambientIntegration)*11
	return need <= uint32(c.ambientIMP)*9
}
