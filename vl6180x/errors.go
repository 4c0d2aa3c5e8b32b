// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a blocking read did not see the result
	// within Config.IOTimeout() polls of the interrupt status.
	ErrTimeout = errors.New("vl6180x: timeout waiting for measurement")
	// ErrResultNotReady is returned by non-blocking reads when the
	// measurement has not completed yet.
	ErrResultNotReady = errors.New("vl6180x: result not ready")
	// ErrHandleReleased is returned when a handle is used after the sensor
	// left the mode the handle represents, or after IntoDynamic().
	ErrHandleReleased = errors.New("vl6180x: handle released by a mode change")
)

// InvalidDeviceError is returned when IDENTIFICATION__MODEL_ID does not hold
// the VL6180X model ID.
type InvalidDeviceError struct {
	ModelID byte
}

func (e *InvalidDeviceError) Error() string {
	return fmt.Sprintf("vl6180x: invalid model id 0x%02x, expected 0x%02x", e.ModelID, modelID)
}

// BusError wraps an error returned by the I²C bus.
type BusError struct {
	// Op is "read" or "write".
	Op       string
	Register uint16
	Err      error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("vl6180x: %s register 0x%03x: %v", e.Op, e.Register, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// PinError wraps an error returned by the XSHUT pin. It is kept apart from
// BusError since the pin and the bus are unrelated drivers.
type PinError struct {
	Err error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("vl6180x: shutdown pin: %v", e.Err)
}

func (e *PinError) Unwrap() error {
	return e.Err
}

// InvalidAddressError is returned for I²C addresses outside 0x08-0x77, the
// reserved 7 bit addresses can't be used.
type InvalidAddressError struct {
	Address uint16
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("vl6180x: invalid i2c address 0x%02x, must be between 0x%02x and 0x%02x", e.Address, MinAddress, MaxAddress)
}

// InvalidScalingFactorError is returned for range scaling factors other than
// 1, 2 or 3.
type InvalidScalingFactorError struct {
	Factor uint8
}

func (e *InvalidScalingFactorError) Error() string {
	return fmt.Sprintf("vl6180x: invalid range scaling factor %d, must be 1, 2 or 3", e.Factor)
}

// InvalidConfigurationValueError is returned when a configuration value is
// out of range, or when the configuration is not compatible with the
// requested mode.
type InvalidConfigurationValueError struct {
	Value uint16
}

func (e *InvalidConfigurationValueError) Error() string {
	return fmt.Sprintf("vl6180x: invalid configuration value %d", e.Value)
}

// RangeStatusError is returned when the sensor reports a range measurement
// error.
type RangeStatusError struct {
	Status RangeStatus
}

func (e *RangeStatusError) Error() string {
	return fmt.Sprintf("vl6180x: range error: %s", e.Status)
}

// AmbientStatusError is returned when the sensor reports an ambient light
// measurement error.
type AmbientStatusError struct {
	Status AmbientStatus
}

func (e *AmbientStatusError) Error() string {
	return fmt.Sprintf("vl6180x: ambient error: %s", e.Status)
}

// UnknownRegisterCodeError is returned when a status register holds a code
// not documented in the datasheet.
type UnknownRegisterCodeError struct {
	Code byte
}

func (e *UnknownRegisterCodeError) Error() string {
	return fmt.Sprintf("vl6180x: unknown register code 0x%x", e.Code)
}

// InvalidMethodError is returned by Dynamic when the method is not valid in
// the current operating mode.
type InvalidMethodError struct {
	Mode OperatingMode
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("vl6180x: method not valid in %s mode", e.Mode)
}
