// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

// init checks the device identity, loads the private settings when the
// device comes fresh out of reset and applies the configuration.
func (s *sensor) init() error {
	id, err := s.readByte(regIdentificationModelID)
	if err != nil {
		return err
	}
	if id != modelID {
		return &InvalidDeviceError{ModelID: id}
	}

	// The offset is stored divided by the active scaling factor. Keep it at
	// 1x so it can be rescaled.
	ptp, err := s.readByte(regSysRangePartToPartRangeOffset)
	if err != nil {
		return err
	}
	s.cfg.ptpOffset = int16(int8(ptp))

	fresh, err := s.readByte(regSystemFreshOutOfReset)
	if err != nil {
		return err
	}
	if fresh == freshOutOfReset {
		s.debug("vl6180x: fresh out of reset, loading private settings")
		for _, p := range privateSettings {
			if err := s.writePrivate(p.reg, p.value); err != nil {
				return err
			}
		}
		if err := s.writeByte(regSystemFreshOutOfReset, 0); err != nil {
			return err
		}
	} else {
		code, err := s.readWord(regRangeScaler)
		if err != nil {
			return err
		}
		scaling := scalingFromCode(code)
		s.debug("vl6180x: already initialized, active scaling %dx", scaling)
		s.cfg.ptpOffset *= int16(scaling)
	}
	return s.setConfiguration()
}

// scalingFromCode returns the scaling factor matching a RANGE_SCALER value.
// Unknown values are treated as 1x.
func scalingFromCode(code uint16) uint8 {
	switch code {
	case rangeScalerCodes[3]:
		return 3
	case rangeScalerCodes[2]:
		return 2
	default:
		return 1
	}
}

// setConfiguration writes the tunables from AN4545 "Recommended settings".
func (s *sensor) setConfiguration() error {
	c := &s.cfg
	if err := s.writeByte(regReadoutAveragingSamplePeriod, c.readoutAveraging); err != nil {
		return err
	}
	if err := s.writeByte(regSysALSAnalogueGain, c.ambientGainCode()); err != nil {
		return err
	}
	// ALS results are not scaled.
	if err := s.writeByte(regFirmwareResultScaler, 0x01); err != nil {
		return err
	}
	if err := s.writeByte(regSysRangeVHVRepeatRate, c.rangeVHVRate); err != nil {
		return err
	}
	if err := s.writeWord(regSysALSIntegrationPeriod, c.ambientIntegrationCode()); err != nil {
		return err
	}
	if err := s.writeByte(regSysALSIntermeasurementPeriod, c.ambientIMPCode()); err != nil {
		return err
	}
	// Trigger a VHV recalibration now.
	if err := s.writeByte(regSysRangeVHVRecalibrate, 0x01); err != nil {
		return err
	}
	if err := s.writeByte(regSysRangeIntermeasurementPeriod, c.rangeIMPCode()); err != nil {
		return err
	}
	if err := s.setInterrupts(); err != nil {
		return err
	}
	if err := s.writeByte(regSysRangeMaxConvergenceTime, c.rangeMaxConvergence); err != nil {
		return err
	}
	if err := s.writeByte(regInterleavedModeEnable, interleavedDisable); err != nil {
		return err
	}
	return s.setRangeScaling(c.rangeScaling)
}

func (s *sensor) setInterrupts() error {
	c := &s.cfg
	v := c.InterruptConfig()
	if err := s.writeByte(regSystemInterruptConfigGPIO, v); err != nil {
		return err
	}
	gpio1 := gpio1ActiveHigh | gpio1SelectOff
	if v != 0 {
		gpio1 = gpio1ActiveHigh | gpio1SelectInterrupt
	}
	if err := s.writeByte(regSystemModeGPIO1, gpio1); err != nil {
		return err
	}
	if err := s.writeByte(regSysRangeThreshHigh, c.rangeThresholdHigh); err != nil {
		return err
	}
	if err := s.writeByte(regSysRangeThreshLow, c.rangeThresholdLow); err != nil {
		return err
	}
	if err := s.writeWord(regSysALSThreshHigh, c.ambientThresholdHigh); err != nil {
		return err
	}
	return s.writeWord(regSysALSThreshLow, c.ambientThresholdLow)
}

// setRangeScaling programs the scaler and rescales the values that depend
// on it. RANGE_IGNORE_VALID_HEIGHT is left alone.
func (s *sensor) setRangeScaling(f uint8) error {
	if err := s.writeWord(regRangeScaler, rangeScalerCodes[f]); err != nil {
		return err
	}
	if err := s.writeByte(regSysRangePartToPartRangeOffset, byte(int8(s.cfg.ptpOffset/int16(f)))); err != nil {
		return err
	}
	if err := s.writeByte(regSysRangeCrosstalkValidHeight, defaultCrosstalkValidHeight/f); err != nil {
		return err
	}
	// Early convergence estimate only works at 1x.
	rce, err := s.readByte(regSysRangeRangeCheckEnables)
	if err != nil {
		return err
	}
	rce &^= earlyConvergenceEnable
	if f == 1 {
		rce |= earlyConvergenceEnable
	}
	if err := s.writeByte(regSysRangeRangeCheckEnables, rce); err != nil {
		return err
	}
	s.cfg.rangeScaling = f
	return nil
}

// waitBooted polls SYSTEM__FRESH_OUT_OF_RESET until the device reports it
// booted. Bus errors are expected while the device boots and are ignored.
func (s *sensor) waitBooted() error {
	for i := uint16(0); i < s.cfg.ioTimeout; i++ {
		if v, err := s.readByte(regSystemFreshOutOfReset); err == nil && v == freshOutOfReset {
			return nil
		}
	}
	return ErrTimeout
}
