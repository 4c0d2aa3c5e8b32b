// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"periph.io/x/conn/v3/physic"
)

// luxResolution is the ALS count to lux factor at gain 1 and 100ms
// integration. Refer to datasheet section 2.13.4.
const luxResolution = 0.32

// Identification is the content of the IDENTIFICATION__* registers.
type Identification struct {
	ModelID   byte
	ModelRev  [2]byte // major, minor
	ModuleRev [2]byte // major, minor
	Date      uint16
	Time      uint16
}

// RangeDiagnostics holds the raw and intermediate values of the last range
// measurement. Useful to tune crosstalk compensation and convergence time.
type RangeDiagnostics struct {
	Raw                      byte
	ReturnRate               uint16 // MHz, 9.7 fixed point
	ReferenceRate            uint16 // MHz, 9.7 fixed point
	ReturnSignalCount        uint32
	ReferenceSignalCount     uint32
	ReturnAmbientCount       uint32
	ReferenceAmbientCount    uint32
	ReturnConvergenceTime    uint32
	ReferenceConvergenceTime uint32
}

func (s *sensor) startRangeSingle() error {
	return s.writeByte(regSysRangeStart, startSingle)
}

func (s *sensor) startAmbientSingle() error {
	return s.writeByte(regSysALSStart, startSingle)
}

func (s *sensor) toggleRangeContinuous() error {
	return s.writeByte(regSysRangeStart, startContinuousToggle)
}

func (s *sensor) toggleAmbientContinuous() error {
	return s.writeByte(regSysALSStart, startContinuousToggle)
}

// enableInterleaved starts interleaved mode. The range measurement is
// triggered by each ambient measurement so it has to fit in the ambient
// period.
func (s *sensor) enableInterleaved() error {
	if !s.cfg.interleavedCompatible() {
		return &InvalidConfigurationValueError{Value: s.cfg.ambientIMP}
	}
	if err := s.writeByte(regInterleavedModeEnable, interleavedEnable); err != nil {
		return err
	}
	return s.toggleAmbientContinuous()
}

func (s *sensor) disableInterleaved() error {
	if err := s.toggleAmbientContinuous(); err != nil {
		return err
	}
	return s.writeByte(regInterleavedModeEnable, interleavedDisable)
}

func (s *sensor) interruptStatus() (InterruptStatus, error) {
	v, err := s.readByte(regResultInterruptStatusGPIO)
	return InterruptStatus(v), err
}

func (s *sensor) clearInterrupts(mask byte) error {
	return s.writeByte(regSystemInterruptClear, mask)
}

// waitEvent polls the interrupt status until ready reports true. A single
// poll is done when blocking is false.
func (s *sensor) waitEvent(ready func(InterruptStatus) bool, blocking bool) error {
	polls := uint16(1)
	if blocking {
		polls = s.cfg.ioTimeout
	}
	for i := uint16(0); i < polls; i++ {
		st, err := s.interruptStatus()
		if err != nil {
			return err
		}
		if ready(st) {
			return nil
		}
	}
	if !blocking {
		return ErrResultNotReady
	}
	s.didTimeout = true
	s.debug("vl6180x: timeout after %d polls", polls)
	return ErrTimeout
}

func (s *sensor) readRange(blocking bool) (physic.Distance, error) {
	if err := s.waitEvent(InterruptStatus.RangeEvent, blocking); err != nil {
		return 0, err
	}
	raw, err := s.readByte(regResultRangeStatus)
	if err != nil {
		return 0, err
	}
	status, err := DecodeRangeStatus(raw)
	if err == nil && status != RangeNoError {
		err = &RangeStatusError{Status: status}
	}
	if err != nil {
		if err2 := s.clearInterrupts(clearRangeInterrupt); err2 != nil {
			return 0, err2
		}
		return 0, err
	}
	v, err := s.readByte(regResultRangeVal)
	if err != nil {
		return 0, err
	}
	if err := s.clearInterrupts(clearRangeInterrupt); err != nil {
		return 0, err
	}
	return s.rangeToDistance(v), nil
}

func (s *sensor) rangeToDistance(raw byte) physic.Distance {
	return physic.Distance(raw) * physic.Distance(s.cfg.rangeScaling) * physic.MilliMetre
}

func (s *sensor) readAmbient(blocking bool) (uint16, error) {
	if err := s.waitEvent(InterruptStatus.AmbientEvent, blocking); err != nil {
		return 0, err
	}
	raw, err := s.readByte(regResultALSStatus)
	if err != nil {
		return 0, err
	}
	status, err := DecodeAmbientStatus(raw)
	if err == nil && status != AmbientNoError {
		err = &AmbientStatusError{Status: status}
	}
	if err != nil {
		if err2 := s.clearInterrupts(clearAmbientInterrupt); err2 != nil {
			return 0, err2
		}
		return 0, err
	}
	v, err := s.readWord(regResultALSVal)
	if err != nil {
		return 0, err
	}
	if err := s.clearInterrupts(clearAmbientInterrupt); err != nil {
		return 0, err
	}
	return v, nil
}

func (s *sensor) readAmbientLux(blocking bool) (float64, error) {
	v, err := s.readAmbient(blocking)
	if err != nil {
		return 0, err
	}
	return s.ambientToLux(v), nil
}

func (s *sensor) ambientToLux(raw uint16) float64 {
	return luxResolution * 100 / s.cfg.AmbientAnalogueGain() * (float64(raw) / float64(s.cfg.ambientIntegration))
}

func (s *sensor) identification() (Identification, error) {
	var id Identification
	var b [5]byte
	if err := s.read(uint16(regIdentificationModelID), b[:]); err != nil {
		return id, err
	}
	id.ModelID = b[0]
	id.ModelRev = [2]byte{b[1], b[2]}
	id.ModuleRev = [2]byte{b[3], b[4]}
	var err error
	if id.Date, err = s.readWord(regIdentificationDate); err != nil {
		return id, err
	}
	if id.Time, err = s.readWord(regIdentificationTime); err != nil {
		return id, err
	}
	return id, nil
}

func (s *sensor) rangeDiagnostics() (RangeDiagnostics, error) {
	var r RangeDiagnostics
	var err error
	if r.Raw, err = s.readByte(regResultRangeRaw); err != nil {
		return r, err
	}
	if r.ReturnRate, err = s.readWord(regResultRangeReturnRate); err != nil {
		return r, err
	}
	if r.ReferenceRate, err = s.readWord(regResultRangeReferenceRate); err != nil {
		return r, err
	}
	for _, v := range []struct {
		reg register32
		dst *uint32
	}{
		{regResultRangeReturnSignalCount, &r.ReturnSignalCount},
		{regResultRangeReferenceSignalCount, &r.ReferenceSignalCount},
		{regResultRangeReturnAmbCount, &r.ReturnAmbientCount},
		{regResultRangeReferenceAmbCount, &r.ReferenceAmbientCount},
		{regResultRangeReturnConvTime, &r.ReturnConvergenceTime},
		{regResultRangeReferenceConvTime, &r.ReferenceConvergenceTime},
	} {
		if *v.dst, err = s.readDword(v.reg); err != nil {
			return r, err
		}
	}
	return r, nil
}
