// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package vl6180xtest is a simulated VL6180X to test code using the
// vl6180x package without hardware.
//
// The simulation keeps a register file and implements the measurement
// protocol: start registers schedule a measurement completing after Latency
// reads of the interrupt status, interrupts are cleared through
// SYSTEM__INTERRUPT_CLEAR and continuous modes restart after each clear.
// Threshold conditions are not evaluated, a completed measurement raises the
// configured interrupt event whatever its value.
package vl6180xtest

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Registers of interest to the simulation.
const (
	RegModelID          = 0x000
	RegModeGPIO1        = 0x011
	RegInterruptConfig  = 0x014
	RegInterruptClear   = 0x015
	RegFreshOutOfReset  = 0x016
	RegRangeStart       = 0x018
	RegCrosstalkHeight  = 0x021
	RegPartToPartOffset = 0x024
	RegRangeCheck       = 0x02D
	RegALSStart         = 0x038
	RegRangeStatus      = 0x04D
	RegALSStatus        = 0x04E
	RegInterruptStatus  = 0x04F
	RegALSValue         = 0x050
	RegRangeValue       = 0x062
	RegRangeRaw         = 0x064
	RegRangeScaler      = 0x096
	RegDeviceAddress    = 0x212
	RegInterleaved      = 0x2A3
)

const regCount = 0x400

// ErrPoweredOff is returned by Tx while the device is held in shutdown or
// booting.
var ErrPoweredOff = errors.New("vl6180xtest: device not responding")

// Sensor is a simulated VL6180X. It implements i2c.BusCloser and answers at
// a single address, 0x29 after power on.
//
// The exported fields can be changed between calls to alter the next
// measurements.
type Sensor struct {
	// Range is the raw range value of the next measurements.
	Range byte
	// RangeStatus is the error code reported with range measurements.
	RangeStatus byte
	// Ambient is the raw ALS value of the next measurements.
	Ambient uint16
	// AmbientStatus is the error code reported with ALS measurements.
	AmbientStatus byte
	// Latency is the number of interrupt status reads before a measurement
	// completes. 0 means the next read sees it.
	Latency int
	// BootDelay is the number of transactions that fail after power on.
	BootDelay int
	// Sample, when set, is called on every completed measurement and
	// overrides Range and Ambient.
	Sample func(n int) (rng byte, ambient uint16)

	mu        sync.Mutex
	regs      [regCount]byte
	addr      uint16
	powered   bool
	bootLeft  int
	samples   int
	rangeDue  int
	alsDue    int
	rangeCont bool
	alsCont   bool
	xshut     *ShutdownPin
	irq       *gpiotest.Pin
	writes    map[uint16]int
}

// New returns a powered on device, fresh out of reset.
func New() *Sensor {
	s := &Sensor{irq: &gpiotest.Pin{N: "GPIO1"}}
	s.xshut = &ShutdownPin{Pin: &gpiotest.Pin{N: "XSHUT", L: gpio.High}, s: s}
	s.reset()
	s.powered = true
	return s
}

// XSHUT returns the pin powering the device, high is on.
func (s *Sensor) XSHUT() *ShutdownPin {
	return s.xshut
}

// GPIO1 returns the interrupt output pin. It is driven only when GPIO1 is
// configured as interrupt output.
func (s *Sensor) GPIO1() *gpiotest.Pin {
	return s.irq
}

func (s *Sensor) String() string {
	return "vl6180xtest"
}

// SetSpeed implements i2c.Bus.
func (s *Sensor) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (s *Sensor) Close() error {
	return nil
}

// Address returns the address the device answers at.
func (s *Sensor) Address() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Reg returns the value of an 8 bit register.
func (s *Sensor) Reg(reg uint16) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[reg%regCount]
}

// Reg16 returns the value of a 16 bit register.
func (s *Sensor) Reg16(reg uint16) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint16(s.regs[reg%regCount])<<8 | uint16(s.regs[(reg+1)%regCount])
}

// Poke sets a register without triggering any side effect.
func (s *Sensor) Poke(reg uint16, v byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[reg%regCount] = v
}

// Writes returns the number of writes to reg since power on.
func (s *Sensor) Writes(reg uint16) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[reg]
}

// Tx implements i2c.Bus.
func (s *Sensor) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.powered {
		return ErrPoweredOff
	}
	if s.bootLeft > 0 {
		s.bootLeft--
		return ErrPoweredOff
	}
	if addr != s.addr {
		return fmt.Errorf("vl6180xtest: no device at address 0x%02x", addr)
	}
	if len(w) < 2 {
		return fmt.Errorf("vl6180xtest: expected a 16 bit register address, got %d bytes", len(w))
	}
	reg := uint16(w[0])<<8 | uint16(w[1])
	if int(reg)+len(w)-2 > regCount || int(reg)+len(r) > regCount {
		return fmt.Errorf("vl6180xtest: register 0x%03x out of range", reg)
	}
	for i, v := range w[2:] {
		s.write(reg+uint16(i), v)
	}
	for i := range r {
		r[i] = s.read(reg + uint16(i))
	}
	s.updateIRQ()
	return nil
}

func (s *Sensor) read(reg uint16) byte {
	if reg == RegInterruptStatus {
		s.tick()
	}
	return s.regs[reg]
}

func (s *Sensor) write(reg uint16, v byte) {
	s.writes[reg]++
	switch reg {
	case RegRangeStart:
		s.rangeCont, s.rangeDue = start(v, s.rangeCont, s.rangeDue, s.Latency)
		// SYSRANGE__START bit 0 self clears.
		s.regs[reg] = v &^ 1
	case RegALSStart:
		s.alsCont, s.alsDue = start(v, s.alsCont, s.alsDue, s.Latency)
		s.regs[reg] = v &^ 1
	case RegInterruptClear:
		if v&1 != 0 {
			s.regs[RegInterruptStatus] &^= 0x07
			if s.rangeCont {
				s.rangeDue = s.Latency
			}
		}
		if v&2 != 0 {
			s.regs[RegInterruptStatus] &^= 0x38
			if s.alsCont {
				s.alsDue = s.Latency
			}
		}
		if v&4 != 0 {
			s.regs[RegInterruptStatus] &^= 0xC0
		}
	case RegDeviceAddress:
		s.regs[reg] = v & 0x7F
		s.addr = uint16(v & 0x7F)
	default:
		s.regs[reg] = v
	}
}

// start returns the new continuous flag and countdown after a write to a
// start register.
func start(v byte, cont bool, due, latency int) (bool, int) {
	switch v & 3 {
	case 1:
		return cont, latency
	case 3:
		if cont {
			return false, -1
		}
		return true, latency
	}
	return cont, due
}

// tick advances the pending measurements by one status read.
func (s *Sensor) tick() {
	if s.rangeDue >= 0 {
		if s.rangeDue == 0 {
			s.rangeDue = -1
			s.completeRange()
		} else {
			s.rangeDue--
		}
	}
	if s.alsDue >= 0 {
		if s.alsDue == 0 {
			s.alsDue = -1
			s.completeAmbient()
			if s.regs[RegInterleaved] == 1 {
				s.completeRange()
			}
		} else {
			s.alsDue--
		}
	}
}

func (s *Sensor) sample() (byte, uint16) {
	s.samples++
	if s.Sample != nil {
		return s.Sample(s.samples)
	}
	return s.Range, s.Ambient
}

func (s *Sensor) completeRange() {
	rng, _ := s.sample()
	s.regs[RegRangeStatus] = s.RangeStatus<<4 | 1
	s.regs[RegRangeValue] = rng
	s.regs[RegRangeRaw] = rng
	if mode := s.regs[RegInterruptConfig] & 0x07; mode != 0 {
		s.regs[RegInterruptStatus] = s.regs[RegInterruptStatus]&^0x07 | mode
	}
}

func (s *Sensor) completeAmbient() {
	_, als := s.sample()
	s.regs[RegALSStatus] = s.AmbientStatus<<4 | 1
	s.regs[RegALSValue] = byte(als >> 8)
	s.regs[RegALSValue+1] = byte(als)
	if mode := s.regs[RegInterruptConfig] & 0x38; mode != 0 {
		s.regs[RegInterruptStatus] = s.regs[RegInterruptStatus]&^0x38 | mode
	}
}

// updateIRQ drives GPIO1 from the interrupt status when it is configured as
// interrupt output.
func (s *Sensor) updateIRQ() {
	mode := s.regs[RegModeGPIO1]
	if mode&0x1E != 0x10 {
		return
	}
	active := s.regs[RegInterruptStatus] != 0
	if mode&0x20 == 0 {
		active = !active
	}
	l := gpio.Low
	if active {
		l = gpio.High
	}
	_ = s.irq.Out(l)
}

// reset loads the power on register values.
func (s *Sensor) reset() {
	s.regs = [regCount]byte{}
	s.regs[RegModelID] = 0xB4
	s.regs[0x001] = 1 // model rev major
	s.regs[0x002] = 3 // model rev minor
	s.regs[0x003] = 1 // module rev major
	s.regs[0x004] = 2 // module rev minor
	s.regs[0x006] = 0x48
	s.regs[0x007] = 0x1C
	s.regs[RegFreshOutOfReset] = 1
	s.regs[RegCrosstalkHeight] = 20
	s.regs[RegRangeCheck] = 0x11
	s.regs[RegRangeScaler+1] = 253
	s.regs[RegDeviceAddress] = 0x29
	s.addr = 0x29
	s.rangeDue, s.alsDue = -1, -1
	s.rangeCont, s.alsCont = false, false
	s.writes = map[uint16]int{}
	s.bootLeft = s.BootDelay
}

func (s *Sensor) setPower(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on && !s.powered {
		s.reset()
	}
	s.powered = on
	if !on {
		_ = s.irq.Out(gpio.Low)
	}
}

// ShutdownPin is the XSHUT input of the simulated device. Driving it low
// powers the device off, driving it high powers it on fresh out of reset.
type ShutdownPin struct {
	*gpiotest.Pin
	// Err, when set, is returned by Out.
	Err error

	s *Sensor
}

// Out implements gpio.PinOut.
func (p *ShutdownPin) Out(l gpio.Level) error {
	if p.Err != nil {
		return p.Err
	}
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.s.setPower(l == gpio.High)
	return nil
}

var _ i2c.BusCloser = &Sensor{}
var _ gpio.PinOut = &ShutdownPin{}
