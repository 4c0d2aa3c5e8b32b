// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180xtest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

func readReg(t *testing.T, d *i2c.Dev, reg uint16, n int) []byte {
	t.Helper()
	r := make([]byte, n)
	if err := d.Tx([]byte{byte(reg >> 8), byte(reg)}, r); err != nil {
		t.Fatal(err)
	}
	return r
}

func writeReg(t *testing.T, d *i2c.Dev, reg uint16, v ...byte) {
	t.Helper()
	if err := d.Tx(append([]byte{byte(reg >> 8), byte(reg)}, v...), nil); err != nil {
		t.Fatal(err)
	}
}

func TestPowerOnValues(t *testing.T) {
	s := New()
	d := &i2c.Dev{Bus: s, Addr: 0x29}
	if diff := cmp.Diff([]byte{0xB4, 1, 3, 1, 2}, readReg(t, d, RegModelID, 5)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if got := readReg(t, d, RegFreshOutOfReset, 1)[0]; got != 1 {
		t.Fatalf("fresh %d", got)
	}
	if got := s.Reg16(RegRangeScaler); got != 253 {
		t.Fatalf("scaler %d", got)
	}
	if err := (&i2c.Dev{Bus: s, Addr: 0x30}).Tx([]byte{0, 0}, make([]byte, 1)); err == nil {
		t.Fatal("expected no device at 0x30")
	}
	if err := d.Tx([]byte{0}, nil); err == nil {
		t.Fatal("expected short address error")
	}
	if err := d.Tx([]byte{0x03, 0xFF}, make([]byte, 2)); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestMeasurement(t *testing.T) {
	s := New()
	s.Latency = 2
	s.Range = 77
	d := &i2c.Dev{Bus: s, Addr: 0x29}
	writeReg(t, d, RegInterruptConfig, 0x24)
	writeReg(t, d, RegRangeStart, 0x01)
	for i := 0; i < 2; i++ {
		if got := readReg(t, d, RegInterruptStatus, 1)[0]; got != 0 {
			t.Fatalf("poll %d: status 0x%02x", i, got)
		}
	}
	if got := readReg(t, d, RegInterruptStatus, 1)[0]; got != 0x04 {
		t.Fatalf("status 0x%02x", got)
	}
	if got := readReg(t, d, RegRangeValue, 1)[0]; got != 77 {
		t.Fatalf("range %d", got)
	}
	writeReg(t, d, RegInterruptClear, 0x01)
	if got := s.Reg(RegInterruptStatus); got != 0 {
		t.Fatalf("status 0x%02x after clear", got)
	}
	if s.Writes(RegRangeStart) != 1 {
		t.Fatal("write not counted")
	}
}

func TestContinuousAndInterleaved(t *testing.T) {
	s := New()
	s.Sample = func(n int) (byte, uint16) { return byte(n), uint16(n) }
	d := &i2c.Dev{Bus: s, Addr: 0x29}
	writeReg(t, d, RegInterruptConfig, 0x24)
	writeReg(t, d, RegInterleaved, 0x01)
	writeReg(t, d, RegALSStart, 0x03)
	if got := readReg(t, d, RegInterruptStatus, 1)[0]; got != 0x24 {
		t.Fatalf("status 0x%02x", got)
	}
	if diff := cmp.Diff([]byte{0, 1}, readReg(t, d, RegALSValue, 2)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	writeReg(t, d, RegInterruptClear, 0x07)
	// Restarted by the clear.
	if got := readReg(t, d, RegInterruptStatus, 1)[0]; got != 0x24 {
		t.Fatalf("status 0x%02x", got)
	}
	writeReg(t, d, RegALSStart, 0x03)
	writeReg(t, d, RegInterruptClear, 0x07)
	if got := readReg(t, d, RegInterruptStatus, 1)[0]; got != 0 {
		t.Fatalf("status 0x%02x after stop", got)
	}
}

func TestPins(t *testing.T) {
	s := New()
	d := &i2c.Dev{Bus: s, Addr: 0x29}
	writeReg(t, d, RegModeGPIO1, 0x30)
	writeReg(t, d, RegInterruptConfig, 0x04)
	writeReg(t, d, RegDeviceAddress, 0x40)
	d.Addr = 0x40
	writeReg(t, d, RegRangeStart, 0x01)
	readReg(t, d, RegInterruptStatus, 1)
	if s.GPIO1().Read() != gpio.High {
		t.Fatal("GPIO1 not asserted")
	}

	if err := s.XSHUT().Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := d.Tx([]byte{0, 0}, make([]byte, 1)); err != ErrPoweredOff {
		t.Fatalf("expected ErrPoweredOff, got %v", err)
	}
	if s.GPIO1().Read() != gpio.Low {
		t.Fatal("GPIO1 asserted while off")
	}
	s.BootDelay = 1
	if err := s.XSHUT().Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if s.Address() != 0x29 {
		t.Fatalf("address 0x%02x after reset", s.Address())
	}
	d.Addr = 0x29
	if err := d.Tx([]byte{0, 0}, make([]byte, 1)); err != ErrPoweredOff {
		t.Fatalf("expected ErrPoweredOff while booting, got %v", err)
	}
	if got := readReg(t, d, RegFreshOutOfReset, 1)[0]; got != 1 {
		t.Fatalf("fresh %d", got)
	}
	if s.String() != "vl6180xtest" || s.SetSpeed(0) != nil || s.Close() != nil {
		t.Fatal("unexpected bus behavior")
	}
}
