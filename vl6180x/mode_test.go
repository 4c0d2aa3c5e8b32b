// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"errors"
	"testing"

	"github.com/GermanBionicSystems/tofdevices/vl6180x/vl6180xtest"
	"periph.io/x/conn/v3/physic"
)

func newSim(t *testing.T, cfg *Config) (*vl6180xtest.Sensor, *Dev) {
	sim := vl6180xtest.New()
	d, err := NewI2C(sim, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sim, d
}

func TestNewI2CSimulated(t *testing.T) {
	sim, _ := newSim(t, nil)
	if v := sim.Reg(vl6180xtest.RegFreshOutOfReset); v != 0 {
		t.Fatalf("fresh flag %d", v)
	}
	if sim.Writes(0x207) != 1 || sim.Writes(0x030) != 1 {
		t.Fatal("private settings not loaded")
	}
	if v := sim.Reg(vl6180xtest.RegInterruptConfig); v != 0x24 {
		t.Fatalf("interrupt config 0x%02x", v)
	}
	if v := sim.Reg16(vl6180xtest.RegRangeScaler); v != 253 {
		t.Fatalf("range scaler %d", v)
	}
	if v := sim.Reg(0x120); v != 1 {
		t.Fatalf("ALS result scaler %d", v)
	}

	// A second driver on the same device takes the already initialized path.
	d, err := NewI2C(sim, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sim.Writes(0x207) != 1 {
		t.Fatal("private settings loaded twice")
	}
	if d.Mode() != ModeReady {
		t.Fatalf("mode %s", d.Mode())
	}
}

func TestRangeContinuous(t *testing.T) {
	sim, d := newSim(t, nil)
	sim.Range = 50
	rc, err := d.StartRangeContinuous()
	if err != nil {
		t.Fatal(err)
	}
	if rc.Mode() != ModeRangeContinuous {
		t.Fatalf("mode %s", rc.Mode())
	}
	if _, err := d.StartRangeContinuous(); err != ErrHandleReleased {
		t.Fatalf("second start: expected ErrHandleReleased, got %v", err)
	}
	for _, want := range []byte{50, 60, 70} {
		sim.Range = want
		got, err := rc.ReadRangeBlocking()
		if err != nil {
			t.Fatal(err)
		}
		if got != physic.Distance(want)*physic.MilliMetre {
			t.Fatalf("got %s, want %dmm", got, want)
		}
	}
	// Ambient single shots run alongside.
	sim.Ambient = 1000
	if err := rc.StartAmbientSingle(); err != nil {
		t.Fatal(err)
	}
	if v, err := rc.ReadAmbientBlocking(); err != nil || v != 1000 {
		t.Fatalf("got %d, %v", v, err)
	}

	d2, err := rc.StopRangeContinuous()
	if err != nil {
		t.Fatal(err)
	}
	if d2.Mode() != ModeReady {
		t.Fatalf("mode %s", d2.Mode())
	}
	if _, err := rc.ReadRange(); err != ErrHandleReleased {
		t.Fatalf("expected ErrHandleReleased, got %v", err)
	}
	if _, err := rc.StopRangeContinuous(); err != ErrHandleReleased {
		t.Fatalf("expected ErrHandleReleased, got %v", err)
	}
	// Coming back to Ready does not revive the first handle.
	if _, err := d.PollRangeSingleBlocking(); err != ErrHandleReleased {
		t.Fatalf("expected ErrHandleReleased, got %v", err)
	}
	if _, err := d2.PollRangeSingleBlocking(); err != nil {
		t.Fatal(err)
	}
}

func TestAmbientContinuous(t *testing.T) {
	sim, d := newSim(t, nil)
	sim.Ambient = 500
	ac, err := d.StartAmbientContinuous()
	if err != nil {
		t.Fatal(err)
	}
	lux, err := ac.ReadAmbientLuxBlocking()
	if err != nil {
		t.Fatal(err)
	}
	// 0.32*100/20 * 500/100
	if lux < 7.99 || lux > 8.01 {
		t.Fatalf("got %g lux", lux)
	}
	sim.Range = 33
	if err := ac.StartRangeSingle(); err != nil {
		t.Fatal(err)
	}
	if got, err := ac.ReadRangeBlocking(); err != nil || got != 33*physic.MilliMetre {
		t.Fatalf("got %s, %v", got, err)
	}
	if _, err := ac.StopAmbientContinuous(); err != nil {
		t.Fatal(err)
	}
	if sim.Writes(vl6180xtest.RegALSStart) != 2 {
		t.Fatalf("ALS start written %d times", sim.Writes(vl6180xtest.RegALSStart))
	}
}

func TestInterleavedContinuous(t *testing.T) {
	sim, d := newSim(t, nil)
	// One poll between samples so the range result read after the ambient
	// one is still the first.
	sim.Latency = 1
	sim.Sample = func(n int) (byte, uint16) {
		return byte(n), uint16(n) * 10
	}
	ic, err := d.StartInterleavedContinuous()
	if err != nil {
		t.Fatal(err)
	}
	if sim.Reg(vl6180xtest.RegInterleaved) != 1 {
		t.Fatal("interleaved mode not enabled")
	}
	amb, err := ic.ReadAmbientBlocking()
	if err != nil {
		t.Fatal(err)
	}
	rng, err := ic.ReadRange()
	if err != nil {
		t.Fatal(err)
	}
	if amb != 10 || rng != 2*physic.MilliMetre {
		t.Fatalf("got %d, %s", amb, rng)
	}
	if _, err := ic.StopInterleavedContinuous(); err != nil {
		t.Fatal(err)
	}
	if sim.Reg(vl6180xtest.RegInterleaved) != 0 {
		t.Fatal("interleaved mode not disabled")
	}
}

func TestReadSimulatedErrors(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.SetIOTimeout(10); err != nil {
		t.Fatal(err)
	}
	sim, d := newSim(t, &cfg)

	sim.RangeStatus = 7
	_, err := d.PollRangeSingleBlocking()
	if diff := (&RangeStatusError{Status: RangeMaxConvergence}).Error(); errString(err) != diff {
		t.Fatalf("got %v", err)
	}
	st, err := d.InterruptStatus()
	if err != nil {
		t.Fatal(err)
	}
	if !st.HasStatus(NoRangeEvents) {
		t.Fatalf("range interrupt not cleared: %s", st)
	}

	sim.RangeStatus = 0
	sim.Latency = 100
	if _, err := d.PollRangeSingleBlocking(); err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	sim.Latency = 0
	if _, err := d.ReadRange(); err != ErrResultNotReady {
		t.Fatalf("expected ErrResultNotReady, got %v", err)
	}
}

func TestInterruptPin(t *testing.T) {
	sim, d := newSim(t, nil)
	irq := sim.GPIO1()
	if d.InterruptAsserted(irq) {
		t.Fatal("asserted before any measurement")
	}
	if err := d.StartRangeSingle(); err != nil {
		t.Fatal(err)
	}
	st, err := d.InterruptStatus()
	if err != nil {
		t.Fatal(err)
	}
	if !st.HasStatus(RangeNewSampleReady) || !d.InterruptAsserted(irq) {
		t.Fatalf("status %s, pin %s", st, irq.Read())
	}
	if _, err := d.ReadRange(); err != nil {
		t.Fatal(err)
	}
	if d.InterruptAsserted(irq) {
		t.Fatal("still asserted after read")
	}
}

func TestPowerCycle(t *testing.T) {
	sim, d := newSim(t, nil)
	if err := d.ChangeAddress(0x30); err != nil {
		t.Fatal(err)
	}
	rc, err := d.StartRangeContinuous()
	if err != nil {
		t.Fatal(err)
	}
	p, err := rc.PowerOff(sim.XSHUT())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rc.ReadRange(); err != ErrHandleReleased {
		t.Fatalf("expected ErrHandleReleased, got %v", err)
	}
	sim.BootDelay = 3
	d, err = p.PowerOnAndInit(sim.XSHUT())
	if err != nil {
		t.Fatal(err)
	}
	if sim.Address() != 0x30 {
		t.Fatalf("address 0x%02x", sim.Address())
	}
	if sim.Writes(0x207) != 1 {
		t.Fatal("private settings not reloaded")
	}
	if _, err := p.PowerOnAndInit(sim.XSHUT()); err != ErrHandleReleased {
		t.Fatalf("expected ErrHandleReleased, got %v", err)
	}
	if _, err := d.PollRangeSingleBlocking(); err != nil {
		t.Fatal(err)
	}
}

func TestPowerOnTimeout(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.SetIOTimeout(2); err != nil {
		t.Fatal(err)
	}
	sim, d := newSim(t, &cfg)
	p, err := d.PowerOff(sim.XSHUT())
	if err != nil {
		t.Fatal(err)
	}
	sim.BootDelay = 3
	if _, err := p.PowerOnAndInit(sim.XSHUT()); err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	// The handle stays valid, the device finishes booting.
	if _, err := p.PowerOnAndInit(sim.XSHUT()); err != nil {
		t.Fatal(err)
	}
}

func TestPowerOffPinError(t *testing.T) {
	sim, d := newSim(t, nil)
	boom := errors.New("boom")
	sim.XSHUT().Err = boom
	_, err := d.PowerOff(sim.XSHUT())
	var e *PinError
	if !errors.As(err, &e) || !errors.Is(err, boom) {
		t.Fatalf("expected PinError, got %v", err)
	}
	if _, err := d.PowerOff(nil); !errors.As(err, &e) {
		t.Fatalf("expected PinError, got %v", err)
	}
	// Still Ready.
	if _, err := d.PollRangeSingleBlocking(); err != nil {
		t.Fatal(err)
	}
}
