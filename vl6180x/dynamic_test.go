// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"errors"
	"testing"

	"github.com/GermanBionicSystems/tofdevices/vl6180x/vl6180xtest"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/physic"
)

func TestAllowed(t *testing.T) {
	modes := []OperatingMode{ModePoweredOff, ModeReady, ModeRangeContinuous, ModeAmbientContinuous, ModeInterleavedContinuous}
	// One row per operation, columns in the order of modes.
	want := map[operation][5]bool{
		opRead:                   {false, true, true, true, true},
		opStartRangeSingle:       {false, true, false, true, false},
		opStartAmbientSingle:     {false, true, true, false, false},
		opPollSingle:             {false, true, false, false, false},
		opStartRangeContinuous:   {false, true, false, false, false},
		opStopRangeContinuous:    {false, false, true, false, false},
		opStartAmbientContinuous: {false, true, false, false, false},
		opStopAmbientContinuous:  {false, false, false, true, false},
		opStartInterleaved:       {false, true, false, false, false},
		opStopInterleaved:        {false, false, false, false, true},
		opConfigure:              {false, true, false, false, false},
		opPowerOff:               {false, true, true, true, true},
		opPowerOn:                {true, false, false, false, false},
	}
	for op, row := range want {
		for i, m := range modes {
			if got := op.allowedIn(m); got != row[i] {
				t.Errorf("operation %d in %s: got %t", op, m, got)
			}
		}
	}
}

func invalid(t *testing.T, err error, mode OperatingMode) {
	t.Helper()
	if diff := cmp.Diff(&InvalidMethodError{Mode: mode}, err); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestDynamic(t *testing.T) {
	sim, d := newSim(t, nil)
	dyn, err := d.IntoDynamic()
	if err != nil {
		t.Fatal(err)
	}
	if err := d.StartRangeSingle(); err != ErrHandleReleased {
		t.Fatalf("expected ErrHandleReleased, got %v", err)
	}
	if _, err := d.IntoDynamic(); err != ErrHandleReleased {
		t.Fatalf("expected ErrHandleReleased, got %v", err)
	}
	if dyn.String() == "" || dyn.Mode() != ModeReady {
		t.Fatalf("%s in %s", dyn, dyn.Mode())
	}

	invalid(t, dyn.TryStopRangeContinuous(), ModeReady)
	invalid(t, dyn.TryStopInterleavedContinuous(), ModeReady)
	invalid(t, dyn.TryPowerOnAndInit(sim.XSHUT()), ModeReady)

	sim.Range = 80
	got, err := dyn.TryPollRangeSingleBlocking()
	if err != nil || got != 80*physic.MilliMetre {
		t.Fatalf("got %s, %v", got, err)
	}

	if err := dyn.TryStartRangeContinuous(); err != nil {
		t.Fatal(err)
	}
	if dyn.Mode() != ModeRangeContinuous {
		t.Fatalf("mode %s", dyn.Mode())
	}
	invalid(t, dyn.TryStartRangeContinuous(), ModeRangeContinuous)
	invalid(t, dyn.TryStartRangeSingle(), ModeRangeContinuous)
	invalid(t, dyn.TryChangeAddress(0x30), ModeRangeContinuous)
	invalid(t, dyn.TrySetRangeScaling(2), ModeRangeContinuous)
	_, err = dyn.TryPollAmbientSingleBlocking()
	invalid(t, err, ModeRangeContinuous)

	if _, err := dyn.TryReadRangeBlocking(); err != nil {
		t.Fatal(err)
	}
	sim.Ambient = 42
	if err := dyn.TryStartAmbientSingle(); err != nil {
		t.Fatal(err)
	}
	if v, err := dyn.TryReadAmbientBlocking(); err != nil || v != 42 {
		t.Fatalf("got %d, %v", v, err)
	}
	if err := dyn.TryStopRangeContinuous(); err != nil {
		t.Fatal(err)
	}

	if err := dyn.TryStartAmbientContinuous(); err != nil {
		t.Fatal(err)
	}
	if _, err := dyn.TryReadAmbientLuxBlocking(); err != nil {
		t.Fatal(err)
	}
	invalid(t, dyn.TryStartAmbientSingle(), ModeAmbientContinuous)
	if err := dyn.Halt(); err != nil {
		t.Fatal(err)
	}
	if dyn.Mode() != ModeReady {
		t.Fatalf("Halt left %s", dyn.Mode())
	}

	if err := dyn.TryStartInterleavedContinuous(); err != nil {
		t.Fatal(err)
	}
	invalid(t, dyn.TryStartAmbientContinuous(), ModeInterleavedContinuous)
	if err := dyn.TryStopInterleavedContinuous(); err != nil {
		t.Fatal(err)
	}

	if err := dyn.TrySetRangeScaling(3); err != nil {
		t.Fatal(err)
	}
	if dyn.Config().RangeScaling() != 3 || sim.Reg16(0x096) != 84 {
		t.Fatal("scaling not applied")
	}
	if err := dyn.TryChangeAddress(0x31); err != nil {
		t.Fatal(err)
	}
	if sim.Address() != 0x31 {
		t.Fatalf("address 0x%02x", sim.Address())
	}
}

func TestDynamicPower(t *testing.T) {
	sim, d := newSim(t, nil)
	dyn, err := d.IntoDynamic()
	if err != nil {
		t.Fatal(err)
	}
	if err := dyn.TryStartRangeContinuous(); err != nil {
		t.Fatal(err)
	}
	if err := dyn.TryPowerOff(sim.XSHUT()); err != nil {
		t.Fatal(err)
	}
	invalid(t, dyn.TryPowerOff(sim.XSHUT()), ModePoweredOff)
	_, err = dyn.TryReadRange()
	invalid(t, err, ModePoweredOff)
	_, err = dyn.TryInterruptStatus()
	invalid(t, err, ModePoweredOff)
	invalid(t, dyn.TryClearAllInterrupts(), ModePoweredOff)
	if err := dyn.Halt(); err != nil {
		t.Fatal(err)
	}

	if err := dyn.TryPowerOnAndInit(sim.XSHUT()); err != nil {
		t.Fatal(err)
	}
	if dyn.Mode() != ModeReady {
		t.Fatalf("mode %s", dyn.Mode())
	}
	id, err := dyn.TryIdentification()
	if err != nil {
		t.Fatal(err)
	}
	if id.ModelID != 0xB4 {
		t.Fatalf("model 0x%02x", id.ModelID)
	}

	boom := errors.New("boom")
	sim.XSHUT().Err = boom
	if err := dyn.TryPowerOff(sim.XSHUT()); !errors.Is(err, boom) {
		t.Fatalf("expected pin error, got %v", err)
	}
	if dyn.Mode() != ModeReady {
		t.Fatalf("failed power off changed mode to %s", dyn.Mode())
	}
}

func TestDynamicTimeout(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.SetIOTimeout(5); err != nil {
		t.Fatal(err)
	}
	sim, d := newSim(t, &cfg)
	dyn, err := d.IntoDynamic()
	if err != nil {
		t.Fatal(err)
	}
	var lines int
	dyn.EnableDebug(func(string, ...interface{}) { lines++ })
	if dyn.TimeoutOccurred() {
		t.Fatal("no timeout yet")
	}
	sim.Latency = 50
	if _, err := dyn.TryPollAmbientLuxSingleBlocking(); err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !dyn.TimeoutOccurred() {
		t.Fatal("timeout not recorded")
	}
	if dyn.TimeoutOccurred() {
		t.Fatal("timeout flag not reset")
	}
	if _, err := dyn.TryReadAmbient(); err != ErrResultNotReady {
		t.Fatalf("expected ErrResultNotReady, got %v", err)
	}
	if _, err := dyn.TryReadAmbientLux(); err != ErrResultNotReady {
		t.Fatalf("expected ErrResultNotReady, got %v", err)
	}
	if lines == 0 {
		t.Fatal("debug not called")
	}
}

func TestDynamicClearAndDiagnostics(t *testing.T) {
	sim, d := newSim(t, nil)
	dyn, err := d.IntoDynamic()
	if err != nil {
		t.Fatal(err)
	}
	sim.Poke(vl6180xtest.RegInterruptStatus, 0xE4)
	steps := []struct {
		clear func() error
		want  byte
	}{
		{dyn.TryClearRangeInterrupt, 0xE0},
		{dyn.TryClearAmbientInterrupt, 0xC0},
		{dyn.TryClearErrorInterrupt, 0x00},
	}
	for i, step := range steps {
		if err := step.clear(); err != nil {
			t.Fatalf("#%d: %v", i, err)
		}
		if got := sim.Reg(vl6180xtest.RegInterruptStatus); got != step.want {
			t.Fatalf("#%d: status 0x%02x, want 0x%02x", i, got, step.want)
		}
	}

	sim.Range = 80
	if _, err := dyn.TryPollRangeSingleBlocking(); err != nil {
		t.Fatal(err)
	}
	diag, err := dyn.TryRangeDiagnostics()
	if err != nil {
		t.Fatal(err)
	}
	if diag.Raw != 80 {
		t.Fatalf("raw %d", diag.Raw)
	}

	if err := dyn.TryPowerOff(sim.XSHUT()); err != nil {
		t.Fatal(err)
	}
	_, err = dyn.TryRangeDiagnostics()
	invalid(t, err, ModePoweredOff)
	invalid(t, dyn.TryClearRangeInterrupt(), ModePoweredOff)
	invalid(t, dyn.TryClearAmbientInterrupt(), ModePoweredOff)
	invalid(t, dyn.TryClearErrorInterrupt(), ModePoweredOff)
}
