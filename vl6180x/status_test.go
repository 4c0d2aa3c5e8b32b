// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"errors"
	"testing"
)

func TestDecodeRangeStatus(t *testing.T) {
	for code := 0; code < 16; code++ {
		s, err := DecodeRangeStatus(byte(code<<4) | 0x01)
		if code == 9 || code == 10 {
			var e *UnknownRegisterCodeError
			if !errors.As(err, &e) || e.Code != byte(code) {
				t.Fatalf("code %d: expected UnknownRegisterCodeError, got %v", code, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("code %d: %v", code, err)
		}
		if uint8(s) != uint8(code) {
			t.Fatalf("code %d decoded as %s", code, s)
		}
	}
	if s, _ := DecodeRangeStatus(0b0110_0000); s != RangeEarlyConvergenceEstimate {
		t.Fatalf("got %s", s)
	}
	if s := RangeMaxSignalToNoiseRatio.String(); s != "MaxSignalToNoiseRatio" {
		t.Fatalf("got %q", s)
	}
	if s := RangeStatus(9).String(); s != "RangeStatus(9)" {
		t.Fatalf("got %q", s)
	}
}

func TestDecodeAmbientStatus(t *testing.T) {
	want := []AmbientStatus{AmbientNoError, AmbientOverflow, AmbientUnderflow}
	for i, w := range want {
		s, err := DecodeAmbientStatus(byte(i << 4))
		if err != nil || s != w {
			t.Fatalf("code %d: got %s, %v", i, s, err)
		}
	}
	if _, err := DecodeAmbientStatus(0x30); err == nil {
		t.Fatal("expected error")
	}
	if s := AmbientUnderflow.String(); s != "Underflow" {
		t.Fatalf("got %q", s)
	}
}

func TestHasStatus(t *testing.T) {
	tests := []struct {
		status InterruptStatus
		cond   InterruptCondition
		want   bool
	}{
		{0b11_000_010, NoError, false},
		{0b00_001_001, NoError, true},
		{0b00_000_001, NoAmbientEvents, true},
		{0b00_001_001, NoAmbientEvents, false},
		{0b00_001_001, AmbientLevelLow, true},
		{0b00_100_000, AmbientNewSampleReady, true},
		{0b00_011_000, AmbientOutOfWindow, true},
		{0b00_011_000, AmbientLevelLow, false},
		{0b00_000_100, RangeNewSampleReady, true},
		{0b00_000_100, NoRangeEvents, false},
		{0b00_100_000, NoRangeEvents, true},
		{0b00_000_011, RangeOutOfWindow, true},
		{0b00_000_010, RangeLevelHigh, true},
		{0b01_000_000, LaserSafetyError, true},
		{0b10_000_000, PllError, true},
		{0b11_000_000, PllError, false},
		{0xFF, InterruptCondition(42), false},
	}
	for _, test := range tests {
		if got := test.status.HasStatus(test.cond); got != test.want {
			t.Errorf("%08b.HasStatus(%s) = %t, want %t", uint8(test.status), test.cond, got, test.want)
		}
	}
}

func TestInterruptStatusEvents(t *testing.T) {
	s := InterruptStatus(0b00_100_000)
	if s.RangeEvent() || !s.AmbientEvent() {
		t.Fatal("unexpected events")
	}
	if got := InterruptStatus(0b01_100_100).String(); got != "InterruptStatus(error=1, ambient=4, range=4)" {
		t.Fatalf("got %q", got)
	}
}

func TestStrings(t *testing.T) {
	for _, s := range []interface{ String() string }{
		ModeInterleavedContinuous, OperatingMode(9), InterruptOutOfWindow, InterruptMode(9), RangeLevelLow, InterruptCondition(99),
	} {
		if s.String() == "" {
			t.Fatalf("empty string for %#v", s)
		}
	}
	err := &InvalidMethodError{Mode: ModePoweredOff}
	if got := err.Error(); got != "vl6180x: method not valid in PoweredOff mode" {
		t.Fatalf("got %q", got)
	}
}
