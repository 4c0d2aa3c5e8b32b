// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GermanBionicSystems/tofdevices/vl6180x"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML configuration file. Absent keys keep the driver
// defaults.
type fileConfig struct {
	Address   *uint16       `yaml:"address"`
	IOMode2V8 *bool         `yaml:"io_mode_2v8"`
	IOTimeout *uint16       `yaml:"io_timeout"`
	Range     rangeConfig   `yaml:"range"`
	Ambient   ambientConfig `yaml:"ambient"`
}

type rangeConfig struct {
	Scaling                *uint8  `yaml:"scaling"`
	ReadoutAveraging       *uint8  `yaml:"readout_averaging"`
	MaxConvergenceTime     *uint8  `yaml:"max_convergence_time"`
	InterMeasurementPeriod *uint16 `yaml:"inter_measurement_period"`
	VHVRecalibrationRate   *uint8  `yaml:"vhv_recalibration_rate"`
	Interrupt              *string `yaml:"interrupt"`
	ThresholdLow           *uint8  `yaml:"threshold_low"`
	ThresholdHigh          *uint8  `yaml:"threshold_high"`
}

type ambientConfig struct {
	GainLevel              *uint8  `yaml:"gain_level"`
	IntegrationPeriod      *uint16 `yaml:"integration_period"`
	InterMeasurementPeriod *uint16 `yaml:"inter_measurement_period"`
	Interrupt              *string `yaml:"interrupt"`
	ThresholdLow           *uint16 `yaml:"threshold_low"`
	ThresholdHigh          *uint16 `yaml:"threshold_high"`
}

var interruptModes = map[string]vl6180x.InterruptMode{
	"disabled":         vl6180x.InterruptDisabled,
	"level_low":        vl6180x.InterruptLevelLow,
	"level_high":       vl6180x.InterruptLevelHigh,
	"out_of_window":    vl6180x.InterruptOutOfWindow,
	"new_sample_ready": vl6180x.InterruptNewSampleReady,
}

// loadConfig reads and decodes path. Unknown keys are rejected.
func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(raw)
}

func parseConfig(raw []byte) (*fileConfig, error) {
	f := &fileConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	// An empty file is a valid configuration.
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return f, nil
}

// apply pushes the values through the driver setters.
//
// Inter measurement periods are bounded by the convergence and integration
// time current at the time of the call, so those are set first.
func (f *fileConfig) apply(c *vl6180x.Config) error {
	if f.IOMode2V8 != nil {
		c.SetIOMode2V8(*f.IOMode2V8)
	}
	if f.Address != nil {
		if err := c.SetAddress(*f.Address); err != nil {
			return keyErr("address", err)
		}
	}
	if f.IOTimeout != nil {
		if err := c.SetIOTimeout(*f.IOTimeout); err != nil {
			return keyErr("io_timeout", err)
		}
	}

	r := &f.Range
	if r.Scaling != nil {
		if err := c.SetRangeScaling(*r.Scaling); err != nil {
			return keyErr("range.scaling", err)
		}
	}
	if r.ReadoutAveraging != nil {
		c.SetReadoutAveragingPeriodMultiplier(*r.ReadoutAveraging)
	}
	if r.MaxConvergenceTime != nil {
		if err := c.SetRangeMaxConvergenceTime(*r.MaxConvergenceTime); err != nil {
			return keyErr("range.max_convergence_time", err)
		}
	}
	if r.InterMeasurementPeriod != nil {
		if err := c.SetRangeInterMeasurementPeriod(*r.InterMeasurementPeriod); err != nil {
			return keyErr("range.inter_measurement_period", err)
		}
	}
	if r.VHVRecalibrationRate != nil {
		c.SetRangeVHVRecalibrationRate(*r.VHVRecalibrationRate)
	}
	if r.Interrupt != nil {
		m, ok := interruptModes[*r.Interrupt]
		if !ok {
			return fmt.Errorf("range.interrupt: unknown mode %q", *r.Interrupt)
		}
		if err := c.SetRangeInterruptMode(m); err != nil {
			return keyErr("range.interrupt", err)
		}
	}
	if r.ThresholdLow != nil || r.ThresholdHigh != nil {
		low, high := c.RangeInterruptThresholds()
		if r.ThresholdLow != nil {
			low = *r.ThresholdLow
		}
		if r.ThresholdHigh != nil {
			high = *r.ThresholdHigh
		}
		if err := c.SetRangeInterruptThresholds(low, high); err != nil {
			return keyErr(thresholdKey("range", r.ThresholdLow != nil, r.ThresholdHigh != nil), err)
		}
	}

	a := &f.Ambient
	if a.GainLevel != nil {
		if err := c.SetAmbientAnalogueGainLevel(*a.GainLevel); err != nil {
			return keyErr("ambient.gain_level", err)
		}
	}
	if a.IntegrationPeriod != nil {
		if err := c.SetAmbientIntegrationPeriod(*a.IntegrationPeriod); err != nil {
			return keyErr("ambient.integration_period", err)
		}
	}
	if a.InterMeasurementPeriod != nil {
		if err := c.SetAmbientInterMeasurementPeriod(*a.InterMeasurementPeriod); err != nil {
			return keyErr("ambient.inter_measurement_period", err)
		}
	}
	if a.Interrupt != nil {
		m, ok := interruptModes[*a.Interrupt]
		if !ok {
			return fmt.Errorf("ambient.interrupt: unknown mode %q", *a.Interrupt)
		}
		if err := c.SetAmbientInterruptMode(m); err != nil {
			return keyErr("ambient.interrupt", err)
		}
	}
	if a.ThresholdLow != nil || a.ThresholdHigh != nil {
		low, high := c.AmbientInterruptThresholds()
		if a.ThresholdLow != nil {
			low = *a.ThresholdLow
		}
		if a.ThresholdHigh != nil {
			high = *a.ThresholdHigh
		}
		if err := c.SetAmbientInterruptThresholds(low, high); err != nil {
			return keyErr(thresholdKey("ambient", a.ThresholdLow != nil, a.ThresholdHigh != nil), err)
		}
	}
	return nil
}

// thresholdKey names the keys that made a threshold pair invalid.
func thresholdKey(section string, low, high bool) string {
	switch {
	case low && high:
		return section + ".threshold_low/threshold_high"
	case high:
		return section + ".threshold_high"
	default:
		return section + ".threshold_low"
	}
}

func keyErr(key string, err error) error {
	return fmt.Errorf("%s: %w", key, err)
}
