// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package vl6180x controls an ST VL6180X proximity and ambient light sensor
// over I²C.
//
// The sensor measures absolute distance with a time-of-flight laser (0-200mm
// at 1x scaling, up to 600mm at 3x) and ambient light in lux. Measurements
// can be single-shot, continuous per channel, or interleaved ambient + range.
//
// The operating mode of the sensor is carried in the Go type of the handle:
// a *Dev is ready for single-shot measurements and can be turned into a
// *RangeContinuous, *AmbientContinuous, *InterleavedContinuous or *PoweredOff
// handle, each only offering the methods valid in that mode. Code that needs
// to switch modes often can use Dev.IntoDynamic() instead, which tracks the
// mode at runtime and returns an *InvalidMethodError for calls that are not
// valid in the current mode.
//
// Datasheet
//
//	https://www.st.com/resource/en/datasheet/vl6180x.pdf
//
// Application note AN4545, basic ranging
//
//	https://www.st.com/resource/en/application_note/an4545-vl6180x-basic-ranging-application-note-stmicroelectronics.pdf
package vl6180x
