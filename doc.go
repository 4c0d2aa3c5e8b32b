// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tofdevices is a container for time-of-flight sensor drivers and
// their tooling.
//
// See vl6180x for the driver and cmd/vl6180x for a command line tool.
package tofdevices
