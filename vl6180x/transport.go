// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

import (
	"encoding/binary"
)

// DebugF the debug function type.
type DebugF func(string, ...interface{})

func noop(string, ...interface{}) {}

// Register addresses are 16 bit big endian and precede the data in the same
// write. Multi byte values are big endian too.

func (s *sensor) read(reg uint16, r []byte) error {
	w := [2]byte{byte(reg >> 8), byte(reg)}
	if err := s.d.Tx(w[:], r); err != nil {
		return &BusError{Op: "read", Register: reg, Err: err}
	}
	s.debug("read register %#03x: % x", reg, r)
	return nil
}

func (s *sensor) write(reg uint16, data []byte) error {
	w := make([]byte, 2, 2+len(data))
	binary.BigEndian.PutUint16(w, reg)
	w = append(w, data...)
	s.debug("write register %#03x: % x", reg, data)
	if err := s.d.Tx(w, nil); err != nil {
		return &BusError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

func (s *sensor) readByte(reg register8) (byte, error) {
	var r [1]byte
	if err := s.read(uint16(reg), r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (s *sensor) writeByte(reg register8, value byte) error {
	return s.write(uint16(reg), []byte{value})
}

func (s *sensor) readWord(reg register16) (uint16, error) {
	var r [2]byte
	if err := s.read(uint16(reg), r[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r[:]), nil
}

func (s *sensor) writeWord(reg register16, value uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], value)
	return s.write(uint16(reg), b[:])
}

func (s *sensor) readDword(reg register32) (uint32, error) {
	var r [4]byte
	if err := s.read(uint16(reg), r[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r[:]), nil
}

// writePrivate writes one of the undocumented private registers.
func (s *sensor) writePrivate(reg uint16, value byte) error {
	return s.write(reg, []byte{value})
}
