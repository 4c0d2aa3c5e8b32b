// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vl6180x

// register8 is the address of an 8 bit register.
type register8 uint16

// register16 is the address of a 16 bit register.
type register16 uint16

// register32 is the address of a 32 bit register.
type register32 uint16

// 8 bit registers. Refer to section 6 of the datasheet.
const (
	regIdentificationModelID        register8 = 0x000
	regIdentificationModelRevMajor  register8 = 0x001
	regIdentificationModelRevMinor  register8 = 0x002
	regIdentificationModuleRevMajor register8 = 0x003
	regIdentificationModuleRevMinor register8 = 0x004

	regSystemModeGPIO0            register8 = 0x010
	regSystemModeGPIO1            register8 = 0x011
	regSystemHistoryCtrl          register8 = 0x012
	regSystemInterruptConfigGPIO  register8 = 0x014
	regSystemInterruptClear       register8 = 0x015
	regSystemFreshOutOfReset      register8 = 0x016
	regSystemGroupedParameterHold register8 = 0x017

	regSysRangeStart                  register8 = 0x018
	regSysRangeThreshHigh             register8 = 0x019
	regSysRangeThreshLow              register8 = 0x01A
	regSysRangeIntermeasurementPeriod register8 = 0x01B
	regSysRangeMaxConvergenceTime     register8 = 0x01C
	regSysRangeCrosstalkValidHeight   register8 = 0x021
	regSysRangePartToPartRangeOffset  register8 = 0x024
	regSysRangeRangeIgnoreValidHeight register8 = 0x025
	regSysRangeMaxAmbientLevelMult    register8 = 0x02C
	regSysRangeRangeCheckEnables      register8 = 0x02D
	regSysRangeVHVRecalibrate         register8 = 0x02E
	regSysRangeVHVRepeatRate          register8 = 0x031

	regSysALSStart                  register8 = 0x038
	regSysALSIntermeasurementPeriod register8 = 0x03E
	regSysALSAnalogueGain           register8 = 0x03F

	regResultRangeStatus         register8 = 0x04D
	regResultALSStatus           register8 = 0x04E
	regResultInterruptStatusGPIO register8 = 0x04F
	regResultRangeVal            register8 = 0x062
	regResultRangeRaw            register8 = 0x064

	regReadoutAveragingSamplePeriod register8 = 0x10A
	regFirmwareBootup               register8 = 0x119
	regFirmwareResultScaler         register8 = 0x120
	regI2CSlaveDeviceAddress        register8 = 0x212
	regInterleavedModeEnable        register8 = 0x2A3
)

// 16 bit registers.
const (
	regIdentificationDate            register16 = 0x006
	regIdentificationTime            register16 = 0x008
	regSysRangeCrosstalkCompensation register16 = 0x01E
	regSysRangeEarlyConvergence      register16 = 0x022
	regSysRangeRangeIgnoreThreshold  register16 = 0x026
	regSysALSThreshHigh              register16 = 0x03A
	regSysALSThreshLow               register16 = 0x03C
	regSysALSIntegrationPeriod       register16 = 0x040
	regResultALSVal                  register16 = 0x050
	regResultRangeReturnRate         register16 = 0x066
	regResultRangeReferenceRate      register16 = 0x068
	// See STSW-IMG003 core/inc/vl6180x_def.h
	regRangeScaler register16 = 0x096
)

// 32 bit registers.
const (
	regResultRangeReturnSignalCount    register32 = 0x06C
	regResultRangeReferenceSignalCount register32 = 0x070
	regResultRangeReturnAmbCount       register32 = 0x074
	regResultRangeReferenceAmbCount    register32 = 0x078
	regResultRangeReturnConvTime       register32 = 0x07C
	regResultRangeReferenceConvTime    register32 = 0x080
)

// Register codes.
const (
	// SYSRANGE__START and SYSALS__START.
	startSingle           byte = 0x01
	startContinuousToggle byte = 0x03

	// SYSTEM__INTERRUPT_CLEAR bits.
	clearRangeInterrupt   byte = 0x01
	clearAmbientInterrupt byte = 0x02
	clearErrorInterrupt   byte = 0x04
	clearAllInterrupts         = clearRangeInterrupt | clearAmbientInterrupt | clearErrorInterrupt

	// INTERLEAVED_MODE__ENABLE.
	interleavedEnable  byte = 0x01
	interleavedDisable byte = 0x00

	// SYSTEM__MODE_GPIO1: polarity bit 5, function select bits 4:1.
	gpio1ActiveHigh      byte = 0x20
	gpio1SelectOff       byte = 0x00
	gpio1SelectInterrupt byte = 0x10

	// SYSTEM__FRESH_OUT_OF_RESET.
	freshOutOfReset byte = 0x01

	// Value of IDENTIFICATION__MODEL_ID.
	modelID byte = 0xB4

	// Power on value of SYSRANGE__CROSSTALK_VALID_HEIGHT.
	defaultCrosstalkValidHeight byte = 20

	// SYSRANGE__RANGE_CHECK_ENABLES bit 0.
	earlyConvergenceEnable byte = 0x01
)

// rangeScalerCodes are the RANGE_SCALER values indexed by the scaling factor.
// See STSW-IMG003 core/src/vl6180x_api.c (ScalerLookUP[]).
var rangeScalerCodes = [4]uint16{0, 253, 127, 84}

// ambientGainCodes are the SYSALS__ANALOGUE_GAIN values indexed by gain
// level. Refer to datasheet section 2.10.6.
var ambientGainCodes = [8]byte{0x46, 0x45, 0x44, 0x43, 0x42, 0x41, 0x40, 0x47}

// ambientGains are the actual analogue gains indexed by gain level.
var ambientGains = [8]float64{1.01, 1.28, 1.72, 2.60, 5.21, 10.32, 20, 40}

// privateSettings are the mandatory private register settings from AN4545
// section "SR03 settings". They are loaded once after a fresh reset.
var privateSettings = []struct {
	reg   uint16
	value byte
}{
	{0x207, 0x01},
	{0x208, 0x01},
	{0x096, 0x00},
	{0x097, 0xFD}, // RANGE_SCALER = 253
	{0x0E3, 0x01},
	{0x0E4, 0x03},
	{0x0E5, 0x02},
	{0x0E6, 0x01},
	{0x0E7, 0x03},
	{0x0F5, 0x02},
	{0x0D9, 0x05},
	{0x0DB, 0xCE},
	{0x0DC, 0x03},
	{0x0DD, 0xF8},
	{0x09F, 0x00},
	{0x0A3, 0x3C},
	{0x0B7, 0x00},
	{0x0BB, 0x3C},
	{0x0B2, 0x09},
	{0x0CA, 0x09},
	{0x198, 0x01},
	{0x1B0, 0x17},
	{0x1AD, 0x00},
	{0x0FF, 0x05},
	{0x100, 0x05},
	{0x199, 0x05},
	{0x1A6, 0x1B},
	{0x1AC, 0x3E},
	{0x1A7, 0x1F},
	{0x030, 0x00},
}
