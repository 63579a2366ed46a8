/*
 * SEL32 - 8064 sense and drive attribute reporting
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package model8064

import (
	dev "github.com/rcornwell/sel32/emu/device"
	debug "github.com/rcornwell/sel32/util/debug"
)

const (
	// Mode register, byte 0 of sense.
	SenseDROFF   uint32 = 0x80000000 // Drive carriage offset
	SenseTRKOFF  uint32 = 0x40000000 // Track offset
	SenseRDTMOFF uint32 = 0x20000000 // Read timing offset
	SenseRDSTRBT uint32 = 0x10000000 // Read strobe timing
	SenseDIAGMOD uint32 = 0x08000000 // Diagnostic mode ECC code generation
	SenseRSVTRK  uint32 = 0x04000000 // Reserve track mode, 1 OK to write
	SenseFHDOPT  uint32 = 0x02000000 // FHD or FHD option

	// Sense byte 1.
	SenseCMDREJ  uint32 = 0x00800000 // Command reject
	SenseINTVENT uint32 = 0x00400000 // Unit intervention required
	SenseSPARE   uint32 = 0x00200000 // Spare
	SenseEQUCHK  uint32 = 0x00100000 // Equipment check
	SenseDATCHK  uint32 = 0x00080000 // Data check
	SenseOVRRUN  uint32 = 0x00040000 // Data overrun/underrun
	SenseDSKFERR uint32 = 0x00020000 // Disk format error
	SenseDEFTRK  uint32 = 0x00010000 // Defective track encountered

	// Sense byte 2.
	SenseLAST uint32 = 0x00008000 // Last track flag encountered
	SenseAATT uint32 = 0x00004000 // At alternate track
	SenseWPER uint32 = 0x00002000 // Write protection error
	SenseWRL  uint32 = 0x00001000 // Write lock error
	SenseMOCK uint32 = 0x00000800 // Mode check
	SenseINAD uint32 = 0x00000400 // Invalid memory address
	SenseRELF uint32 = 0x00000200 // Release fault
	SenseCHER uint32 = 0x00000100 // Chaining error

	// Sense byte 3.
	SenseREVL uint32 = 0x00000080 // Revolution lost
	SenseDADE uint32 = 0x00000040 // Disc addressing or seek error
	SenseBUCK uint32 = 0x00000020 // Buffer check
	SenseECCS uint32 = 0x00000010 // ECC error in sector label
	SenseECCD uint32 = 0x00000008 // ECC error in data
	SenseECCT uint32 = 0x00000004 // ECC error in track label
	SenseRTAE uint32 = 0x00000002 // Reserve track access error
	SenseUESS uint32 = 0x00000001 // Uncorrectable ECC error

	senseMode uint32 = 0xff000000 // Mode byte survives a sense

	// Length of sense record.
	SenseLength = 14
)

// Drive attribute word from INCH.
//
//	bits 0-7   flags
//	bits 8-15  sectors per track
//	bits 16-23 MHD head count
//	bits 24-31 FHD head count
type Attribute uint32

const (
	HeadReserved = iota // No heads defined
	HeadMHD             // Moving head disk
	HeadFHD             // Fixed head disk
	HeadMHDFHD          // MHD with FHD option
)

// Head type from flag bits 0 and 1.
func (attr Attribute) HeadType() int {
	return int(attr>>30) & 0x3
}

// Cartridge module drive.
func (attr Attribute) Cartridge() bool {
	return (attr & 0x20000000) != 0
}

// Drive not present.
func (attr Attribute) NotPresent() bool {
	return (attr & 0x08000000) != 0
}

// Drive is dual ported.
func (attr Attribute) DualPort() bool {
	return (attr & 0x04000000) != 0
}

// Sectors per track from byte 1.
func (attr Attribute) SectorsPerTrack() uint8 {
	return uint8(attr >> 16)
}

// Moving heads from byte 2.
func (attr Attribute) MHDHeads() uint8 {
	return uint8(attr >> 8)
}

// Fixed heads from byte 3.
func (attr Attribute) FHDHeads() uint8 {
	return uint8(attr)
}

// Build sense record: STAR, mode, three error bytes, attribute word
// and two zero bytes.
func (unit *Unit) senseRecord() [SenseLength]uint8 {
	var rec [SenseLength]uint8
	for i := range 4 {
		shift := uint(24 - 8*i)
		rec[i] = uint8(unit.star >> shift)
		rec[4+i] = uint8(unit.sense >> shift)
		rec[8+i] = uint8(unit.attr >> shift)
	}
	return rec
}

// Send sense record to channel, then clear error bits.
func (unit *Unit) sendSense() {
	rec := unit.senseRecord()
	debug.DebugDevf(unit.addr, unit.debugMsk, debugDetail, "sense %x", rec)
	for _, by := range rec {
		if unit.ctl.ch.ChanWriteByte(unit.addr, by) {
			break
		}
	}
	unit.sense &= senseMode
}

// Load mode register from one byte.
func (unit *Unit) loadMode() {
	by, end := unit.ctl.ch.ChanReadByte(unit.addr)
	if end {
		unit.sense |= SenseCMDREJ | SenseEQUCHK
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}
	unit.sense = (unit.sense &^ senseMode) | (uint32(by) << 24)
	debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "mode %02x", by)
	unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
}

// Word at IOCD address points to status buffer, attribute word for
// each unit follows it.
func (unit *Unit) inch() {
	addr, err := unit.ctl.ch.ChanInch(unit.addr)
	var ptr uint32
	if !err {
		ptr, err = unit.ctl.ch.GetWord(addr)
	}
	if err || unit.ctl.ch.SetInch(unit.addr, ptr) {
		unit.sense |= SenseCMDREJ | SenseINAD
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}
	debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "INCH at %06x buffer %06x", addr, ptr)
	for i, u := range unit.ctl.units {
		word, err := unit.ctl.ch.GetWord(addr + uint32(4*(i+1)))
		if err {
			break
		}
		u.attr = word
	}
	unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
}
