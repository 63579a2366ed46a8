/*
 * SEL32 - 8064 sector transfer
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
	event "github.com/rcornwell/sel32/emu/event"
	debug "github.com/rcornwell/sel32/util/debug"
)

// Advance position one sector. Returns true when past last cylinder,
// position is left on the last sector.
func (unit *Unit) nextSector() bool {
	pos := *unit.pos
	pos.Sec++
	if pos.Sec >= unit.geom.SPT {
		pos.Sec = 0
		pos.Trk++
		if pos.Trk >= unit.geom.Heads {
			pos.Trk = 0
			pos.Cyl++
			if pos.Cyl >= unit.geom.Cyl {
				return true
			}
		}
	}
	*unit.pos = pos
	return false
}

// Position file at current sector.
func (unit *Unit) seekSector() error {
	return unit.disk.Seek(unit.geom.Offset(unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec))
}

// Head is beyond last cylinder.
func (unit *Unit) pastEnd() bool {
	return unit.pos.Cyl >= unit.geom.Cyl
}

// Ran off end of disk.
func (unit *Unit) endOfDisk() {
	unit.state.Flags |= FlagEndDisk
	unit.sense |= SenseDADE
	debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "end of disk cyl %d", unit.pos.Cyl)
	unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
}

// Read one sector and send it to channel.
func (unit *Unit) readSector() {
	if (unit.state.Flags & FlagReading) == 0 {
		unit.state.Flags |= FlagReading
		unit.state.Phase = PhaseTransfer
		debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "read start cyl %d trk %d sec %d",
			unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec)
	}
	if unit.pastEnd() {
		unit.endOfDisk()
		return
	}

	err := unit.seekSector()
	if err == nil {
		err = unit.disk.ReadSector(unit.buf)
	}
	if err != nil {
		debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "read error cyl %d trk %d sec %d: %v",
			unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec, err)
		unit.sense |= SenseDATCHK
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}

	for i, by := range unit.buf {
		if unit.ctl.ch.ChanWriteByte(unit.addr, by) {
			debug.DebugDevf(unit.addr, unit.debugMsk, debugData, "read %d bytes cyl %d trk %d sec %d",
				i, unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec)
			unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
			return
		}
	}
	debug.DebugDevf(unit.addr, unit.debugMsk, debugData, "read sector cyl %d trk %d sec %d",
		unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec)
	unit.state.Flags |= FlagReadDone

	if unit.nextSector() {
		unit.endOfDisk()
		return
	}

	if unit.ctl.ch.TestWriteByteEnd(unit.addr) {
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
		return
	}
	event.AddEvent(unit, unit.service, sectorDelay, int(CmdRD))
}

// Collect one sector from channel and write it.
func (unit *Unit) writeSector() {
	if (unit.state.Flags & FlagWriting) == 0 {
		if unit.disk.ReadOnly() {
			unit.sense |= SenseCMDREJ | SenseWPER
			unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
			return
		}
		unit.state.Flags |= FlagWriting
		unit.state.Phase = PhaseTransfer
		debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "write start cyl %d trk %d sec %d",
			unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec)
	}
	if unit.pastEnd() {
		unit.endOfDisk()
		return
	}

	short := false
	for i := range unit.buf {
		by, end := unit.ctl.ch.ChanReadByte(unit.addr)
		if end {
			if i == 0 {
				unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
				return
			}
			// Fill rest of sector with zeros.
			clear(unit.buf[i:])
			short = true
			break
		}
		unit.buf[i] = by
	}

	err := unit.seekSector()
	if err == nil {
		err = unit.disk.WriteSector(unit.buf)
	}
	if err != nil {
		debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "write error cyl %d trk %d sec %d: %v",
			unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec, err)
		unit.sense |= SenseDATCHK
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}
	debug.DebugDevf(unit.addr, unit.debugMsk, debugData, "wrote sector cyl %d trk %d sec %d",
		unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec)

	if short {
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
		return
	}

	if unit.nextSector() {
		unit.endOfDisk()
		return
	}
	event.AddEvent(unit, unit.service, sectorDelay, int(CmdWD))
}
