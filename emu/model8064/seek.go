/*
 * SEL32 - 8064 seek engine
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

// Split STAR into cylinder, track and sector.
func splitStar(star uint32) (uint32, uint32, uint32) {
	return star >> 16, (star >> 8) & 0xff, star & 0xff
}

// Fetch target address and start seek.
func (unit *Unit) seek() {
	var star uint32
	for range 4 {
		by, end := unit.ctl.ch.ChanReadByte(unit.addr)
		if end {
			unit.sense |= SenseCMDREJ | SenseEQUCHK
			unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
			return
		}
		star = (star << 8) | uint32(by)
	}
	unit.startSeek(star)
}

// Return to cylinder 0, track 0, sector 0.
func (unit *Unit) rezero() {
	unit.star = 0
	// Dummy byte so channel does not report incorrect length.
	if _, end := unit.ctl.ch.ChanReadByte(unit.addr); end {
		unit.sense |= SenseCMDREJ | SenseEQUCHK
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}
	unit.startSeek(0)
}

// Validate target, position file and start arm moving if needed.
func (unit *Unit) startSeek(star uint32) {
	unit.state.Phase = PhaseValidating
	unit.star = star
	cyl, trk, sec := splitStar(star)
	debug.DebugDevf(unit.addr, unit.debugMsk, debugSeek, "seek cyl %d trk %d sec %d from cyl %d",
		cyl, trk, sec, unit.pos.Cyl)

	// Cylinder equal to the cylinder count is let through.
	if cyl > unit.geom.Cyl || trk >= unit.geom.Heads || sec > unit.geom.SPT {
		debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "seek error cyl %d trk %d sec %d", cyl, trk, sec)
		unit.sense |= SenseCMDREJ | SenseEQUCHK
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}

	unit.state.Flags |= FlagStar

	// Sector one past end of track is first sector of next track.
	if sec == unit.geom.SPT {
		sec = 0
		trk++
		if trk == unit.geom.Heads {
			trk = 0
			cyl++
		}
	}
	if err := unit.disk.Seek(unit.geom.Offset(cyl, trk, sec)); err != nil {
		debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "seek error %v", err)
		unit.sense |= SenseDATCHK
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}
	unit.pos.Trk = trk
	unit.pos.Sec = sec
	unit.target = cyl

	if cyl != unit.pos.Cyl {
		unit.state.Flags |= FlagSeeking
		unit.state.Phase = PhaseSeeking
		event.AddEvent(unit, unit.service, startDelay, int(unit.state.Cmd))
		unit.ctl.ch.ChanEnd(unit.addr, dev.CStatusChnEnd)
		return
	}

	unit.state.Phase = PhaseOnCylinder
	unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
}

// Amount to move arm and time it takes.
func seekDistance(remain uint32) (uint32, int) {
	switch {
	case remain > 50:
		return 50, seekLong
	case remain > 20:
		return 20, seekMedium
	default:
		return 1, seekShort
	}
}

// Move arm one step towards target cylinder.
func (unit *Unit) seekStep() {
	target := unit.target
	if target == unit.pos.Cyl {
		debug.DebugDevf(unit.addr, unit.debugMsk, debugSeek, "on cylinder %d", target)
		unit.state = idle
		unit.ctl.ch.SetDevAttn(unit.addr, dev.CStatusDevEnd)
		return
	}

	var delay int
	var step uint32
	if target > unit.pos.Cyl {
		step, delay = seekDistance(target - unit.pos.Cyl)
		unit.pos.Cyl += step
	} else {
		step, delay = seekDistance(unit.pos.Cyl - target)
		unit.pos.Cyl -= step
	}
	debug.DebugDevf(unit.addr, unit.debugMsk, debugSeek, "seek step %d now cyl %d", step, unit.pos.Cyl)
	event.AddEvent(unit, unit.service, delay, int(unit.state.Cmd))
}
