/*
 * SEL32 - Channel test device.
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

package syschannel

import (
	dev "github.com/rcornwell/sel32/emu/device"
	ev "github.com/rcornwell/sel32/emu/event"
)

type testDev struct {
	addr  uint16     // Current device address
	data  [256]uint8 // Data to read/write
	count int        // Pointer to input/output
	max   int        // Maximum size of data
	sense uint8      // Current sense byte
	halt  bool       // Halt I/O requested
	busy  bool       // Device is busy
	opts  []string   // Debug options set
}

//  Commands.
//
//            01234567
//  INCH      00000000    Set channel status buffer.
//  Write     00000001
//  Read      00000010
//  Nop       00000011
//  One Byte  00001011    Read one byte of option.
//  End       00010011    Immediate channel end, device end after 10 cycles.
//  Sense     00000100    Return one byte of sense data.

// Handle start of IOCD chain.
func (d *testDev) StartIO() uint8 {
	if d.busy {
		return dev.CStatusBusy
	}
	return 0
}

// Handle start of new command.
func (d *testDev) StartCmd(cmd uint8) uint8 {
	var r uint8
	if d.busy {
		return dev.CStatusBusy
	}
	d.halt = false
	d.sense = 0
	d.count = 0
	switch cmd {
	case 0x00, 0x01, 0x02, 0x0b:
		d.busy = true
	case 0x03:
		r = dev.CStatusChnEnd | dev.CStatusDevEnd
	case 0x13:
		d.busy = true
		ev.AddEvent(d, d.callback, 10, int(cmd))
		return dev.CStatusChnEnd
	case 0x04:
		d.busy = true
	default:
		d.sense = dev.SenseCMDREJ
	}

	if d.sense != 0 {
		return dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck
	}
	if (r & dev.CStatusChnEnd) == 0 {
		ev.AddEvent(d, d.callback, 10, int(cmd))
	}
	return r
}

// Handle HIO instruction.
func (d *testDev) HaltIO() uint8 {
	d.halt = true
	return 1
}

// Initialize a device.
func (d *testDev) InitDev() uint8 {
	d.count = 0
	d.max = 0
	d.sense = 0
	d.busy = false
	d.halt = false
	return 0
}

func (d *testDev) Shutdown() {}

func (d *testDev) Debug(opt string) error {
	d.opts = append(d.opts, opt)
	return nil
}

// Handle channel operations.
func (d *testDev) callback(cmd int) {
	switch cmd {
	case 0x00:
		addr, err := ChanInch(d.addr)
		d.busy = false
		if err || SetInch(d.addr, addr) {
			ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd|dev.CStatusCheck)
			return
		}
		ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)
	case 0x01:
		if d.halt || d.count >= d.max {
			d.busy = false
			ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)
			return
		}
		v, end := ChanReadByte(d.addr)
		if end {
			d.busy = false
			ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)
			return
		}
		d.data[d.count] = v
		d.count++
		ev.AddEvent(d, d.callback, 10, cmd)
	case 0x02:
		if d.halt || d.count >= d.max {
			d.busy = false
			ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)
			return
		}
		if ChanWriteByte(d.addr, d.data[d.count]) {
			d.busy = false
			ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)
			return
		}
		d.count++
		ev.AddEvent(d, d.callback, 10, cmd)
	case 0x0b:
		d.data[0], _ = ChanReadByte(d.addr)
		ChanEnd(d.addr, dev.CStatusChnEnd)
		ev.AddEvent(d, d.callback, 10, 0x13)
	case 0x04:
		d.busy = false
		if ChanWriteByte(d.addr, d.sense) {
			ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd|dev.CStatusExpt)
		} else {
			ChanEnd(d.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)
		}
	case 0x13:
		d.busy = false
		SetDevAttn(d.addr, dev.CStatusDevEnd)
	}
}
