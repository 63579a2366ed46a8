/*
 * SEL32 - 8000 Input Output Processor test cases
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

package model8000

import (
	"testing"

	dev "github.com/rcornwell/sel32/emu/device"
	event "github.com/rcornwell/sel32/emu/event"
	mem "github.com/rcornwell/sel32/emu/memory"
	ch "github.com/rcornwell/sel32/emu/sys_channel"
)

const iopAddr uint16 = 0x7fe

func setup(t *testing.T) *Model8000ctx {
	t.Helper()
	event.Reset()
	mem.SetSize(128)
	mem.Clear()
	ch.InitializeChannels()
	ch.AddChannel(7, ch.TypeIOP)
	if err := create(iopAddr, "", nil); err != nil {
		t.Fatalf("Unable to create 8000: %v", err)
	}
	device, err := ch.GetDevice(iopAddr)
	if err != nil {
		t.Fatalf("8000 not on channel: %v", err)
	}
	return device.(*Model8000ctx)
}

// Run one command through channel and return status. Count word
// carries the IOCD flags.
func runCmd(t *testing.T, cmd uint8, addr uint32, count uint32) ch.Status {
	t.Helper()
	mem.SetMemory(0x500, uint32(cmd)<<24|addr)
	mem.SetMemory(0x504, count)
	if cc := ch.StartIO(iopAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO %02x expected %d got: %d", cmd, 0, cc)
	}
	for range 1000 {
		event.Advance(1)
		devNum, st := ch.ChanScan()
		if devNum == iopAddr {
			return st
		}
	}
	t.Fatalf("Command %02x did not complete", cmd)
	return ch.Status{}
}

func TestInch(t *testing.T) {
	setup(t)
	st := runCmd(t, dev.CmdINCH, 0x1000, 4)
	if st.Flags != 0x0c00 {
		t.Errorf("INCH status expected %04x got: %04x", 0x0c00, st.Flags)
	}
	if ch.GetInch(iopAddr) != 0x1000 {
		t.Errorf("INCH buffer expected %06x got: %06x", 0x1000, ch.GetInch(iopAddr))
	}
}

func TestNop(t *testing.T) {
	setup(t)
	st := runCmd(t, cmdNOP, 0, 0x20000001)
	if st.Flags != 0x0c00 {
		t.Errorf("NOP status expected %04x got: %04x", 0x0c00, st.Flags)
	}
}

// Unknown command ends with unit exception, sense shows reject once.
func TestInvalidSense(t *testing.T) {
	device := setup(t)
	st := runCmd(t, 0x13, 0, 0x20000001)
	if st.Flags&0xff00 != 0x0d00 {
		t.Errorf("Invalid status expected %04x got: %04x", 0x0d00, st.Flags)
	}
	if (device.status & statusCMDREJ) == 0 {
		t.Errorf("Command reject not set: %08x", device.status)
	}

	st = runCmd(t, dev.CmdSense, 0x600, 4)
	if st.Flags != 0x0c00 {
		t.Errorf("Sense status expected %04x got: %04x", 0x0c00, st.Flags)
	}
	word := mem.GetMemory(0x600)
	if word != statusCMDREJ|statusRDY|statusONLN {
		t.Errorf("Sense data expected %08x got: %08x", statusCMDREJ|statusRDY|statusONLN, word)
	}
	if device.status != statusRDY|statusONLN {
		t.Errorf("Sense did not clear reject: %08x", device.status)
	}
}

func TestBusy(t *testing.T) {
	device := setup(t)
	if device.StartCmd(cmdNOP) != 0 {
		t.Fatal("NOP not accepted")
	}
	if device.StartIO() != dev.CStatusBusy || device.StartCmd(cmdNOP) != dev.CStatusBusy {
		t.Error("Busy not reported")
	}
	if device.InitDev() != 0 || device.busy || event.AnyEvent() {
		t.Error("InitDev did not clear command")
	}
}

func TestOptions(t *testing.T) {
	device := setup(t)
	if err := create(0x700, "", nil); err != nil {
		t.Errorf("Second 8000 failed: %v", err)
	}
	if err := create(iopAddr, "", nil); err == nil {
		t.Error("Duplicate 8000 accepted")
	}
	if device.Attach(nil) == nil || device.Detach() == nil || device.Set(false, nil) == nil {
		t.Error("Console commands accepted")
	}
	if str, err := device.Show(nil); err != nil || str != "7fe: IOP INCH=000000 STATUS=000000c0" {
		t.Errorf("Show not correct: %s %v", str, err)
	}
	if err := device.Debug("cmd"); err != nil {
		t.Errorf("Debug cmd failed: %v", err)
	}
	if err := device.Debug("data"); err == nil {
		t.Error("Invalid debug option accepted")
	}
}
