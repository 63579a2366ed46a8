/*
 * SEL32 - Channel test cases.
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
	"testing"

	dev "github.com/rcornwell/sel32/emu/device"
	ev "github.com/rcornwell/sel32/emu/event"
	mem "github.com/rcornwell/sel32/emu/memory"
)

const testAddr uint16 = 0x40f

func chanSetup() *testDev {
	ev.Reset()
	mem.SetSize(128)
	mem.Clear()
	InitializeChannels()
	AddChannel(4, TypeClass)
	d := &testDev{addr: testAddr}
	_ = AddDevice(d, nil, testAddr)
	_ = d.InitDev()
	for i := range 0x20 {
		d.data[i] = uint8(0x10 + i)
	}
	d.max = 0x20
	return d
}

// Run events until a device posts status.
func runChannel(steps int) (uint16, Status) {
	for range steps {
		ev.Advance(1)
		devNum, st := ChanScan()
		if devNum != dev.NoDev {
			return devNum, st
		}
	}
	return dev.NoDev, Status{}
}

func getMemByte(addr uint32) uint8 {
	b, _ := mem.GetByte(addr)
	return b
}

func TestNoDevice(t *testing.T) {
	chanSetup()
	cc := StartIO(0x410, 0x500)
	if cc != 3 {
		t.Errorf("StartIO no device expected %d got: %d", 3, cc)
	}
	cc = StartIO(0x50f, 0x500)
	if cc != 3 {
		t.Errorf("StartIO no channel expected %d got: %d", 3, cc)
	}
	if TestIO(0x410) != 3 {
		t.Error("TestIO no device did not return 3")
	}
}

func TestNop(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x03000600)
	mem.SetMemory(0x504, 0x00000001)
	cc := StartIO(testAddr, 0x500)
	if cc != 1 {
		t.Errorf("StartIO Nop expected %d got: %d", 1, cc)
	}
	st := GetStatus()
	if st.IOCD != 0x508 || st.Flags != 0x0c00 {
		t.Errorf("StartIO Nop status expected %06x %04x got: %06x %04x", 0x508, 0x0c00, st.IOCD, st.Flags)
	}
}

func TestRead(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x02000600)
	mem.SetMemory(0x504, 0x00000020)
	for i := uint32(0x600); i < 0x640; i += 4 {
		mem.SetMemory(i, 0x55555555)
	}
	cc := StartIO(testAddr, 0x500)
	if cc != 0 {
		t.Fatalf("StartIO Read expected %d got: %d", 0, cc)
	}
	devNum, st := runChannel(2000)
	if devNum != testAddr {
		t.Fatalf("Read did not complete got: %04x", devNum)
	}
	if st.IOCD != 0x508 || st.Flags != 0x0c00 || st.Count != 0 {
		t.Errorf("Read status expected %06x %04x %d got: %06x %04x %d", 0x508, 0x0c00, 0,
			st.IOCD, st.Flags, st.Count)
	}
	for i := range uint32(0x20) {
		b := getMemByte(0x600 + i)
		if b != uint8(0x10+i) {
			t.Errorf("Read data expected %02x got: %02x at: %02x", 0x10+i, b, i)
		}
	}
	for i := range uint32(0x20) {
		b := getMemByte(0x620 + i)
		if b != 0x55 {
			t.Errorf("Read data expected %02x got: %02x at: %02x", 0x55, b, i)
		}
	}
}

// Device has more data then the IOCD count.
func TestReadShort(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x02000600)
	mem.SetMemory(0x504, 0x00000010)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO Read expected %d got: %d", 0, cc)
	}
	_, st := runChannel(2000)
	if st.Flags != 0x0c40 {
		t.Errorf("Read short status expected %04x got: %04x", 0x0c40, st.Flags)
	}
	if getMemByte(0x60f) != 0x1f || getMemByte(0x610) != 0 {
		t.Errorf("Read short data not correct: %02x %02x", getMemByte(0x60f), getMemByte(0x610))
	}
}

// Suppress length indicator.
func TestReadShortSLI(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x02000600)
	mem.SetMemory(0x504, 0x20000010)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO Read expected %d got: %d", 0, cc)
	}
	_, st := runChannel(2000)
	if st.Flags != 0x0c00 {
		t.Errorf("Read short SLI status expected %04x got: %04x", 0x0c00, st.Flags)
	}
}

func TestWrite(t *testing.T) {
	d := chanSetup()
	mem.SetMemory(0x500, 0x01000600)
	mem.SetMemory(0x504, 0x00000010)
	for i := range uint32(0x10) {
		_ = mem.PutWordMask(0x600+(i&^3), uint32(0xf0+i)<<(8*(3-(i&3))), 0xff<<(8*(3-(i&3))))
	}
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO Write expected %d got: %d", 0, cc)
	}
	devNum, st := runChannel(2000)
	if devNum != testAddr || st.Flags != 0x0c00 {
		t.Errorf("Write status expected %04x got: %04x %04x", 0x0c00, devNum, st.Flags)
	}
	for i := range 0x10 {
		if d.data[i] != uint8(0xf0+i) {
			t.Errorf("Write data expected %02x got: %02x at: %02x", 0xf0+i, d.data[i], i)
		}
	}
	if d.count != 0x10 {
		t.Errorf("Write count expected %d got: %d", 0x10, d.count)
	}
}

// Data chaining across two IOCDs.
func TestReadDataChain(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x02000600)
	mem.SetMemory(0x504, 0x80000008)
	mem.SetMemory(0x508, 0x02000700)
	mem.SetMemory(0x50c, 0x00000018)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO Read expected %d got: %d", 0, cc)
	}
	_, st := runChannel(2000)
	if st.Flags != 0x0c00 || st.IOCD != 0x510 {
		t.Errorf("Read chain status expected %06x %04x got: %06x %04x", 0x510, 0x0c00, st.IOCD, st.Flags)
	}
	for i := range uint32(8) {
		if b := getMemByte(0x600 + i); b != uint8(0x10+i) {
			t.Errorf("Read chain data expected %02x got: %02x at: %02x", 0x10+i, b, i)
		}
	}
	for i := range uint32(0x18) {
		if b := getMemByte(0x700 + i); b != uint8(0x18+i) {
			t.Errorf("Read chain data expected %02x got: %02x at: %02x", 0x18+i, b, 0x700+i)
		}
	}
}

// Skip flag discards the data.
func TestReadSkip(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x02000600)
	mem.SetMemory(0x504, 0x90000008)
	mem.SetMemory(0x508, 0x02000608)
	mem.SetMemory(0x50c, 0x00000018)
	mem.SetMemory(0x600, 0x55555555)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO Read expected %d got: %d", 0, cc)
	}
	_, st := runChannel(2000)
	if st.Flags != 0x0c00 {
		t.Errorf("Read skip status expected %04x got: %04x", 0x0c00, st.Flags)
	}
	if v := mem.GetMemory(0x600); v != 0x55555555 {
		t.Errorf("Read skip changed memory got: %08x", v)
	}
	if v := mem.GetMemory(0x608); v != 0x18191a1b {
		t.Errorf("Read skip data expected %08x got: %08x", 0x18191a1b, v)
	}
}

// Command chain a Nop to a read.
func TestCommandChain(t *testing.T) {
	d := chanSetup()
	d.max = 4
	mem.SetMemory(0x500, 0x03000600)
	mem.SetMemory(0x504, 0x40000001)
	mem.SetMemory(0x508, 0x02000600)
	mem.SetMemory(0x50c, 0x00000004)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO chain expected %d got: %d", 0, cc)
	}
	devNum, st := runChannel(2000)
	if devNum != testAddr || st.Flags != 0x0c00 || st.IOCD != 0x510 {
		t.Errorf("Chain status expected %06x %04x got: %06x %04x", 0x510, 0x0c00, st.IOCD, st.Flags)
	}
	if v := mem.GetMemory(0x600); v != 0x10111213 {
		t.Errorf("Chain data expected %08x got: %08x", 0x10111213, v)
	}
}

// Transfer in channel to continue chain.
func TestTic(t *testing.T) {
	d := chanSetup()
	d.max = 4
	mem.SetMemory(0x500, 0x03000600)
	mem.SetMemory(0x504, 0x40000001)
	mem.SetMemory(0x508, 0x08000520)
	mem.SetMemory(0x520, 0x02000600)
	mem.SetMemory(0x524, 0x00000004)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO TIC expected %d got: %d", 0, cc)
	}
	_, st := runChannel(2000)
	if st.Flags != 0x0c00 || st.IOCD != 0x528 {
		t.Errorf("TIC status expected %06x %04x got: %06x %04x", 0x528, 0x0c00, st.IOCD, st.Flags)
	}
}

// TIC can't be first command.
func TestTicFirst(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x08000520)
	cc := StartIO(testAddr, 0x500)
	if cc != 1 {
		t.Errorf("StartIO TIC expected %d got: %d", 1, cc)
	}
	if st := GetStatus(); st.Flags != statusPCHK {
		t.Errorf("StartIO TIC status expected %04x got: %04x", statusPCHK, st.Flags)
	}
}

// Invalid command returns unit check at once.
func TestUnitCheck(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x05000600)
	mem.SetMemory(0x504, 0x00000001)
	cc := StartIO(testAddr, 0x500)
	if cc != 1 {
		t.Errorf("StartIO check expected %d got: %d", 1, cc)
	}
	if st := GetStatus(); st.Flags&0xff00 != 0x0e00 {
		t.Errorf("StartIO check status expected %04x got: %04x", 0x0e00, st.Flags)
	}
}

// Channel end first, then device end later.
func TestChannelEndOnly(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x13000600)
	mem.SetMemory(0x504, 0x00000001)
	cc := StartIO(testAddr, 0x500)
	if cc != 1 {
		t.Errorf("StartIO CE expected %d got: %d", 1, cc)
	}
	if st := GetStatus(); st.Flags != 0x0800 {
		t.Errorf("StartIO CE status expected %04x got: %04x", 0x0800, st.Flags)
	}
	if StartIO(testAddr, 0x500) != 2 {
		t.Error("StartIO while busy not returning 2")
	}
	devNum, st := runChannel(100)
	if devNum != testAddr || st.Flags != 0x0400 {
		t.Errorf("Device end expected %04x got: %03x %04x", 0x0400, devNum, st.Flags)
	}
}

// INCH sets where status is stored.
func TestInch(t *testing.T) {
	chanSetup()
	mem.SetMemory(0x500, 0x00000800)
	mem.SetMemory(0x504, 0x00000024)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO INCH expected %d got: %d", 0, cc)
	}
	devNum, st := runChannel(100)
	if devNum != testAddr || st.Flags != 0x0c00 {
		t.Errorf("INCH status expected %04x got: %04x", 0x0c00, st.Flags)
	}
	if GetInch(testAddr) != 0x800 {
		t.Errorf("INCH address expected %06x got: %06x", 0x800, GetInch(testAddr))
	}

	// Next status is posted to buffer.
	mem.SetMemory(0x510, 0x03000600)
	mem.SetMemory(0x514, 0x00000001)
	_ = StartIO(testAddr, 0x510)
	addr := uint32(0x800 + (testAddr&0x3f)*8)
	if v := mem.GetMemory(addr); v != 0x518 {
		t.Errorf("INCH status word 1 expected %08x got: %08x", 0x518, v)
	}
	if v := mem.GetMemory(addr + 4); v != 0x0c000001 {
		t.Errorf("INCH status word 2 expected %08x got: %08x", 0x0c000001, v)
	}
}

// Test for end of room.
func TestWriteByteEndRoom(t *testing.T) {
	d := chanSetup()
	mem.SetMemory(0x500, 0x02000600)
	mem.SetMemory(0x504, 0x00000004)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO Read expected %d got: %d", 0, cc)
	}
	if TestWriteByteEnd(testAddr) {
		t.Error("TestWriteByteEnd true at start")
	}
	for i := range uint8(4) {
		if ChanWriteByte(testAddr, 0xa0+i) {
			t.Errorf("ChanWriteByte returned end at %d", i)
		}
	}
	if !TestWriteByteEnd(testAddr) {
		t.Error("TestWriteByteEnd false after count")
	}
	d.max = 0
	_, st := runChannel(100)
	if st.Flags != 0x0c00 {
		t.Errorf("Read status expected %04x got: %04x", 0x0c00, st.Flags)
	}
	if v := mem.GetMemory(0x600); v != 0xa0a1a2a3 {
		t.Errorf("Read data expected %08x got: %08x", 0xa0a1a2a3, v)
	}
}

// IPL reads 24 bytes and chains from location 8.
func TestIPL(t *testing.T) {
	d := chanSetup()
	if err := IPLDevice(testAddr); err != nil {
		t.Fatalf("IPL failed: %v", err)
	}
	if Loading != testAddr {
		t.Errorf("Loading expected %03x got: %03x", testAddr, Loading)
	}
	clear(d.data[:])
	d.data[8] = 0x03
	d.data[15] = 0x01
	d.max = 24
	devNum, st := runChannel(2000)
	if devNum != testAddr {
		t.Fatalf("IPL did not complete got: %04x", devNum)
	}
	if st.Flags != 0x0c00 || st.IOCD != 0x10 {
		t.Errorf("IPL status expected %06x %04x got: %06x %04x", 0x10, 0x0c00, st.IOCD, st.Flags)
	}
	if v := mem.GetMemory(8); v != 0x03000000 {
		t.Errorf("IPL data expected %08x got: %08x", 0x03000000, v)
	}
	Loading = dev.NoDev
}

func TestHaltIO(t *testing.T) {
	d := chanSetup()
	mem.SetMemory(0x500, 0x02000600)
	mem.SetMemory(0x504, 0x00000020)
	if cc := StartIO(testAddr, 0x500); cc != 0 {
		t.Fatalf("StartIO Read expected %d got: %d", 0, cc)
	}
	ev.Advance(25)
	if cc := HaltIO(testAddr); cc != 1 {
		t.Errorf("HaltIO expected %d got: %d", 1, cc)
	}
	_, st := runChannel(100)
	if (st.Flags & 0x0c00) != 0x0c00 {
		t.Errorf("HaltIO status expected %04x got: %04x", 0x0c00, st.Flags)
	}
	if d.count == 0x20 {
		t.Error("HaltIO did not stop transfer")
	}
}

func TestDebugOption(t *testing.T) {
	chanSetup()
	if err := Debug(4, "CMD"); err != nil {
		t.Errorf("Debug CMD failed: %v", err)
	}
	if err := Debug(4, "NONE"); err == nil {
		t.Error("Debug invalid option accepted")
	}
	if err := Debug(5, "CMD"); err == nil {
		t.Error("Debug on missing channel accepted")
	}
}
