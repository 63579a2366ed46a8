/*
 * SEL32 - 8064 channel connection
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
	mem "github.com/rcornwell/sel32/emu/memory"
	ch "github.com/rcornwell/sel32/emu/sys_channel"
)

// Host services used by the disk processor.
type channel interface {
	ChanReadByte(devNum uint16) (uint8, bool)
	ChanWriteByte(devNum uint16, data uint8) bool
	TestWriteByteEnd(devNum uint16) bool
	ChanEnd(devNum uint16, flags uint8)
	SetDevAttn(devNum uint16, flags uint8)
	ChanInch(devNum uint16) (uint32, bool)
	SetInch(devNum uint16, addr uint32) bool
	GetWord(addr uint32) (uint32, bool)
	IPLDevice(devNum uint16) error
}

// Connection to the system channels.
type sysChannel struct{}

func (sysChannel) ChanReadByte(devNum uint16) (uint8, bool) {
	return ch.ChanReadByte(devNum)
}

func (sysChannel) ChanWriteByte(devNum uint16, data uint8) bool {
	return ch.ChanWriteByte(devNum, data)
}

func (sysChannel) TestWriteByteEnd(devNum uint16) bool {
	return ch.TestWriteByteEnd(devNum)
}

func (sysChannel) ChanEnd(devNum uint16, flags uint8) {
	ch.ChanEnd(devNum, flags)
}

func (sysChannel) SetDevAttn(devNum uint16, flags uint8) {
	ch.SetDevAttn(devNum, flags)
}

func (sysChannel) ChanInch(devNum uint16) (uint32, bool) {
	return ch.ChanInch(devNum)
}

func (sysChannel) SetInch(devNum uint16, addr uint32) bool {
	return ch.SetInch(devNum, addr)
}

func (sysChannel) GetWord(addr uint32) (uint32, bool) {
	return mem.GetWord(addr)
}

func (sysChannel) IPLDevice(devNum uint16) error {
	return ch.IPLDevice(devNum)
}

func (sysChannel) AddDevice(unit *Unit, devNum uint16) error {
	return ch.AddDevice(unit, unit, devNum)
}
