/*
 * SEL32 - Channel functions.
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
	"errors"
	"fmt"
	"strconv"
	"strings"

	cmd "github.com/rcornwell/sel32/command/command"
	config "github.com/rcornwell/sel32/config/configparser"
	dev "github.com/rcornwell/sel32/emu/device"
	mem "github.com/rcornwell/sel32/emu/memory"
	"github.com/rcornwell/sel32/util/debug"
)

var (
	IrqPending bool
	Loading    = dev.NoDev

	// Hold information about channels.
	chanUnit [MaxChan]*chanDev

	// Last status posted to the host.
	lastStatus Status
)

// Return type of channel.
func GetType(devNum uint16) int {
	cUnit := chanUnit[(devNum>>8)&0xf]
	if cUnit == nil {
		return TypeUNA
	}
	return cUnit.chanType
}

// Return last status stored by StartIO, TestIO or ChanScan.
func GetStatus() Status {
	return lastStatus
}

// Process SIO instruction, start channel program at iocdAddr.
func StartIO(devNum uint16, iocdAddr uint32) uint8 {
	dNum := devNum & 0xff
	cUnit, subChan := findSubChannel(devNum)

	// If no device or channel, return CC = 3
	if cUnit == nil || cUnit.devTab[dNum] == nil {
		return 3
	}

	// If pending status is for us, return it with status code
	if subChan.devAddr == devNum && subChan.chanStatus != 0 {
		storeStatus(cUnit, subChan)
		return 1
	}

	// If channel is active return cc = 2
	if subChan.active || (subChan.ccwFlags&(chainCmd|chainData)) != 0 || subChan.chanStatus != 0 {
		return 2
	}

	dStatus := cUnit.devStatus[dNum]
	if dStatus == dev.CStatusDevEnd || dStatus == (dev.CStatusDevEnd|dev.CStatusChnEnd) {
		cUnit.devStatus[dNum] = 0
		dStatus = 0
	}

	// Check for any pending status for this device
	if dStatus != 0 {
		postStatus(cUnit, devNum, Status{Flags: uint16(dStatus) << 8})
		cUnit.devStatus[dNum] = 0
		return 1
	}

	status := uint16(cUnit.devTab[dNum].StartIO()) << 8
	if (status & statusBusy) != 0 {
		return 2
	}
	if status != 0 {
		postStatus(cUnit, devNum, Status{Flags: status})
		return 1
	}

	// All ok, start the program
	subChan.chanStatus = 0
	subChan.ccwFlags = 0
	subChan.iocd = iocdAddr & addrMask
	subChan.devAddr = devNum
	subChan.dev = cUnit.devTab[dNum]
	cUnit.devStatus[dNum] = 0
	debug.DebugChanf(int(devNum>>8)&0xf, cUnit.debugMsk, debugCmd, "SIO %03x IOCD %06x", devNum, subChan.iocd)

	if loadCCW(cUnit, subChan, false) {
		postStatus(cUnit, devNum, Status{IOCD: subChan.iocd, Flags: subChan.chanStatus})
		releaseSubChannel(cUnit, subChan)
		return 1
	}

	// If channel returned busy save status and return CC = 1
	if (subChan.chanStatus & statusBusy) != 0 {
		postStatus(cUnit, devNum, Status{IOCD: subChan.iocd, Flags: subChan.chanStatus})
		releaseSubChannel(cUnit, subChan)
		return 1
	}

	// If immediate command and not command chaining
	if (subChan.chanStatus&statusChnEnd) != 0 && (subChan.ccwFlags&chainCmd) == 0 {
		storeStatus(cUnit, subChan)
		releaseSubChannel(cUnit, subChan)
		return 1
	}

	// If immediate command and chaining report status, but don't clear things
	if (subChan.chanStatus&(statusChnEnd|statusDevEnd)) == statusChnEnd && (subChan.ccwFlags&chainCmd) != 0 {
		postStatus(cUnit, devNum, Status{IOCD: subChan.iocd, Flags: subChan.chanStatus})
		return 1
	}

	return 0
}

// Handle TIO instruction.
func TestIO(devNum uint16) uint8 {
	dNum := devNum & 0xff
	cUnit, subChan := findSubChannel(devNum)

	// If no device or channel, return CC = 3
	if cUnit == nil || cUnit.devTab[dNum] == nil {
		return 3
	}

	// If any error pending save status and return cc=1
	if (subChan.chanStatus & errorStatus) != 0 {
		storeStatus(cUnit, subChan)
		return 1
	}

	// If channel active, return cc=2
	if subChan.active || (subChan.ccwFlags&(chainCmd|chainData)) != 0 {
		return 2
	}

	// Device finished and channel status pending return it and cc=1
	if subChan.chanStatus != 0 {
		storeStatus(cUnit, subChan)
		subChan.devAddr = dev.NoDev
		return 1
	}

	// Device has returned a status, store it and return cc=1
	if cUnit.devStatus[dNum] != 0 {
		postStatus(cUnit, devNum, Status{Flags: uint16(cUnit.devStatus[dNum]) << 8})
		cUnit.devStatus[dNum] = 0
		return 1
	}

	// Ask device if it can start.
	status := uint16(cUnit.devTab[dNum].StartIO()) << 8
	if (status & statusBusy) != 0 {
		return 2
	}
	if (status & errorStatus) != 0 {
		postStatus(cUnit, devNum, Status{Flags: status})
		return 1
	}
	return 0
}

// Handle HIO instruction.
func HaltIO(devNum uint16) uint8 {
	dNum := devNum & 0xff
	cUnit, subChan := findSubChannel(devNum)

	// If no device or channel, return CC = 3
	if cUnit == nil || cUnit.devTab[dNum] == nil {
		return 3
	}

	// If any error pending return cc = 1
	if (subChan.chanStatus & errorStatus) != 0 {
		return 1
	}

	// If channel active, tell it to terminate
	if subChan.active {
		subChan.chanByte = bufEnd
		subChan.ccwFlags &= ^(chainCmd | chainData)
	}

	// Let device try to halt
	cc := cUnit.devTab[dNum].HaltIO()
	if cc == 1 {
		postStatus(cUnit, devNum, Status{IOCD: subChan.iocd, Flags: subChan.chanStatus})
	}
	return cc
}

// Read a byte from memory for a device write.
// Return true when no more data.
func ChanReadByte(devNum uint16) (uint8, bool) {
	cUnit, subChan := findSubChannel(devNum)
	if subChan == nil || !subChan.active {
		return 0, true
	}
	// Channel has pending system status
	if (subChan.chanStatus & 0x7f) != 0 {
		return 0, true
	}
	// Not write command
	if (subChan.ccwCmd & 1) == 0 {
		return 0, true
	}
	// Check if transfer is finished
	if subChan.chanByte == bufEnd {
		return 0, true
	}

	// Check if count zero
	if subChan.ccwCount == 0 {
		// If not data chaining, let device know there will be no
		// more data to come
		if (subChan.ccwFlags & chainData) == 0 {
			subChan.chanStatus |= statusChnEnd
			subChan.chanByte = bufEnd
			return 0, true
		}
		if loadCCW(cUnit, subChan, true) {
			return 0, true
		}
	}

	// Read in next word if buffer is in empty status
	if subChan.chanByte == bufEmpty {
		if readBuffer(cUnit, subChan) {
			return 0, true
		}
		nextAddress(subChan)
	}

	// Return current byte
	subChan.ccwCount--
	data := uint8(subChan.chanBuffer >> (8 * (3 - (subChan.chanByte & 3))) & 0xff)
	subChan.chanByte++
	debug.DebugChanf(int(devNum>>8)&0xf, cUnit.debugMsk, debugData, "read %03x %02x", devNum, data)

	// If count is zero and chaining load in new IOCD
	if subChan.ccwCount == 0 && (subChan.ccwFlags&chainData) != 0 {
		if loadCCW(cUnit, subChan, true) {
			// Next call will return end.
			subChan.chanByte = bufEnd
		}
	}
	return data, false
}

// Write a byte to memory for a device read.
// Return true if channel can take no more.
func ChanWriteByte(devNum uint16, data uint8) bool {
	cUnit, subChan := findSubChannel(devNum)
	if subChan == nil || !subChan.active {
		return true
	}
	// Channel has pending system status
	if (subChan.chanStatus & 0x7f) != 0 {
		return true
	}
	// Not read command
	if (subChan.ccwCmd & 1) != 0 {
		return true
	}
	// Check if transfer is finished
	if subChan.chanByte == bufEnd {
		if (subChan.ccwFlags & flagSLI) == 0 {
			subChan.chanStatus |= statusLength
		}
		return true
	}

	// Check if count zero
	if subChan.ccwCount == 0 {
		if subChan.chanDirty {
			if writeBuffer(cUnit, subChan) {
				return true
			}
		}
		// If not data chaining, let device know there will be no
		// more data to come
		if (subChan.ccwFlags & chainData) == 0 {
			subChan.chanByte = bufEnd
			if (subChan.ccwFlags & flagSLI) == 0 {
				subChan.chanStatus |= statusLength
			}
			return true
		}
		// Otherwise try and grab next IOCD
		if loadCCW(cUnit, subChan, true) {
			return true
		}
	}

	// If we are skipping, just adjust count
	if (subChan.ccwFlags & flagSkip) != 0 {
		subChan.ccwCount--
		subChan.chanByte = bufEmpty
		nextAddress(subChan)
		return false
	}

	// Check if we need to save what we have
	if subChan.chanByte == bufEmpty && subChan.chanDirty {
		if writeBuffer(cUnit, subChan) {
			return true
		}
		nextAddress(subChan)
		subChan.chanByte = bufEmpty
	}
	if subChan.chanByte == bufEmpty {
		if readBuffer(cUnit, subChan) {
			return true
		}
	}

	// Store it in buffer and adjust pointer
	subChan.ccwCount--
	offset := 8 * (subChan.chanByte & 3)
	mask := uint32(0xff000000 >> offset)
	subChan.chanBuffer &= ^mask
	subChan.chanBuffer |= uint32(data) << (24 - offset)
	subChan.chanByte++
	subChan.chanDirty = true
	debug.DebugChanf(int(devNum>>8)&0xf, cUnit.debugMsk, debugData, "write %03x %02x", devNum, data)

	// If count is zero and chaining load in new IOCD
	if subChan.ccwCount == 0 && (subChan.ccwFlags&chainData) != 0 {
		// Flush buffer
		if writeBuffer(cUnit, subChan) {
			return true
		}
		if loadCCW(cUnit, subChan, true) {
			return true
		}
	}
	return false
}

// Check if the next ChanWriteByte will find no room.
func TestWriteByteEnd(devNum uint16) bool {
	_, subChan := findSubChannel(devNum)
	if subChan == nil || !subChan.active {
		return true
	}
	if subChan.chanByte == bufEnd {
		return true
	}
	return subChan.ccwCount == 0 && (subChan.ccwFlags&chainData) == 0
}

// Return data address of an INCH command and consume its count.
func ChanInch(devNum uint16) (uint32, bool) {
	_, subChan := findSubChannel(devNum)
	if subChan == nil || !subChan.active || subChan.ccwCmd != dev.CmdINCH {
		return 0, true
	}
	subChan.ccwCount = 0
	return subChan.ccwAddr, false
}

// Set where status for the channel is posted. True if address invalid.
func SetInch(devNum uint16, addr uint32) bool {
	cUnit, _ := findSubChannel(devNum)
	if cUnit == nil || !mem.CheckAddr(addr&addrMask) {
		return true
	}
	cUnit.inchAddr = addr & addrMask
	debug.DebugChanf(int(devNum>>8)&0xf, cUnit.debugMsk, debugCmd, "INCH buffer %06x", cUnit.inchAddr)
	return false
}

// Return the channel status buffer address.
func GetInch(devNum uint16) uint32 {
	cUnit, _ := findSubChannel(devNum)
	if cUnit == nil {
		return 0
	}
	return cUnit.inchAddr
}

// Compute address of next word to read/write.
func nextAddress(subChan *chanCtl) {
	subChan.ccwAddr += 4 - (subChan.ccwAddr & 0x3)
}

// Signal end of transfer by device.
func ChanEnd(devNum uint16, flags uint8) {
	cUnit, subChan := findSubChannel(devNum)
	if subChan == nil {
		return
	}

	if subChan.chanDirty {
		_ = writeBuffer(cUnit, subChan)
	}
	subChan.chanStatus |= statusChnEnd
	subChan.chanStatus |= uint16(flags) << 8
	subChan.active = false

	// If count not zero and not suppressing length, report error
	if subChan.ccwCount != 0 && (subChan.ccwFlags&flagSLI) == 0 {
		subChan.chanStatus |= statusLength
		subChan.ccwFlags = 0
	}

	if subChan.ccwCount != 0 && (subChan.ccwFlags&(chainData|flagSLI)) == (chainData|flagSLI) {
		subChan.chanStatus |= statusLength
	}

	if (flags & (dev.CStatusAttn | dev.CStatusCheck | dev.CStatusExpt)) != 0 {
		subChan.ccwFlags = 0
	}

	if (flags & dev.CStatusDevEnd) != 0 {
		subChan.ccwFlags &= ^(chainData | flagSLI)
	}
	debug.DebugChanf(int(devNum>>8)&0xf, cUnit.debugMsk, debugStatus, "end %03x flags %02x status %04x",
		devNum, flags, subChan.chanStatus)

	cUnit.irqPending = true
	IrqPending = true
}

// A device wishes to inform the host it needs some service.
func SetDevAttn(devNum uint16, flags uint8) {
	cUnit, subChan := findSubChannel(devNum)
	if subChan == nil {
		return
	}

	switch {
	case subChan.devAddr == devNum && subChan.chainFlg && (flags&dev.CStatusDevEnd) != 0:
		// Chain being held for this device.
		subChan.chanStatus |= uint16(flags) << 8
	case subChan.devAddr == devNum && (flags&dev.CStatusDevEnd) != 0 &&
		((subChan.chanStatus&statusChnEnd) != 0 || subChan.active):
		// Device is currently on channel.
		subChan.chanStatus |= uint16(flags) << 8
		subChan.active = false
	default:
		// Device reporting status change.
		cUnit.devStatus[devNum&0xff] = flags
	}
	debug.DebugChanf(int(devNum>>8)&0xf, cUnit.debugMsk, debugStatus, "attention %03x flags %02x", devNum, flags)
	cUnit.irqPending = true
	IrqPending = true
}

// Reset all channels.
func ResetChannels() {
	for _, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}

		for j := range cUnit.subChans {
			subChan := &cUnit.subChans[j]
			releaseSubChannel(cUnit, subChan)
			subChan.ccwFlags = 0
			subChan.chanStatus = 0
			subChan.chanDirty = false
			subChan.chainFlg = false
		}

		cUnit.irqPending = false
		cUnit.inchAddr = 0
		// Call initialize function for each device.
		for j := range cUnit.devTab {
			if cUnit.devTab[j] != nil {
				_ = cUnit.devTab[j].InitDev()
			}
			cUnit.devStatus[j] = 0
		}
	}
	IrqPending = false
	Loading = dev.NoDev
}

// Scan all channels and see if one is ready to start or has interrupt pending.
// Returns device and the status posted for it.
func ChanScan() (uint16, Status) {
	// Quick exit if no pending IRQ's
	if !IrqPending {
		return dev.NoDev, Status{}
	}

	IrqPending = false
	pendDev := dev.NoDev
scan:
	for _, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}
		for j := range cUnit.subChans {
			subChan := &cUnit.subChans[j]
			if subChan.devAddr == dev.NoDev {
				continue
			}

			// Check if PCI pending or device has hard error
			if (subChan.chanStatus&statusPCI) != 0 || (subChan.chanStatus&0xff) != 0 {
				pendDev = subChan.devAddr
				break scan
			}

			// If chaining and device end continue
			if subChan.chainFlg && (subChan.chanStatus&statusDevEnd) != 0 {
				_ = loadCCW(cUnit, subChan, true)
				continue
			}

			if (subChan.chanStatus & statusChnEnd) != 0 {
				// Grab another command if command chaining in effect
				if (subChan.ccwFlags & chainCmd) != 0 {
					_ = loadCCW(cUnit, subChan, true)
					continue
				}
				pendDev = subChan.devAddr
				break scan
			}
		}
	}

	// Only return loading unit on loading
	if Loading != dev.NoDev && Loading != pendDev {
		return dev.NoDev, Status{}
	}

	if pendDev != dev.NoDev {
		// Set to scan next time
		IrqPending = true
		cUnit, subChan := findSubChannel(pendDev)
		st := Status{IOCD: subChan.iocd, Flags: subChan.chanStatus, Count: subChan.ccwCount}
		if Loading == pendDev {
			subChan.chanStatus = 0
			lastStatus = st
		} else {
			storeStatus(cUnit, subChan)
		}
		cUnit.devStatus[pendDev&0xff] = 0
		return pendDev, st
	}

	// Check for pending device status
	for i, cUnit := range chanUnit {
		if cUnit == nil || !cUnit.irqPending {
			continue
		}
		cUnit.irqPending = false
		for j := range cUnit.devStatus {
			if cUnit.devStatus[j] != 0 {
				cUnit.irqPending = true
				IrqPending = true
				devNum := (uint16(i) << 8) | uint16(j)
				st := Status{Flags: uint16(cUnit.devStatus[j]) << 8}
				postStatus(cUnit, devNum, st)
				cUnit.devStatus[j] = 0
				return devNum, st
			}
		}
	}
	return dev.NoDev, Status{}
}

// IPL a device. Reads 24 bytes to location 0 and chains from location 8.
func IPLDevice(devNum uint16) error {
	dNum := devNum & 0xff
	cUnit, subChan := findSubChannel(devNum)

	if cUnit == nil {
		return fmt.Errorf("channel %d does not exist", (devNum>>8)&0xf)
	}

	if cUnit.devTab[dNum] == nil {
		return fmt.Errorf("device %03x does not exist", devNum)
	}

	// Clear all channels before staring new device.
	ResetChannels()

	status := cUnit.devTab[dNum].StartIO()
	if status != 0 {
		return fmt.Errorf("device %03x gave non zero status to IPL command: %02x", devNum, status)
	}

	// Create IPL command.
	subChan.chanStatus = 0
	subChan.dev = cUnit.devTab[dNum]
	subChan.iocd = 0x8
	subChan.devAddr = devNum
	subChan.ccwCount = 24
	subChan.ccwFlags = chainCmd | flagSLI
	subChan.ccwAddr = 0
	subChan.ccwCmd = dev.CmdRead
	subChan.active = true
	subChan.chanByte = bufEmpty
	subChan.chanDirty = false

	status = subChan.dev.StartCmd(subChan.ccwCmd)
	subChan.chanStatus |= uint16(status) << 8

	// Check if any errors from initial command
	if (subChan.chanStatus & (statusAttn | statusCheck | statusExcept)) != 0 {
		releaseSubChannel(cUnit, subChan)
		subChan.ccwFlags = 0
		subChan.chanStatus = 0
		return fmt.Errorf("device %03x gave error status to IPL command: %02x", devNum, status)
	}
	Loading = devNum
	return nil
}

// Add a device at given address.
func AddDevice(device dev.Device, command cmd.Command, devNum uint16) error {
	cUnit := chanUnit[(devNum>>8)&0xf]
	dNum := devNum & 0xff
	if cUnit == nil {
		return fmt.Errorf("channel %d does not exist", (devNum>>8)&0xf)
	}

	if cUnit.devTab[dNum] != nil {
		return fmt.Errorf("device %03x already exists", devNum)
	}
	cUnit.devTab[dNum] = device
	cUnit.devCmd[dNum] = command
	return nil
}

// Get a device pointer.
func GetDevice(devNum uint16) (dev.Device, error) {
	cUnit := chanUnit[(devNum>>8)&0xf]
	if cUnit == nil {
		return nil, fmt.Errorf("channel %d does not exist", (devNum>>8)&0xf)
	}

	device := cUnit.devTab[devNum&0xff]
	if device == nil {
		return nil, fmt.Errorf("device %03x doesn't exist", devNum)
	}
	return device, nil
}

// Get the console command interface for a device.
func GetCommand(devNum uint16) (cmd.Command, error) {
	cUnit := chanUnit[(devNum>>8)&0xf]
	if cUnit == nil {
		return nil, fmt.Errorf("channel %d does not exist", (devNum>>8)&0xf)
	}
	command := cUnit.devCmd[devNum&0xff]
	if command == nil {
		return nil, fmt.Errorf("device %03x has no commands", devNum)
	}
	return command, nil
}

// Addresses of every device with a console interface, in order.
func Devices() []uint16 {
	list := []uint16{}
	for cNum, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}
		for dNum, command := range cUnit.devCmd {
			if command != nil {
				list = append(list, uint16(cNum<<8|dNum))
			}
		}
	}
	return list
}

// Delete a device at a given address.
func DelDevice(devNum uint16) {
	cUnit := chanUnit[(devNum>>8)&0xf]
	if cUnit != nil {
		cUnit.devTab[devNum&0xff] = nil
		cUnit.devCmd[devNum&0xff] = nil
		cUnit.devStatus[devNum&0xff] = 0
	}
}

// Call shutdown on every device.
func Shutdown() {
	for _, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}
		for _, device := range cUnit.devTab {
			if device != nil {
				device.Shutdown()
			}
		}
	}
}

// Enable a channel of a given type.
func AddChannel(cNum int, ty int) {
	if cNum >= len(chanUnit) || chanUnit[cNum] != nil {
		return
	}

	cUnit := chanDev{chanType: ty}
	for j := range cUnit.subChans {
		cUnit.subChans[j].devAddr = dev.NoDev
	}
	chanUnit[cNum] = &cUnit
}

// Initialize all channels and clear any device assignments.
func InitializeChannels() {
	for i := range chanUnit {
		chanUnit[i] = nil
	}
	IrqPending = false
	Loading = dev.NoDev
	lastStatus = Status{}
}

// Enable debug option on a channel.
func Debug(cNum int, opt string) error {
	if cNum < 0 || cNum >= len(chanUnit) || chanUnit[cNum] == nil {
		return fmt.Errorf("channel %d does not exist", cNum)
	}
	flag, err := debug.Lookup(debugOption, opt)
	if err != nil {
		return err
	}
	chanUnit[cNum].debugMsk |= flag
	return nil
}

// Each device has its own subchannel.
func findSubChannel(devNum uint16) (*chanDev, *chanCtl) {
	if devNum == dev.NoDev {
		return nil, nil
	}
	cUnit := chanUnit[(devNum>>8)&0xf]
	if cUnit == nil {
		return nil, nil
	}
	return cUnit, &cUnit.subChans[devNum&0xff]
}

// Disconnect subchannel from its device.
func releaseSubChannel(cUnit *chanDev, subChan *chanCtl) {
	if subChan.devAddr != dev.NoDev {
		cUnit.devStatus[subChan.devAddr&0xff] = 0
	}
	subChan.chanStatus = 0
	subChan.active = false
	subChan.devAddr = dev.NoDev
	subChan.dev = nil
}

// Save full status.
func storeStatus(cUnit *chanDev, subChan *chanCtl) {
	postStatus(cUnit, subChan.devAddr, Status{IOCD: subChan.iocd, Flags: subChan.chanStatus, Count: subChan.ccwCount})
	if (subChan.chanStatus & statusPCI) != 0 {
		subChan.chanStatus &= ^statusPCI
	} else {
		subChan.chanStatus = 0
	}
	subChan.ccwFlags &= ^flagPCI
}

// Record status and copy it to the status buffer if channel has one.
func postStatus(cUnit *chanDev, devNum uint16, st Status) {
	lastStatus = st
	debug.DebugChanf(int(devNum>>8)&0xf, cUnit.debugMsk, debugStatus, "status %03x IOCD %06x %04x %04x",
		devNum, st.IOCD, st.Flags, st.Count)
	if cUnit.inchAddr == 0 {
		return
	}
	addr := cUnit.inchAddr + uint32(devNum&0x3f)*8
	_ = mem.PutWord(addr, st.IOCD)
	_ = mem.PutWord(addr+4, (uint32(st.Flags)<<16)|uint32(st.Count))
}

// Load in the next IOCD, return true if failure, false if success.
func loadCCW(cUnit *chanDev, subChan *chanCtl, ticOk bool) bool {
	var cmdFlag bool
	var chain bool

	// If last chain, start command
	if subChan.chainFlg && (subChan.ccwFlags&chainData) == 0 {
		chain = true
		subChan.chainFlg = false
		cmdFlag = true
	} else {
		for {
			// Abort if IOCD not on double word boundary
			if (subChan.iocd & 0x7) != 0 {
				subChan.chanStatus = statusPCHK
				return true
			}

			// Abort if we have pending errors
			if (subChan.chanStatus & 0x7F) != 0 {
				return true
			}

			chain = (subChan.ccwFlags & chainCmd) != 0

			// Check if we have status modifier set
			if (subChan.chanStatus & statusSMS) != 0 {
				subChan.iocd += 8
				subChan.iocd &= addrMask
				subChan.chanStatus &= ^statusSMS
			}

			word, err := readFullWord(cUnit, subChan, subChan.iocd)
			if err {
				return true
			}
			subChan.iocd += 4
			subChan.iocd &= addrMask

			// TIC can't follow TIC nor be first in chain
			command := uint8((word & cmdMask) >> 24)
			if command != dev.CmdTIC {
				// Check if not chaining data
				if (subChan.ccwFlags & chainData) == 0 {
					subChan.ccwCmd = command
					cmdFlag = true
				}
				subChan.ccwAddr = word & addrMask
				break
			}
			subChan.iocd += 4
			subChan.iocd &= addrMask
			if !ticOk {
				subChan.chanStatus = statusPCHK
				cUnit.irqPending = true
				IrqPending = true
				return true
			}
			subChan.iocd = word & addrMask
			ticOk = false
		}

		word, err := readFullWord(cUnit, subChan, subChan.iocd)
		if err {
			return true
		}
		subChan.iocd += 4
		subChan.iocd &= addrMask
		subChan.ccwCount = uint16(word & countMask)

		debug.DebugChanf(int(subChan.devAddr>>8)&0xf, cUnit.debugMsk, debugCmd, "IOCD %06x %02x%06x %08x",
			subChan.iocd-8, subChan.ccwCmd, subChan.ccwAddr, word)
		// Copy SLI indicator in data chained command
		if (subChan.ccwFlags & (chainData | flagSLI)) == (chainData | flagSLI) {
			word |= uint32(flagSLI) << 16
		}
		subChan.ccwFlags = uint16(word>>16) & 0xff00
		subChan.chanByte = bufEmpty

		// Check if invalid count
		if subChan.ccwCount == 0 {
			subChan.chanStatus = statusPCHK
			subChan.active = false
			cUnit.irqPending = true
			IrqPending = true
			return true
		}
	}

	// If command pending start it.
	if cmdFlag {
		// Only INCH may have a zero low nibble
		if (subChan.ccwCmd&0xf) == 0 && subChan.ccwCmd != dev.CmdINCH {
			subChan.chanStatus |= statusPCHK
			subChan.active = false
			cUnit.irqPending = true
			IrqPending = true
			return true
		}

		if subChan.dev == nil {
			return true
		}

		subChan.chanByte = bufEmpty
		subChan.active = true
		status := uint16(subChan.dev.StartCmd(subChan.ccwCmd)) << 8

		// If device is busy, hold the chain until device end
		if (status & statusBusy) != 0 {
			subChan.active = false
			if chain {
				subChan.chainFlg = true
			} else {
				subChan.chanStatus |= status
			}
			return false
		}
		subChan.chanStatus &= 0xff
		subChan.chanStatus |= status
		// Check if any errors from initial command
		if (subChan.chanStatus & (statusAttn | statusCheck | statusExcept)) != 0 {
			subChan.active = false
			subChan.ccwFlags = 0
			subChan.chanStatus |= statusChnEnd
			cUnit.irqPending = true
			IrqPending = true
			return false
		}

		// Check if immediate channel end
		if (subChan.chanStatus & statusChnEnd) != 0 {
			if subChan.chanDirty {
				_ = writeBuffer(cUnit, subChan)
			}
			subChan.ccwFlags |= flagSLI
			subChan.active = false
			cUnit.irqPending = true
			IrqPending = true
		}
	}

	if (subChan.ccwFlags & flagPCI) != 0 {
		subChan.chanStatus |= statusPCI
		cUnit.irqPending = true
		IrqPending = true
	}
	return false
}

// Read a full word from memory.
// Return true if fail and false if success.
func readFullWord(cUnit *chanDev, subChan *chanCtl, addr uint32) (uint32, bool) {
	word, err := mem.GetWord(addr)
	if err {
		subChan.chanStatus |= statusPCHK
		cUnit.irqPending = true
		IrqPending = true
		return 0, true
	}
	return word, false
}

// Read a word into channel buffer.
// Return true if fail, false if success.
func readBuffer(cUnit *chanDev, subChan *chanCtl) bool {
	word, err := readFullWord(cUnit, subChan, subChan.ccwAddr&^3)
	if err {
		subChan.chanByte = bufEnd
		return true
	}
	subChan.chanBuffer = word
	subChan.chanByte = uint8(subChan.ccwAddr & 3)
	return false
}

// Write channel buffer to memory.
// Return true if fail, false if success.
func writeBuffer(cUnit *chanDev, subChan *chanCtl) bool {
	addr := subChan.ccwAddr & mem.AMASK &^ 3
	if !mem.CheckAddr(addr) {
		subChan.chanStatus |= statusPCHK
		subChan.chanByte = bufEnd
		subChan.chanDirty = false
		cUnit.irqPending = true
		IrqPending = true
		return true
	}

	err := mem.PutWord(addr, subChan.chanBuffer)
	subChan.chanByte = bufEmpty
	subChan.chanDirty = false
	return err
}

// register a channel create on initialize.
func init() {
	config.RegisterModel("CHANNEL", config.TypeOptions, create)
}

// Create a channel.
func create(_ uint16, number string, options []config.Option) error {
	ch, err := strconv.ParseUint(number, 16, 8)
	if err != nil {
		return errors.New("channel number must be a hex number: " + number)
	}

	chanNum := int(ch)
	if chanNum >= len(chanUnit) {
		return fmt.Errorf("channel number too large: %d max: %d", chanNum, len(chanUnit)-1)
	}
	if chanUnit[chanNum] != nil {
		return fmt.Errorf("channel %d already defined", chanNum)
	}

	chanType := TypeUNA
	for _, option := range options {
		switch strings.ToUpper(option.Name) {
		case "IOP":
			if chanType != TypeUNA {
				return errors.New("can't have more then one channel type")
			}
			chanType = TypeIOP
		case "CLASSF", "MFP":
			if chanType != TypeUNA {
				return errors.New("can't have more then one channel type")
			}
			chanType = TypeClass
		default:
			return errors.New("channel invalid option: " + option.Name)
		}
		if option.Value != nil || option.EqualOpt != "" {
			return errors.New("extra options not supported on: " + option.Name)
		}
	}

	if chanType == TypeUNA {
		chanType = TypeClass
	}

	AddChannel(chanNum, chanType)
	return nil
}
