/*
 * SEL32 - Channel definitions.
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
	cmd "github.com/rcornwell/sel32/command/command"
	dev "github.com/rcornwell/sel32/emu/device"
)

const (
	MaxChan = 16 // Max number of channels

	// Channel types.
	TypeUNA   = 0 // Channel not defined
	TypeClass = 1 // Class F controller channel
	TypeIOP   = 2 // IOP controlled channel

	cmdMask   uint32 = 0xff000000 // Mask for command
	addrMask  uint32 = 0x00ffffff // Mask for data address
	countMask uint32 = 0x0000ffff // Mask for data count

	errorStatus uint16 = (statusAttn | statusPCI | statusExcept | statusCheck |
		statusPCHK | statusCDChk | statusCCChk | statusCIChk | statusChain)

	// IOCD flags, upper half of second word.
	chainData uint16 = 0x8000 // Chain data
	chainCmd  uint16 = 0x4000 // Chain command
	flagSLI   uint16 = 0x2000 // Suppress length indicator
	flagSkip  uint16 = 0x1000 // Suppress memory write
	flagPCI   uint16 = 0x0800 // Program controlled interrupt

	bufEmpty uint8 = 0x04 // Buffer is empty
	bufEnd   uint8 = 0x10 // Device has returned channel end, no more data

	// Channel status information.
	statusAttn   uint16 = 0x8000 // Device raised attention
	statusSMS    uint16 = 0x4000 // Status modifier
	statusCtlEnd uint16 = 0x2000 // Control end
	statusBusy   uint16 = 0x1000 // Device busy
	statusChnEnd uint16 = 0x0800 // Channel end
	statusDevEnd uint16 = 0x0400 // Device end
	statusCheck  uint16 = 0x0200 // Unit check
	statusExcept uint16 = 0x0100 // Unit exception
	statusPCI    uint16 = 0x0080 // Program interrupt
	statusLength uint16 = 0x0040 // Incorrect length
	statusPCHK   uint16 = 0x0020 // Program check
	statusCDChk  uint16 = 0x0008 // Channel data check
	statusCCChk  uint16 = 0x0004 // Channel control check
	statusCIChk  uint16 = 0x0002 // Channel interface check
	statusChain  uint16 = 0x0001 // Channel chain check
)

// Debug options.
const (
	debugCmd = 1 << iota
	debugData
	debugStatus
)

var debugOption = map[string]int{
	"CMD":    debugCmd,
	"DATA":   debugData,
	"STATUS": debugStatus,
}

// Status posted for a device when it finishes.
type Status struct {
	IOCD  uint32 // Address of next IOCD
	Flags uint16 // Channel and device status bits
	Count uint16 // Residual count
}

// Holds individual subchannel control information.
type chanCtl struct {
	dev        dev.Device // Device running current program
	iocd       uint32     // Address of next IOCD
	ccwAddr    uint32     // Current data address
	ccwCount   uint16     // Bytes left in current IOCD
	ccwCmd     uint8      // Current command
	active     bool       // Command in progress
	ccwFlags   uint16     // IOCD flags
	chanBuffer uint32     // Channel data buffer
	chanStatus uint16     // Channel status
	chanDirty  bool       // Buffer has been modified
	devAddr    uint16     // Device on channel
	chanByte   uint8      // Current byte, dirty/full
	chainFlg   bool       // Holding on chain
}

// Holds channel information.
type chanDev struct {
	devStatus  [256]uint8       // Status from each device
	devTab     [256]dev.Device  // Device interfaces
	devCmd     [256]cmd.Command // Console interfaces
	subChans   [256]chanCtl     // One subchannel per device
	chanType   int              // Type of channel
	inchAddr   uint32           // Status buffer from INCH
	irqPending bool             // Channel has pending IRQ
	debugMsk   int              // Debug mask
}
