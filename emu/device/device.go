package device

/*
 * SEL32 - Device interface and common channel definitions.
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

// Interface for devices to handle commands.
type Device interface {
	StartIO() uint8           // Check if device can start a channel program.
	StartCmd(cmd uint8) uint8 // Start a command, return immediate status.
	HaltIO() uint8            // Stop current operation.
	InitDev() uint8           // Initialize device.
	Shutdown()                // Release any host resources.
	Debug(opt string) error   // Enable a debug option.
}

// Devices that can be used to load an initial program.
type Bootable interface {
	Boot() error
}

const (
	NoDev uint16 = 0xffff // Code for no device

	// Common channel status bits.
	CStatusAttn   uint8 = 0x80 // Unit attention
	CStatusSMS    uint8 = 0x40 // Status modifier
	CStatusCtlEnd uint8 = 0x20 // Control unit end
	CStatusBusy   uint8 = 0x10 // Unit Busy
	CStatusChnEnd uint8 = 0x08 // Channel end
	CStatusDevEnd uint8 = 0x04 // Device end
	CStatusCheck  uint8 = 0x02 // Unit check
	CStatusExpt   uint8 = 0x01 // Unit exception

	// Command codes shared by all SEL32 devices.
	CmdINCH  uint8 = 0x00 // Initialize channel
	CmdWrite uint8 = 0x01 // Write command
	CmdRead  uint8 = 0x02 // Read command
	CmdCTL   uint8 = 0x03 // Control command
	CmdSense uint8 = 0x04 // Sense channel command
	CmdTIC   uint8 = 0x08 // Transfer in channel

	// Basic sense information.
	SenseCMDREJ  uint8 = 0x80 // Command reject
	SenseINTVENT uint8 = 0x40 // Unit intervention required
	SenseBUSCHK  uint8 = 0x20 // Parity error on bus
	SenseEQUCHK  uint8 = 0x10 // Equipment check
	SenseDATCHK  uint8 = 0x08 // Data Check
	SenseOVRRUN  uint8 = 0x04 // Data Overrun
)
