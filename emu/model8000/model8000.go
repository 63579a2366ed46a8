/*
 * SEL32 - 8000 Input Output Processor channel controller
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
	"errors"
	"fmt"
	"strings"

	"github.com/rcornwell/sel32/command/command"
	config "github.com/rcornwell/sel32/config/configparser"
	dev "github.com/rcornwell/sel32/emu/device"
	event "github.com/rcornwell/sel32/emu/event"
	ch "github.com/rcornwell/sel32/emu/sys_channel"
	debug "github.com/rcornwell/sel32/util/debug"
)

const (
	// Debug options.
	debugCmd = 1 << iota
	debugDetail
)

var debugOption = map[string]int{
	"CMD":    debugCmd,
	"DETAIL": debugDetail,
}

const (
	cmdNOP uint8 = 0x03 // No operation

	// Status word.
	statusCMDREJ uint32 = 0x80000000 // Command reject
	statusRDY    uint32 = 0x00000080 // Device ready
	statusONLN   uint32 = 0x00000040 // Device online

	startDelay = 20
)

// Channel controller, owns the channel status buffer.
type Model8000ctx struct {
	addr     uint16 // Controller address
	busy     bool   // Command in progress
	cmd      uint8  // Current command
	status   uint32 // Ready and error status
	debugMsk int    // Debug options mask
}

// Handle start of IOCD chain.
func (device *Model8000ctx) StartIO() uint8 {
	if device.busy {
		return dev.CStatusBusy
	}
	return 0
}

// Queue command, status is sent when callback runs.
func (device *Model8000ctx) StartCmd(cmd uint8) uint8 {
	debug.DebugDevf(device.addr, device.debugMsk, debugCmd, "start cmd %02x", cmd)
	if device.busy {
		return dev.CStatusBusy
	}
	switch cmd {
	case dev.CmdINCH, cmdNOP, dev.CmdSense:
		device.status |= statusRDY | statusONLN
	default:
		device.status |= statusCMDREJ
	}
	device.busy = true
	device.cmd = cmd
	event.AddEvent(device, device.callback, startDelay, int(cmd))
	return 0
}

// Handle HIO instruction.
func (device *Model8000ctx) HaltIO() uint8 {
	if !device.busy {
		return 0
	}
	event.CancelAll(device)
	device.busy = false
	ch.ChanEnd(device.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)
	return 1
}

// Initialize a device.
func (device *Model8000ctx) InitDev() uint8 {
	event.CancelAll(device)
	device.busy = false
	device.status = statusRDY | statusONLN
	return 0
}

// Nothing held open.
func (device *Model8000ctx) Shutdown() {
}

// Enable debug options.
func (device *Model8000ctx) Debug(opt string) error {
	flag, err := debug.Lookup(debugOption, strings.ToUpper(opt))
	if err != nil {
		return fmt.Errorf("8000: %w", err)
	}
	device.debugMsk |= flag
	return nil
}

// Run command.
func (device *Model8000ctx) callback(cmd int) {
	device.busy = false
	switch uint8(cmd) {
	case dev.CmdINCH:
		addr, err := ch.ChanInch(device.addr)
		if err || ch.SetInch(device.addr, addr) {
			device.status |= statusCMDREJ
			ch.ChanEnd(device.addr, dev.CStatusChnEnd|dev.CStatusDevEnd|dev.CStatusCheck)
			return
		}
		debug.DebugDevf(device.addr, device.debugMsk, debugCmd, "INCH buffer %06x", addr)
		ch.ChanEnd(device.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)

	case cmdNOP:
		ch.ChanEnd(device.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)

	case dev.CmdSense:
		for i := range 4 {
			if ch.ChanWriteByte(device.addr, uint8(device.status>>(24-8*i))) {
				break
			}
		}
		device.status &= ^statusCMDREJ
		ch.ChanEnd(device.addr, dev.CStatusChnEnd|dev.CStatusDevEnd)

	default:
		debug.DebugDevf(device.addr, device.debugMsk, debugCmd, "invalid cmd %02x", cmd)
		ch.ChanEnd(device.addr, dev.CStatusChnEnd|dev.CStatusDevEnd|dev.CStatusExpt)
	}
}

// No console options.
func (device *Model8000ctx) Options(_ string) []command.Options {
	return nil
}

func (device *Model8000ctx) Attach(_ []*command.CmdOption) error {
	return errors.New("8000 does not support attach")
}

func (device *Model8000ctx) Detach() error {
	return errors.New("8000 does not support detach")
}

func (device *Model8000ctx) Set(_ bool, _ []*command.CmdOption) error {
	return errors.New("8000 has no options to set")
}

// Show command.
func (device *Model8000ctx) Show(_ []*command.CmdOption) (string, error) {
	return fmt.Sprintf("%03x: IOP INCH=%06x STATUS=%08x", device.addr, ch.GetInch(device.addr), device.status), nil
}

// register a device on initialize.
func init() {
	config.RegisterModel("8000", config.TypeModel, create)
}

// Create an IOP.
func create(devNum uint16, _ string, options []config.Option) error {
	if len(options) != 0 {
		return errors.New("8000 does not take options")
	}
	device := Model8000ctx{addr: devNum, status: statusRDY | statusONLN}
	err := ch.AddDevice(&device, &device, devNum)
	if err != nil {
		return fmt.Errorf("unable to create 8000 at %03x: %w", devNum, err)
	}
	return nil
}
