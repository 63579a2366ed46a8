/*
 * SEL32 - 8064 High Speed Disk Processor
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
	"errors"
	"fmt"
	"strings"

	"github.com/rcornwell/sel32/command/command"
	config "github.com/rcornwell/sel32/config/configparser"
	dev "github.com/rcornwell/sel32/emu/device"
	event "github.com/rcornwell/sel32/emu/event"
	debug "github.com/rcornwell/sel32/util/debug"
	"github.com/rcornwell/sel32/util/disk"
)

const (
	// Debug options.
	debugCmd = 1 << iota
	debugData
	debugDetail
	debugSeek
)

var debugOption = map[string]int{
	"CMD":    debugCmd,
	"DATA":   debugData,
	"DETAIL": debugDetail,
	"SEEK":   debugSeek,
}

// Number of drives on one controller.
const NumUnits = 8

// Delays in event ticks.
const (
	startDelay  = 20  // Command start to first service
	sectorDelay = 10  // Between sectors
	seekLong    = 800 // Move 50 cylinders
	seekMedium  = 400 // Move 20 cylinders
	seekShort   = 200 // Move 1 cylinder
)

var ErrUnattached = errors.New("unit not attached")

// Command being run by a unit.
type Command uint16

const (
	CmdINCH Command = 0x00  // Initialize channel
	CmdWD   Command = 0x01  // Write data
	CmdRD   Command = 0x02  // Read data
	CmdNOP  Command = 0x03  // No operation
	CmdSNS  Command = 0x04  // Sense
	CmdSCK  Command = 0x07  // Seek cylinder, track, sector
	CmdLMR  Command = 0x1f  // Load mode register
	CmdXEZ  Command = 0x37  // Rezero and read IPL record
	CmdNone Command = 0x100 // Unit idle
)

var cmdNames = map[Command]string{
	CmdINCH: "INCH",
	CmdWD:   "WD",
	CmdRD:   "RD",
	CmdNOP:  "NOP",
	CmdSNS:  "SNS",
	CmdSCK:  "SCK",
	CmdLMR:  "LMR",
	CmdXEZ:  "XEZ",
	CmdNone: "none",
}

func (cmd Command) String() string {
	if name, ok := cmdNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("%02x", uint16(cmd))
}

// Status flags of the current operation.
type Flags uint8

const (
	FlagBusy     Flags = 1 << iota // Busy returned while command active
	FlagSeeking                    // Moving to target cylinder
	FlagReading                    // Read in progress
	FlagWriting                    // Write in progress
	FlagReadDone                   // Last read sector sent
	FlagEndDisk                    // Ran off end of disk
	FlagStar                       // STAR holds a valid target
)

// Stage of the current operation.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseParamFetch
	PhaseValidating
	PhaseSeeking
	PhaseOnCylinder
	PhaseTransfer
)

// Operation in progress on a unit.
type State struct {
	Cmd   Command
	Flags Flags
	Phase Phase
}

var idle = State{Cmd: CmdNone}

// Current head position.
type Position struct {
	Cyl uint32
	Trk uint32
	Sec uint32
}

// Controller shared by all eight drives.
type Controller struct {
	addr  uint16          // Address of unit 0
	units [NumUnits]*Unit // Drives, unit n at addr + 2n
	ch    channel         // Channel used to talk to host
}

// One disk drive.
type Unit struct {
	ctl      *Controller   // Controller this drive is on
	addr     uint16        // Device address
	number   int           // Unit number on controller
	geom     *Geometry     // Disk model
	readOnly bool          // Attach read only
	state    State         // Current operation
	star     uint32        // Target cylinder, track, sector
	target   uint32        // Cylinder arm is moving to
	sense    uint32        // Mode and error status
	attr     uint32        // Attribute word from INCH
	pos      *Position     // Head position, nil when not attached
	disk     *disk.Context // Image file
	buf      []byte        // One sector
	debugMsk int           // Debug options mask
}

// Controllers by base address.
var controllers = map[uint16]*Controller{}

func newController(addr uint16, ch channel) *Controller {
	ctl := &Controller{addr: addr, ch: ch}
	geom, _ := Lookup(DefaultModel)
	for i := range ctl.units {
		unit := &Unit{
			ctl:    ctl,
			addr:   addr + uint16(2*i),
			number: i,
			state:  idle,
			disk:   disk.NewContext(),
		}
		unit.setGeometry(geom)
		ctl.units[i] = unit
	}
	return ctl
}

// Return unit n.
func (ctl *Controller) Unit(n int) *Unit {
	if n < 0 || n >= NumUnits {
		return nil
	}
	return ctl.units[n]
}

// Reset clears all drives on controller.
func (ctl *Controller) Reset() {
	for _, unit := range ctl.units {
		event.CancelAll(unit)
		unit.state = idle
		unit.star = 0
		unit.target = 0
		unit.sense = 0
		if unit.pos != nil {
			*unit.pos = Position{}
		}
	}
}

func (unit *Unit) setGeometry(geom *Geometry) {
	unit.geom = geom
	unit.buf = make([]byte, geom.SectorBytes())
}

// Device address of unit.
func (unit *Unit) GetAddr() uint16 {
	return unit.addr
}

// Disk model of unit.
func (unit *Unit) Geometry() Geometry {
	return *unit.geom
}

// Current head position, false if not attached.
func (unit *Unit) Position() (Position, bool) {
	if unit.pos == nil {
		return Position{}, false
	}
	return *unit.pos, true
}

// Current command, flags and phase.
func (unit *Unit) State() State {
	return unit.state
}

// Mode and error sense bits.
func (unit *Unit) Sense() uint32 {
	return unit.sense
}

// Attribute word loaded by INCH.
func (unit *Unit) Attribute() Attribute {
	return Attribute(unit.attr)
}

// Check if unit has a command or status pending.
func (unit *Unit) busy() bool {
	return unit.state.Cmd != CmdNone || unit.state.Flags != 0
}

// Handle start of IOCD chain.
func (unit *Unit) StartIO() uint8 {
	if unit.busy() {
		return dev.CStatusBusy
	}
	return 0
}

// Start a command, return immediate status.
func (unit *Unit) StartCmd(cmd uint8) uint8 {
	command := Command(cmd)
	debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "start %s state %v", command, unit.state)

	if unit.state.Cmd != CmdNone {
		unit.state.Flags |= FlagBusy
		return dev.CStatusBusy
	}
	if unit.state.Flags != 0 {
		return dev.CStatusBusy
	}

	if unit.pos == nil {
		return unit.startUnattached(command)
	}

	phase := PhaseTransfer
	switch command {
	case CmdINCH, CmdSCK, CmdXEZ, CmdLMR:
		phase = PhaseParamFetch
	case CmdRD, CmdWD, CmdNOP, CmdSNS:
	default:
		debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "invalid command %s", command)
		unit.sense |= SenseCMDREJ
		return dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck
	}

	unit.state = State{Cmd: command, Phase: phase}
	event.AddEvent(unit, unit.service, startDelay, int(command))
	return 0
}

// Commands to a unit with no file.
func (unit *Unit) startUnattached(command Command) uint8 {
	unit.sense |= SenseINTVENT
	switch command {
	case CmdSNS:
		unit.sendSense()
		return dev.CStatusChnEnd | dev.CStatusDevEnd
	case CmdINCH:
	default:
		unit.sense |= SenseCMDREJ
	}
	return dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck
}

// Event callback, runs one step of current command.
func (unit *Unit) service(_ int) {
	debug.DebugDevf(unit.addr, unit.debugMsk, debugDetail, "service %s state %v", unit.state.Cmd, unit.state)
	if unit.state.Cmd == CmdNone {
		return
	}

	if unit.pos == nil {
		unit.sense |= SenseINTVENT
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
		return
	}

	switch unit.state.Cmd {
	case CmdINCH:
		unit.inch()
	case CmdNOP:
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
	case CmdSNS:
		unit.sendSense()
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
	case CmdLMR:
		unit.loadMode()
	case CmdSCK:
		if (unit.state.Flags & FlagSeeking) != 0 {
			unit.seekStep()
			return
		}
		unit.seek()
	case CmdXEZ:
		if (unit.state.Flags & FlagSeeking) != 0 {
			unit.seekStep()
			return
		}
		unit.rezero()
	case CmdRD:
		unit.readSector()
	case CmdWD:
		unit.writeSector()
	default:
		unit.sense |= SenseCMDREJ
		unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd | dev.CStatusCheck)
	}
}

// Command done, post ending status.
func (unit *Unit) finish(status uint8) {
	debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "end %s status %02x sense %08x",
		unit.state.Cmd, status, unit.sense)
	unit.state = idle
	unit.ctl.ch.ChanEnd(unit.addr, status)
}

// Handle HIO instruction.
func (unit *Unit) HaltIO() uint8 {
	if unit.state.Cmd == CmdNone {
		return 0
	}
	event.CancelAll(unit)
	unit.finish(dev.CStatusChnEnd | dev.CStatusDevEnd)
	return 1
}

// Initialize a device.
func (unit *Unit) InitDev() uint8 {
	event.CancelAll(unit)
	unit.state = idle
	return 0
}

// Reset whole controller.
func (unit *Unit) Reset() {
	unit.ctl.Reset()
}

// Shutdown device.
func (unit *Unit) Shutdown() {
	if unit.disk.Attached() {
		_ = unit.DetachFile()
	}
}

// Enable debug options.
func (unit *Unit) Debug(opt string) error {
	flag, err := debug.Lookup(debugOption, strings.ToUpper(opt))
	if err != nil {
		return fmt.Errorf("8064: %w", err)
	}
	unit.debugMsk |= flag
	return nil
}

// Load initial program from unit.
func (unit *Unit) Boot() error {
	if unit.pos == nil {
		return fmt.Errorf("%w: %03x", ErrUnattached, unit.addr)
	}
	return unit.ctl.ch.IPLDevice(unit.addr)
}

// Attach image file to unit.
func (unit *Unit) AttachFile(fileName string, readOnly bool) error {
	if unit.disk.Attached() {
		return fmt.Errorf("%03x: %w", unit.addr, disk.ErrAttached)
	}
	if err := unit.disk.Attach(fileName, readOnly); err != nil {
		return fmt.Errorf("unable to attach %03x: %w", unit.addr, err)
	}
	unit.readOnly = readOnly
	unit.pos = &Position{}
	unit.state = idle
	unit.sense &= senseMode
	debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "attach %s model %s", fileName, unit.geom.Name)
	unit.ctl.ch.SetDevAttn(unit.addr, dev.CStatusDevEnd)
	return nil
}

// Remove image file from unit.
func (unit *Unit) DetachFile() error {
	if !unit.disk.Attached() {
		return fmt.Errorf("%03x: %w", unit.addr, disk.ErrNotAttached)
	}
	event.CancelAll(unit)
	unit.state = idle
	unit.pos = nil
	debug.DebugDevf(unit.addr, unit.debugMsk, debugCmd, "detach %s", unit.disk.FileName())
	return unit.disk.Detach()
}

// register a device on initialize.
func init() {
	config.RegisterModel("8064", config.TypeModel, create)
}

// Create a drive. The first unit of a controller creates all eight.
func create(devNum uint16, _ string, options []config.Option) error {
	if (devNum & 1) != 0 {
		return fmt.Errorf("8064 unit address must be even: %03x", devNum)
	}
	base := devNum &^ 0xf
	ctl, ok := controllers[base]
	if !ok {
		ctl = newController(base, sysChannel{})
		for _, unit := range ctl.units {
			err := sysChannel{}.AddDevice(unit, unit.addr)
			if err != nil {
				return fmt.Errorf("unable to create 8064 at %03x: %w", unit.addr, err)
			}
		}
		controllers[base] = ctl
	}
	unit := ctl.units[(devNum&0xf)>>1]

	fileName := ""
	for _, option := range options {
		switch strings.ToUpper(option.Name) {
		case "MODEL", "TYPE":
			geom, err := Lookup(option.EqualOpt)
			if err != nil {
				return err
			}
			unit.setGeometry(geom)

		case "FILE":
			if option.EqualOpt == "" {
				return errors.New("file option missing filename")
			}
			fileName = option.EqualOpt

		case "RO":
			unit.readOnly = true

		case "RW":
			unit.readOnly = false

		default:
			return errors.New("8064 invalid option " + option.Name)
		}
		if option.Value != nil {
			return errors.New("extra options not supported on: " + option.Name)
		}
	}

	if fileName != "" {
		return unit.AttachFile(fileName, unit.readOnly)
	}
	return nil
}

// Options for console commands.
func (unit *Unit) Options(_ string) []command.Options {
	return []command.Options{
		{
			Name:        "file",
			OptionType:  command.OptionFile,
			OptionValid: command.ValidAttach | command.ValidShow,
		},
		{
			Name:        "model",
			OptionType:  command.OptionList,
			OptionValid: command.ValidAttach | command.ValidSet | command.ValidShow,
			OptionList:  ModelNames(),
		},
		{
			Name:        "ro",
			OptionType:  command.OptionSwitch,
			OptionValid: command.ValidAttach | command.ValidSet | command.ValidShow,
		},
		{
			Name:        "rw",
			OptionType:  command.OptionSwitch,
			OptionValid: command.ValidAttach | command.ValidSet,
		},
		{
			Name:        "position",
			OptionType:  command.OptionSwitch,
			OptionValid: command.ValidShow,
		},
		{
			Name:        "sense",
			OptionType:  command.OptionSwitch,
			OptionValid: command.ValidShow,
		},
	}
}

// Attach file to device.
func (unit *Unit) Attach(opts []*command.CmdOption) error {
	err := unit.Detach()
	if err != nil && !errors.Is(err, disk.ErrNotAttached) {
		return err
	}

	fileName := ""
	readOnly := unit.readOnly
	for _, opt := range opts {
		switch opt.Name {
		case "file":
			if opt.EqualOpt == "" {
				return errors.New("file requires file name")
			}
			if fileName != "" {
				return errors.New("only one file name option allowed")
			}
			fileName = opt.EqualOpt

		case "model":
			geom, err := Lookup(opt.EqualOpt)
			if err != nil {
				return err
			}
			unit.setGeometry(geom)

		case "ro":
			readOnly = true

		case "rw":
			readOnly = false

		default:
			return errors.New("invalid option: " + opt.Name)
		}
	}
	if fileName == "" {
		return errors.New("attach requires file name")
	}
	return unit.AttachFile(fileName, readOnly)
}

// Detach device.
func (unit *Unit) Detach() error {
	return unit.DetachFile()
}

// Set command.
func (unit *Unit) Set(unset bool, opts []*command.CmdOption) error {
	for _, opt := range opts {
		switch opt.Name {
		case "model":
			if unset {
				return errors.New("unset not valid for model")
			}
			if unit.disk.Attached() {
				return fmt.Errorf("%03x: %w", unit.addr, disk.ErrAttached)
			}
			geom, err := Lookup(opt.EqualOpt)
			if err != nil {
				return err
			}
			unit.setGeometry(geom)

		case "ro", "rw":
			if unit.disk.Attached() {
				return fmt.Errorf("%03x: %w", unit.addr, disk.ErrAttached)
			}
			unit.readOnly = (opt.Name == "ro") != unset

		default:
			return errors.New("invalid option: " + opt.Name)
		}
	}
	return nil
}

// Show command.
func (unit *Unit) Show(opts []*command.CmdOption) (string, error) {
	flags := 0

	str := fmt.Sprintf("%03x:", unit.addr)
	for _, opt := range opts {
		switch opt.Name {
		case "file":
			flags |= 1
		case "model":
			flags |= 2
		case "ro":
			flags |= 4
		case "position":
			flags |= 8
		case "sense":
			flags |= 0x10
		default:
			return "", errors.New("invalid option: " + opt.Name)
		}
	}

	if flags == 0 {
		flags = 0x1f
	}
	if (flags & 2) != 0 {
		str += " MODEL=" + unit.geom.Name
	}
	if (flags & 4) != 0 {
		if unit.readOnly {
			str += " RO"
		} else {
			str += " RW"
		}
	}
	if (flags&8) != 0 && unit.pos != nil {
		str += fmt.Sprintf(" CYL=%d TRK=%d SEC=%d", unit.pos.Cyl, unit.pos.Trk, unit.pos.Sec)
	}
	if (flags & 0x10) != 0 {
		str += fmt.Sprintf(" SENSE=%08x", unit.sense)
	}
	if (flags & 1) != 0 {
		if unit.disk.Attached() {
			str += " " + unit.disk.FileName()
		} else {
			str += " not attached"
		}
	}

	return str, nil
}
