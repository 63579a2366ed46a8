/*
 * SEL32 - Console commands
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	command "github.com/rcornwell/sel32/command/command"
	ch "github.com/rcornwell/sel32/emu/sys_channel"
)

var cmdList []cmd

func init() {
	cmdList = []cmd{
		{Name: "attach", Min: 2, Process: attach, Complete: optionComplete(command.ValidAttach)},
		{Name: "boot", Min: 1, Process: boot, Complete: deviceComplete},
		{Name: "continue", Min: 1, Process: cont},
		{Name: "debug", Min: 3, Process: debugCmd, Complete: deviceComplete},
		{Name: "deposit", Min: 3, Process: deposit},
		{Name: "detach", Min: 3, Process: detach, Complete: deviceComplete},
		{Name: "examine", Min: 1, Process: examine},
		{Name: "ipl", Min: 1, Process: boot, Complete: deviceComplete},
		{Name: "quit", Min: 1, Process: quit},
		{Name: "reset", Min: 3, Process: reset, Complete: deviceComplete},
		{Name: "set", Min: 3, Process: set, Complete: optionComplete(command.ValidSet)},
		{Name: "show", Min: 2, Process: show, Complete: optionComplete(command.ValidShow)},
		{Name: "start", Min: 4, Process: start},
		{Name: "stop", Min: 3, Process: stop},
		{Name: "unset", Min: 3, Process: unset, Complete: optionComplete(command.ValidSet)},
	}
}

// Handle attach commands.
func attach(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Attach")

	_, dev, err := line.getDevice()
	if err != nil {
		return false, err
	}

	optList, err := line.getOptions(dev, command.ValidAttach)
	if err != nil {
		return false, err
	}
	if len(optList) == 0 {
		return false, errors.New("no options give to attach command")
	}
	return false, sim.Call(func() error {
		return dev.Attach(optList)
	})
}

// Handle detach command.
func detach(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Detach")

	_, dev, err := line.getDevice()
	if err != nil {
		return false, err
	}
	if !line.isEOL() {
		return false, errors.New("detach takes no options")
	}
	return false, sim.Call(dev.Detach)
}

// Run set or unset on a device.
func setOptions(line *cmdLine, sim Simulator, unset bool) (bool, error) {
	_, dev, err := line.getDevice()
	if err != nil {
		return false, err
	}

	optList, err := line.getOptions(dev, command.ValidSet)
	if err != nil {
		return false, err
	}
	if len(optList) == 0 {
		return false, errors.New("no options give to set command")
	}
	return false, sim.Call(func() error {
		return dev.Set(unset, optList)
	})
}

// Handle set commands.
func set(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Set")
	return setOptions(line, sim, false)
}

// Handle unset commands.
func unset(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Unset")
	return setOptions(line, sim, true)
}

// Handle commands that quit simulation.
func quit(_ *cmdLine, _ Simulator) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}

// Stop simulated time.
func stop(_ *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Stop")
	sim.SendStop()
	return false, nil
}

// Continue simulated time from where it left off.
func cont(_ *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Continue")
	sim.SendStart()
	return false, nil
}

// Start simulated time.
func start(_ *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Start")
	sim.SendStart()
	return false, nil
}

// Show one device, all if no device given.
func show(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Show")
	if line.isEOL() || line.keyword("all") {
		if !line.isEOL() {
			return false, errors.New("show all takes no options")
		}
		return false, sim.Call(func() error {
			for _, devNum := range ch.Devices() {
				dev, err := ch.GetCommand(devNum)
				if err != nil {
					continue
				}
				out, err := dev.Show(nil)
				if err != nil {
					continue
				}
				fmt.Fprintln(output, out)
			}
			return nil
		})
	}

	_, dev, err := line.getDevice()
	if err != nil {
		return false, err
	}

	optList := []*command.CmdOption{}
	opts := dev.Options("")
	for !line.isEOL() {
		name := line.getWord()
		if _, ok := matchOption(name, opts, command.ValidShow); !ok {
			return false, errors.New("invalid show option: " + name)
		}
		optList = append(optList, &command.CmdOption{Name: name})
	}

	return false, sim.Call(func() error {
		out, err := dev.Show(optList)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, out)
		return nil
	})
}

// Load initial program from a device.
func boot(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Boot")
	devNum, err := line.getDevNum()
	if err != nil {
		return false, err
	}
	if !line.isEOL() {
		return false, errors.New("boot takes only a device number")
	}
	return false, sim.SendIPL(devNum)
}

// Reset one device, or everything.
func reset(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Reset")
	if line.isEOL() || line.keyword("all") {
		sim.SendReset()
		return false, nil
	}

	devNum, err := line.getDevNum()
	if err != nil {
		return false, err
	}
	return false, sim.Call(func() error {
		dev, err := ch.GetDevice(devNum)
		if err != nil {
			return err
		}
		dev.HaltIO()
		dev.InitDev()
		return nil
	})
}

// Enable debug options on a device or channel.
func debugCmd(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Debug")
	var target func(string) error
	if line.keyword("channel") {
		number, err := line.getHex()
		if err != nil || number >= ch.MaxChan {
			return false, errors.New("channel number must be a hex digit")
		}
		target = func(opt string) error {
			return ch.Debug(int(number), opt)
		}
	} else {
		devNum, err := line.getDevNum()
		if err != nil {
			return false, err
		}
		target = func(opt string) error {
			dev, err := ch.GetDevice(devNum)
			if err != nil {
				return err
			}
			return dev.Debug(opt)
		}
	}

	opts := []string{}
	for !line.isEOL() {
		opt := line.getWord()
		if opt == "" {
			return false, errors.New("invalid debug option")
		}
		opts = append(opts, opt)
	}
	if len(opts) == 0 {
		return false, errors.New("debug requires an option")
	}
	return false, sim.Call(func() error {
		for _, opt := range opts {
			if err := target(strings.ToUpper(opt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Device numbers that may be completed.
func deviceNames() []string {
	names := []string{}
	for _, devNum := range ch.Devices() {
		names = append(names, fmt.Sprintf("%03x", devNum))
	}
	return names
}
