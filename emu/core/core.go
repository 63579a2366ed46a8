/*
 * SEL32 - Simulation routine.
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

package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	config "github.com/rcornwell/sel32/config/configparser"
	device "github.com/rcornwell/sel32/emu/device"
	"github.com/rcornwell/sel32/emu/event"
	"github.com/rcornwell/sel32/emu/master"
	syschannel "github.com/rcornwell/sel32/emu/sys_channel"
)

// Cycles of simulated time advanced per clock pulse.
const DefaultRate = 1000

var rate = DefaultRate

type Core struct {
	wg      sync.WaitGroup
	done    chan struct{} // Signal to shutdown simulator.
	running bool          // Advance simulated time on clock pulses.
	rate    int           // Cycles per clock pulse.
	Master  chan master.Packet
}

// Create instance of simulation routine.
func NewCore(master chan master.Packet) *Core {
	return &Core{
		Master: master,
		rate:   rate,
		done:   make(chan struct{}),
	}
}

// Run simulation until stopped.
func (core *Core) Start() {
	core.wg.Add(1)
	defer core.wg.Done()
	for {
		select {
		case <-core.done:
			syschannel.Shutdown()
			return
		case packet := <-core.Master:
			core.processPacket(packet)
		}
	}
}

// Stop a running simulation.
func (core *Core) Stop() {
	slog.Info("Shutting down simulation")
	close(core.done)
	done := make(chan struct{})
	go func() {
		core.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for simulation to finish.")
	}
}

// Start simulated time.
func (core *Core) SendStart() {
	core.Master <- master.Packet{Msg: master.Start}
}

// Stop simulated time.
func (core *Core) SendStop() {
	core.Master <- master.Packet{Msg: master.Stop}
}

// Boot from a device.
func (core *Core) SendIPL(devNum uint16) error {
	reply := make(chan error, 1)
	core.Master <- master.Packet{DevNum: devNum, Msg: master.IPLdevice, Reply: reply}
	return <-reply
}

// Tell channel to post Device End for device.
func (core *Core) SendDeviceEnd(devNum uint16) {
	core.Master <- master.Packet{DevNum: devNum, Msg: master.DeviceEnd}
}

// Reset all channels and devices.
func (core *Core) SendReset() {
	core.Master <- master.Packet{Msg: master.Reset}
}

// Run fn inside the simulation routine and return its error.
func (core *Core) Call(fn func() error) error {
	reply := make(chan error, 1)
	core.Master <- master.Packet{Msg: master.Call, Fn: fn, Reply: reply}
	return <-reply
}

// Process a packet sent to system simulation.
func (core *Core) processPacket(packet master.Packet) {
	switch packet.Msg {
	case master.TimeClock:
		if core.running {
			core.step(core.rate)
		}
	case master.IPLdevice:
		err := boot(packet.DevNum)
		if err != nil {
			slog.Error(err.Error())
		} else {
			core.running = true
		}
		if packet.Reply != nil {
			packet.Reply <- err
		}
	case master.DeviceEnd:
		syschannel.SetDevAttn(packet.DevNum, device.CStatusDevEnd)
	case master.Reset:
		syschannel.ResetChannels()
		core.running = false
	case master.Call:
		err := packet.Fn()
		if packet.Reply != nil {
			packet.Reply <- err
		}
	case master.Start:
		core.running = true
	case master.Stop:
		core.running = false
	}
}

// Advance simulated time, reporting any status posted by channels.
func (core *Core) step(cycles int) {
	for range cycles {
		event.Advance(1)
		for {
			devNum, st := syschannel.ChanScan()
			if devNum == device.NoDev {
				break
			}
			if devNum == syschannel.Loading {
				slog.Info(fmt.Sprintf("IPL from %03x complete status %04x", devNum, st.Flags))
				syschannel.Loading = device.NoDev
				continue
			}
			slog.Debug(fmt.Sprintf("Device %03x status %04x count %d", devNum, st.Flags, st.Count))
		}
	}
}

// Load initial program from a device.
func boot(devNum uint16) error {
	dev, err := syschannel.GetDevice(devNum)
	if err != nil {
		return err
	}
	if b, ok := dev.(device.Bootable); ok {
		return b.Boot()
	}
	return syschannel.IPLDevice(devNum)
}

// register rate option on initialize.
func init() {
	config.RegisterOption("RATE", setRate)
}

// Set number of cycles advanced per clock pulse.
func setRate(_ uint16, value string, _ []config.Option) error {
	r, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return errors.New("rate must be a number: " + value)
	}
	if r == 0 {
		return errors.New("rate must be greater then zero")
	}
	rate = int(r)
	return nil
}
