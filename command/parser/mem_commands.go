/*
 * SEL32 - Memory examine and deposit commands
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

	"github.com/rcornwell/sel32/emu/memory"
	"github.com/rcornwell/sel32/util/hex"
)

// Values shown on each line of examine output.
const bytesPerLine = 16

type memoryOpts struct {
	size int    // Bytes in each value, 1, 2 or 4.
	low  uint32 // First address.
	high uint32 // Last address.
}

// Parse -b, -h and -w size flags.
func (line *cmdLine) parseMemorySize(opts *memoryOpts) error {
	opts.size = 4
	set := false
	for !line.isEOL() && line.peek() == '-' {
		line.pos++
		flag := line.getWord()
		if len(flag) != 1 {
			return errors.New("invalid memory option: -" + flag)
		}
		if set {
			return errors.New("size already defined")
		}
		set = true
		switch flag {
		case "b":
			opts.size = 1
		case "h":
			opts.size = 2
		case "w":
			opts.size = 4
		default:
			return errors.New("invalid memory option: -" + flag)
		}
	}
	return nil
}

// Parse size flags and an address or address range.
func (line *cmdLine) parseMemoryRange() (*memoryOpts, error) {
	opts := &memoryOpts{}
	if err := line.parseMemorySize(opts); err != nil {
		return nil, err
	}

	low, err := line.getHex()
	if err != nil {
		return nil, errors.New("address required")
	}
	opts.low = low & memory.AMASK &^ uint32(opts.size-1)
	opts.high = opts.low
	if line.peek() == '-' {
		line.pos++
		high, err := line.getHex()
		if err != nil {
			return nil, errors.New("invalid end of range")
		}
		if high < low {
			return nil, fmt.Errorf("end of range %x before start %x", high, low)
		}
		opts.high = high & memory.AMASK
	}
	return opts, nil
}

// Read value of size bytes at addr.
func readValue(addr uint32, size int) (uint32, bool) {
	word, err := memory.GetWord(addr &^ 3)
	if err {
		return 0, true
	}
	switch size {
	case 1:
		return (word >> (8 * (3 - (addr & 3)))) & 0xff, false
	case 2:
		return (word >> (16 * (1 - ((addr >> 1) & 1)))) & 0xffff, false
	}
	return word, false
}

// Store value of size bytes at addr.
func writeValue(addr uint32, size int, value uint32) bool {
	switch size {
	case 1:
		shift := 8 * (3 - (addr & 3))
		return memory.PutWordMask(addr&^3, value<<shift, 0xff<<shift)
	case 2:
		shift := 16 * (1 - ((addr >> 1) & 1))
		return memory.PutWordMask(addr&^3, value<<shift, 0xffff<<shift)
	}
	return memory.PutWord(addr, value)
}

// Format memory from low to high, a line for every 16 bytes.
func formatMemory(opts *memoryOpts) (string, error) {
	var str strings.Builder
	addr := opts.low
	for addr <= opts.high {
		fmt.Fprintf(&str, "%06x:", addr)
		for i := 0; i < bytesPerLine && addr <= opts.high; i += opts.size {
			value, err := readValue(addr, opts.size)
			if err {
				return str.String(), fmt.Errorf("address %06x out of range", addr)
			}
			str.WriteByte(' ')
			switch opts.size {
			case 1:
				hex.FormatByte(&str, uint8(value))
			case 2:
				hex.FormatHalf(&str, false, []uint16{uint16(value)})
			default:
				hex.FormatWord(&str, false, []uint32{value})
			}
			addr += uint32(opts.size)
		}
		str.WriteByte('\n')
	}
	return str.String(), nil
}

// Display memory.
func examine(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Examine")
	opts, err := line.parseMemoryRange()
	if err != nil {
		return false, err
	}
	if !line.isEOL() {
		return false, errors.New("examine takes one address range")
	}

	return false, sim.Call(func() error {
		out, err := formatMemory(opts)
		fmt.Fprint(output, out)
		return err
	})
}

// Change memory, each value goes to the next location.
func deposit(line *cmdLine, sim Simulator) (bool, error) {
	slog.Debug("Command Deposit")
	opts := &memoryOpts{}
	if err := line.parseMemorySize(opts); err != nil {
		return false, err
	}

	addr, err := line.getHex()
	if err != nil {
		return false, errors.New("address required")
	}
	addr &= memory.AMASK
	if (addr & uint32(opts.size-1)) != 0 {
		return false, fmt.Errorf("address %06x not aligned", addr)
	}

	limit := uint32(1)<<(8*opts.size) - 1
	values := []uint32{}
	for !line.isEOL() {
		value, err := line.getHex()
		if err != nil || !line.atSeparator() {
			return false, errors.New("deposit values must be hexadecimal")
		}
		if opts.size != 4 && value > limit {
			return false, fmt.Errorf("value %x too large", value)
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return false, errors.New("deposit requires a value")
	}

	return false, sim.Call(func() error {
		for _, value := range values {
			if writeValue(addr, opts.size, value) {
				return fmt.Errorf("address %06x out of range", addr)
			}
			addr += uint32(opts.size)
		}
		return nil
	})
}
