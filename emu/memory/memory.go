package memory

/*
 * SEL32 - Low level memory
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

import (
	"errors"
	"fmt"
	"strconv"

	config "github.com/rcornwell/sel32/config/configparser"
)

// SEL32 memory is word addressed in bytes, up to 16MB.
type mem struct {
	mem  [4 * 1024 * 1024]uint32
	size uint32
}

var memory mem

const (
	AMASK   uint32 = 0x00ffffff // Mask address bits
	maxSize        = 16 * 1024  // Largest memory in K
)

// Set size in K.
func SetSize(k int) {
	if k > maxSize {
		k = maxSize
	}
	memory.size = uint32(k * 1024)
}

// Return size of memory in bytes.
func GetSize() uint32 {
	return memory.size
}

// Clear all of memory.
func Clear() {
	clear(memory.mem[:])
}

// Get memory value without range check.
func GetMemory(addr uint32) uint32 {
	return memory.mem[(addr&AMASK)>>2]
}

// Set memory to a value, without range check.
func SetMemory(addr, data uint32) {
	memory.mem[(addr&AMASK)>>2] = data
}

// Check if address out of range.
func CheckAddr(addr uint32) bool {
	return addr < memory.size
}

// Get a word from memory, true if address invalid.
func GetWord(addr uint32) (uint32, bool) {
	if addr >= memory.size {
		return 0, true
	}
	return memory.mem[addr>>2], false
}

// Put a word to memory, true if address invalid.
func PutWord(addr, data uint32) bool {
	if addr >= memory.size {
		return true
	}
	memory.mem[addr>>2] = data
	return false
}

// Put a word to memory under mask.
func PutWordMask(addr, data, mask uint32) bool {
	if addr >= memory.size {
		return true
	}
	addr >>= 2
	memory.mem[addr] &= ^mask
	memory.mem[addr] |= data & mask
	return false
}

// Get a byte from memory.
func GetByte(addr uint32) (uint8, bool) {
	word, err := GetWord(addr &^ 3)
	if err {
		return 0, true
	}
	shift := 8 * (3 - (addr & 3))
	return uint8(word >> shift), false
}

// register memory size option on initialize.
func init() {
	config.RegisterOption("MEMORY", setMemory)
	memory.size = 128 * 1024
}

// Set memory size from configuration, value in K.
func setMemory(_ uint16, value string, _ []config.Option) error {
	k, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return errors.New("memory size must be a number: " + value)
	}
	if k == 0 || k > maxSize {
		return fmt.Errorf("memory size out of range: %d", k)
	}
	SetSize(int(k))
	return nil
}
