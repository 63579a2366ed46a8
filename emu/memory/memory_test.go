package memory

/*
 * SEL32 - Low level memory test cases.
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
	"testing"
)

// Set size in K.
func TestSetSize(t *testing.T) {
	for _, k := range []int{1, 64, 128, maxSize, maxSize + 10} {
		SetSize(k)
		expect := uint32(k * 1024)
		if k > maxSize {
			expect = maxSize * 1024
		}
		if GetSize() != expect {
			t.Errorf("GetSize size not correct got: %d expected: %d", GetSize(), expect)
		}
	}
}

// Words outside memory report an error.
func TestGetPutWord(t *testing.T) {
	SetSize(4)
	Clear()
	for i := range uint32(1024) {
		if PutWord(i*4, i) {
			t.Errorf("PutWord failed at: %x", i*4)
		}
	}
	for i := range uint32(1024) {
		r, err := GetWord(i * 4)
		if err || r != i {
			t.Errorf("GetWord not correct got: %d expected: %d", r, i)
		}
	}
	if !PutWord(4096, 1) {
		t.Error("PutWord past end did not fail")
	}
	if _, err := GetWord(4096); !err {
		t.Error("GetWord past end did not fail")
	}
}

// Mask only replaces selected bits.
func TestPutWordMask(t *testing.T) {
	SetSize(4)
	Clear()
	SetMemory(0x10, 0x12345678)
	PutWordMask(0x10, 0xaabbccdd, 0x00ff00ff)
	r := GetMemory(0x10)
	if r != 0x12bb56dd {
		t.Errorf("PutWordMask not correct got: %08x expected: %08x", r, 0x12bb56dd)
	}
}

// Bytes come out most significant first.
func TestGetByte(t *testing.T) {
	SetSize(4)
	Clear()
	SetMemory(0x20, 0x01020304)
	for i := range uint32(4) {
		b, err := GetByte(0x20 + i)
		if err || b != uint8(i+1) {
			t.Errorf("GetByte not correct got: %d expected: %d", b, i+1)
		}
	}
}

// Memory option from configuration.
func TestSetMemoryOption(t *testing.T) {
	if err := setMemory(0, "256", nil); err != nil {
		t.Errorf("setMemory failed: %v", err)
	}
	if GetSize() != 256*1024 {
		t.Errorf("Memory size not correct got: %d expected: %d", GetSize(), 256*1024)
	}
	if err := setMemory(0, "abc", nil); err == nil {
		t.Error("setMemory accepted non number")
	}
	if err := setMemory(0, "0", nil); err == nil {
		t.Error("setMemory accepted zero size")
	}
}
