/*
 * SEL32 - 8064 disk image tool test cases
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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

const testModel = "TEST8M"

func newImage(t *testing.T) (string, *bytes.Buffer, *globals) {
	t.Helper()
	is := is.New(t)
	buf := &bytes.Buffer{}
	g := &globals{out: buf}
	name := filepath.Join(t.TempDir(), "disk.img")
	is.NoErr((&createCmd{Model: testModel, Image: name}).Run(g))
	return name, buf, g
}

func TestCreateInfo(t *testing.T) {
	is := is.New(t)
	name, buf, g := newImage(t)
	is.True(strings.Contains(buf.String(), "TEST8M 8388608 bytes"))

	info, err := os.Stat(name)
	is.NoErr(err)
	is.Equal(info.Size(), int64(8388608))

	buf.Reset()
	is.NoErr((&infoCmd{Model: testModel, Image: name}).Run(g))
	out := buf.String()
	is.True(strings.Contains(out, "TEST8M: 256 cylinders 2 heads 16 sectors of 1024 bytes, type 40"))
	is.True(!strings.Contains(out, "differs"))

	buf.Reset()
	is.NoErr((&infoCmd{Model: "MH040", Image: name}).Run(g))
	is.True(strings.Contains(buf.String(), "image size differs from model"))
	is.True(strings.Contains(buf.String(), "size matches TEST8M"))

	// Existing image is not replaced.
	is.True((&createCmd{Model: testModel, Image: name}).Run(g) != nil)
	is.True((&createCmd{Model: "XX999", Image: name + "2"}).Run(g) != nil)
}

func TestLoadDump(t *testing.T) {
	is := is.New(t)
	name, buf, g := newImage(t)

	data := make([]byte, 1500)
	for i := range data {
		data[i] = byte(i % 251)
	}
	dataName := filepath.Join(t.TempDir(), "boot.bin")
	is.NoErr(os.WriteFile(dataName, data, 0o644))

	// Last sector of cylinder 1 then first of cylinder 2.
	is.NoErr((&loadCmd{Model: testModel, Cyl: 1, Trk: 1, Sec: 15, Image: name, Data: dataName}).Run(g))
	is.True(strings.Contains(buf.String(), "wrote 2 sectors at 1/1/15"))

	image, err := os.ReadFile(name)
	is.NoErr(err)
	is.Equal(image[0xfc00:0xfc00+1500], data)
	is.Equal(image[0xfc00+1500:0x10400], make([]byte, 0x10400-0xfc00-1500))

	buf.Reset()
	is.NoErr((&dumpCmd{Model: testModel, Cyl: 1, Trk: 1, Sec: 15, Count: 2, Image: name}).Run(g))
	out := buf.String()
	is.True(strings.Contains(out, "cyl 1 trk 1 sec 15\n0000fc00: 00 01 02 03"))
	is.True(strings.Contains(out, "cyl 2 trk 0 sec 0\n00010000: "))
	is.Equal(strings.Count(out, "\n"), 2+2*64)
}

func TestAddressErrors(t *testing.T) {
	is := is.New(t)
	name, _, g := newImage(t)

	is.True((&dumpCmd{Model: testModel, Cyl: 256, Count: 1, Image: name}).Run(g) != nil)
	is.True((&dumpCmd{Model: testModel, Trk: 2, Count: 1, Image: name}).Run(g) != nil)
	is.True((&dumpCmd{Model: testModel, Sec: 16, Count: 1, Image: name}).Run(g) != nil)

	dataName := filepath.Join(t.TempDir(), "big.bin")
	is.NoErr(os.WriteFile(dataName, make([]byte, 1500), 0o644))
	err := (&loadCmd{Model: testModel, Cyl: 255, Trk: 1, Sec: 15, Image: name, Data: dataName}).Run(g)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "past end of disk"))
}

func TestModels(t *testing.T) {
	is := is.New(t)
	buf := &bytes.Buffer{}
	is.NoErr((&modelsCmd{}).Run(&globals{out: buf}))
	out := buf.String()
	is.True(strings.HasPrefix(out, "MODEL"))
	is.Equal(strings.Count(out, "CD032"), 1)
	is.Equal(strings.Count(out, "FM600"), 1)
	is.True(strings.Contains(out, "TEST8M"))
}
