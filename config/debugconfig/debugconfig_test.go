/*
 * SEL32 - Debug configuration test cases
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

package debugconfig

import (
	"errors"
	"slices"
	"strings"
	"testing"

	config "github.com/rcornwell/sel32/config/configparser"
	ch "github.com/rcornwell/sel32/emu/sys_channel"
)

type testDev struct {
	opts []string
}

func (d *testDev) StartIO() uint8 { return 0 }

func (d *testDev) StartCmd(_ uint8) uint8 { return 0 }

func (d *testDev) HaltIO() uint8 { return 0 }

func (d *testDev) InitDev() uint8 { return 0 }

func (d *testDev) Shutdown() {}

func (d *testDev) Debug(opt string) error {
	if opt != "CMD" && opt != "DETAIL" {
		return errors.New("debug option invalid: " + opt)
	}
	d.opts = append(d.opts, opt)
	return nil
}

func setup(t *testing.T) *testDev {
	t.Helper()
	ch.InitializeChannels()
	ch.AddChannel(8, ch.TypeIOP)
	d := &testDev{}
	if err := ch.AddDevice(d, nil, 0x804); err != nil {
		t.Fatalf("Unable to add device: %v", err)
	}
	return d
}

func TestDebugDevice(t *testing.T) {
	d := setup(t)
	err := config.LoadConfig(strings.NewReader("debug 804 cmd,detail\n"))
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	if !slices.Equal(d.opts, []string{"CMD", "DETAIL"}) {
		t.Errorf("Debug options not correct: %v", d.opts)
	}

	for _, line := range []string{"debug 804 data", "debug 805 cmd", "debug 804", "debug 804 cmd=1", "debug disk cmd"} {
		if err := config.LoadConfig(strings.NewReader(line + "\n")); err == nil {
			t.Errorf("Debug accepted: %q", line)
		}
	}
}

func TestDebugChannel(t *testing.T) {
	setup(t)
	if err := config.LoadConfig(strings.NewReader("debug channel 8 cmd\n")); err != nil {
		t.Errorf("Debug channel failed: %v", err)
	}
	for _, line := range []string{"debug channel", "debug channel 9 cmd", "debug channel x cmd", "debug channel 8 none", "debug channel 8=1 cmd"} {
		if err := config.LoadConfig(strings.NewReader(line + "\n")); err == nil {
			t.Errorf("Debug channel accepted: %q", line)
		}
	}
}
