/*
 * SEL32 - Debug trace output.
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

package debug

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	config "github.com/rcornwell/sel32/config/configparser"
)

var (
	mu      sync.Mutex
	logFile io.Writer
	logName string
)

func output(prefix string, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return
	}
	fmt.Fprintf(logFile, prefix+": "+format+"\n", a...)
}

// Generic debug message.
func Debugf(module string, mask int, level int, format string, a ...any) {
	if (mask & level) != 0 {
		output(module, format, a...)
	}
}

// Device debug message.
func DebugDevf(devNum uint16, mask int, level int, format string, a ...any) {
	if (mask & level) != 0 {
		output(fmt.Sprintf("%03x", devNum), format, a...)
	}
}

// Channel debug message.
func DebugChanf(number int, mask int, level int, format string, a ...any) {
	if (mask & level) != 0 {
		output(fmt.Sprintf("Channel %02x", number), format, a...)
	}
}

// Direct debug output somewhere other then a file.
func SetOutput(w io.Writer) {
	mu.Lock()
	logFile = w
	logName = ""
	mu.Unlock()
}

// Look up a debug option name in a device's option table.
func Lookup(options map[string]int, opt string) (int, error) {
	flag, ok := options[opt]
	if !ok {
		return 0, errors.New("debug option invalid: " + opt)
	}
	return flag, nil
}

// register a debug file on initialize.
func init() {
	config.RegisterFile("DEBUGFILE", create)
}

// Create the debug file.
func create(_ uint16, fileName string, _ []config.Option) error {
	mu.Lock()
	defer mu.Unlock()
	if logName != "" {
		return fmt.Errorf("can't have more then one debug file, previous: %s", logName)
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %w", err)
	}

	logFile = file
	logName = fileName
	return nil
}
