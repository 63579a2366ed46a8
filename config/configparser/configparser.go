/*
 * SEL32 - Configuration file parser.
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Address passed to create functions when none given.
const NoDev uint16 = 0xffff

// List of options to pass to create routine.
type Option struct {
	Name     string    // Name of option.
	EqualOpt string    // Value of string after =.
	Value    []*string // Values following a comma.
}

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line>    ::= <model> <first> *(<option>)
 * <model>   ::= <string>
 * <first>   ::= <hexaddress> | <string> | <quoted>
 * <option>  ::= <string> ['=' <value>] *(',' <string>)
 * <value>   ::= <string> | '"' *(<char> | '""') '"'
 */

const (
	TypeModel   = 1 + iota // Device at an address.
	TypeOption             // Accepts a single parameter.
	TypeOptions            // Accepts a parameter and list of options.
	TypeSwitch             // Option only used to set a flag.
	TypeFile               // Accepts a file name.
)

type createFunc func(uint16, string, []Option) error

// Model creation list.
type modelDef struct {
	create createFunc
	ty     int
}

var (
	models = map[string]modelDef{}

	// Addresses of all devices created, as hex strings.
	ModelList []string

	lineNumber int
)

// Current option line being parsed.
type optionLine struct {
	line string // Current option line.
	pos  int    // Current position in line.
}

func register(mod string, ty int, fn createFunc) {
	mod = strings.ToUpper(mod)
	slog.Debug("Registering " + mod)
	models[mod] = modelDef{create: fn, ty: ty}
}

// Register should be called from init functions.
func RegisterModel(mod string, ty int, fn func(uint16, string, []Option) error) {
	register(mod, ty, fn)
}

// Register a name that takes no arguments.
func RegisterSwitch(mod string, fn func(uint16, string, []Option) error) {
	register(mod, TypeSwitch, fn)
}

// Register a name that takes one value.
func RegisterOption(mod string, fn func(uint16, string, []Option) error) {
	register(mod, TypeOption, fn)
}

// Register a name that takes a file name.
func RegisterFile(mod string, fn func(uint16, string, []Option) error) {
	register(mod, TypeFile, fn)
}

// Load in a configuration file.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return LoadConfig(file)
}

// Process configuration lines from a reader.
func LoadConfig(r io.Reader) error {
	lineNumber = 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNumber++
		line := optionLine{line: scanner.Text()}
		if err := line.parseLine(); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	return scanner.Err()
}

// Parse one line from file.
func (line *optionLine) parseLine() error {
	mod := strings.ToUpper(line.getWord())
	if mod == "" {
		if !line.isEOL() {
			return errors.New("invalid model name")
		}
		return nil
	}

	model, ok := models[mod]
	if !ok {
		return errors.New("no type registered: " + mod)
	}

	switch model.ty {
	case TypeSwitch:
		if !line.isEOL() {
			return errors.New("switch followed by options: " + mod)
		}
		return model.create(0, "", nil)

	case TypeFile:
		name, ok := line.getValue()
		if !ok || name == "" {
			return errors.New(mod + " requires a file name")
		}
		if !line.isEOL() {
			return errors.New(mod + " followed by options")
		}
		return model.create(NoDev, name, nil)
	}

	first := line.getWord()
	if first == "" {
		return errors.New(mod + " not followed by value")
	}
	devNum := NoDev
	addr, err := strconv.ParseUint(first, 16, 12)
	if err == nil {
		devNum = uint16(addr)
	}

	switch model.ty {
	case TypeModel:
		if devNum == NoDev {
			return fmt.Errorf("device %s requires device address", mod)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		if err := model.create(devNum, "", options); err != nil {
			return err
		}
		addModel(devNum)
		return nil

	case TypeOption:
		if !line.isEOL() {
			return errors.New("option " + mod + " takes one value")
		}
		return model.create(devNum, first, nil)

	case TypeOptions:
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return model.create(devNum, first, options)
	}
	return errors.New("unknown type for " + mod)
}

// Remember address of device so console can find it.
func addModel(devNum uint16) {
	str := fmt.Sprintf("%03x", devNum)
	if !slices.Contains(ModelList, str) {
		ModelList = append(ModelList, str)
		slices.Sort(ModelList)
	}
}

// Forget every registered device address.
func ResetModels() {
	ModelList = nil
}

// Skip forward over line until none whitespace character found.
func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line or comment.
func (line *optionLine) isEOL() bool {
	line.skipSpace()
	return line.pos >= len(line.line) || line.line[line.pos] == '#'
}

// Return run of letters, digits, '.', '-', '_' and '/'.
func (line *optionLine) getWord() string {
	line.skipSpace()
	start := line.pos
	for line.pos < len(line.line) {
		by := rune(line.line[line.pos])
		if unicode.IsLetter(by) || unicode.IsDigit(by) || strings.ContainsRune("._-/", by) {
			line.pos++
			continue
		}
		break
	}
	return line.line[start:line.pos]
}

// Get a plain word or quoted string. Inside quotes "" is a single quote.
func (line *optionLine) getValue() (string, bool) {
	line.skipSpace()
	if line.pos >= len(line.line) || line.line[line.pos] != '"' {
		return line.getWord(), true
	}
	line.pos++
	var value strings.Builder
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		line.pos++
		if by == '"' {
			if line.pos < len(line.line) && line.line[line.pos] == '"' {
				value.WriteByte('"')
				line.pos++
				continue
			}
			return value.String(), true
		}
		value.WriteByte(by)
	}
	return value.String(), false
}

// Parse one option with optional value and comma list.
func (line *optionLine) parseOption() (*Option, error) {
	if line.isEOL() {
		return nil, nil
	}
	name := line.getWord()
	if name == "" {
		return nil, fmt.Errorf("invalid option at position %d", line.pos)
	}
	option := Option{Name: name}

	if line.pos < len(line.line) && line.line[line.pos] == '=' {
		line.pos++
		value, ok := line.getValue()
		if !ok {
			return nil, errors.New("unterminated quoted string for " + name)
		}
		option.EqualOpt = value
	}

	for !line.isEOL() && line.line[line.pos] == ',' {
		line.pos++
		value := line.getWord()
		if value != "" {
			option.Value = append(option.Value, &value)
		}
	}
	return &option, nil
}

// Collect all options for line.
func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		option, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if option == nil {
			return options, nil
		}
		options = append(options, *option)
	}
}
