/*
 * SEL32 - Console command parser
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
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	command "github.com/rcornwell/sel32/command/command"
	ch "github.com/rcornwell/sel32/emu/sys_channel"
)

// Simulation routine commands are sent to.
type Simulator interface {
	Call(fn func() error) error
	SendIPL(devNum uint16) error
	SendStart()
	SendStop()
	SendReset()
}

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, Simulator) (bool, error)
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// Where command output is written.
var output io.Writer = os.Stdout

// Execute the command line given, returns true if simulator should quit.
func ProcessCommand(commandLine string, sim Simulator) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()
	if name == "" {
		if !line.isEOL() {
			return false, errors.New("invalid command: " + strings.TrimSpace(commandLine))
		}
		return false, nil
	}

	match := matchList(name)
	if len(match) == 0 {
		return false, errors.New("command not found: " + name)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + name)
	}

	return match[0].Process(&line, sim)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, name string) bool {
	if len(name) > len(match.Name) || len(name) < match.Min {
		return false
	}
	return strings.HasPrefix(match.Name, name)
}

// Return every command name matches.
func matchList(name string) []cmd {
	if name == "" {
		return nil
	}

	var match []cmd
	for _, m := range cmdList {
		if m.Name == name {
			return []cmd{m}
		}
		if matchCommand(m, name) {
			match = append(match, m)
		}
	}
	return match
}

// Find option valid for command type.
func matchOption(name string, optList []command.Options, cmdType int) (command.Options, bool) {
	for _, opt := range optList {
		if (opt.OptionValid&cmdType) != 0 && opt.Name == name {
			return opt, true
		}
	}
	return command.Options{}, false
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line or start of comment.
func (line *cmdLine) isEOL() bool {
	line.skipSpace()
	return line.pos >= len(line.line) || line.line[line.pos] == '#'
}

// Return current character, 0 at end of line.
func (line *cmdLine) peek() byte {
	if line.pos >= len(line.line) {
		return 0
	}
	return line.line[line.pos]
}

// Check if current character ends a token.
func (line *cmdLine) atSeparator() bool {
	by := line.peek()
	return by == 0 || by == '=' || by == '#' || unicode.IsSpace(rune(by))
}

// Collect characters accepted by valid, lower cased. The token must end
// at a separator or nothing is consumed.
func (line *cmdLine) getToken(valid func(rune) bool) string {
	line.skipSpace()
	start := line.pos
	for line.pos < len(line.line) && valid(rune(line.line[line.pos])) {
		line.pos++
	}
	if !line.atSeparator() {
		line.pos = start
		return ""
	}
	return strings.ToLower(line.line[start:line.pos])
}

// Get a word of letters.
func (line *cmdLine) getWord() string {
	return line.getToken(unicode.IsLetter)
}

// Consume word if it matches.
func (line *cmdLine) keyword(word string) bool {
	pos := line.pos
	if line.getWord() == word {
		return true
	}
	line.pos = pos
	return false
}

// Get a name of letters and digits.
func (line *cmdLine) getName() string {
	return line.getToken(func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// Parse decimal number.
func (line *cmdLine) getNumber() (uint32, error) {
	str := line.getToken(unicode.IsDigit)
	if str == "" {
		return 0, errors.New("not a number")
	}
	value, err := strconv.ParseUint(str, 10, 32)
	if err != nil {
		return 0, errors.New("number too large: " + str)
	}
	return uint32(value), nil
}

func isHex(r rune) bool {
	return strings.ContainsRune("0123456789abcdefABCDEF", r)
}

// Parse hex number.
func (line *cmdLine) getHex() (uint32, error) {
	line.skipSpace()
	start := line.pos
	for line.pos < len(line.line) && isHex(rune(line.line[line.pos])) {
		line.pos++
	}
	str := line.line[start:line.pos]
	if str == "" {
		return 0, errors.New("not a number")
	}
	value, err := strconv.ParseUint(str, 16, 32)
	if err != nil {
		line.pos = start
		return 0, errors.New("number too large: " + str)
	}
	return uint32(value), nil
}

// Parse string that is "string" or just string. Inside quotes "" is a
// single quote. Returns false if quote not closed.
func (line *cmdLine) parseQuoteString() (string, bool) {
	line.skipSpace()
	if line.peek() != '"' {
		start := line.pos
		for line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) {
			line.pos++
		}
		return line.line[start:line.pos], true
	}

	line.pos++
	var value strings.Builder
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		line.pos++
		if by == '"' {
			if line.peek() != '"' {
				return value.String(), true
			}
			line.pos++
		}
		value.WriteByte(by)
	}
	return value.String(), false
}

// Get value after equal sign.
func (line *cmdLine) getEqual(name string) error {
	if line.peek() != '=' {
		return errors.New("option requires value: " + name)
	}
	line.pos++
	return nil
}

// Get an option. Returns nil at end of line.
func (line *cmdLine) getOption(opts []command.Options, cmdType int) (*command.CmdOption, error) {
	if line.isEOL() {
		return nil, nil
	}

	start := line.pos
	name := line.getWord()
	if name == "" {
		// Attach takes a bare file name.
		if cmdType != command.ValidAttach {
			return nil, errors.New("invalid option")
		}
		file, ok := line.parseQuoteString()
		if !ok || file == "" {
			return nil, errors.New("invalid file name")
		}
		return &command.CmdOption{Name: "file", EqualOpt: file}, nil
	}

	match, ok := matchOption(name, opts, cmdType)
	if !ok {
		if cmdType == command.ValidAttach && line.atSeparator() && line.peek() != '=' {
			return &command.CmdOption{Name: "file", EqualOpt: line.line[start:line.pos]}, nil
		}
		return nil, errors.New("unknown option: " + name)
	}

	opt := command.CmdOption{Name: name}
	switch match.OptionType {
	case command.OptionSwitch:
		if line.peek() == '=' {
			return nil, errors.New("switch option can't have arguments: " + name)
		}

	case command.OptionFile:
		if err := line.getEqual(name); err != nil {
			return nil, err
		}
		file, ok := line.parseQuoteString()
		if !ok || file == "" {
			return nil, errors.New("file name not valid: " + name)
		}
		opt.EqualOpt = file

	case command.OptionNumber:
		if err := line.getEqual(name); err != nil {
			return nil, err
		}
		num, err := line.getNumber()
		if err != nil {
			return nil, errors.New("number options must be followed by number: " + name)
		}
		opt.Value = num

	case command.OptionHex:
		if err := line.getEqual(name); err != nil {
			return nil, err
		}
		num, err := line.getHex()
		if err != nil {
			return nil, errors.New("hex options must be followed by hexadecimal number: " + name)
		}
		opt.Value = num

	case command.OptionList:
		if err := line.getEqual(name); err != nil {
			return nil, err
		}
		value := line.getName()
		for _, item := range match.OptionList {
			if strings.EqualFold(item, value) {
				opt.EqualOpt = item
				return &opt, nil
			}
		}
		return nil, errors.New("option not valid for type: " + name + "=" + value)

	default:
		return nil, errors.New("invalid option type: " + name)
	}
	return &opt, nil
}

// Scan options and return a list of options.
func (line *cmdLine) getOptions(device command.Command, cmdType int) ([]*command.CmdOption, error) {
	optList := []*command.CmdOption{}
	opts := device.Options("")
	for {
		opt, err := line.getOption(opts, cmdType)
		if err != nil {
			return nil, err
		}
		if opt == nil {
			return optList, nil
		}
		optList = append(optList, opt)
	}
}

// Get device number make sure it is valid.
func (line *cmdLine) getDevNum() (uint16, error) {
	devNum, err := line.getHex()
	if err != nil {
		return 0, errors.New("device must be number")
	}

	if devNum > 0xfff {
		return 0, errors.New("device number too large")
	}
	return uint16(devNum), nil
}

// Return device number and console interface.
func (line *cmdLine) getDevice() (uint16, command.Command, error) {
	devNum, err := line.getDevNum()
	if err != nil {
		return 0, nil, err
	}
	device, err := ch.GetCommand(devNum)
	return devNum, device, err
}
