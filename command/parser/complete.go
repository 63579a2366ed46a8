/*
 * SEL32 - Console command completion
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
	"strings"
	"unicode"

	command "github.com/rcornwell/sel32/command/command"
)

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	line.skipSpace()
	start := line.pos
	for line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	name := strings.ToLower(line.line[start:line.pos])

	// Still typing the command name.
	if line.pos >= len(line.line) {
		matches := []string{}
		for _, m := range cmdList {
			if strings.HasPrefix(m.Name, name) {
				matches = append(matches, commandLine[:start]+m.Name+" ")
			}
		}
		return matches
	}

	match := matchList(name)
	if len(match) != 1 || match[0].Complete == nil {
		return nil
	}
	return match[0].Complete(&line)
}

// Split line at start of last partial token.
func (line *cmdLine) lastToken() (string, string) {
	idx := strings.LastIndexFunc(line.line, unicode.IsSpace) + 1
	return line.line[:idx], line.line[idx:]
}

// Every name starting with partial, put after leading text.
func prefixMatch(leading, partial string, names []string, suffix string) []string {
	matches := []string{}
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), partial) {
			matches = append(matches, leading+name+suffix)
		}
	}
	return matches
}

// Complete commands that only need device number.
func deviceComplete(line *cmdLine) []string {
	line.skipSpace()
	rest := line.line[line.pos:]
	if strings.ContainsFunc(rest, unicode.IsSpace) {
		return nil
	}
	return prefixMatch(line.line[:line.pos], strings.ToLower(rest), deviceNames(), " ")
}

// Complete device number, then option names and list values.
func optionComplete(cmdType int) func(*cmdLine) []string {
	return func(line *cmdLine) []string {
		line.skipSpace()
		if !strings.ContainsFunc(line.line[line.pos:], unicode.IsSpace) {
			return deviceComplete(line)
		}

		_, dev, err := line.getDevice()
		if err != nil {
			return nil
		}
		leading, partial := line.lastToken()
		opts := dev.Options("")

		if name, value, found := strings.Cut(partial, "="); found {
			opt, ok := matchOption(strings.ToLower(name), opts, cmdType)
			if !ok || opt.OptionType != command.OptionList {
				return nil
			}
			return prefixMatch(leading+name+"=", strings.ToLower(value), opt.OptionList, " ")
		}

		matches := []string{}
		partial = strings.ToLower(partial)
		for _, opt := range opts {
			if (opt.OptionValid&cmdType) == 0 || !strings.HasPrefix(opt.Name, partial) {
				continue
			}
			suffix := "="
			if opt.OptionType == command.OptionSwitch || cmdType == command.ValidShow {
				suffix = " "
			}
			matches = append(matches, leading+opt.Name+suffix)
		}
		return matches
	}
}
