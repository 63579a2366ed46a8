/*
 * SEL32 - Debug configuration options
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
	"strconv"
	"strings"

	config "github.com/rcornwell/sel32/config/configparser"
	ch "github.com/rcornwell/sel32/emu/sys_channel"
)

// register debug option on initialize.
func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

// Give every option and its comma list to fn.
func applyOptions(options []config.Option, fn func(string) error) error {
	if len(options) == 0 {
		return errors.New("debug requires at least one option")
	}
	for _, opt := range options {
		if opt.EqualOpt != "" {
			return errors.New("debug options can't have equals: " + opt.Name)
		}
		if err := fn(strings.ToUpper(opt.Name)); err != nil {
			return err
		}
		for _, value := range opt.Value {
			if err := fn(strings.ToUpper(*value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// DEBUG CHANNEL <n> options or DEBUG <address> options.
func setDebug(devNum uint16, value string, options []config.Option) error {
	if strings.EqualFold(value, "CHANNEL") {
		if len(options) < 1 {
			return errors.New("debug channel requires a number first")
		}
		first := options[0]
		if first.EqualOpt != "" || len(first.Value) != 0 {
			return errors.New("debug channel number can't have equals or values")
		}
		number, err := strconv.ParseUint(first.Name, 16, 4)
		if err != nil {
			return errors.New("channel number must be a number: " + first.Name)
		}
		return applyOptions(options[1:], func(opt string) error {
			return ch.Debug(int(number), opt)
		})
	}

	if devNum == config.NoDev {
		return errors.New("debug option invalid: " + value)
	}
	dev, err := ch.GetDevice(devNum)
	if err != nil {
		return err
	}
	return applyOptions(options, dev.Debug)
}
