/*
 * SEL32 - Configuration file parser test cases.
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
	"errors"
	"strings"
	"testing"
)

var (
	testOptions []Option
	testDevNum  uint16
	testValue   string
	testType    string
)

func cleanUpConfig() {
	models = map[string]modelDef{}
	ModelList = nil
	testOptions = nil
	testDevNum = 0
	testValue = "error"
	testType = ""
}

func recorder(ty string) func(uint16, string, []Option) error {
	return func(devNum uint16, value string, options []Option) error {
		testDevNum = devNum
		testValue = value
		testType = ty
		testOptions = options
		return nil
	}
}

// Test creating a model with options.
func TestModelLine(t *testing.T) {
	cleanUpConfig()
	RegisterModel("testdev", TypeModel, recorder("model"))

	err := LoadConfig(strings.NewReader("testdev c04 file=disk.img model=MH300 ro # comment\n"))
	if err != nil {
		t.Fatalf("Unable to create model: %v", err)
	}
	if testType != "model" {
		t.Errorf("Wrong create called: %s", testType)
	}
	if testDevNum != 0xc04 {
		t.Errorf("Device number not valid: %03x", testDevNum)
	}
	if len(testOptions) != 3 {
		t.Fatalf("Options expected %d got: %d", 3, len(testOptions))
	}
	if testOptions[0].Name != "file" || testOptions[0].EqualOpt != "disk.img" {
		t.Errorf("Option 0 not correct: %s=%s", testOptions[0].Name, testOptions[0].EqualOpt)
	}
	if testOptions[2].Name != "ro" || testOptions[2].EqualOpt != "" {
		t.Errorf("Option 2 not correct: %s=%s", testOptions[2].Name, testOptions[2].EqualOpt)
	}
	if len(ModelList) != 1 || ModelList[0] != "c04" {
		t.Errorf("Model list not correct: %v", ModelList)
	}
}

// Models require an address.
func TestModelNoAddress(t *testing.T) {
	cleanUpConfig()
	RegisterModel("testdev", TypeModel, recorder("model"))
	err := LoadConfig(strings.NewReader("testdev xyz\n"))
	if err == nil {
		t.Error("Model without address accepted")
	}
	err = LoadConfig(strings.NewReader("nosuch 100\n"))
	if err == nil {
		t.Error("Unknown model accepted")
	}
}

// Comma lists collect values.
func TestOptionsList(t *testing.T) {
	cleanUpConfig()
	RegisterModel("debug", TypeOptions, recorder("options"))
	err := LoadConfig(strings.NewReader("debug channel 12 cmd, data,detail\n"))
	if err != nil {
		t.Fatalf("Unable to parse options: %v", err)
	}
	if testValue != "channel" || testDevNum != NoDev {
		t.Errorf("First value not correct: %s %04x", testValue, testDevNum)
	}
	if len(testOptions) != 2 {
		t.Fatalf("Options expected %d got: %d", 2, len(testOptions))
	}
	if testOptions[0].Name != "12" {
		t.Errorf("Option 0 not correct: %s", testOptions[0].Name)
	}
	if len(testOptions[1].Value) != 2 || *testOptions[1].Value[1] != "detail" {
		t.Errorf("Option values not correct: %v", testOptions[1].Value)
	}
}

// Switch and option types.
func TestSwitchAndOption(t *testing.T) {
	cleanUpConfig()
	RegisterSwitch("flag", recorder("switch"))
	RegisterOption("memory", recorder("option"))

	if err := LoadConfig(strings.NewReader("flag\n")); err != nil {
		t.Errorf("Switch failed: %v", err)
	}
	if testType != "switch" {
		t.Errorf("Wrong create called: %s", testType)
	}
	if err := LoadConfig(strings.NewReader("flag on\n")); err == nil {
		t.Error("Switch with options accepted")
	}
	if err := LoadConfig(strings.NewReader("memory 256\n")); err != nil {
		t.Errorf("Option failed: %v", err)
	}
	if testValue != "256" {
		t.Errorf("Option value expected %s got: %s", "256", testValue)
	}
	if err := LoadConfig(strings.NewReader("memory 256 512\n")); err == nil {
		t.Error("Option with two values accepted")
	}
}

// File names may be quoted.
func TestFileQuoted(t *testing.T) {
	cleanUpConfig()
	RegisterFile("debugfile", recorder("file"))
	err := LoadConfig(strings.NewReader(`debugfile "my ""debug"" log.txt"` + "\n"))
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if testValue != `my "debug" log.txt` {
		t.Errorf("File name not correct: %s", testValue)
	}
	if err := LoadConfig(strings.NewReader(`debugfile "open` + "\n")); err == nil {
		t.Error("Unterminated quote accepted")
	}
}

// Errors carry the line number.
func TestErrorLine(t *testing.T) {
	cleanUpConfig()
	fail := errors.New("create failed")
	RegisterModel("bad", TypeModel, func(uint16, string, []Option) error { return fail })
	err := LoadConfig(strings.NewReader("# header\n\nbad 100\n"))
	if !errors.Is(err, fail) {
		t.Fatalf("Expected create error got: %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Error does not have line number: %v", err)
	}
	if len(ModelList) != 0 {
		t.Errorf("Failed model added to list: %v", ModelList)
	}
}
