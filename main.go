/*
 * SEL32 - Main program
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
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	reader "github.com/rcornwell/sel32/command/reader"
	config "github.com/rcornwell/sel32/config/configparser"
	core "github.com/rcornwell/sel32/emu/core"
	master "github.com/rcornwell/sel32/emu/master"
	syschannel "github.com/rcornwell/sel32/emu/sys_channel"
	timer "github.com/rcornwell/sel32/emu/timer"
	logger "github.com/rcornwell/sel32/util/logger"

	_ "github.com/rcornwell/sel32/config/debugconfig"
	_ "github.com/rcornwell/sel32/emu/models"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "SEL32.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("Unable to create log file: " + err.Error())
			os.Exit(1)
		}
		defer file.Close()
		logFile = file
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("SEL32 Started")

	_, err := os.Stat(*optConfig)
	if os.IsNotExist(err) {
		Logger.Error("Configuration file " + *optConfig + " can't be found")
		os.Exit(1)
	}

	syschannel.InitializeChannels()
	err = config.LoadConfigFile(*optConfig)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	masterChannel := make(chan master.Packet)

	// Create new routine to run channels and devices.
	sim := core.NewCore(masterChannel)

	// Configure I/O devices.
	syschannel.ResetChannels()

	// Start main emulator.
	go sim.Start()

	// Clock pulses advance simulated time.
	clock := timer.NewTimer(masterChannel, timer.DefaultInterval)
	clock.Start()

	msg := make(chan string, 1)
	go func() {
		reader.ConsoleReader(sim)
		msg <- ""
	}()

	// Wait on shutdown option
	<-msg

	clock.Shutdown()
	sim.Stop()
	Logger.Info("Simulation stopped.")
}
