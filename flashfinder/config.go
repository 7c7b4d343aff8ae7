package main

import (
	"encoding/json"
	"fmt"
	"os"

	flashfinder "github.com/uboone-reco/flashfinder_go/pkg"
)

func LoadConfiguration(filename string) (flashfinder.Configuration, error) {
	var config flashfinder.Configuration

	// Set default values
	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.Skip = 0
	config.NoDB = false
	config.Discard = true
	config.Host = "dbgateway.fnal.gov"
	config.User = "uboonereader"
	config.Passwd = "readonly"
	config.DBName = "uboone_opreco"
	config.NumWorkers = 1
	config.WriteData = true
	config.CompressionLevel = 4

	config.BinWidth = 64
	config.HitThreshold = 3.0
	config.FlashThreshold = 2.0
	config.WidthTolerance = 0.5
	config.TrigCoinc = 2.5

	config.TickPeriod = 0.015625
	config.FrameTicks = 102400
	config.GateTicks = 3000
	config.TriggerTime = 1600.0

	config.PedSamples = 20
	config.PulseStartADC = 3.0
	config.PulseEndADC = 1.0

	config.NChannels = 32
	config.SPEDefault = 20.0

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config flashfinder.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Bin width: %d", config.BinWidth), "config")
	logger.Info(fmt.Sprintf("Hit threshold: %f", config.HitThreshold), "config")
	logger.Info(fmt.Sprintf("Flash threshold: %f", config.FlashThreshold), "config")
	logger.Info(fmt.Sprintf("Width tolerance: %f", config.WidthTolerance), "config")
	logger.Info(fmt.Sprintf("Trigger coincidence: %f", config.TrigCoinc), "config")
	logger.Info(fmt.Sprintf("Tick period: %f", config.TickPeriod), "config")
	logger.Info(fmt.Sprintf("Frame ticks: %d", config.FrameTicks), "config")
	logger.Info(fmt.Sprintf("Gate ticks: %d", config.GateTicks), "config")
	logger.Info(fmt.Sprintf("Trigger time: %f", config.TriggerTime), "config")
}
