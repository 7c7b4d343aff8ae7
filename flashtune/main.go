package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	flashfinder "github.com/uboone-reco/flashfinder_go/pkg"
)

var configuration flashfinder.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

var flashThresholds = []float64{1.0, 2.0, 3.0, 5.0, 10.0}
var widthTolerances = []float64{0.25, 0.5, 1.0, 2.0}

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

// flashtune reruns the reconstruction over the same events for a grid of
// flash threshold and width tolerance values, reporting flash counts and
// timing for each point. Input must be uncompressed; the tool runs
// without any database connection.
func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	flashfinder.SetConfiguration(configuration)
	flashfinder.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		printConfiguration(configuration, logger)
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer file.Close()

	fileHeader, err := flashfinder.ReadFileHeader(file)
	if err != nil {
		message := fmt.Errorf("Error reading file header: %w", err)
		logger.Error(message.Error())
		return
	}
	if fileHeader.Compressed != 0 {
		logger.Error("flashtune only reads uncompressed files")
		return
	}

	events, err := readAllEvents(file)
	if err != nil {
		message := fmt.Errorf("Error reading events: %w", err)
		logger.Error(message.Error())
		return
	}
	fmt.Println("Total events read: ", len(events))

	nChannels := configuration.NChannels
	channelMap := make(map[uint16]int, nChannels)
	speTable := make([]float64, nChannels)
	for i := 0; i < nChannels; i++ {
		channelMap[uint16(i)] = i
		speTable[i] = configuration.SPEDefault
	}

	finder := &flashfinder.FlashFinder{
		Reco: flashfinder.AlgoThreshold{
			PedSamples: configuration.PedSamples,
			StartADC:   configuration.PulseStartADC,
			EndADC:     configuration.PulseEndADC,
		},
		Geom: flashfinder.DefaultGeometry(nChannels),
		Clock: flashfinder.OpticalClock{
			TickPeriod:  configuration.TickPeriod,
			FrameTicks:  configuration.FrameTicks,
			GateTicks:   configuration.GateTicks,
			TriggerTime: configuration.TriggerTime,
		},
		ChannelMap: channelMap,
		SPE:        speTable,
		Params: flashfinder.Params{
			BinWidth:       configuration.BinWidth,
			HitThreshold:   configuration.HitThreshold,
			FlashThreshold: configuration.FlashThreshold,
			WidthTolerance: configuration.WidthTolerance,
			TrigCoinc:      configuration.TrigCoinc,
		},
	}

	start := time.Now()
	for _, threshold := range flashThresholds {
		for _, tolerance := range widthTolerances {
			finder.Params.FlashThreshold = threshold
			finder.Params.WidthTolerance = tolerance

			runStart := time.Now()
			nFlashes := 0
			nHits := 0
			nOnBeam := 0
			for _, digits := range events {
				result := finder.Run(digits)
				nFlashes += len(result.Flashes)
				nHits += len(result.Hits)
				for _, flash := range result.Flashes {
					if flash.OnBeamTime {
						nOnBeam++
					}
				}
			}
			duration := time.Since(runStart)
			fmt.Printf("(threshold %.2f, tolerance %.2f) flashes: %d, on-beam: %d, hits: %d, time: %d ms\n",
				threshold, tolerance, nFlashes, nOnBeam, nHits, duration.Milliseconds())
		}
	}

	duration := time.Since(start)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

func readAllEvents(file *os.File) ([][]flashfinder.RawDigit, error) {
	var events [][]flashfinder.RawDigit
	for {
		header, eventData, err := flashfinder.ReadEventFromFile(file)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if len(events) >= configuration.MaxEvents {
			break
		}
		digits, err := flashfinder.DecodeEvent(eventData, header, false, nil)
		if err != nil {
			message := fmt.Errorf("error decoding event %d: %w", header.EventID, err)
			logger.Error(message.Error())
			if configuration.Discard {
				continue
			}
			return nil, err
		}
		events = append(events, digits)
	}
	return events, nil
}
