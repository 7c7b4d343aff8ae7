package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	flashfinder "github.com/uboone-reco/flashfinder_go/pkg"
)

var dbConn *sqlx.DB
var configuration flashfinder.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

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
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
	}
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
	runNumber := int(fileHeader.RunNumber)
	compressed := fileHeader.Compressed != 0
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Run number: %d, compressed: %t", runNumber, compressed)
		logger.Info(message, "main")
	}

	channelMap, speTable, geom, huffman, err := loadDetectorServices(runNumber, compressed)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	if dbConn != nil {
		defer dbConn.Close()
	}

	evtCount, err := flashfinder.CountEvents(file)
	if err != nil {
		message := fmt.Errorf("Error counting events: %w", err)
		logger.Error(message.Error())
		return
	}
	evtsToRead := numberOfEventsToProcess(evtCount, configuration.Skip, configuration.MaxEvents)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d, to process: %d", evtCount, evtsToRead)
		logger.Info(message, "main")
	}
	if evtsToRead <= 0 {
		logger.Info("No events to process", "main")
		return
	}

	clock := flashfinder.OpticalClock{
		TickPeriod:  configuration.TickPeriod,
		FrameTicks:  configuration.FrameTicks,
		GateTicks:   configuration.GateTicks,
		TriggerTime: configuration.TriggerTime,
	}
	finder := &flashfinder.FlashFinder{
		Reco: flashfinder.AlgoThreshold{
			PedSamples: configuration.PedSamples,
			StartADC:   configuration.PulseStartADC,
			EndADC:     configuration.PulseEndADC,
		},
		Geom:       geom,
		Clock:      clock,
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

	var writer *flashfinder.Writer
	if configuration.WriteData {
		writer = flashfinder.NewWriter(configuration.FileOut, fileHeader.RunNumber,
			geom.NChannels(), geom.NPlanes())
		defer writer.Close()
	}

	jobs := make(chan WorkerData, configuration.NumWorkers)
	results := make(chan EventResult, 1000)

	for w := 1; w <= configuration.NumWorkers; w++ {
		go worker(w, finder, compressed, huffman, jobs, results)
	}

	fileReader := NewFileReader(file)

	start := time.Now()
	go sendEventsToWorkers(fileReader, jobs)
	processWorkerResults(results, writer, evtsToRead)

	duration := time.Since(start)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

func loadDetectorServices(runNumber int, compressed bool) (map[uint16]int, []float64,
	flashfinder.Geometry, *flashfinder.HuffmanNode, error) {

	if configuration.NoDB {
		if compressed {
			return nil, nil, nil, nil, fmt.Errorf("compressed input needs the Huffman table from the database")
		}
		nChannels := configuration.NChannels
		channelMap := make(map[uint16]int, nChannels)
		speTable := make([]float64, nChannels)
		for i := 0; i < nChannels; i++ {
			channelMap[uint16(i)] = i
			speTable[i] = configuration.SPEDefault
		}
		return channelMap, speTable, flashfinder.DefaultGeometry(nChannels), nil, nil
	}

	var err error
	dbConn, err = flashfinder.ConnectToDatabase(configuration.User, configuration.Passwd,
		configuration.Host, configuration.DBName)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("Error connecting to database: %w", err)
	}

	channelMap, err := flashfinder.LoadChannelMapFromDB(dbConn, runNumber)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("Error loading channel map: %w", err)
	}
	speTable, err := flashfinder.LoadSPETableFromDB(dbConn, runNumber, configuration.NChannels)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("Error loading SPE calibration: %w", err)
	}
	geom, err := flashfinder.LoadGeometryFromDB(dbConn, runNumber, configuration.NChannels)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("Error loading geometry: %w", err)
	}

	var huffman *flashfinder.HuffmanNode
	if compressed {
		huffman, err = flashfinder.LoadHuffmanCodesFromDB(dbConn, runNumber)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("Error loading Huffman codes: %w", err)
		}
	}
	return channelMap, speTable, geom, huffman, nil
}

func numberOfEventsToProcess(fileEvtCount int, skipEvts int, maxEvtCount int) int {
	evtsToRead := maxEvtCount
	if evtsToRead > fileEvtCount {
		evtsToRead = fileEvtCount
	}
	return evtsToRead - skipEvts
}
