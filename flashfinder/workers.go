package main

import (
	"fmt"
	"io"
	"time"

	flashfinder "github.com/uboone-reco/flashfinder_go/pkg"
)

type WorkerData struct {
	Data   []byte
	Header flashfinder.EventHeaderStruct
}

type EventResult struct {
	EventID   uint32
	Timestamp uint64
	Result    flashfinder.Result
	Error     bool
}

func worker(id int, finder *flashfinder.FlashFinder, compressed bool,
	huffman *flashfinder.HuffmanNode, jobs <-chan WorkerData, results chan<- EventResult) {
	for event := range jobs {
		results <- reconstructEvent(id, finder, compressed, huffman, event)
	}
}

func reconstructEvent(id int, finder *flashfinder.FlashFinder, compressed bool,
	huffman *flashfinder.HuffmanNode, event WorkerData) (result EventResult) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Worker %d recovered from panic: %v\n", id, r)
			result = EventResult{Error: true}
		}
	}()

	if VerbosityLevel > 1 {
		message := fmt.Sprintf("Worker %d processing event %d", id, event.Header.EventID)
		logger.Info(message, "workers")
	}
	digits, err := flashfinder.DecodeEvent(event.Data, event.Header, compressed, huffman)
	if err != nil {
		message := fmt.Errorf("error decoding event %d: %w", event.Header.EventID, err)
		logger.Error(message.Error())
		return EventResult{Error: true}
	}
	return EventResult{
		EventID:   event.Header.EventID,
		Timestamp: event.Header.Timestamp,
		Result:    finder.Run(digits),
	}
}

func sendEventsToWorkers(fileReader *FileReader, jobs chan<- WorkerData) {
	for {
		header, eventData, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			break
		}
		jobs <- WorkerData{Data: eventData, Header: header}
	}
	close(jobs)
}

func processWorkerResults(results <-chan EventResult, writer *flashfinder.Writer, evtsToRead int) {
	evtsProcessed := 0
	var totalTime int64 = 0
	for event := range results {
		start := time.Now()
		if configuration.WriteData && !event.Error {
			writer.WriteEvent(event.EventID, event.Timestamp, &event.Result)
		}
		if event.Error && !DiscardErrors {
			message := fmt.Sprintf("event %d failed and discard is off, stopping", event.EventID)
			logger.Error(message)
			break
		}

		evtsProcessed++
		duration := time.Since(start)
		totalTime += duration.Milliseconds()

		if evtsProcessed >= evtsToRead {
			break
		}
	}
	fmt.Println("Total time writing: ", totalTime)
}
