package flashfinder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"
)

// Raw digit file layout, little endian throughout:
// one FileHeaderStruct, then per event one EventHeaderStruct followed by
// the event payload. The payload is a sequence of digits, each a
// DigitHeaderStruct followed by NSamples waveform samples. Uncompressed
// samples are int16; compressed digits carry a Huffman bit stream packed
// into 16-bit words instead.

const fileMagic uint32 = 0x464C5348 // "FLSH"

const huffmanControlCode int32 = 123456

type FileHeaderStruct struct {
	Magic      uint32
	RunNumber  uint32
	NEvents    uint32
	Compressed uint32
}

type EventHeaderStruct struct {
	EventSize uint32 // payload bytes, header not included
	EventID   uint32
	Timestamp uint64
	NDigits   uint32
	Pad       uint32
}

type DigitHeaderStruct struct {
	Channel   uint16
	Frame     uint16
	TimeSlice uint32
	NSamples  uint32
}

func ReadFileHeader(file *os.File) (FileHeaderStruct, error) {
	var header FileHeaderStruct
	headerSize := unsafe.Sizeof(header)
	headerBinary := make([]byte, headerSize)
	_, err := io.ReadFull(file, headerBinary)
	if err != nil {
		return header, fmt.Errorf("error reading file header: %w", err)
	}

	headerReader := bytes.NewReader(headerBinary)
	binary.Read(headerReader, binary.LittleEndian, &header)

	if header.Magic != fileMagic {
		return header, ErrBadFormat
	}
	return header, nil
}

func ReadEventFromFile(file *os.File) (EventHeaderStruct, []byte, error) {
	var header EventHeaderStruct
	headerSize := unsafe.Sizeof(header)
	headerBinary := make([]byte, headerSize)
	_, err := io.ReadFull(file, headerBinary)
	if err != nil {
		return header, nil, err
	}

	headerReader := bytes.NewReader(headerBinary)
	binary.Read(headerReader, binary.LittleEndian, &header)

	eventData := make([]byte, header.EventSize)
	if _, err := io.ReadFull(file, eventData); err != nil {
		return header, nil, fmt.Errorf("error reading event payload: %w", err)
	}
	return header, eventData, nil
}

// CountEvents walks the whole file counting events, then seeks back to
// the first event. The file header must already have been read.
func CountEvents(file *os.File) (int, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	evtCount := 0
	for {
		var header EventHeaderStruct
		headerSize := unsafe.Sizeof(header)
		headerBinary := make([]byte, headerSize)
		nRead, err := file.Read(headerBinary)
		if err != nil {
			if err != io.EOF {
				errMessage := fmt.Errorf("error reading header counting events: %w", err)
				logger.Error(errMessage.Error())
			}
			break
		}
		if nRead == 0 {
			break
		}

		headerReader := bytes.NewReader(headerBinary)
		binary.Read(headerReader, binary.LittleEndian, &header)

		file.Seek(int64(header.EventSize), io.SeekCurrent)
		evtCount++
	}

	file.Seek(start, io.SeekStart)
	return evtCount, nil
}

// DecodeEvent unpacks an event payload into raw digits. When compressed
// is set the waveforms are Huffman streams and huffman must be non-nil.
func DecodeEvent(eventData []byte, header EventHeaderStruct, compressed bool, huffman *HuffmanNode) ([]RawDigit, error) {
	digits := make([]RawDigit, 0, header.NDigits)
	position := uintptr(0)
	digitHeaderSize := unsafe.Sizeof(DigitHeaderStruct{})

	for i := uint32(0); i < header.NDigits; i++ {
		if position+digitHeaderSize > uintptr(len(eventData)) {
			return nil, fmt.Errorf("digit %d: %w", i, ErrBadFormat)
		}
		var dheader DigitHeaderStruct
		headerReader := bytes.NewReader(eventData[position : position+digitHeaderSize])
		binary.Read(headerReader, binary.LittleEndian, &dheader)
		position += digitHeaderSize

		var waveform []int16
		var consumed uintptr
		var err error
		if compressed {
			if huffman == nil {
				return nil, fmt.Errorf("digit %d: compressed data without a huffman table", i)
			}
			waveform, consumed, err = decodeCompressedWaveform(eventData[position:], dheader.NSamples, huffman)
		} else {
			waveform, consumed, err = decodeRawWaveform(eventData[position:], dheader.NSamples)
		}
		if err != nil {
			return nil, fmt.Errorf("digit %d: %w", i, err)
		}
		position += consumed

		digits = append(digits, RawDigit{
			Channel:   dheader.Channel,
			Frame:     dheader.Frame,
			TimeSlice: dheader.TimeSlice,
			Waveform:  waveform,
		})
	}
	return digits, nil
}

func decodeRawWaveform(data []byte, nSamples uint32) ([]int16, uintptr, error) {
	size := uintptr(nSamples) * 2
	if size > uintptr(len(data)) {
		return nil, 0, ErrBadFormat
	}
	waveform := make([]int16, nSamples)
	reader := bytes.NewReader(data[:size])
	binary.Read(reader, binary.LittleEndian, &waveform)
	return waveform, size, nil
}

// decodeCompressedWaveform reads a Huffman bit stream packed into 16-bit
// words. The first sample is stored verbatim in the first word; the rest
// are coded differences, with the control code escaping a raw 12-bit
// value. Two consecutive words form a 32-bit window so codes can
// straddle a word boundary; the writer pads the stream so the window can
// always be formed. Returns the decoded waveform and the bytes consumed.
func decodeCompressedWaveform(data []byte, nSamples uint32, huffman *HuffmanNode) ([]int16, uintptr, error) {
	if nSamples == 0 {
		return nil, 0, nil
	}
	nWords := len(data) / 2
	word := func(i int) uint32 {
		return uint32(binary.LittleEndian.Uint16(data[i*2:]))
	}

	if nWords < 1 {
		return nil, 0, ErrBadFormat
	}
	waveform := make([]int16, 0, nSamples)
	previous := int32(int16(word(0)))
	waveform = append(waveform, int16(previous))

	if nSamples == 1 {
		return waveform, 2, nil
	}

	position := 1
	currentBit := 31

	for uint32(len(waveform)) < nSamples {
		if currentBit < 16 {
			position++
			currentBit += 16
		}
		if position+1 >= nWords {
			return nil, 0, ErrBadFormat
		}
		dataword := word(position)<<16 | word(position+1)
		previous = decodeCompressedValue(previous, dataword, huffmanControlCode, &currentBit, huffman)
		waveform = append(waveform, int16(previous))
	}

	return waveform, uintptr(position+2) * 2, nil
}
