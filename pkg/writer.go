package flashfinder

import (
	"errors"
	"fmt"

	hdf5 "github.com/next-exp/hdf5-go"
)

// Writer stores reconstruction products in an HDF5 file. Hits, flashes
// and associations from all events share three growing tables; the
// association table indexes into the global hit and flash tables.
type Writer struct {
	File         *hdf5.File
	Filename     string
	FirstEvt     bool
	RunGroup     *hdf5.Group
	FlashGroup   *hdf5.Group
	EventTable   *hdf5.Dataset
	RunInfoTable *hdf5.Dataset
	HitTable     *hdf5.Dataset
	FlashTable   *hdf5.Dataset
	AssocTable   *hdf5.Dataset
	PEPerChannel *hdf5.Dataset
	WireCenters  *hdf5.Dataset
	WireWidths   *hdf5.Dataset
	RunNumber    uint32
	NChannels    int
	NPlanes      int
	EvtCounter   int
	HitCounter   int
	FlashCounter int
	AssocCounter int
}

func NewWriter(filename string, runNumber uint32, nChannels int, nPlanes int) *Writer {
	writer := &Writer{}
	fmt.Println("hdf5writer: Creating file: ", filename)
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunNumber = runNumber
	writer.NChannels = nChannels
	writer.NPlanes = nPlanes
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.FlashGroup = createGroup(writer.File, "Flash")
	writer.EventTable = createTable(writer.RunGroup, "events", EventDataHDF5{})
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.HitTable = createTable(writer.FlashGroup, "hits", HitHDF5{})
	writer.FlashTable = createTable(writer.FlashGroup, "flashes", FlashHDF5{})
	writer.AssocTable = createTable(writer.FlashGroup, "assoc", AssocHDF5{})
	writer.PEPerChannel = create2dArray(writer.FlashGroup, "pe_per_channel", nChannels)
	writer.WireCenters = create2dArray(writer.FlashGroup, "wire_centers", nPlanes)
	writer.WireWidths = create2dArray(writer.FlashGroup, "wire_widths", nPlanes)
	writer.EvtCounter = 0
	return writer
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

// WriteEvent appends one event's products. Association entries are
// rebased onto the global tables with the running hit and flash counts.
func (w *Writer) WriteEvent(evtID uint32, timestamp uint64, result *Result) {
	if !w.FirstEvt {
		writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(w.RunNumber)}, 0)
		w.FirstEvt = true
	}

	writeEntryToTable(w.EventTable, EventDataHDF5{
		evt_number: int32(evtID),
		timestamp:  timestamp,
	}, w.EvtCounter)

	// The array MUST be allocated at creation, if not, HDF5 will panic
	// doing appends will not work
	hitRows := make([]HitHDF5, len(result.Hits))
	for i, hit := range result.Hits {
		hitRows[i] = HitHDF5{
			channel:       int32(hit.Channel),
			peak_time:     hit.PeakTime,
			peak_time_abs: hit.PeakTimeAbs,
			frame:         int32(hit.Frame),
			width:         hit.Width,
			area:          hit.Area,
			amplitude:     hit.Amplitude,
			pe:            hit.PE,
		}
	}
	writeArrayToTable(w.HitTable, &hitRows, w.HitCounter)

	nFlashes := len(result.Flashes)
	flashRows := make([]FlashHDF5, nFlashes)
	peData := make([]float64, nFlashes*w.NChannels)
	centerData := make([]float64, nFlashes*w.NPlanes)
	widthData := make([]float64, nFlashes*w.NPlanes)
	for i, flash := range result.Flashes {
		flashRows[i] = FlashHDF5{
			time:          flash.Time,
			time_width:    flash.TimeWidth,
			abs_time:      flash.AbsTime,
			frame:         int32(flash.Frame),
			total_pe:      flash.TotalPE(),
			in_beam_frame: boolToInt8(flash.InBeamFrame),
			on_beam_time:  boolToInt8(flash.OnBeamTime),
			fast_to_total: flash.FastToTotal,
			y_center:      flash.YCenter,
			y_width:       flash.YWidth,
			z_center:      flash.ZCenter,
			z_width:       flash.ZWidth,
		}
		copy(peData[i*w.NChannels:], flash.PEPerChannel)
		copy(centerData[i*w.NPlanes:], flash.WireCenters)
		copy(widthData[i*w.NPlanes:], flash.WireWidths)
	}
	writeArrayToTable(w.FlashTable, &flashRows, w.FlashCounter)
	write2dArray(w.PEPerChannel, &peData, w.FlashCounter, nFlashes, w.NChannels)
	write2dArray(w.WireCenters, &centerData, w.FlashCounter, nFlashes, w.NPlanes)
	write2dArray(w.WireWidths, &widthData, w.FlashCounter, nFlashes, w.NPlanes)

	var assocRows []AssocHDF5
	for flash, hitIDs := range result.HitsPerFlash {
		for _, hitID := range hitIDs {
			assocRows = append(assocRows, AssocHDF5{
				flash: int32(w.FlashCounter + flash),
				hit:   int32(w.HitCounter + hitID),
			})
		}
	}
	writeArrayToTable(w.AssocTable, &assocRows, w.AssocCounter)

	w.EvtCounter++
	w.HitCounter += len(result.Hits)
	w.FlashCounter += nFlashes
	w.AssocCounter += len(assocRows)
}

func (w *Writer) Close() error {
	fmt.Println("Closing file hdf writer ", w.Filename)
	var errs []error

	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.HitTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing hit table: %w", err))
	}
	if err := w.FlashTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing flash table: %w", err))
	}
	if err := w.AssocTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing assoc table: %w", err))
	}
	if err := w.PEPerChannel.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing PE array: %w", err))
	}
	if err := w.WireCenters.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing wire centers: %w", err))
	}
	if err := w.WireWidths.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing wire widths: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.FlashGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing flash group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
