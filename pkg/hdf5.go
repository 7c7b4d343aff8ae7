package flashfinder

import (
	"fmt"

	"github.com/next-exp/hdf5-go"
)

type RunInfoHDF5 struct {
	run_number int32
}

type EventDataHDF5 struct {
	evt_number int32
	timestamp  uint64
}

type HitHDF5 struct {
	channel       int32
	peak_time     float64
	peak_time_abs float64
	frame         int32
	width         float64
	area          float64
	amplitude     float64
	pe            float64
}

type FlashHDF5 struct {
	time          float64
	time_width    float64
	abs_time      float64
	frame         int32
	total_pe      float64
	in_beam_frame int8
	on_beam_time  int8
	fast_to_total float64
	y_center      float64
	y_width       float64
	z_center      float64
	z_width       float64
}

type AssocHDF5 struct {
	flash int32
	hit   int32
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(err)
	}
	return f
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(err)
	}
	return g
}

// create2dArray makes an extensible float64 array with fixed row length.
// Rows are appended one per flash.
func create2dArray(group *hdf5.Group, name string, rowLen int) *hdf5.Dataset {
	dimsArray := []uint{0, 0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDimsArray := []uint{uint(unlimitedDims), uint(rowLen)}
	chunks := []uint{32, uint(rowLen)}

	file_spaceArray, err := hdf5.CreateSimpleDataspace(dimsArray, maxDimsArray)
	if err != nil {
		panic(err)
	}

	// create property list
	plistArray, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		fmt.Println("plist")
		panic(err)
	}

	plistArray.SetChunk(chunks)
	plistArray.SetDeflate(configuration.CompressionLevel)

	// create the dataset
	dsetArray, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, file_spaceArray, plistArray)
	if err != nil {
		panic(err)
	}
	return dsetArray
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}

	chunks := []uint{32768}
	plist.SetChunk(chunks)
	plist.SetDeflate(configuration.CompressionLevel)

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(err)
	}

	// create the dataset
	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, counter int) {
	array := []T{data}
	writeArrayToTable(dataset, &array, counter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, counter int) {
	length := uint(len(*data))
	if length == 0 {
		return
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		fmt.Println("space")
		panic(err)
	}

	// extend
	rowsInFile := uint(counter)
	newsize := []uint{rowsInFile + length}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{rowsInFile}
	count := []uint{length}
	filespace.SelectHyperslab(start, nil, count, nil)

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}

// write2dArray appends nRows rows of rowLen float64 values. data is flat,
// row major.
func write2dArray(dataset *hdf5.Dataset, data *[]float64, counter int, nRows int, rowLen int) {
	if nRows == 0 {
		return
	}
	// extend
	newsize := []uint{uint(counter + nRows), uint(rowLen)}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{uint(counter), 0}
	count := []uint{uint(nRows), uint(rowLen)}
	filespace.SelectHyperslab(start, nil, count, nil)

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		panic(err)
	}

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}
