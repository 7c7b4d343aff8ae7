package flashfinder

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type channelMappingEntry struct {
	ElecID   int `db:"ElecID"`
	SensorID int `db:"SensorID"`
}

type pmtGainEntry struct {
	SensorID int     `db:"SensorID"`
	SpeSize  float64 `db:"SpeSize"`
}

type opDetPositionEntry struct {
	SensorID int     `db:"SensorID"`
	X        float64 `db:"X"`
	Y        float64 `db:"Y"`
	Z        float64 `db:"Z"`
}

type wirePlaneEntry struct {
	PlaneID  int     `db:"PlaneID"`
	Angle    float64 `db:"Angle"`
	Pitch    float64 `db:"Pitch"`
	WireZero float64 `db:"WireZero"`
	NWires   int     `db:"NWires"`
}

type huffmanCodeEntry struct {
	Value int    `db:"value"`
	Code  string `db:"code"`
}

// LoadChannelMapFromDB reads the electronics-to-optical channel mapping
// valid for the given run.
func LoadChannelMapFromDB(db *sqlx.DB, runNumber int) (map[uint16]int, error) {
	query := "SELECT ElecID, SensorID FROM ChannelMapping WHERE MinRun <= %d and MaxRun >= %d ORDER BY SensorID"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Channel mapping read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	channelMap := make(map[uint16]int)
	for rows.Next() {
		result := channelMappingEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		channelMap[uint16(result.ElecID)] = result.SensorID
	}
	return channelMap, nil
}

// LoadSPETableFromDB reads the single-photoelectron size of each optical
// channel. The returned slice is indexed by optical channel number.
func LoadSPETableFromDB(db *sqlx.DB, runNumber int, nChannels int) ([]float64, error) {
	query := "SELECT SensorID, SpeSize FROM PmtGain WHERE MinRun <= %d and MaxRun >= %d"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("SPE calibration read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	speTable := make([]float64, nChannels)
	for rows.Next() {
		result := pmtGainEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		if result.SensorID < 0 || result.SensorID >= nChannels {
			errMessage := fmt.Sprintf("sensor %d in PmtGain outside the channel range", result.SensorID)
			logger.Error(errMessage)
			continue
		}
		if result.SpeSize <= 0 {
			errMessage := fmt.Sprintf("sensor %d in PmtGain has non-positive SPE size %f", result.SensorID, result.SpeSize)
			logger.Error(errMessage)
			continue
		}
		speTable[result.SensorID] = result.SpeSize
	}
	return speTable, nil
}

// LoadGeometryFromDB reads the optical detector positions and the wire
// plane descriptions valid for the given run.
func LoadGeometryFromDB(db *sqlx.DB, runNumber int, nChannels int) (*DetectorGeometry, error) {
	query := "SELECT SensorID, X, Y, Z FROM OpDetPosition WHERE MinRun <= %d and MaxRun >= %d ORDER BY SensorID"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Optical detector geometry read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	centers := make([][3]float64, nChannels)
	for rows.Next() {
		result := opDetPositionEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		if result.SensorID < 0 || result.SensorID >= nChannels {
			errMessage := fmt.Sprintf("sensor %d in OpDetPosition outside the channel range", result.SensorID)
			logger.Error(errMessage)
			continue
		}
		centers[result.SensorID] = [3]float64{result.X, result.Y, result.Z}
	}

	planes, err := loadWirePlanesFromDB(db, runNumber)
	if err != nil {
		return nil, err
	}

	return &DetectorGeometry{Centers: centers, Planes: planes}, nil
}

func loadWirePlanesFromDB(db *sqlx.DB, runNumber int) ([]WirePlane, error) {
	query := "SELECT PlaneID, Angle, Pitch, WireZero, NWires FROM WirePlane WHERE MinRun <= %d and MaxRun >= %d ORDER BY PlaneID"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	var planes []WirePlane
	for rows.Next() {
		result := wirePlaneEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		planes = append(planes, NewWirePlane(result.Angle, result.Pitch, result.WireZero, result.NWires))
	}
	return planes, nil
}

// LoadHuffmanCodesFromDB reads the waveform compression table valid for
// the given run.
func LoadHuffmanCodesFromDB(db *sqlx.DB, runNumber int) (*HuffmanNode, error) {
	query := "SELECT value, code from HuffmanCodes WHERE MinRun <= %d and MaxRun >= %d"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Reading Huffman codes from database", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	huffman := &HuffmanNode{
		NextNodes: [2]*HuffmanNode{nil, nil},
	}

	for rows.Next() {
		result := huffmanCodeEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		parseHuffmanLine(int32(result.Value), result.Code, huffman)
	}
	return huffman, nil
}
