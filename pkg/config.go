package flashfinder

type Configuration struct {
	MaxEvents  int    `json:"max_events"`
	Verbosity  int    `json:"verbosity"`
	Skip       int    `json:"skip"`
	FileIn     string `json:"file_in"`
	FileOut    string `json:"file_out"`
	NoDB       bool   `json:"no_db"`
	Discard    bool   `json:"discard"`
	Host       string `json:"host"`
	User       string `json:"user"`
	Passwd     string `json:"pass"`
	DBName     string `json:"dbname"`
	NumWorkers int    `json:"num_workers"`
	WriteData  bool   `json:"write_data"`

	CompressionLevel int `json:"compression_level"`

	// Flash reconstruction parameters
	BinWidth       int     `json:"bin_width"`
	HitThreshold   float64 `json:"hit_threshold"`
	FlashThreshold float64 `json:"flash_threshold"`
	WidthTolerance float64 `json:"width_tolerance"`
	TrigCoinc      float64 `json:"trig_coinc"`

	// Optical clock parameters
	TickPeriod  float64 `json:"tick_period"`
	FrameTicks  uint32  `json:"frame_ticks"`
	GateTicks   uint32  `json:"gate_ticks"`
	TriggerTime float64 `json:"trigger_time"`

	// Pulse reconstruction parameters
	PedSamples     int     `json:"ped_samples"`
	PulseStartADC  float64 `json:"pulse_start_adc"`
	PulseEndADC    float64 `json:"pulse_end_adc"`

	// Used instead of the database when no_db is set
	NChannels  int     `json:"n_channels"`
	SPEDefault float64 `json:"spe_default"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}
