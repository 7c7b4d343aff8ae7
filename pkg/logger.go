package flashfinder

type Logger interface {
	Info(message string, module string)
	Error(string)
}

var logger Logger = nopLogger{}

func SetLogger(l Logger) {
	logger = l
}

// nopLogger keeps library calls safe before SetLogger runs (e.g. in tests).
type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Error(string)        {}
