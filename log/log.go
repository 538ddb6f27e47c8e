package log

import (
	"io"
	"log"
	"os"
)

// All loggers write to stderr: stdout belongs to the telemetry stream.
var (
	Info = &Logger{log.New(os.Stderr, "INFO ", log.LstdFlags|log.Lshortfile)}
	Erro = &Logger{log.New(os.Stderr, "ERRO ", log.LstdFlags|log.Lshortfile)}
	Debg = &Logger{log.New(os.Stderr, "DEBG ", log.LstdFlags|log.Lshortfile)}
)

type Logger struct {
	*log.Logger
}

func (l *Logger) On() {
	l.SetOutput(os.Stderr)
}

func (l *Logger) Off() {
	l.SetOutput(io.Discard)
}
