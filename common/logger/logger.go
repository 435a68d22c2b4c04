package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
	TRACE
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

var (
	currentLevel = ERROR
	Info         = log.New(io.Discard, "INFO:  ", logFlags)
	Warn         = log.New(io.Discard, "WARN:  ", logFlags)
	Error        = log.New(io.Discard, "ERROR: ", logFlags)
	Debug        = log.New(io.Discard, "DEBUG: ", logFlags)
	Trace        = log.New(io.Discard, "TRACE: ", logFlags)
)

func StringToLogLevel(value string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return ERROR
	case "warn":
		return WARN
	case "info":
		return INFO
	case "debug":
		return DEBUG
	case "trace":
		return TRACE
	}
	log.Printf("Invalid log level: '%s'. Returning INFO", value)
	return INFO
}

func (s LogLevel) String() string {
	switch s {
	case ERROR:
		return "ERROR"
	case WARN:
		return "WARN"
	case INFO:
		return "INFO"
	case DEBUG:
		return "DEBUG"
	case TRACE:
		return "TRACE"
	}
	return "UNKNOWN"
}

func IsLogLevel(logLevel LogLevel) bool {
	return currentLevel >= logLevel
}

// Initialize writes errors to stderr and everything else to stdout.
func Initialize(logLevel LogLevel) {
	InitializeWithWriters(logLevel, os.Stderr, os.Stdout)
}

// InitializeWithWriters enables the loggers up to logLevel. Loggers above the
// level are discarded.
func InitializeWithWriters(logLevel LogLevel, errorOut io.Writer, out io.Writer) {
	currentLevel = logLevel

	var errorWriter = io.Discard
	var warnWriter = io.Discard
	var infoWriter = io.Discard
	var debugWriter = io.Discard
	var traceWriter = io.Discard
	if logLevel >= ERROR {
		errorWriter = errorOut
	}
	if logLevel >= WARN {
		warnWriter = out
	}
	if logLevel >= INFO {
		infoWriter = out
	}
	if logLevel >= DEBUG {
		debugWriter = out
	}
	if logLevel >= TRACE {
		traceWriter = out
	}

	Error.SetOutput(errorWriter)
	Warn.SetOutput(warnWriter)
	Info.SetOutput(infoWriter)
	Debug.SetOutput(debugWriter)
	Trace.SetOutput(traceWriter)

	Debug.Printf("Loggers initialized: '%s'", logLevel.String())
}
