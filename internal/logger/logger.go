package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu       sync.Mutex
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	debugLog *log.Logger
	debug    bool
	logFile  *os.File
)

// Init sets up console logging. Debug lines are dropped unless debugEnabled is set.
func Init(debugEnabled bool) {
	mu.Lock()
	defer mu.Unlock()
	setup(os.Stdout, os.Stderr, debugEnabled)
}

// InitFile logs to the console and appends to filename.
func InitFile(filename string, debugEnabled bool) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	setup(io.MultiWriter(os.Stdout, f), io.MultiWriter(os.Stderr, f), debugEnabled)
	return nil
}

// SetOutput redirects every level to w. Used by tests.
func SetOutput(w io.Writer, debugEnabled bool) {
	mu.Lock()
	defer mu.Unlock()
	setup(w, w, debugEnabled)
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func setup(out, errOut io.Writer, debugEnabled bool) {
	flags := log.Ldate | log.Ltime
	infoLog = log.New(out, "INFO: ", flags)
	warnLog = log.New(out, "WARN: ", flags)
	errorLog = log.New(errOut, "ERROR: ", flags)
	debugLog = log.New(out, "DEBUG: ", flags|log.Lshortfile)
	debug = debugEnabled
}

func loggers() (info, warn, errl, dbg *log.Logger, debugOn bool) {
	mu.Lock()
	defer mu.Unlock()
	if infoLog == nil {
		setup(os.Stdout, os.Stderr, false)
	}
	return infoLog, warnLog, errorLog, debugLog, debug
}

func Infof(format string, v ...interface{}) {
	l, _, _, _, _ := loggers()
	l.Printf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	_, l, _, _, _ := loggers()
	l.Printf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	_, _, l, _, _ := loggers()
	l.Printf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	_, _, _, l, on := loggers()
	if on {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// DebugEnabled lets callers skip building expensive debug output.
func DebugEnabled() bool {
	_, _, _, _, on := loggers()
	return on
}
