package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// debug log state, nil while verbose logging is off
var (
	mu      sync.Mutex
	logger  *log.Logger
	logFile *os.File
)

// LogFileName returns the dated log file path inside dir
func LogFileName(dir string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("pinlist_%s.log", day.Format("2006-01-02")))
}

// Log writes a debug line when verbose logging is enabled
func Log(text string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		logger.Printf(text, args...)
	}
}

// InitLogger enables verbose logging into a dated file in dir, or in the
// system temp directory when dir is empty. Runs of the same day append.
func InitLogger(verbose bool, dir string) {
	if !verbose {
		return
	}
	if dir == "" {
		dir = os.TempDir()
	}

	f, err := os.OpenFile(LogFileName(dir, time.Now()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Printf("Error creating log file: %v\n", err)
		return
	}

	mu.Lock()
	logFile = f
	logger = log.New(f, "", log.Ltime|log.Lmicroseconds)
	mu.Unlock()

	Log("Verbose logging enabled")
}

// CloseLogger closes the log file and turns logging off
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = nil
	logger = nil
}
