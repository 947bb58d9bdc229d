package playtest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/pelota/pkg/logger"
)

// SetupLogging initializes the structured logger and tees the standard
// log package to stdout plus a file, so progress output survives the
// run. An empty name derives a timestamped one.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if logFile == "" {
		logFile = "playtest_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "teeing run output", logger.String("logFile", logFile))
	return nil
}
