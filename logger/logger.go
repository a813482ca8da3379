package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	global     *logrus.Logger
	globalOnce sync.Once
)

// GetProjectLogger returns the shared logger used across all commands.
func GetProjectLogger() *logrus.Entry {
	globalOnce.Do(func() {
		global = logrus.New()
		global.SetOutput(os.Stderr)
		global.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		global.SetLevel(logrus.InfoLevel)
	})
	return logrus.NewEntry(global)
}

// SetLevel changes the level of the shared logger.
func SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	GetProjectLogger().Logger.SetLevel(parsed)
	return nil
}
