package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const projectName = "osubeatmap"

var (
	once sync.Once
	base *logrus.Logger
)

func root() *logrus.Logger {
	once.Do(func() {
		base = logrus.New()
		base.Out = os.Stderr
		base.Formatter = &logrus.TextFormatter{FullTimestamp: true}
		base.Level = logrus.InfoLevel
	})
	return base
}

// GetProjectLogger returns the logger shared by every package of the project.
func GetProjectLogger() *logrus.Entry {
	return root().WithField("name", projectName)
}

// SetLevel changes the level of the project logger. Unknown names leave it
// unchanged and return the parse error.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	root().SetLevel(lvl)
	return nil
}
