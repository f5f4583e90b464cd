package glbimport

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "[glbimport] ", log.LstdFlags)

// SetLogger replaces the package logger. Passing nil restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(os.Stderr, "[glbimport] ", log.LstdFlags)
	}
	logger = l
}

func warnf(format string, args ...interface{}) {
	logger.Printf("warn: "+format, args...)
}

func errorf(format string, args ...interface{}) {
	logger.Printf("error: "+format, args...)
}
