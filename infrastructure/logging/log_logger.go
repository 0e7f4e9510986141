package logging

import (
	"fmt"
	"log"

	"github.com/charisbit/net-rewire/application/logging"
)

type LogLogger struct {
	prefix string
}

func NewLogLogger() logging.Logger {
	return &LogLogger{}
}

// NewPrefixedLogger tags every line, e.g. with a session id.
func NewPrefixedLogger(prefix string) logging.Logger {
	return &LogLogger{prefix: prefix}
}

func (l LogLogger) Printf(format string, v ...any) {
	if l.prefix == "" {
		log.Printf(format, v...)
		return
	}
	log.Printf("%s %s", l.prefix, fmt.Sprintf(format, v...))
}
