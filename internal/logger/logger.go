package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus.Entry so fields can be carried through a context.
type Logger struct {
	*logrus.Entry
	closer io.Closer
}

// Config holds logger configuration.
type Config struct {
	Level       string    // debug, info, warn, error
	Format      string    // json, text
	File        string    // optional rotated log file, written next to stdout
	Output      io.Writer // overrides stdout/File when set (tests)
	ServiceName string
}

// New builds a logger tagged with the service name.
func New(cfg Config) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportCaller(true)

	const ts = "2006-01-02T15:04:05.000Z07:00"
	if strings.ToLower(cfg.Format) == "text" {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  ts,
			CallerPrettyfier: callerPrettyfier,
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: ts,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: callerPrettyfier,
		})
	}

	l := &Logger{}
	switch {
	case cfg.Output != nil:
		log.SetOutput(cfg.Output)
	case cfg.File != "":
		fw := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		l.closer = fw
		log.SetOutput(io.MultiWriter(os.Stdout, fw))
	default:
		log.SetOutput(os.Stdout)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "codeguard"
	}
	l.Entry = log.WithField(FieldService, name)
	return l
}

// Sync closes the rotated log file, if any.
func (l *Logger) Sync() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(logrus.Fields(fields)), closer: l.closer}
}

func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value), closer: l.closer}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithError(err), closer: l.closer}
}

// callerPrettyfier keeps only pkg.Func and file:line
func callerPrettyfier(frame *runtime.Frame) (function string, file string) {
	fn := frame.Function
	if idx := strings.LastIndex(fn, "/"); idx != -1 {
		fn = fn[idx+1:]
	}
	return fn, filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}
