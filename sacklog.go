package sack

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	sacklog "github.com/rpmsack/sack/log"
)

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// FromWriter builds a leveled, structured *zap.Logger that also writes
// through this repository's own minimal log.Logger, so a caller that only
// has an io.Writer (a log file opened from SackOptions.LogFile, typically)
// gets each console-encoded entry written through log.Logger's Logln, with
// zap's level filtering and field support layered on top.
func FromWriter(w io.Writer, level zapcore.Level) *zap.Logger {
	legacy := sacklog.New(w)
	sink := zapcore.AddSync(writerFunc(func(p []byte) (int, error) {
		legacy.Logln(string(p))
		return len(p), nil
	}))
	encoder := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// logger opens the sack's configured log file for appending, creating it if
// necessary, and returns a logger over it with the file's close func; when
// logFile is empty it returns a no-op logger and a no-op close func.
func (s *Sack) logger() (*zap.Logger, func() error, error) {
	if s.logFile == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}
	f, err := openAppend(s.logFile)
	if err != nil {
		return nil, nil, newErr("Sack.logger", KindIO, err)
	}
	return FromWriter(f, zapcore.InfoLevel), f.Close, nil
}
