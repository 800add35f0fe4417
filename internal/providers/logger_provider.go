package providers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"guildstore/internal/structures"
)

type TypeEnum int

const (
	TypeApp = iota
	TypeGet
	TypePost
)

var logFiles = map[TypeEnum]string{
	TypeApp:  "app.log",
	TypeGet:  "get.log",
	TypePost: "post.log",
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

// GetLogTypeByRequestType maps an HTTP method onto the log stream it belongs to.
// Anything that is not a POST is logged with reads.
func GetLogTypeByRequestType(method string) TypeEnum {
	if method == http.MethodPost {
		return TypePost
	}
	return TypeGet
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	lp := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger, len(logFiles))}
	for t, name := range logFiles {
		path := filepath.Join(conf.Logger.Dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			lp.Close()
			return nil, fmt.Errorf("unable to open log file %s: %w", path, err)
		}
		lp.files = append(lp.files, file)

		var out io.Writer = file
		if conf.Debug {
			out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
		}
		lp.loggers[t] = zerolog.New(out).Level(level).With().Timestamp().Str("log", name).Logger()
	}
	return lp, nil
}

func (lp *LogProvider) get(t TypeEnum) *zerolog.Logger {
	l, ok := lp.loggers[t]
	if !ok {
		l = lp.loggers[TypeApp]
	}
	return &l
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Error().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Warn().Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Info().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Sync()
		_ = f.Close()
	}
	lp.files = nil
}
