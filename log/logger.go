package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// FormatType is the logging output format.
type FormatType int

const (
	FormatTypeText FormatType = iota
	FormatTypeJSON
)

func (f FormatType) String() string {
	switch f {
	case FormatTypeJSON:
		return "json"
	default:
		return "text"
	}
}

// UnmarshalYAML parses a FormatType from its textual representation.
func (f *FormatType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	switch strings.ToLower(s) {
	case "", "text":
		*f = FormatTypeText
	case "json":
		*f = FormatTypeJSON
	default:
		return fmt.Errorf("unknown log format '%s'", s)
	}

	return nil
}

// Config configures the package-level logger.
type Config struct {
	Level     string     `yaml:"level" default:"info"`
	Format    FormatType `yaml:"format" default:"text"`
	Timestamp bool       `yaml:"timestamp" default:"true"`
	Hostname  bool       `yaml:"hostname" default:"false"`
}

// nolint:gochecknoglobals
var logger *logrus.Logger

// nolint:gochecknoinits
func init() {
	logger = logrus.New()

	ConfigureLogger(Config{
		Level:     "info",
		Format:    FormatTypeText,
		Timestamp: true,
	})
}

// Log returns the global logger instance.
func Log() *logrus.Logger {
	return logger
}

// PrefixedLog returns the global logger annotated with a component prefix.
func PrefixedLog(prefix string) *logrus.Entry {
	return logger.WithField("prefix", prefix)
}

// WithQueryID returns a logger entry carrying a correlation id for one
// resolve() call, so the NS-loop's repeated attempts can be told apart.
func WithQueryID(prefix, queryID string) *logrus.Entry {
	return logger.WithField("prefix", prefix).WithField("query_id", queryID)
}

// ConfigureLogger applies cfg to the global logger.
func ConfigureLogger(cfg Config) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.Fatalf("invalid log level %s: %v", cfg.Level, err)
	}

	logger.SetLevel(level)

	var baseFormatter logrus.Formatter

	switch cfg.Format {
	case FormatTypeJSON:
		baseFormatter = &logrus.JSONFormatter{}
	default:
		textFormatter := &prefixed.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			ForceFormatting:  true,
			QuoteEmptyFields: true,
			DisableTimestamp: !cfg.Timestamp,
		}

		textFormatter.SetColorScheme(&prefixed.ColorScheme{
			PrefixStyle:    "blue+b",
			TimestampStyle: "white+h",
		})

		baseFormatter = textFormatter
	}

	if hn, err := getHostname(); err == nil && cfg.Hostname {
		logger.SetFormatter(hostnameFormatter{hostname: hn, formatter: baseFormatter})
	} else {
		logger.SetFormatter(baseFormatter)
	}
}

// Silence discards all logger output; used by tests.
func Silence() {
	logger.Out = io.Discard
}

type hostnameFormatter struct {
	hostname  string
	formatter logrus.Formatter
}

func (l hostnameFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	newentry := *entry
	newentry.Data["hostname"] = l.hostname

	return l.formatter.Format(&newentry)
}

func getHostname() (string, error) {
	if hn, err := os.Hostname(); err == nil {
		return hn, nil
	}

	return "", errors.New("hostname couldn't be determined")
}
