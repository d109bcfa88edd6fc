package log

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
)

type MultiWriter struct {
	writers []io.Writer
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		_, e := w.Write(p)
		if e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

func (m *MultiWriter) Len() int {
	return len(m.writers)
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}

type ConsoleAppenderOpt struct {
	Target string `mapstructure:"target"` // stdout | stderr
}

func (m *MultiWriter) AddConsoleAppender(options ConsoleAppenderOpt) (*MultiWriter, error) {
	switch options.Target {
	case "", "stderr":
		return m.Add(os.Stderr), nil
	case "stdout":
		return m.Add(os.Stdout), nil
	default:
		return m, fmt.Errorf("unknown console target: %s", options.Target)
	}
}

// AddAppender decodes cfg.Options for cfg.Type and attaches the writer.
func (m *MultiWriter) AddAppender(cfg AppenderConfig) (*MultiWriter, error) {
	switch cfg.Type {
	case "console":
		var opt ConsoleAppenderOpt
		if err := decodeOptions(cfg.Options, &opt); err != nil {
			return m, fmt.Errorf("console appender: %w", err)
		}
		return m.AddConsoleAppender(opt)
	case "file":
		var opt FileAppenderOpt
		if err := decodeOptions(cfg.Options, &opt); err != nil {
			return m, fmt.Errorf("file appender: %w", err)
		}
		return m.AddFileAppender(opt)
	default:
		return m, fmt.Errorf("unsupported appender type: %s", cfg.Type)
	}
}

func decodeOptions(options map[string]interface{}, out interface{}) error {
	if len(options) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}
