package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// UnmatchedEntry is one prediction file that had no ground truth match.
type UnmatchedEntry struct {
	Pred string `json:"pred"`
	Key  string `json:"key"`
}

// UnmatchedLogFormatter strips the logrus envelope, one json object per line.
type UnmatchedLogFormatter struct{}

func (f *UnmatchedLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var js, err = json.Marshal(entry.Data)
	if err != nil {
		return nil, fmt.Errorf("UnmatchedLogger could not marshal json data, err: %w", err)
	}
	return append(js, '\n'), nil
}

// UnmatchedLogger writes one json line per unmatched prediction so the gaps
// in the paired metrics can be audited after the run.
type UnmatchedLogger struct {
	logger *logrus.Logger
	file   *os.File
}

// NewUnmatchedLogger truncates and opens filename for writing.
func NewUnmatchedLogger(filename string) (*UnmatchedLogger, error) {
	var file, err = os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("UnmatchedLogger could not open file: %s, err: %w", filename, err)
	}

	var unmatchedLogger = logrus.New()
	unmatchedLogger.SetFormatter(new(UnmatchedLogFormatter))
	unmatchedLogger.SetOutput(file)

	return &UnmatchedLogger{logger: unmatchedLogger, file: file}, nil
}

// LogUnmatched records one prediction with no ground truth counterpart.
func (ul *UnmatchedLogger) LogUnmatched(pred, key string) {
	ul.logger.WithFields(logrus.Fields{
		"pred": pred,
		"key":  key,
	}).Info("unmatched")
}

// Close closes the underlying file.
func (ul *UnmatchedLogger) Close() error {
	if err := ul.file.Close(); err != nil {
		return fmt.Errorf("UnmatchedLogger could not close file: %s, err: %w", ul.file.Name(), err)
	}
	return nil
}

// ReadUnmatchedLogFile parses a file written by UnmatchedLogger.
func ReadUnmatchedLogFile(filename string) ([]UnmatchedEntry, error) {
	var file, err = os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("UnmatchedLogger could not open file: %s, err: %w", filename, err)
	}

	var entries []UnmatchedEntry
	var scanner = bufio.NewScanner(file)
	for scanner.Scan() {
		var entry UnmatchedEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("UnmatchedLogger could not parse line: %s, err: %w", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("UnmatchedLogger could not read file: %s, err: %w", filename, err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("UnmatchedLogger could not close file: %s, err: %w", filename, err)
	}

	return entries, nil
}
