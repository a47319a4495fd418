package pipeline

import (
	"errors"
	"fmt"
)

// ErrUndeclaredDependency is returned when a template reads the output of a stage it does not depend on
var ErrUndeclaredDependency = errors.New("output of undeclared dependency")

// ConfigError reports an invalid pipeline definition, returned by New
type ConfigError struct {
	Stage string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("pipeline config: %v", e.Err)
	}
	return fmt.Sprintf("pipeline config: stage %s: %v", e.Stage, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// StageError reports a failed stage call
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a stage whose answer held no HTML document, the call itself succeeded
type ExtractionError struct {
	Stage string
	// Raw is the model answer
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("stage %s: extraction failed: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// FailedStage returns the name of the stage a run error points to
func FailedStage(err error) string {
	var (
		stageErr      *StageError
		extractionErr *ExtractionError
	)
	switch {
	case errors.As(err, &extractionErr):
		return extractionErr.Stage
	case errors.As(err, &stageErr):
		return stageErr.Stage
	}
	return ""
}
