package logger

import (
	"github.com/ThreeDotsLabs/watermill"
)

const watermillModule = "WATERMILL"

// watermillAdapter routes the event bus's own logs through ILogger, so they
// land in the rotated file with everything else. Trace is folded into Debug.
type watermillAdapter struct {
	logger ILogger
	fields watermill.LogFields
}

func NewWatermillAdapter(log ILogger) watermill.LoggerAdapter {
	return &watermillAdapter{logger: log}
}

func (a *watermillAdapter) details(fields watermill.LogFields) map[string]interface{} {
	merged := a.fields.Add(fields)
	return map[string]interface{}(merged)
}

func (a *watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	details := a.details(fields)
	if err != nil {
		details["error"] = err
	}
	a.logger.Error(watermillModule, msg, details)
}

func (a *watermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(watermillModule, msg, a.details(fields))
}

func (a *watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(watermillModule, msg, a.details(fields))
}

func (a *watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(watermillModule, msg, a.details(fields))
}

func (a *watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillAdapter{logger: a.logger, fields: a.fields.Add(fields)}
}
