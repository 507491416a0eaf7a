// Package logger provides a middleware for structured request logging.
//
// This middleware captures request details such as HTTP method, path,
// status, and response latency. It supports three output formats:
//   - "text": human-readable, ANSI-colored log lines with a configurable
//     pattern.
//   - "json": structured JSON logs, ideal for log aggregation systems.
//   - "slog": Go's structured logging library (log/slog), colorized.
//
// Extra fields can be attached per request via req.SetExtension under
// ContextDataKey; New reads them back and merges them into the logged
// fields, the same role the teacher's global per-request context map
// plays, without the extra synchronization.
package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/weaveframe/weave"
)

// ContextDataKey is the Request extension key a handler or earlier
// middleware can set (via req.SetExtension) to attach extra fields a
// downstream logger.New call should include.
type contextDataKeyType struct{}

var ContextDataKey = contextDataKeyType{}

// ANSI color codes used for log output styling.
const (
	ColorReset   = "\033[0m"
	ColorTime    = "\033[36m"
	ColorLevel   = "\033[32m"
	ColorMethod  = "\033[34m"
	ColorPath    = "\033[35m"
	ColorStatus  = "\033[33m"
	ColorLatency = "\033[31m"
)

// Config defines the configuration for the logging middleware.
type Config struct {
	Format       string            // "text", "slog", or "json"
	Pattern      string            // pattern for "text"/"slog" formats
	Level        string            // "DEBUG", "INFO", "WARN", "ERROR"
	CustomFields map[string]string // additional static fields
}

// ConfigDefault provides the default logging configuration.
var ConfigDefault = Config{
	Format:  "text",
	Pattern: "[${time}] ${level} ${method} ${path} ${status} - ${latency}\n",
}

// New builds a weave.Middleware that logs every request's method, path,
// status, and latency, in the configured format.
//
//	s.Use(logger.New(logger.Config{
//	    Format:  "text",
//	    Pattern: "[${time}] ${level} ${method} ${path} ${status} - ${latency}\n",
//	}))
func New(config ...Config) weave.Middleware {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Pattern == "" {
		cfg.Pattern = ConfigDefault.Pattern
	}
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}

	var handlerOpts = &slog.HandlerOptions{Level: slog.LevelDebug}
	var logger *slog.Logger
	switch cfg.Format {
	case "json":
		logger = slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	default:
		logger = slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if req.Method == "OPTIONS" {
				return next(req)
			}

			start := time.Now()
			resp, err := next(req)
			elapsed := time.Since(start)

			status := 0
			if resp != nil {
				status = resp.Status()
			}

			logData := map[string]any{
				"level":   strings.ToUpper(cfg.Level),
				"time":    time.Now().Format(time.RFC3339),
				"ip":      req.Peer.Addr,
				"method":  req.Method,
				"path":    req.Path(),
				"status":  status,
				"latency": elapsed.String(),
				"query":   req.URI.RawQuery,
			}
			if dynamic, ok := req.Extension(ContextDataKey); ok {
				if fields, ok := dynamic.(map[string]any); ok {
					for k, v := range fields {
						logData[k] = v
					}
				}
			}
			for k, v := range cfg.CustomFields {
				logData[k] = v
			}

			writeLog(logger, cfg, logData)
			return resp, err
		}
	}
}

func writeLog(logger *slog.Logger, cfg Config, logData map[string]any) {
	switch cfg.Format {
	case "json":
		b, _ := json.Marshal(logData)
		fmt.Println(string(b))

	case "slog":
		pattern := applyColors(cfg.Pattern, logData)
		switch strings.ToUpper(cfg.Level) {
		case "DEBUG":
			logger.Debug(pattern)
		case "WARN":
			logger.Warn(pattern)
		case "ERROR":
			logger.Error(pattern)
		default:
			logger.Info(pattern)
		}

	default:
		fmt.Print(applyColors(cfg.Pattern, logData))
	}
}

func applyColors(pattern string, logData map[string]any) string {
	colored := map[string]string{
		"time":    ColorTime,
		"level":   ColorLevel,
		"method":  ColorMethod,
		"path":    ColorPath,
		"status":  ColorStatus,
		"latency": ColorLatency,
	}
	for k, v := range logData {
		placeholder := fmt.Sprintf("${%s}", k)
		valueStr := fmt.Sprintf("%v", v)
		if color, ok := colored[k]; ok {
			valueStr = color + valueStr + ColorReset
		}
		pattern = strings.ReplaceAll(pattern, placeholder, valueStr)
	}
	return pattern
}
