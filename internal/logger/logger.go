package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	log.SetLevel(logrus.InfoLevel)
}

// SetLevel change le niveau de log (debug, info, warn, error)
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Warning("unknown log level %q, keeping %s", level, log.GetLevel())
		return
	}
	log.SetLevel(lvl)
}

// SetOutput redirige les logs (utilisé par les tests)
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Writer renvoie un writer qui log chaque ligne au niveau error (panics récupérées)
func Writer() io.Writer {
	return log.WriterLevel(logrus.ErrorLevel)
}

// WithFields retourne une entrée structurée pour les logs avec contexte
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// Info log une information générale (bleu)
func Info(message string, args ...interface{}) {
	log.Info(color.BlueString(message, args...))
}

// Success log un succès (vert)
func Success(message string, args ...interface{}) {
	log.Info(color.GreenString("✓ "+message, args...))
}

// Warning log un avertissement (jaune)
func Warning(message string, args ...interface{}) {
	log.Warn(color.YellowString("⚠ "+message, args...))
}

// Error log une erreur (rouge)
func Error(message string, args ...interface{}) {
	log.Error(color.RedString("✗ "+message, args...))
}

// Debug log un message de debug, visible seulement avec LOG_LEVEL=debug
func Debug(message string, args ...interface{}) {
	log.Debug(fmt.Sprintf(message, args...))
}

// Request log une requête HTTP avec durée
func Request(requestID, method, path string, statusCode int, duration time.Duration) {
	var paint func(format string, a ...interface{}) string
	switch {
	case statusCode >= 500:
		paint = color.RedString
	case statusCode >= 400:
		paint = color.YellowString
	case statusCode >= 300:
		paint = color.CyanString
	default:
		paint = color.GreenString
	}

	log.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     statusCode,
		"duration":   formatDuration(duration),
	}).Info(fmt.Sprintf("%s %s %s",
		color.MagentaString("%-6s", method),
		path,
		paint("[%d]", statusCode),
	))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
