package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с настройками logrus по умолчанию.
var Log = logrus.New()

// Init инициализирует глобальный логгер из окружения (LOG_LEVEL, LOG_FORMAT).
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init() {
	InitWith(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// InitWith настраивает логгер явно (значения из конфига).
// Пустой level означает "info", пустой format - "text".
func InitWith(level, format string) {
	Log = logrus.New()

	// 1. Уровень. Для отладки можно выставить "debug".
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)

	// 2. Форматтер.
	// "json" - для продакшена и сбора логов.
	// "text" - для удобной разработки.
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	// 3. Пишем в стандартный вывод.
	Log.SetOutput(os.Stdout)
}

// SetOutput перенаправляет вывод (тесты, файлы реплеев).
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// Component - логгер с полем component, как принято во всех подсистемах.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
