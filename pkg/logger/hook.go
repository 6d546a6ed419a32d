package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Максимальная глубина поиска вызывающего кода в стеке
const maxCallerDepth = 15

// LogrusContextHook добавляет в запись лога поле source с файлом и строкой вызова
type LogrusContextHook struct{}

// Levels хук срабатывает на всех уровнях
func (hook LogrusContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire добавляет source в запись
func (hook LogrusContextHook) Fire(entry *logrus.Entry) error {
	for i := 1; i < maxCallerDepth; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "sirupsen/logrus") || strings.HasSuffix(file, "pkg/logger/hook.go") {
			continue
		}
		entry.Data["source"] = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		break
	}
	return nil
}
