package config

import (
	"log"
	"os"
	"sync"

	"github.com/jinzhu/configor"
	"github.com/juju/errors"
)

var (
	config Config
	once   sync.Once
)

const (
	FileName = "config.yaml"

	// Префикс переменных окружения, переопределяющих файл, например FACTORYMON_HTTP_PORT
	EnvPrefix = "FACTORYMON"
)

// Get единажды читает и возвращает конфигурацию
func Get() *Config {
	return GetWithPath(FileName)
}

// GetWithPath единожды читает и возвращает конфигурацию
func GetWithPath(filepath string) *Config {
	once.Do(func() {
		cfg, err := Load(filepath)
		if err != nil {
			log.Fatalf("ошибка чтения файла конфигурации %s: %s", filepath, err)
		}
		config = *cfg
	})
	return &config
}

// Load читает конфигурацию из файла filepath. Если файла нет, используются значения по умолчанию
func Load(filepath string) (*Config, error) {
	var cfg Config
	files := make([]string, 0, 1)
	if _, err := os.Stat(filepath); err != nil {
		log.Printf("файл конфигурации недоступен, используются значения по умолчанию: %s", err)
	} else {
		files = append(files, filepath)
	}
	err := configor.New(&configor.Config{ENVPrefix: EnvPrefix}).Load(&cfg, files...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &cfg, nil
}
