package store

import (
	"github.com/kirsrus/factorymon/model"
)

// ReadingStore хранилище показаний. Показания только добавляются, порядок выдачи
// совпадает с порядком добавления. Append и List должны быть безопасны для
// одновременного вызова
//go:generate mockery --dir . --name ReadingStore --output ./mocks
type ReadingStore interface {
	// Сохраняет показание (статус уже вычислен) в конец последовательности и возвращает
	// сохранённую копию
	Append(reading model.Reading) (*model.Reading, error)

	// Возвращает снимок всех показаний, подходящих под фильтр, в порядке добавления.
	// Отсутствие подходящих показаний не является ошибкой
	List(filter model.Filter) ([]model.Reading, error)

	// Общее количество сохранённых показаний
	Count() (int, error)
}

// Типы хранилищ для конфигурации
const (
	TypeMemory = "memory"
	TypeSqlite = "sqlite"
)
