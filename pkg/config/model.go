package config

type (

	// Config конфигурация программы
	Config struct {

		// Описание логирования
		Log struct {

			// Путь к файлу лога
			Path string

			// Имя файал логирования
			Filename string `required:"true" default:"factorymon.log"`

			// Уровень логирования
			Level string `required:"true" default:"info"`

			// Выводить лог только на консоль
			Console bool `default:"false"`
		}

		// Обслуживание WEB-сервера
		Http struct {

			// Адрес, на котором слушает WEB-сервер (пусто - все интерфейсы)
			Host string

			// Порт WEB-сервера
			Port uint `required:"true" default:"8080"`

			// Время на корректное завершение запросов при остановке (в секундах)
			ShutdownTimeout uint `default:"5"`
		}

		// Хранилище показаний
		Store struct {

			// Тип хранилища: memory или sqlite
			Type string `default:"memory"`

			// Строка подключения к sqlite. По умолчанию БД в памяти процесса
			Dsn string `default:"file::memory:?cache=shared"`

			// Время жизни закэшированных выборок (в секундах). 0 - кэш отключён
			CacheExpiration uint
		}

		// Поток новых показаний по WebSocket
		Feed struct {

			// Размер буфера канала каждого подписчика
			Capacity uint `default:"10"`

			// Интервал ping клиенту (в секундах)
			PingInterval uint `default:"10"`
		}

		// Приём показаний через MQTT-брокер
		Mqtt struct {

			// Включить приём
			Enabled bool `default:"false"`

			// Адрес брокера, например tcp://127.0.0.1:1883
			Broker string `default:"tcp://127.0.0.1:1883"`

			// Фильтр топиков с показаниями
			Topic string `default:"factory/+/parameters"`

			// Идентификатор клиента (пусто - генерируется)
			ClientID string

			Username string
			Password string

			// Уровень QoS подписки
			QoS uint `default:"1"`

			// Пауза перед переподключением (в секундах)
			ReconnectTimeout uint `default:"5"`
		}
	}
)
