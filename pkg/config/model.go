package config

import "time"

type (

	// Config конфигурация программы
	Config struct {

		// Описание логирования
		Log struct {

			// Путь к файлу лога
			Path string

			// Имя файла логирования
			Filename string `required:"true" default:"curvetracer.log"`

			// Уровень логирования
			Level string `required:"true" default:"warning"`

			// Выводить лог только на консоль
			Console bool `default:"false"`
		}

		// Описываем подключение к базе данных архива регламентов
		Db struct {

			// Тип базы данных (sqlite, mysql и т.п.)
			Type string `default:"sqlite"`

			// Имя файла базы данных
			Filename string `required:"true" default:"curvetracer.sqlite"`

			// Количество дней хранения архива регламентов
			ArchiveDays int `default:"365"`

			// Период очистки архива до ArchiveDays в минутах
			CleanArchiveInterval int `default:"60"`
		}

		// Описание места хранения файлов логов регламентов
		Logfile struct {

			// Путь к корневой директории с файлами логов
			Path string `default:"./logs"`
		}

		// Описание подключения к плате трассировщика
		Tracer struct {

			// Транспорт подключения: serial или websocket
			Transport string `required:"true" default:"serial"`

			// Имя последовательного порта. Пустое значение — взять первый доступный
			Port string

			// Скорость последовательного порта
			Baud uint `default:"28800"`

			// Адрес WebSocket моста, полный формат "ws://192.168.10.15:8000/feed"
			Address string

			// Таймаут одного чтения из порта (в миллисекундах)
			ReadTimeout time.Duration `default:"100"`

			// Пауза между пустыми опросами порта (в миллисекундах)
			PollInterval time.Duration `default:"50"`
		}

		// Обслуживание WEB-сервера с данными кривых
		Http struct {

			// Порт WEB-сервера
			Port uint `required:"true" default:"8080"`

			// За сколько дней показывать регламенты в API
			ArchiveDays uint `default:"30"`
		}
	}
)
