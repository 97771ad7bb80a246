package store

import (
	"time"

	"github.com/kirsrus/curvetracer/model"
)

// LogStore репозиторий работы с файлами логов регламентов
//go:generate mockery --dir . --name LogStore --output ./mocks
type LogStore interface {
	// Читает файл лога и агрегирует его содержимое в набор регламентов.
	// Файл без корректного заголовка отбрасывается целиком
	Read(path string) ([]*model.Regime, error)

	// Сохраняет завершённый регламент в новый файл лога и возвращает путь
	// к созданному файлу
	Write(regime model.Regime) (string, error)
}

// DbStore репозиторий общения с БД архива регламентов
//go:generate mockery --dir . --name DbStore --output ./mocks
type DbStore interface {
	// Проверяет, что ошибка err обозначает, что записи не найдены
	IsNotFound(err error) bool

	// Сохраняет завершённый регламент в архив вместе с именем файла лога.
	// Возвращает идентификатор сеанса, присвоенный записи
	SetRegime(regime model.Regime, logFile string) (string, error)

	// Список сохранённых регламентов за days дней
	Regimes(days uint) ([]RegimeLog, error)

	// Точки замеров регламента по идентификатору записи в БД. Отсутствие
	// записи проверяется через IsNotFound
	RegimeData(id int) ([]model.DataPacket, error)

	// Очищает записи в БД старше days дней
	Clean(days int) error
}

// RegimeLog описывает запись регламента в архиве
type RegimeLog struct {
	// Идентификатор записи в БД
	ID                int
	CreatedAt         *time.Time
	SessionID         string
	RegimeID          uint
	VoltageStart      float64
	VoltageEnd        float64
	VoltageResolution float64
	// Количество сохранённых пакетов данных
	Samples int
	LogFile string
}
