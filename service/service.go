package service

// TracerSvc транспорт обмена с платой трассировщика кривых. Держит открытое
// подключение к плате, пока существует класс
//go:generate mockery --dir . --name TracerSvc --output ./mocks
type TracerSvc interface {
	// Отправляет плате пакет байт целиком
	Send([]byte) error
	// Возвращает очередной кусок потока с платы. Пустой результат без
	// ошибки — данных сейчас нет, вызывающий решает, повторять ли опрос
	Receive() ([]byte, error)
	// Закрывает подключение к плате
	Close() error
}

// OperatorSvc внешний ввод оператора
//go:generate mockery --dir . --name OperatorSvc --output ./mocks
type OperatorSvc interface {
	// Задаёт оператору вопрос и ожидает подтверждения готовности
	Confirm(prompt string) (bool, error)
}

// WebSvc сервис общения с WEB интерфейсом графиков
//go:generate mockery --dir . --name WebSvc --output ./mocks
type WebSvc interface {
	// Хэндлер списка собранных регламентов
	Regimes(string)
	// Хэндлер точек замеров одного регламента
	RegimeData(string)
	// Запуск WEB-сервера
	Serve() error
}
