package tracer

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/kirsrus/curvetracer/model"
	"github.com/kirsrus/curvetracer/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	// Скорость порта платы по умолчанию
	DefaultBaud = 28800
	// Таймаут одного чтения из порта
	DefaultReadTimeout = 100 * time.Millisecond
	// Размер буфера одного чтения
	readBufferSize = 4096
)

// Serial имплементация подключения к плате через последовательный порт.
// Инициируется через NewSerial. Держит порт открытым, пока существует класс
type Serial struct {
	ctx  context.Context
	log  *logrus.Entry
	port serial.Port

	portName    string
	baud        uint
	readTimeout time.Duration
}

// ConfigSerial конфигурация Serial
type ConfigSerial struct {
	Log *logrus.Logger
	// Имя порта. Пустое значение — взять первый доступный порт
	Port        string
	Baud        uint
	ReadTimeout time.Duration
}

// NewSerial конструктор структуры Serial
func NewSerial(ctx context.Context, config *ConfigSerial) (service.TracerSvc, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}

	res := &Serial{
		ctx:         ctx,
		baud:        DefaultBaud,
		readTimeout: DefaultReadTimeout,
		portName:    config.Port,
	}
	if config.Baud != 0 {
		res.baud = config.Baud
	}
	if config.ReadTimeout != 0 {
		res.readTimeout = config.ReadTimeout
	}

	// Если порт не указан, берём первый доступный
	if res.portName == "" {
		ports, err := serial.GetPortsList()
		if err != nil {
			return nil, errors.Annotate(err, "ошибка перечисления портов")
		}
		if len(ports) == 0 {
			return nil, errors.New("не найдено ни одного последовательного порта")
		}
		res.portName = ports[0]
	}

	res.log = config.Log.WithFields(map[string]interface{}{
		"module": "tracer",
		"scope":  "service",
		"port":   res.portName,
	})

	port, err := serial.Open(res.portName, &serial.Mode{BaudRate: int(res.baud)})
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка открытия порта %s", res.portName)
	}
	if err := port.SetReadTimeout(res.readTimeout); err != nil {
		_ = port.Close()
		return nil, errors.Annotate(err, "ошибка установки таймаута чтения")
	}
	res.port = port
	res.log.Infof("порт открыт на скорости %d", res.baud)

	return res, nil
}

// Send отправляет плате пакет байт целиком
func (m *Serial) Send(data []byte) error {
	n, err := m.port.Write(data)
	if err != nil {
		return errors.Annotatef(model.ErrTransport, "ошибка записи в порт: %v", err)
	}
	if n != len(data) {
		return errors.Annotatef(model.ErrTransport, "записано %d байт из %d", n, len(data))
	}
	m.log.Debugf("отправлено %d байт: %q", n, string(data))
	return nil
}

// Receive возвращает очередной кусок потока с платы. Истечение таймаута
// чтения — не ошибка: возвращается пустой результат
func (m *Serial) Receive() ([]byte, error) {
	select {
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	default:
	}

	buf := make([]byte, readBufferSize)
	n, err := m.port.Read(buf)
	if err != nil {
		return nil, errors.Annotatef(model.ErrTransport, "ошибка чтения из порта: %v", err)
	}
	return buf[:n], nil
}

// Close закрывает порт
func (m *Serial) Close() error {
	return m.port.Close()
}
