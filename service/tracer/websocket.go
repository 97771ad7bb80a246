package tracer

import (
	"context"
	"io/ioutil"
	"strings"

	"github.com/kirsrus/curvetracer/model"
	"github.com/kirsrus/curvetracer/pkg/validator"
	"github.com/kirsrus/curvetracer/service"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Величина очереди принятых с моста кусков потока
	MaximumReadChan = 20
)

// Websocket имплементация подключения к плате через WebSocket мост (плата,
// висящая на сетевом преобразователе). Инициируется через NewWebsocket.
// Держит соединение, пока существует класс
type Websocket struct {
	ctx  context.Context
	log  *logrus.Entry
	conn *websocket.Conn

	read chan []byte
	done chan error
}

// ConfigWebsocket конфигурация Websocket
type ConfigWebsocket struct {
	Log *logrus.Logger
	// Адрес моста, полный формат "ws://192.168.10.15:8000/feed"
	Address string `conform:"trim" validate:"required,websocket"`
}

// NewWebsocket конструктор структуры Websocket
func NewWebsocket(ctx context.Context, config *ConfigWebsocket) (service.TracerSvc, error) {
	valid := validator.Get()
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if err := valid.Validate(config); err != nil {
		return nil, errors.Annotate(err, "некорректный адрес моста")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}

	res := &Websocket{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module":  "tracer",
			"scope":   "service",
			"address": config.Address,
		}),
		read: make(chan []byte, MaximumReadChan),
		done: make(chan error, 1),
	}

	conn, _, err := websocket.DefaultDialer.Dial(config.Address, nil)
	if err != nil {
		return nil, errors.Annotatef(model.ErrTransport, "ошибка подключения к %s: %v", config.Address, err)
	}
	res.conn = conn
	res.log.Info("подключение к мосту установлено")

	// Бесконечно читаем из канала WebSocket
	go res.loop()

	return res, nil
}

// Бесконечное чтение из WebSocket в очередь read
func (m *Websocket) loop() {
	for {
		_, message, err := m.conn.ReadMessage()
		if err != nil {
			if !strings.Contains(err.Error(), "use of closed network connection") {
				m.log.Warnf("ошибка чтения из WebSocket: %v", err)
				m.done <- errors.Trace(err)
			} else {
				m.done <- nil
			}
			return
		}
		select {
		case <-m.ctx.Done():
			return
		case m.read <- message:
		default:
			m.log.Warnf("очередь read переполнена, кусок %d байт отброшен", len(message))
		}
	}
}

// Send отправляет плате пакет байт целиком
func (m *Websocket) Send(data []byte) error {
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Annotatef(model.ErrTransport, "ошибка записи в WebSocket: %v", err)
	}
	m.log.Debugf("отправлено %d байт: %q", len(data), string(data))
	return nil
}

// Receive возвращает очередной кусок потока с платы. Отсутствие данных в
// очереди — не ошибка: возвращается пустой результат
func (m *Websocket) Receive() ([]byte, error) {
	select {
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	case err := <-m.done:
		if err == nil {
			return nil, errors.Annotatef(model.ErrTransport, "соединение закрыто")
		}
		return nil, errors.Annotatef(model.ErrTransport, "соединение потеряно: %v", err)
	case message := <-m.read:
		return message, nil
	default:
		return nil, nil
	}
}

// Close закрывает соединение с мостом
func (m *Websocket) Close() error {
	return m.conn.Close()
}
