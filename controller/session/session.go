package session

import (
	"context"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/kirsrus/curvetracer/model"
	"github.com/kirsrus/curvetracer/pkg/stream"
	"github.com/kirsrus/curvetracer/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Пауза между пустыми опросами транспорта
	DefaultPollInterval = 50 * time.Millisecond
)

// State состояние сеанса
type State int

const (
	// StateIdle сеанс создан, команда ещё не принята
	StateIdle State = iota
	// StateAwaitingConfirmation ожидание подтверждения оператора
	StateAwaitingConfirmation
	// StateTransmitting передача команд TEST и START плате
	StateTransmitting
	// StateCollectingData сбор потока пакетов данных до маркера END
	StateCollectingData
	// StateComplete регламент собран и передан вызывающему
	StateComplete
	// StateAborted сеанс прерван (отказ оператора, отмена или ошибка транспорта)
	StateAborted
)

// String имя состояния
func (m State) String() string {
	switch m {
	case StateIdle:
		return "Idle"
	case StateAwaitingConfirmation:
		return "AwaitingConfirmation"
	case StateTransmitting:
		return "Transmitting"
	case StateCollectingData:
		return "CollectingData"
	case StateComplete:
		return "Complete"
	case StateAborted:
		return "Aborted"
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}

// Session контроллер живого сеанса одного тестового регламента: передача
// команды, подтверждение оператора, сбор и агрегация потока пакетов до
// маркера END. Сеанс одноразовый и принадлежит единственному потоку
// управления. Отмена кооперативная: контекст проверяется между опросами
// транспорта, внутреннего таймаута у сеанса нет. Инициируется через
// NewSession
type Session struct {
	ctx context.Context
	log *logrus.Entry

	tracerSvc   service.TracerSvc
	operatorSvc service.OperatorSvc

	pollInterval time.Duration
	// Необязательный приёмник прогресса (собрано групп, ожидается групп)
	progress func(done, total uint)

	state State
}

// ConfigSession конфигурация Session
type ConfigSession struct {
	Log          *logrus.Logger
	PollInterval time.Duration
	Progress     func(done, total uint)
}

// NewSession конструктор структуры Session
func NewSession(ctx context.Context, tracerSvc service.TracerSvc, operatorSvc service.OperatorSvc, config *ConfigSession) (*Session, error) {
	if config == nil {
		config = &ConfigSession{}
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if tracerSvc == nil {
		return nil, errors.New("не указана служба tracerSvc")
	}
	if operatorSvc == nil {
		return nil, errors.New("не указана служба operatorSvc")
	}

	session := Session{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "session",
			"scope":  "controller",
		}),
		tracerSvc:    tracerSvc,
		operatorSvc:  operatorSvc,
		pollInterval: DefaultPollInterval,
		progress:     config.Progress,
		state:        StateIdle,
	}
	if config.PollInterval != 0 {
		session.pollInterval = config.PollInterval
	}
	return &session, nil
}

// State текущее состояние сеанса
func (m *Session) State() State {
	return m.state
}

// Переход сеанса в состояние state
func (m *Session) setState(state State) {
	m.log.Debugf("переход %s -> %s", m.state, state)
	m.state = state
}

// Execute выполняет полный обмен тестового регламента с платой и возвращает
// собранный регламент после прихода маркера END. Некорректная команда
// отклоняется до запуска машины состояний. Отказ оператора и отмена
// контекста возвращают ошибку вида ErrAborted, ошибка обмена — ErrTransport
func (m *Session) Execute(cmd model.CommandPacket) (*model.Regime, error) {
	if m.state != StateIdle {
		return nil, errors.Errorf("сеанс уже использован (состояние %s)", m.state)
	}

	// Команда проверяется до входа в машину состояний
	if cmd.Command != model.CommandTest {
		return nil, errors.Annotatef(model.ErrInvalidCommandParameters,
			"сеанс запускается только командой TEST, передана %s", cmd.Command)
	}
	if err := cmd.Validate(); err != nil {
		return nil, errors.Trace(err)
	}

	m.setState(StateAwaitingConfirmation)
	ok, err := m.operatorSvc.Confirm(fmt.Sprintf("Готовы начать исполнение регламента %d?", cmd.ID))
	if err != nil {
		m.setState(StateAborted)
		return nil, errors.Annotatef(model.ErrAborted, "ошибка ввода оператора: %v", err)
	}
	if !ok {
		m.setState(StateAborted)
		m.log.Info("оператор отказался от исполнения регламента")
		return nil, errors.Annotatef(model.ErrAborted, "оператор отказался от исполнения")
	}

	m.setState(StateTransmitting)
	if err := m.transmit(cmd); err != nil {
		m.setState(StateAborted)
		return nil, errors.Trace(err)
	}

	m.setState(StateCollectingData)
	regime, err := m.collect(cmd)
	if err != nil {
		m.setState(StateAborted)
		return nil, errors.Trace(err)
	}

	m.setState(StateComplete)
	m.log.Infof("регламент %d собран: %d пакетов данных", cmd.ID, len(regime.Data))
	return regime, nil
}

// Передача плате команды регламента и команды начала исполнения. Записи в
// живом потоке разделяются тем же разделителем, что и ответы платы
func (m *Session) transmit(cmd model.CommandPacket) error {
	start := model.CommandPacket{ID: cmd.ID, Command: model.CommandStart}
	for _, packet := range []model.CommandPacket{cmd, start} {
		record := packet.String() + string(stream.Delimiter)
		if err := m.tracerSvc.Send([]byte(record)); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Цикл сбора потока: опрос транспорта, сборка строк, разбор и агрегация до
// прихода маркера END с идентификатором регламента
func (m *Session) collect(cmd model.CommandPacket) (*model.Regime, error) {
	asm := stream.NewAssembler()
	agg := model.NewAggregator()

	// Командный пакет известен сеансу и кладётся в агрегатор сразу: плата
	// свою команду обратно не повторяет
	agg.FoldCommand(cmd)
	expected := agg.Regime(cmd.ID).ExpectedGroups()

	var reported uint
	for {
		select {
		case <-m.ctx.Done():
			return nil, errors.Annotatef(model.ErrAborted, "сеанс отменён: %v", m.ctx.Err())
		default:
		}

		chunk, err := m.tracerSvc.Receive()
		if err != nil {
			if model.IsTransport(err) {
				return nil, errors.Trace(err)
			}
			return nil, errors.Annotatef(model.ErrAborted, "%v", err)
		}
		if len(chunk) == 0 {
			// Данных сейчас нет, это не конец потока
			time.Sleep(m.pollInterval)
			continue
		}

		// Пустые записи (";;") тоже уходят в грамматику: решение о приёме
		// строки принимает только она
		for _, line := range asm.Feed(chunk) {
			agg.FoldLine(line)
		}
		for _, warning := range agg.Warnings() {
			m.log.Warn(warning)
		}

		regime := agg.Regime(cmd.ID)
		if m.progress != nil && expected != 0 {
			if last, ok := regime.LastSubID(); ok {
				done := last + 1
				if done > expected {
					done = expected
				}
				if done != reported {
					reported = done
					m.progress(done, expected)
				}
			}
		}

		if agg.Ended(cmd.ID) {
			if m.progress != nil && expected != 0 && reported != expected {
				m.progress(expected, expected)
			}
			return regime, nil
		}
	}
}
