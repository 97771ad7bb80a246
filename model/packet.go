package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// MeasurementType тип замера в пакете данных. Числовое значение совпадает
// с кодом типа замера на проводе
type MeasurementType int

const (
	// MeasurementVoltage замер напряжения (код 0)
	MeasurementVoltage MeasurementType = iota
	// MeasurementCurrent замер тока (код 1)
	MeasurementCurrent
	// MeasurementTemperature замер температуры (код 2)
	MeasurementTemperature
	// MeasurementIrradiance замер освещённости (код 3)
	MeasurementIrradiance
)

// Known код замера входит в известный диапазон
func (m MeasurementType) Known() bool {
	return m >= MeasurementVoltage && m <= MeasurementIrradiance
}

// String краткое имя типа замера
func (m MeasurementType) String() string {
	switch m {
	case MeasurementVoltage:
		return "voltage"
	case MeasurementCurrent:
		return "current"
	case MeasurementTemperature:
		return "temperature"
	case MeasurementIrradiance:
		return "irradiance"
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}

// CommandType тип командного пакета
type CommandType int

const (
	// CommandStart команда начала исполнения регламента
	CommandStart CommandType = iota
	// CommandTest команда описания тестового регламента
	CommandTest
	// CommandEnd команда завершения регламента
	CommandEnd
)

// String имя команды на проводе
func (m CommandType) String() string {
	switch m {
	case CommandStart:
		return "START"
	case CommandTest:
		return "TEST"
	case CommandEnd:
		return "END"
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}

// CommandPacket командный пакет. Для команды TEST в Params лежат ровно три
// параметра [начальное напряжение, конечное напряжение, разрешение] в mV.
// START и END параметров не несут
type CommandPacket struct {
	ID      uint
	Command CommandType
	Params  []float64
}

// Validate проверка инвариантов командного пакета
func (m CommandPacket) Validate() error {
	switch m.Command {
	case CommandStart, CommandEnd:
		if len(m.Params) != 0 {
			return errors.Annotatef(ErrInvalidCommandParameters,
				"команда %s не несёт параметров, передано %d", m.Command, len(m.Params))
		}
	case CommandTest:
		if len(m.Params) != 3 {
			return errors.Annotatef(ErrInvalidCommandParameters,
				"команда TEST требует 3 параметра, передано %d", len(m.Params))
		}
		start, end, resolution := m.Params[0], m.Params[1], m.Params[2]
		if end <= start {
			return errors.Annotatef(ErrInvalidCommandParameters,
				"конечное напряжение %s должно быть больше начального %s",
				formatVoltage(end), formatVoltage(start))
		}
		if resolution <= 0 || resolution > end-start {
			return errors.Annotatef(ErrInvalidCommandParameters,
				"разрешение %s должно быть в диапазоне (0, %s]",
				formatVoltage(resolution), formatVoltage(end-start))
		}
	default:
		return errors.Annotatef(ErrInvalidCommandParameters,
			"неизвестная команда %d", int(m.Command))
	}
	return nil
}

// VoltageStart начальное напряжение свипа (только для TEST)
func (m CommandPacket) VoltageStart() float64 {
	if m.Command != CommandTest || len(m.Params) != 3 {
		return 0
	}
	return m.Params[0]
}

// VoltageEnd конечное напряжение свипа (только для TEST)
func (m CommandPacket) VoltageEnd() float64 {
	if m.Command != CommandTest || len(m.Params) != 3 {
		return 0
	}
	return m.Params[1]
}

// VoltageResolution шаг свипа (только для TEST)
func (m CommandPacket) VoltageResolution() float64 {
	if m.Command != CommandTest || len(m.Params) != 3 {
		return 0
	}
	return m.Params[2]
}

// String каноничная строковая форма пакета. Выполняется условие
// ParsePacket(p.String()) == p для любого валидного пакета
func (m CommandPacket) String() string {
	switch m.Command {
	case CommandStart:
		return fmt.Sprintf("START %d", m.ID)
	case CommandEnd:
		return fmt.Sprintf("END %d", m.ID)
	default:
		return fmt.Sprintf("TEST %d %s %s %s", m.ID,
			formatVoltage(m.VoltageStart()),
			formatVoltage(m.VoltageEnd()),
			formatVoltage(m.VoltageResolution()))
	}
}

// DataPacket пакет одного замера. ID ссылается на командный пакет TEST,
// породивший регламент, SubID — номер шага напряжения внутри регламента
// (несколько замеров разных датчиков делят один SubID)
type DataPacket struct {
	ID    uint
	SubID uint
	Type  MeasurementType
	Value float64
}

// String каноничная строковая форма пакета
func (m DataPacket) String() string {
	return fmt.Sprintf("DATA %d %d %d %s", m.ID, m.SubID, int(m.Type), formatVoltage(m.Value))
}

// ParsePacket разбирает одну логическую строку протокола. Возвращается либо
// командный пакет, либо пакет данных. Строка уже должна быть очищена от
// разделителя записей и окружающих пробелов
func ParsePacket(line string) (*CommandPacket, *DataPacket, error) {
	fields := strings.Split(line, " ")

	switch fields[0] {
	case "START", "END":
		if len(fields) != 2 {
			return nil, nil, errors.Annotatef(ErrWrongArity,
				"команда %s требует 2 поля, получено %d: %q", fields[0], len(fields), line)
		}
		id, err := parseID(fields[1])
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		command := CommandStart
		if fields[0] == "END" {
			command = CommandEnd
		}
		cmd := CommandPacket{ID: id, Command: command}
		if err := cmd.Validate(); err != nil {
			return nil, nil, errors.Trace(err)
		}
		return &cmd, nil, nil

	case "TEST":
		if len(fields) != 5 {
			return nil, nil, errors.Annotatef(ErrWrongArity,
				"команда TEST требует 5 полей, получено %d: %q", len(fields), line)
		}
		id, err := parseID(fields[1])
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		params := make([]float64, 0, 3)
		for _, field := range fields[2:] {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, errors.Annotatef(ErrMalformedField,
					"параметр %q не является числом", field)
			}
			params = append(params, value)
		}
		cmd := CommandPacket{ID: id, Command: CommandTest, Params: params}
		if err := cmd.Validate(); err != nil {
			return nil, nil, errors.Trace(err)
		}
		return &cmd, nil, nil

	case "DATA":
		if len(fields) != 5 {
			return nil, nil, errors.Annotatef(ErrWrongArity,
				"пакет DATA требует 5 полей, получено %d: %q", len(fields), line)
		}
		id, err := parseID(fields[1])
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		subID, err := parseID(fields[2])
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		kind, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, nil, errors.Annotatef(ErrMalformedField,
				"код типа замера %q не является числом", fields[3])
		}
		measurement := MeasurementType(kind)
		if !measurement.Known() {
			return nil, nil, errors.Annotatef(ErrUnknownMeasurementKind,
				"код типа замера %d вне диапазона 0-3", kind)
		}
		value, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, nil, errors.Annotatef(ErrMalformedField,
				"значение замера %q не является числом", fields[4])
		}
		return nil, &DataPacket{ID: id, SubID: subID, Type: measurement, Value: value}, nil
	}

	return nil, nil, errors.Annotatef(ErrUnknownPacketType, "строка %q", line)
}

// Разбор неотрицательного целого идентификатора
func parseID(field string) (uint, error) {
	id, err := strconv.ParseUint(field, 10, 32)
	if err != nil {
		return 0, errors.Annotatef(ErrMalformedField,
			"идентификатор %q не является неотрицательным целым", field)
	}
	return uint(id), nil
}

// Формат чисел на проводе: кратчайшая запись, восстанавливаемая без потерь
func formatVoltage(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
