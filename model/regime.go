package model

import (
	"math"
)

// Regime набор пакетов одного тестового прогона: командный пакет TEST и
// порождённые им пакеты данных в порядке прихода. Создаётся через NewRegime
type Regime struct {
	Command CommandPacket
	Data    []DataPacket
}

// NewRegime конструктор структуры Regime
func NewRegime(cmd CommandPacket) *Regime {
	return &Regime{
		Command: cmd,
		Data:    make([]DataPacket, 0),
	}
}

// Append добавляет пакет данных с сохранением порядка прихода
func (m *Regime) Append(packet DataPacket) {
	m.Data = append(m.Data, packet)
}

// ExpectedGroups ожидаемое количество групп замеров для свипа. Используется
// только для оценки прогресса, завершение регламента определяет END
func (m Regime) ExpectedGroups() uint {
	if m.Command.Command != CommandTest || len(m.Command.Params) != 3 {
		return 0
	}
	start, end, resolution := m.Command.Params[0], m.Command.Params[1], m.Command.Params[2]
	if resolution <= 0 || end <= start {
		return 0
	}
	return uint(math.Floor((end-start)/resolution)) + 1
}

// LastSubID номер последней принятой группы замеров. Второй результат false,
// если данных ещё не было
func (m Regime) LastSubID() (uint, bool) {
	if len(m.Data) == 0 {
		return 0, false
	}
	return m.Data[len(m.Data)-1].SubID, true
}

// Progress оценка доли завершённости свипа в диапазоне [0, 1]. Нарушение
// порядка SubID не является ошибкой, оценка остаётся приблизительной
func (m Regime) Progress() float64 {
	expected := m.ExpectedGroups()
	if expected == 0 {
		return 0
	}
	last, ok := m.LastSubID()
	if !ok {
		return 0
	}
	progress := float64(last+1) / float64(expected)
	if progress > 1 {
		progress = 1
	}
	return progress
}

// Groups пакеты данных, сгруппированные по SubID в порядке первого появления
// группы. Все замеры одного шага напряжения попадают в одну группу
func (m Regime) Groups() [][]DataPacket {
	groups := make([][]DataPacket, 0)
	position := map[uint]int{}
	for _, packet := range m.Data {
		i, ok := position[packet.SubID]
		if !ok {
			i = len(groups)
			position[packet.SubID] = i
			groups = append(groups, make([]DataPacket, 0, 4))
		}
		groups[i] = append(groups[i], packet)
	}
	return groups
}
