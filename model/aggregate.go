package model

import (
	"fmt"
)

// Aggregator складывает поток распарсенных пакетов в набор регламентов.
// Источником пакетов может быть как живой поток с платы, так и файл лога.
// Структура не рассчитана на конкурентное использование: буфер регламентов
// принадлежит единственному активному сеансу. Создаётся через NewAggregator
type Aggregator struct {
	regimes []*Regime
	index   map[uint]*Regime
	ended   map[uint]bool

	// Предупреждения о пропущенных строках. Накапливаются, а не логируются:
	// решение о логировании принимает владелец агрегатора
	warnings []string
}

// NewAggregator конструктор структуры Aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		regimes:  make([]*Regime, 0),
		index:    map[uint]*Regime{},
		ended:    map[uint]bool{},
		warnings: make([]string, 0),
	}
}

// FoldLine разбирает одну логическую строку и учитывает результат. Ошибка
// грамматики не фатальна: строка пропускается с записью предупреждения
func (m *Aggregator) FoldLine(line string) {
	cmd, data, err := ParsePacket(line)
	if err != nil {
		m.warnings = append(m.warnings, fmt.Sprintf("строка %q пропущена: %v", line, err))
		return
	}
	if cmd != nil {
		m.FoldCommand(*cmd)
		return
	}
	m.FoldData(*data)
}

// FoldCommand учитывает командный пакет. Первый TEST для идентификатора
// создаёт регламент, повторные отбрасываются (выигрывает первый). START и
// END регламентов не создают: это маркеры сеанса, END запоминается для
// проверки завершения в живом режиме
func (m *Aggregator) FoldCommand(cmd CommandPacket) {
	switch cmd.Command {
	case CommandTest:
		if _, ok := m.index[cmd.ID]; ok {
			m.warnings = append(m.warnings,
				fmt.Sprintf("повторная команда TEST для регламента %d отброшена", cmd.ID))
			return
		}
		regime := NewRegime(cmd)
		m.index[cmd.ID] = regime
		m.regimes = append(m.regimes, regime)
	case CommandEnd:
		m.ended[cmd.ID] = true
	case CommandStart:
		// Маркер начала сеанса, состояние набора не меняет
	}
}

// FoldData учитывает пакет данных. Пакет для неизвестного регламента
// отбрасывается: команда TEST обязана предшествовать своим данным
func (m *Aggregator) FoldData(packet DataPacket) {
	regime, ok := m.index[packet.ID]
	if !ok {
		m.warnings = append(m.warnings,
			fmt.Sprintf("пакет данных для неизвестного регламента %d отброшен", packet.ID))
		return
	}
	regime.Append(packet)
}

// Regime регламент по идентификатору, nil если не встречался
func (m *Aggregator) Regime(id uint) *Regime {
	return m.index[id]
}

// Regimes все собранные регламенты в порядке появления
func (m *Aggregator) Regimes() []*Regime {
	return m.regimes
}

// Ended наблюдался ли маркер END для регламента
func (m *Aggregator) Ended(id uint) bool {
	return m.ended[id]
}

// Warnings забирает накопленные предупреждения, очищая буфер
func (m *Aggregator) Warnings() []string {
	warnings := m.warnings
	m.warnings = make([]string, 0)
	return warnings
}
