package db

import (
	"time"

	"github.com/kirsrus/curvetracer/model"
	"github.com/kirsrus/curvetracer/store"
)

type (
	// GormModelUnscoped модель эквивалент gorm.Model без сохранения удалений
	GormModelUnscoped struct {
		ID        int `gorm:"primaryKey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

type (
	// Regime запись завершённого регламента
	Regime struct {
		GormModelUnscoped
		// Идентификатор сеанса (uuid), присваивается при сохранении
		SessionID string
		// Идентификатор регламента из командного пакета TEST
		RegimeID          int
		VoltageStart      float64
		VoltageEnd        float64
		VoltageResolution float64
		// Путь к файлу лога, в который регламент был сохранён
		LogFile string
	}
)

// TableName имя таблицы
func (Regime) TableName() string {
	return "regimes"
}

// FromRegime заполняет текущую структуру из структуры model.Regime
func (m *Regime) FromRegime(regime model.Regime) {
	*m = Regime{
		RegimeID:          int(regime.Command.ID),
		VoltageStart:      regime.Command.VoltageStart(),
		VoltageEnd:        regime.Command.VoltageEnd(),
		VoltageResolution: regime.Command.VoltageResolution(),
	}
}

// ToRegimeLog маппинг данных в структуру store.RegimeLog
func (m Regime) ToRegimeLog(samples int) store.RegimeLog {
	return store.RegimeLog{
		ID:                m.ID,
		CreatedAt:         &m.CreatedAt,
		SessionID:         m.SessionID,
		RegimeID:          uint(m.RegimeID),
		VoltageStart:      m.VoltageStart,
		VoltageEnd:        m.VoltageEnd,
		VoltageResolution: m.VoltageResolution,
		Samples:           samples,
		LogFile:           m.LogFile,
	}
}

type (
	// Measurement запись одного замера регламента
	Measurement struct {
		GormModelUnscoped
		// Идентификатор записи регламента в таблице regimes
		RegimeRef int
		SubID     int
		Type      int
		Value     float64
	}
)

// TableName имя таблицы
func (Measurement) TableName() string {
	return "measurements"
}

// ToDataPacket маппинг данных в структуру model.DataPacket
func (m Measurement) ToDataPacket(regimeID uint) model.DataPacket {
	return model.DataPacket{
		ID:    regimeID,
		SubID: uint(m.SubID),
		Type:  model.MeasurementType(m.Type),
		Value: m.Value,
	}
}

// FromDataPacket заполняет текущую структуру из структуры model.DataPacket
func (m *Measurement) FromDataPacket(regimeRef int, packet model.DataPacket) {
	*m = Measurement{
		RegimeRef: regimeRef,
		SubID:     int(packet.SubID),
		Type:      int(packet.Type),
		Value:     packet.Value,
	}
}
