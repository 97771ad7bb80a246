package model

// Preset предустановка тестового регламента по типу подключаемой панели.
// Диапазоны соответствуют положениям поворотного переключателя платы
type Preset struct {
	Name              string
	VoltageStart      float64
	VoltageEnd        float64
	VoltageResolution float64
}

// Presets предустановки по типам панелей: одиночная ячейка, модуль и массив
func Presets() []Preset {
	return []Preset{
		{Name: "CELL", VoltageStart: 0, VoltageEnd: 600, VoltageResolution: 1},
		{Name: "MODULE", VoltageStart: 0, VoltageEnd: 6000, VoltageResolution: 1},
		{Name: "ARRAY", VoltageStart: 0, VoltageEnd: 100000, VoltageResolution: 1},
	}
}

// Command командный пакет TEST с параметрами предустановки
func (m Preset) Command(id uint) CommandPacket {
	return CommandPacket{
		ID:      id,
		Command: CommandTest,
		Params:  []float64{m.VoltageStart, m.VoltageEnd, m.VoltageResolution},
	}
}
