package model

import (
	"testing"
)

func TestRegimeExpectedGroups(t *testing.T) {
	tests := []struct {
		name string
		cmd  CommandPacket
		want uint
	}{
		{
			name: "ячейка по умолчанию",
			cmd:  CommandPacket{ID: 1, Command: CommandTest, Params: []float64{0, 600, 1}},
			want: 601,
		},
		{
			name: "дробное разрешение",
			cmd:  CommandPacket{ID: 1, Command: CommandTest, Params: []float64{0, 10, 3}},
			want: 4,
		},
		{
			name: "один шаг на весь диапазон",
			cmd:  CommandPacket{ID: 1, Command: CommandTest, Params: []float64{0, 600, 600}},
			want: 2,
		},
		{
			name: "не TEST",
			cmd:  CommandPacket{ID: 1, Command: CommandStart},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regime := NewRegime(tt.cmd)
			if got := regime.ExpectedGroups(); got != tt.want {
				t.Errorf("ExpectedGroups() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegimeProgress(t *testing.T) {
	regime := NewRegime(CommandPacket{ID: 1, Command: CommandTest, Params: []float64{0, 10, 1}})

	if got := regime.Progress(); got != 0 {
		t.Errorf("Progress() без данных = %v, want 0", got)
	}

	regime.Append(DataPacket{ID: 1, SubID: 0, Type: MeasurementVoltage, Value: 0})
	regime.Append(DataPacket{ID: 1, SubID: 0, Type: MeasurementCurrent, Value: 0.1})
	// 1 группа из 11 ожидаемых
	if got := regime.Progress(); got < 0.09 || got > 0.1 {
		t.Errorf("Progress() = %v, want ~0.0909", got)
	}

	regime.Append(DataPacket{ID: 1, SubID: 10, Type: MeasurementVoltage, Value: 10})
	if got := regime.Progress(); got != 1 {
		t.Errorf("Progress() = %v, want 1", got)
	}

	// SubID за пределами ожидаемого свипа не должен давать прогресс больше единицы
	regime.Append(DataPacket{ID: 1, SubID: 99, Type: MeasurementVoltage, Value: 99})
	if got := regime.Progress(); got != 1 {
		t.Errorf("Progress() после лишнего SubID = %v, want 1", got)
	}
}

func TestRegimeGroups(t *testing.T) {
	regime := NewRegime(CommandPacket{ID: 1, Command: CommandTest, Params: []float64{0, 600, 1}})
	regime.Append(DataPacket{ID: 1, SubID: 0, Type: MeasurementVoltage, Value: 0.0})
	regime.Append(DataPacket{ID: 1, SubID: 0, Type: MeasurementCurrent, Value: 0.0})
	regime.Append(DataPacket{ID: 1, SubID: 1, Type: MeasurementVoltage, Value: 1.0})
	regime.Append(DataPacket{ID: 1, SubID: 1, Type: MeasurementCurrent, Value: 0.1})

	groups := regime.Groups()
	if len(groups) != 2 {
		t.Fatalf("Groups() вернул %d групп, want 2", len(groups))
	}
	if len(groups[0]) != 2 || groups[0][0].SubID != 0 || groups[0][1].SubID != 0 {
		t.Errorf("первая группа собрана некорректно: %+v", groups[0])
	}
	if len(groups[1]) != 2 || groups[1][0].SubID != 1 {
		t.Errorf("вторая группа собрана некорректно: %+v", groups[1])
	}
	if groups[1][0].Type != MeasurementVoltage || groups[1][1].Type != MeasurementCurrent {
		t.Errorf("порядок внутри группы нарушен: %+v", groups[1])
	}
}
