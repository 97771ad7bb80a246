package model

import (
	"testing"
)

func TestPresets(t *testing.T) {
	presets := Presets()
	if len(presets) != 3 {
		t.Fatalf("предустановок %d, want 3", len(presets))
	}

	wantNames := []string{"CELL", "MODULE", "ARRAY"}
	for i, preset := range presets {
		if preset.Name != wantNames[i] {
			t.Errorf("предустановка %d называется %s, want %s", i, preset.Name, wantNames[i])
		}
		cmd := preset.Command(uint(i) + 1)
		if err := cmd.Validate(); err != nil {
			t.Errorf("предустановка %s даёт некорректную команду: %v", preset.Name, err)
		}
		if cmd.Command != CommandTest || cmd.ID != uint(i)+1 {
			t.Errorf("предустановка %s собрала не ту команду: %+v", preset.Name, cmd)
		}
	}
}

func TestPresetCommand(t *testing.T) {
	cell := Presets()[0]
	cmd := cell.Command(1)
	if cmd.String() != "TEST 1 0 600 1" {
		t.Errorf("команда CELL = %q, want %q", cmd.String(), "TEST 1 0 600 1")
	}
	// Свип ячейки по умолчанию покрывает 601 группу замеров
	if got := NewRegime(cmd).ExpectedGroups(); got != 601 {
		t.Errorf("ожидаемых групп %d, want 601", got)
	}
}
