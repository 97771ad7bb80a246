package model

import (
	"testing"
)

func TestAggregatorFoldCommand(t *testing.T) {
	t.Run("первый TEST создаёт регламент", func(t *testing.T) {
		agg := NewAggregator()
		agg.FoldLine("TEST 5 0 600 1")
		if len(agg.Regimes()) != 1 {
			t.Fatalf("регламентов %d, want 1", len(agg.Regimes()))
		}
		if agg.Regime(5) == nil {
			t.Fatal("регламент 5 не найден")
		}
	})

	t.Run("повторный TEST отбрасывается, выигрывает первый", func(t *testing.T) {
		agg := NewAggregator()
		agg.FoldLine("TEST 5 0 600 1")
		agg.FoldLine("TEST 5 0 100 2")
		if len(agg.Regimes()) != 1 {
			t.Fatalf("регламентов %d, want 1", len(agg.Regimes()))
		}
		regime := agg.Regime(5)
		if regime.Command.VoltageEnd() != 600 || regime.Command.VoltageResolution() != 1 {
			t.Errorf("сохранились параметры не первого TEST: %+v", regime.Command)
		}
		if warnings := agg.Warnings(); len(warnings) != 1 {
			t.Errorf("предупреждений %d, want 1", len(warnings))
		}
	})

	t.Run("START и END регламентов не создают", func(t *testing.T) {
		agg := NewAggregator()
		agg.FoldLine("START 3")
		agg.FoldLine("END 3")
		if len(agg.Regimes()) != 0 {
			t.Errorf("регламентов %d, want 0", len(agg.Regimes()))
		}
		if !agg.Ended(3) {
			t.Error("маркер END для регламента 3 не учтён")
		}
		if agg.Ended(4) {
			t.Error("маркер END для регламента 4 не наблюдался")
		}
	})
}

func TestAggregatorFoldData(t *testing.T) {
	t.Run("данные для неизвестного регламента отбрасываются", func(t *testing.T) {
		agg := NewAggregator()
		agg.FoldLine("DATA 9 0 0 1.0")
		if len(agg.Regimes()) != 0 {
			t.Errorf("регламентов %d, want 0", len(agg.Regimes()))
		}
		if warnings := agg.Warnings(); len(warnings) != 1 {
			t.Errorf("предупреждений %d, want 1", len(warnings))
		}
	})

	t.Run("данные складываются в свой регламент по порядку", func(t *testing.T) {
		agg := NewAggregator()
		agg.FoldLine("TEST 1 0 600 1")
		agg.FoldLine("TEST 2 0 100 1")
		agg.FoldLine("DATA 1 0 0 0.5")
		agg.FoldLine("DATA 2 0 0 0.1")
		agg.FoldLine("DATA 1 0 1 0.25")
		if got := len(agg.Regime(1).Data); got != 2 {
			t.Errorf("в регламенте 1 пакетов %d, want 2", got)
		}
		if got := len(agg.Regime(2).Data); got != 1 {
			t.Errorf("в регламенте 2 пакетов %d, want 1", got)
		}
		if agg.Regime(1).Data[1].Type != MeasurementCurrent {
			t.Errorf("порядок прихода нарушен: %+v", agg.Regime(1).Data)
		}
	})
}

func TestAggregatorFoldLine(t *testing.T) {
	t.Run("некорректные строки пропускаются с предупреждением", func(t *testing.T) {
		agg := NewAggregator()
		agg.FoldLine("TEST 1 0 600 1")
		agg.FoldLine("мусор в потоке")
		agg.FoldLine("")
		agg.FoldLine("DATA 1 0 9 0.5")
		agg.FoldLine("DATA 1 0 0 0.5")
		if len(agg.Regimes()) != 1 {
			t.Fatalf("регламентов %d, want 1", len(agg.Regimes()))
		}
		if got := len(agg.Regime(1).Data); got != 1 {
			t.Errorf("пакетов %d, want 1", got)
		}
		warnings := agg.Warnings()
		if len(warnings) != 3 {
			t.Errorf("предупреждений %d, want 3: %v", len(warnings), warnings)
		}
		// Буфер предупреждений очищается при чтении
		if len(agg.Warnings()) != 0 {
			t.Error("буфер предупреждений не очищен")
		}
	})

	t.Run("полный регламент", func(t *testing.T) {
		agg := NewAggregator()
		lines := []string{
			"TEST 1 0 600 1",
			"START 1",
			"DATA 1 0 0 0.0",
			"DATA 1 0 1 0.0",
			"DATA 1 1 0 1.0",
			"DATA 1 1 1 0.1",
			"END 1",
		}
		for _, line := range lines {
			agg.FoldLine(line)
		}
		regime := agg.Regime(1)
		if regime == nil {
			t.Fatal("регламент 1 не собран")
		}
		if !agg.Ended(1) {
			t.Error("END для регламента 1 не учтён")
		}
		groups := regime.Groups()
		if len(groups) != 2 {
			t.Fatalf("групп %d, want 2", len(groups))
		}
		if len(agg.Warnings()) != 0 {
			t.Errorf("неожиданные предупреждения: %v", agg.Warnings())
		}
	})
}
