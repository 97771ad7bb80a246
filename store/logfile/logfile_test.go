package logfile

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirsrus/curvetracer/model"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLogfileRead(t *testing.T) {
	dir, err := ioutil.TempDir("", "logfile")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	logStore, err := NewLogfile(context.Background(), &ConfigLogfile{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("корректный файл", func(t *testing.T) {
		content := Header + "\n" +
			"TEST 1 0 600 1\n" +
			"START 1\n" +
			"DATA 1 0 0 0.0\n" +
			"DATA 1 0 1 0.0\n" +
			"DATA 1 1 0 1.0\n" +
			"DATA 1 1 1 0.1\n" +
			"END 1\n"
		path := writeTestFile(t, dir, "ok.log", content)

		regimes, err := logStore.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(regimes) != 1 {
			t.Fatalf("регламентов %d, want 1", len(regimes))
		}
		if regimes[0].Command.ID != 1 || len(regimes[0].Data) != 4 {
			t.Errorf("регламент собран некорректно: %+v", regimes[0])
		}
		if groups := regimes[0].Groups(); len(groups) != 2 {
			t.Errorf("групп %d, want 2", len(groups))
		}
	})

	t.Run("регламент без END закрывается концом файла", func(t *testing.T) {
		content := Header + "\n" +
			"TEST 2 0 10 1\n" +
			"START 2\n" +
			"DATA 2 0 0 0.5\n"
		path := writeTestFile(t, dir, "noend.log", content)

		regimes, err := logStore.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(regimes) != 1 || len(regimes[0].Data) != 1 {
			t.Fatalf("регламентов %d: %+v", len(regimes), regimes)
		}
	})

	t.Run("некорректный заголовок отбрасывает файл целиком", func(t *testing.T) {
		content := "Some Other Log V9.9.9\nTEST 1 0 600 1\n"
		path := writeTestFile(t, dir, "badheader.log", content)

		_, err := logStore.Read(path)
		if err == nil {
			t.Fatal("ожидалась ошибка заголовка")
		}
		if !model.IsInvalidHeader(err) {
			t.Errorf("неожиданный вид ошибки: %v", err)
		}
	})

	t.Run("пустой файл", func(t *testing.T) {
		path := writeTestFile(t, dir, "empty.log", "")

		_, err := logStore.Read(path)
		if err == nil || !model.IsInvalidHeader(err) {
			t.Errorf("ожидалась ошибка заголовка, получено: %v", err)
		}
	})

	t.Run("изменения у вызывающего не портят кэш", func(t *testing.T) {
		content := Header + "\n" +
			"TEST 4 0 10 1\n" +
			"DATA 4 0 0 0.5\n"
		path := writeTestFile(t, dir, "cached.log", content)

		first, err := logStore.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		first[0].Data[0].Value = 99
		first[0].Append(model.DataPacket{ID: 4, SubID: 1, Type: model.MeasurementVoltage, Value: 1})
		first[0].Command.Params[1] = 777

		second, err := logStore.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(second[0].Data) != 1 || second[0].Data[0].Value != 0.5 {
			t.Errorf("кэш испорчен изменениями вызывающего: %+v", second[0].Data)
		}
		if second[0].Command.VoltageEnd() != 10 {
			t.Errorf("параметры команды в кэше испорчены: %+v", second[0].Command)
		}
	})

	t.Run("некорректные строки пропускаются", func(t *testing.T) {
		content := Header + "\n" +
			"TEST 3 0 10 1\n" +
			"мусор\n" +
			"DATA 3 0 0 0.5\n"
		path := writeTestFile(t, dir, "partial.log", content)

		regimes, err := logStore.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(regimes) != 1 || len(regimes[0].Data) != 1 {
			t.Fatalf("регламентов %d: %+v", len(regimes), regimes)
		}
	})
}

// Записанный файл должен читаться обратно без потерь
func TestLogfileWriteRead(t *testing.T) {
	dir, err := ioutil.TempDir("", "logfile")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	logStore, err := NewLogfile(context.Background(), &ConfigLogfile{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}

	regime := model.NewRegime(model.CommandPacket{
		ID:      7,
		Command: model.CommandTest,
		Params:  []float64{0, 600, 1},
	})
	regime.Append(model.DataPacket{ID: 7, SubID: 0, Type: model.MeasurementVoltage, Value: 0})
	regime.Append(model.DataPacket{ID: 7, SubID: 0, Type: model.MeasurementCurrent, Value: 0.25})
	regime.Append(model.DataPacket{ID: 7, SubID: 1, Type: model.MeasurementVoltage, Value: 1})

	path, err := logStore.Write(*regime)
	if err != nil {
		t.Fatal(err)
	}

	regimes, err := logStore.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(regimes) != 1 {
		t.Fatalf("регламентов %d, want 1", len(regimes))
	}
	got := regimes[0]
	if got.Command.ID != 7 || got.Command.VoltageEnd() != 600 {
		t.Errorf("командный пакет: %+v", got.Command)
	}
	if len(got.Data) != 3 {
		t.Fatalf("пакетов %d, want 3", len(got.Data))
	}
	for i := range regime.Data {
		if got.Data[i] != regime.Data[i] {
			t.Errorf("пакет %d: %+v, want %+v", i, got.Data[i], regime.Data[i])
		}
	}
}

func TestLogfileWriteRejectsNotTest(t *testing.T) {
	dir, err := ioutil.TempDir("", "logfile")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	logStore, err := NewLogfile(context.Background(), &ConfigLogfile{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}

	regime := model.NewRegime(model.CommandPacket{ID: 1, Command: model.CommandStart})
	if _, err := logStore.Write(*regime); err == nil {
		t.Error("ожидалась ошибка для регламента без команды TEST")
	}
}
