package logfile

import (
	"bufio"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirsrus/curvetracer/model"
	"github.com/kirsrus/curvetracer/store"

	"github.com/juju/errors"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Header эталонная первая строка файла лога. Файл с другим заголовком
// отбрасывается целиком до разбора пакетов
const Header = "Curve Tracer Log V0.1.0. Authored by Matthew Yu. This file is property of UTSVT, 2020."

const (
	// Формат времени в имени создаваемого файла
	fileNameTimeFormat = "02-01-2006--15-04-05"

	cacheDuration = 10 * time.Minute
	cacheCleared  = time.Hour
)

// Logfile работа с файлами логов регламентов. Инициируется через NewLogfile
type Logfile struct {
	ctx context.Context
	log *logrus.Entry
	dir string

	// Кэш разобранных файлов, чтобы повторный показ не перечитывал файл
	readCache *cache.Cache
}

// ConfigLogfile конфигурация Logfile
type ConfigLogfile struct {
	Log *logrus.Logger
	// Корневая директория создаваемых файлов логов
	Dir string
}

// NewLogfile конструктор структуры Logfile
func NewLogfile(ctx context.Context, config *ConfigLogfile) (store.LogStore, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if config.Dir == "" {
		config.Dir = "."
	}
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, errors.Annotatef(err, "ошибка создания директории %s", config.Dir)
	}

	res := &Logfile{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "logfile",
			"scope":  "store",
		}),
		dir:       config.Dir,
		readCache: cache.New(cacheDuration, cacheCleared),
	}
	return res, nil
}

// Read читает файл лога и агрегирует его содержимое в набор регламентов.
// Регламенты файла закрываются концом файла: маркер END при чтении файла
// не требуется. Некорректные строки пропускаются с записью в лог
func (m *Logfile) Read(path string) ([]*model.Regime, error) {
	if cached, ok := m.readCache.Get(path); ok {
		m.log.Debugf("файл %s взят из кэша", path)
		return cloneRegimes(cached.([]*model.Regime)), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка открытия файла %s", path)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)

	// Первая строка обязана совпасть с эталонным заголовком
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Annotatef(err, "ошибка чтения файла %s", path)
		}
		return nil, errors.Annotatef(model.ErrInvalidHeader, "файл %s пуст", path)
	}
	if strings.TrimSpace(scanner.Text()) != Header {
		return nil, errors.Annotatef(model.ErrInvalidHeader, "файл %s", path)
	}

	agg := model.NewAggregator()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		agg.FoldLine(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Annotatef(err, "ошибка чтения файла %s", path)
	}
	for _, warning := range agg.Warnings() {
		m.log.Warnf("%s: %s", path, warning)
	}

	regimes := agg.Regimes()
	m.readCache.Set(path, regimes, cache.DefaultExpiration)
	m.log.Infof("из файла %s прочитано %d регламентов", path, len(regimes))
	return cloneRegimes(regimes), nil
}

// Копия набора регламентов: вызывающий получает собственные структуры и не
// может изменить содержимое кэша
func cloneRegimes(regimes []*model.Regime) []*model.Regime {
	res := make([]*model.Regime, 0, len(regimes))
	for _, regime := range regimes {
		clone := model.NewRegime(regime.Command)
		clone.Command.Params = append([]float64(nil), regime.Command.Params...)
		clone.Data = append(clone.Data, regime.Data...)
		res = append(res, clone)
	}
	return res
}

// Write сохраняет завершённый регламент в новый файл лога и возвращает путь
// к созданному файлу
func (m *Logfile) Write(regime model.Regime) (string, error) {
	if err := regime.Command.Validate(); err != nil {
		return "", errors.Trace(err)
	}
	if regime.Command.Command != model.CommandTest {
		return "", errors.Annotatef(model.ErrInvalidCommandParameters,
			"регламент должен владеть командой TEST, передана %s", regime.Command.Command)
	}

	var b strings.Builder
	b.WriteString(Header + "\n")
	b.WriteString(regime.Command.String() + "\n")
	b.WriteString(model.CommandPacket{ID: regime.Command.ID, Command: model.CommandStart}.String() + "\n")
	for _, packet := range regime.Data {
		b.WriteString(packet.String() + "\n")
	}
	b.WriteString(model.CommandPacket{ID: regime.Command.ID, Command: model.CommandEnd}.String() + "\n")

	name := fmt.Sprintf("curve-%d--%s.log", regime.Command.ID, time.Now().Format(fileNameTimeFormat))
	path := filepath.Join(m.dir, name)
	if err := ioutil.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", errors.Annotatef(err, "ошибка записи файла %s", path)
	}

	m.log.Infof("регламент %d сохранён в %s (%d пакетов)", regime.Command.ID, path, len(regime.Data))
	return path, nil
}
