package manager

import (
	"context"
	"io/ioutil"
	"math"
	"time"

	"github.com/kirsrus/curvetracer/service"
	"github.com/kirsrus/curvetracer/store"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	cleanBasePeriod   = time.Hour * 24 * 365
	cleanBaseInterval = time.Minute * 60
)

// ConfigManager конфигурация Manager
type ConfigManager struct {
	Log *logrus.Logger

	WebSvc  service.WebSvc
	DbStore store.DbStore

	CleanBasePeriod   time.Duration
	CleanBaseInterval time.Duration
}

// Manager менеджер фоновых служб: WEB интерфейс архива и хоускипер БД.
// Живой сеанс регламента им не управляется и запускается вызывающим
// отдельно. Инициируется через NewManager
type Manager struct {
	ctx context.Context
	log *logrus.Entry

	webSvc  service.WebSvc
	dbStore store.DbStore

	cleanBasePeriod   time.Duration
	cleanBaseInterval time.Duration
}

// NewManager конструктор Manager
func NewManager(ctx context.Context, config *ConfigManager) (*Manager, error) {
	if config == nil {
		return nil, errors.New("не передана конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if config.WebSvc == nil {
		return nil, errors.New("не передан сервис WEB")
	}
	if config.DbStore == nil {
		return nil, errors.New("не передан сервис базы данных")
	}

	manager := Manager{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "manager",
			"scope":  "controller",
		}),
		webSvc:  config.WebSvc,
		dbStore: config.DbStore,

		cleanBasePeriod:   cleanBasePeriod,
		cleanBaseInterval: cleanBaseInterval,
	}
	if config.CleanBasePeriod != 0 {
		manager.cleanBasePeriod = config.CleanBasePeriod
	}
	if config.CleanBaseInterval != 0 {
		manager.cleanBaseInterval = config.CleanBaseInterval
	}

	manager.configToLog()

	return &manager, nil
}

// Вывести значения конфигурациии в лог
func (m Manager) configToLog() {
	m.log.Debugf("cleanBasePeriod: %s", m.cleanBasePeriod)
	m.log.Debugf("cleanBaseInterval: %s", m.cleanBaseInterval)
}

// Serve запуск фоновых служб. Блокируется до остановки любой из них или
// отмены контекста
func (m Manager) Serve() error {
	g := new(errgroup.Group)

	// Запуск WEB-сервера архива регламентов
	g.Go(func() error {
		return errors.Trace(m.webSvc.Serve())
	})

	// Запуск хоускипера для очистки базы данных от старых записей
	g.Go(func() error {
		days := int(math.Round(m.cleanBasePeriod.Hours() / 24))
		for {
			if err := m.dbStore.Clean(days); err != nil {
				return errors.Trace(err)
			}
			select {
			case <-m.ctx.Done():
				return nil
			case <-time.After(m.cleanBaseInterval):
			}
		}
	})

	return errors.Trace(g.Wait())
}
