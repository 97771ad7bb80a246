package db

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/kirsrus/curvetracer/model"
	"github.com/kirsrus/curvetracer/pkg/tool"
	"github.com/kirsrus/curvetracer/store"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Db обращение к базе данных архива регламентов. Инициируется через NewDb
type Db struct {
	ctx context.Context
	log *logrus.Entry
	db  *gorm.DB
}

// ConfigDb конфигурация класса Db
type ConfigDb struct {
	Log    *logrus.Logger
	DbFile string
}

// NewDb конструктор класса Db
func NewDb(ctx context.Context, config *ConfigDb) (store.DbStore, error) {
	if config == nil {
		return nil, errors.New("не указана конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if config.DbFile == "" {
		return nil, errors.New("в конфигурации не указан файл БД")
	}

	// Подключаемся к БД и запускаем миграции
	conn, err := gorm.Open(sqlite.Open(config.DbFile), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, errors.Annotate(err, "ошибка подключения к файлу БД")
	}
	err = conn.AutoMigrate(Regime{}, Measurement{})
	if err != nil {
		return nil, errors.Annotate(err, "ошибка миграции БД")
	}

	db := Db{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "db",
			"scope":  "store",
		}),
		db: conn,
	}
	return &db, nil
}

// IsNotFound проверяет, что ошибка err обозначает, что записи не найдены
func (m Db) IsNotFound(err error) bool {
	return err.Error() == gorm.ErrRecordNotFound.Error()
}

// SetRegime сохраняет завершённый регламент в архив вместе с именем файла
// лога. Возвращает идентификатор сеанса, присвоенный записи
func (m Db) SetRegime(regime model.Regime, logFile string) (string, error) {
	if err := regime.Command.Validate(); err != nil {
		return "", errors.Trace(err)
	}
	if regime.Command.Command != model.CommandTest {
		return "", errors.New("в архив сохраняются только регламенты с командой TEST")
	}

	record := Regime{}
	record.FromRegime(regime)
	record.SessionID = uuid.New().String()
	record.LogFile = logFile

	if err := m.db.Create(&record).Error; err != nil {
		return "", errors.Annotate(err, "ошибка сохранения регламента")
	}

	for _, packet := range regime.Data {
		measurement := Measurement{}
		measurement.FromDataPacket(record.ID, packet)
		if err := m.db.Create(&measurement).Error; err != nil {
			return "", errors.Annotate(err, "ошибка сохранения замера")
		}
	}

	m.log.Debugf("регламент %d сохранён в архив как сеанс %s (%d замеров)",
		regime.Command.ID, record.SessionID, len(regime.Data))
	return record.SessionID, nil
}

// Regimes список сохранённых регламентов за days дней
func (m Db) Regimes(days uint) ([]store.RegimeLog, error) {
	since := tool.RoundToDate(time.Now().AddDate(0, 0, -int(days)))

	var records []Regime
	err := m.db.Where("created_at >= ?", since).Order("created_at desc").Find(&records).Error
	if err != nil {
		return nil, errors.Trace(err)
	}

	res := make([]store.RegimeLog, 0, len(records))
	for _, record := range records {
		var samples int64
		err := m.db.Model(&Measurement{}).Where("regime_ref = ?", record.ID).Count(&samples).Error
		if err != nil {
			return nil, errors.Trace(err)
		}
		res = append(res, record.ToRegimeLog(int(samples)))
	}
	return res, nil
}

// RegimeData точки замеров регламента по идентификатору записи в БД
func (m Db) RegimeData(id int) ([]model.DataPacket, error) {
	var record Regime
	err := m.db.Where("id = ?", id).Take(&record).Error
	if err != nil {
		if err.Error() == gorm.ErrRecordNotFound.Error() {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errors.Trace(err)
	}

	var measurements []Measurement
	err = m.db.Where("regime_ref = ?", record.ID).Order("id").Find(&measurements).Error
	if err != nil {
		return nil, errors.Trace(err)
	}

	res := make([]model.DataPacket, 0, len(measurements))
	for _, measurement := range measurements {
		res = append(res, measurement.ToDataPacket(uint(record.RegimeID)))
	}
	return res, nil
}

// Clean очищает записи в БД старше days дней
func (m Db) Clean(days int) error {
	cutoff := tool.RoundToDate(time.Now().AddDate(0, 0, -days))

	var old []Regime
	if err := m.db.Where("created_at < ?", cutoff).Find(&old).Error; err != nil {
		return errors.Trace(err)
	}
	for _, record := range old {
		if err := m.db.Where("regime_ref = ?", record.ID).Delete(&Measurement{}).Error; err != nil {
			return errors.Trace(err)
		}
	}
	if err := m.db.Where("created_at < ?", cutoff).Delete(&Regime{}).Error; err != nil {
		return errors.Trace(err)
	}
	if len(old) != 0 {
		m.log.Infof("из архива удалено %d регламентов старше %s", len(old), cutoff.Format("2006.01.02"))
	}
	return nil
}
