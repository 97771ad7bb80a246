package web

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/kirsrus/curvetracer/service"
	"github.com/kirsrus/curvetracer/store"

	"github.com/juju/errors"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/sirupsen/logrus"
)

const (
	webPort     = 8080
	archiveDays = 30
)

// ConfigWeb конфигурация структуры Web
type ConfigWeb struct {
	Log *logrus.Logger

	WebPort uint
	// Глубина выдаваемого архива в днях
	ArchiveDays uint
}

// Web служба WEB-интерфейса архива регламентов. Инициализируется через NewWeb
type Web struct {
	ctx context.Context
	log *logrus.Entry
	e   *echo.Echo

	dbStore store.DbStore

	webPort     uint
	archiveDays uint
}

// NewWeb конструктор структкуры Web
func NewWeb(ctx context.Context, dbStore store.DbStore, config *ConfigWeb) (service.WebSvc, error) {
	if config == nil {
		return nil, errors.New("не установлена конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if dbStore == nil {
		return nil, errors.New("не передан сервис базы данных")
	}

	web := Web{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "web",
			"scope":  "service",
		}),
		e: echo.New(),

		dbStore: dbStore,

		webPort:     webPort,
		archiveDays: archiveDays,
	}
	if config.WebPort != 0 {
		web.webPort = config.WebPort
	}
	if config.ArchiveDays != 0 {
		web.archiveDays = config.ArchiveDays
	}

	web.e.HideBanner = true
	web.e.HidePort = true
	web.e.Use(middleware.Recover())
	web.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	return &web, nil
}

// Описание регламента в выдаче списка архива
type regimeOut struct {
	ID                int       `json:"id"`
	CreatedAt         time.Time `json:"createdAt"`
	SessionID         string    `json:"sessionId"`
	RegimeID          uint      `json:"regimeId"`
	VoltageStart      float64   `json:"voltageStart"`
	VoltageEnd        float64   `json:"voltageEnd"`
	VoltageResolution float64   `json:"voltageResolution"`
	Samples           int       `json:"samples"`
	LogFile           string    `json:"logFile"`
}

// Одна точка замера в выдаче данных регламента
type measurementOut struct {
	SubID uint    `json:"subId"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// Regimes хэндлер списка собранных регламентов
func (m Web) Regimes(path string) {
	m.e.GET(path, func(c echo.Context) error {
		regimes, err := m.dbStore.Regimes(m.archiveDays)
		if err != nil {
			m.log.Error(errors.ErrorStack(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "ошибка чтения архива"})
		}
		res := make([]regimeOut, 0, len(regimes))
		for _, regime := range regimes {
			out := regimeOut{
				ID:                regime.ID,
				SessionID:         regime.SessionID,
				RegimeID:          regime.RegimeID,
				VoltageStart:      regime.VoltageStart,
				VoltageEnd:        regime.VoltageEnd,
				VoltageResolution: regime.VoltageResolution,
				Samples:           regime.Samples,
				LogFile:           regime.LogFile,
			}
			if regime.CreatedAt != nil {
				out.CreatedAt = *regime.CreatedAt
			}
			res = append(res, out)
		}
		return c.JSON(http.StatusOK, res)
	})
}

// RegimeData хэндлер точек замеров одного регламента
func (m Web) RegimeData(path string) {
	m.e.GET(path, func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": fmt.Sprintf("некорректный идентификатор регламента: %s", c.Param("id"))})
		}
		packets, err := m.dbStore.RegimeData(id)
		if err != nil {
			if m.dbStore.IsNotFound(err) {
				return c.JSON(http.StatusNotFound, map[string]string{"message": fmt.Sprintf("регламент %d не найден", id)})
			}
			m.log.Error(errors.ErrorStack(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "ошибка чтения архива"})
		}
		res := make([]measurementOut, 0, len(packets))
		for _, packet := range packets {
			res = append(res, measurementOut{
				SubID: packet.SubID,
				Type:  packet.Type.String(),
				Value: packet.Value,
			})
		}
		return c.JSON(http.StatusOK, res)
	})
}

// Serve запуск WEB-сервера. Блокируется до остановки сервера
func (m Web) Serve() error {
	m.log.Infof("старт HTTP-сервера на порту :%d", m.webPort)
	return errors.Trace(m.e.Start(fmt.Sprintf(":%d", m.webPort)))
}
