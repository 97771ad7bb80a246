package controller

import (
	"github.com/kirsrus/curvetracer/model"
)

// SessionCtl контроллер живого сеанса одного тестового регламента
//go:generate mockery --dir . --name SessionCtl --output ./mocks
type SessionCtl interface {
	// Выполняет полный обмен тестового регламента с платой и возвращает
	// собранный регламент после прихода маркера END
	Execute(cmd model.CommandPacket) (*model.Regime, error)
}
