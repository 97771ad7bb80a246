package operator

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/kirsrus/curvetracer/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

// Console имплементация ввода оператора через консоль. Инициируется через
// NewConsole. Подтверждением считается только ответ "Y", любой другой ответ
// трактуется как отказ
type Console struct {
	log *logrus.Entry
	in  *bufio.Reader
	out io.Writer
}

// ConfigConsole конфигурация Console
type ConfigConsole struct {
	Log *logrus.Logger
	// Источник ввода оператора (по умолчанию os.Stdin)
	In io.Reader
	// Приёмник вопросов оператору (по умолчанию os.Stdout)
	Out io.Writer
}

// NewConsole конструктор структуры Console
func NewConsole(config *ConfigConsole) (service.OperatorSvc, error) {
	if config == nil {
		config = &ConfigConsole{}
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if config.In == nil {
		config.In = os.Stdin
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}

	res := &Console{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "operator",
			"scope":  "service",
		}),
		in:  bufio.NewReader(config.In),
		out: config.Out,
	}
	return res, nil
}

// Confirm задаёт оператору вопрос и ожидает подтверждения готовности
func (m *Console) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(m.out, "%s (Y/abort) ", prompt); err != nil {
		return false, errors.Trace(err)
	}
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		return false, errors.Trace(err)
	}
	answer := strings.TrimSpace(line)
	m.log.Debugf("ответ оператора: %q", answer)
	return answer == "Y", nil
}
