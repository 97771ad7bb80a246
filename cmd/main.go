package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/kirsrus/curvetracer/controller/manager"
	sessionCtlMod "github.com/kirsrus/curvetracer/controller/session"
	"github.com/kirsrus/curvetracer/model"
	"github.com/kirsrus/curvetracer/pkg/config"
	"github.com/kirsrus/curvetracer/pkg/logger"
	"github.com/kirsrus/curvetracer/service"
	operatorSvcMod "github.com/kirsrus/curvetracer/service/operator"
	tracerSvcMod "github.com/kirsrus/curvetracer/service/tracer"
	webSvcMod "github.com/kirsrus/curvetracer/service/web"
	"github.com/kirsrus/curvetracer/store"
	dbStoreMod "github.com/kirsrus/curvetracer/store/db"
	logStoreMod "github.com/kirsrus/curvetracer/store/logfile"

	"github.com/juju/errors"
	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

func init() {
	cfg = config.Get()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log = logger.GetWithConfig(logger.Config{
		File:    cfg.Log.Filename,
		Level:   level,
		Console: cfg.Log.Console,
	})
}

func main() {

	err := run()
	if err != nil {
		fmt.Printf("ОШИБКА: в процессе работы произошла ошибка: %v\n", err)
		fmt.Printf("Для подробностей смотри лог: %s/%s\n", cfg.Log.Path, cfg.Log.Filename)
		log.Fatal(errors.ErrorStack(err))
	}
}

func run() error {
	// Отлавливаем сигнал завершения работы программы
	chanInterrupt := make(chan os.Signal, 1)
	signal.Notify(chanInterrupt, os.Interrupt)

	done := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// region Настройка хранилищ

	dbStore, err := dbStoreMod.NewDb(ctx, &dbStoreMod.ConfigDb{
		Log:    log,
		DbFile: cfg.Db.Filename,
	})
	if err != nil {
		return errors.Trace(err)
	}

	logStore, err := logStoreMod.NewLogfile(ctx, &logStoreMod.ConfigLogfile{
		Log: log,
		Dir: cfg.Logfile.Path,
	})
	if err != nil {
		return errors.Trace(err)
	}

	// endregion
	// region Контроллер WEB

	webSvc, err := webSvcMod.NewWeb(ctx, dbStore, &webSvcMod.ConfigWeb{
		Log:         log,
		WebPort:     cfg.Http.Port,
		ArchiveDays: cfg.Http.ArchiveDays,
	})
	if err != nil {
		return errors.Trace(err)
	}

	webSvc.Regimes("/api/regimes")
	webSvc.RegimeData("/api/regimes/:id/data")

	// endregion
	// region Менеджер фоновых служб

	managerCtl, err := manager.NewManager(ctx, &manager.ConfigManager{
		Log:               log,
		WebSvc:            webSvc,
		DbStore:           dbStore,
		CleanBasePeriod:   time.Hour * 24 * time.Duration(cfg.Db.ArchiveDays),
		CleanBaseInterval: time.Minute * time.Duration(cfg.Db.CleanArchiveInterval),
	})
	if err != nil {
		return errors.Trace(err)
	}

	go func() {
		err := managerCtl.Serve()
		if err != nil && err.Error() != context.Canceled.Error() {
			done <- errors.Trace(err)
		}
		done <- nil
	}()

	// endregion
	// region Консоль оператора

	// Меню и подтверждения оператора читают один общий буфер консоли
	in := bufio.NewReader(os.Stdin)
	operatorSvc, err := operatorSvcMod.NewConsole(&operatorSvcMod.ConfigConsole{
		Log: log,
		In:  in,
	})
	if err != nil {
		return errors.Trace(err)
	}

	go func() {
		done <- errors.Trace(menu(ctx, in, operatorSvc, logStore, dbStore))
	}()

	// endregion

	// Процесс завершения работы
	select {
	case err := <-done:
		cancel()
		return errors.Trace(err)
	case <-chanInterrupt:
		log.Info("получена по каналу interrupt команда на завершение работы программы")
		cancel()
		time.Sleep(time.Second)
		return nil
	}
}

// Цикл главного меню программы. Возврат без ошибки — оператор выбрал выход
func menu(ctx context.Context, in *bufio.Reader, operatorSvc service.OperatorSvc, logStore store.LogStore, dbStore store.DbStore) error {
	// Подключение к плате устанавливается при первом запуске регламента и
	// дальше переиспользуется
	var tracerSvc service.TracerSvc
	defer func() {
		if tracerSvc != nil {
			_ = tracerSvc.Close()
		}
	}()

	for {
		fmt.Println()
		fmt.Println("Трассировщик вольт-амперных кривых")
		fmt.Println("  1 - визуализировать файл лога")
		fmt.Println("  2 - запустить тестовый регламент")
		fmt.Println("  3 - выход")
		fmt.Print("Выбор: ")

		choice, err := readLine(in)
		if err != nil {
			return errors.Trace(err)
		}

		switch choice {
		case "1":
			if err := visualizeLog(in, logStore); err != nil {
				fmt.Printf("ОШИБКА: %v\n", err)
				log.Error(errors.ErrorStack(err))
			}
		case "2":
			if tracerSvc == nil {
				tracerSvc, err = connectTracer(ctx)
				if err != nil {
					fmt.Printf("ОШИБКА: не удалось подключиться к плате: %v\n", err)
					log.Error(errors.ErrorStack(err))
					continue
				}
			}
			if err := runRegime(ctx, in, tracerSvc, operatorSvc, logStore, dbStore); err != nil {
				if model.IsAborted(err) {
					fmt.Println("Регламент прерван")
					continue
				}
				fmt.Printf("ОШИБКА: %v\n", err)
				log.Error(errors.ErrorStack(err))
				if model.IsTransport(err) {
					// Подключение после ошибки обмена не переиспользуется
					_ = tracerSvc.Close()
					tracerSvc = nil
				}
			}
		case "3":
			return nil
		default:
			fmt.Printf("Неизвестный пункт меню: %s\n", choice)
		}
	}
}

// Подключение к плате по настроенному транспорту
func connectTracer(ctx context.Context) (service.TracerSvc, error) {
	switch cfg.Tracer.Transport {
	case "serial":
		return tracerSvcMod.NewSerial(ctx, &tracerSvcMod.ConfigSerial{
			Log:         log,
			Port:        cfg.Tracer.Port,
			Baud:        cfg.Tracer.Baud,
			ReadTimeout: cfg.Tracer.ReadTimeout,
		})
	case "websocket":
		return tracerSvcMod.NewWebsocket(ctx, &tracerSvcMod.ConfigWebsocket{
			Log:     log,
			Address: cfg.Tracer.Address,
		})
	}
	return nil, errors.Errorf("неизвестный транспорт подключения к плате: %s", cfg.Tracer.Transport)
}

// Чтение файла лога и вывод сводки по собранным регламентам
func visualizeLog(in *bufio.Reader, logStore store.LogStore) error {
	fmt.Print("Путь к файлу лога: ")
	path, err := readLine(in)
	if err != nil {
		return errors.Trace(err)
	}

	regimes, err := logStore.Read(path)
	if err != nil {
		return errors.Trace(err)
	}
	if len(regimes) == 0 {
		fmt.Println("Файл лога не содержит регламентов")
		return nil
	}

	for _, regime := range regimes {
		fmt.Printf("Регламент %d: %s, групп %d, замеров %d\n",
			regime.Command.ID, regime.Command.String(), len(regime.Groups()), len(regime.Data))
		_, _ = pp.Println(regime.Groups())
	}
	return nil
}

// Опрос параметров, исполнение одного тестового регламента и сохранение
// результата в файл лога и архив БД
func runRegime(ctx context.Context, in *bufio.Reader, tracerSvc service.TracerSvc, operatorSvc service.OperatorSvc, logStore store.LogStore, dbStore store.DbStore) error {
	cmd, preset, err := promptRegimeCommand(in)
	if err != nil {
		return errors.Trace(err)
	}

	// Сводка выбранных параметров и подтверждение до инструктажа
	fmt.Printf("Тип теста:            %s\n", preset.Name)
	fmt.Printf("Начальное напряжение: %g мВ\n", cmd.VoltageStart())
	fmt.Printf("Конечное напряжение:  %g мВ\n", cmd.VoltageEnd())
	fmt.Printf("Шаг напряжения:       %g мВ\n", cmd.VoltageResolution())
	ok, err := operatorSvc.Confirm("Параметры корректны?")
	if err != nil {
		return errors.Annotatef(model.ErrAborted, "ошибка ввода оператора: %v", err)
	}
	if !ok {
		return errors.Annotatef(model.ErrAborted, "оператор отклонил параметры")
	}

	// Инструктаж по технике безопасности перед финальным подтверждением
	printDisclaimer()
	fmt.Printf("Переведите поворотный переключатель в режим %s согласно маркировке платы.\n", preset.Name)
	fmt.Println("Теперь подключите панель к клеммам платы.")

	sessionCtl, err := sessionCtlMod.NewSession(ctx, tracerSvc, operatorSvc, &sessionCtlMod.ConfigSession{
		Log:          log,
		PollInterval: cfg.Tracer.PollInterval,
		Progress: func(done, total uint) {
			fmt.Printf("\rСобрано групп: %d из %d", done, total)
		},
	})
	if err != nil {
		return errors.Trace(err)
	}

	regime, err := sessionCtl.Execute(cmd)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Println()

	logFile, err := logStore.Write(*regime)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Printf("Лог регламента сохранён: %s\n", logFile)

	sessionID, err := dbStore.SetRegime(*regime, logFile)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Printf("Регламент сохранён в архив, сеанс %s\n", sessionID)
	return nil
}

// Опрос типа теста и параметров свипа. Параметры предзаполняются значениями
// выбранной предустановки, пустой ввод оставляет значение по умолчанию
func promptRegimeCommand(in *bufio.Reader) (model.CommandPacket, model.Preset, error) {
	presets := model.Presets()

	fmt.Println("Тип подключаемой панели:")
	for i, preset := range presets {
		fmt.Printf("  %d - %s (по умолчанию %g..%g мВ, шаг %g)\n",
			i+1, preset.Name, preset.VoltageStart, preset.VoltageEnd, preset.VoltageResolution)
	}
	choice, err := readUint(in, "Выбор: ")
	if err != nil {
		return model.CommandPacket{}, model.Preset{}, errors.Trace(err)
	}
	if choice < 1 || choice > uint(len(presets)) {
		return model.CommandPacket{}, model.Preset{}, errors.Errorf("неизвестный тип теста: %d", choice)
	}
	preset := presets[choice-1]

	id, err := readUint(in, "Идентификатор регламента: ")
	if err != nil {
		return model.CommandPacket{}, model.Preset{}, errors.Trace(err)
	}
	vStart, err := readFloatDefault(in, fmt.Sprintf("Начальное напряжение (мВ) [%g]: ", preset.VoltageStart), preset.VoltageStart)
	if err != nil {
		return model.CommandPacket{}, model.Preset{}, errors.Trace(err)
	}
	vEnd, err := readFloatDefault(in, fmt.Sprintf("Конечное напряжение (мВ) [%g]: ", preset.VoltageEnd), preset.VoltageEnd)
	if err != nil {
		return model.CommandPacket{}, model.Preset{}, errors.Trace(err)
	}
	vRes, err := readFloatDefault(in, fmt.Sprintf("Шаг напряжения (мВ) [%g]: ", preset.VoltageResolution), preset.VoltageResolution)
	if err != nil {
		return model.CommandPacket{}, model.Preset{}, errors.Trace(err)
	}

	cmd := model.CommandPacket{
		ID:      id,
		Command: model.CommandTest,
		Params:  []float64{vStart, vEnd, vRes},
	}
	if err := cmd.Validate(); err != nil {
		return model.CommandPacket{}, model.Preset{}, errors.Trace(err)
	}
	return cmd, preset, nil
}

// Правила техники безопасности перед запуском регламента
func printDisclaimer() {
	fmt.Println("--------------------------------------------------")
	fmt.Println("|        ВАЖНЫЕ ПРАВИЛА ЭКСПЛУАТАЦИИ             |")
	fmt.Println("| Используйте с осторожностью. UTSVT не несёт    |")
	fmt.Println("| ответственности за ущерб и травмы при работе   |")
	fmt.Println("| трассировщика кривых.                          |")
	fmt.Println("|                                                |")
	fmt.Println("| 1) Переведите поворотный переключатель в       |")
	fmt.Println("| нужный режим до подключения панели.            |")
	fmt.Println("|                                                |")
	fmt.Println("| 2) Подключайте ячейку/модуль/массив только в   |")
	fmt.Println("| диэлектрических перчатках или при затенённой   |")
	fmt.Println("| панели во избежание поражения током.           |")
	fmt.Println("|                                                |")
	fmt.Println("| 3) Подключите плюс и минус панели к клеммам    |")
	fmt.Println("| платы согласно маркировке.                     |")
	fmt.Println("|                                                |")
	fmt.Println("| 4) Во время исполнения не касайтесь контактов  |")
	fmt.Println("| панели. Дождитесь завершения программы, затем  |")
	fmt.Println("| затените панель перед отключением.             |")
	fmt.Println("|                                                |")
	fmt.Println("| 5) Не трогайте поворотный переключатель во     |")
	fmt.Println("| время исполнения и при подключённой панели:    |")
	fmt.Println("| это выведет из строя датчик напряжения.        |")
	fmt.Println("--------------------------------------------------")
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil {
		return "", errors.Annotate(err, "ошибка чтения консоли")
	}
	return strings.TrimSpace(line), nil
}

func readUint(in *bufio.Reader, prompt string) (uint, error) {
	fmt.Print(prompt)
	line, err := readLine(in)
	if err != nil {
		return 0, errors.Trace(err)
	}
	val, err := strconv.ParseUint(line, 10, 32)
	if err != nil {
		return 0, errors.Errorf("некорректное число: %s", line)
	}
	return uint(val), nil
}

func readFloatDefault(in *bufio.Reader, prompt string, def float64) (float64, error) {
	fmt.Print(prompt)
	line, err := readLine(in)
	if err != nil {
		return 0, errors.Trace(err)
	}
	if line == "" {
		return def, nil
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, errors.Errorf("некорректное число: %s", line)
	}
	return val, nil
}
