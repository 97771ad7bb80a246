package stream

import (
	"bytes"
	"strings"
)

// Разделитель записей в живом потоке с платы
const Delimiter = ';'

// Assembler восстанавливает законченные логические строки из произвольно
// фрагментированного потока байт. Транспорт может разрезать запись на любом
// месте или склеить несколько записей в один кусок — буфер незавершённого
// хвоста принадлежит только сборщику и дочитывается следующими кусками.
// Структура не рассчитана на конкурентное использование. Создаётся через
// NewAssembler
type Assembler struct {
	buf []byte
}

// NewAssembler конструктор структуры Assembler
func NewAssembler() *Assembler {
	return &Assembler{
		buf: make([]byte, 0, 4096),
	}
}

// Feed добавляет очередной кусок потока и возвращает все завершившиеся
// логические строки, очищенные от окружающих пробелов. Пустой кусок — не
// ошибка и не конец потока: просто нет новых строк. Пустые строки (например,
// от ";;") возвращаются как есть: решение об их приёме остаётся за
// грамматикой пакетов
func (m *Assembler) Feed(chunk []byte) []string {
	m.buf = append(m.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(m.buf, Delimiter)
		if i < 0 {
			break
		}
		lines = append(lines, strings.TrimSpace(string(m.buf[:i])))
		m.buf = m.buf[i+1:]
	}
	return lines
}

// Pending размер незавершённого хвоста в буфере
func (m *Assembler) Pending() int {
	return len(m.buf)
}
