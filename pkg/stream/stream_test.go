package stream

import (
	"reflect"
	"testing"
)

func TestAssemblerFeed(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   [][]string
	}{
		{
			name:   "строка, разрезанная на две части",
			chunks: []string{"TEST 1 0 10", " 1;"},
			want:   [][]string{nil, {"TEST 1 0 10 1"}},
		},
		{
			name:   "несколько записей в одном куске",
			chunks: []string{"A;B;C"},
			want:   [][]string{{"A", "B"}},
		},
		{
			name:   "разрез по каждому байту",
			chunks: []string{"E", "N", "D", " ", "1", ";"},
			want:   [][]string{nil, nil, nil, nil, nil, {"END 1"}},
		},
		{
			name:   "пустой кусок не даёт строк",
			chunks: []string{"", "DATA 1 0 0 0.5;", ""},
			want:   [][]string{nil, {"DATA 1 0 0 0.5"}, nil},
		},
		{
			name:   "двойной разделитель даёт пустую строку",
			chunks: []string{"A;;B;"},
			want:   [][]string{{"A", "", "B"}},
		},
		{
			name:   "окружающие пробелы и переводы строк обрезаются",
			chunks: []string{"  DATA 1 0 0 0.5 \r\n;"},
			want:   [][]string{{"DATA 1 0 0 0.5"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := NewAssembler()
			for i, chunk := range tt.chunks {
				got := asm.Feed([]byte(chunk))
				if !reflect.DeepEqual(got, tt.want[i]) {
					t.Errorf("Feed(%q) = %v, want %v", chunk, got, tt.want[i])
				}
			}
		})
	}
}

// Ни одна строка не должна выдаваться дважды, хвост дочитывается следующим куском
func TestAssemblerNoDuplicates(t *testing.T) {
	asm := NewAssembler()

	lines := asm.Feed([]byte("DATA 1 0 0 0.5;DATA 1 0 1"))
	if len(lines) != 1 || lines[0] != "DATA 1 0 0 0.5" {
		t.Fatalf("первый кусок: %v", lines)
	}
	if asm.Pending() == 0 {
		t.Fatal("хвост незавершённой записи потерян")
	}

	lines = asm.Feed([]byte(" 0.25;"))
	if len(lines) != 1 || lines[0] != "DATA 1 0 1 0.25" {
		t.Fatalf("второй кусок: %v", lines)
	}
	if asm.Pending() != 0 {
		t.Errorf("буфер не опустел: %d байт", asm.Pending())
	}
}
