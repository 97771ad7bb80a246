package tracer

import (
	"context"
	"testing"
)

func TestNewWebsocket(t *testing.T) {
	type args struct {
		ctx    context.Context
		config *ConfigWebsocket
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "не задана конфигурация",
			args: args{
				ctx:    context.Background(),
				config: nil,
			},
			wantErr: true,
		},
		{
			name: "пустой адрес",
			args: args{
				ctx: context.Background(),
				config: &ConfigWebsocket{
					Address: "",
				},
			},
			wantErr: true,
		},
		{
			name: "не WebSocket схема",
			args: args{
				ctx: context.Background(),
				config: &ConfigWebsocket{
					Address: "http://192.168.10.15:8000/feed",
				},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewWebsocket(tt.args.ctx, tt.args.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWebsocket() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			_ = got
		})
	}
}
