package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		env   string
		debug bool
		want  slog.Level
	}{
		{name: "default", want: slog.LevelInfo},
		{name: "env debug", env: "debug", want: slog.LevelDebug},
		{name: "env warning", env: "WARNING", want: slog.LevelWarn},
		{name: "env error", env: "error", want: slog.LevelError},
		{name: "unknown keeps info", env: "loud", want: slog.LevelInfo},
		{name: "debug flag", env: "error", debug: true, want: slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EVEREST_LOG_LEVEL", tt.env)
			log := NewLogger(&config.RuntimeConfig{Debug: tt.debug})

			assert.True(t, log.Enabled(ctx, tt.want))
			if tt.want > slog.LevelDebug {
				assert.False(t, log.Enabled(ctx, tt.want-1))
			}
		})
	}
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/ledger.go", shortPath("/home/dev/everest-deploy/internal/usecase/ledger.go"))
	assert.Equal(t, "ledger.go", shortPath("/elsewhere/ledger.go"))
}
