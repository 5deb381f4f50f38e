package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		env       string
		verbose   bool
		wantDebug bool
		wantWarn  bool
	}{
		{name: "development quiet", env: "development", verbose: false, wantDebug: false, wantWarn: true},
		{name: "development verbose", env: "development", verbose: true, wantDebug: true, wantWarn: true},
		{name: "production quiet", env: "production", verbose: false, wantDebug: false, wantWarn: true},
		{name: "production verbose", env: "production", verbose: true, wantDebug: true, wantWarn: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, err := New(tt.env, tt.verbose)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, log.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.wantWarn, log.Core().Enabled(zapcore.WarnLevel))
			assert.False(t, log.Core().Enabled(zapcore.InfoLevel) && !tt.verbose)
		})
	}
}
