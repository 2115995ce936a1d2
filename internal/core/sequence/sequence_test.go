package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	period := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		val  int64
		want string
	}{
		{
			name: "default with year",
			cfg:  DefaultConfig("SIN"),
			val:  1,
			want: "SIN-2026-00001",
		},
		{
			name: "wide counter",
			cfg:  DefaultConfig("RET"),
			val:  123456,
			want: "RET-2026-123456",
		},
		{
			name: "no year",
			cfg:  Config{Prefix: "EXP", PadWidth: 4},
			val:  7,
			want: "EXP-0007",
		},
		{
			name: "zero pad width falls back to 5",
			cfg:  Config{Prefix: "SOUT", IncludeYear: true},
			val:  42,
			want: "SOUT-2026-00042",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.cfg, period, tt.val))
		})
	}
}

func TestKey(t *testing.T) {
	period := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "SIN:2026", Key(DefaultConfig("SIN"), period))
	assert.Equal(t, "EXP", Key(Config{Prefix: "EXP"}, period))
}
