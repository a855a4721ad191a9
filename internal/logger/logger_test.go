package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		level   string
		wantErr bool
	}{
		{name: "TextInfo", format: "text", level: "info"},
		{name: "JSONDebug", format: "json", level: "debug"},
		{name: "None", format: "whatever", level: "none"},
		{name: "BadLevel", format: "text", level: "loud", wantErr: true},
		{name: "BadFormat", format: "xml", level: "info", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLogger(tc.format, tc.level)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			l.Info("hello")
			l.With().Info("child")
		})
	}
}
