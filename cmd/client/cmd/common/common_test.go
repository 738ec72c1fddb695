package common

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local).UnixMilli()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "space", input: "2024-03-15 14:30"},
		{name: "iso local", input: "2024-03-15T14:30"},
		{name: "dotted", input: "15.03.2024 14:30"},
		{name: "garbage", input: "завтра", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, "2024-03-15 14:30", FormatTime(got))
		})
	}
}

func TestApp_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err := App(cmd)
	assert.Error(t, err)
	assert.Equal(t, "-", FormatTime(0))
}
