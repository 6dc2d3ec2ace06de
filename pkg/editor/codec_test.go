package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibucoin/watermark/pkg/export"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Command
	}{
		{"select", `{"type":"selectRegion","id":"tb-1"}`, SelectRegion{ID: "tb-1"}},
		{"style", `{"type":"updateStyle","id":"a","opacity":30}`, UpdateStyle{ID: "a", Opacity: ptr(30)}},
		{"position", `{"type":"updatePosition","id":"a","x":10,"y":20}`, UpdatePosition{ID: "a", X: 10, Y: 20}},
		{"tile", `{"type":"updateTile","enabled":true,"spacing":200}`, UpdateTile{Enabled: ptr(true), Spacing: ptr(200.0)}},
		{"format", `{"type":"setExportFormat","format":"JPEG"}`, SetExportFormat{Format: export.JPEG}},
		{"copy", `{"type":"copyToImages","id":"a","targets":[1,2]}`, CopyToImages{ID: "a", Targets: []int{1, 2}}},
		{"clear", `{"type":"clearImages"}`, ClearImages{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	_, err := DecodeCommand([]byte(`{"type":"addImages"}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = DecodeCommand([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeCommand([]byte(`{"type":"setExportFormat","format":"gif"}`))
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}
