package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2330", "2330.TW", false},
		{" 2330.tw ", "2330.TW", false},
		{"4979.TWO", "4979.TWO", false},
		{"^twii", "^TWII", false},
		{"00878", "00878.TW", false},
		{"", "", true},
		{"AAPL.US", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeSymbol(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlternateSuffix(t *testing.T) {
	alt, ok := AlternateSuffix("4979.TW")
	assert.True(t, ok)
	assert.Equal(t, "4979.TWO", alt)

	alt, ok = AlternateSuffix("4979.TWO")
	assert.True(t, ok)
	assert.Equal(t, "4979.TW", alt)

	_, ok = AlternateSuffix("^TWII")
	assert.False(t, ok)
}

func TestIsETF(t *testing.T) {
	assert.True(t, IsETF("0050.TW"))
	assert.True(t, IsETF("00878.TW"))
	assert.False(t, IsETF("2330.TW"))
	assert.Equal(t, "2330", Code("2330.TW"))
}
