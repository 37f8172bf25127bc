package all

import (
	"testing"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/registry"
	"github.com/arloliu/go-scales/scales/bookoo"
	"github.com/arloliu/go-scales/scales/decent"
	"github.com/arloliu/go-scales/scales/myscale"
	"github.com/arloliu/go-scales/scales/weighmybru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(registry.WithLogger(logger.NewNopMockLogger()))
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())

	tests := []struct {
		name   string
		wantID string
	}{
		{"BOOKOO_SC 0001", bookoo.PluginID},
		{"WeighMyBru", weighmybru.PluginID},
		{"Decent Scale", decent.PluginID},
		{"blackcoffee", myscale.PluginID},
		{"MY_SCALE", myscale.PluginID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := reg.Resolve(ble.Device{Name: tt.name})
			require.True(t, ok)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}

	_, ok := reg.Resolve(ble.Device{Name: "Acaia Lunar"})
	assert.False(t, ok)

	require.ErrorIs(t, reg.Register(bookoo.Plugin()), registry.ErrFrozen)
}
