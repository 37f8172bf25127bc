package registry

import (
	"errors"
	"testing"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/ble/bletest"
	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDriver struct {
	scale.Driver
	dev ble.Device
	id  string
}

func stubPlugin(id string, prefixes ...string) Plugin {
	return Plugin{
		ID:      id,
		Matches: NamePrefix(prefixes...),
		Create: func(dev ble.Device, _ ble.Client, _ ...scale.Option) (scale.Driver, error) {
			return &stubDriver{dev: dev, id: id}, nil
		},
	}
}

func newTestRegistry(t *testing.T, plugins ...Plugin) *Registry {
	t.Helper()

	reg, err := New(WithLogger(logger.NewNopMockLogger()), WithPlugins(plugins...))
	require.NoError(t, err)

	return reg
}

func TestRegister(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	require.NoError(reg.Register(stubPlugin("alpha", "Alpha")))
	require.ErrorIs(reg.Register(stubPlugin("alpha", "Other")), ErrDuplicateID)
	require.ErrorIs(reg.Register(Plugin{ID: "", Matches: NamePrefix("x"), Create: stubPlugin("x").Create}), ErrInvalidPlugin)
	require.ErrorIs(reg.Register(Plugin{ID: "nomatch", Create: stubPlugin("x").Create}), ErrInvalidPlugin)
	require.ErrorIs(reg.Register(Plugin{ID: "nocreate", Matches: NamePrefix("x")}), ErrInvalidPlugin)
	require.Equal(1, reg.Len())

	reg.Freeze()
	require.ErrorIs(reg.Register(stubPlugin("beta", "Beta")), ErrFrozen)
	require.Equal(1, reg.Len())

	_, err := New(WithPlugins(stubPlugin("a", "A"), stubPlugin("a", "A")))
	require.ErrorIs(err, ErrDuplicateID)

	_, err = New(WithLogger(nil))
	require.Error(err)
}

func TestResolve(t *testing.T) {
	reg := newTestRegistry(t,
		stubPlugin("specific", "Scale Pro"),
		stubPlugin("broad", "Scale"),
	)

	tests := []struct {
		name   string
		dev    ble.Device
		wantID string
		wantOK bool
	}{
		{"earlier registration wins", ble.Device{Name: "Scale Pro 2"}, "specific", true},
		{"broad match", ble.Device{Name: "Scale Mini"}, "broad", true},
		{"no match", ble.Device{Name: "Thermometer"}, "", false},
		{"empty name", ble.Device{Address: "aa:bb"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := reg.Resolve(tt.dev)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}

	ids := make([]string, 0)
	for _, p := range reg.Plugins() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"specific", "broad"}, ids)
}

func TestInstantiate(t *testing.T) {
	require := require.New(t)

	dev := ble.Device{Address: "01", Name: "Scale"}
	reg := newTestRegistry(t, stubPlugin("broad", "Scale"))

	p, ok := reg.Resolve(dev)
	require.True(ok)

	drv, err := reg.Instantiate(p, dev, bletest.NewPeripheral(dev))
	require.NoError(err)
	stub, ok := drv.(*stubDriver)
	require.True(ok)
	require.Equal(dev, stub.dev)

	failing := Plugin{
		ID:      "failing",
		Matches: NamePrefix("Scale"),
		Create: func(ble.Device, ble.Client, ...scale.Option) (scale.Driver, error) {
			return nil, errors.New("boom")
		},
	}
	_, err = reg.Instantiate(failing, dev, nil)
	require.ErrorContains(err, "boom")

	_, err = reg.Instantiate(Plugin{ID: "empty"}, dev, nil)
	require.ErrorIs(err, ErrInvalidPlugin)
}

func TestNamePrefix(t *testing.T) {
	match := NamePrefix("blackcoffee", "my_scale", "MY_SCALE")

	assert.True(t, match(ble.Device{Name: "blackcoffee-01"}))
	assert.True(t, match(ble.Device{Name: "MY_SCALE"}))
	assert.False(t, match(ble.Device{Name: "My_Scale"}))
	assert.False(t, match(ble.Device{Name: "my"}))
	assert.False(t, NamePrefix()(ble.Device{Name: "anything"}))
}
