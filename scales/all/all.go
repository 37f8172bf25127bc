// Package all registers every bundled scale driver.
package all

import (
	"github.com/arloliu/go-scales/registry"
	"github.com/arloliu/go-scales/scales/bookoo"
	"github.com/arloliu/go-scales/scales/decent"
	"github.com/arloliu/go-scales/scales/myscale"
	"github.com/arloliu/go-scales/scales/weighmybru"
)

// Plugins returns the bundled plugins in priority order.
func Plugins() []registry.Plugin {
	return []registry.Plugin{
		bookoo.Plugin(),
		weighmybru.Plugin(),
		decent.Plugin(),
		myscale.Plugin(),
	}
}

// Register adds every bundled plugin to reg.
func Register(reg *registry.Registry) error {
	for _, p := range Plugins() {
		if err := reg.Register(p); err != nil {
			return err
		}
	}

	return nil
}

// NewRegistry creates a frozen registry holding every bundled plugin.
func NewRegistry(opts ...registry.Option) (*registry.Registry, error) {
	reg, err := registry.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := Register(reg); err != nil {
		return nil, err
	}
	reg.Freeze()

	return reg, nil
}
