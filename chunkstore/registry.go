package chunkstore

import (
	"context"

	"github.com/pkg/errors"
)

// Factory builds a Store from a configuration map.
type Factory func(context.Context, map[string]interface{}) (Store, error)

var registry = make(map[string]Factory)

// Register associates a chunk-store type name with its factory.
// Store implementations call this from init.
func Register(typ string, f Factory) {
	registry[typ] = f
}

// Create builds a Store of the registered type named by typ.
func Create(ctx context.Context, typ string, conf map[string]interface{}) (Store, error) {
	f, ok := registry[typ]
	if !ok {
		return nil, errors.Errorf("unknown chunk store type %s", typ)
	}
	return f(ctx, conf)
}
