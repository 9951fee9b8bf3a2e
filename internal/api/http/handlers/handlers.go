package handlers

import (
	"github.com/metaschema/registry/internal/designer"
	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/projection"
	"github.com/metaschema/registry/internal/registry"
	"github.com/rs/zerolog"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured
const DefaultMaxBodyBytes = 1 << 20

// Handlers serves the registry, projection and designer operations
type Handlers struct {
	registry *registry.Registry
	engine   *projection.Engine
	designer *designer.Designer
	maxBody  int64
	log      zerolog.Logger
}

// New creates handlers over a registry. A non-positive maxBody selects
// DefaultMaxBodyBytes.
func New(reg *registry.Registry, engine *projection.Engine, d *designer.Designer, maxBody int64) *Handlers {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handlers{
		registry: reg,
		engine:   engine,
		designer: d,
		maxBody:  maxBody,
		log:      logger.WithComponent("http.handlers"),
	}
}
