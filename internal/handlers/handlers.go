package handlers

import (
	"time"

	"media-covers/internal/cover"
	"media-covers/internal/coverstore"
	"media-covers/internal/memory"
	"media-covers/internal/startup"
)

// defaultGenerationTimeout bounds one generation request when no
// configuration is supplied.
const defaultGenerationTimeout = 2 * time.Minute

type Handlers struct {
	covers    *cover.Service
	store     *coverstore.Store
	memory    *memory.Monitor
	timeout   time.Duration
	keep      int
	startTime time.Time
}

// New creates the handlers. store may be nil, in which case generated covers
// are not kept and the stored-cover endpoints answer 404.
func New(svc *cover.Service, store *coverstore.Store, config *startup.Config) *Handlers {
	return NewWithMonitor(svc, store, nil, config)
}

// NewWithMonitor is New with a memory monitor that holds generation
// requests while memory is critical.
func NewWithMonitor(svc *cover.Service, store *coverstore.Store, monitor *memory.Monitor, config *startup.Config) *Handlers {
	timeout := defaultGenerationTimeout
	if config != nil && config.GenerationTimeout > 0 {
		timeout = config.GenerationTimeout
	}
	return &Handlers{
		covers:    svc,
		store:     store,
		memory:    monitor,
		timeout:   timeout,
		keep:      coverstore.DefaultKeep,
		startTime: time.Now(),
	}
}
