package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cybershang/b2bed/internal/events"
	"github.com/cybershang/b2bed/internal/model"
)

// RemoveSync bridges the host event bus to RemoveBatch: whenever the host
// reports gallery items removed, the matching stored objects are deleted.
type RemoveSync struct {
	bus *events.Bus
	svc UploaderService
	log zerolog.Logger
}

// NewRemoveSync creates the listener. It does nothing until Start.
func NewRemoveSync(bus *events.Bus, svc UploaderService, logger zerolog.Logger) *RemoveSync {
	return &RemoveSync{
		bus: bus,
		svc: svc,
		log: logger.With().Str("component", "remove_sync").Logger(),
	}
}

// Start subscribes to gallery-removal events and processes them until ctx is
// cancelled. Batches run sequentially so log output follows batch order.
func (r *RemoveSync) Start(ctx context.Context) {
	sub := r.bus.Subscribe(events.EventGalleryRemoved)
	r.log.Info().Msg("remove sync listening")

	go func() {
		defer r.bus.Unsubscribe(events.EventGalleryRemoved, sub)
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-sub:
				if !ok {
					return
				}
				items, _ := payload["items"].([]model.RemovedItem)
				if len(items) == 0 {
					continue
				}
				r.svc.RemoveBatch(ctx, items)
			}
		}
	}()
}
