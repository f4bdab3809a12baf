package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorTrackAfterCloseDropsEvent(t *testing.T) {
	c := NewCollector(nil, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx)
	c.Close()

	// A handler finishing after shutdown must not hit a closed channel.
	assert.NotPanics(t, func() {
		c.Track(SearchEvent{Type: EventSearch, Query: "late"})
	})
	assert.NotPanics(t, c.Close)
}
