package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hafixo/lttng-analyses/internal/event"
)

func TestHardIRQFromEntry(t *testing.T) {
	irq := NewHardIRQFromEntry(event.New("irq_handler_entry", 1000, 2).
		WithField(event.FieldIRQ, int64(19)))

	assert.Equal(t, uint32(19), irq.ID)
	assert.Equal(t, uint32(2), irq.CPU)
	assert.Equal(t, uint64(1000), irq.BeginTS)
	assert.True(t, irq.Pending())
	assert.Zero(t, irq.Duration())
}

func TestSoftIRQ_RaiseAndEntryPaths(t *testing.T) {
	raised := NewSoftIRQFromRaise(event.New("softirq_raise", 100, 0).
		WithField(event.FieldVec, int64(3)))
	assert.Equal(t, uint64(100), raised.RaiseTS)
	assert.Zero(t, raised.BeginTS, "raise carries no begin timestamp")

	entered := NewSoftIRQFromEntry(event.New("softirq_entry", 150, 0).
		WithField(event.FieldVec, int64(3)))
	assert.Zero(t, entered.RaiseTS, "entry carries no raise timestamp")
	assert.Equal(t, uint64(150), entered.BeginTS)
}

func TestIRQ_DurationAfterExit(t *testing.T) {
	irq := NewHardIRQFromEntry(event.New("irq_handler_entry", 1000, 0).
		WithField(event.FieldIRQ, int64(19)))
	irq.EndTS = 1250

	assert.False(t, irq.Pending())
	assert.Equal(t, uint64(250), irq.Duration())
}
