package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafixo/lttng-analyses/internal/event"
)

func blockIssueEvent(ts uint64, dev, sector, nrSector, rwbs int64) *event.Event {
	return event.New("block_rq_issue", ts, 0).
		WithField(event.FieldDev, dev).
		WithField(event.FieldSector, sector).
		WithField(event.FieldNrSector, nrSector).
		WithField(event.FieldTID, int64(42)).
		WithField(event.FieldRWBS, rwbs)
}

func TestBlockFromIssue_RWBSParity(t *testing.T) {
	read := NewBlockFromIssue(blockIssueEvent(100, 8, 2048, 8, 4))
	assert.Equal(t, OpRead, read.Op, "even rwbs denotes read")

	write := NewBlockFromIssue(blockIssueEvent(100, 8, 2048, 8, 5))
	assert.Equal(t, OpWrite, write.Op, "odd rwbs denotes write")
}

func TestBlockFromIssue_SizeFromSectorCount(t *testing.T) {
	req := NewBlockFromIssue(blockIssueEvent(100, 8, 2048, 8, 4))

	assert.Equal(t, int64(8*SectorSize), req.Size)
	assert.Equal(t, uint64(8), req.Dev)
	assert.Equal(t, uint64(2048), req.Sector)
	assert.Equal(t, int64(42), req.TID)
	assert.True(t, req.Pending())
}

func TestBlockRequest_CompleteFinalizesSpan(t *testing.T) {
	req := NewBlockFromIssue(blockIssueEvent(100, 8, 2048, 8, 4))

	req.UpdateFromComplete(event.New("block_rq_complete", 175, 0))

	require.False(t, req.Pending())
	assert.Equal(t, uint64(75), req.Duration)
	assert.Equal(t, req.EndTS-req.BeginTS, req.Duration)
}

func TestBlockRemap_LinksIdentities(t *testing.T) {
	remap := NewBlockRemap(event.New("block_bio_remap", 100, 0).
		WithField(event.FieldDev, int64(8)).
		WithField(event.FieldSector, int64(4096)).
		WithField(event.FieldOldDev, int64(253)).
		WithField(event.FieldOldSector, int64(2048)))

	assert.Equal(t, uint64(8), remap.Dev)
	assert.Equal(t, uint64(4096), remap.Sector)
	assert.Equal(t, uint64(253), remap.OldDev)
	assert.Equal(t, uint64(2048), remap.OldSector)
}
