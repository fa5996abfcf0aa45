package tracereader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafixo/lttng-analyses/internal/event"
)

type collector struct {
	events []*event.Event
	err    error
}

func (c *collector) HandleEvent(ev *event.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func TestRun_DispatchesRecordsInOrder(t *testing.T) {
	dump := `{"name":"sched_switch","ts":100,"cpu":0,"fields":{"next_tid":42,"next_comm":"app"}}
{"name":"syscall_entry_read","ts":110,"cpu":0,"fields":{"fd":3,"count":4096}}
{"name":"syscall_exit_read","ts":120,"cpu":0,"fields":{"ret":4096}}
`
	sink := &collector{}
	require.NoError(t, New(strings.NewReader(dump), sink).Run())

	require.Len(t, sink.events, 3)
	assert.Equal(t, "sched_switch", sink.events[0].Name)
	assert.Equal(t, uint64(110), sink.events[1].Timestamp)

	// JSON numbers arrive as float64; the event accessor normalizes them.
	fd, ok := sink.events[1].Int(event.FieldFD)
	require.True(t, ok)
	assert.Equal(t, int64(3), fd)
}

func TestRun_SkipsBlankLines(t *testing.T) {
	dump := "{\"name\":\"sched_switch\",\"ts\":100,\"cpu\":0}\n\n{\"name\":\"sched_switch\",\"ts\":200,\"cpu\":1}\n"
	sink := &collector{}
	require.NoError(t, New(strings.NewReader(dump), sink).Run())
	assert.Len(t, sink.events, 2)
}

func TestRun_EqualTimestampsAllowed(t *testing.T) {
	dump := `{"name":"softirq_raise","ts":100,"cpu":0,"fields":{"vec":3}}
{"name":"softirq_entry","ts":100,"cpu":0,"fields":{"vec":3}}
`
	sink := &collector{}
	assert.NoError(t, New(strings.NewReader(dump), sink).Run())
}

func TestRun_RejectsTimestampRegression(t *testing.T) {
	dump := `{"name":"sched_switch","ts":200,"cpu":0}
{"name":"sched_switch","ts":100,"cpu":0}
`
	sink := &collector{}
	err := New(strings.NewReader(dump), sink).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "timestamp ordering")
	assert.Len(t, sink.events, 1, "replay stops at the offending record")
}

func TestRun_RejectsMalformedLine(t *testing.T) {
	dump := `{"name":"sched_switch","ts":100,"cpu":0}
not json
`
	err := New(strings.NewReader(dump), &collector{}).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRun_HandlerErrorAbortsReplay(t *testing.T) {
	dump := `{"name":"sched_switch","ts":100,"cpu":0}
{"name":"sched_switch","ts":200,"cpu":0}
`
	sink := &collector{err: assert.AnError}
	err := New(strings.NewReader(dump), sink).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Len(t, sink.events, 1)
}

func TestRecordEvent_CarriesFields(t *testing.T) {
	rec := &Record{
		Name:      "block_rq_issue",
		Timestamp: 500,
		CPU:       3,
		Fields:    map[string]any{"dev": float64(8), "sector": float64(2048)},
	}
	ev := rec.Event()
	assert.Equal(t, "block_rq_issue", ev.Name)
	assert.Equal(t, uint32(3), ev.CPU)
	dev, ok := ev.Uint("dev")
	require.True(t, ok)
	assert.Equal(t, uint64(8), dev)
}
