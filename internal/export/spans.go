package export

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hafixo/lttng-analyses/internal/state"
)

// SpanEmitter implements the tracker notifier interfaces and emits one span
// per completed lifecycle. Spans are emitted whole at the exit/completion
// event, with explicit start and end timestamps anchored to the boot time the
// trace timestamps are relative to.
type SpanEmitter struct {
	tracer   trace.Tracer
	bootTime time.Time
}

// NewSpanEmitter creates an emitter. bootTime anchors monotonic trace
// timestamps (nanoseconds since boot) to wall-clock time.
func NewSpanEmitter(tracer trace.Tracer, bootTime time.Time) *SpanEmitter {
	return &SpanEmitter{tracer: tracer, bootTime: bootTime}
}

func (e *SpanEmitter) wallClock(ts uint64) time.Time {
	return e.bootTime.Add(time.Duration(ts))
}

// emit produces one complete span for the [beginTS, endTS] interval.
func (e *SpanEmitter) emit(name string, beginTS, endTS uint64, errored bool, attrs ...attribute.KeyValue) {
	_, span := e.tracer.Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(e.wallClock(beginTS)),
	)
	span.SetAttributes(attrs...)
	if errored {
		span.SetStatus(codes.Error, "request failed")
	}
	span.End(trace.WithTimestamp(e.wallClock(endTS)))
}

// HandleSyscallEntry is a no-op: replay is post hoc, so the span is emitted
// whole on exit.
func (e *SpanEmitter) HandleSyscallEntry(*state.Process, *state.Syscall) {}

// HandleSyscallExit emits a span for a finished I/O syscall.
func (e *SpanEmitter) HandleSyscallExit(proc *state.Process, sc *state.Syscall) {
	if sc.IO == nil {
		return
	}
	req := sc.IO.SyscallBase()

	attrs := []attribute.KeyValue{
		attribute.String("syscall.name", req.SyscallName),
		attribute.String("io.operation", req.Op.String()),
		attribute.Int64("process.tid", req.TID),
		attribute.String("process.command", proc.Comm),
		attribute.Int64("io.duration_ns", int64(req.Duration)),
	}
	if req.Size >= 0 {
		attrs = append(attrs, attribute.Int64("io.size_bytes", req.Size))
	}
	if req.ReturnedSize >= 0 {
		attrs = append(attrs, attribute.Int64("io.returned_bytes", req.ReturnedSize))
	}
	if req.Errno != 0 {
		attrs = append(attrs, attribute.Int64("io.errno", req.Errno))
	}
	if open, ok := sc.IO.(*state.OpenIORequest); ok {
		attrs = append(attrs,
			attribute.String("io.file", open.Filename),
			attribute.String("io.fd_type", open.FDType.String()),
		)
	}

	e.emit("syscall."+req.SyscallName, req.BeginTS, req.EndTS, req.Errno != 0, attrs...)
}

// HandleHardIRQExit emits a span for a serviced hardware interrupt.
func (e *SpanEmitter) HandleHardIRQExit(irq *state.HardIRQ) {
	e.emit("irq.hard", irq.BeginTS, irq.EndTS, false,
		attribute.Int("irq.id", int(irq.ID)),
		attribute.Int("cpu.id", int(irq.CPU)),
		attribute.Int64("irq.handler_ret", irq.Ret),
	)
}

// HandleSoftIRQExit emits a span for a serviced software interrupt. When the
// raise preceded servicing, the raise latency is recorded alongside.
func (e *SpanEmitter) HandleSoftIRQExit(irq *state.SoftIRQ) {
	attrs := []attribute.KeyValue{
		attribute.Int("irq.vec", int(irq.ID)),
		attribute.Int("cpu.id", int(irq.CPU)),
	}
	if irq.RaiseTS != 0 && irq.RaiseTS <= irq.BeginTS {
		attrs = append(attrs, attribute.Int64("irq.raise_latency_ns", int64(irq.BeginTS-irq.RaiseTS)))
	}
	e.emit("irq.soft", irq.BeginTS, irq.EndTS, false, attrs...)
}

// HandleBlockComplete emits a span for a completed block request.
func (e *SpanEmitter) HandleBlockComplete(req *state.BlockIORequest) {
	e.emit("block."+req.Op.String(), req.BeginTS, req.EndTS, false,
		attribute.Int64("block.dev", int64(req.Dev)),
		attribute.Int64("block.sector", int64(req.Sector)),
		attribute.Int64("io.size_bytes", req.Size),
		attribute.Int64("process.tid", req.TID),
		attribute.Int64("io.duration_ns", int64(req.Duration)),
	)
}

// HandleBlockRemap is a no-op: remaps re-key a pending request and produce a
// span only once the request completes.
func (e *SpanEmitter) HandleBlockRemap(*state.BlockRemapRequest, *state.BlockIORequest) {}
