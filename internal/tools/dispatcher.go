package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/golovatskygroup/mcp-netlify/internal/audit"
	"github.com/golovatskygroup/mcp-netlify/internal/netlify"
	"github.com/golovatskygroup/mcp-netlify/internal/registry"
	"github.com/golovatskygroup/mcp-netlify/internal/telemetry"
)

// Executor performs one outbound request. *netlify.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, req netlify.Request) netlify.Result
}

// Recorder receives one record per dispatched call. *audit.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, rec audit.Record) error
}

// Dispatcher resolves a tool by name, validates its arguments, performs at
// most one outbound request and shapes the result or the failure.
type Dispatcher struct {
	reg    *registry.Registry
	client Executor
	log    zerolog.Logger
	obs    *telemetry.Observer
	rec    Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l zerolog.Logger) Option { return func(d *Dispatcher) { d.log = l } }

func WithObserver(o *telemetry.Observer) Option { return func(d *Dispatcher) { d.obs = o } }

func WithRecorder(r Recorder) Option { return func(d *Dispatcher) { d.rec = r } }

func NewDispatcher(reg *registry.Registry, client Executor, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg, client: client, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry exposes the registry the dispatcher resolves names against.
func (d *Dispatcher) Registry() *registry.Registry { return d.reg }

// Dispatch runs one tool call. On failure the error is always a *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) (any, error) {
	callID := uuid.NewString()
	start := time.Now()
	log := d.log.With().Str("call_id", callID).Str("tool", name).Logger()

	ctx, finish := d.obs.Start(ctx, name, callID)
	out, status, terr := d.dispatch(ctx, log, name, rawArgs)
	elapsed := time.Since(start)

	obs := telemetry.Observation{Outcome: "success", StatusCode: status, Duration: elapsed}
	rec := audit.Record{
		ID:         callID,
		Tool:       name,
		Status:     "success",
		StatusCode: status,
		DurationMS: elapsed.Milliseconds(),
	}
	if terr != nil {
		obs.Outcome = terr.Kind.String()
		rec.Status = "error"
		rec.ErrorKind = terr.Kind.String()
		rec.Message = terr.Message
		log.Warn().Str("kind", terr.Kind.String()).Int("status", status).Dur("duration", elapsed).Msg(terr.Message)
	} else {
		log.Info().Int("status", status).Dur("duration", elapsed).Msg("tool call completed")
	}
	finish(obs)
	if d.rec != nil {
		if err := d.rec.Record(context.WithoutCancel(ctx), rec); err != nil {
			log.Error().Err(err).Msg("failed to record tool execution")
		}
	}

	if terr != nil {
		return nil, terr
	}
	return out, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, log zerolog.Logger, name string, rawArgs json.RawMessage) (any, int, *Error) {
	spec, ok := d.reg.Lookup(name)
	if !ok {
		msg := "Unknown tool: " + name
		if hints := d.reg.Suggest(name, 1); len(hints) > 0 {
			msg += " (did you mean " + strings.Join(hints, ", ") + "?)"
		}
		return nil, 0, methodNotFound("%s", msg)
	}

	args, err := decodeArgs(rawArgs)
	if err != nil {
		return nil, 0, invalidParams("%s", err.Error())
	}
	call, err := spec.Validate(args)
	if err != nil {
		return nil, 0, invalidParams("%s", err.Error())
	}
	if err := d.reg.Conform(name, args.withoutNulls()); err != nil {
		return nil, 0, invalidParams("%s", err.Error())
	}

	req := call.Build()
	log.Debug().Str("method", req.Method).Str("path", req.Path).Msg("netlify request")
	res := d.client.Execute(ctx, req)

	if res.Err != nil {
		log.Debug().Err(res.Err).Msg("netlify transport failure")
	}
	if res.Err == nil && res.StatusCode == http.StatusNotFound && spec.NotFoundIsCallerError {
		return nil, res.StatusCode, invalidParams("Site not found: %s", call.Subject)
	}
	if !res.OK() {
		return nil, res.StatusCode, internalError("Failed to %s: %s", spec.Operation, netlify.NormalizeError(res))
	}

	out, err := call.Shape(res.Body)
	if err != nil {
		log.Debug().Err(err).Msg("unexpected response body")
		return nil, res.StatusCode, internalError("Failed to %s: unexpected response body", spec.Operation)
	}
	return out, res.StatusCode, nil
}
