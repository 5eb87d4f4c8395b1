package dispatch

import "context"

// Handle tracks one detached background invocation. There is no supervision
// and no cancellation once started; Wait is the only join point.
type Handle struct {
	Engine string
	Model  string

	done chan struct{}
	res  Result
	err  error
}

// Start resolves and validates synchronously (so configuration mistakes
// still fail fast), then runs the subprocess in the background.
func (d *Dispatcher) Start(req Request) (*Handle, error) {
	engineID, model, err := d.resolve(req)
	if err != nil {
		return nil, err
	}

	h := &Handle{Engine: engineID, Model: model, done: make(chan struct{})}
	d.progress.append(map[string]any{
		"event":  "dispatch_background_start",
		"engine": engineID,
		"model":  model,
	})
	go func() {
		defer close(h.done)
		h.res, h.err = d.invokeOnce(context.Background(), engineID, model, req)
		ev := map[string]any{
			"event":  "dispatch_background_done",
			"engine": engineID,
		}
		if h.err != nil {
			ev["error"] = h.err.Error()
		}
		d.progress.append(ev)
	}()
	return h, nil
}

// Wait blocks until the background invocation finishes.
func (h *Handle) Wait() (Result, error) {
	<-h.done
	return h.res, h.err
}

// Done reports completion without blocking.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
