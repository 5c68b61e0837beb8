package store

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/folio/internal/log"
)

// Writer serializes store writes on a background goroutine. Writes for
// the same id coalesce: a rapid burst of updates collapses into one
// merged database write carrying the latest state. UI commands therefore
// never block on the database.
type Writer struct {
	store Store

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string]*pendingWrite
	order   []string
	busy    bool
	closed  bool

	wake chan struct{}
	done chan struct{}
	stop sync.Once
}

type pendingWrite struct {
	fields  Fields
	payload []byte
	opts    PutOptions
	remove  bool
}

// NewWriter starts a writer draining into s.
func NewWriter(s Store) *Writer {
	w := &Writer{
		store:   s,
		pending: make(map[string]*pendingWrite),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

// Put schedules a merged write of fields for id. Only fields present in
// the map are touched; the stored payload is preserved.
func (w *Writer) Put(id string, fields Fields) {
	w.enqueue(id, fields, nil, PutOptions{})
}

// PutWithPayload schedules a write that also replaces the payload.
func (w *Writer) PutWithPayload(id string, fields Fields, payload []byte) {
	w.enqueue(id, fields, payload, PutOptions{IncludePayload: true})
}

// Delete schedules removal of the entry for id, discarding any write
// still queued for it.
func (w *Writer) Delete(id string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if _, queued := w.pending[id]; !queued {
		w.order = append(w.order, id)
	}
	w.pending[id] = &pendingWrite{remove: true}
	w.mu.Unlock()
	w.signal()
}

func (w *Writer) enqueue(id string, fields Fields, payload []byte, opts PutOptions) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	p, queued := w.pending[id]
	if !queued || p.remove {
		if !queued {
			w.order = append(w.order, id)
		}
		p = &pendingWrite{fields: Fields{}}
		w.pending[id] = p
	}
	p.fields = MergeFields(p.fields, fields)
	if opts.IncludePayload {
		p.payload = payload
		p.opts.IncludePayload = true
	}
	w.mu.Unlock()
	w.signal()
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) loop() {
	for {
		select {
		case <-w.done:
			w.drain()
			return
		case <-w.wake:
			w.drain()
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			w.busy = false
			w.cond.Broadcast()
			w.mu.Unlock()
			return
		}
		w.busy = true
		id := w.order[0]
		w.order = w.order[1:]
		p := w.pending[id]
		delete(w.pending, id)
		w.mu.Unlock()

		if p == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var err error
		if p.remove {
			err = w.store.Remove(ctx, id)
		} else {
			err = w.store.Put(ctx, id, p.fields, p.payload, p.opts)
		}
		cancel()
		if err != nil {
			log.ErrorErr(log.CatStore, "scheduled write failed", err, "id", id)
		}
	}
}

// Flush blocks until every queued write has been applied or ctx expires.
func (w *Writer) Flush(ctx context.Context) error {
	w.signal()

	// Wake the waiter on ctx expiry so it never stays parked in Wait.
	stopWake := context.AfterFunc(ctx, w.cond.Broadcast)
	defer stopWake()

	flushed := make(chan struct{})
	go func() {
		w.mu.Lock()
		for (len(w.order) > 0 || w.busy) && ctx.Err() == nil {
			w.cond.Wait()
		}
		w.mu.Unlock()
		close(flushed)
	}()

	select {
	case <-flushed:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes outstanding writes and stops the background goroutine.
// Further writes are dropped.
func (w *Writer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = w.Flush(ctx)

	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.stop.Do(func() { close(w.done) })
	return nil
}
