// Package orchestrate drives batch-wide image conversion: one task per
// entry, all dispatched before any is awaited, with per-entry failure
// isolation and a join that settles only once every task has.
package orchestrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/batch-image-converter/backend/internal/batch"
	"github.com/batch-image-converter/backend/internal/convert"
	"github.com/batch-image-converter/backend/internal/models"
)

// Notifier receives conversion progress events for a batch.
type Notifier interface {
	EntryStarted(batchID, entryID string)
	EntryFinished(batchID, entryID string, status models.EntryStatus, errMsg string)
	BatchFinished(batchID string, converted, failed int)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) EntryStarted(string, string)                              {}
func (NopNotifier) EntryFinished(string, string, models.EntryStatus, string) {}
func (NopNotifier) BatchFinished(string, int, int)                           {}

// Orchestrator converts every entry of a batch through a conversion
// service.
type Orchestrator struct {
	svc      convert.Service
	notifier Notifier
	defaults convert.Options
}

// New creates an orchestrator. The defaults supply the size and dimension
// constraints for every conversion; the target MIME always comes from the
// entry's target format. A nil notifier disables progress events.
func New(svc convert.Service, notifier Notifier, defaults convert.Options) *Orchestrator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orchestrator{svc: svc, notifier: notifier, defaults: defaults}
}

// ConvertAll converts every entry present in the store at call time, not
// just pending ones: a second dispatch re-converts the whole batch. All
// entries flip to converting synchronously before any task runs, every task
// proceeds independently of its siblings' failures, and the call returns
// only once all tasks have settled. Entry order is never disturbed; each
// task writes back to its own entry by id.
func (o *Orchestrator) ConvertAll(ctx context.Context, batchID string, store *batch.Store) {
	start := time.Now()
	snapshot := store.MarkDispatched()
	fmt.Printf("[Convert %s] Dispatching %d entries\n", shortID(batchID), len(snapshot))

	var (
		wg        sync.WaitGroup
		tally     sync.Mutex
		converted int
		failed    int
	)

	for _, e := range snapshot {
		wg.Add(1)
		o.notifier.EntryStarted(batchID, e.ID)

		go func(e *models.FileEntry) {
			defer wg.Done()

			result, err := o.convertEntry(ctx, e)

			if err != nil {
				fmt.Printf("[Convert %s] Entry %q failed: %v\n", shortID(batchID), e.OriginalName, err)
				store.UpdateEntry(e.ID, func(en *models.FileEntry) {
					en.Status = models.StatusError
					en.Error = err.Error()
				})
				o.notifier.EntryFinished(batchID, e.ID, models.StatusError, err.Error())
				tally.Lock()
				failed++
				tally.Unlock()
				return
			}

			now := time.Now()
			// Name and MIME are captured from the format the task dispatched
			// with; later target-format edits must not relabel the result.
			resultName := e.Stem() + e.TargetFormat.Extension()
			resultMIME := e.TargetFormat.MIME()
			store.UpdateEntry(e.ID, func(en *models.FileEntry) {
				en.Status = models.StatusConverted
				en.Result = result
				en.ResultName = resultName
				en.ResultMIME = resultMIME
				en.ResultSize = int64(len(result))
				en.ConvertedAt = &now
			})
			o.notifier.EntryFinished(batchID, e.ID, models.StatusConverted, "")
			tally.Lock()
			converted++
			tally.Unlock()
		}(e)
	}

	wg.Wait()
	store.MarkConverted()
	o.notifier.BatchFinished(batchID, converted, failed)
	fmt.Printf("[Convert %s] Done in %s: %d converted, %d failed\n",
		shortID(batchID), time.Since(start).Round(time.Millisecond), converted, failed)
}

// convertEntry runs one conversion with panic isolation; a panicking codec
// must not take down sibling tasks or the server.
func (o *Orchestrator) convertEntry(ctx context.Context, e *models.FileEntry) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()

	opts := convert.Options{
		SizeLimitMB:    o.defaults.SizeLimitMB,
		MaxDimensionPx: o.defaults.MaxDimensionPx,
		TargetMIME:     e.TargetFormat.MIME(),
	}
	return o.svc.Convert(ctx, e.Original, opts)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
