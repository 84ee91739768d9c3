package runner

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch processes dir once, then keeps reconciling files as they appear.
// Events are debounced so half-written PDFs are not picked up. Blocks until
// ctx is cancelled or the watcher dies.
func (r *Runner) Watch(ctx context.Context, dir string) error {
	if _, err := r.Run(dir); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("runner: watching %s (debounced)", dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isInvoiceExt(name) {
				continue
			}
			pending[name] = time.Now()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("runner: watch error: %v", err)
		case now := <-ticker.C:
			var stable []string
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond {
					stable = append(stable, name)
					delete(pending, name)
				}
			}
			if len(stable) == 0 {
				continue
			}
			sort.Strings(stable)
			stable, skipped := r.filterIngested(dir, stable)
			if len(stable) == 0 {
				continue
			}
			rep := r.RunFiles(dir, stable)
			rep.Skipped = skipped
			if err := r.Persist(dir, rep, stable); err != nil {
				log.Printf("runner: persist watch batch: %v", err)
				continue
			}
			for _, warn := range rep.Warnings {
				log.Printf("runner: %s", warn)
			}
			log.Printf("runner: processed %d file(s), %d row(s)", len(stable), len(rep.Rows))
		}
	}
}
