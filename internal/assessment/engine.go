package assessment

import (
	"github.com/brightfold/readiness/internal/catalog"
)

// Engine bundles the form, the persistence gateway, and the lifecycle
// manager for one session. NewEngine runs snapshot recovery once: a valid,
// fresh cached snapshot repopulates the form, and a snapshot linked to an
// assessment id re-adopts that record.
type Engine struct {
	Catalog *catalog.Catalog
	Form    *Form
	Saver   *Saver
	Manager *Manager
}

func NewEngine(cat *catalog.Catalog, cache ProgressCache, store Store, mgrOpts []ManagerOpt, saverOpts ...SaverOpt) *Engine {
	mgr := NewManager(store, cat, mgrOpts...)
	saver := NewSaver(cache, mgr, saverOpts...)
	form := NewForm(cat)
	form.AttachSaver(saver)

	if data, id, ok := saver.Restore(); ok {
		form.Restore(data)
		if id != "" {
			mgr.Adopt(id)
		}
	}

	return &Engine{Catalog: cat, Form: form, Saver: saver, Manager: mgr}
}

// Reset clears the form, drops the cached snapshot, and detaches the
// active assessment. The durable record stays untouched.
func (e *Engine) Reset() {
	e.Form.Reset()
	e.Manager.ClearActive()
}

// Close flushes any pending autosave cycle.
func (e *Engine) Close() {
	e.Saver.Flush()
}
