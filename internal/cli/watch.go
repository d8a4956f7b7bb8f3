package cli

import (
	"context"
	"time"

	"github.com/JanMattner/cuevox/pkg/adapters/file"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
)

// settle delays a reload so that editors finish writing.
const settle = 100 * time.Millisecond

// Watch reloads the items when the item source reports a change and the
// rules when the rules file changes, until ctx is done. onChange is called
// with the changed path before each reload.
func (a *App) Watch(ctx context.Context, onChange func(path string)) error {
	if w, ok := a.Source.(ports.Watchable); ok {
		ch, err := w.Watch(ctx)
		if err != nil {
			return err
		}
		go a.reloadOn(ctx, ch, onChange, a.ReloadItems)
	} else {
		a.Logger.Debug("Item source cannot be watched", "source", a.Config.Items.Source)
	}

	if a.Config.Rules != "" {
		ch, err := file.Watch(ctx, a.Config.Rules)
		if err != nil {
			return err
		}
		go a.reloadOn(ctx, ch, onChange, func(context.Context) error {
			a.mu.Lock()
			defer a.mu.Unlock()
			return a.LoadRules()
		})
	}
	return nil
}

func (a *App) reloadOn(ctx context.Context, ch <-chan string, onChange func(string), reload func(context.Context) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-ch:
			if !ok {
				return
			}
			a.Logger.Info("Change detected, triggering reload", "path", path)
			if onChange != nil {
				onChange(path)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(settle):
			}
			if err := reload(ctx); err != nil {
				a.Logger.Error("Reload failed, keeping previous state", "path", path, "err", err)
			}
		}
	}
}

// Serialized returns the interpreter guarded by the lock taken for rule
// reloads. Hosts running Watch must use it.
func (a *App) Serialized() ports.Interpreter {
	return &lockedInterpreter{app: a}
}

type lockedInterpreter struct {
	app *App
}

func (l *lockedInterpreter) InterpretUtterance(ctx context.Context, text string) (domain.Annotation, error) {
	l.app.mu.Lock()
	defer l.app.mu.Unlock()
	return l.app.Interpreter.InterpretUtterance(ctx, text)
}

func (l *lockedInterpreter) Rules() []ports.RuleInfo {
	l.app.mu.Lock()
	defer l.app.mu.Unlock()
	return l.app.Interpreter.Rules()
}
