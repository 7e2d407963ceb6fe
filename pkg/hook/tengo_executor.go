package hook

import (
	"context"
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
)

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the script registered for hookType. A script signals failure by
// setting a top-level err variable to an error value or a non-empty string.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hc HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "strings", "text", "times"))

	_ = scriptInstance.Add("station", hc.Station)
	_ = scriptInstance.Add("year", hc.Year)
	_ = scriptInstance.Add("doy", hc.DOY)
	_ = scriptInstance.Add("url", hc.URL)
	_ = scriptInstance.Add("path", hc.Path)
	for k, v := range hc.Vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("%s: variable %s: %v: %w", hookType, k, err, pkgerrors.ErrHook)
		}
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", hookType, err, pkgerrors.ErrHook)
	}

	errVar := compiled.Get("err")
	if errVar != nil {
		switch v := errVar.Value().(type) {
		case error:
			return fmt.Errorf("%s: %v: %w", hookType, v, pkgerrors.ErrHook)
		case *tengo.Error:
			return fmt.Errorf("%s: %s: %w", hookType, v.String(), pkgerrors.ErrHook)
		case string:
			if v != "" {
				return fmt.Errorf("%s: %s: %w", hookType, v, pkgerrors.ErrHook)
			}
		}
	}
	return nil
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
