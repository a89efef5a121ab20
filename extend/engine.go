/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extend

import (
	"context"
	"time"

	"github.com/flowkit/ipfix-extender/config"
	"github.com/go-logr/logr"

	ipfix "github.com/flowkit/ipfix-extender"
)

// Engine wires the Config model, the Template cache, the Extender and the
// Driver into a single per-instance pipeline, mirroring the original
// plugin's plugin_ctx: one Engine is created at init and torn down at
// destroy, per spec.md §7's destruction order (filters before the IE
// manager before the plugin) and SPEC_FULL.md §8's "per-instance
// destroy/teardown".
type Engine struct {
	cfg    *config.Config
	cache  *TemplateCache
	driver *Driver
	logger logr.Logger
}

// NewEngine builds an Engine over cfg. It logs the resolved
// max-extension-length and every configured candidate, mirroring the
// original plugin's startup diagnostics (SPEC_FULL.md §8).
func NewEngine(cfg *config.Config, logger logr.Logger) *Engine {
	logger.Info("maximum extension length per record", "bytes", cfg.MaxExtensionLen)
	for _, ext := range cfg.Extensions {
		for _, cand := range ext.Values {
			logger.Info("configured extension candidate", "id", ext.Name, "value", cand.Value, "expr", cand.Expr)
		}
	}

	cache := NewTemplateCache(logger)
	extender := NewExtender(cfg, cache, logger)
	driver := NewDriver(extender, logger)

	return &Engine{cfg: cfg, cache: cache, driver: driver, logger: logger}
}

// Process extends one decoded IPFIX message, returning its serialized
// replacement (nil if the result would be header-only, in which case the
// caller must discard it rather than forward it).
func (e *Engine) Process(ctx context.Context, msg *ipfix.Message, templateCache ipfix.TemplateCache) ([]byte, error) {
	start := time.Now()
	defer func() {
		ipfix.DurationMicroseconds.Observe(float64(time.Since(start).Microseconds()))
	}()
	ipfix.PacketsTotal.Inc()

	out, err := e.driver.Process(ctx, msg, templateCache)
	if err != nil {
		ipfix.ErrorsTotal.Inc()
	}
	return out, err
}

// Close tears down the Engine. There is currently nothing to release (the
// Template cache and compiled filters are garbage-collected Go values, not
// the teacher's malloc'd nodes), but the method exists so callers mirror
// the original's destroy_plugin_ctx ordering and have a place to hook
// future resource cleanup.
func (e *Engine) Close() error {
	return nil
}
