package scankit

import "github.com/scanify/scankit/core"

// Inner exposes the underlying batch worker for advanced use (e.g. direct
// queue access in tests).  Prefer the high-level API for normal usage.
func (p *Processor) Inner() *core.Worker { return p.worker }
