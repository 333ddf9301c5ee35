package sim

// A Middleware implements one slice of a component's per-tick behavior.
type Middleware interface {
	// Tick advances the middleware by one cycle. It returns true if progress
	// is made.
	Tick() bool
}

// MiddlewareHolder keeps the ordered middleware list of a component.
type MiddlewareHolder struct {
	middlewares []Middleware
}

// AddMiddleware appends a middleware to the holder.
func (h *MiddlewareHolder) AddMiddleware(m Middleware) {
	h.middlewares = append(h.middlewares, m)
}

// Middlewares returns the list of middleware.
func (h *MiddlewareHolder) Middlewares() []Middleware {
	return h.middlewares
}

// Tick runs every middleware for one cycle, in registration order. It
// returns true if any of them makes progress.
func (h *MiddlewareHolder) Tick() bool {
	progress := false

	for _, m := range h.middlewares {
		if m.Tick() {
			progress = true
		}
	}

	return progress
}
