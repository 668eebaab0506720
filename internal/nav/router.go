// Package nav tracks which page a CLI command runs as and where the API
// client sent the user when the session ended.
package nav

import "sync"

// Router is the CLI navigator. Commands set the current page before running;
// Navigate only records the target since a terminal cannot change pages.
type Router struct {
	mu         sync.Mutex
	current    string
	redirected string
	history    []string
}

// NewRouter creates a router positioned on page
func NewRouter(page string) *Router {
	return &Router{current: page}
}

func (r *Router) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// SetCurrent moves the router to page and forgets earlier redirects
func (r *Router) SetCurrent(page string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = page
	r.redirected = ""
}

func (r *Router) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirected = path
	r.history = append(r.history, path)
}

// Redirected returns the last navigation target since SetCurrent
func (r *Router) Redirected() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirected, r.redirected != ""
}

// History lists every navigation target in order
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
