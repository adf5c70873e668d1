// Package navigation tracks the path the UI should display.
package navigation

import (
	"strings"

	"github.com/raysh454/buzzclient/internal/observable"
)

// Root is where unauthenticated users are sent.
const Root = "/"

// Router holds the current navigation target. The UI subscribes and routes
// whenever it changes.
type Router struct {
	path *observable.Value[string]
}

// NewRouter returns a Router with an empty target.
func NewRouter() *Router {
	return &Router{path: observable.New("")}
}

// Goto sets the navigation target. Paths without a leading slash get one.
func (r *Router) Goto(path string) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	r.path.Set(path)
}

// Current returns the last target passed to Goto, or "" if none.
func (r *Router) Current() string {
	return r.path.Get()
}

// Subscribe calls fn with the current target and again on every Goto.
func (r *Router) Subscribe(fn func(path string)) (unsubscribe func()) {
	return r.path.Subscribe(fn)
}
