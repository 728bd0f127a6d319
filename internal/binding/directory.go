package binding

import (
	"fmt"
	"path"
	"strings"
	"sync"

	staveerr "github.com/tessro/stave/internal/errors"
)

// Element is anything that can be found by name in a Directory.
type Element interface {
	Name() string
}

// Directory is the set of live elements selectors resolve against.
type Directory struct {
	mu       sync.Mutex
	elements []Element
}

// NewDirectory creates a directory holding elements.
func NewDirectory(elements ...Element) *Directory {
	return &Directory{elements: elements}
}

// Add registers an element. Elements keep insertion order.
func (d *Directory) Add(e Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements = append(d.elements, e)
}

// Remove drops every element named name.
func (d *Directory) Remove(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.elements[:0]
	for _, e := range d.elements {
		if e.Name() != name {
			kept = append(kept, e)
		}
	}
	d.elements = kept
}

// Elements returns every element.
func (d *Directory) Elements() []Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Element(nil), d.elements...)
}

// Query returns the elements matching selector, in directory order and
// without duplicates. A selector is a comma-separated list of "*", "#name"
// or a glob pattern on the element name.
func (d *Directory) Query(selector string) ([]Element, error) {
	var patterns []string
	for _, p := range strings.Split(selector, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, strings.TrimPrefix(p, "#"))
		}
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, &staveerr.ValidationError{Field: "selector", Value: selector}
		}
	}

	var out []Element
	for _, e := range d.Elements() {
		for _, p := range patterns {
			if ok, _ := path.Match(p, e.Name()); ok {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// nonSurfaceError reports a selector match that cannot be bound.
type nonSurfaceError struct {
	selector string
	name     string
}

func (e *nonSurfaceError) Error() string {
	return fmt.Sprintf("selector %s matched non-visualizer element %q", e.selector, e.name)
}
