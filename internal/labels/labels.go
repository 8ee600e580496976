// Package labels resolves label names to display styles using the
// category configuration, and holds the highlight color for the
// selection in progress.
package labels

import (
	"sort"
	"strings"
)

// Category is one configured label.
type Category struct {
	Name    string
	Color   RGB
	Caption string
}

// Style is what a renderer needs to draw a label.
type Style struct {
	Color   RGB
	Caption string
	// Known is false when the fallback was used.
	Known bool
}

// Resolver maps label names to styles. Lookup is exact and case-sensitive.
type Resolver struct {
	byName    map[string]Category
	order     []string
	undefined Style
}

// NewResolver builds a resolver from categories. undefinedColor and
// undefinedCaption are returned for every label without a category.
// A later category with the same name replaces an earlier one.
func NewResolver(categories []Category, undefinedColor RGB, undefinedCaption string) *Resolver {
	r := &Resolver{
		byName:    make(map[string]Category, len(categories)),
		undefined: Style{Color: undefinedColor, Caption: undefinedCaption},
	}
	for _, c := range categories {
		if _, seen := r.byName[c.Name]; !seen {
			r.order = append(r.order, c.Name)
		}
		r.byName[c.Name] = c
	}
	return r
}

// Resolve never fails: unknown, empty or unconfigured labels get the
// undefined style. A nil resolver resolves everything to the zero style.
func (r *Resolver) Resolve(label string) Style {
	if r == nil {
		return Style{}
	}
	if c, ok := r.byName[label]; ok && label != "" {
		return Style{Color: c.Color, Caption: c.Caption, Known: true}
	}
	return r.undefined
}

// Undefined returns the fallback style.
func (r *Resolver) Undefined() Style {
	if r == nil {
		return Style{}
	}
	return r.undefined
}

// Names lists configured labels in configuration order.
func (r *Resolver) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Next returns the label after current in configuration order, wrapping
// around. step may be negative. An unknown current starts from the first.
func (r *Resolver) Next(current string, step int) string {
	names := r.Names()
	if len(names) == 0 {
		return current
	}
	idx := -1
	for i, n := range names {
		if n == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step < 0 {
			return names[len(names)-1]
		}
		return names[0]
	}
	n := len(names)
	return names[((idx+step)%n+n)%n]
}

// Categories returns the configured categories in configuration order.
func (r *Resolver) Categories() []Category {
	names := r.Names()
	out := make([]Category, len(names))
	for i, n := range names {
		out[i] = r.byName[n]
	}
	return out
}

// Sorted returns the configured categories sorted by name, for listings.
func (r *Resolver) Sorted() []Category {
	if r == nil {
		return nil
	}
	out := make([]Category, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
