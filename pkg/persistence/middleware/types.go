// Package middleware decorates a ReportStore with transformations applied on Save.
package middleware

import "github.com/aretw0/plancheck/pkg/ports"

// Middleware allows wrapping a ReportStore to add behavior.
type Middleware func(ports.ReportStore) ports.ReportStore

// Chain wraps store with mws; the first middleware sees the report first.
func Chain(store ports.ReportStore, mws ...Middleware) ports.ReportStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// passthrough forwards everything but Save to next.
type passthrough struct {
	next ports.ReportStore
}
