package plans

import (
	"context"
	"errors"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source loads the plan catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns a Source serving a deep copy of plans.
func NewInMemSource(plans map[string]Plan) Source {
	return &inMemSource{plans: clonePlans(plans)}
}

func (s *inMemSource) Load(context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlans(s.plans), nil
}

type yamlCatalog struct {
	Plans []Plan `yaml:"plans"`
}

// NewYAMLSource reads a catalog document of the form
//
//	plans:
//	  - id: free
//	    name: Free
//	    limits: {clients: 10, invoices_per_month: 5, products: null}
//	    features: {csv_export: false}
//
// A null limit is unlimited. Plan ids must be unique.
func NewYAMLSource(r io.Reader) (Source, error) {
	var doc yamlCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, p := range doc.Plans {
		if _, dup := plans[p.ID]; dup {
			return nil, errors.Join(ErrInvalidPlanConfiguration, errors.New("duplicate plan id "+p.ID))
		}
		plans[p.ID] = p
	}
	return &inMemSource{plans: plans}, nil
}

func clonePlans(plans map[string]Plan) map[string]Plan {
	out := make(map[string]Plan, len(plans))
	for id, p := range plans {
		out[id] = p.clone()
	}
	return out
}
