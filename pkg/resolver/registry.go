package resolver

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// Registry holds the resolvers of one handle kind. Resolvers added later take
// precedence over earlier ones.
type Registry[H handle.Handle] struct {
	resolvers []Resolver[H]
}

// NewRegistry creates a registry with the given resolvers in registration order.
func NewRegistry[H handle.Handle](resolvers ...Resolver[H]) *Registry[H] {
	r := &Registry[H]{}
	for _, res := range resolvers {
		r.Add(res)
	}
	return r
}

// Add registers a resolver with the highest precedence so far.
func (r *Registry[H]) Add(res Resolver[H]) {
	r.resolvers = append(r.resolvers, res)
}

// Len returns the number of registered resolvers.
func (r *Registry[H]) Len() int { return len(r.resolvers) }

// Resolve walks the resolvers from the most recently added to the first and
// delegates to the first one that supports (h, path). Only IsSupported
// rejections wrapping ErrNotSupported move on to the next resolver.
func (r *Registry[H]) Resolve(ctx context.Context, h H, path string, opts Options) (string, error) {
	var rejected []string
	for i := len(r.resolvers) - 1; i >= 0; i-- {
		res := r.resolvers[i]
		err := res.IsSupported(ctx, h, path)
		if err == nil {
			logger.Debug("Resolving", logger.Fields{"handle": h.String(), "resolver": res.Name()})
			return res.Resolve(ctx, h, path, opts)
		}
		if !stderrors.Is(err, errors.ErrNotSupported) {
			return "", err
		}
		logger.Debug("Resolver not applicable", logger.Fields{"handle": h.String(), "resolver": res.Name(), "reason": err.Error()})
		rejected = append(rejected, fmt.Sprintf("%s (%v)", res.Name(), err))
	}

	tried := "none registered"
	if len(rejected) > 0 {
		tried = strings.Join(rejected, ", ")
	}
	return "", fmt.Errorf("%w for %s %s; tried: %s", errors.ErrNoResolver, h.Kind(), h, tried)
}
