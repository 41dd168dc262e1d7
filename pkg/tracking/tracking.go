// Package tracking records the handles a process resolved so that they can
// be exported as a requirements file.
package tracking

import (
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/fsutil"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// FormatVersion is written to every requirements file.
const FormatVersion = "0.1"

// Datasource is one entry of a requirements file.
type Datasource struct {
	Type string `yaml:"type"`
	Ref  string `yaml:"ref"`
}

// Requirements is the document written by WriteRequirements.
type Requirements struct {
	FormatVersion string       `yaml:"format_version"`
	Datasources   []Datasource `yaml:"datasources"`
}

// Tracker is a set of handles. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	handles map[handle.Handle]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{handles: make(map[handle.Handle]struct{})}
}

// Record adds h to the set.
func (t *Tracker) Record(h handle.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handles[h] = struct{}{}
}

// Handles returns the recorded handles ordered by kind, then handle string.
func (t *Tracker) Handles() []handle.Handle {
	t.mu.Lock()
	out := make([]handle.Handle, 0, len(t.handles))
	for h := range t.handles {
		out = append(out, h)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind() != out[j].Kind() {
			return out[i].Kind() < out[j].Kind()
		}
		return out[i].String() < out[j].String()
	})
	return out
}

// Requirements builds the requirements document for the recorded handles.
func (t *Tracker) Requirements() Requirements {
	req := Requirements{FormatVersion: FormatVersion, Datasources: []Datasource{}}
	for _, h := range t.Handles() {
		req.Datasources = append(req.Datasources, Datasource{Type: string(h.Kind()), Ref: h.String()})
	}
	return req
}

// WriteRequirements writes the requirements document as YAML to path.
func (t *Tracker) WriteRequirements(path string) error {
	data, err := yaml.Marshal(t.Requirements())
	if err != nil {
		return errors.Wrap(err, "failed to encode requirements")
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
