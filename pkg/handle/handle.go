// Package handle models the addresses of remote resources: models, datasets,
// competitions, notebooks and the notebook-backed packages and utility scripts.
//
// Handles are plain comparable values. They are never mutated after parsing;
// WithVersion returns a new handle. Equality is by field tuple, so handles can
// be used as map keys.
package handle

import (
	"os"
	"strings"
)

// Kind identifies a resource kind.
type Kind string

// Resource kinds.
const (
	KindModel         Kind = "model"
	KindDataset       Kind = "dataset"
	KindCompetition   Kind = "competition"
	KindNotebook      Kind = "notebook"
	KindPackage       Kind = "package"
	KindUtilityScript Kind = "utility_script"
)

const (
	// EndpointEnv overrides the platform endpoint used for web URLs.
	EndpointEnv = "KAGGLE_API_ENDPOINT"
	// DefaultEndpoint is the platform endpoint used when EndpointEnv is unset.
	DefaultEndpoint = "https://www.kaggle.com"
)

// Handle is implemented by every resource handle. The set of implementations
// is closed: only types in this package satisfy it.
type Handle interface {
	// Kind returns the resource kind.
	Kind() Kind
	// String returns the canonical handle string, parseable by the matching Parse function.
	String() string
	// URL returns the human-readable web address of the resource.
	URL() string

	isHandle()
}

// Endpoint returns the platform endpoint without a trailing slash.
func Endpoint() string {
	if e := os.Getenv(EndpointEnv); e != "" {
		return strings.TrimRight(e, "/")
	}
	return DefaultEndpoint
}
