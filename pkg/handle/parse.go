package handle

import (
	"strconv"
	"strings"

	"github.com/glorpus-work/kagglehub/pkg/errors"
)

const versionsSegment = "versions"

// Parse parses s as a handle of the given kind.
func Parse(kind Kind, s string) (Handle, error) {
	switch kind {
	case KindModel:
		return ParseModel(s)
	case KindDataset:
		return ParseDataset(s)
	case KindCompetition:
		return ParseCompetition(s)
	case KindNotebook:
		return ParseNotebook(s)
	case KindPackage:
		return ParsePackage(s)
	case KindUtilityScript:
		return ParseUtilityScript(s)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedHandleKind, "kind %q", kind)
	}
}

// ParseModel parses "owner/model/framework/variation" (unversioned) or
// "owner/model/framework/variation/version".
func ParseModel(s string) (Model, error) {
	parts, err := split(s)
	if err != nil {
		return Model{}, err
	}
	h := Model{}
	switch len(parts) {
	case 5:
		v, err := parseVersion(s, parts[4])
		if err != nil {
			return Model{}, err
		}
		h.Version = v
	case 4:
	default:
		return Model{}, errors.NewInvalidHandle(s, "model handles have 4 or 5 segments (owner/model/framework/variation[/version]), got %d", len(parts))
	}
	h.Owner, h.Model, h.Framework, h.Variation = parts[0], parts[1], parts[2], parts[3]
	return h, nil
}

// ParseDataset parses "owner/dataset", "owner/dataset/version" or
// "owner/dataset/versions/version".
func ParseDataset(s string) (Dataset, error) {
	owner, name, version, err := parseOwned(s, "dataset")
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Owner: owner, Dataset: name, Version: version}, nil
}

// ParseNotebook parses "owner/notebook", "owner/notebook/version" or
// "owner/notebook/versions/version".
func ParseNotebook(s string) (Notebook, error) {
	owner, name, version, err := parseOwned(s, "notebook")
	if err != nil {
		return Notebook{}, err
	}
	return Notebook{Owner: owner, Notebook: name, Version: version}, nil
}

// ParsePackage parses a package handle; the syntax is the notebook syntax.
func ParsePackage(s string) (Package, error) {
	nb, err := ParseNotebook(s)
	if err != nil {
		return Package{}, err
	}
	return Package{nb}, nil
}

// ParseUtilityScript parses a utility script handle; the syntax is the notebook syntax.
func ParseUtilityScript(s string) (UtilityScript, error) {
	nb, err := ParseNotebook(s)
	if err != nil {
		return UtilityScript{}, err
	}
	return UtilityScript{nb}, nil
}

// ParseCompetition takes s as the competition slug.
func ParseCompetition(s string) (Competition, error) {
	if s == "" {
		return Competition{}, errors.NewInvalidHandle(s, "competition slug cannot be empty")
	}
	if strings.Contains(s, "/") {
		return Competition{}, errors.NewInvalidHandle(s, "competition handles are a single slug")
	}
	return Competition{Competition: s}, nil
}

func parseOwned(s, what string) (owner, name string, version int, err error) {
	parts, err := split(s)
	if err != nil {
		return "", "", 0, err
	}
	switch {
	case len(parts) == 2:
	case len(parts) == 3:
		if version, err = parseVersion(s, parts[2]); err != nil {
			return "", "", 0, err
		}
	case len(parts) == 4 && parts[2] == versionsSegment:
		if version, err = parseVersion(s, parts[3]); err != nil {
			return "", "", 0, err
		}
	default:
		return "", "", 0, errors.NewInvalidHandle(s, "%s handles look like owner/%s[/versions]/version, got %d segments", what, what, len(parts))
	}
	return parts[0], parts[1], version, nil
}

func split(s string) ([]string, error) {
	parts := strings.Split(s, "/")
	for _, p := range parts {
		if p == "" {
			return nil, errors.NewInvalidHandle(s, "empty segment")
		}
	}
	return parts, nil
}

func parseVersion(s, segment string) (int, error) {
	v, err := strconv.Atoi(segment)
	if err != nil {
		return 0, errors.NewInvalidHandle(s, "version %q is not an integer", segment)
	}
	if v <= 0 {
		return 0, errors.NewInvalidHandle(s, "version must be a positive integer, got %d", v)
	}
	return v, nil
}
