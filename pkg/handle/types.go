package handle

import (
	"fmt"
	"strconv"
)

// Model addresses one variation of a model, optionally pinned to a version.
type Model struct {
	Owner     string
	Model     string
	Framework string
	Variation string
	Version   int // 0 means unversioned: resolve to latest at call time
}

func (Model) Kind() Kind { return KindModel }
func (Model) isHandle()  {}

// IsVersioned reports whether the handle is pinned to a version.
func (h Model) IsVersioned() bool { return h.Version > 0 }

// WithVersion returns a copy of h pinned to version.
func (h Model) WithVersion(version int) Model {
	h.Version = version
	return h
}

func (h Model) String() string {
	base := fmt.Sprintf("%s/%s/%s/%s", h.Owner, h.Model, h.Framework, h.Variation)
	if h.IsVersioned() {
		return base + "/" + strconv.Itoa(h.Version)
	}
	return base
}

func (h Model) URL() string {
	return Endpoint() + "/models/" + h.String()
}

// Dataset addresses a dataset, optionally pinned to a version.
type Dataset struct {
	Owner   string
	Dataset string
	Version int
}

func (Dataset) Kind() Kind { return KindDataset }
func (Dataset) isHandle()  {}

// IsVersioned reports whether the handle is pinned to a version.
func (h Dataset) IsVersioned() bool { return h.Version > 0 }

// WithVersion returns a copy of h pinned to version.
func (h Dataset) WithVersion(version int) Dataset {
	h.Version = version
	return h
}

func (h Dataset) String() string {
	base := h.Owner + "/" + h.Dataset
	if h.IsVersioned() {
		return base + "/versions/" + strconv.Itoa(h.Version)
	}
	return base
}

func (h Dataset) URL() string {
	return Endpoint() + "/datasets/" + h.String()
}

// Competition addresses a competition by slug. Competitions are not versioned.
type Competition struct {
	Competition string
}

func (Competition) Kind() Kind { return KindCompetition }
func (Competition) isHandle()  {}

func (h Competition) String() string { return h.Competition }

func (h Competition) URL() string {
	return Endpoint() + "/competitions/" + h.Competition
}

// Notebook addresses the output of a notebook, optionally pinned to a version.
type Notebook struct {
	Owner    string
	Notebook string
	Version  int
}

func (Notebook) Kind() Kind { return KindNotebook }
func (Notebook) isHandle()  {}

// IsVersioned reports whether the handle is pinned to a version.
func (h Notebook) IsVersioned() bool { return h.Version > 0 }

// WithVersion returns a copy of h pinned to version.
func (h Notebook) WithVersion(version int) Notebook {
	h.Version = version
	return h
}

func (h Notebook) String() string {
	base := h.Owner + "/" + h.Notebook
	if h.IsVersioned() {
		return base + "/versions/" + strconv.Itoa(h.Version)
	}
	return base
}

func (h Notebook) URL() string {
	return Endpoint() + "/code/" + h.String()
}

// Package is a notebook whose output is a package. It is stored and resolved
// as its notebook.
type Package struct {
	Notebook
}

func (Package) Kind() Kind { return KindPackage }

// WithVersion returns a copy of h pinned to version.
func (h Package) WithVersion(version int) Package {
	return Package{h.Notebook.WithVersion(version)}
}

// UtilityScript is a notebook published as a utility script.
type UtilityScript struct {
	Notebook
}

func (UtilityScript) Kind() Kind { return KindUtilityScript }

// WithVersion returns a copy of h pinned to version.
func (h UtilityScript) WithVersion(version int) UtilityScript {
	return UtilityScript{h.Notebook.WithVersion(version)}
}
