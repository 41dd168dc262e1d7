package kagglecache

import "github.com/glorpus-work/kagglehub/pkg/handle"

// Attach request bodies. Version fields are omitted for unversioned handles so
// that the proxy picks the latest version.

type modelRef struct {
	OwnerSlug     string `json:"ownerSlug"`
	ModelSlug     string `json:"modelSlug"`
	Framework     string `json:"framework"`
	InstanceSlug  string `json:"instanceSlug"`
	VersionNumber int    `json:"versionNumber,omitempty"`
}

type datasetRef struct {
	OwnerSlug     string `json:"ownerSlug"`
	DatasetSlug   string `json:"datasetSlug"`
	VersionNumber int    `json:"versionNumber,omitempty"`
}

type competitionRef struct {
	CompetitionSlug string `json:"competitionSlug"`
}

type kernelRef struct {
	OwnerSlug     string `json:"ownerSlug"`
	KernelSlug    string `json:"kernelSlug"`
	VersionNumber int    `json:"versionNumber,omitempty"`
}

func attachModel(h handle.Model) any {
	return map[string]modelRef{"modelRef": {
		OwnerSlug:     h.Owner,
		ModelSlug:     h.Model,
		Framework:     h.Framework,
		InstanceSlug:  h.Variation,
		VersionNumber: h.Version,
	}}
}

func attachDataset(h handle.Dataset) any {
	return map[string]datasetRef{"datasetRef": {OwnerSlug: h.Owner, DatasetSlug: h.Dataset, VersionNumber: h.Version}}
}

func attachCompetition(h handle.Competition) any {
	return map[string]competitionRef{"competitionRef": {CompetitionSlug: h.Competition}}
}

func attachNotebook(h handle.Notebook) any {
	return map[string]kernelRef{"kernelRef": {OwnerSlug: h.Owner, KernelSlug: h.Notebook, VersionNumber: h.Version}}
}
