package tracking

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/kagglehub/pkg/handle"
)

func TestTracker_HandlesSortedAndDeduplicated(t *testing.T) {
	tr := NewTracker()
	tr.Record(handle.Model{Owner: "acme", Model: "net", Framework: "tf", Variation: "base", Version: 2})
	tr.Record(handle.Dataset{Owner: "z", Dataset: "d"})
	tr.Record(handle.Dataset{Owner: "a", Dataset: "d", Version: 1})
	tr.Record(handle.Dataset{Owner: "z", Dataset: "d"})

	got := tr.Handles()
	require.Len(t, got, 3)
	assert.Equal(t, "a/d/versions/1", got[0].String())
	assert.Equal(t, "z/d", got[1].String())
	assert.Equal(t, handle.KindModel, got[2].Kind())
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			tr.Record(handle.Notebook{Owner: "o", Notebook: "n", Version: v%5 + 1})
		}(i)
	}
	wg.Wait()
	assert.Len(t, tr.Handles(), 5)
}

func TestTracker_WriteRequirements(t *testing.T) {
	tr := NewTracker()
	tr.Record(handle.Competition{Competition: "titanic"})
	tr.Record(handle.Package{Notebook: handle.Notebook{Owner: "o", Notebook: "pkg", Version: 3}})

	path := filepath.Join(t.TempDir(), "out", "kagglehub_requirements.yaml")
	require.NoError(t, tr.WriteRequirements(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Requirements
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, Requirements{
		FormatVersion: "0.1",
		Datasources: []Datasource{
			{Type: "competition", Ref: "titanic"},
			{Type: "package", Ref: "o/pkg/versions/3"},
		},
	}, doc)
}

func TestTracker_EmptyRequirements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yaml")
	require.NoError(t, NewTracker().WriteRequirements(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format_version: \"0.1\"")
	assert.Contains(t, string(data), "datasources: []")
}
