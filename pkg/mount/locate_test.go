package mount

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "titanic", "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "titanic", "data", "train.csv"), []byte("a"), 0o644))
	opts := WaitOptions{Interval: 10 * time.Millisecond, Timeout: time.Second}

	tests := []struct {
		name    string
		slug    string
		subPath string
		want    string
		wantErr error
	}{
		{name: "mount root", slug: "titanic", want: filepath.Join(base, "titanic")},
		{name: "sub path", slug: "titanic", subPath: "data/train.csv", want: filepath.Join(base, "titanic", "data", "train.csv")},
		{name: "missing sub path", slug: "titanic", subPath: "test.csv", wantErr: errors.ErrPathNotInMount},
		{name: "escaping sub path", slug: "titanic", subPath: "../other", wantErr: errors.ErrInvalidPath},
		{name: "escaping slug", slug: "../etc", wantErr: errors.ErrBackend},
		{name: "empty slug", slug: "", wantErr: errors.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(context.Background(), base, tt.slug, tt.subPath, opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocate_MissingSubPathNamesMountRoot(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "ds"), 0o755))

	_, err := Locate(context.Background(), base, "ds", "nope.txt", WaitOptions{Timeout: time.Second})
	require.ErrorIs(t, err, errors.ErrPathNotInMount)
	assert.Contains(t, err.Error(), filepath.Join(base, "ds"))
}
