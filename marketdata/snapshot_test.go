package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	fixture := loadFixture(t)
	dir := t.TempDir()

	for _, name := range []string{"qqq.json", "nested/qqq.json.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteSnapshot(path, fixture))

			got, err := ReadSnapshot(path)
			require.NoError(t, err)
			assert.Equal(t, fixture, got)
		})
	}

	plain, err := os.Stat(filepath.Join(dir, "qqq.json"))
	require.NoError(t, err)
	packed, err := os.Stat(filepath.Join(dir, "nested/qqq.json.xz"))
	require.NoError(t, err)
	assert.Less(t, packed.Size(), plain.Size())
}

func TestFileImporter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "qqq.json.xz")
	require.NoError(t, WriteSnapshot(path, loadFixture(t)))

	chains, err := FileImporter{Path: path}.FetchOptionChains(context.Background(), "QQQ", 0, 0)
	require.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, "QQQ", chains[1].Underlying)

	_, err = FileImporter{Path: filepath.Join(t.TempDir(), "missing.json")}.FetchOptionChains(context.Background(), "QQQ", 0, 0)
	assert.Error(t, err)
}

func TestParseChainsNoData(t *testing.T) {
	t.Parallel()

	_, err := ParseChains("QQQ", []byte(`{"s":"no_data"}`))
	assert.ErrorIs(t, err, ErrNoData)
}
