package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

func TestMergeDisjointArchives(t *testing.T) {
	a := []models.ZipEntry{{Name: "a.txt", Content: "A"}}
	b := []models.ZipEntry{{Name: "b.txt", Content: "B"}}

	out, err := Merge([][]models.ZipEntry{a, b}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a.txt", out[0].Name)
	assert.Equal(t, "b.txt", out[1].Name)
}

func TestMergeUnresolvedCollisionFails(t *testing.T) {
	a := []models.ZipEntry{{Name: "shared.txt", Content: "A"}}
	b := []models.ZipEntry{{Name: "shared.txt", Content: "B"}}

	out, err := Merge([][]models.ZipEntry{a, b}, nil)
	assert.Nil(t, out, "a single unresolved collision fails the whole merge")

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"shared.txt"}, conflict.Paths)
}

func TestMergeUnknownStrategyFails(t *testing.T) {
	a := []models.ZipEntry{{Name: "shared.txt", Content: "A"}}
	b := []models.ZipEntry{{Name: "shared.txt", Content: "B"}}

	_, err := Merge([][]models.ZipEntry{a, b},
		map[string]string{"shared.txt": "newest"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict, "an unknown strategy counts as unresolved")
}

func TestMergeFirstAndLast(t *testing.T) {
	a := []models.ZipEntry{{Name: "shared.txt", Content: "A"}}
	b := []models.ZipEntry{{Name: "shared.txt", Content: "B"}}
	c := []models.ZipEntry{{Name: "shared.txt", Content: "C"}}

	out, err := Merge([][]models.ZipEntry{a, b, c},
		map[string]string{"shared.txt": models.MergeFirst})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Content)

	out, err = Merge([][]models.ZipEntry{a, b, c},
		map[string]string{"shared.txt": models.MergeLast})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "C", out[0].Content)
}

func TestMergeRenameSuffixesArchiveIndex(t *testing.T) {
	a := []models.ZipEntry{{Name: "dir/shared.txt", Content: "A"}}
	b := []models.ZipEntry{{Name: "dir/shared.txt", Content: "B"}}

	out, err := Merge([][]models.ZipEntry{a, b},
		map[string]string{"dir/shared.txt": models.MergeRename})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "dir/shared_1.txt", out[0].Name)
	assert.Equal(t, "A", out[0].Content)
	assert.Equal(t, "dir/shared_2.txt", out[1].Name)
	assert.Equal(t, "B", out[1].Content)
}

func TestMergeFoldersCollapse(t *testing.T) {
	a := []models.ZipEntry{
		{Name: "assets", IsFolder: true},
		{Name: "assets/a.png", Content: "A"},
	}
	b := []models.ZipEntry{
		{Name: "assets", IsFolder: true},
		{Name: "assets/b.png", Content: "B"},
	}

	// No resolution needed: colliding folders always collapse
	out, err := Merge([][]models.ZipEntry{a, b}, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "assets", out[0].Name)
	assert.True(t, out[0].IsFolder)
}

func TestMergePreservesFirstSeenOrder(t *testing.T) {
	a := []models.ZipEntry{
		{Name: "one.txt", Content: "1"},
		{Name: "two.txt", Content: "2"},
	}
	b := []models.ZipEntry{
		{Name: "three.txt", Content: "3"},
		{Name: "one.txt", Content: "1b"},
	}

	out, err := Merge([][]models.ZipEntry{a, b},
		map[string]string{"one.txt": models.MergeLast})
	require.NoError(t, err)
	names := []string{out[0].Name, out[1].Name, out[2].Name}
	assert.Equal(t, []string{"one.txt", "two.txt", "three.txt"}, names)
	assert.Equal(t, "1b", out[0].Content)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := []models.ZipEntry{{Name: "f.txt", Content: "A"}}
	b := []models.ZipEntry{{Name: "f.txt", Content: "B"}}

	_, err := Merge([][]models.ZipEntry{a, b},
		map[string]string{"f.txt": models.MergeRename})
	require.NoError(t, err)
	assert.Equal(t, "f.txt", a[0].Name)
	assert.Equal(t, "f.txt", b[0].Name)
}
