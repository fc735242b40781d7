package save_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maidenless/sl2edit/save"
	"github.com/maidenless/sl2edit/save/savetest"
)

func TestLoadContainerRoundTrip(t *testing.T) {
	buf := newTarnishedContainer(t)
	path := filepath.Join(t.TempDir(), "ER0000.sl2")
	require.NoError(t, save.WriteContainerAtomically(path, buf))

	c, err := save.LoadContainer(path)
	require.NoError(t, err)
	assert.Equal(t, buf, c.Buf())

	slots, err := save.Slots(c)
	require.NoError(t, err)
	slot3 := save.FindSlot(slots, 3)
	require.NotNil(t, slot3)
	assert.Equal(t, "Tarnished", slot3.Summary.CharacterName)

	// No temp files are left behind next to the save.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadContainerMissingFile(t *testing.T) {
	_, err := save.LoadContainer(filepath.Join(t.TempDir(), "nope.sl2"))
	assert.Error(t, err)
}

func TestLoadContainerGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.sl2")
	require.NoError(t, os.WriteFile(path, []byte("not a container"), 0644))
	_, err := save.LoadContainer(path)
	assert.Error(t, err)
}

func TestWriteContainerAtomicallyReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ER0000.sl2")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0644))

	buf := savetest.NewContainer()
	require.NoError(t, save.WriteContainerAtomically(path, buf))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf, got)
}
