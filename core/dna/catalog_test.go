package dna

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Registered(t *testing.T) {
	c := DefaultCatalog()
	fwd, rc, err := c.Derive("Streptococcus")
	require.NoError(t, err)
	assert.Equal(t, "ATGCCATTAGTGCTAGCTGCTGCTGA", fwd)
	assert.Equal(t, "TCAGCAGCAGCTAGCACTAATGGCAT", rc)
}

func TestDerive_UnregisteredIsEmpty(t *testing.T) {
	fwd, rc, err := DefaultCatalog().Derive("Xeno")
	require.NoError(t, err)
	assert.Equal(t, "", fwd)
	assert.Equal(t, "", rc)
}

func TestDerive_PairIsReverseComplement(t *testing.T) {
	c := DefaultCatalog()
	for _, n := range c.Names() {
		fwd, rc, err := c.Derive(n)
		require.NoError(t, err)
		back, err := RevComp(rc)
		require.NoError(t, err)
		assert.Equal(t, fwd, back, n)
	}
}

func TestNewCatalog_NormalizesAndRejects(t *testing.T) {
	c, err := NewCatalog(map[string]string{"x": "  acgt \n"})
	require.NoError(t, err)
	assert.Equal(t, "ACGT", c.Sequence("x"))

	_, err = NewCatalog(map[string]string{"bad": "ACGZ"})
	require.ErrorIs(t, err, ErrInvalidSequence)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestLoadYAML(t *testing.T) {
	c, err := LoadYAML(strings.NewReader("Listeria: ATGAAA\n\"H. pylori\": ttt\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"H. pylori", "Listeria"}, c.Names())
	assert.Equal(t, "TTT", c.Sequence("H. pylori"))
}

func TestLoadFile_FASTA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "microbes.fa")
	require.NoError(t, os.WriteFile(path, []byte(">H. pylori\nATGG\nCCAT\n>E. coli\nATGC\n"), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	fwd, rc, err := c.Derive("H. pylori")
	require.NoError(t, err)
	assert.Equal(t, "ATGGCCAT", fwd)
	assert.Equal(t, "ATGGCCAT", rc)
}

func TestLoadFile_FASTAInvalidBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fasta")
	require.NoError(t, os.WriteFile(path, []byte(">x\nACGN\n"), 0o644))
	_, err := LoadFile(path)
	require.ErrorIs(t, err, ErrInvalidSequence)
}

func TestLoadFileOrDefault(t *testing.T) {
	c, err := LoadFileOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	_, err = LoadFileOrDefault(filepath.Join(t.TempDir(), "missing.fa"))
	require.Error(t, err)
}
