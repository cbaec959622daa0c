// core/dna/rc_test.go
package dna

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevCompKnownValue(t *testing.T) {
	got, err := RevComp("ATGCCATTAGTGCTAGCTGCTGCTGA")
	require.NoError(t, err)
	assert.Equal(t, "TCAGCAGCAGCTAGCACTAATGGCAT", got)
}

func TestRevCompSimple(t *testing.T) {
	got, err := RevComp("AGTC")
	require.NoError(t, err)
	assert.Equal(t, "GACT", got)
}

func TestRevCompEmpty(t *testing.T) {
	got, err := RevComp("")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRevCompInvolution(t *testing.T) {
	for name, seq := range builtin {
		once, err := RevComp(seq)
		require.NoError(t, err, name)
		twice, err := RevComp(once)
		require.NoError(t, err, name)
		assert.Equal(t, seq, twice, name)
	}
}

func TestRevCompRejectsNonACGT(t *testing.T) {
	for _, in := range []string{"ACGN", "acgt", "AC GT", "RYSW", "ACGU"} {
		_, err := RevComp(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrInvalidSequence), in)
	}

	_, err := RevComp("ACNT")
	var ib *InvalidBaseError
	require.ErrorAs(t, err, &ib)
	assert.Equal(t, 3, ib.Pos)
	assert.Equal(t, byte('N'), ib.Base)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(""))
	assert.NoError(t, Validate("GATTACA"))
	err := Validate("GATXACA")
	require.ErrorIs(t, err, ErrInvalidSequence)
	assert.Contains(t, err.Error(), "at 4")
}
