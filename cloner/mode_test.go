package cloner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weehong/appwrite-database-cloner/cloner"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"full", "structure", "data", "missing"} {
		m, err := cloner.ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, cloner.Mode(s), m)
	}

	_, err := cloner.ParseMode("everything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "everything"`)

	_, err = cloner.ParseMode("")
	require.Error(t, err)
}

func TestModeDerivations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode        cloner.Mode
		structure   bool
		data        bool
		incremental bool
		destructive bool
	}{
		{cloner.ModeFull, true, true, false, true},
		{cloner.ModeStructureOnly, true, false, false, true},
		{cloner.ModeDataOnly, false, true, false, false},
		{cloner.ModeMissingOnly, false, true, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.structure, tt.mode.ReplicateStructure(), "structure")
			assert.Equal(t, tt.data, tt.mode.ReplicateData(), "data")
			assert.Equal(t, tt.incremental, tt.mode.Incremental(), "incremental")
			assert.Equal(t, tt.destructive, tt.mode.Destructive(), "destructive")
		})
	}
}
