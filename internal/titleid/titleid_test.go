package titleid_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"wiivcinjector/internal/titleid"
)

func TestBuild(t *testing.T) {
	m, err := titleid.Build(strings.NewReader("AAAE01,AAAP01,AAAJ01\nBBBE01, BBBP01\nCCCE01\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"AAAP01", "AAAJ01"}, m.Alternates("AAAE01"))
	require.Equal(t, []string{"AAAE01", "AAAP01"}, m.Alternates("aaaj01"))
	require.Equal(t, []string{"BBBE01"}, m.Alternates("BBBP01"))
	require.Empty(t, m.Alternates("CCCE01"))
	require.Nil(t, m.Alternates("ZZZE01"))
}

func TestBuildDuplicate(t *testing.T) {
	_, err := titleid.Build(strings.NewReader("AAAE01,AAAP01\nAAAP01,AAAJ01\n"))
	require.ErrorIs(t, err, titleid.ErrDuplicateID)
}

func TestDefault(t *testing.T) {
	m, err := titleid.Default()
	require.NoError(t, err)
	require.Contains(t, m.Alternates("RMGE01"), "RMGP01")
}
