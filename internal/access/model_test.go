package access_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifedash/lifedash/internal/access"
)

func TestLevelRank_Ordering(t *testing.T) {
	assert.Less(t, access.LevelRead.Rank(), access.LevelWrite.Rank())
	assert.Less(t, access.LevelWrite.Rank(), access.LevelAdmin.Rank())
	assert.Equal(t, 0, access.Level("owner").Rank(), "unknown levels rank below read")
}

func TestLevelAllows(t *testing.T) {
	assert.True(t, access.LevelRead.Allows(access.LevelRead))
	assert.False(t, access.LevelRead.Allows(access.LevelWrite))
	assert.False(t, access.LevelRead.Allows(access.LevelAdmin))

	assert.True(t, access.LevelWrite.Allows(access.LevelRead))
	assert.True(t, access.LevelWrite.Allows(access.LevelWrite))
	assert.False(t, access.LevelWrite.Allows(access.LevelAdmin))

	assert.True(t, access.LevelAdmin.Allows(access.LevelRead))
	assert.True(t, access.LevelAdmin.Allows(access.LevelWrite))
	assert.True(t, access.LevelAdmin.Allows(access.LevelAdmin))
}

func TestParseLevel(t *testing.T) {
	level, err := access.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, access.LevelRead, level, "empty level defaults to read")

	for _, s := range []string{"read", "write", "admin"} {
		level, err := access.ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, access.Level(s), level)
	}

	_, err = access.ParseLevel("root")
	assert.Error(t, err)
}

func TestGrantResolved(t *testing.T) {
	g := access.Grant{}
	assert.False(t, g.Resolved())

	id := uuid.New()
	g.PrincipalID = &id
	assert.True(t, g.Resolved())
}
