package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSQL(t *testing.T) {
	sql, args, err := Where("user_id", int64(4)).And("status", "PAID", "PENDING").sqlizer().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(user_id = ? AND status IN (?,?))", sql)
	assert.Equal(t, []interface{}{int64(4), "PAID", "PENDING"}, args)

	sql, _, err = NoRows().sqlizer().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "1 = 0", sql)
}

func TestFilterComposition(t *testing.T) {
	assert.True(t, Where("id").None)
	assert.True(t, WhereIDs("id", nil).None)
	assert.False(t, All().None)

	merged := Where("a", 1).Merge(Where("b", 2))
	assert.False(t, merged.None)
	assert.Len(t, merged.Conds, 2)
	assert.True(t, merged.Merge(NoRows()).None)

	base := Where("a", 1)
	_ = base.And("b", 2)
	assert.Len(t, base.Conds, 1)
}
