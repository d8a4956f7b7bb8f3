package ports

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractItems is the fixture handed to the registry factory of RunRegistryContract.
var ContractItems = []domain.ItemSpec{
	{Name: "Kitchen", Label: "Kitchen", Kind: domain.KindGroup},
	{Name: "Kitchen_Light", Label: "Kitchen Light", Kind: "Switch", Tags: []string{"Light", "Indoor"}, Groups: []string{"Kitchen"}},
	{Name: "Garden_Light", Label: "Garden Light", Kind: "Switch", Tags: []string{"Light"}},
	{Name: "Kitchen_Shutter", Label: "Shutter", Kind: "Rollershutter", Tags: []string{"Indoor"}, Groups: []string{"Kitchen"}},
}

// RunRegistryContract verifies that a Registry built from ContractItems by
// newRegistry adheres to the interface contract.
func RunRegistryContract(t *testing.T, newRegistry func(t *testing.T, items []domain.ItemSpec) Registry) {
	reg := newRegistry(t, ContractItems)

	t.Run("AllEntities", func(t *testing.T) {
		all := reg.AllEntities()
		require.Len(t, all, len(ContractItems))
		assert.ElementsMatch(t, []string{"Kitchen", "Kitchen_Light", "Garden_Light", "Kitchen_Shutter"}, names(all))
	})

	t.Run("EntitiesByTags intersects", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Kitchen_Light", "Garden_Light"}, names(reg.EntitiesByTags("Light")))
		assert.Equal(t, []string{"Kitchen_Light"}, names(reg.EntitiesByTags("Light", "Indoor")))
		assert.Empty(t, reg.EntitiesByTags("Outdoor"))
	})

	t.Run("EntityByName", func(t *testing.T) {
		e, ok := reg.EntityByName("Kitchen_Light")
		require.True(t, ok)
		assert.Equal(t, "Kitchen Light", e.Label())
		assert.Equal(t, []string{"Kitchen"}, e.GroupNames())

		_, ok = reg.EntityByName("Nope")
		assert.False(t, ok)
	})

	t.Run("Aliases", func(t *testing.T) {
		e, ok := reg.EntityByName("Kitchen_Shutter")
		require.True(t, ok)
		_, isProvider := e.(domain.AliasProvider)
		assert.True(t, isProvider, "registry entities should expose aliases")
	})
}

// RunJournalContract verifies that a Journal implementation adheres to the
// interface contract. The journal must be empty.
func RunJournalContract(t *testing.T, journal Journal) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		records, err := journal.List(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Record and List newest first", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			err := journal.Record(ctx, domain.Record{
				ID:       fmt.Sprintf("rec-%d", i),
				Time:     base.Add(time.Duration(i) * time.Second),
				Success:  i%2 == 0,
				Input:    fmt.Sprintf("utterance %d", i),
				Tokens:   []string{"utterance"},
				Entities: []string{"Kitchen_Light"},
				Rule:     i,
			})
			require.NoError(t, err, "Record should not return error")
		}

		records, err := journal.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"rec-2", "rec-1", "rec-0"}, ids(records))
		assert.Equal(t, "utterance 2", records[0].Input)
		assert.Equal(t, []string{"Kitchen_Light"}, records[0].Entities)
		assert.True(t, records[0].Time.Equal(base.Add(2*time.Second)))
	})

	t.Run("List honours limit", func(t *testing.T) {
		records, err := journal.List(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"rec-2", "rec-1"}, ids(records))
	})
}

func names(es []domain.Entity) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func ids(rs []domain.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
