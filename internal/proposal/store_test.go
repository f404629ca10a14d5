package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

func TestStorePutGet(t *testing.T) {
	t.Parallel()

	store := NewStore(8, time.Minute)
	tags := []appmodels.Tag{{ID: "a", Title: "Продукты"}}

	store.Put(100, 1, tags)
	require.Equal(t, tags, store.Get(100, 1))

	require.Nil(t, store.Get(100, 2))
	require.Nil(t, store.Get(200, 1))
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewStore(8, time.Minute)
	store.Put(100, 1, []appmodels.Tag{{ID: "a"}})

	store.Delete(100, 1)
	require.Nil(t, store.Get(100, 1))
}

func TestStoreEvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	store := NewStore(2, time.Minute)
	store.Put(1, 1, []appmodels.Tag{{ID: "a"}})
	store.Put(1, 2, []appmodels.Tag{{ID: "b"}})
	store.Put(1, 3, []appmodels.Tag{{ID: "c"}})

	require.Nil(t, store.Get(1, 1))
	require.NotNil(t, store.Get(1, 2))
	require.NotNil(t, store.Get(1, 3))
}

func TestStoreExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(8, 10*time.Millisecond)
	store.Put(1, 1, []appmodels.Tag{{ID: "a"}})

	time.Sleep(50 * time.Millisecond)
	require.Nil(t, store.Get(1, 1))
}
