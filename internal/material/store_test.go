package material

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/threedcost/internal/kvstore"
	"github.com/Simplici0/threedcost/internal/kvstore/kvtest"
)

func newStore(backend kvstore.Backend) *Store {
	return New(kvstore.New(backend, zap.NewNop()), zap.NewNop())
}

func randomProfile() Profile {
	return Profile{
		ID:                gofakeit.UUID(),
		Name:              gofakeit.ProductName(),
		CostPerGram:       gofakeit.Float64Range(0.01, 0.5),
		Density:           gofakeit.Float64Range(0.9, 2.5),
		EnergyConsumption: gofakeit.Float64Range(0, 0.1),
	}
}

func pla() Profile {
	return Profile{ID: "m1", Name: "PLA", CostPerGram: 0.08, Density: 1.24, EnergyConsumption: 0.03}
}

func TestLoadWithoutStoredProfilesIsEmpty(t *testing.T) {
	t.Parallel()

	store := newStore(kvstore.NewMemory())
	require.True(t, store.IsLoading())

	store.Load(context.Background())

	assert.False(t, store.IsLoading())
	assert.NotNil(t, store.Profiles())
	assert.Empty(t, store.Profiles())
}

func TestLoadFallsBackToEmptyOnCorruptData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvstore.NewMemory()
	require.NoError(t, backend.SetItem(ctx, kvstore.KeyMaterialProfiles, `[{"id":`))

	store := newStore(backend)
	store.Load(ctx)
	assert.Empty(t, store.Profiles())

	require.NoError(t, backend.SetItem(ctx, kvstore.KeyMaterialProfiles, `null`))
	store.Load(ctx)
	assert.NotNil(t, store.Profiles())
	assert.Empty(t, store.Profiles())
}

func TestLoadDropsDuplicateAndInvalidProfiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvstore.NewMemory()
	require.NoError(t, backend.SetItem(ctx, kvstore.KeyMaterialProfiles, `[
		{"id":"a","name":"PLA","costPerGram":0.08,"density":1.24,"energyConsumption":0.03},
		{"id":"a","name":"PLA copy","costPerGram":0.08,"density":-3,"energyConsumption":0.03},
		{"id":"b","name":"","costPerGram":0.1,"density":1.27,"energyConsumption":0},
		{"id":"","name":"No id","costPerGram":0.1,"density":1.27,"energyConsumption":0},
		{"id":"c","name":"PETG","costPerGram":0.1,"density":1.27,"energyConsumption":0}
	]`))

	store := newStore(backend)
	store.Load(ctx)

	want := []Profile{
		{ID: "a", Name: "PLA", CostPerGram: 0.08, Density: 1.24, EnergyConsumption: 0.03},
		{ID: "c", Name: "PETG", CostPerGram: 0.1, Density: 1.27},
	}
	if diff := cmp.Diff(want, store.Profiles()); diff != "" {
		t.Fatalf("loaded profiles mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, []Profile{want[1]}, store.Profiles())
}

func TestAddAppendsInInsertionOrderAndPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvstore.NewMemory()
	store := newStore(backend)
	store.Load(ctx)

	want := []Profile{randomProfile(), randomProfile(), randomProfile()}
	for _, p := range want {
		_, err := store.Add(ctx, p)
		require.NoError(t, err)
	}

	if diff := cmp.Diff(want, store.Profiles()); diff != "" {
		t.Fatalf("profiles mismatch (-want +got):\n%s", diff)
	}

	reloaded := newStore(backend)
	reloaded.Load(ctx)
	if diff := cmp.Diff(want, reloaded.Profiles()); diff != "" {
		t.Fatalf("reloaded profiles mismatch (-want +got):\n%s", diff)
	}
}

func TestAddAssignsIDAndRejectsDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(kvstore.NewMemory())
	store.Load(ctx)

	p := randomProfile()
	p.ID = ""
	added, err := store.Add(ctx, p)
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	_, err = store.Add(ctx, added)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, store.Profiles(), 1)
}

func TestAddRejectsInvalidProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvtest.NewFlaky()
	store := newStore(backend)
	store.Load(ctx)

	_, err := store.Add(ctx, Profile{Name: " ", CostPerGram: -1, Density: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.ErrorContains(t, err, "name is required")
	assert.ErrorContains(t, err, "density must be > 0")
	assert.Empty(t, store.Profiles())
	assert.Zero(t, backend.Writes())
}

func TestAddThenUpdateKeepsSingleProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvstore.NewMemory()
	store := newStore(backend)
	store.Load(ctx)

	_, err := store.Add(ctx, pla())
	require.NoError(t, err)

	edited := pla()
	edited.CostPerGram = 0.10
	require.NoError(t, store.Update(ctx, edited))

	profiles := store.Profiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, "m1", profiles[0].ID)
	assert.Equal(t, 0.10, profiles[0].CostPerGram)

	reloaded := newStore(backend)
	reloaded.Load(ctx)
	assert.Equal(t, profiles, reloaded.Profiles())
}

func TestUpdatePreservesOrderOfOtherProfiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(kvstore.NewMemory())
	store.Load(ctx)

	first, second, third := randomProfile(), randomProfile(), randomProfile()
	for _, p := range []Profile{first, second, third} {
		_, err := store.Add(ctx, p)
		require.NoError(t, err)
	}

	second.Name = "Renamed"
	require.NoError(t, store.Update(ctx, second))

	assert.Equal(t, []Profile{first, second, third}, store.Profiles())
}

func TestUpdateUnknownProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvtest.NewFlaky()
	store := newStore(backend)
	store.Load(ctx)
	_, err := store.Add(ctx, pla())
	require.NoError(t, err)
	writes := backend.Writes()

	missing := randomProfile()
	err = store.Update(ctx, missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Equal(t, []Profile{pla()}, store.Profiles())
	assert.Equal(t, writes, backend.Writes())
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvtest.NewFlaky()
	store := newStore(backend)
	store.Load(ctx)

	keep := randomProfile()
	for _, p := range []Profile{pla(), keep} {
		_, err := store.Add(ctx, p)
		require.NoError(t, err)
	}

	require.NoError(t, store.Delete(ctx, "m1"))
	afterFirst := store.Profiles()
	writes := backend.Writes()

	require.NoError(t, store.Delete(ctx, "m1"))
	assert.Equal(t, afterFirst, store.Profiles())
	assert.Equal(t, []Profile{keep}, store.Profiles())
	assert.Equal(t, writes, backend.Writes(), "no-op delete must not write")

	reloaded := newStore(backend)
	reloaded.Load(ctx)
	assert.Equal(t, []Profile{keep}, reloaded.Profiles())
}

func TestWriteFailureKeepsInMemoryChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvtest.NewFlaky()
	store := newStore(backend)
	store.Load(ctx)

	backend.FailWrites(true)
	added, err := store.Add(ctx, pla())
	require.Error(t, err)
	assert.ErrorIs(t, err, kvstore.ErrPersist)
	assert.Equal(t, "m1", added.ID)
	assert.Equal(t, []Profile{pla()}, store.Profiles())

	backend.FailWrites(false)
	second := randomProfile()
	_, err = store.Add(ctx, second)
	require.NoError(t, err)

	reloaded := newStore(backend)
	reloaded.Load(ctx)
	assert.Equal(t, []Profile{pla(), second}, reloaded.Profiles())
}

func TestProfileLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(kvstore.NewMemory())
	store.Load(ctx)
	_, err := store.Add(ctx, pla())
	require.NoError(t, err)

	got, ok := store.Profile("m1")
	require.True(t, ok)
	assert.Equal(t, pla(), got)

	_, ok = store.Profile("nope")
	assert.False(t, ok)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(kvstore.NewMemory())
	store.Load(ctx)

	var counts []int
	cancel := store.Subscribe(func(profiles []Profile) { counts = append(counts, len(profiles)) })
	defer cancel()

	_, err := store.Add(ctx, pla())
	require.NoError(t, err)
	_, err = store.Add(ctx, randomProfile())
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "m1"))
	require.NoError(t, store.Delete(ctx, "m1"))

	assert.Equal(t, []int{1, 2, 1}, counts)
}

func TestProfilesReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(kvstore.NewMemory())
	store.Load(ctx)
	_, err := store.Add(ctx, pla())
	require.NoError(t, err)

	profiles := store.Profiles()
	profiles[0].Name = "mutated"

	assert.Equal(t, "PLA", store.Profiles()[0].Name)
}

func TestConcurrentMutationsPersistFinalList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := kvstore.NewMemory()
	store := newStore(backend)
	store.Load(ctx)

	profiles := make([]Profile, 30)
	for i := range profiles {
		profiles[i] = randomProfile()
		profiles[i].ID = fmt.Sprintf("p%d", i)
	}

	var wg sync.WaitGroup
	for i, p := range profiles {
		wg.Add(1)
		go func(i int, p Profile) {
			defer wg.Done()
			if _, err := store.Add(ctx, p); err != nil {
				t.Errorf("add %s: %v", p.ID, err)
				return
			}
			switch i % 3 {
			case 1:
				p.Name = p.Name + " v2"
				if err := store.Update(ctx, p); err != nil {
					t.Errorf("update %s: %v", p.ID, err)
				}
			case 2:
				if err := store.Delete(ctx, p.ID); err != nil {
					t.Errorf("delete %s: %v", p.ID, err)
				}
			}
		}(i, p)
	}
	wg.Wait()

	assert.Len(t, store.Profiles(), 20)

	reloaded := newStore(backend)
	reloaded.Load(ctx)
	assert.Equal(t, store.Profiles(), reloaded.Profiles())
}
