package persona

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	activeID string
	custom   map[string]IndustryConfig

	failReads  bool
	failWrites bool
}

var errStorage = errors.New("storage unavailable")

func newFakeRepo() *fakeRepo {
	return &fakeRepo{custom: make(map[string]IndustryConfig)}
}

func (r *fakeRepo) ActiveID(context.Context) (string, error) {
	if r.failReads {
		return "", errStorage
	}
	return r.activeID, nil
}

func (r *fakeRepo) SetActiveID(_ context.Context, id string) error {
	if r.failWrites {
		return errStorage
	}
	r.activeID = id
	return nil
}

func (r *fakeRepo) Custom(context.Context) (map[string]IndustryConfig, error) {
	if r.failReads {
		return nil, errStorage
	}
	out := make(map[string]IndustryConfig, len(r.custom))
	for id, cfg := range r.custom {
		out[id] = cfg
	}
	return out, nil
}

func (r *fakeRepo) SaveCustom(_ context.Context, cfg IndustryConfig) error {
	if r.failWrites {
		return errStorage
	}
	r.custom[cfg.ID] = cfg
	return nil
}

func (r *fakeRepo) DeleteCustom(_ context.Context, id string) error {
	if r.failWrites {
		return errStorage
	}
	delete(r.custom, id)
	return nil
}

func customConfig(id, name string, enabled bool) IndustryConfig {
	return IndustryConfig{
		ID:           id,
		Name:         name,
		Description:  "test persona",
		SystemPrompt: "Analyze {companyName} at {websiteUrl}.",
		Enabled:      enabled,
	}
}

func TestAll_CustomShadowsBuiltin(t *testing.T) {
	repo := newFakeRepo()
	st := NewStore(repo)
	ctx := context.Background()

	shadow := customConfig(DefaultID, "My Default Override", true)
	require.NoError(t, st.SaveCustom(ctx, shadow))

	var got *IndustryConfig
	for _, cfg := range st.All(ctx) {
		if cfg.ID == DefaultID {
			c := cfg
			got = &c
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, "My Default Override", got.Name)
}

func TestAll_Ordering(t *testing.T) {
	repo := newFakeRepo()
	st := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, st.SaveCustom(ctx, customConfig("zz-disabled", "AAA Disabled", false)))
	require.NoError(t, st.SaveCustom(ctx, customConfig("aa-enabled", "ZZZ Enabled", true)))

	all := st.All(ctx)
	require.Len(t, all, 4) // 2 built-ins + 2 custom

	// Enabled first, alphabetical by name within each group.
	assert.Equal(t, "General B2B Analysis", all[0].Name)
	assert.Equal(t, "Millennium Dental Technologies", all[1].Name)
	assert.Equal(t, "ZZZ Enabled", all[2].Name)
	assert.Equal(t, "AAA Disabled", all[3].Name)
}

func TestActive_PersistedID(t *testing.T) {
	repo := newFakeRepo()
	repo.activeID = "millennium-dental"
	st := NewStore(repo)

	active := st.Active(context.Background())
	assert.Equal(t, "millennium-dental", active.ID)
}

func TestActive_FallbackRepairsPersistedID(t *testing.T) {
	repo := newFakeRepo()
	repo.activeID = "no-such-config"
	st := NewStore(repo)

	active := st.Active(context.Background())
	assert.Equal(t, DefaultID, active.ID)
	assert.Equal(t, DefaultID, repo.activeID, "fallback should repair the persisted id")
}

func TestActive_SkipsDisabledPersisted(t *testing.T) {
	repo := newFakeRepo()
	st := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, st.SaveCustom(ctx, customConfig("dormant", "Dormant", false)))
	repo.activeID = "dormant"

	active := st.Active(ctx)
	assert.NotEqual(t, "dormant", active.ID)
	assert.True(t, active.Enabled)
}

func TestActive_StorageFailureDegradesToBuiltins(t *testing.T) {
	repo := newFakeRepo()
	repo.failReads = true
	st := NewStore(repo)

	active := st.Active(context.Background())
	assert.Equal(t, DefaultID, active.ID)
}

func TestSetActive_WriteFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	repo.failWrites = true
	st := NewStore(repo)

	assert.NotPanics(t, func() {
		st.SetActive(context.Background(), Builtins()[DefaultID])
	})
}

func TestSaveCustom_RejectsInvalid(t *testing.T) {
	st := NewStore(newFakeRepo())
	err := st.SaveCustom(context.Background(), IndustryConfig{Name: "no id"})
	require.Error(t, err)
}

func TestDeleteCustom_BuiltinRefused(t *testing.T) {
	repo := newFakeRepo()
	st := NewStore(repo)
	ctx := context.Background()

	// Even a custom shadow of a built-in id cannot be deleted; the
	// built-in would just resurface.
	require.NoError(t, st.SaveCustom(ctx, customConfig(DefaultID, "Shadow", true)))

	err := st.DeleteCustom(ctx, DefaultID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBuiltinConfig)
}

func TestDeleteCustom_RemovesCustom(t *testing.T) {
	repo := newFakeRepo()
	st := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, st.SaveCustom(ctx, customConfig("mine", "Mine", true)))
	require.NoError(t, st.DeleteCustom(ctx, "mine"))

	_, ok := st.ByID(ctx, "mine")
	assert.False(t, ok)
}

func TestDeleteCustom_UnknownID(t *testing.T) {
	st := NewStore(newFakeRepo())
	err := st.DeleteCustom(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuiltinsAreEnabled(t *testing.T) {
	for id, cfg := range Builtins() {
		assert.True(t, cfg.Enabled, id)
		assert.NoError(t, cfg.Validate(), id)
	}
}
