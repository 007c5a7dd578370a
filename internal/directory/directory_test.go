package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonas-Sn/Trabalho-Final/internal/directory"
)

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "12345678901", directory.NormalizeID("123.456.789-01"))
	assert.Equal(t, "12345678901", directory.NormalizeID(" 123 456 789 01 "))
	assert.Equal(t, "12345678901", directory.NormalizeID("12345678901"))
	assert.Equal(t, "", directory.NormalizeID("abc"))
}

func TestValidID(t *testing.T) {
	assert.True(t, directory.ValidID("12345678901"))
	assert.True(t, directory.ValidID("123.456.789-01"))
	assert.False(t, directory.ValidID("1234567890"))
	assert.False(t, directory.ValidID("123456789012"))
	assert.False(t, directory.ValidID(""))
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "123.456.789-01", directory.FormatID("12345678901"))
	assert.Equal(t, "000.000.000-01", directory.FormatID("00000000001"))
	// Malformed ids come back unchanged.
	assert.Equal(t, "1234", directory.FormatID("1234"))
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := directory.NewMemoryStore()

	p := directory.Person{ID: "111.111.111-11", Name: "Cristiano", Role: directory.RolePatient}
	require.NoError(t, store.CreatePerson(ctx, p))

	// Lookups normalize the id first.
	got, err := store.GetPerson(ctx, "111.111.111-11")
	require.NoError(t, err)
	assert.Equal(t, "11111111111", got.ID)
	assert.Equal(t, "Cristiano", got.Name)

	err = store.CreatePerson(ctx, p)
	assert.ErrorIs(t, err, directory.ErrPersonExists)

	p.Name = "Cristiano Souza"
	p.ID = "11111111111"
	require.NoError(t, store.UpdatePerson(ctx, p))
	got, err = store.GetPerson(ctx, "11111111111")
	require.NoError(t, err)
	assert.Equal(t, "Cristiano Souza", got.Name)

	require.NoError(t, store.DeletePerson(ctx, "11111111111"))
	_, err = store.GetPerson(ctx, "11111111111")
	assert.ErrorIs(t, err, directory.ErrPersonNotFound)
	assert.ErrorIs(t, store.DeletePerson(ctx, "11111111111"), directory.ErrPersonNotFound)
	assert.ErrorIs(t, store.UpdatePerson(ctx, p), directory.ErrPersonNotFound)
}

func TestMemoryStoreListProviders(t *testing.T) {
	ctx := context.Background()
	store := directory.NewMemoryStore()

	gp := "General Practice"
	ped := "Pediatrics"
	seed := []directory.Person{
		{ID: "00000000004", Name: "Dra. Sonia", Role: directory.RoleProvider, Specialty: &ped},
		{ID: "00000000002", Name: "Dr. Carlos Silva", Role: directory.RoleProvider, Specialty: &gp},
		{ID: "00000000006", Name: "Dr. Bruno", Role: directory.RoleProvider, Specialty: &gp},
		{ID: "11111111111", Name: "Cristiano", Role: directory.RolePatient},
		{ID: "00000000001", Name: "Administrator", Role: directory.RoleAdmin},
	}
	for _, p := range seed {
		require.NoError(t, store.CreatePerson(ctx, p))
	}

	// Ordered by id regardless of insertion order; non-providers excluded.
	all, err := store.ListProviders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "00000000002", all[0].ID)
	assert.Equal(t, "00000000004", all[1].ID)
	assert.Equal(t, "00000000006", all[2].ID)

	gps, err := store.ListProviders(ctx, gp)
	require.NoError(t, err)
	require.Len(t, gps, 2)
	assert.Equal(t, "Dr. Carlos Silva", gps[0].Name)

	none, err := store.ListProviders(ctx, "Dermatology")
	require.NoError(t, err)
	assert.Empty(t, none)
}
