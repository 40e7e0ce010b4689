package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ttshop/tyrestore/internal/models"
)

func TestAddressLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &AddressService{DB: db}

	user := seedUser(t, db, "mover")
	other := seedUser(t, db, "somebody_else")

	has, err := svc.UserHasAddresses(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, has)

	address, err := svc.CreateAddress(ctx, user.ID, AddressInput{
		Street:     "12 Main Road",
		City:       "Cape Town",
		PostalCode: "8001",
		Country:    "South Africa",
		Type:       "home",
	})
	require.NoError(t, err)
	require.Equal(t, models.AddressTypeHome, address.Type)

	has, err = svc.UserHasAddresses(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, has)

	updated, err := svc.UpdateAddress(ctx, address.ID, user.ID, AddressInput{City: "Stellenbosch", Type: "work"})
	require.NoError(t, err)
	require.Equal(t, "Stellenbosch", updated.City)
	require.Equal(t, models.AddressTypeWork, updated.Type)
	require.Equal(t, "12 Main Road", updated.Street, "untouched fields survive")

	_, err = svc.UpdateAddress(ctx, address.ID, other.ID, AddressInput{City: "Elsewhere"})
	require.ErrorIs(t, err, ErrValidation)

	err = svc.DeleteAddress(ctx, address.ID, other.ID)
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteAddress(ctx, address.ID, user.ID))
	_, err = svc.GetAddress(ctx, address.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAddressValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &AddressService{DB: db}

	user := seedUser(t, db, "mover")

	_, err := svc.CreateAddress(ctx, 999, AddressInput{
		Street: "1 Road", City: "Town", Country: "ZA", Type: "home",
	})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateAddress(ctx, user.ID, AddressInput{City: "Town", Country: "ZA", Type: "home"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateAddress(ctx, user.ID, AddressInput{
		Street: "1 Road", City: "Town", Country: "ZA", Type: "castle",
	})
	require.ErrorIs(t, err, ErrValidation)
}
