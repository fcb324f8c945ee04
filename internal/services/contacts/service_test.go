package contacts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boothbook/internal/adapters/memory"
	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

func strPtr(s string) *string { return &s }

func TestCreate_ResolvesCompany(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.CreateCompany(ctx, &domain.Company{ID: "co1", Name: "Acme Mining"}))
	svc := New(store, zap.NewNop())

	c, err := svc.Create(ctx, domain.ContactInput{Name: " Ana Torres ", CompanyID: strPtr("co1"), Position: strPtr("CFO")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", c.Name)
	require.NotNil(t, c.Company)
	assert.Equal(t, "Acme Mining", c.Company.Name)
}

func TestCreate_BlankCompanyIsAbsent(t *testing.T) {
	svc := New(memory.New(), zap.NewNop())
	c, err := svc.Create(context.Background(), domain.ContactInput{Name: "Ana", CompanyID: strPtr(" ")})
	require.NoError(t, err)
	assert.Nil(t, c.CompanyID)
	assert.Nil(t, c.Company)
}

func TestCreate_Errors(t *testing.T) {
	svc := New(memory.New(), zap.NewNop())
	_, err := svc.Create(context.Background(), domain.ContactInput{Name: ""})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = svc.Create(context.Background(), domain.ContactInput{Name: "Ana", CompanyID: strPtr("ghost")})
	assert.True(t, errors.Is(err, apperrors.ErrReferentialIntegrity))
}

func TestList_SearchAndCompany(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.CreateCompany(ctx, &domain.Company{ID: "co1", Name: "Acme"}))
	svc := New(store, zap.NewNop())
	for _, in := range []domain.ContactInput{
		{Name: "Luis", CompanyID: strPtr("co1"), Position: strPtr("Mine Manager")},
		{Name: "Ana", CompanyID: strPtr("co1"), Email: strPtr("ana@acme.com")},
		{Name: "Carla", Position: strPtr("Procurement")},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, filter.ContactFilter{CompanyID: "co1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "Luis", got[1].Name)

	got, err = svc.List(ctx, filter.ContactFilter{Search: "manager"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Luis", got[0].Name)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.New(), zap.NewNop())
	c, err := svc.Create(ctx, domain.ContactInput{Name: "Ana"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, c.ID), apperrors.ErrNotFound))
}
