package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/pkg/e"
)

func shirt() *Product {
	return &Product{ID: 1, Slug: "nike-slim-shirt", Name: "Nike Slim Shirt", Price: 120_00, Stock: 3}
}

func TestCartAddItemMergesLines(t *testing.T) {
	cart := NewCart()
	p := shirt()

	require.NoError(t, cart.AddItem(p, 1))
	require.NoError(t, cart.AddItem(p, 2))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(3), cart.Items[0].Quantity)
	assert.Equal(t, int64(360_00), cart.ItemsPrice())
}

func TestCartAddItemRespectsStock(t *testing.T) {
	cart := NewCart()
	p := shirt()

	assert.ErrorIs(t, cart.AddItem(p, 4), e.ErrOutOfStock)
	assert.Empty(t, cart.Items)

	require.NoError(t, cart.AddItem(p, 3))
	// Суммарное количество в строке тоже ограничено остатком.
	assert.ErrorIs(t, cart.AddItem(p, 1), e.ErrOutOfStock)
	assert.Equal(t, int32(3), cart.Items[0].Quantity)
}

func TestCartAddItemRejectsBadQuantity(t *testing.T) {
	cart := NewCart()

	assert.ErrorIs(t, cart.AddItem(shirt(), 0), e.ErrValidation)
	assert.ErrorIs(t, cart.AddItem(shirt(), -1), e.ErrValidation)
}

func TestCartRemoveAndClear(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(shirt(), 1))
	require.NoError(t, cart.AddItem(&Product{ID: 2, Slug: "adidas-fit-pant", Name: "Adidas Fit Pant", Price: 65_00, Stock: 5}, 2))

	cart.RemoveItem(1)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ProductID)

	cart.RemoveItem(42) // отсутствующий товар — no-op
	assert.Len(t, cart.Items, 1)

	cart.Clear()
	assert.Empty(t, cart.Items)
	assert.Equal(t, int64(0), cart.ItemsPrice())
}

// Строка корзины — снапшот: последующее изменение каталога её не трогает.
func TestCartItemIsSnapshot(t *testing.T) {
	cart := NewCart()
	p := shirt()
	require.NoError(t, cart.AddItem(p, 1))

	p.Price = 999_00
	p.Name = "renamed"

	assert.Equal(t, int64(120_00), cart.Items[0].Price)
	assert.Equal(t, "Nike Slim Shirt", cart.Items[0].Name)
}
