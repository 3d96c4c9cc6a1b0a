package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
	"github.com/vasiliy-maslov/tableorder/internal/db/dbtest"
)

func TestPostgresStore_SharedCart(t *testing.T) {
	pool := dbtest.Open(t, "table_carts")
	svc := cart.NewService(cart.NewPostgresStore(pool))
	ctx := context.Background()

	c, err := svc.Get(ctx, "12")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "12", gyoza("P1"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err = svc.SetComment(ctx, "12", "anniversaire")
	require.NoError(t, err)

	c, err = svc.Get(ctx, "12")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 10, c.Lines[0].Qty)
	require.NotNil(t, c.TableComment)
	assert.Equal(t, "anniversaire", *c.TableComment)

	c, err = svc.Clear(ctx, "12")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
	assert.Nil(t, c.TableComment)
}
