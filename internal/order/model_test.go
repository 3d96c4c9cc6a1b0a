package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tableorder/internal/order"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"NEW", "in_progress", " Ready ", "SERVED", "canceled"} {
		s, err := order.ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Contains(t, order.AllStatuses, s)
	}

	for _, raw := range []string{"", "DONE", "CANCELLED", "PAID"} {
		_, err := order.ParseStatus(raw)
		assert.ErrorIs(t, err, order.ErrInvalidStatus, raw)
	}
}
