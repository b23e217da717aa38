package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAggregate struct {
	BaseAggregateRoot
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: NewBaseAggregateRoot()}
	var _ AggregateRoot = agg
	created := agg.UpdatedAt

	agg.AddDomainEvent(&BaseDomainEvent{Type: "OrderPlaced"})
	agg.AddDomainEvent(&BaseDomainEvent{Type: "OrderStatusChanged"})
	agg.IncrementVersion()

	assert.Equal(t, 2, agg.GetVersion())
	assert.False(t, agg.UpdatedAt.Before(created))
	assert.Len(t, agg.GetDomainEvents(), 2)

	pulled := agg.PullDomainEvents()
	require.Len(t, pulled, 2)
	assert.Equal(t, "OrderPlaced", pulled[0].EventType())
	assert.Empty(t, agg.GetDomainEvents())
	assert.Empty(t, agg.PullDomainEvents())
}

func TestNewBaseDomainEvent(t *testing.T) {
	id := uuid.New()
	e := NewBaseDomainEvent("ProductCreated", "Product", id)

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.Equal(t, "ProductCreated", e.EventType())
	assert.Equal(t, "Product", e.AggregateType())
	assert.Equal(t, id, e.AggregateID())
	assert.False(t, e.OccurredAt().IsZero())
	assert.Equal(t, time.UTC, e.OccurredAt().Location())
}

func TestDomainError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("place order: %w", NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for Luxury Towel Set"))

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrCartEmpty))
	assert.Equal(t, "place order: Insufficient stock for Luxury Towel Set", err.Error())
}

func TestNewPaginated(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		pageSize  int
		wantPages int
		wantNext  bool
	}{
		{"exact pages", 24, 1, 12, 2, true},
		{"partial last page", 25, 3, 12, 3, false},
		{"empty", 0, 1, 12, 0, false},
		{"zero page size", 10, 1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginated[string](nil, tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNext())
			assert.NotNil(t, p.Items)
		})
	}
}
