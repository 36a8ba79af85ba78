package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ItemStatus
		want     bool
	}{
		{ItemStatusAvailable, ItemStatusNegotiating, true},
		{ItemStatusNegotiating, ItemStatusSold, true},
		{ItemStatusAvailable, ItemStatusSold, false},
		{ItemStatusNegotiating, ItemStatusAvailable, false},
		{ItemStatusSold, ItemStatusAvailable, false},
		{ItemStatusSold, ItemStatusNegotiating, false},
		{ItemStatusSold, ItemStatusSold, false},
		{ItemStatus("bogus"), ItemStatusNegotiating, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPurchaseIsParticipant(t *testing.T) {
	p := &Purchase{BuyerID: 2, Item: &Item{SellerID: 1}}

	assert.True(t, p.IsParticipant(1))
	assert.True(t, p.IsParticipant(2))
	assert.False(t, p.IsParticipant(3))
	assert.False(t, p.IsParticipant(0))

	noItem := &Purchase{BuyerID: 2}
	assert.Equal(t, uint(0), noItem.SellerID())
	assert.False(t, noItem.IsParticipant(1))
}

func TestIsSupportedLanguage(t *testing.T) {
	assert.True(t, IsSupportedLanguage("ko"))
	assert.True(t, IsSupportedLanguage(" EN "))
	assert.False(t, IsSupportedLanguage("fr"))
	assert.False(t, IsSupportedLanguage(""))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(NewNotFoundError("Item", 1)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(NewValidationError("bad")))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(NewUnauthorizedError("no")))
	assert.Equal(t, http.StatusForbidden, StatusFor(NewForbiddenError("no")))
	assert.Equal(t, http.StatusConflict, StatusFor(NewConflictError("taken")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(NewInternalError(errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))

	wrapped := fmt.Errorf("start purchase: %w", NewForbiddenError("no"))
	assert.Equal(t, http.StatusForbidden, StatusFor(wrapped))
	assert.True(t, HasCode(wrapped, CodeForbidden))
}
