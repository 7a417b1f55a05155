package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Field("quantity", "must be positive"), http.StatusBadRequest},
		{"conflict", Conflict("duplicate"), http.StatusBadRequest},
		{"protected", Protected("still referenced"), http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("invalid token"), http.StatusUnauthorized},
		{"forbidden", Forbidden(), http.StatusForbidden},
		{"not found", NotFound("Order"), http.StatusNotFound},
		{"wrapped forbidden", fmt.Errorf("update order: %w", Forbidden()), http.StatusForbidden},
		{"opaque", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationErrorBody(t *testing.T) {
	v := NewValidation()
	assert.NoError(t, v.OrNil())

	v.Add("price", "Ensure this value is greater than or equal to 2.")
	v.AddNonField("A cart item with this user and menu item already exists.")

	assert.Equal(t, map[string][]string{
		"price":     {"Ensure this value is greater than or equal to 2."},
		NonFieldKey: {"A cart item with this user and menu item already exists."},
	}, v.Body())
	assert.Error(t, v.OrNil())
	assert.Contains(t, v.Error(), "price")
}

func TestForbiddenMessageIsGeneric(t *testing.T) {
	assert.Equal(t, "You are not authorized.", Forbidden().Error())
	assert.True(t, IsExpected(Forbidden()))
	assert.False(t, IsExpected(errors.New("boom")))
}
