package storeerr_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meridian/internal/storeerr"
)

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestErrorHandlerMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        storeerr.Validation("quantity must be at least 1"),
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "validation_error",
		},
		{
			name:       "not found",
			err:        storeerr.NotFound("order"),
			wantStatus: fiber.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "not authorized",
			err:        storeerr.NotAuthorized("only admins may change delivery status"),
			wantStatus: fiber.StatusForbidden,
			wantCode:   "not_authorized",
		},
		{
			name: "insufficient stock",
			err: &storeerr.InsufficientStockError{
				VariantName: "Blue / M",
				SKU:         "TS-BL-M",
				Available:   1,
				Requested:   3,
			},
			wantStatus: fiber.StatusConflict,
			wantCode:   "insufficient_stock",
		},
		{
			name: "illegal transition",
			err: &storeerr.IllegalTransitionError{
				Field: "delivery_status",
				From:  "delivered",
				To:    "delivered",
			},
			wantStatus: fiber.StatusConflict,
			wantCode:   "illegal_transition",
		},
		{
			name:       "payment declined",
			err:        &storeerr.PaymentDeclinedError{Reason: "card declined by issuer"},
			wantStatus: fiber.StatusPaymentRequired,
			wantCode:   "payment_declined",
		},
		{
			name:       "fiber error passthrough",
			err:        fiber.NewError(fiber.StatusUnauthorized, "missing authorization header"),
			wantStatus: fiber.StatusUnauthorized,
			wantCode:   "http_error",
		},
		{
			name:       "unknown error",
			err:        assert.AnError,
			wantStatus: fiber.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: storeerr.ErrorHandler})
			app.Get("/boom", func(c *fiber.Ctx) error {
				return tc.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestTypedErrorsAreMatchable(t *testing.T) {
	assert.True(t, storeerr.IsValidation(storeerr.Validation("bad input")))
	assert.False(t, storeerr.IsValidation(storeerr.NotFound("cart")))
	assert.True(t, storeerr.IsNotFound(storeerr.NotFound("cart")))

	err := storeerr.Validation("missing address fields: street, state")
	assert.Contains(t, err.Error(), "street")
}
