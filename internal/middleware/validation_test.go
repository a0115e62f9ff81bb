package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type testCheckout struct {
	CustomerName  string     `json:"customer_name" validate:"required"`
	CustomerEmail string     `json:"customer_email" validate:"required,email"`
	Items         []testLine `json:"items" validate:"required,min=1,dive"`
}

func newJSONRequest(body string) *http.Request {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Feature: storefront, Property 48: Required field validation works
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeEmail bool, includeItems bool) bool {
			reqMap := make(map[string]interface{})

			if includeName {
				reqMap["customer_name"] = "Awa Diop"
			}
			if includeEmail {
				reqMap["customer_email"] = "awa@example.com"
			}
			if includeItems {
				reqMap["items"] = []map[string]interface{}{
					{"product_id": "p-1", "quantity": 1, "price": 40.0},
				}
			}

			allFieldsPresent := includeName && includeEmail && includeItems

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))

			var checkout testCheckout
			err := DecodeAndValidate(req, &checkout)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil && len(FormatValidationErrors(err)) > 0
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 49: Line quantities below one are rejected
func TestProperty_QuantityRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantity must be at least one", prop.ForAll(
		func(quantity int) bool {
			reqMap := map[string]interface{}{
				"customer_name":  "Awa Diop",
				"customer_email": "awa@example.com",
				"items": []map[string]interface{}{
					{"product_id": "p-1", "quantity": quantity, "price": 12.5},
				},
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))

			var checkout testCheckout
			err := DecodeAndValidate(req, &checkout)

			if quantity >= 1 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-10, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_UsesWireFieldPaths(t *testing.T) {
	body := `{"customer_name":"Awa","customer_email":"not-an-email","items":[{"product_id":"p-1","quantity":0,"price":1}]}`

	var checkout testCheckout
	err := DecodeAndValidate(newJSONRequest(body), &checkout)
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	fields := make(map[string]string)
	for _, ve := range formatted {
		fields[ve.Field] = ve.Message
	}

	assert.Equal(t, "Invalid email format", fields["customer_email"])
	assert.Equal(t, "Value must be greater than or equal to 1", fields["items[0].quantity"])
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	bodies := []string{
		``,
		`{"customer_name":`,
		`[1, 2, 3]`,
		`{"items":"not-a-list"}`,
	}

	for _, body := range bodies {
		var checkout testCheckout
		err := DecodeAndValidate(newJSONRequest(body), &checkout)
		assert.True(t, errors.Is(err, ErrMalformedBody), "body %q", body)
		assert.Empty(t, FormatValidationErrors(err))
	}
}

func TestDecodeAndValidate_RejectsOversizedBody(t *testing.T) {
	body := `{"customer_name":"` + strings.Repeat("a", MaxJSONBodyBytes) + `"}`

	var checkout testCheckout
	err := DecodeAndValidate(newJSONRequest(body), &checkout)
	assert.ErrorIs(t, err, ErrMalformedBody)
}

func TestRespondWithDecodeError(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		var checkout testCheckout
		err := DecodeAndValidate(newJSONRequest(`{`), &checkout)

		w := httptest.NewRecorder()
		RespondWithDecodeError(w, err)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "invalid request body", response.Error.Message)
	})

	t.Run("validation failure", func(t *testing.T) {
		var checkout testCheckout
		err := DecodeAndValidate(newJSONRequest(`{"customer_email":"awa@example.com","items":[]}`), &checkout)

		w := httptest.NewRecorder()
		RespondWithDecodeError(w, err)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "validation failed", response.Error.Message)
		assert.Contains(t, response.Error.Details, "validation_errors")
	})
}
