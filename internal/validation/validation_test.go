package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
)

type signup struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type quantityInput struct {
	Quantity *int `json:"quantity" validate:"required,gte=1,lte=32767"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		fields []string
	}{
		{"valid", &signup{Username: "mario", Password: "s3cretpass"}, nil},
		{"missing username", &signup{Password: "s3cretpass"}, []string{"username"}},
		{"bad username", &signup{Username: "ma rio", Password: "s3cretpass"}, []string{"username"}},
		{"bad email", &signup{Username: "mario", Email: "nope", Password: "s3cretpass"}, []string{"email"}},
		{"short password", &signup{Username: "mario", Password: "x"}, []string{"password"}},
		{"missing quantity", &quantityInput{}, []string{"quantity"}},
		{"zero quantity", &quantityInput{Quantity: new(int)}, []string{"quantity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var v *apperr.ValidationError
			require.ErrorAs(t, err, &v)
			for _, f := range tt.fields {
				assert.Contains(t, v.Fields, f)
			}
		})
	}
}

func TestStructMessages(t *testing.T) {
	zero := 0
	err := Struct(&quantityInput{Quantity: &zero})
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 1."}, v.Fields["quantity"])
}

func bind(t *testing.T, body string, dst interface{}) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return BindJSON(c, dst)
}

func TestBindJSON(t *testing.T) {
	var in struct {
		Quantity *int `json:"quantity"`
	}
	require.NoError(t, bind(t, `{"quantity": 3}`, &in))
	require.NotNil(t, in.Quantity)
	assert.Equal(t, 3, *in.Quantity)

	var empty struct {
		Quantity *int `json:"quantity"`
	}
	require.NoError(t, bind(t, ``, &empty))
	assert.Nil(t, empty.Quantity)

	err := bind(t, `{"quantity": "three"}`, &in)
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"A valid integer is required."}, v.Fields["quantity"])

	err = bind(t, `{"quantity": `, &in)
	require.ErrorAs(t, err, &v)
	assert.NotEmpty(t, v.NonField)
}

func TestDecimal(t *testing.T) {
	v := apperr.NewValidation()
	n := json.Number("12.50")
	d := Decimal(v, "price", &n)
	require.NotNil(t, d)
	assert.Equal(t, "12.50", d.StringFixed(2))
	assert.Nil(t, Decimal(v, "price", nil))
	assert.True(t, v.Empty())

	bad := json.Number("abc")
	assert.Nil(t, Decimal(v, "price", &bad))
	assert.Equal(t, []string{"A valid number is required."}, v.Fields["price"])
}
