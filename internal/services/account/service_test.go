package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store/memory"
)

func newService() (*Service, *memory.Store) {
	st := memory.New()
	s := NewService(st, logger.Discard())
	s.bcryptCost = bcrypt.MinCost
	return s, st
}

func TestRegisterAndIssueToken(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	u, err := s.Register(ctx, UserInput{Username: "mario", Email: "mario@littlelemon.com", Password: "lemon!pass"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "lemon!pass", u.PasswordHash)

	token, err := s.IssueToken(ctx, Credentials{Username: "mario", Password: "lemon!pass"})
	require.NoError(t, err)
	assert.Len(t, token, 40)

	again, err := s.IssueToken(ctx, Credentials{Username: "mario", Password: "lemon!pass"})
	require.NoError(t, err)
	assert.Equal(t, token, again)

	p, err := s.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.True(t, p.IsCustomer())

	_, err = s.Authenticate(ctx, "0000")
	assert.Equal(t, 401, apperr.HTTPStatus(err))
}

func TestIssueTokenRejectsBadCredentials(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()
	_, err := s.Register(ctx, UserInput{Username: "mario", Password: "lemon!pass"})
	require.NoError(t, err)

	for _, in := range []Credentials{
		{Username: "mario", Password: "wrong"},
		{Username: "luigi", Password: "lemon!pass"},
	} {
		_, err := s.IssueToken(ctx, in)
		var v *apperr.ValidationError
		require.ErrorAs(t, err, &v)
		assert.Equal(t, []string{"Unable to log in with provided credentials."}, v.NonField)
	}

	_, err = s.IssueToken(ctx, Credentials{Username: "mario"})
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "password")
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()
	_, err := s.Register(ctx, UserInput{Username: "mario", Password: "pw"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    UserInput
		field string
	}{
		{"blank username", UserInput{Password: "pw"}, "username"},
		{"bad username", UserInput{Username: "mario luigi", Password: "pw"}, "username"},
		{"bad email", UserInput{Username: "peach", Email: "peach", Password: "pw"}, "email"},
		{"missing password", UserInput{Username: "peach"}, "password"},
		{"taken username", UserInput{Username: "mario", Password: "pw"}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.in)
			var v *apperr.ValidationError
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v.Fields, tt.field)
		})
	}
}

func TestRegisterIgnoresPrivileges(t *testing.T) {
	s, _ := newService()
	u, err := s.Register(context.Background(), UserInput{
		Username: "bowser", Password: "pw", Superuser: true, Groups: []string{"manager"},
	})
	require.NoError(t, err)
	assert.False(t, u.IsSuperuser)
	assert.Empty(t, u.Groups)
}

func TestGroupMembership(t *testing.T) {
	s, st := newService()
	ctx := context.Background()

	admin, err := s.CreateUser(ctx, UserInput{Username: "admin", Password: "pw", Superuser: true})
	require.NoError(t, err)
	manager, err := s.CreateUser(ctx, UserInput{Username: "adrian", Password: "pw", Groups: []string{"Manager"}})
	require.NoError(t, err)
	luigi, err := s.Register(ctx, UserInput{Username: "luigi", Password: "pw"})
	require.NoError(t, err)

	root := access.NewPrincipal(admin)

	msg, err := s.AddToGroup(ctx, root, "Delivery Crew", "luigi")
	require.NoError(t, err)
	assert.Equal(t, "User is added to delivery-crew group", msg)

	members, err := s.GroupMembers(ctx, root, "delivery_crew")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "luigi", members[0].Username)

	stored, err := st.GetUser(ctx, luigi.ID)
	require.NoError(t, err)
	assert.True(t, access.NewPrincipal(stored).IsDeliveryCrew())

	msg, err = s.RemoveFromGroup(ctx, root, "delivery-crew", luigi.ID)
	require.NoError(t, err)
	assert.Equal(t, "User is removed from delivery-crew group", msg)

	_, err = s.RemoveFromGroup(ctx, root, "delivery-crew", luigi.ID)
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"User is not in the delivery-crew group"}, v.NonField)

	_, err = s.RemoveFromGroup(ctx, root, "delivery-crew", 9999)
	assert.Equal(t, 404, apperr.HTTPStatus(err))
	_, err = s.AddToGroup(ctx, root, "manager", "nobody")
	assert.Equal(t, 404, apperr.HTTPStatus(err))
	_, err = s.AddToGroup(ctx, root, "manager", " ")
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	_, err = s.GroupMembers(ctx, root, "chefs")
	assert.Equal(t, 404, apperr.HTTPStatus(err))

	// managers are not superusers
	_, err = s.GroupMembers(ctx, access.NewPrincipal(manager), "manager")
	assert.Equal(t, 403, apperr.HTTPStatus(err))
}

func TestDeleteUserUnassignsDeliveries(t *testing.T) {
	s, st := newService()
	ctx := context.Background()

	customer, err := s.Register(ctx, UserInput{Username: "mario", Password: "pw"})
	require.NoError(t, err)
	crew, err := s.CreateUser(ctx, UserInput{Username: "luigi", Password: "pw", Groups: []string{"delivery-crew"}})
	require.NoError(t, err)

	o := &models.Order{UserID: customer.ID, DeliveryCrewID: &crew.ID}
	require.NoError(t, st.InsertOrder(ctx, o))

	require.NoError(t, s.DeleteUser(ctx, "luigi"))
	got, err := st.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeliveryCrewID)

	require.NoError(t, s.DeleteUser(ctx, "mario"))
	_, err = st.GetOrder(ctx, o.ID)
	assert.Error(t, err)

	assert.Equal(t, 404, apperr.HTTPStatus(s.DeleteUser(ctx, "mario")))
}
