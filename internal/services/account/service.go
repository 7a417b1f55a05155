package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
)

const (
	msgBadCredentials = "Unable to log in with provided credentials."
	msgUsernameTaken  = "A user with that username already exists."
	tokenBytes        = 20
)

// Service owns users, API tokens and group membership
type Service struct {
	store      store.Store
	logger     *logger.Logger
	bcryptCost int
}

func NewService(st store.Store, log *logger.Logger) *Service {
	return &Service{
		store:      st,
		logger:     log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// UserInput describes a new account
type UserInput struct {
	Username  string   `json:"username" validate:"notblank,max=150,username"`
	Email     string   `json:"email" validate:"omitempty,email,max=254"`
	Password  string   `json:"password" validate:"notblank,max=128"`
	Superuser bool     `json:"-"`
	Groups    []string `json:"-"`
}

// Register creates a customer account
func (s *Service) Register(ctx context.Context, in UserInput) (*models.User, error) {
	in.Superuser = false
	in.Groups = nil
	return s.CreateUser(ctx, in)
}

// CreateUser creates an account with optional superuser rights and groups
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	groups := make([]string, 0, len(in.Groups))
	for _, g := range in.Groups {
		role, ok := access.ParseRole(g)
		if !ok {
			return nil, apperr.Field("groups", fmt.Sprintf("Unknown group %q.", g))
		}
		groups = append(groups, role.String())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		IsSuperuser:  in.Superuser,
		Groups:       groups,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, apperr.Field("username", msgUsernameTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user_created", "User created", "", map[string]interface{}{
		"user_id":   u.ID,
		"username":  u.Username,
		"superuser": u.IsSuperuser,
		"groups":    groups,
	})
	return u, nil
}

// DeleteUser removes the account with its cart and orders. Orders it was
// delivering become unassigned.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	u, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("user_deleted", "User deleted", "", map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
	})
	return nil
}

func (s *Service) findByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Credentials is the token exchange payload
type Credentials struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// IssueToken checks the credentials and returns the user's token,
// creating it on first use.
func (s *Service) IssueToken(ctx context.Context, in Credentials) (string, error) {
	if err := validation.Struct(in); err != nil {
		return "", err
	}

	u, err := s.store.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.NonFieldError(msgBadCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return "", apperr.NonFieldError(msgBadCredentials)
	}

	key, err := s.store.GetToken(ctx, u.ID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("get token: %w", err)
	}

	key, err = newTokenKey()
	if err != nil {
		return "", err
	}
	err = s.store.CreateToken(ctx, u.ID, key)
	if errors.Is(err, store.ErrDuplicateKey) {
		// a concurrent exchange created it first
		return s.store.GetToken(ctx, u.ID)
	}
	if err != nil {
		return "", fmt.Errorf("create token: %w", err)
	}

	s.logger.Info("token_issued", "API token issued", "", map[string]interface{}{
		"user_id": u.ID,
	})
	return key, nil
}

func newTokenKey() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Authenticate resolves an API token into the caller's principal
func (s *Service) Authenticate(ctx context.Context, token string) (access.Principal, error) {
	u, err := s.store.GetUserByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return access.Principal{}, apperr.Unauthenticated("Invalid token.")
	}
	if err != nil {
		return access.Principal{}, fmt.Errorf("get user by token: %w", err)
	}
	return access.NewPrincipal(u), nil
}

// Me returns the caller's own record
func (s *Service) Me(ctx context.Context, p access.Principal) (*models.User, error) {
	u, err := s.store.GetUser(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthenticated("User not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) groupFor(p access.Principal, action access.Action, group string) (access.Role, error) {
	if err := access.Authorize(p, access.ResourceGroup, action, access.Target{}); err != nil {
		return "", err
	}
	role, ok := access.ParseRole(group)
	if !ok {
		return "", apperr.NotFound("Group")
	}
	return role, nil
}

// GroupMembers lists the users in group
func (s *Service) GroupMembers(ctx context.Context, p access.Principal, group string) ([]models.User, error) {
	role, err := s.groupFor(p, access.ActionList, group)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListGroupMembers(ctx, role.String())
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return users, nil
}

// AddToGroup adds the named user to group and returns the confirmation message
func (s *Service) AddToGroup(ctx context.Context, p access.Principal, group, username string) (string, error) {
	role, err := s.groupFor(p, access.ActionCreate, group)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(username) == "" {
		return "", apperr.Field("username", "Username not provided")
	}

	u, err := s.findByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if err := s.store.AddUserToGroup(ctx, u.ID, role.String()); err != nil {
		return "", fmt.Errorf("add user to group: %w", err)
	}

	s.logger.Info("group_member_added", "User added to group", "", map[string]interface{}{
		"user_id":  u.ID,
		"group":    role.String(),
		"added_by": p.Username,
	})
	return fmt.Sprintf("User is added to %s group", role), nil
}

// RemoveFromGroup removes the user from group and returns the confirmation message
func (s *Service) RemoveFromGroup(ctx context.Context, p access.Principal, group string, userID int64) (string, error) {
	role, err := s.groupFor(p, access.ActionDelete, group)
	if err != nil {
		return "", err
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.NotFound("User")
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	removed, err := s.store.RemoveUserFromGroup(ctx, userID, role.String())
	if err != nil {
		return "", fmt.Errorf("remove user from group: %w", err)
	}
	if !removed {
		return "", apperr.NonFieldError(fmt.Sprintf("User is not in the %s group", role))
	}

	s.logger.Info("group_member_removed", "User removed from group", "", map[string]interface{}{
		"user_id":    userID,
		"group":      role.String(),
		"removed_by": p.Username,
	})
	return fmt.Sprintf("User is removed from %s group", role), nil
}
