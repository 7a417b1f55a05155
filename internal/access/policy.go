// Package access decides who may read or change which resource.
// Decisions are pure functions of a Principal and the target record.
package access

import (
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

type Resource string

const (
	ResourceCategory Resource = "category"
	ResourceMenuItem Resource = "menu_item"
	ResourceCart     Resource = "cart"
	ResourceOrder    Resource = "order"
	ResourceGroup    Resource = "group"
)

type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Target describes the ownership of a single record. The zero value means
// the action is not about one record.
type Target struct {
	OwnerID        int64
	DeliveryCrewID *int64
}

// OrderTarget returns the ownership of o
func OrderTarget(o *models.Order) Target {
	return Target{OwnerID: o.UserID, DeliveryCrewID: o.DeliveryCrewID}
}

func (t Target) assignedTo(userID int64) bool {
	return t.DeliveryCrewID != nil && *t.DeliveryCrewID == userID
}

type rule func(p Principal, t Target) bool

func anyone(Principal, Target) bool { return true }
func managers(p Principal, _ Target) bool { return p.IsManager() }
func customers(p Principal, _ Target) bool { return p.IsCustomer() }
func superusers(p Principal, _ Target) bool { return p.Superuser }
func orderViewer(p Principal, t Target) bool { return p.IsManager() || orderParty(p, t) }
func orderUpdater(p Principal, t Target) bool { return p.IsManager() || crewOnOrder(p, t) }

func orderParty(p Principal, t Target) bool {
	if p.IsDeliveryCrew() {
		return t.assignedTo(p.UserID)
	}
	return t.OwnerID == p.UserID
}

func crewOnOrder(p Principal, t Target) bool {
	return p.IsDeliveryCrew() && t.assignedTo(p.UserID)
}

var policy = map[Resource]map[Action]rule{
	ResourceCategory: {
		ActionList:   anyone,
		ActionRead:   anyone,
		ActionCreate: managers,
		ActionUpdate: managers,
		ActionDelete: managers,
	},
	ResourceMenuItem: {
		ActionList:   anyone,
		ActionRead:   anyone,
		ActionCreate: managers,
		ActionUpdate: managers,
		ActionDelete: managers,
	},
	ResourceCart: {
		ActionList:   customers,
		ActionCreate: customers,
		ActionDelete: customers,
	},
	ResourceOrder: {
		ActionList:   anyone,
		ActionRead:   orderViewer,
		ActionCreate: customers,
		ActionUpdate: orderUpdater,
		ActionDelete: managers,
	},
	ResourceGroup: {
		ActionList:   superusers,
		ActionCreate: superusers,
		ActionDelete: superusers,
	},
}

// Authorize returns nil when p may perform action on resource, and the
// generic forbidden error otherwise. Unknown pairs are denied.
func Authorize(p Principal, resource Resource, action Action, target Target) error {
	actions, ok := policy[resource]
	if !ok {
		return apperr.Forbidden()
	}
	allow, ok := actions[action]
	if !ok || !allow(p, target) {
		return apperr.Forbidden()
	}
	return nil
}

// OrderListScope returns the filter that limits an order listing to what p may see
func OrderListScope(p Principal) models.OrderFilter {
	switch {
	case p.IsManager():
		return models.OrderFilter{}
	case p.IsDeliveryCrew():
		id := p.UserID
		return models.OrderFilter{DeliveryCrewID: &id}
	default:
		id := p.UserID
		return models.OrderFilter{UserID: &id}
	}
}

// UpdateScope is the set of order fields a caller may change
type UpdateScope int

const (
	ScopeNone UpdateScope = iota
	ScopeStatusOnly
	ScopeAll
)

// OrderUpdateScope returns which fields of o the caller may change.
// It returns ScopeNone together with the forbidden error.
func OrderUpdateScope(p Principal, o *models.Order) (UpdateScope, error) {
	if err := Authorize(p, ResourceOrder, ActionUpdate, OrderTarget(o)); err != nil {
		return ScopeNone, err
	}
	if p.IsManager() {
		return ScopeAll, nil
	}
	return ScopeStatusOnly, nil
}
