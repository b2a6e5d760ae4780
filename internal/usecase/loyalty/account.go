package loyalty

import (
	"context"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

type AccountView struct {
	ClientID uint                  `json:"client_id"`
	Account  loyalty.Account       `json:"account"`
	Grants   []models.LoyaltyGrant `json:"grants"`
}

// GetAccount shows the loyalty state of a client and its ledger, newest
// first.
type GetAccount struct {
	repo    domain.Repository
	program loyalty.Program
}

func NewGetAccount(repo domain.Repository, program loyalty.Program) *GetAccount {
	return &GetAccount{repo: repo, program: program}
}

func (uc *GetAccount) Execute(
	ctx context.Context,
	clientID uint,
	actor role.Actor,
) (*AccountView, error) {

	if err := actor.Require(role.Staff); err != nil {
		return nil, err
	}

	client, err := domain.FindVisibleClient(ctx, uc.repo, clientID, actor)
	if err != nil {
		return nil, err
	}

	grants, err := uc.repo.ListLoyaltyGrants(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	return &AccountView{
		ClientID: client.ID,
		Account:  uc.program.Account(client.Loyalty.Points, client.Loyalty.TotalSpent),
		Grants:   grants,
	}, nil
}
