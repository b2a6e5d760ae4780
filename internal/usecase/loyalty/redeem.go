package loyalty

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

type Redeem struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	clock   timezone.Clock
	program loyalty.Program
}

func NewRedeem(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	program loyalty.Program,
) *Redeem {
	return &Redeem{
		repo:    repo,
		audit:   audit,
		clock:   clock,
		program: program,
	}
}

var redeemRoles = role.NewSet(role.Reception, role.SuperAdmin, role.BranchAdmin)

func (uc *Redeem) Execute(
	ctx context.Context,
	clientID uint,
	points int64,
	actor role.Actor,
) (*loyalty.Account, error) {

	if err := actor.Require(redeemRoles); err != nil {
		return nil, err
	}

	var (
		client *models.Client
		left   int64
	)

	err := uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		client, err = domain.LockVisibleClient(ctx, tx, clientID, actor)
		if err != nil {
			return err
		}

		left, err = uc.program.Redeem(client.Loyalty.Points, points)
		if err != nil {
			return err
		}
		client.Loyalty.Points = left

		if err := tx.UpdateClientLoyalty(ctx, client); err != nil {
			return err
		}
		return tx.CreateLoyaltyGrant(ctx, &models.LoyaltyGrant{
			ClientID:  client.ID,
			Kind:      models.GrantRedeemed,
			Points:    -points,
			GrantedBy: actor.Identity(),
			CreatedAt: uc.clock.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(actor, "loyalty_redeemed", "client", client.ID, map[string]int64{
		"points":  points,
		"balance": left,
	}))

	acc := uc.program.Account(client.Loyalty.Points, client.Loyalty.TotalSpent)
	return &acc, nil
}
