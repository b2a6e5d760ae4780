package loyalty

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

type BonusInput struct {
	Kind loyalty.BonusKind

	// ReferredID is the new client brought in, for referral bonuses.
	ReferredID uint
}

// GrantBonus issues a flat bonus. Welcome is granted once per client,
// birthday once per calendar year during the birthday month, referral once
// per referred client.
type GrantBonus struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	clock   timezone.Clock
	program loyalty.Program
}

func NewGrantBonus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	program loyalty.Program,
) *GrantBonus {
	return &GrantBonus{
		repo:    repo,
		audit:   audit,
		clock:   clock,
		program: program,
	}
}

var bonusRoles = role.NewSet(role.Reception, role.SuperAdmin, role.BranchAdmin)

func (uc *GrantBonus) Execute(
	ctx context.Context,
	clientID uint,
	in BonusInput,
	actor role.Actor,
) (*loyalty.Account, error) {

	if err := actor.Require(bonusRoles); err != nil {
		return nil, err
	}

	points, err := uc.program.Bonus(in.Kind)
	if err != nil {
		return nil, err
	}
	if points <= 0 {
		return nil, httperr.ErrBusiness("bonus_disabled")
	}

	var client *models.Client

	// Cliente travado: a checagem de bônus já concedido e o crédito não
	// intercalam com outra concessão
	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		client, err = domain.LockVisibleClient(ctx, tx, clientID, actor)
		if err != nil {
			return err
		}

		shop, err := tx.GetBarbershopByID(ctx, client.BarbershopID)
		if err != nil {
			return err
		}
		now := uc.clock.In(shop.Timezone)

		q := domain.GrantQuery{ClientID: client.ID, Kind: string(in.Kind)}
		grant := &models.LoyaltyGrant{
			ClientID:  client.ID,
			Kind:      string(in.Kind),
			Points:    points,
			ExpiresAt: uc.program.ExpiresAt(now),
			GrantedBy: actor.Identity(),
			CreatedAt: now,
		}

		switch in.Kind {
		case loyalty.BonusBirthday:
			if client.Birthday == nil {
				return httperr.ErrBusiness("birthday_unknown")
			}
			if client.Birthday.Month() != now.Month() {
				return httperr.ErrBusiness("not_birthday_month")
			}
			yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
			q.Since = &yearStart

		case loyalty.BonusReferral:
			referred, err := domain.FindVisibleClient(ctx, tx, in.ReferredID, actor)
			if err != nil {
				return err
			}
			if referred.ReferredByID == nil || *referred.ReferredByID != client.ID {
				return httperr.ErrBusiness("referral_mismatch")
			}
			q.ReferredID = &referred.ID
			grant.ReferredID = &referred.ID
		}

		already, err := tx.HasLoyaltyGrant(ctx, q)
		if err != nil {
			return err
		}
		if already {
			return httperr.ErrBusiness("bonus_already_granted")
		}

		client.Loyalty.Points += points

		if err := tx.UpdateClientLoyalty(ctx, client); err != nil {
			return err
		}
		return tx.CreateLoyaltyGrant(ctx, grant)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(actor, "loyalty_bonus", "client", client.ID, map[string]any{
		"kind":   in.Kind,
		"points": points,
	}))

	acc := uc.program.Account(client.Loyalty.Points, client.Loyalty.TotalSpent)
	return &acc, nil
}
