package payment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/payment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// ClearSecurityFlags is the only way back from a blacklist.
type ClearSecurityFlags struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewClearSecurityFlags(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ClearSecurityFlags {
	return &ClearSecurityFlags{
		repo:  repo,
		audit: audit,
	}
}

func (uc *ClearSecurityFlags) Execute(
	ctx context.Context,
	clientID uint,
	actor role.Actor,
) (*models.Client, error) {

	if err := actor.Require(role.Admins); err != nil {
		return nil, err
	}

	var (
		client *models.Client
		before models.SecurityFlags
	)

	err := uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		client, err = domain.LockVisibleClient(ctx, tx, clientID, actor)
		if err != nil {
			return err
		}

		before = client.Security
		payment.Clear(&client.Security)

		return tx.UpdateClientSecurityFlags(ctx, client)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(actor, "client_flags_cleared", "client", client.ID, before))

	return client, nil
}
