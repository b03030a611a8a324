package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
)

// Stores groups the documents the bot persists.
type Stores struct {
	Config      *Document[entities.ConfigDocument]
	Training    *Document[entities.TrainingDocument]
	Permissions *Document[entities.PermissionDocument]
	Tickets     *Document[entities.TicketDocument]
}

// NewStores creates the documents on backend and loads them.
func NewStores(ctx context.Context, l *slog.Logger, backend Backend) (*Stores, error) {
	s := &Stores{
		Config:      NewDocument[entities.ConfigDocument](l, backend, DocumentConfig),
		Training:    NewDocument[entities.TrainingDocument](l, backend, DocumentTraining),
		Permissions: NewDocument[entities.PermissionDocument](l, backend, DocumentPermissions),
		Tickets:     NewDocument[entities.TicketDocument](l, backend, DocumentTickets),
	}

	loaders := []interface {
		Load(context.Context) error
	}{s.Config, s.Training, s.Permissions, s.Tickets}

	for _, d := range loaders {
		if err := d.Load(ctx); err != nil {
			return nil, fmt.Errorf("error loading stores: %w", err)
		}
	}
	return s, nil
}

// CopyTo writes every document to another backend.
func (s *Stores) CopyTo(ctx context.Context, b Backend) error {
	savers := []interface {
		SaveTo(context.Context, Backend) error
	}{s.Config, s.Training, s.Permissions, s.Tickets}

	for _, d := range savers {
		if err := d.SaveTo(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
