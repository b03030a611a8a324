// Package responder answers ticket reasons from trained keyword rules and queues training requests
// for reasons it cannot answer.
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

// ConfigSource resolves a guild configuration.
type ConfigSource interface {
	GetOrCreate(ctx context.Context, guildID string) (*entities.ServerConfig, error)
}

// Notifier posts a training request into the training channel and returns the message ID.
type Notifier interface {
	NotifyTraining(ctx context.Context, guildID, channelID string, p *entities.PendingTraining) (string, error)
}

// Request is an unmatched ticket reason.
type Request struct {
	GuildID      string
	ChannelID    string
	CreatorID    string
	Reason       string
	TicketNumber int
}

// Responder matches reasons and manages the training queue.
type Responder struct {
	// l is the logger.
	l *slog.Logger

	// doc is the training document.
	doc *dataaccess.Document[entities.TrainingDocument]

	// configs resolves the training channel.
	configs ConfigSource

	// notifier posts training requests.
	notifier Notifier

	// now returns the current time.
	now func() time.Time
}

// NewResponder creates a new keyword responder.
func NewResponder(l *slog.Logger, doc *dataaccess.Document[entities.TrainingDocument], configs ConfigSource, notifier Notifier) *Responder {
	return &Responder{
		l:        l,
		doc:      doc,
		configs:  configs,
		notifier: notifier,
		now:      time.Now,
	}
}

// Match returns the canned response for text, if any rule matches.
func (r *Responder) Match(guildID, text string) (string, bool) {
	var (
		rule entities.KeywordRule
		ok   bool
	)
	r.doc.View(func(doc *entities.TrainingDocument) {
		if s, found := doc.Servers[guildID]; found {
			rule, ok = Match(s.Keywords, text)
		}
	})
	return rule.Response, ok
}

// RequestTraining queues a training request and notifies the training channel. Without a training
// channel nothing is stored and nil is returned.
func (r *Responder) RequestTraining(ctx context.Context, req Request) (*entities.PendingTraining, error) {
	cfg, err := r.configs.GetOrCreate(ctx, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild config: %w", err)
	}
	if !entities.IsSet(cfg.AITrainingChannelID) {
		r.l.Debug("No training channel configured, dropping training request",
			slog.String(logging.KeyGuild, req.GuildID),
			slog.Int(logging.KeyTicket, req.TicketNumber))
		return nil, nil
	}

	now := r.now().UTC()
	pending := &entities.PendingTraining{
		ID:           fmt.Sprintf("train_%d_%d", req.TicketNumber, now.Unix()),
		Reason:       req.Reason,
		TicketNumber: req.TicketNumber,
		ChannelID:    req.ChannelID,
		CreatorID:    req.CreatorID,
		CreatedAt:    custom.NewDatetime(now),
	}

	err = r.doc.Update(ctx, func(doc *entities.TrainingDocument) error {
		cp := *pending
		doc.Guild(req.GuildID).PendingTraining[pending.ID] = &cp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error storing training request: %w", err)
	}

	msgID, err := r.notifier.NotifyTraining(ctx, req.GuildID, cfg.AITrainingChannelID, pending)
	if err != nil {
		return pending, fmt.Errorf("%w: error notifying training channel: %w", errs.ErrDependencyUnavailable, err)
	}
	pending.MessageID = msgID

	err = r.doc.Update(ctx, func(doc *entities.TrainingDocument) error {
		if p, ok := doc.Guild(req.GuildID).PendingTraining[pending.ID]; ok {
			p.MessageID = msgID
		}
		return nil
	})
	if err != nil {
		return pending, fmt.Errorf("error storing training message: %w", err)
	}
	return pending, nil
}

// Train resolves a pending request by adding a rule. A rule with the same keyword group has its
// response replaced in place.
func (r *Responder) Train(ctx context.Context, guildID, trainingID, keywords, response string) (*entities.PendingTraining, error) {
	group := NormalizeGroup(keywords)
	response = strings.TrimSpace(response)
	if group == "" {
		return nil, fmt.Errorf("%w: no keywords given", errs.ErrInvalidValue)
	}
	if response == "" {
		return nil, fmt.Errorf("%w: empty response", errs.ErrInvalidValue)
	}

	var resolved *entities.PendingTraining
	err := r.doc.Update(ctx, func(doc *entities.TrainingDocument) error {
		s := doc.Guild(guildID)
		p, ok := s.PendingTraining[trainingID]
		if !ok {
			return fmt.Errorf("%w: training request %q", errs.ErrNotFound, trainingID)
		}

		idx := slices.IndexFunc(s.Keywords, func(k entities.KeywordRule) bool {
			return NormalizeGroup(k.Keywords) == group
		})
		if idx >= 0 {
			s.Keywords[idx].Response = response
		} else {
			s.Keywords = append(s.Keywords, entities.KeywordRule{Keywords: group, Response: response})
		}

		delete(s.PendingTraining, trainingID)
		cp := *p
		resolved = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.l.Info("Trained keyword rule",
		slog.String(logging.KeyGuild, guildID),
		slog.String("training_id", trainingID),
		slog.String("keywords", group))
	return resolved, nil
}

// Dismiss resolves a pending request without adding a rule.
func (r *Responder) Dismiss(ctx context.Context, guildID, trainingID string) (*entities.PendingTraining, error) {
	var resolved *entities.PendingTraining
	err := r.doc.Update(ctx, func(doc *entities.TrainingDocument) error {
		s := doc.Guild(guildID)
		p, ok := s.PendingTraining[trainingID]
		if !ok {
			return fmt.Errorf("%w: training request %q", errs.ErrNotFound, trainingID)
		}
		delete(s.PendingTraining, trainingID)
		cp := *p
		resolved = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Pending returns a pending training request.
func (r *Responder) Pending(guildID, trainingID string) (*entities.PendingTraining, bool) {
	var out *entities.PendingTraining
	r.doc.View(func(doc *entities.TrainingDocument) {
		if s, ok := doc.Servers[guildID]; ok {
			if p, ok := s.PendingTraining[trainingID]; ok {
				cp := *p
				out = &cp
			}
		}
	})
	return out, out != nil
}

// Rules returns a copy of the guild's rules in priority order of insertion.
func (r *Responder) Rules(guildID string) entities.KeywordRules {
	var out entities.KeywordRules
	r.doc.View(func(doc *entities.TrainingDocument) {
		if s, ok := doc.Servers[guildID]; ok {
			out = slices.Clone(s.Keywords)
		}
	})
	return out
}

// RemoveRule deletes the rule at index (zero based) and returns it.
func (r *Responder) RemoveRule(ctx context.Context, guildID string, index int) (entities.KeywordRule, error) {
	var removed entities.KeywordRule
	err := r.doc.Update(ctx, func(doc *entities.TrainingDocument) error {
		s := doc.Guild(guildID)
		if index < 0 || index >= len(s.Keywords) {
			return fmt.Errorf("%w: keyword rule %d", errs.ErrNotFound, index+1)
		}
		removed = s.Keywords[index]
		s.Keywords = slices.Delete(s.Keywords, index, index+1)
		return nil
	})
	return removed, err
}
