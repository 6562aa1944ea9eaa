// Package prefs keeps per-profile board preferences: the manual category order and the board view.
//
// Values are whole JSON blobs replaced on every save. Nothing is merged, and nothing is shared
// between profiles, so two devices of the same user keep independent orders.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/organizer"
)

type Namespace string

const (
	NamespaceTasks Namespace = "tasks"
	NamespaceNotes Namespace = "notes"
)

var ErrUnknownNamespace = errors.New("unknown namespace")

func ParseNamespace(s string) (Namespace, error) {
	switch ns := Namespace(s); ns {
	case NamespaceTasks, NamespaceNotes:
		return ns, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNamespace, s)
}

type Store struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewStore(client *redis.Client, logger *zap.Logger) *Store {
	return &Store{redis: client, logger: logger}
}

// CategoryOrder returns the saved order. A missing or unreadable value is an empty order.
func (s *Store) CategoryOrder(ctx context.Context, userID string, ns Namespace) ([]string, error) {
	raw, err := s.redis.Get(ctx, orderKey(ns, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	order := organizer.DecodeOrder(raw)
	if order == nil {
		s.logger.Debug("ignoring unreadable category order", zap.String("user_id", userID), zap.String("namespace", string(ns)))
	}
	return order, nil
}

// SaveCategoryOrder overwrites the saved order. The sentinel is never stored.
func (s *Store) SaveCategoryOrder(ctx context.Context, userID string, ns Namespace, order []string) error {
	data, err := json.Marshal(organizer.StoredOrder(order))
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, orderKey(ns, userID), data, 0).Err()
}

func (s *Store) ViewState(ctx context.Context, userID string, ns Namespace) (organizer.ViewState, error) {
	raw, err := s.redis.Get(ctx, viewKey(ns, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return organizer.DefaultViewState(), nil
	}
	if err != nil {
		return organizer.ViewState{}, err
	}
	view := organizer.DefaultViewState()
	if err := json.Unmarshal(raw, &view); err != nil {
		s.logger.Debug("ignoring unreadable view state", zap.String("user_id", userID), zap.Error(err))
		return organizer.DefaultViewState(), nil
	}
	if view.Tags == nil {
		view.Tags = []string{}
	}
	return view, nil
}

func (s *Store) SaveViewState(ctx context.Context, userID string, ns Namespace, view organizer.ViewState) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, viewKey(ns, userID), data, 0).Err()
}

func orderKey(ns Namespace, userID string) string {
	return "category-order:" + string(ns) + ":" + userID
}

func viewKey(ns Namespace, userID string) string {
	return "view:" + string(ns) + ":" + userID
}
