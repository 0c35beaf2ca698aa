package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"houseselect/internal/domain"
	"houseselect/internal/store"

	"go.uber.org/zap"
)

// KVSessionsRepo stores each session as one JSON blob under
// <prefix><session_id>, mirroring the single-record localStorage model
// of the original client.
type KVSessionsRepo struct {
	kv     store.KV
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewKVSessionsRepo(kv store.KV, prefix string, ttl time.Duration, logger *zap.Logger) *KVSessionsRepo {
	return &KVSessionsRepo{kv: kv, prefix: prefix, ttl: ttl, logger: logger}
}

func (r *KVSessionsRepo) key(id string) string { return r.prefix + id }

func (r *KVSessionsRepo) Save(ctx context.Context, s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", s.ID, err)
	}
	if err := r.kv.Set(ctx, r.key(s.ID), string(raw), r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *KVSessionsRepo) Load(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.kv.Get(ctx, r.key(id))
	if err != nil {
		if err == store.ErrMiss {
			return nil, nil
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	s := &domain.Session{}
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		// A corrupt record is "no saved session", not a failure.
		r.logger.Warn("discarding unreadable session record",
			zap.String("session_id", id), zap.Error(err))
		return nil, nil
	}
	normalize(s, id)
	return s, nil
}

func (r *KVSessionsRepo) Delete(ctx context.Context, id string) error {
	if err := r.kv.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// normalize migrates records written by older builds so invariants hold
// before the session is handed to anyone.
func normalize(s *domain.Session, id string) {
	if s.ID == "" {
		s.ID = id
	}
	if s.Tables == nil {
		s.Tables = map[string]*domain.Table{}
	}
	if len(s.TableOrder) == 0 && len(s.Tables) > 0 {
		// Single-table era records had no explicit order.
		for name := range s.Tables {
			s.TableOrder = append(s.TableOrder, name)
		}
	}
	if s.ActiveTable == "" && len(s.TableOrder) > 0 {
		s.ActiveTable = s.TableOrder[0]
	}
	for _, it := range s.SelectedItems {
		// Items from single-table sessions carried no table reference.
		if it.Table == "" {
			it.Table = s.ActiveTable
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if it.Cells == nil {
			it.Cells = map[string]string{}
		}
	}
	s.RecomputeRooms()
}
