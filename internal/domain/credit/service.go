package credit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const analyticsCacheTTL = 60 * time.Second

// Balance is the computed balance view: the cached counter plus ledger
// aggregates. Displayed balance is floored at zero.
type Balance struct {
	Balance        int `json:"balance"`
	TotalPurchased int `json:"totalPurchased"`
	TotalUsed      int `json:"totalUsed"`
}

// RecordRequest is a manual ledger entry (admin/testing).
type RecordRequest struct {
	UserID      string
	Type        TxType
	Amount      int
	Description string
}

// RecomputeResult reports a cache-vs-ledger audit.
type RecomputeResult struct {
	UserID        string `json:"userId"`
	LedgerBalance int    `json:"ledgerBalance"`
	CachedBalance int    `json:"cachedBalance"`
	Repaired      bool   `json:"repaired"`
}

// Service defines the credit query and bookkeeping operations
type Service interface {
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	GetHistory(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
	Record(ctx context.Context, req RecordRequest) (*Transaction, error)
	AdminTransactions(ctx context.Context, f SearchFilters) ([]AdminTransaction, *Stats, error)
	Analytics(ctx context.Context, days int) (*Analytics, error)
	Recompute(ctx context.Context, userID string) (*RecomputeResult, error)
}

type service struct {
	repo  Repository
	cache *redis.Client
}

// NewService creates a new credit service. cache may be nil.
func NewService(db *sqlx.DB, cache *redis.Client) Service {
	return &service{repo: NewRepository(db), cache: cache}
}

// NewServiceWithRepo wires an explicit repository (tests).
func NewServiceWithRepo(repo Repository, cache *redis.Client) Service {
	return &service{repo: repo, cache: cache}
}

// GetBalance reads the cached counter; the ledger is the source of truth and
// every write path updates both inside one transaction, so the counter only
// drifts if a migration or manual edit bypassed the service. Recompute is the
// repair tool for that case.
func (s *service) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	balance, err := s.repo.CachedBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	purchased, used, err := s.repo.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < 0 {
		balance = 0
	}
	return &Balance{Balance: balance, TotalPurchased: purchased, TotalUsed: used}, nil
}

func (s *service) GetHistory(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, userID, Pagination{Limit: limit, Offset: offset})
}

func (s *service) Record(ctx context.Context, req RecordRequest) (*Transaction, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return nil, ErrInvalidType
	}

	amount := req.Amount
	if req.Type == TxTypeUsage {
		amount = -amount
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "credit balance adjustment"
	}

	t := &Transaction{
		UserID:      req.UserID,
		Type:        req.Type,
		Amount:      amount,
		Description: description,
		Status:      StatusCompleted,
	}
	if err := s.repo.Record(ctx, t); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Now().UTC()
	return t, nil
}

func (s *service) AdminTransactions(ctx context.Context, f SearchFilters) ([]AdminTransaction, *Stats, error) {
	transactions, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.repo.SearchStats(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return transactions, stats, nil
}

func (s *service) Analytics(ctx context.Context, days int) (*Analytics, error) {
	if days <= 0 {
		days = 30
	}

	cacheKey := fmt.Sprintf("credits:analytics:%d", days)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var a Analytics
			if err := json.Unmarshal(cached, &a); err == nil {
				return &a, nil
			}
		}
	}

	daily, err := s.repo.DailyStats(ctx, days)
	if err != nil {
		return nil, err
	}
	popular, err := s.repo.PopularPackages(ctx, days, 5)
	if err != nil {
		return nil, err
	}

	a := &Analytics{DailyStats: daily, PopularPackages: popular}

	if s.cache != nil {
		if raw, err := json.Marshal(a); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, analyticsCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("failed to cache analytics")
			}
		}
	}
	return a, nil
}

func (s *service) Recompute(ctx context.Context, userID string) (*RecomputeResult, error) {
	ledger, err := s.repo.LedgerSum(ctx, userID)
	if err != nil {
		return nil, err
	}
	cached, err := s.repo.CachedBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &RecomputeResult{UserID: userID, LedgerBalance: ledger, CachedBalance: cached}
	if floored(ledger) == cached {
		return result, nil
	}

	repaired, err := s.repo.RepairBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.Warn().
		Str("user_id", userID).
		Int("ledger", ledger).
		Int("cached", cached).
		Int("repaired", repaired).
		Msg("balance cache drifted from ledger, repaired")

	result.CachedBalance = repaired
	result.Repaired = true
	return result, nil
}

func floored(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
