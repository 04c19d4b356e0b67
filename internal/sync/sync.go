package sync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/julienbonastre/plaza-helpers/internal/database"
	"github.com/julienbonastre/plaza-helpers/internal/plaza"
)

// Page sizes of the list endpoints. A shorter page is the last one.
const (
	ordersPageSize    = 50
	shipmentsPageSize = 50
)

// Sync types recorded in the history
const (
	TypeExport        = "export"
	TypeProcessStatus = "process-status"
)

// API is the part of the Plaza client the sync service uses
type API interface {
	GetOrders(ctx context.Context, page int, fulfilmentMethod string) ([]plaza.Order, error)
	GetShipments(ctx context.Context, page int, fulfilmentMethod, orderID string) ([]plaza.Shipment, error)
	GetReturnItems(ctx context.Context) ([]plaza.ReturnItem, error)
	GetInventory(ctx context.Context, q plaza.InventoryQuery) (*plaza.Inventory, error)
	GetInboundList(ctx context.Context, page int) (*plaza.Inbounds, error)
	GetProcessStatus(ctx context.Context, id string) (*plaza.ProcessStatus, error)
}

// Options controls pacing of the service
type Options struct {
	RequestsPerMinute int
	MaxPages          int
}

// Service handles sync operations between Plaza accounts and the local database
type Service struct {
	db       *database.DB
	limiter  *rate.Limiter
	maxPages int
	logger   *zap.Logger
}

// NewService creates a new sync service
func NewService(db *database.DB, logger *zap.Logger, opts Options) *Service {
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:       db,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		maxPages: opts.MaxPages,
		logger:   logger.Named("sync"),
	}
}

// paced waits for a limiter slot before calling fn. A rate limited call
// waits for one more slot and is retried once.
func paced[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := s.limiter.Wait(ctx); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	if !plaza.IsRateLimited(err) {
		return v, err
	}

	s.logger.Warn("rate limited, retrying once", zap.String("op", op))
	if err := s.limiter.Wait(ctx); err != nil {
		return zero, err
	}
	return fn(ctx)
}

type step struct {
	name string
	run  func(ctx context.Context, api API, accountID int64) (int, error)
}

// Export pulls orders, shipments, returns, FBB inventory and inbounds of an
// account into the local database. Every step runs even if an earlier one
// failed; the history records whether the run was complete.
func (s *Service) Export(ctx context.Context, api API, accountID int64) (*database.SyncHistory, error) {
	steps := []step{
		{"orders", s.exportOrders},
		{"shipments", s.exportShipments},
		{"return items", s.exportReturnItems},
		{"inventory", s.exportInventory},
		{"inbounds", s.exportInbounds},
	}
	return s.run(ctx, TypeExport, accountID, api, steps)
}

// RefreshProcessStatuses polls every pending process status of an account
func (s *Service) RefreshProcessStatuses(ctx context.Context, api API, accountID int64) (*database.SyncHistory, error) {
	return s.run(ctx, TypeProcessStatus, accountID, api, []step{{"process statuses", s.refreshProcessStatuses}})
}

func (s *Service) run(ctx context.Context, syncType string, accountID int64, api API, steps []step) (*database.SyncHistory, error) {
	history := &database.SyncHistory{
		AccountID: accountID,
		RunID:     uuid.NewString(),
		SyncType:  syncType,
		Status:    database.SyncStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.db.CreateSyncHistory(history); err != nil {
		return nil, fmt.Errorf("failed to create sync history: %w", err)
	}
	log := s.logger.With(zap.String("run_id", history.RunID), zap.Int64("account_id", accountID), zap.String("type", syncType))

	var (
		total   int
		failed  int
		lastErr error
	)
	for _, st := range steps {
		count, err := st.run(ctx, api, accountID)
		total += count
		if err != nil {
			log.Error("sync step failed", zap.String("step", st.name), zap.Int("items", count), zap.Error(err))
			failed++
			lastErr = fmt.Errorf("%s: %w", st.name, err)
			continue
		}
		log.Info("sync step done", zap.String("step", st.name), zap.Int("items", count))
	}

	now := time.Now().UTC()
	history.CompletedAt = &now
	history.ItemsSynced = total
	switch {
	case lastErr == nil:
		history.Status = database.SyncStatusSuccess
	case failed == len(steps):
		history.Status = database.SyncStatusFailed
		history.ErrorMessage = lastErr.Error()
	default:
		history.Status = database.SyncStatusPartial
		history.ErrorMessage = lastErr.Error()
	}
	if err := s.db.UpdateSyncHistory(history); err != nil {
		return history, fmt.Errorf("failed to update sync history: %w", err)
	}
	if syncType == TypeExport && history.Status != database.SyncStatusFailed {
		if err := s.db.UpdateLastExport(accountID); err != nil {
			log.Warn("failed to update last export", zap.Error(err))
		}
	}

	log.Info("sync complete", zap.String("status", history.Status), zap.Int("items", total))
	return history, lastErr
}

func (s *Service) exportOrders(ctx context.Context, api API, accountID int64) (int, error) {
	total := 0
	for _, method := range []string{plaza.FulfilmentByRetailer, plaza.FulfilmentByBol} {
		for page := 1; page <= s.maxPages; page++ {
			orders, err := paced(ctx, s, "get orders", func(ctx context.Context) ([]plaza.Order, error) {
				return api.GetOrders(ctx, page, method)
			})
			if err != nil {
				return total, err
			}
			if len(orders) == 0 {
				break
			}
			if err := s.db.SaveOrders(accountID, orders); err != nil {
				return total, err
			}
			total += len(orders)
			if len(orders) < ordersPageSize {
				break
			}
		}
	}
	return total, nil
}

func (s *Service) exportShipments(ctx context.Context, api API, accountID int64) (int, error) {
	total := 0
	for _, method := range []string{plaza.FulfilmentByRetailer, plaza.FulfilmentByBol} {
		for page := 1; page <= s.maxPages; page++ {
			shipments, err := paced(ctx, s, "get shipments", func(ctx context.Context) ([]plaza.Shipment, error) {
				return api.GetShipments(ctx, page, method, "")
			})
			if err != nil {
				return total, err
			}
			if len(shipments) == 0 {
				break
			}
			if err := s.db.SaveShipments(accountID, shipments); err != nil {
				return total, err
			}
			total += len(shipments)
			if len(shipments) < shipmentsPageSize {
				break
			}
		}
	}
	return total, nil
}

func (s *Service) exportReturnItems(ctx context.Context, api API, accountID int64) (int, error) {
	items, err := paced(ctx, s, "get return items", api.GetReturnItems)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.db.SaveReturnItems(accountID, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Service) exportInventory(ctx context.Context, api API, accountID int64) (int, error) {
	total := 0
	for page := 1; page <= s.maxPages; page++ {
		inv, err := paced(ctx, s, "get inventory", func(ctx context.Context) (*plaza.Inventory, error) {
			return api.GetInventory(ctx, plaza.InventoryQuery{Page: page})
		})
		if err != nil {
			return total, err
		}
		if len(inv.Offers) == 0 {
			break
		}
		if err := s.db.SaveInventoryOffers(accountID, inv.Offers); err != nil {
			return total, err
		}
		total += len(inv.Offers)
		if lastPage(page, inv.TotalPageCount) {
			break
		}
	}
	return total, nil
}

func (s *Service) exportInbounds(ctx context.Context, api API, accountID int64) (int, error) {
	total := 0
	for page := 1; page <= s.maxPages; page++ {
		list, err := paced(ctx, s, "get inbound list", func(ctx context.Context) (*plaza.Inbounds, error) {
			return api.GetInboundList(ctx, page)
		})
		if err != nil {
			return total, err
		}
		if len(list.Inbounds) == 0 {
			break
		}
		if err := s.db.SaveInbounds(accountID, list.Inbounds); err != nil {
			return total, err
		}
		total += len(list.Inbounds)
		if lastPage(page, list.TotalPageCount) {
			break
		}
	}
	return total, nil
}

func (s *Service) refreshProcessStatuses(ctx context.Context, api API, accountID int64) (int, error) {
	pending, err := s.db.GetPendingProcessStatuses(accountID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, ps := range pending {
		id := ps.ID
		latest, err := paced(ctx, s, "get process status", func(ctx context.Context) (*plaza.ProcessStatus, error) {
			return api.GetProcessStatus(ctx, id)
		})
		if err != nil {
			return updated, err
		}
		if latest.ID == "" {
			latest.ID = id
		}
		if err := s.db.SaveProcessStatus(accountID, latest); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// lastPage reports whether page is the last one according to a
// TotalPageCount value. Unknown counts never end the loop.
func lastPage(page int, totalPageCount string) bool {
	n, err := strconv.Atoi(totalPageCount)
	return err == nil && page >= n
}
