package database

import (
	"fmt"

	"github.com/julienbonastre/plaza-helpers/internal/plaza"
)

// Record tables
const (
	TableOrders          = "orders"
	TableShipments       = "shipments"
	TableReturnItems     = "return_items"
	TableInventoryOffers = "inventory_offers"
	TableInbounds        = "inbounds"
)

func (db *DB) saveRecords(table string, accountID int64, ids []string, entities []plaza.Entity) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO ` + table + ` (account_id, external_id, payload, synced_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id, external_id) DO UPDATE SET
			payload = excluded.payload,
			synced_at = excluded.synced_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i, e := range entities {
		data, err := plaza.Marshal(e, "")
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(accountID, ids[i], string(data)); err != nil {
			return fmt.Errorf("failed to save %s %s: %w", table, ids[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

func loadRecords[T plaza.Entity](db *DB, table string, accountID int64, limit, offset int) ([]T, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT payload FROM `+table+`
		WHERE account_id = ?
		ORDER BY external_id
		LIMIT ? OFFSET ?
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		item := new(T)
		if err := plaza.Unmarshal([]byte(payload), any(item).(plaza.Entity)); err != nil {
			return nil, fmt.Errorf("corrupt %s payload: %w", table, err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// CountRecords returns the number of stored rows of a record table for an account
func (db *DB) CountRecords(table string, accountID int64) (int, error) {
	switch table {
	case TableOrders, TableShipments, TableReturnItems, TableInventoryOffers, TableInbounds:
	default:
		return 0, fmt.Errorf("unknown record table %q", table)
	}
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE account_id = ?`, accountID).Scan(&n)
	return n, err
}

// SaveOrders stores orders keyed by order id
func (db *DB) SaveOrders(accountID int64, orders []plaza.Order) error {
	ids := make([]string, len(orders))
	entities := make([]plaza.Entity, len(orders))
	for i, o := range orders {
		ids[i], entities[i] = o.OrderID, o
	}
	return db.saveRecords(TableOrders, accountID, ids, entities)
}

// GetOrders returns stored orders
func (db *DB) GetOrders(accountID int64, limit, offset int) ([]plaza.Order, error) {
	return loadRecords[plaza.Order](db, TableOrders, accountID, limit, offset)
}

// SaveShipments stores shipments keyed by shipment id
func (db *DB) SaveShipments(accountID int64, shipments []plaza.Shipment) error {
	ids := make([]string, len(shipments))
	entities := make([]plaza.Entity, len(shipments))
	for i, s := range shipments {
		ids[i], entities[i] = s.ShipmentID, s
	}
	return db.saveRecords(TableShipments, accountID, ids, entities)
}

// GetShipments returns stored shipments
func (db *DB) GetShipments(accountID int64, limit, offset int) ([]plaza.Shipment, error) {
	return loadRecords[plaza.Shipment](db, TableShipments, accountID, limit, offset)
}

// SaveReturnItems stores returns keyed by return number
func (db *DB) SaveReturnItems(accountID int64, items []plaza.ReturnItem) error {
	ids := make([]string, len(items))
	entities := make([]plaza.Entity, len(items))
	for i, r := range items {
		ids[i], entities[i] = r.ReturnNumber, r
	}
	return db.saveRecords(TableReturnItems, accountID, ids, entities)
}

// GetReturnItems returns stored returns
func (db *DB) GetReturnItems(accountID int64, limit, offset int) ([]plaza.ReturnItem, error) {
	return loadRecords[plaza.ReturnItem](db, TableReturnItems, accountID, limit, offset)
}

// SaveInventoryOffers stores FBB stock levels keyed by EAN
func (db *DB) SaveInventoryOffers(accountID int64, offers []plaza.InventoryOffer) error {
	ids := make([]string, len(offers))
	entities := make([]plaza.Entity, len(offers))
	for i, o := range offers {
		ids[i], entities[i] = o.EAN, o
	}
	return db.saveRecords(TableInventoryOffers, accountID, ids, entities)
}

// GetInventoryOffers returns stored FBB stock levels
func (db *DB) GetInventoryOffers(accountID int64, limit, offset int) ([]plaza.InventoryOffer, error) {
	return loadRecords[plaza.InventoryOffer](db, TableInventoryOffers, accountID, limit, offset)
}

// SaveInbounds stores inbounds keyed by inbound id
func (db *DB) SaveInbounds(accountID int64, inbounds []plaza.Inbound) error {
	ids := make([]string, len(inbounds))
	entities := make([]plaza.Entity, len(inbounds))
	for i, in := range inbounds {
		ids[i], entities[i] = in.ID, in
	}
	return db.saveRecords(TableInbounds, accountID, ids, entities)
}

// GetInbounds returns stored inbounds
func (db *DB) GetInbounds(accountID int64, limit, offset int) ([]plaza.Inbound, error) {
	return loadRecords[plaza.Inbound](db, TableInbounds, accountID, limit, offset)
}

// SaveProcessStatus records the latest known state of an asynchronous job
func (db *DB) SaveProcessStatus(accountID int64, ps *plaza.ProcessStatus) error {
	data, err := plaza.Marshal(ps, "")
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO process_statuses (account_id, external_id, status, payload, synced_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id, external_id) DO UPDATE SET
			status = excluded.status,
			payload = excluded.payload,
			synced_at = excluded.synced_at
	`, accountID, ps.ID, ps.Status, string(data))
	if err != nil {
		return fmt.Errorf("failed to save process status %s: %w", ps.ID, err)
	}
	return nil
}

// GetPendingProcessStatuses returns jobs that have not finished yet
func (db *DB) GetPendingProcessStatuses(accountID int64) ([]plaza.ProcessStatus, error) {
	rows, err := db.Query(`
		SELECT payload FROM process_statuses
		WHERE account_id = ? AND (status = ? OR status = '')
		ORDER BY external_id
	`, accountID, plaza.ProcessStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []plaza.ProcessStatus{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ps plaza.ProcessStatus
		if err := plaza.Unmarshal([]byte(payload), &ps); err != nil {
			return nil, fmt.Errorf("corrupt process status payload: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}
