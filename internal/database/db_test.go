package database

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienbonastre/plaza-helpers/internal/plaza"
)

var testKey = bytes.Repeat([]byte{7}, 32)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEncryptDecryptSecret(t *testing.T) {
	encrypted, err := EncryptSecret("private", testKey)
	require.NoError(t, err)
	assert.NotContains(t, string(encrypted), "private")

	again, err := EncryptSecret("private", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again, "nonce must differ per call")

	plain, err := DecryptSecret(encrypted, testKey)
	require.NoError(t, err)
	assert.Equal(t, "private", plain)

	_, err = DecryptSecret(encrypted, bytes.Repeat([]byte{8}, 32))
	assert.Error(t, err)

	_, err = DecryptSecret([]byte{1, 2}, testKey)
	assert.Error(t, err)

	_, err = EncryptSecret("x", []byte("short"))
	assert.Error(t, err)
}

func TestParseEncryptionKey(t *testing.T) {
	_, err := ParseEncryptionKey("")
	assert.ErrorIs(t, err, ErrNoEncryptionKey)

	_, err = ParseEncryptionKey("not base64!")
	assert.Error(t, err)

	_, err = ParseEncryptionKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)

	key, err := ParseEncryptionKey(base64.StdEncoding.EncodeToString(testKey))
	require.NoError(t, err)
	assert.Equal(t, testKey, key)

	t.Setenv(EncryptionKeyEnv, base64.StdEncoding.EncodeToString(testKey))
	key, err = GetEncryptionKey()
	require.NoError(t, err)
	assert.Equal(t, testKey, key)
}

func TestAccounts(t *testing.T) {
	db := openTestDB(t)

	acc, err := db.SaveAccount("Shop", "pub", "secret", true, testKey)
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "pub_test", acc.AccountKey)
	assert.True(t, acc.TestMode())
	assert.Nil(t, acc.LastExportAt)

	// saving again replaces the key and name
	again, err := db.SaveAccount("Shop NL", "pub", "rotated", true, testKey)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, again.ID)
	assert.Equal(t, "Shop NL", again.DisplayName)

	creds, err := db.GetCredentials(acc.ID, testKey)
	require.NoError(t, err)
	assert.Equal(t, Credentials{PublicKey: "pub", PrivateKey: "rotated", TestMode: true}, *creds)

	require.NoError(t, db.UpdateLastExport(acc.ID))
	got, err := db.GetAccount(acc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastExportAt)

	accounts, err := db.GetAccounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	missing, err := db.GetAccountByKey("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = db.GetAccount(999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = db.GetCredentials(999, testKey)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	require.NoError(t, db.DeleteAccount(acc.ID))
	assert.ErrorIs(t, db.DeleteAccount(acc.ID), ErrAccountNotFound)
}

func TestSyncHistory(t *testing.T) {
	db := openTestDB(t)
	acc, err := db.SaveAccount("Shop", "pub", "secret", false, testKey)
	require.NoError(t, err)

	sh := &SyncHistory{AccountID: acc.ID, RunID: "run-1", SyncType: "export", Status: SyncStatusRunning, StartedAt: time.Now().UTC()}
	require.NoError(t, db.CreateSyncHistory(sh))
	assert.NotZero(t, sh.ID)

	done := time.Now().UTC()
	sh.Status = SyncStatusSuccess
	sh.ItemsSynced = 12
	sh.CompletedAt = &done
	require.NoError(t, db.UpdateSyncHistory(sh))

	history, err := db.GetSyncHistory(acc.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "run-1", history[0].RunID)
	assert.Equal(t, SyncStatusSuccess, history[0].Status)
	assert.Equal(t, 12, history[0].ItemsSynced)
	assert.NotNil(t, history[0].CompletedAt)
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SeedInitialData())
	require.NoError(t, db.SeedInitialData())

	settings, err := db.GetAllSettings()
	require.NoError(t, err)
	assert.Len(t, settings, 3)

	v, err := db.GetSettingValue(SettingVATPercent, "0")
	require.NoError(t, err)
	assert.Equal(t, "21", v)

	require.NoError(t, db.UpdateSetting(SettingVATPercent, "9"))
	v, err = db.GetSettingValue(SettingVATPercent, "0")
	require.NoError(t, err)
	assert.Equal(t, "9", v)

	v, err = db.GetSettingValue("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	assert.Error(t, db.UpdateSetting("missing", "x"))
}

func TestRecords_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	acc, err := db.SaveAccount("Shop", "pub", "secret", false, testKey)
	require.NoError(t, err)

	orders := []plaza.Order{
		{OrderID: "2", OrderItems: []plaza.OrderItem{{OrderItemID: "21", EAN: "871"}}},
		{OrderID: "1", CustomerDetails: &plaza.CustomerDetails{ShipmentDetails: &plaza.ShipmentDetails{City: "Utrecht"}}},
	}
	require.NoError(t, db.SaveOrders(acc.ID, orders))
	// upsert keeps a single row per id
	orders[0].OrderItems[0].EAN = "872"
	require.NoError(t, db.SaveOrders(acc.ID, orders[:1]))

	got, err := db.GetOrders(acc.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].OrderID)
	assert.Equal(t, "Utrecht", got[0].CustomerDetails.ShipmentDetails.City)
	assert.Equal(t, "872", got[1].OrderItems[0].EAN)

	n, err := db.CountRecords(TableOrders, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = db.CountRecords("accounts; DROP TABLE accounts", acc.ID)
	assert.Error(t, err)

	require.NoError(t, db.SaveShipments(acc.ID, []plaza.Shipment{{ShipmentID: "9", Transport: &plaza.Transport{TransportID: "5"}}}))
	shipments, err := db.GetShipments(acc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, "5", shipments[0].Transport.TransportID)

	require.NoError(t, db.SaveReturnItems(acc.ID, []plaza.ReturnItem{{ReturnNumber: "31", EAN: "871"}}))
	returns, err := db.GetReturnItems(acc.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, returns, 1)

	require.NoError(t, db.SaveInventoryOffers(acc.ID, []plaza.InventoryOffer{{EAN: "871", Stock: "3", NCKStock: "1"}}))
	inventory, err := db.GetInventoryOffers(acc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, "1", inventory[0].NCKStock)

	require.NoError(t, db.SaveInbounds(acc.ID, []plaza.Inbound{{ID: "5", Reference: "R1"}}))
	inbounds, err := db.GetInbounds(acc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, inbounds, 1)
	assert.Equal(t, "R1", inbounds[0].Reference)
}

func TestProcessStatuses(t *testing.T) {
	db := openTestDB(t)
	acc, err := db.SaveAccount("Shop", "pub", "secret", false, testKey)
	require.NoError(t, err)

	require.NoError(t, db.SaveProcessStatus(acc.ID, &plaza.ProcessStatus{ID: "1", Status: plaza.ProcessStatusPending}))
	require.NoError(t, db.SaveProcessStatus(acc.ID, &plaza.ProcessStatus{ID: "2", Status: plaza.ProcessStatusSuccess}))

	pending, err := db.GetPendingProcessStatuses(acc.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "1", pending[0].ID)

	require.NoError(t, db.SaveProcessStatus(acc.ID, &plaza.ProcessStatus{ID: "1", Status: plaza.ProcessStatusFailure, ErrorMessage: "bad"}))
	pending, err = db.GetPendingProcessStatuses(acc.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSaveRecords_RollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{sqlDB}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO orders")
	prep.ExpectExec().WithArgs(int64(1), "1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(int64(1), "2", sqlmock.AnyArg()).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = db.SaveOrders(1, []plaza.Order{{OrderID: "1"}, {OrderID: "2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSyncHistory_QueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{sqlDB}

	mock.ExpectQuery("SELECT id, account_id, run_id").WithArgs(int64(3), 20).WillReturnError(errors.New("locked"))

	_, err = db.GetSyncHistory(3, 0)
	assert.EqualError(t, err, "locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}
