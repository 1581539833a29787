package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tripSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestGet_CacheMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("buslane:trips:active:all").RedisNil()

	var dest []tripSummary
	err := svc.Get(context.Background(), "buslane:trips:active:all", &dest)

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_CacheHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	cached := []tripSummary{{ID: "t1", Title: "Jakarta - Bandung"}}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet("buslane:trips:active:all").SetVal(string(payload))

	var dest []tripSummary
	err = svc.Get(context.Background(), "buslane:trips:active:all", &dest)

	require.NoError(t, err)
	assert.Equal(t, cached, dest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_MarshalsValue(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	value := tripSummary{ID: "t2", Title: "Surabaya - Malang"}
	payload, err := json.Marshal(value)
	require.NoError(t, err)

	mock.ExpectSet("buslane:trips:detail:uuid:t2", payload, time.Hour).SetVal("OK")

	err = svc.Set(context.Background(), "buslane:trips:detail:uuid:t2", value, time.Hour)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectDel("buslane:trips:active:all").SetVal(1)

	err := svc.Delete(context.Background(), "buslane:trips:active:all")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePattern(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectKeys("buslane:trips:*").SetVal([]string{
		"buslane:trips:active:all",
		"buslane:trips:detail:uuid:t1",
	})
	mock.ExpectDel("buslane:trips:active:all", "buslane:trips:detail:uuid:t1").SetVal(2)

	err := svc.DeletePattern(context.Background(), "buslane:trips:*")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectExists("buslane:trips:active:all").SetVal(1)

	assert.True(t, svc.Exists(context.Background(), "buslane:trips:active:all"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSet_MissInvokesFetcher(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("buslane:trips:active:all").RedisNil()

	fetched := []tripSummary{{ID: "t3", Title: "Yogyakarta - Solo"}}
	var dest []tripSummary
	err := svc.GetOrSet(context.Background(), "buslane:trips:active:all", time.Minute, func() (interface{}, error) {
		return fetched, nil
	}, &dest)

	require.NoError(t, err)
	assert.Equal(t, fetched, dest)
}

func TestGetOrSet_FetcherError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("buslane:trips:active:all").RedisNil()

	var dest []tripSummary
	err := svc.GetOrSet(context.Background(), "buslane:trips:active:all", time.Minute, func() (interface{}, error) {
		return nil, errors.New("db down")
	}, &dest)

	assert.Error(t, err)
}
