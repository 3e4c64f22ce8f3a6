package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTitlesCacheHit(t *testing.T) {
	rdc, rmock := redismock.NewClientMock()
	rmock.ExpectGet(redisTitlesKey).SetVal(`["Kart Frenzy","Puzzler"]`)

	svc := NewCatalogService(rdc, nil, time.Minute)

	titles, err := svc.ListTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Kart Frenzy", "Puzzler"}, titles)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestListTitlesCacheMissReadsDBAndRefills(t *testing.T) {
	rdc, rmock := redismock.NewClientMock()
	db, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rmock.ExpectGet(redisTitlesKey).RedisNil()
	dbmock.ExpectQuery(`SELECT name FROM titles ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("Kart Frenzy").
			AddRow("Puzzler"))
	rmock.ExpectSet(redisTitlesKey, []byte(`["Kart Frenzy","Puzzler"]`), time.Minute).SetVal("OK")

	svc := NewCatalogService(rdc, db, time.Minute)

	titles, err := svc.ListTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Kart Frenzy", "Puzzler"}, titles)
	assert.NoError(t, dbmock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestListTitlesDBError(t *testing.T) {
	rdc, rmock := redismock.NewClientMock()
	db, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rmock.ExpectGet(redisTitlesKey).RedisNil()
	dbmock.ExpectQuery(`SELECT name FROM titles ORDER BY name`).
		WillReturnError(assert.AnError)

	svc := NewCatalogService(rdc, db, time.Minute)

	_, err = svc.ListTitles(context.Background())
	assert.Error(t, err)
}

func TestDisabledCatalog(t *testing.T) {
	_, err := Disabled().ListTitles(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
