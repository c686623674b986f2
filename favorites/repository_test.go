// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package favorites

import (
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens/geolens/spatial"
)

func setupTestDB(t *testing.T) Repository {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.CreateSchema())

	return repo
}

func gangnam() *Favorite {
	return &Favorite{
		Name:        "강남역",
		DisplayName: "강남역, 강남구, 서울, 대한민국",
		Source:      "estimate",
		Point:       &spatial.Point{Lat: 37.4979, Lng: 127.0276},
	}
}

func TestSaveAssignsIDAndH3(t *testing.T) {
	repo := setupTestDB(t)

	favorite := gangnam()
	require.NoError(t, repo.Save(favorite))

	assert.NotZero(t, favorite.ID)
	assert.NotZero(t, favorite.H3Res7)
	assert.NotZero(t, favorite.H3Res8)
	assert.NotEqual(t, favorite.H3Res7, favorite.H3Res8)
}

func TestSaveUpsertsByName(t *testing.T) {
	repo := setupTestDB(t)

	first := gangnam()
	require.NoError(t, repo.Save(first))

	second := gangnam()
	second.DisplayName = "강남역 2번 출구"
	require.NoError(t, repo.Save(second))

	assert.Equal(t, first.ID, second.ID)

	favorites, err := repo.List()
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "강남역 2번 출구", favorites[0].DisplayName)
}

func TestSaveRejectsMissingPoint(t *testing.T) {
	repo := setupTestDB(t)

	favorite := gangnam()
	favorite.Point = nil

	assert.Error(t, repo.Save(favorite))
}

func TestGetRoundTripsPoint(t *testing.T) {
	repo := setupTestDB(t)

	favorite := gangnam()
	require.NoError(t, repo.Save(favorite))

	got, err := repo.Get(favorite.ID)
	require.NoError(t, err)

	assert.Equal(t, favorite.Name, got.Name)
	assert.InDelta(t, 37.4979, got.Point.Lat, 1e-6)
	assert.InDelta(t, 127.0276, got.Point.Lng, 1e-6)
	assert.Equal(t, favorite.H3Res7, got.H3Res7)
	assert.Equal(t, favorite.H3Res8, got.H3Res8)
}

func TestGetUnknownID(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Get(12345)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := setupTestDB(t)

	favorite := gangnam()
	require.NoError(t, repo.Save(favorite))

	require.NoError(t, repo.Delete(favorite.ID))

	favorites, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, favorites)

	assert.ErrorIs(t, repo.Delete(favorite.ID), ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	repo := setupTestDB(t)

	first := gangnam()
	require.NoError(t, repo.Save(first))

	second := gangnam()
	second.Name = "서울시청"
	require.NoError(t, repo.Save(second))

	favorites, err := repo.List()
	require.NoError(t, err)
	require.Len(t, favorites, 2)

	assert.Equal(t, "서울시청", favorites[0].Name)
	assert.Equal(t, "강남역", favorites[1].Name)
}
