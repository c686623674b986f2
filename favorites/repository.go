// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package favorites persists places the user has saved, indexed by H3 cell
// so nearby favorites can be queried cheaply.
package favorites

import (
	"database/sql"
	"errors"
	"time"

	"github.com/geolens/geolens/spatial"
)

// Favorite is a saved place.
type Favorite struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Point       *spatial.Point `json:"point"`
	DisplayName string         `json:"display_name"`
	Source      string         `json:"source"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	H3Res7      int64          `json:"-"`
	H3Res8      int64          `json:"-"`
}

// ErrNotFound the requested favorite does not exist.
var ErrNotFound = errors.New("favorite not found")

func (f *Favorite) computeH3() error {
	if f.Point == nil {
		return errors.New("point can't be null")
	}

	res7, err := f.Point.Cell(7)
	if err != nil {
		return err
	}

	res8, err := f.Point.Cell(8)
	if err != nil {
		return err
	}

	f.H3Res7, f.H3Res8 = res7, res8

	return nil
}

// Repository handles persistence of favorites.
type Repository interface {
	// CreateSchema creates the favorites table
	CreateSchema() error

	// Save inserts a favorite, or updates it when the name already exists
	Save(favorite *Favorite) error

	// List returns all favorites, newest first
	List() ([]*Favorite, error)

	// Get returns a favorite by id
	Get(id int) (*Favorite, error)

	// Delete removes a favorite by id
	Delete(id int) error
}

type sqlFavoriteRepository struct {
	db *sql.DB
}

// NewRepository creates a favorites repository over a DuckDB connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlFavoriteRepository{db: db}
}

func (r *sqlFavoriteRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS favorites_seq START 1;

		CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER PRIMARY KEY DEFAULT nextval('favorites_seq'),
			name VARCHAR NOT NULL,
			display_name VARCHAR NOT NULL,
			source VARCHAR NOT NULL,
			point POINT_2D NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT,
			UNIQUE(name)
		);
	`)

	return err
}

func (r *sqlFavoriteRepository) Save(favorite *Favorite) error {
	if err := favorite.computeH3(); err != nil {
		return err
	}

	favorite.UpdatedAt = time.Now()

	var existingID int

	err := r.db.QueryRow(`SELECT id FROM favorites WHERE name = ?`, favorite.Name).Scan(&existingID)

	switch {
	case err == nil:
		_, err = r.db.Exec(`
			UPDATE favorites
			SET display_name = ?, source = ?, point = ST_Point(?, ?),
			    updated_at = ?, h3_res7 = ?, h3_res8 = ?
			WHERE id = ?
		`,
			favorite.DisplayName,
			favorite.Source,
			favorite.Point.Lng,
			favorite.Point.Lat,
			favorite.UpdatedAt,
			favorite.H3Res7,
			favorite.H3Res8,
			existingID,
		)
		favorite.ID = existingID

		return err
	case errors.Is(err, sql.ErrNoRows):
		favorite.CreatedAt = favorite.UpdatedAt

		return r.db.QueryRow(`
			INSERT INTO favorites(name, display_name, source, point, created_at, updated_at, h3_res7, h3_res8)
			VALUES (?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?)
			RETURNING id
		`,
			favorite.Name,
			favorite.DisplayName,
			favorite.Source,
			favorite.Point.Lng,
			favorite.Point.Lat,
			favorite.CreatedAt,
			favorite.UpdatedAt,
			favorite.H3Res7,
			favorite.H3Res8,
		).Scan(&favorite.ID)
	default:
		return err
	}
}

func (r *sqlFavoriteRepository) List() ([]*Favorite, error) {
	rows, err := r.db.Query(`
		SELECT id, name, display_name, source, point, created_at, updated_at, h3_res7, h3_res8
		FROM favorites
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []*Favorite

	for rows.Next() {
		favorite, err := scanFavorite(rows.Scan)
		if err != nil {
			return nil, err
		}

		favorites = append(favorites, favorite)
	}

	return favorites, rows.Err()
}

func (r *sqlFavoriteRepository) Get(id int) (*Favorite, error) {
	favorite, err := scanFavorite(r.db.QueryRow(`
		SELECT id, name, display_name, source, point, created_at, updated_at, h3_res7, h3_res8
		FROM favorites
		WHERE id = ?
	`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	return favorite, err
}

func (r *sqlFavoriteRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanFavorite(scan func(dest ...any) error) (*Favorite, error) {
	favorite := &Favorite{Point: &spatial.Point{}}

	var h3Res7, h3Res8 sql.NullInt64

	err := scan(
		&favorite.ID,
		&favorite.Name,
		&favorite.DisplayName,
		&favorite.Source,
		&favorite.Point,
		&favorite.CreatedAt,
		&favorite.UpdatedAt,
		&h3Res7,
		&h3Res8,
	)
	if err != nil {
		return nil, err
	}

	if h3Res7.Valid {
		favorite.H3Res7 = h3Res7.Int64
	}

	if h3Res8.Valid {
		favorite.H3Res8 = h3Res8.Int64
	}

	return favorite, nil
}
