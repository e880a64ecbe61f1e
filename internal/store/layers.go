package store

import (
	"database/sql"
	"fmt"

	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/scene"
)

// LayerRepository saves and restores the placed scene layers.
type LayerRepository struct {
	db *sql.DB
}

// Layers returns the layer repository for this store.
func (s *Store) Layers() *LayerRepository {
	return &LayerRepository{db: s.db}
}

// Save replaces the stored layers with layers, in paint order.
func (r *LayerRepository) Save(layers []scene.Layer) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM scene_layers`); err != nil {
		return err
	}

	for i, l := range layers {
		_, err := tx.Exec(
			`INSERT INTO scene_layers (id, role, channel, asset, x, y, rotation, seq, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Role.String(), l.Channel.Key(), l.Asset,
			l.Transform.X, l.Transform.Y, l.Transform.Rotation, l.Seq, i,
		)
		if err != nil {
			return fmt.Errorf("save layer %s: %w", l.ID, err)
		}
	}

	return tx.Commit()
}

// Load retrieves the stored layers in paint order.
func (r *LayerRepository) Load() ([]scene.Layer, error) {
	rows, err := r.db.Query(
		`SELECT id, role, channel, asset, x, y, rotation, seq
		 FROM scene_layers ORDER BY position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layers []scene.Layer
	for rows.Next() {
		var (
			l             scene.Layer
			role, channel string
		)
		err := rows.Scan(&l.ID, &role, &channel, &l.Asset,
			&l.Transform.X, &l.Transform.Y, &l.Transform.Rotation, &l.Seq)
		if err != nil {
			return nil, err
		}

		if l.Role, err = parts.ParseRole(role); err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.ID, err)
		}
		if l.Channel, err = parts.ParseChannel(channel); err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.ID, err)
		}
		layers = append(layers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return layers, nil
}
