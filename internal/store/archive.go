package store

import (
	"database/sql"
	"fmt"

	"github.com/ayusman/cmykstudio/internal/archive"
)

// ArchiveRepository stores archive items and their display order.
type ArchiveRepository struct {
	db *sql.DB
}

// Archive returns the archive repository for this store.
func (s *Store) Archive() *ArchiveRepository {
	return &ArchiveRepository{db: s.db}
}

// List retrieves all items in display order.
func (r *ArchiveRepository) List() ([]archive.Item, error) {
	rows, err := r.db.Query(`SELECT id, title, url FROM archive_items ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []archive.Item
	for rows.Next() {
		var it archive.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.URL); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Count returns the number of stored items.
func (r *ArchiveRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM archive_items`).Scan(&n)
	return n, err
}

// Create appends an item at the end of the order.
func (r *ArchiveRepository) Create(it archive.Item) error {
	_, err := r.db.Exec(
		`INSERT INTO archive_items (id, title, url, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM archive_items))`,
		it.ID, it.Title, it.URL,
	)
	return err
}

// Seed stores items in the given order when the archive is empty and
// reports whether it did.
func (r *ArchiveRepository) Seed(items []archive.Item) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM archive_items`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for i, it := range items {
		if _, err := tx.Exec(
			`INSERT INTO archive_items (id, title, url, position) VALUES (?, ?, ?, ?)`,
			it.ID, it.Title, it.URL, i,
		); err != nil {
			return false, fmt.Errorf("seed %s: %w", it.ID, err)
		}
	}

	return true, tx.Commit()
}

// SaveOrder rewrites positions so that ids appear in the given order.
// Every id must exist.
func (r *ArchiveRepository) SaveOrder(ids []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, id := range ids {
		result, err := tx.Exec(`UPDATE archive_items SET position = ? WHERE id = ?`, i, id)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return fmt.Errorf("archive item %s: %w", id, ErrNotFound)
		}
	}

	return tx.Commit()
}

// Delete removes an item by its ID.
func (r *ArchiveRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM archive_items WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
