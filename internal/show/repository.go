package show

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/stagecue/cuelight-core/internal/channel"
	"github.com/stagecue/cuelight-core/internal/cue"
	"github.com/stagecue/cuelight-core/internal/infrastructure/database"
)

// Repository defines the interface for show persistence.
// This abstraction enables unit testing without database dependencies.
type Repository interface {
	// Load reads the full show document. A database with no saved
	// channels yields the default document rather than an error.
	Load(ctx context.Context) (*Document, error)

	// SaveChannels replaces the persisted channel configuration.
	SaveChannels(ctx context.Context, channels []channel.Channel) error

	// SaveCues replaces the persisted cue list.
	SaveCues(ctx context.Context, cues []cue.Cue) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open, migrated database.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Load reads channel configuration and the cue list.
//
// Statuses are not stored; every loaded channel comes back idle with no
// confirmed subscribers. If the channels table is empty (first run), the
// default document is returned.
func (r *SQLiteRepository) Load(ctx context.Context) (*Document, error) {
	channels, err := r.loadChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if len(channels) == 0 {
		return DefaultDocument(), nil
	}

	cues, err := r.loadCues(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return &Document{Channels: channels, Cues: cues}, nil
}

func (r *SQLiteRepository) loadChannels(ctx context.Context) ([]channel.Channel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT numeric_id, label, color_name, color_hex, text_color_hex
		FROM channels
		ORDER BY numeric_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []channel.Channel
	for rows.Next() {
		var ch channel.Channel
		if err := rows.Scan(&ch.NumericID, &ch.Label, &ch.ColorName, &ch.ColorHex, &ch.TextColorHex); err != nil {
			return nil, fmt.Errorf("scanning channel row: %w", err)
		}
		ch.Status = channel.StatusIdle
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating channels: %w", err)
	}
	return channels, nil
}

func (r *SQLiteRepository) loadCues(ctx context.Context) ([]cue.Cue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cue_number, cue_number_float, label, channels
		FROM cues
		ORDER BY cue_number_float`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying cues: %w", err)
	}
	defer rows.Close()

	var cues []cue.Cue
	for rows.Next() {
		var c cue.Cue
		var channelsJSON string
		if err := rows.Scan(&c.ID, &c.Number, &c.NumberFloat, &c.Label, &channelsJSON); err != nil {
			return nil, fmt.Errorf("scanning cue row: %w", err)
		}
		if err := json.Unmarshal([]byte(channelsJSON), &c.Channels); err != nil {
			return nil, fmt.Errorf("decoding cue channels for %s: %w", c.ID, err)
		}
		cues = append(cues, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cues: %w", err)
	}
	return cues, nil
}

// SaveChannels replaces the persisted channel configuration atomically.
func (r *SQLiteRepository) SaveChannels(ctx context.Context, channels []channel.Channel) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM channels"); err != nil {
			return fmt.Errorf("clearing channels: %w", err)
		}
		for i := range channels {
			ch := &channels[i]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO channels (numeric_id, label, color_name, color_hex, text_color_hex)
				VALUES (?, ?, ?, ?, ?)`,
				ch.NumericID, ch.Label, ch.ColorName, ch.ColorHex, ch.TextColorHex,
			); err != nil {
				return fmt.Errorf("inserting channel %d: %w", ch.NumericID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// SaveCues replaces the persisted cue list atomically.
func (r *SQLiteRepository) SaveCues(ctx context.Context, cues []cue.Cue) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cues"); err != nil {
			return fmt.Errorf("clearing cues: %w", err)
		}
		for i := range cues {
			c := &cues[i]
			channelsJSON, err := json.Marshal(c.Channels)
			if err != nil {
				return fmt.Errorf("encoding cue channels for %s: %w", c.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO cues (id, cue_number, cue_number_float, label, channels)
				VALUES (?, ?, ?, ?, ?)`,
				c.ID, c.Number, c.NumberFloat, c.Label, string(channelsJSON),
			); err != nil {
				return fmt.Errorf("inserting cue %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// inTx runs fn inside a transaction, committing on success.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
