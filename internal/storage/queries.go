package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type YearlyVolume struct {
	Year            int64
	DigitalPayments float64
	NoteVolume      float64
	CoinVolume      float64
}

type AverageStatRow struct {
	Key       string
	Position  int64
	Name      string
	Help      string
	Value     float64
	Unit      string
	Precision int64
}

const listYearlyVolumes = `SELECT year, digital_payments, note_volume, coin_volume
FROM yearly_volumes
ORDER BY year`

func (q *Queries) ListYearlyVolumes(ctx context.Context) ([]YearlyVolume, error) {
	rows, err := q.db.QueryContext(ctx, listYearlyVolumes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []YearlyVolume
	for rows.Next() {
		var i YearlyVolume
		if err := rows.Scan(&i.Year, &i.DigitalPayments, &i.NoteVolume, &i.CoinVolume); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAverageStats = `SELECT key, position, name, help, value, unit, precision
FROM average_stats
ORDER BY position`

func (q *Queries) ListAverageStats(ctx context.Context) ([]AverageStatRow, error) {
	rows, err := q.db.QueryContext(ctx, listAverageStats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AverageStatRow
	for rows.Next() {
		var i AverageStatRow
		if err := rows.Scan(&i.Key, &i.Position, &i.Name, &i.Help, &i.Value, &i.Unit, &i.Precision); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteYearlyVolumes = `DELETE FROM yearly_volumes`

func (q *Queries) DeleteYearlyVolumes(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteYearlyVolumes)
	return err
}

const deleteAverageStats = `DELETE FROM average_stats`

func (q *Queries) DeleteAverageStats(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAverageStats)
	return err
}

const insertYearlyVolume = `INSERT INTO yearly_volumes (year, digital_payments, note_volume, coin_volume)
VALUES (?, ?, ?, ?)`

func (q *Queries) InsertYearlyVolume(ctx context.Context, arg YearlyVolume) error {
	_, err := q.db.ExecContext(ctx, insertYearlyVolume, arg.Year, arg.DigitalPayments, arg.NoteVolume, arg.CoinVolume)
	return err
}

const insertAverageStat = `INSERT INTO average_stats (key, position, name, help, value, unit, precision)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertAverageStat(ctx context.Context, arg AverageStatRow) error {
	_, err := q.db.ExecContext(ctx, insertAverageStat,
		arg.Key, arg.Position, arg.Name, arg.Help, arg.Value, arg.Unit, arg.Precision)
	return err
}
