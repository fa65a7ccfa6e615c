package postgres

import "time"

type snapshotPayloadRow struct {
	ID          int64     `db:"id"`
	EventID     int       `db:"event_id"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
	CreatedAt   time.Time `db:"created_at"`
}

type snapshotPayloadInsertModel struct {
	EventID     int       `db:"event_id"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
