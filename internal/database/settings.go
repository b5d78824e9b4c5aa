package database

import "context"

func (db *PgRepository) GetSetting(ctx context.Context, section string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		"SELECT COALESCE(value, '') FROM settings WHERE section = $1",
		section,
	).Scan(&value)

	return value, classify(err)
}

func (db *PgRepository) PutSetting(ctx context.Context, section, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO settings (section, value) VALUES ($1, $2) "+
			"ON CONFLICT (section) DO UPDATE SET value = EXCLUDED.value",
		section,
		value,
	)

	return classify(err)
}
