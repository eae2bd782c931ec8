package assess

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore is a durable Store backing. Progress is kept as one JSON record
// per user, good enough for the single-writer-per-user access pattern.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Load(userID string) (*Progress, bool, error) {
	row := s.db.QueryRow(`SELECT progress_json FROM progress WHERE user_id=$1`, userID)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var p Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false, err
	}
	if p.SectionScores == nil {
		p.SectionScores = map[int]float64{}
	}
	return &p, true, nil
}

func (s *SQLStore) Save(userID string, p *Progress) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO progress (user_id, progress_json, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id) DO UPDATE SET progress_json=EXCLUDED.progress_json, updated_at=EXCLUDED.updated_at`,
		userID, string(buf), time.Now().Unix())
	return err
}
