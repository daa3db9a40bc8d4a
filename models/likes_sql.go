package models

import "database/sql"

type sqlLikeRepo struct{ db *sql.DB }

func NewSQLLikeRepository(db *sql.DB) LikeRepository {
	return &sqlLikeRepo{db}
}

func (r *sqlLikeRepo) Like(userID int64, eventID string) error {
	// UNIQUE(user_id, event_id) rejects double likes
	_, err := r.db.Exec(`INSERT INTO event_likes(user_id, event_id) VALUES ($1,$2)`, userID, eventID)
	return err
}

func (r *sqlLikeRepo) Unlike(userID int64, eventID string) error {
	_, err := r.db.Exec(`DELETE FROM event_likes WHERE user_id=$1 AND event_id=$2`, userID, eventID)
	return err
}
