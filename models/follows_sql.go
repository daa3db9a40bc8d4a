package models

import "database/sql"

type sqlFollowRepo struct{ db *sql.DB }

func NewSQLFollowRepository(db *sql.DB) FollowRepository {
	return &sqlFollowRepo{db}
}

func (r *sqlFollowRepo) Follow(followerID, followeeID int64) error {
	// UNIQUE(follower_id, followee_id) rejects double follows; the CHECK
	// constraint rejects self-follows that slip past the handler
	_, err := r.db.Exec(`INSERT INTO follows(follower_id, followee_id) VALUES ($1,$2)`, followerID, followeeID)
	return err
}

func (r *sqlFollowRepo) Unfollow(followerID, followeeID int64) error {
	_, err := r.db.Exec(`DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2`, followerID, followeeID)
	return err
}
