package entities

import (
	"time"
)

// Token is a launched asset, identified by its on-ledger address.
// Created exactly once by the token-created projection handler, keyed
// by the creation event's id; never deleted.
type Token struct {
	Address        string    `db:"address"`
	CreateEvent    int64     `db:"create_event"`
	CreatorAddress string    `db:"creator_address"`
	Name           string    `db:"name"`
	Symbol         string    `db:"symbol"`
	TotalSupply    string    `db:"total_supply"`
	IsGraduate     bool      `db:"is_graduate"`
	PoolAddress    *string   `db:"pool_address"`
	LPPositionID   *string   `db:"lp_position_id"`
	CreatedAt      time.Time `db:"created_timestamp"`
	UpdatedAt      time.Time `db:"updated_timestamp"`
}
