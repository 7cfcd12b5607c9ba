package models

import "time"

type TransactionType string

const (
	TransactionTransfer    TransactionType = "transfer"
	TransactionTeraCaptain TransactionType = "tera captain"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTransfer || t == TransactionTeraCaptain
}

type Transaction struct {
	PlayerName string          `json:"player_name" firestore:"player_name"`
	In         string          `json:"in" firestore:"in"`
	Out        string          `json:"out" firestore:"out"`
	Type       TransactionType `json:"type" firestore:"type"`
	CreatedAt  time.Time       `json:"created_at" firestore:"created_at"`
}
