package domain

import (
	"strconv"
	"time"
)

// WalletAnalytics is one row of the analytics dataset the backend computes
// per wallet address.
type WalletAnalytics struct {
	Address                 string  `json:"address"                     db:"address"`
	AvgMinBetweenSentTx     float64 `json:"avg_min_between_sent_tx"     db:"avg_min_between_sent_tx"`
	AvgMinBetweenReceivedTx float64 `json:"avg_min_between_received_tx" db:"avg_min_between_received_tx"`
	TimeDiffFirstLastMins   float64 `json:"time_diff_first_last_mins"   db:"time_diff_first_last_mins"`
	SentTxCount             int64   `json:"sent_tx_count"               db:"sent_tx_count"`
	ReceivedTxCount         int64   `json:"received_tx_count"           db:"received_tx_count"`
	CreatedContractsCount   int64   `json:"created_contracts_count"     db:"created_contracts_count"`
	MaxValueReceived        float64 `json:"max_value_received"          db:"max_value_received"`
	AvgValueReceived        float64 `json:"avg_value_received"          db:"avg_value_received"`
	AvgValueSent            float64 `json:"avg_value_sent"              db:"avg_value_sent"`
	TotalEtherSent          float64 `json:"total_ether_sent"            db:"total_ether_sent"`
	TotalEtherReceived      float64 `json:"total_ether_received"        db:"total_ether_received"`
	TotalEtherBalance       float64 `json:"total_ether_balance"         db:"total_ether_balance"`
}

// CSVHeader lists the dataset columns in their canonical order.
func CSVHeader() []string {
	return []string{
		"address",
		"avg_min_between_sent_tx",
		"avg_min_between_received_tx",
		"time_diff_first_last_mins",
		"sent_tx_count",
		"received_tx_count",
		"created_contracts_count",
		"max_value_received",
		"avg_value_received",
		"avg_value_sent",
		"total_ether_sent",
		"total_ether_received",
		"total_ether_balance",
	}
}

// CSVRow renders the record in CSVHeader order.
func (w *WalletAnalytics) CSVRow() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	i := func(v int64) string { return strconv.FormatInt(v, 10) }
	return []string{
		w.Address,
		f(w.AvgMinBetweenSentTx),
		f(w.AvgMinBetweenReceivedTx),
		f(w.TimeDiffFirstLastMins),
		i(w.SentTxCount),
		i(w.ReceivedTxCount),
		i(w.CreatedContractsCount),
		f(w.MaxValueReceived),
		f(w.AvgValueReceived),
		f(w.AvgValueSent),
		f(w.TotalEtherSent),
		f(w.TotalEtherReceived),
		f(w.TotalEtherBalance),
	}
}

// CollectionRun records one collection invocation for the optional
// postgres sink.
type CollectionRun struct {
	ID         string    `db:"id"`
	Source     string    `db:"source"`
	Requested  int       `db:"requested"`
	Collected  int       `db:"collected"`
	Failed     int       `db:"failed"`
	Invalid    int       `db:"invalid"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}
