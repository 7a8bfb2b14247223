package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewTradeRecord(t *testing.T) {
	result := TradeResult{
		Side:        TradeBuy,
		WalletID:    2,
		TokenMint:   "MintA",
		SolAmount:   decimal.RequireFromString("0.1"),
		TokenAmount: decimal.NewFromInt(95),
		Price:       decimal.RequireFromString("0.001"),
		Signature:   "SigA",
		At:          time.Now().UTC(),
	}

	first := NewTradeRecord(result)
	second := NewTradeRecord(result)

	if first.ID == "" || second.ID == "" {
		t.Fatal("record id not assigned")
	}
	if first.ID == second.ID {
		t.Fatal("record ids not unique")
	}
	if !reflect.DeepEqual(first.TradeResult, result) {
		t.Fatalf("record result mutated: %+v", first.TradeResult)
	}
}

func TestTradeResultSuccess(t *testing.T) {
	ok := TradeResult{Side: TradeSell, Signature: "Sig"}
	if !ok.Success() {
		t.Fatal("clean result reported as failure")
	}
	failed := TradeResult{Side: TradeSell, Err: "insufficient token balance"}
	if failed.Success() {
		t.Fatal("failed result reported as success")
	}
}

func TestTradeRecordJSONRoundTrip(t *testing.T) {
	record := NewTradeRecord(TradeResult{
		Side:        TradeSell,
		WalletID:    4,
		TokenMint:   "MintB",
		SolAmount:   decimal.RequireFromString("0.04275"),
		TokenAmount: decimal.NewFromInt(50),
		Price:       decimal.RequireFromString("0.0009"),
		At:          time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})

	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded TradeRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(record, decoded) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, record)
	}
}
