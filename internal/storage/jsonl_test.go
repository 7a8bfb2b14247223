package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"memeforge/internal/model"
)

func TestJsonlJournalAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.jsonl")
	journal := NewJsonlJournal(path)

	first := model.NewTradeRecord(model.TradeResult{
		Side: model.TradeBuy, WalletID: 2, TokenMint: "MintA",
		SolAmount: decimal.RequireFromString("0.1"), At: time.Now().UTC(),
	})
	second := model.NewTradeRecord(model.TradeResult{
		Side: model.TradeSell, WalletID: 3, TokenMint: "MintA",
		Err: "insufficient token balance", At: time.Now().UTC(),
	})

	if err := journal.PutTradeBatch([]model.TradeRecord{first}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := journal.PutTradeBatch([]model.TradeRecord{second}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var records []model.TradeRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.TradeRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan journal: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("journal holds %d records, want 2", len(records))
	}
	if records[0].ID != first.ID || records[0].Side != model.TradeBuy {
		t.Fatalf("first record mismatch: %+v", records[0])
	}
	if records[1].Err == "" || records[1].Success() {
		t.Fatalf("second record should be a failure: %+v", records[1])
	}
}

func TestJsonlJournalEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	journal := NewJsonlJournal(path)
	if err := journal.PutTradeBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("empty batch created a file")
	}
}
