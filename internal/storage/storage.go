package storage

import "memeforge/internal/model"

// Journal defines a sink for trade records. The journal is append-only and is
// never read back by the bot; it exists for after-the-fact inspection.
type Journal interface {
	PutTradeBatch(trades []model.TradeRecord) error
}

// LaunchJournal is an optional Journal capability for recording token
// launches. Sinks that implement it also receive each created token.
type LaunchJournal interface {
	PutLaunch(token model.Token) error
}
