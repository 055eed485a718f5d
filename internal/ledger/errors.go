package ledger

import "errors"

// Sentinel errors surfaced to the API layers. Handlers map these to HTTP
// statuses with errors.Is; the GraphQL resolvers pass the messages through.
var (
	ErrMarketNotFound  = errors.New("Market not found")
	ErrOutcomeNotFound = errors.New("Outcome not found")
	ErrInvalidAmount   = errors.New("bet amount must be a finite positive number")
	ErrMarketClosed    = errors.New("market is closed for betting")
	// ErrInvalidMarketState covers markets whose chosen outcome has zero
	// probability, which would make the payout division undefined.
	ErrInvalidMarketState = errors.New("outcome has no volume priced in, cannot quote payout")

	ErrMarketExists  = errors.New("market already exists")
	ErrInvalidMarket = errors.New("invalid market definition")
)
