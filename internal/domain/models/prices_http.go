package models

// Requests for the price read API. Defined in domain for consistency with the handlers.

type SeriesRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=16"`
	Limit  int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}

type SymbolRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=16"`
}

// SeriesResponse is the payload of the series endpoint.
type SeriesResponse struct {
	Symbol  string        `json:"symbol"`
	Count   int           `json:"count"`
	Records []PriceRecord `json:"records"`
}

// StatusResponse is the payload of the status endpoint.
type StatusResponse struct {
	State     string       `json:"state"`
	Interval  string       `json:"interval"`
	Symbols   []string     `json:"symbols"`
	Threshold string       `json:"threshold"`
	LastCycle *CycleReport `json:"last_cycle,omitempty"`
}
