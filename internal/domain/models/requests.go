package models

// Requests for prediction HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=32"`
	Chart  string `query:"chart" json:"chart" default:"ohlc" validate:"oneof=ohlc line"`
}

type BatchRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=50,dive,required,max=32"`
	Chart   string   `json:"chart" default:"ohlc" validate:"oneof=ohlc line"`
}

type StreamRequest struct {
	Symbol   string  `param:"symbol" validate:"required,max=32"`
	Chart    string  `query:"chart" default:"line" validate:"oneof=ohlc line"`
	Interval float64 `query:"interval" default:"5" validate:"gt=0,lte=3600"`
}
