package models

// DataSource tags which tier of the acquisition ladder produced a series.
type DataSource string

const (
	SourceLive  DataSource = "LIVE"
	SourceCache DataSource = "CACHE"
	SourceMock  DataSource = "MOCK"
	SourceError DataSource = "ERROR"
)

// Direction is the predicted price direction.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// ChartShape selects the chart_data point layout.
type ChartShape string

const (
	// ChartOHLC emits {timestamp, open, high, low, close}.
	ChartOHLC ChartShape = "ohlc"
	// ChartLine emits {timestamp, price, sma, rsi}.
	ChartLine ChartShape = "line"
)

// NormalizeChartShape returns a supported shape, defaulting to ChartOHLC.
func NormalizeChartShape(s string) ChartShape {
	if ChartShape(s) == ChartLine {
		return ChartLine
	}
	return ChartOHLC
}

// OHLCPoint is a candle in the ohlc chart shape.
type OHLCPoint struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// LinePoint is a close price with its indicators in the line chart shape.
type LinePoint struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
	SMA       float64 `json:"sma"`
	RSI       float64 `json:"rsi"`
}

// PredictionResult is the response of one prediction request. It is not modified after assembly.
type PredictionResult struct {
	ID             string      `json:"prediction_id"`
	Symbol         string      `json:"symbol"`
	CurrentPrice   float64     `json:"current_price"`
	PredictedPrice float64     `json:"predicted_price"`
	Direction      Direction   `json:"direction"`
	Confidence     float64     `json:"confidence"`
	MovePct        float64     `json:"move_pct"`
	FinalSignal    bool        `json:"final_signal"`
	StatusMessage  string      `json:"status_message"`
	ChartData      interface{} `json:"chart_data"`
	DataSource     DataSource  `json:"data_source"`
	SignalHistory  []Direction `json:"signal_history"`
	LastUpdated    string      `json:"last_updated"`
	Error          string      `json:"error,omitempty"`
}

// ChartLen returns the number of chart points regardless of shape.
func (r *PredictionResult) ChartLen() int {
	switch pts := r.ChartData.(type) {
	case []OHLCPoint:
		return len(pts)
	case []LinePoint:
		return len(pts)
	default:
		return 0
	}
}

// PortfolioResult is the response of a batch request.
type PortfolioResult struct {
	Portfolio   []*PredictionResult `json:"portfolio"`
	TotalStocks int                 `json:"total_stocks"`
	Timestamp   string              `json:"timestamp"`
}

// HealthStatus reports process and collaborator readiness.
type HealthStatus struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	CacheSize       int    `json:"cache_size"`
	DataSource      string `json:"data_source"`
	DataSourceReady bool   `json:"data_source_ready"`
	Predictor       string `json:"predictor"`
	PredictorReady  bool   `json:"predictor_ready"`
}
