package models

// Record is a raw win/loss/push tally.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Pushes int `json:"pushes"`
}

type SportStats struct {
	Picks   int     `json:"picks"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

type HandicapperPerformance struct {
	HandicapperID  string                `json:"handicapper_id"`
	TotalPicks     int                   `json:"total_picks"`
	CompletedPicks int                   `json:"completed_picks"`
	ActivePicks    int                   `json:"active_picks"`
	Wins           int                   `json:"wins"`
	Losses         int                   `json:"losses"`
	Pushes         int                   `json:"pushes"`
	WinRate        float64               `json:"win_rate"`
	Recent5        Record                `json:"recent_5"`
	Recent10       Record                `json:"recent_10"`
	Recent30       Record                `json:"recent_30"`
	BySport        map[string]SportStats `json:"by_sport"`
}

type Earnings struct {
	HandicapperID    string  `json:"handicapper_id,omitempty"`
	TotalEarnings    float64 `json:"total_earnings"`
	PlatformFees     float64 `json:"platform_fees"`
	NetEarnings      float64 `json:"net_earnings"`
	TransactionCount int     `json:"transaction_count"`
}
