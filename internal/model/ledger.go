package model

// LedgerSnapshot 项目资金账本快照
type LedgerSnapshot struct {
	CampaignId     int64 `json:"campaign_id"`
	RaisedTotal    int64 `json:"raised_total"`
	ReleasedTotal  int64 `json:"released_total"`
	WithdrawnTotal int64 `json:"withdrawn_total"`
	AvailableTotal int64 `json:"available_total"`
}
