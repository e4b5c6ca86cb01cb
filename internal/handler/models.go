package handler

import (
	"time"

	"github.com/blues/dfs/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 请求模型

// CreateMilestoneRequest 创建里程碑请求
type CreateMilestoneRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Amount      int64  `json:"amount" binding:"required,min=1"`
}

// CreateCampaignRequest 创建募捐项目请求
type CreateCampaignRequest struct {
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	ImageURL    string                   `json:"imageUrl"`
	Category    string                   `json:"category"`
	TargetAmount int64                   `json:"targetAmount" binding:"required,min=1"`
	MinDonation int64                    `json:"minDonation"`
	OwnerId     string                   `json:"ownerId" binding:"required"`
	OwnerName   string                   `json:"ownerName"`
	Milestones  []CreateMilestoneRequest `json:"milestones"`
}

// ConfirmDonationRequest 支付网关捐赠确认回调请求
type ConfirmDonationRequest struct {
	CampaignId int64  `json:"campaignId" binding:"required"`
	Amount     int64  `json:"amount" binding:"required"`
	DonorName  string `json:"donorName"`
	Anonymous  bool   `json:"anonymous"`
	Message    string `json:"message"`
	TxRef      string `json:"txRef" binding:"required"`
}

// SubmitProofRequest 提交里程碑凭证请求
type SubmitProofRequest struct {
	OwnerId          string `json:"ownerId" binding:"required"`
	ProofURL         string `json:"proofUrl" binding:"required"`
	ProofDescription string `json:"proofDescription"`
}

// DecideMilestoneRequest 里程碑审批请求
type DecideMilestoneRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

// RequestWithdrawalRequest 提现申请请求
type RequestWithdrawalRequest struct {
	Amount             int64  `json:"amount" binding:"required"`
	Method             string `json:"method" binding:"required"`
	DestinationAccount string `json:"destinationAccount" binding:"required"`
	OwnerId            string `json:"ownerId" binding:"required"`
}

// 响应模型

// LedgerResponse 账本快照响应
type LedgerResponse struct {
	CampaignId     int64 `json:"campaignId"`
	RaisedTotal    int64 `json:"raisedTotal"`
	ReleasedTotal  int64 `json:"releasedTotal"`
	WithdrawnTotal int64 `json:"withdrawnTotal"`
	AvailableTotal int64 `json:"availableTotal"`
}

// CampaignResponse 项目响应模型
type CampaignResponse struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ImageURL     string         `json:"imageUrl"`
	Category     string         `json:"category"`
	TargetAmount int64          `json:"targetAmount"`
	MinDonation  int64          `json:"minDonation"`
	Status       string         `json:"status"`
	OwnerName    string         `json:"ownerName"`
	Ledger       LedgerResponse `json:"ledger"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// MilestoneResponse 里程碑响应模型
type MilestoneResponse struct {
	ID               int64      `json:"id"`
	CampaignId       int64      `json:"campaignId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Amount           int64      `json:"amount"`
	Status           string     `json:"status"`
	ProofURL         string     `json:"proofUrl"`
	ProofDescription string     `json:"proofDescription"`
	SubmittedAt      *time.Time `json:"submittedAt"`
	DecidedAt        *time.Time `json:"decidedAt"`
}

// DonationRecordResponse 捐赠记录响应模型
type DonationRecordResponse struct {
	ID         int64     `json:"id"`
	CampaignId int64     `json:"campaignId"`
	Amount     int64     `json:"amount"`
	DonorName  string    `json:"donorName"`
	Message    string    `json:"message"`
	TxRef      string    `json:"txRef"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WithdrawalRecordResponse 提现记录响应模型
type WithdrawalRecordResponse struct {
	ID                 int64     `json:"id"`
	CampaignId         int64     `json:"campaignId"`
	Amount             int64     `json:"amount"`
	Method             string    `json:"method"`
	DestinationAccount string    `json:"destinationAccount"`
	TxRef              string    `json:"txRef"`
	CreatedAt          time.Time `json:"createdAt"`
}

// FundEventResponse 资金事件响应模型
type FundEventResponse struct {
	ID         int64     `json:"id"`
	CampaignId int64     `json:"campaignId"`
	EventType  string    `json:"eventType"`
	Data       string    `json:"data"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToCampaignResponse 转换项目响应
func ToCampaignResponse(c *model.CampaignModel) CampaignResponse {
	return CampaignResponse{
		ID:           c.Id,
		Title:        c.Title,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		Category:     c.Category,
		TargetAmount: c.TargetAmount,
		MinDonation:  c.MinDonation,
		Status:       string(c.Status),
		OwnerName:    c.OwnerName,
		Ledger: LedgerResponse{
			CampaignId:     c.Id,
			RaisedTotal:    c.RaisedTotal,
			ReleasedTotal:  c.ReleasedTotal,
			WithdrawnTotal: c.WithdrawnTotal,
			AvailableTotal: c.AvailableTotal(),
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCampaignResponseList 转换项目响应列表
func ToCampaignResponseList(campaigns []model.CampaignModel) []CampaignResponse {
	responses := make([]CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		responses = append(responses, ToCampaignResponse(&campaigns[i]))
	}
	return responses
}

// ToLedgerResponse 转换账本快照响应
func ToLedgerResponse(s *model.LedgerSnapshot) LedgerResponse {
	return LedgerResponse{
		CampaignId:     s.CampaignId,
		RaisedTotal:    s.RaisedTotal,
		ReleasedTotal:  s.ReleasedTotal,
		WithdrawnTotal: s.WithdrawnTotal,
		AvailableTotal: s.AvailableTotal,
	}
}

// ToMilestoneResponse 转换里程碑响应
func ToMilestoneResponse(m *model.MilestoneModel) MilestoneResponse {
	return MilestoneResponse{
		ID:               m.Id,
		CampaignId:       m.CampaignId,
		Title:            m.Title,
		Description:      m.Description,
		Amount:           m.Amount,
		Status:           string(m.Status),
		ProofURL:         m.ProofURL,
		ProofDescription: m.ProofDescription,
		SubmittedAt:      m.SubmittedAt,
		DecidedAt:        m.DecidedAt,
	}
}

// ToMilestoneResponseList 转换里程碑响应列表
func ToMilestoneResponseList(milestones []model.MilestoneModel) []MilestoneResponse {
	responses := make([]MilestoneResponse, 0, len(milestones))
	for i := range milestones {
		responses = append(responses, ToMilestoneResponse(&milestones[i]))
	}
	return responses
}

// ToDonationRecordResponse 转换捐赠记录响应，匿名捐赠不返回捐赠人姓名
func ToDonationRecordResponse(r *model.DonationRecordModel) DonationRecordResponse {
	donorName := r.DonorName
	if r.Anonymous {
		donorName = "匿名"
	}
	return DonationRecordResponse{
		ID:         r.Id,
		CampaignId: r.CampaignId,
		Amount:     r.Amount,
		DonorName:  donorName,
		Message:    r.Message,
		TxRef:      r.TxRef,
		CreatedAt:  r.CreatedAt,
	}
}

// ToDonationRecordResponseList 转换捐赠记录响应列表
func ToDonationRecordResponseList(records []model.DonationRecordModel) []DonationRecordResponse {
	responses := make([]DonationRecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, ToDonationRecordResponse(&records[i]))
	}
	return responses
}

// ToWithdrawalRecordResponse 转换提现记录响应
func ToWithdrawalRecordResponse(r *model.WithdrawalRecordModel) WithdrawalRecordResponse {
	return WithdrawalRecordResponse{
		ID:                 r.Id,
		CampaignId:         r.CampaignId,
		Amount:             r.Amount,
		Method:             r.Method,
		DestinationAccount: r.DestinationAccount,
		TxRef:              r.TxRef,
		CreatedAt:          r.CreatedAt,
	}
}

// ToWithdrawalRecordResponseList 转换提现记录响应列表
func ToWithdrawalRecordResponseList(records []model.WithdrawalRecordModel) []WithdrawalRecordResponse {
	responses := make([]WithdrawalRecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, ToWithdrawalRecordResponse(&records[i]))
	}
	return responses
}

// ToFundEventResponseList 转换资金事件响应列表
func ToFundEventResponseList(events []model.FundEventModel) []FundEventResponse {
	responses := make([]FundEventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, FundEventResponse{
			ID:         events[i].Id,
			CampaignId: events[i].CampaignId,
			EventType:  string(events[i].EventType),
			Data:       events[i].Data,
			CreatedAt:  events[i].CreatedAt,
		})
	}
	return responses
}
