package router

import (
	"github.com/blues/dfs/internal/config"
	"github.com/blues/dfs/internal/event"
	"github.com/blues/dfs/internal/handler"
	"github.com/blues/dfs/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, hub *event.Hub, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "donation-funding-service",
		})
	})

	// 业务逻辑
	ledgerLogic := logic.NewLedgerLogic(db, cfg.Ledger)
	campaignLogic := logic.NewCampaignLogic(db)
	fundEventLogic := logic.NewFundEventLogic(db)
	donationLogic := logic.NewDonationLogic(db, ledgerLogic, hub)
	milestoneLogic := logic.NewMilestoneLogic(db, ledgerLogic, hub)
	withdrawalLogic := logic.NewWithdrawalLogic(db, ledgerLogic, hub)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 项目相关路由
		campaignHandler := handler.NewCampaignHandler(campaignLogic, ledgerLogic, fundEventLogic)
		donationHandler := handler.NewDonationHandler(donationLogic)
		withdrawalHandler := handler.NewWithdrawalHandler(withdrawalLogic)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/ledger", campaignHandler.GetCampaignLedger)
			campaigns.GET("/:id/milestones", campaignHandler.GetCampaignMilestones)
			campaigns.GET("/:id/events", campaignHandler.GetCampaignEvents)
			campaigns.GET("/:id/donations", donationHandler.GetCampaignDonations)
			campaigns.GET("/:id/withdrawals", withdrawalHandler.GetCampaignWithdrawals)
			campaigns.POST("/:id/withdrawals", withdrawalHandler.RequestWithdrawal)
		}

		// 支付网关确认回调
		donations := v1.Group("/donations")
		{
			donations.POST("/confirm", donationHandler.ConfirmDonation)
		}

		// 里程碑相关路由
		milestoneHandler := handler.NewMilestoneHandler(milestoneLogic)
		milestones := v1.Group("/milestones")
		{
			milestones.POST("/:id/proof", milestoneHandler.SubmitProof)
			milestones.POST("/:id/decision", milestoneHandler.Decide)
		}

		// 资金事件订阅
		wsHandler := handler.NewWsHandler(hub)
		v1.GET("/ws/campaigns/:id", wsHandler.Subscribe)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
