package main

import (
	"log/slog"

	"healthpay-platform/internal/auth"
	"healthpay-platform/internal/httpapi"
	"healthpay-platform/internal/rbac"
	"healthpay-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

func newRouter(log *slog.Logger, authManager *auth.Manager, h *httpapi.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log))

	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")
	v1.POST("/auth/login", h.Login)
	v1.POST("/auth/refresh", h.Refresh)

	authed := v1.Group("", auth.RequireAccessToken(authManager))

	// Provider-scoped routes: a provider account may only touch its own
	// :provider_id, admins may touch any.
	provider := authed.Group("", rbac.RequireProviderAccess())
	provider.GET("/wallet/:provider_id", h.GetWallet)
	provider.GET("/payments/provider/:provider_id", h.ListPayments)
	provider.DELETE("/payments/provider/:provider_id/payment/:payment_id", h.HidePayment)
	provider.POST("/payments/provider/:provider_id/bulk-delete", h.BulkHidePayments)
	provider.GET("/withdrawals/:provider_id", h.ListWithdrawals)
	provider.POST("/withdraw/:provider_id", h.SubmitWithdrawal)
	provider.DELETE("/withdrawals/:provider_id/:withdrawal_id", h.DeleteWithdrawal)
	provider.GET("/invoices/provider/:provider_id", h.ListProviderInvoices)
	provider.GET("/events/:provider_id", h.StreamEvents)

	// Ownership for the bulk body lives in the handler; the route has no
	// :provider_id param to check against.
	authed.POST("/withdrawals/bulk-delete", h.BulkDeleteWithdrawals)

	admin := authed.Group("/admin", rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleFinance))
	admin.POST("/payments", h.RecordPayment)
	admin.POST("/payments/:payment_id/complete", h.CompletePayment)
	admin.POST("/payments/:payment_id/release", h.ReleasePayment)
	admin.POST("/withdrawals/:withdrawal_id/status", h.TransitionWithdrawal)
	admin.DELETE("/withdrawals/provider/:provider_id", h.DeleteAllWithdrawals)
	admin.POST("/invoices/provider/:provider_id", h.IssueInvoice)
	admin.GET("/invoices", h.ListInvoices)
	admin.GET("/commission-rules", h.ListCommissionRules)
	admin.POST("/commission-rules", h.CreateCommissionRule)
	admin.POST("/commission-rules/:rule_id/retire", h.RetireCommissionRule)
	admin.GET("/audit/provider/:provider_id", h.ListAuditTrail)

	return r
}
