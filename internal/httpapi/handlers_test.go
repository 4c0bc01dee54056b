package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthpay-platform/internal/audit"
	"healthpay-platform/internal/auth"
	"healthpay-platform/internal/commission"
	"healthpay-platform/internal/invoice"
	"healthpay-platform/internal/ledger"
	"healthpay-platform/internal/notify"
	"healthpay-platform/internal/rbac"
	"healthpay-platform/internal/wallet"
	"healthpay-platform/internal/withdrawal"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type testEnv struct {
	h        *Handlers
	payments *ledger.MemoryStore
	ledger   *ledger.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	payments := ledger.NewMemoryStore()
	broker := notify.NewBroadcaster(8)
	ledgerSvc := ledger.NewService(payments, broker)

	wstore := withdrawal.NewMemoryStore()
	calc := wallet.NewCalculator(payments, wstore)
	serializer := ledger.NewProviderSerializer(nil, 0)

	h := &Handlers{
		Ledger:      ledgerSvc,
		Wallet:      calc,
		Withdrawals: withdrawal.NewService(wstore, calc, serializer, broker),
		Invoices:    invoice.NewService(invoice.NewMemoryStore(), payments, serializer, broker, "INV"),
		Commission:  commission.NewService(commission.NewMemoryRepo(), decimal.NewFromInt(10)),
		Audit:       audit.NewService(audit.NewMemoryRepo(), nil),
		Events:      broker,
		Clock:       func() time.Time { return time.Unix(1700000000, 0).UTC() },
	}
	return &testEnv{h: h, payments: payments, ledger: ledgerSvc}
}

// asIdentity replaces the JWT middleware with a fixed identity so handler
// tests exercise the same context plumbing the real stack uses.
func asIdentity(userID, providerID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), userID, providerID, role))
		c.Next()
	}
}

func (e *testEnv) router(identity gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	v1 := r.Group("/v1", identity)

	provider := v1.Group("", rbac.RequireProviderAccess())
	provider.GET("/wallet/:provider_id", e.h.GetWallet)
	provider.GET("/payments/provider/:provider_id", e.h.ListPayments)
	provider.DELETE("/payments/provider/:provider_id/payment/:payment_id", e.h.HidePayment)
	provider.GET("/withdrawals/:provider_id", e.h.ListWithdrawals)
	provider.POST("/withdraw/:provider_id", e.h.SubmitWithdrawal)
	provider.DELETE("/withdrawals/:provider_id/:withdrawal_id", e.h.DeleteWithdrawal)
	provider.GET("/invoices/provider/:provider_id", e.h.ListProviderInvoices)

	admin := v1.Group("/admin", rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleFinance))
	admin.POST("/payments", e.h.RecordPayment)
	admin.POST("/payments/:payment_id/complete", e.h.CompletePayment)
	admin.POST("/payments/:payment_id/release", e.h.ReleasePayment)
	admin.POST("/withdrawals/:withdrawal_id/status", e.h.TransitionWithdrawal)
	admin.POST("/invoices/provider/:provider_id", e.h.IssueInvoice)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedReleased(t *testing.T, providerID string, amounts ...int64) []string {
	t.Helper()
	ctx := context.Background()
	var ids []string
	for _, amt := range amounts {
		p, err := e.ledger.Record(ctx, ledger.RecordRequest{
			ProviderID: providerID, ServiceName: "Consultation", PatientName: "Sam",
			Amount: decimal.NewFromInt(amt),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if _, err := e.ledger.MarkCompleted(ctx, p.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if _, err := e.ledger.MarkReleased(ctx, p.ID); err != nil {
			t.Fatalf("release: %v", err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGetWallet_UnknownProviderIs404(t *testing.T) {
	e := newTestEnv(t)
	r := e.router(asIdentity("u1", "prov-1", rbac.RoleDoctor))

	w := do(t, r, http.MethodGet, "/v1/wallet/prov-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestGetWallet_DerivesBalances(t *testing.T) {
	e := newTestEnv(t)
	e.seedReleased(t, "prov-1", 2000, 3000, 4000)
	r := e.router(asIdentity("u1", "prov-1", rbac.RoleDoctor))

	w := do(t, r, http.MethodGet, "/v1/wallet/prov-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var snap wallet.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.AvailableBalance.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("available = %s, want 9000", snap.AvailableBalance)
	}

	// Reads are pure derivation: with no intervening mutation a repeat fetch
	// is byte-identical.
	again := do(t, r, http.MethodGet, "/v1/wallet/prov-1", nil)
	if again.Code != http.StatusOK {
		t.Fatalf("repeat status = %d", again.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), again.Body.Bytes()) {
		t.Fatalf("repeat read differs:\n%s\n%s", w.Body.String(), again.Body.String())
	}
}

func TestGetWallet_ForeignProviderForbidden(t *testing.T) {
	e := newTestEnv(t)
	e.seedReleased(t, "prov-1", 2000)
	r := e.router(asIdentity("u2", "prov-2", rbac.RoleClinic))

	w := do(t, r, http.MethodGet, "/v1/wallet/prov-1", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestSubmitWithdrawal_InsufficientBalanceIs402(t *testing.T) {
	e := newTestEnv(t)
	e.seedReleased(t, "prov-1", 1000)
	r := e.router(asIdentity("u1", "prov-1", rbac.RoleDoctor))

	w := do(t, r, http.MethodPost, "/v1/withdraw/prov-1", gin.H{
		"amount":         "5000",
		"payment_method": "bank_transfer",
		"account_number": "000111222",
		"account_name":   "Dr. Sam",
	})
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402: %s", w.Code, w.Body.String())
	}
}

func TestWithdrawalFlow_SubmitApproveDelete(t *testing.T) {
	e := newTestEnv(t)
	e.seedReleased(t, "prov-1", 9000)
	provider := e.router(asIdentity("u1", "prov-1", rbac.RoleDoctor))
	admin := e.router(asIdentity("a1", "", rbac.RoleAdmin))

	w := do(t, provider, http.MethodPost, "/v1/withdraw/prov-1", gin.H{
		"amount":         "5000",
		"payment_method": "bank_transfer",
		"account_number": "000111222",
		"account_name":   "Dr. Sam",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d: %s", w.Code, w.Body.String())
	}
	var created withdrawal.Withdrawal
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = do(t, admin, http.MethodPost, "/v1/admin/withdrawals/"+created.ID+"/status", gin.H{"status": "approved"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", w.Code, w.Body.String())
	}

	// An illegal jump reports a conflict.
	w = do(t, admin, http.MethodPost, "/v1/admin/withdrawals/"+created.ID+"/status", gin.H{"status": "rejected"})
	if w.Code != http.StatusConflict {
		t.Fatalf("illegal transition status = %d, want 409", w.Code)
	}

	// The provider may not remove a non-pending withdrawal.
	w = do(t, provider, http.MethodDelete, "/v1/withdrawals/prov-1/"+created.ID, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("provider delete status = %d, want 403", w.Code)
	}

	// Admin removal works and is idempotent.
	w = do(t, admin, http.MethodDelete, "/v1/withdrawals/prov-1/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin delete status = %d: %s", w.Code, w.Body.String())
	}
	w = do(t, admin, http.MethodDelete, "/v1/withdrawals/prov-1/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat delete status = %d", w.Code)
	}
}

func TestAdminPaymentLifecycleAndHistory(t *testing.T) {
	e := newTestEnv(t)
	admin := e.router(asIdentity("a1", "", rbac.RoleAdmin))
	provider := e.router(asIdentity("u1", "prov-1", rbac.RoleDoctor))

	w := do(t, admin, http.MethodPost, "/v1/admin/payments", gin.H{
		"provider_id":  "prov-1",
		"service_name": "X-Ray",
		"patient_name": "Sam",
		"amount":       "2500",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record status = %d: %s", w.Code, w.Body.String())
	}
	var p ledger.Payment
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Release before completion conflicts.
	w = do(t, admin, http.MethodPost, "/v1/admin/payments/"+p.ID+"/release", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("early release status = %d, want 409", w.Code)
	}

	if w = do(t, admin, http.MethodPost, "/v1/admin/payments/"+p.ID+"/complete", nil); w.Code != http.StatusOK {
		t.Fatalf("complete status = %d", w.Code)
	}
	if w = do(t, admin, http.MethodPost, "/v1/admin/payments/"+p.ID+"/release", nil); w.Code != http.StatusOK {
		t.Fatalf("release status = %d", w.Code)
	}

	w = do(t, provider, http.MethodGet, "/v1/payments/provider/prov-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var hist struct {
		Payments []ledger.Payment `json:"payments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hist.Payments) != 1 || !hist.Payments[0].ReleasedToProvider {
		t.Fatalf("unexpected history: %+v", hist.Payments)
	}

	// Soft-hide removes it from history only.
	if w = do(t, provider, http.MethodDelete, "/v1/payments/provider/prov-1/payment/"+p.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("hide status = %d", w.Code)
	}
	w = do(t, provider, http.MethodGet, "/v1/payments/provider/prov-1", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &hist)
	if len(hist.Payments) != 0 {
		t.Fatalf("hidden payment still in history: %+v", hist.Payments)
	}
	w = do(t, provider, http.MethodGet, "/v1/wallet/prov-1", nil)
	var snap wallet.Snapshot
	_ = json.Unmarshal(w.Body.Bytes(), &snap)
	if !snap.AvailableBalance.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("hidden payment must still count: %s", snap.AvailableBalance)
	}
}

func TestIssueInvoice_UsesRuleResolutionAndConflictsWhenEmpty(t *testing.T) {
	e := newTestEnv(t)
	admin := e.router(asIdentity("a1", "", rbac.RoleAdmin))

	// Nothing billable yet.
	w := do(t, admin, http.MethodPost, "/v1/admin/invoices/provider/prov-1", gin.H{"provider_type": "clinic"})
	if w.Code != http.StatusConflict {
		t.Fatalf("empty issue status = %d, want 409: %s", w.Code, w.Body.String())
	}

	e.seedReleased(t, "prov-1", 1000, 2000)
	w = do(t, admin, http.MethodPost, "/v1/admin/invoices/provider/prov-1", gin.H{"provider_type": "clinic"})
	if w.Code != http.StatusCreated {
		t.Fatalf("issue status = %d: %s", w.Code, w.Body.String())
	}
	var inv invoice.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// No rule installed: the configured default (10%) applies.
	if !inv.CommissionAmount.Equal(decimal.NewFromInt(300)) || !inv.NetTotal.Equal(decimal.NewFromInt(2700)) {
		t.Fatalf("unexpected totals: %+v", inv)
	}
	if inv.InvoiceNumber != "INV-000001" {
		t.Fatalf("unexpected number %q", inv.InvoiceNumber)
	}
}

func TestAdminEndpointsRejectProviderRoles(t *testing.T) {
	e := newTestEnv(t)
	provider := e.router(asIdentity("u1", "prov-1", rbac.RoleDoctor))

	w := do(t, provider, http.MethodPost, "/v1/admin/payments", gin.H{
		"provider_id": "prov-1", "service_name": "X", "patient_name": "S", "amount": "10",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
