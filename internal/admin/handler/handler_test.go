package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"felicity/internal/admin/handler"
	"felicity/internal/admin/mocks"
	"felicity/internal/platform/metrics"
	"felicity/internal/registration"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/audit"
	metadata "felicity/pkg/platform/middleware/metadata"
	"felicity/pkg/testutil"
)

func newHandler(t *testing.T) (*mocks.MockService, http.Handler, *audit.Publisher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)

	auditor := audit.NewPublisher(16)
	m := metrics.NewWith(prometheus.NewRegistry())
	h := handler.New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), m, auditor)

	r := chi.NewRouter()
	h.Register(r)
	h.RegisterSuperAdmin(r)
	return svc, r, auditor
}

func asAdmin(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, path, body)
	} else {
		req = testutil.NewRequest(t, method, path)
	}
	return testutil.WithSession(req, "admin-1", "admin")
}

func TestVerifyPaymentApprove(t *testing.T) {
	svc, h, auditor := newHandler(t)

	svc.EXPECT().
		Verify(gomock.Any(), "reg-1", "admin-1", "matches bank statement").
		Return(&registration.Registration{ID: "reg-1", Status: registration.StatusManualVerified}, nil)

	rec := testutil.DoRequest(h, asAdmin(t, http.MethodPost, "/verify-payment", map[string]any{
		"registrationId": "reg-1",
		"approve":        true,
		"note":           "matches bank statement",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	out := testutil.UnmarshalResponse[registration.Registration](t, rec)
	assert.Equal(t, registration.StatusManualVerified, out.Status)

	ev := <-auditor.Inbox()
	assert.Equal(t, audit.ActionPaymentVerified, ev.Action)
	assert.Equal(t, "admin-1", ev.ActorID)
}

func TestVerifyPaymentAuditCarriesClientMetadata(t *testing.T) {
	svc, h, auditor := newHandler(t)

	svc.EXPECT().
		Verify(gomock.Any(), "reg-1", "admin-1", "").
		Return(&registration.Registration{ID: "reg-1", Status: registration.StatusManualVerified}, nil)

	req := asAdmin(t, http.MethodPost, "/verify-payment", map[string]any{
		"registrationId": "reg-1",
		"approve":        true,
	})
	ua := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	req = req.WithContext(metadata.WithClientMetadata(req.Context(), "203.0.113.9", ua))

	rec := testutil.DoRequest(h, req)
	require.Equal(t, http.StatusOK, rec.Code)

	ev := <-auditor.Inbox()
	assert.Equal(t, "203.0.113.9", ev.ClientIP)
	assert.Contains(t, ev.Device, "Chrome")
}

func TestVerifyPaymentReject(t *testing.T) {
	svc, h, auditor := newHandler(t)

	svc.EXPECT().
		Reject(gomock.Any(), "reg-1", "admin-1", "no matching transaction").
		Return(&registration.Registration{ID: "reg-1", Status: registration.StatusFailed}, nil)

	rec := testutil.DoRequest(h, asAdmin(t, http.MethodPost, "/verify-payment", map[string]any{
		"registrationId": "reg-1",
		"approve":        false,
		"note":           "no matching transaction",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	ev := <-auditor.Inbox()
	assert.Equal(t, audit.ActionPaymentRejected, ev.Action)
}

func TestVerifyPaymentConflict(t *testing.T) {
	svc, h, _ := newHandler(t)

	svc.EXPECT().
		Verify(gomock.Any(), "reg-1", "admin-1", "").
		Return(nil, dErrors.New(dErrors.CodeConflict, "registration is already paid"))

	rec := testutil.DoRequest(h, asAdmin(t, http.MethodPost, "/verify-payment", map[string]any{
		"registrationId": "reg-1",
		"approve":        true,
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	testutil.AssertErrorCode(t, rec, string(dErrors.CodeConflict))
}

func TestVerifyPaymentMissingID(t *testing.T) {
	_, h, _ := newHandler(t)

	rec := testutil.DoRequest(h, asAdmin(t, http.MethodPost, "/verify-payment", map[string]any{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRegistrationsFilters(t *testing.T) {
	svc, h, _ := newHandler(t)

	svc.EXPECT().
		ListRegistrations(gomock.Any(), "ev-1", registration.StatusVerificationPending).
		Return([]*registration.Registration{{ID: "reg-1"}}, nil)

	rec := testutil.DoRequest(h, asAdmin(t, http.MethodGet, "/registrations?event=ev-1&status=verification_pending", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	out := testutil.UnmarshalResponse[[]*registration.Registration](t, rec)
	require.Len(t, *out, 1)
	assert.Equal(t, "reg-1", (*out)[0].ID)
}

func TestBackfill(t *testing.T) {
	svc, h, auditor := newHandler(t)

	svc.EXPECT().
		Backfill(gomock.Any(), "Alpha", "", "admin-1", "paid at desk").
		Return(&registration.Registration{ID: "reg-9", EventID: "ev-1", Status: registration.StatusManualVerified}, nil)

	rec := testutil.DoRequest(h, asAdmin(t, http.MethodPost, "/backfill-registration", map[string]any{
		"teamName": "Alpha",
		"note":     "paid at desk",
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	ev := <-auditor.Inbox()
	assert.Equal(t, audit.ActionRegistrationBackfill, ev.Action)
	assert.Equal(t, audit.CategoryCompliance, ev.Category)
}
