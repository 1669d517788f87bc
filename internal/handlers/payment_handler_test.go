package handlers

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
)

// stubPaymentService lets upload tests dictate the ledger outcome.
type stubPaymentService struct {
	uploadErr   error
	uploadInput *services.UploadProofInput
}

func (s *stubPaymentService) CreateOrder(ctx context.Context, req *services.CreateOrderRequest) (*services.CreateOrderResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) UploadProof(ctx context.Context, input *services.UploadProofInput) error {
	s.uploadInput = input
	return s.uploadErr
}

func (s *stubPaymentService) GetStatus(ctx context.Context, subjectID uint, kind models.SubjectKind, payerID uint) (*services.PaymentStatusResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) PollOrder(ctx context.Context, orderID string) (*services.PollOrderResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) ListPending(ctx context.Context, filters repositories.PaymentFilters) (*services.PaymentListResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) Approve(ctx context.Context, orderID string, remarks *string, actorID uint) error {
	return nil
}

func (s *stubPaymentService) Reject(ctx context.Context, orderID string, reason string, actorID uint) error {
	return nil
}

func (s *stubPaymentService) IsPaid(ctx context.Context, subjectID uint, kind models.SubjectKind, payerID uint) (bool, error) {
	return false, nil
}

func newUploadTestRouter(t *testing.T, svc services.PaymentService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uploadDir := t.TempDir()
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	handler := NewPaymentHandler(svc, logger, uploadDir)

	router := gin.New()
	router.POST("/api/payments/upload-screenshot", handler.UploadScreenshot)
	return router, uploadDir
}

func proofUploadRequest(t *testing.T, orderID string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("order_id", orderID); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField %s: %v", k, err)
		}
	}
	part, err := mw.CreateFormFile("screenshot", "proof.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("fake image bytes")); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/upload-screenshot", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func countStoredFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", dir, err)
	}
	return count
}

func TestPaymentHandler_UploadScreenshot(t *testing.T) {
	t.Run("successful upload keeps the stored file", func(t *testing.T) {
		svc := &stubPaymentService{}
		router, uploadDir := newUploadTestRouter(t, svc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, proofUploadRequest(t, "b2b770a1-4c1f-4a18-9b2e-000000000001", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if got := countStoredFiles(t, uploadDir); got != 1 {
			t.Errorf("Expected one stored file, found %d", got)
		}
		if svc.uploadInput == nil {
			t.Fatal("Service was not called")
		}
		if _, err := os.Stat(filepath.Join(uploadDir, svc.uploadInput.ScreenshotPath)); err != nil {
			t.Errorf("Referenced file missing: %v", err)
		}
	})

	t.Run("refused upload leaves no file behind", func(t *testing.T) {
		for _, tc := range []struct {
			name       string
			serviceErr error
			wantStatus int
		}{
			{"terminal entry", services.ErrPaymentTerminal, http.StatusConflict},
			{"unknown order", services.ErrOrderNotFound, http.StatusNotFound},
		} {
			t.Run(tc.name, func(t *testing.T) {
				svc := &stubPaymentService{uploadErr: tc.serviceErr}
				router, uploadDir := newUploadTestRouter(t, svc)

				w := httptest.NewRecorder()
				router.ServeHTTP(w, proofUploadRequest(t, "b2b770a1-4c1f-4a18-9b2e-000000000002", nil))

				if w.Code != tc.wantStatus {
					t.Fatalf("Expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
				}
				if got := countStoredFiles(t, uploadDir); got != 0 {
					t.Errorf("Expected no stored files after refusal, found %d", got)
				}
			})
		}
	})

	t.Run("traversal order id is refused before storage", func(t *testing.T) {
		svc := &stubPaymentService{}
		router, uploadDir := newUploadTestRouter(t, svc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, proofUploadRequest(t, "../../outside/owned", nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if svc.uploadInput != nil {
			t.Error("Service should not be called for a malformed order id")
		}
		if got := countStoredFiles(t, uploadDir); got != 0 {
			t.Errorf("Expected no stored files, found %d", got)
		}
		outside := filepath.Join(uploadDir, "..", "outside")
		if _, err := os.Stat(outside); !os.IsNotExist(err) {
			t.Errorf("Traversal target %q exists", outside)
		}
	})
}
