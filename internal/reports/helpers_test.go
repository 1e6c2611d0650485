package reports

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"roomreports/internal/exporter"
	"roomreports/pkg/contracts/domain"
)

var errBoom = errors.New("connection refused")

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// mockTransport is a testify mock of reportsapi.Transport.
type mockTransport struct {
	mock.Mock
	name string
}

func newMockTransport(name string) *mockTransport {
	return &mockTransport{name: name}
}

func (m *mockTransport) Name() string { return m.name }

func (m *mockTransport) GetReportsData(ctx context.Context, forceRefresh bool) (*domain.ReportPayload, error) {
	args := m.Called(ctx, forceRefresh)
	p, _ := args.Get(0).(*domain.ReportPayload)
	return p, args.Error(1)
}

func (m *mockTransport) RegenerateReports(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTransport) ExportCSV(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockTransport) GetPDFData(ctx context.Context) (domain.PDFData, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).(domain.PDFData)
	return b, args.Error(1)
}

func samplePayload(total int64) *domain.ReportPayload {
	return &domain.ReportPayload{
		Statistics: &domain.StatisticsPayload{
			TotalReservations:    domain.Int(total),
			ApprovedReservations: domain.Int(total - 1),
		},
		PopularRooms: []domain.PopularRoomPayload{
			{Room: domain.String("B-101"), Count: domain.Int(4), Percentage: domain.Float(62.5)},
		},
		ActiveUsers: []domain.ActiveUserPayload{
			{UserName: domain.String("Dana Lee"), Role: domain.String("STUDENT"), Count: domain.Int(3)},
		},
	}
}

// blockingTransport counts report loads and holds each one until released.
type blockingTransport struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	payload func(call int32) *domain.ReportPayload
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		payload: func(call int32) *domain.ReportPayload { return samplePayload(int64(call)) },
	}
}

func (b *blockingTransport) Name() string { return "blocking" }

func (b *blockingTransport) GetReportsData(ctx context.Context, _ bool) (*domain.ReportPayload, error) {
	n := b.calls.Add(1)
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.payload(n), nil
}

func (b *blockingTransport) RegenerateReports(context.Context) error { return nil }

func (b *blockingTransport) ExportCSV(context.Context) ([]byte, error) { return nil, nil }

func (b *blockingTransport) GetPDFData(context.Context) (domain.PDFData, error) { return nil, nil }

// memorySink keeps delivered artifacts.
type memorySink struct {
	mu        sync.Mutex
	artifacts []exporter.Artifact
	err       error
	panicMsg  string
}

func (s *memorySink) Deliver(_ context.Context, a exporter.Artifact) (string, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, a)
	return "memory://" + a.Name, nil
}

// recordingAlerter keeps alert messages.
type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Alert(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

func (a *recordingAlerter) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}
