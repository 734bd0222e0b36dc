package sheets

import (
	"context"
	"sync"
)

// MockExporter is a mock implementation of Exporter for testing.
type MockExporter struct {
	ExportFunc      func(ctx context.Context, report *MonthlyReport) error
	LastReport      *MonthlyReport
	ExportCalls     []ExportCall
	ExportCallCount int
	mu              sync.Mutex
}

// ExportCall represents a single call to Export.
type ExportCall struct {
	Error  error
	Report *MonthlyReport
}

// NewMockExporter creates a new mock exporter.
func NewMockExporter() *MockExporter {
	return &MockExporter{
		ExportCalls: make([]ExportCall, 0),
	}
}

// Export implements the Exporter interface.
func (m *MockExporter) Export(ctx context.Context, report *MonthlyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExportCallCount++
	m.LastReport = report

	var err error
	if m.ExportFunc != nil {
		err = m.ExportFunc(ctx, report)
	}

	m.ExportCalls = append(m.ExportCalls, ExportCall{
		Report: report,
		Error:  err,
	})

	return err
}

// Reset clears all recorded calls.
func (m *MockExporter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExportCallCount = 0
	m.ExportCalls = make([]ExportCall, 0)
	m.LastReport = nil
}

// SetExportError configures the mock to return an error on every Export call.
func (m *MockExporter) SetExportError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExportFunc = func(_ context.Context, _ *MonthlyReport) error {
		return err
	}
}
