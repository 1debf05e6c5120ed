package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/google/uuid"
)

type goalKey struct {
	month, year int
}

// MockGateway is an in-memory implementation of every upstream gateway interface.
// It is safe for concurrent use.
type MockGateway struct {
	mu sync.Mutex

	Sales    map[string]*domain.Sale
	Expenses map[string]*domain.Expense
	Products []domain.Product
	Goals    map[goalKey]*domain.Goal

	MonthlySalesSeries []domain.MonthlyTotal
	MonthlyUnitsSeries []domain.MonthlyTotal

	// Error injection
	ListSalesErr    error
	ListExpensesErr error
	ListProductsErr error
	GetGoalErr      error
	UpsertGoalErr   error
	MonthlyErr      error
	CreateErr       error
	UpdateErrs      map[string]error
	DeleteErr       error

	// Observed calls
	Calls     map[string]int
	Tokens    []string
	LastSaleQ *domain.SaleFilter

	// Artificial latency of ListSales and ListExpenses
	ListDelay time.Duration

	order  []string
	nextID int
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Sales:      make(map[string]*domain.Sale),
		Expenses:   make(map[string]*domain.Expense),
		Goals:      make(map[goalKey]*domain.Goal),
		UpdateErrs: make(map[string]error),
		Calls:      make(map[string]int),
		nextID:     1,
	}
}

func (m *MockGateway) record(op, token string) {
	m.Calls[op]++
	m.Tokens = append(m.Tokens, token)
}

func (m *MockGateway) newID(prefix string) string {
	id := fmt.Sprintf("%s%d", prefix, m.nextID)
	m.nextID++
	return id
}

// CallCount returns how many times op was invoked
func (m *MockGateway) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

// AddSale adds a sale to the mock gateway (helper for tests)
func (m *MockGateway) AddSale(sale domain.Sale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sale.ID == "" {
		sale.ID = m.newID("v")
	}
	m.Sales[sale.ID] = &sale
	m.order = append(m.order, sale.ID)
}

// AddExpense adds an expense to the mock gateway (helper for tests)
func (m *MockGateway) AddExpense(expense domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expense.ID == "" {
		expense.ID = m.newID("d")
	}
	m.Expenses[expense.ID] = &expense
	m.order = append(m.order, expense.ID)
}

// AddGoal adds a goal to the mock gateway (helper for tests)
func (m *MockGateway) AddGoal(goal domain.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Goals[goalKey{goal.Month, goal.Year}] = &goal
}

// ListSales returns every sale in insertion order. The filter is recorded, not applied.
func (m *MockGateway) ListSales(ctx context.Context, token string, filter *domain.SaleFilter) ([]domain.Sale, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListSales", token)
	m.LastSaleQ = filter
	if m.ListSalesErr != nil {
		return nil, m.ListSalesErr
	}
	var out []domain.Sale
	for _, id := range m.order {
		if s, ok := m.Sales[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

// CreateSale stores a sale with a generated ID
func (m *MockGateway) CreateSale(ctx context.Context, token string, sale *domain.Sale) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateSale", token)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	created := *sale
	created.ID = m.newID("v")
	m.Sales[created.ID] = &created
	m.order = append(m.order, created.ID)
	return &created, nil
}

// UpdateSale replaces an existing sale
func (m *MockGateway) UpdateSale(ctx context.Context, token string, id string, sale *domain.Sale) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateSale", token)
	if err := m.UpdateErrs[id]; err != nil {
		return nil, err
	}
	if _, ok := m.Sales[id]; !ok {
		return nil, domain.ErrNotFound
	}
	updated := *sale
	updated.ID = id
	m.Sales[id] = &updated
	return &updated, nil
}

// DeleteSale removes a sale
func (m *MockGateway) DeleteSale(ctx context.Context, token string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteSale", token)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.Sales, id)
	return nil
}

// ListExpenses returns every expense in insertion order
func (m *MockGateway) ListExpenses(ctx context.Context, token string) ([]domain.Expense, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListExpenses", token)
	if m.ListExpensesErr != nil {
		return nil, m.ListExpensesErr
	}
	var out []domain.Expense
	for _, id := range m.order {
		if e, ok := m.Expenses[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

// CreateExpense stores an expense with a generated ID
func (m *MockGateway) CreateExpense(ctx context.Context, token string, expense *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateExpense", token)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	created := *expense
	created.ID = m.newID("d")
	m.Expenses[created.ID] = &created
	m.order = append(m.order, created.ID)
	return &created, nil
}

// UpdateExpense replaces an existing expense
func (m *MockGateway) UpdateExpense(ctx context.Context, token string, id string, expense *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateExpense", token)
	if err := m.UpdateErrs[id]; err != nil {
		return nil, err
	}
	if _, ok := m.Expenses[id]; !ok {
		return nil, domain.ErrNotFound
	}
	updated := *expense
	updated.ID = id
	m.Expenses[id] = &updated
	return &updated, nil
}

// DeleteExpense removes an expense
func (m *MockGateway) DeleteExpense(ctx context.Context, token string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteExpense", token)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Expenses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// ListProducts returns the product catalogue
func (m *MockGateway) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListProducts", token)
	if m.ListProductsErr != nil {
		return nil, m.ListProductsErr
	}
	return append([]domain.Product(nil), m.Products...), nil
}

// GetGoal returns the goal of month/year or domain.ErrGoalNotFound
func (m *MockGateway) GetGoal(ctx context.Context, token string, month, year int) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetGoal", token)
	if m.GetGoalErr != nil {
		return nil, m.GetGoalErr
	}
	g, ok := m.Goals[goalKey{month, year}]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	out := *g
	return &out, nil
}

// UpsertGoal replaces the goal of the same month/year
func (m *MockGateway) UpsertGoal(ctx context.Context, token string, goal *domain.Goal) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpsertGoal", token)
	if m.UpsertGoalErr != nil {
		return nil, m.UpsertGoalErr
	}
	stored := *goal
	m.Goals[goalKey{goal.Month, goal.Year}] = &stored
	out := stored
	return &out, nil
}

// MonthlySales returns MonthlySalesSeries
func (m *MockGateway) MonthlySales(ctx context.Context, token string, month, year int) ([]domain.MonthlyTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("MonthlySales", token)
	if m.MonthlyErr != nil {
		return nil, m.MonthlyErr
	}
	return append([]domain.MonthlyTotal(nil), m.MonthlySalesSeries...), nil
}

// MonthlyUnits returns MonthlyUnitsSeries
func (m *MockGateway) MonthlyUnits(ctx context.Context, token string, month, year int) ([]domain.MonthlyTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("MonthlyUnits", token)
	if m.MonthlyErr != nil {
		return nil, m.MonthlyErr
	}
	return append([]domain.MonthlyTotal(nil), m.MonthlyUnitsSeries...), nil
}

func (m *MockGateway) wait(ctx context.Context) error {
	if m.ListDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(m.ListDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MockArchiveRepository is an in-memory storage.ArchiveRepository
type MockArchiveRepository struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Types     map[string]string
	UploadErr error
	Uploaded  chan string
}

// NewMockArchiveRepository creates a new MockArchiveRepository
func NewMockArchiveRepository() *MockArchiveRepository {
	return &MockArchiveRepository{
		Objects:  make(map[string][]byte),
		Types:    make(map[string]string),
		Uploaded: make(chan string, 64),
	}
}

// Upload stores the artifact bytes under objectKey
func (m *MockArchiveRepository) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) (string, error) {
	m.mu.Lock()
	if m.UploadErr != nil {
		err := m.UploadErr
		m.mu.Unlock()
		m.notify("")
		return "", err
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	m.Objects[objectKey] = buf
	m.Types[objectKey] = contentType
	m.mu.Unlock()
	m.notify(objectKey)
	return objectKey, nil
}

// PresignURL returns a fake URL for stored objects
func (m *MockArchiveRepository) PresignURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[objectKey]; !ok {
		return "", domain.ErrNotFound
	}
	return fmt.Sprintf("https://archive.test/%s?expires=%d", objectKey, int(expiry.Seconds())), nil
}

// Keys returns the stored object keys sorted
func (m *MockArchiveRepository) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MockArchiveRepository) notify(key string) {
	select {
	case m.Uploaded <- key:
	default:
	}
}

// MockExportLogRepository is an in-memory domain.ExportLogRepository
type MockExportLogRepository struct {
	mu        sync.Mutex
	Records   []*domain.ExportRecord
	CreateErr error
	Created   chan *domain.ExportRecord
}

// NewMockExportLogRepository creates a new MockExportLogRepository
func NewMockExportLogRepository() *MockExportLogRepository {
	return &MockExportLogRepository{Created: make(chan *domain.ExportRecord, 64)}
}

// Create appends a record
func (m *MockExportLogRepository) Create(ctx context.Context, record *domain.ExportRecord) error {
	m.mu.Lock()
	if m.CreateErr != nil {
		err := m.CreateErr
		m.mu.Unlock()
		return err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()
	m.Records = append(m.Records, record)
	m.mu.Unlock()

	select {
	case m.Created <- record:
	default:
	}
	return nil
}

// ListRecent returns the newest records first
func (m *MockExportLogRepository) ListRecent(ctx context.Context, topic string, limit int) ([]*domain.ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ExportRecord
	for i := len(m.Records) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if topic == "" || m.Records[i].Topic == topic {
			out = append(out, m.Records[i])
		}
	}
	return out, nil
}
