package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martialcamp/enrollment-api/internal/models"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
)

type mockPaymentRepo struct {
	checkedOut   []*models.Payment
	deleted      int64
	byStudent    []models.Payment
	byID         map[string]*models.Payment
	classIDLists [][]string
}

func (m *mockPaymentRepo) Checkout(ctx context.Context, payment *models.Payment) (int64, error) {
	payment.ID = "generated"
	m.checkedOut = append(m.checkedOut, payment)
	return m.deleted, nil
}

func (m *mockPaymentRepo) ListByStudent(ctx context.Context, email string) ([]models.Payment, error) {
	return m.byStudent, nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if payment, ok := m.byID[id]; ok {
		copy := *payment
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) ClassIDsByStudent(ctx context.Context, email string) ([][]string, error) {
	return m.classIDLists, nil
}

type mockEnrollClassRepo struct {
	classes     []models.Class
	lastLookup  []string
	incremented []string
	affected    int64
}

func (m *mockEnrollClassRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	m.lastLookup = ids
	return m.classes, nil
}

func (m *mockEnrollClassRepo) IncrementEnrolled(ctx context.Context, ids []string) (int64, error) {
	m.incremented = ids
	return m.affected, nil
}

type mockGateway struct {
	secret     string
	err        error
	lastAmount int64
	lastCurr   string
}

func (m *mockGateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	m.lastAmount = amount
	m.lastCurr = currency
	if m.err != nil {
		return "", m.err
	}
	return m.secret, nil
}

type mockReceipts struct {
	lastNames []string
	doc       []byte
}

func (m *mockReceipts) Render(payment *models.Payment, classNames []string) ([]byte, error) {
	m.lastNames = classNames
	return m.doc, nil
}

func newPaymentTestService(payments *mockPaymentRepo, classes *mockEnrollClassRepo, gw *mockGateway, receipts *mockReceipts) *PaymentService {
	if payments == nil {
		payments = &mockPaymentRepo{}
	}
	if classes == nil {
		classes = &mockEnrollClassRepo{}
	}
	if gw == nil {
		gw = &mockGateway{secret: "cs_test"}
	}
	if receipts == nil {
		receipts = &mockReceipts{doc: []byte("%PDF-1.4")}
	}
	return NewPaymentService(payments, classes, gw, receipts, "usd", nil, nil)
}

func TestPaymentServiceCreateIntentConvertsToCents(t *testing.T) {
	gw := &mockGateway{secret: "cs_test"}
	svc := newPaymentTestService(nil, nil, gw, nil)

	res, err := svc.CreateIntent(context.Background(), CreateIntentRequest{Price: 19.99})
	require.NoError(t, err)
	assert.Equal(t, "cs_test", res.ClientSecret)
	assert.Equal(t, int64(1999), gw.lastAmount)
	assert.Equal(t, "usd", gw.lastCurr)
}

func TestPaymentServiceCreateIntentRejectsZeroPrice(t *testing.T) {
	svc := newPaymentTestService(nil, nil, nil, nil)

	_, err := svc.CreateIntent(context.Background(), CreateIntentRequest{Price: 0})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceCheckoutFlattensNestedIDs(t *testing.T) {
	payments := &mockPaymentRepo{deleted: 2}
	svc := newPaymentTestService(payments, nil, nil, nil)

	req := CheckoutRequest{
		Amount:        180,
		TransactionID: "tx_1",
		ClassIDs: []interface{}{
			[]interface{}{"c1", []interface{}{"c2"}},
			"c3",
		},
		SelectedClassIDs: []interface{}{"s1", []interface{}{"s2"}},
	}
	res, err := svc.Checkout(context.Background(), studentClaims(), req)
	require.NoError(t, err)

	require.Len(t, payments.checkedOut, 1)
	recorded := payments.checkedOut[0]
	assert.Equal(t, "student@example.com", recorded.StudentEmail)
	assert.Equal(t, pq.StringArray{"c1", "c2", "c3"}, recorded.ClassIDs)
	assert.Equal(t, pq.StringArray{"s1", "s2"}, recorded.SelectedClassIDs)
	assert.Equal(t, int64(2), res.CartItemsRemoved)
}

func TestPaymentServiceCheckoutRequiresIDLists(t *testing.T) {
	svc := newPaymentTestService(nil, nil, nil, nil)

	_, err := svc.Checkout(context.Background(), studentClaims(), CheckoutRequest{Amount: 10, TransactionID: "tx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceConfirmSeats(t *testing.T) {
	classes := &mockEnrollClassRepo{affected: 2}
	svc := newPaymentTestService(nil, classes, nil, nil)

	res, err := svc.ConfirmSeats(context.Background(), []interface{}{"c1", []interface{}{"c2", "c3"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.ClassesUpdated)
	assert.Equal(t, []string{"c1", "c2", "c3"}, classes.incremented)
}

func TestPaymentServiceConfirmSeatsEmptyList(t *testing.T) {
	svc := newPaymentTestService(nil, nil, nil, nil)

	_, err := svc.ConfirmSeats(context.Background(), []interface{}{[]interface{}{}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceEnrolledClassesKeepsDuplicates(t *testing.T) {
	payments := &mockPaymentRepo{classIDLists: [][]string{{"c1", "c2"}, {"c2"}}}
	classes := &mockEnrollClassRepo{classes: []models.Class{{ID: "c1"}, {ID: "c2"}}}
	svc := newPaymentTestService(payments, classes, nil, nil)

	result, err := svc.EnrolledClasses(context.Background(), studentClaims(), "student@example.com")
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, []string{"c1", "c2", "c2"}, classes.lastLookup)
}

func TestPaymentServiceEnrolledClassesForeignEmailForbidden(t *testing.T) {
	svc := newPaymentTestService(nil, nil, nil, nil)

	_, err := svc.EnrolledClasses(context.Background(), studentClaims(), "other@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceHistoryForeignEmailForbidden(t *testing.T) {
	svc := newPaymentTestService(nil, nil, nil, nil)

	_, err := svc.History(context.Background(), studentClaims(), "other@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceReceipt(t *testing.T) {
	payments := &mockPaymentRepo{byID: map[string]*models.Payment{
		"p1": {ID: "p1", StudentEmail: "student@example.com", ClassIDs: pq.StringArray{"c1"}},
	}}
	classes := &mockEnrollClassRepo{classes: []models.Class{{ID: "c1", Name: "Karate"}}}
	receipts := &mockReceipts{doc: []byte("%PDF-1.4")}
	svc := newPaymentTestService(payments, classes, nil, receipts)

	doc, err := svc.Receipt(context.Background(), studentClaims(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), doc)
	assert.Equal(t, []string{"Karate"}, receipts.lastNames)
}

func TestPaymentServiceReceiptForeignPaymentNotFound(t *testing.T) {
	payments := &mockPaymentRepo{byID: map[string]*models.Payment{
		"p1": {ID: "p1", StudentEmail: "other@example.com"},
	}}
	svc := newPaymentTestService(payments, nil, nil, nil)

	_, err := svc.Receipt(context.Background(), studentClaims(), "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
