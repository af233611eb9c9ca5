package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"rentaladmin/access"
	"rentaladmin/model"
	paymentrepo "rentaladmin/repository/payment"
	activitysvc "rentaladmin/service/activity"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrNotOwner         ErrCode = "NOT_OWNER"
	ErrBookingNotFound  ErrCode = "BOOKING_NOT_FOUND"
	ErrDuplicatePayment ErrCode = "DUPLICATE_PAYMENT"
	ErrAmountTooLow     ErrCode = "AMOUNT_TOO_LOW"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type duplicateError struct {
	existingID int64
}

func (e duplicateError) Error() string { return string(ErrDuplicatePayment) }
func (e duplicateError) Code() ErrCode { return ErrDuplicatePayment }

// ExistingPaymentID reports which payment already holds the booking, when
// known. Races lost to the unique index return 0.
func ExistingPaymentID(err error) int64 {
	var de duplicateError
	if errors.As(err, &de) {
		return de.existingID
	}
	return 0
}

type amountError struct {
	required float64
}

func (e amountError) Error() string { return string(ErrAmountTooLow) }
func (e amountError) Code() ErrCode { return ErrAmountTooLow }

// RequiredAmount extracts the equipment price the payment must cover.
func RequiredAmount(err error) float64 {
	var ae amountError
	if errors.As(err, &ae) {
		return ae.required
	}
	return 0
}

// CheckAmount is the payment floor rule: a payment may not be smaller than
// the price of the equipment its booking holds.
func CheckAmount(amount, equipmentPrice float64) error {
	if amount < equipmentPrice {
		return amountError{required: equipmentPrice}
	}
	return nil
}

type Input struct {
	Amount      float64
	Method      model.PaymentMethod
	Status      model.PaymentStatus
	PaymentDate time.Time
	BookingID   *int64
}

type Repo interface {
	ListAll(ctx context.Context) ([]model.Payment, error)
	ListOwnedOrLegacy(ctx context.Context, userID int64) ([]model.Payment, error)
	ByID(ctx context.Context, id int64) (*model.Payment, error)

	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Payment, error)
	ClaimOwnership(ctx context.Context, tx *sql.Tx, paymentID, userID int64) (bool, error)
	Update(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	LockBooking(ctx context.Context, tx *sql.Tx, bookingID int64) (*paymentrepo.BookingState, error)
}

type Service interface {
	List(ctx context.Context, p *access.Principal) ([]model.Payment, error)
	Get(ctx context.Context, p *access.Principal, id int64) (*model.Payment, error)
	Create(ctx context.Context, p *access.Principal, in Input) (*model.Payment, error)
	Update(ctx context.Context, p *access.Principal, id int64, in Input) (*model.Payment, error)
	Delete(ctx context.Context, p *access.Principal, id int64) error
}

type service struct {
	db       *sql.DB
	r        Repo
	activity *activitysvc.Logger
}

func New(db *sql.DB, r Repo, activity *activitysvc.Logger) Service {
	return &service{db: db, r: r, activity: activity}
}

func (s *service) List(ctx context.Context, p *access.Principal) ([]model.Payment, error) {
	if p.IsAdmin() {
		return s.r.ListAll(ctx)
	}
	return s.r.ListOwnedOrLegacy(ctx, p.ID)
}

func (s *service) Get(ctx context.Context, p *access.Principal, id int64) (*model.Payment, error) {
	pay, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if err := access.Authorize(p, pay.CreatedBy); err != nil {
		return nil, makeErr(ErrNotOwner)
	}
	return pay, nil
}

// Create records a payment, optionally attached to a booking. The booking
// row is locked so the duplicate and amount checks and the insert commit as
// one unit; the partial unique index on payments(booking_id) is the final
// authority when two creates race.
func (s *service) Create(ctx context.Context, p *access.Principal, in Input) (pay *model.Payment, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if in.BookingID != nil {
		if err = s.checkBooking(ctx, tx, *in.BookingID, in.Amount, 0); err != nil {
			return nil, err
		}
	}

	ownerID := p.ID
	pay = &model.Payment{
		Amount:      in.Amount,
		Method:      in.Method,
		Status:      in.Status,
		PaymentDate: in.PaymentDate,
		BookingID:   in.BookingID,
		CreatedBy:   &ownerID,
	}
	if err = s.r.Insert(ctx, tx, pay); err != nil {
		return nil, mapUniqueErr(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	bookingInfo := "No booking"
	if pay.BookingID != nil {
		bookingInfo = fmt.Sprintf("Booking ID: %d", *pay.BookingID)
	}
	s.activity.Record(ctx, p, "PAYMENT_CREATED", fmt.Sprintf(
		"Payment ID: %d, Amount: $%.2f, Method: %s, Status: %s, %s",
		pay.ID, pay.Amount, pay.Method, pay.Status, bookingInfo))
	return pay, nil
}

func (s *service) Update(ctx context.Context, p *access.Principal, id int64, in Input) (pay *model.Payment, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	orig, err := s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	if err = s.authorizeWrite(ctx, tx, p, orig); err != nil {
		return nil, err
	}

	// the amount floor holds on edit too, against whichever booking the
	// payment ends up attached to
	if in.BookingID != nil {
		if err = s.checkBooking(ctx, tx, *in.BookingID, in.Amount, orig.ID); err != nil {
			return nil, err
		}
	}

	pay = &model.Payment{
		ID:          id,
		Amount:      in.Amount,
		Method:      in.Method,
		Status:      in.Status,
		PaymentDate: in.PaymentDate,
		BookingID:   in.BookingID,
		CreatedBy:   orig.CreatedBy,
	}
	if err = s.r.Update(ctx, tx, pay); err != nil {
		return nil, mapUniqueErr(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, p, "PAYMENT_UPDATED", fmt.Sprintf("Payment ID: %d", pay.ID))
	return pay, nil
}

func (s *service) Delete(ctx context.Context, p *access.Principal, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	pay, err := s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}

	if err = s.authorizeWrite(ctx, tx, p, pay); err != nil {
		return err
	}

	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	s.activity.Record(ctx, p, "PAYMENT_DELETED", fmt.Sprintf(
		"Payment ID: %d, Amount: $%.2f", pay.ID, pay.Amount))
	return nil
}

// checkBooking runs the integrity guards against a locked booking row.
// selfID is the payment being edited (0 on create), so a payment keeping its
// own booking is not a duplicate of itself.
func (s *service) checkBooking(ctx context.Context, tx *sql.Tx, bookingID int64, amount float64, selfID int64) error {
	st, err := s.r.LockBooking(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookingNotFound)
		}
		return err
	}
	if st.ExistingPaymentID != nil && *st.ExistingPaymentID != selfID {
		return duplicateError{existingID: *st.ExistingPaymentID}
	}
	return CheckAmount(amount, st.EquipmentPrice)
}

func (s *service) authorizeWrite(ctx context.Context, tx *sql.Tx, p *access.Principal, pay *model.Payment) error {
	if access.NeedsBackfill(p, pay.CreatedBy) {
		if _, err := s.r.ClaimOwnership(ctx, tx, pay.ID, p.ID); err != nil {
			return err
		}
		owner := p.ID
		pay.CreatedBy = &owner
		return nil
	}
	if err := access.Authorize(p, pay.CreatedBy); err != nil {
		return makeErr(ErrNotOwner)
	}
	return nil
}

// mapUniqueErr turns a lost duplicate-payment race into the same coded error
// the application-level check produces.
func mapUniqueErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return duplicateError{}
	}
	return err
}
