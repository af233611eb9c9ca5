package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentaladmin/access"
	"rentaladmin/model"
	activitysvc "rentaladmin/service/activity"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound             ErrCode = "NOT_FOUND"
	ErrNotOwner             ErrCode = "NOT_OWNER"
	ErrEquipmentRequired    ErrCode = "EQUIPMENT_REQUIRED"
	ErrEquipmentNotFound    ErrCode = "EQUIPMENT_NOT_FOUND"
	ErrEquipmentUnavailable ErrCode = "EQUIPMENT_UNAVAILABLE"
	ErrStatusLocked         ErrCode = "STATUS_LOCKED"
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

// ValidateTransition enforces the one-way status machine: once completed, a
// booking can never go back to active.
func ValidateTransition(old, next model.BookingStatus) error {
	if old == model.BookingCompleted && next == model.BookingActive {
		return makeErr(ErrStatusLocked)
	}
	return nil
}

// EquipmentChanged reports whether an edit points the booking at different
// equipment. Only a changed reference re-checks availability; the booking
// already holds its current slot.
// EffectiveStatus resolves an omitted status on edit: the booking keeps
// whatever status it already holds instead of falling back to active, which
// would trip the one-way transition guard on completed bookings.
func EffectiveStatus(current, requested model.BookingStatus) model.BookingStatus {
	if requested == "" {
		return current
	}
	return requested
}

func EquipmentChanged(orig, next *int64) bool {
	if next == nil {
		return false
	}
	return orig == nil || *orig != *next
}

type Input struct {
	EquipmentID   *int64
	CustomerName  string
	CustomerEmail string
	StartDate     time.Time
	EndDate       time.Time
	Status        model.BookingStatus
}

type Repo interface {
	ListAll(ctx context.Context) ([]model.Booking, error)
	ListOwnedOrLegacy(ctx context.Context, userID int64) ([]model.Booking, error)
	ByID(ctx context.Context, id int64) (*model.Booking, error)

	Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Booking, error)
	ClaimOwnership(ctx context.Context, tx *sql.Tx, bookingID, userID int64) (bool, error)
	Update(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	LockEquipment(ctx context.Context, tx *sql.Tx, equipmentID int64) (*model.Equipment, error)
}

type Service interface {
	List(ctx context.Context, p *access.Principal) ([]model.Booking, error)
	Get(ctx context.Context, p *access.Principal, id int64) (*model.Booking, error)
	Create(ctx context.Context, p *access.Principal, in Input) (*model.Booking, error)
	Update(ctx context.Context, p *access.Principal, id int64, in Input) (*model.Booking, error)
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

func (s *service) List(ctx context.Context, p *access.Principal) ([]model.Booking, error) {
	if p.IsAdmin() {
		return s.r.ListAll(ctx)
	}
	// ownership is a query predicate, not a post-filter
	return s.r.ListOwnedOrLegacy(ctx, p.ID)
}

func (s *service) Get(ctx context.Context, p *access.Principal, id int64) (*model.Booking, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if err := access.Authorize(p, b.CreatedBy); err != nil {
		return nil, makeErr(ErrNotOwner)
	}
	return b, nil
}

// Create books equipment for a customer. The equipment row is locked inside
// the transaction so the availability check and the insert are one unit.
func (s *service) Create(ctx context.Context, p *access.Principal, in Input) (b *model.Booking, err error) {
	if in.EquipmentID == nil {
		return nil, makeErr(ErrEquipmentRequired)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	eq, err := s.r.LockEquipment(ctx, tx, *in.EquipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrEquipmentNotFound)
		}
		return nil, err
	}
	if !eq.Availability {
		return nil, makeErr(ErrEquipmentUnavailable)
	}

	status := in.Status
	if status == "" {
		status = model.BookingActive
	}

	ownerID := p.ID
	b = &model.Booking{
		EquipmentID:   in.EquipmentID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        status,
		CreatedBy:     &ownerID,
	}
	if err = s.r.Insert(ctx, tx, b); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, p, "BOOKING_CREATED", fmt.Sprintf(
		"Booking ID: %d, Customer: %s, Dates: %s to %s, Equipment: %s",
		b.ID, b.CustomerName,
		b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"),
		eq.Name,
	))
	return b, nil
}

func (s *service) Update(ctx context.Context, p *access.Principal, id int64, in Input) (b *model.Booking, err error) {
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

	next := EffectiveStatus(orig.Status, in.Status)
	if err = ValidateTransition(orig.Status, next); err != nil {
		return nil, err
	}
	if in.EquipmentID == nil {
		return nil, makeErr(ErrEquipmentRequired)
	}
	if EquipmentChanged(orig.EquipmentID, in.EquipmentID) {
		var eq *model.Equipment
		eq, err = s.r.LockEquipment(ctx, tx, *in.EquipmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, makeErr(ErrEquipmentNotFound)
			}
			return nil, err
		}
		if !eq.Availability {
			return nil, makeErr(ErrEquipmentUnavailable)
		}
	}

	b = &model.Booking{
		ID:            id,
		EquipmentID:   in.EquipmentID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        next,
		CreatedBy:     orig.CreatedBy,
	}
	if err = s.r.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, p, "BOOKING_UPDATED", fmt.Sprintf(
		"Booking ID: %d, Status: %s", b.ID, b.Status))
	return b, nil
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

	b, err := s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}

	if err = s.authorizeWrite(ctx, tx, p, b); err != nil {
		return err
	}

	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	s.activity.Record(ctx, p, "BOOKING_DELETED", fmt.Sprintf(
		"Booking ID: %d, Customer: %s", b.ID, b.CustomerName))
	return nil
}

// authorizeWrite applies the write-side ownership rule while the row lock is
// held: admins pass, unowned rows are claimed by the writer, owned rows must
// match the writer.
func (s *service) authorizeWrite(ctx context.Context, tx *sql.Tx, p *access.Principal, b *model.Booking) error {
	if access.NeedsBackfill(p, b.CreatedBy) {
		if _, err := s.r.ClaimOwnership(ctx, tx, b.ID, p.ID); err != nil {
			return err
		}
		owner := p.ID
		b.CreatedBy = &owner
		return nil
	}
	if err := access.Authorize(p, b.CreatedBy); err != nil {
		return makeErr(ErrNotOwner)
	}
	return nil
}
