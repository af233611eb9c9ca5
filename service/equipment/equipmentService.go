package equipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentaladmin/access"
	"rentaladmin/model"
	activitysvc "rentaladmin/service/activity"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrInUse      ErrCode = "EQUIPMENT_IN_USE"
	ErrBadPayload ErrCode = "BAD_PAYLOAD"
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

type inUseError struct{ count int64 }

func (e inUseError) Error() string { return string(ErrInUse) }
func (e inUseError) Code() ErrCode { return ErrInUse }

// InUseCount reports how many bookings block the delete.
func InUseCount(err error) int64 {
	var ie inUseError
	if errors.As(err, &ie) {
		return ie.count
	}
	return 0
}

type Input struct {
	EquipmentType string
	Name          string
	Availability  bool
	Price         float64
}

type ImageStore interface {
	UploadImage(ctx context.Context, data []byte, originalFilename string) (string, error)
	RemoveImage(ctx context.Context, key string) error
}

type Repo interface {
	Create(ctx context.Context, e *model.Equipment) error
	List(ctx context.Context) ([]model.Equipment, error)
	ByID(ctx context.Context, id int64) (*model.Equipment, error)
	Update(ctx context.Context, e *model.Equipment) (bool, error)
	SetImageURL(ctx context.Context, id int64, key string) (bool, error)

	CountBookings(ctx context.Context, tx *sql.Tx, equipmentID int64) (int64, error)
	Delete(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
}

type Service interface {
	List(ctx context.Context) ([]model.Equipment, error)
	Get(ctx context.Context, id int64) (*model.Equipment, error)
	Create(ctx context.Context, p *access.Principal, in Input) (*model.Equipment, error)
	Update(ctx context.Context, p *access.Principal, id int64, in Input) (*model.Equipment, error)
	Delete(ctx context.Context, p *access.Principal, id int64) error
	AttachImage(ctx context.Context, p *access.Principal, id int64, data []byte, filename string) (string, error)
}

type service struct {
	db       *sql.DB
	r        Repo
	images   ImageStore
	activity *activitysvc.Logger
}

func New(db *sql.DB, r Repo, images ImageStore, activity *activitysvc.Logger) Service {
	return &service{db: db, r: r, images: images, activity: activity}
}

func (s *service) List(ctx context.Context) ([]model.Equipment, error) {
	return s.r.List(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Equipment, error) {
	e, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return e, nil
}

func (s *service) Create(ctx context.Context, p *access.Principal, in Input) (*model.Equipment, error) {
	if in.Name == "" || in.EquipmentType == "" || in.Price < 0 {
		return nil, makeErr(ErrBadPayload)
	}
	e := &model.Equipment{
		EquipmentType: in.EquipmentType,
		Name:          in.Name,
		Availability:  in.Availability,
		Price:         in.Price,
	}
	if err := s.r.Create(ctx, e); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, p, "EQUIPMENT_CREATED", fmt.Sprintf(
		"Equipment ID: %d, Name: %s, Type: %s, Price: $%.2f", e.ID, e.Name, e.EquipmentType, e.Price))
	return e, nil
}

func (s *service) Update(ctx context.Context, p *access.Principal, id int64, in Input) (*model.Equipment, error) {
	if in.Name == "" || in.EquipmentType == "" || in.Price < 0 {
		return nil, makeErr(ErrBadPayload)
	}
	e := &model.Equipment{
		ID:            id,
		EquipmentType: in.EquipmentType,
		Name:          in.Name,
		Availability:  in.Availability,
		Price:         in.Price,
	}
	ok, err := s.r.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrNotFound)
	}

	s.activity.Record(ctx, p, "EQUIPMENT_UPDATED", fmt.Sprintf(
		"Equipment ID: %d, Name: %s", e.ID, e.Name))
	return e, nil
}

// Delete removes equipment only while no booking references it. The count
// and the delete share a transaction, and the RESTRICT foreign key backs the
// check at the database.
func (s *service) Delete(ctx context.Context, p *access.Principal, id int64) (err error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	n, err := s.r.CountBookings(ctx, tx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return inUseError{count: n}
	}

	ok, err := s.r.Delete(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	if e.ImageURL != nil {
		// row is already gone, ignore a stranded object
		_ = s.images.RemoveImage(ctx, *e.ImageURL)
	}

	s.activity.Record(ctx, p, "EQUIPMENT_DELETED", fmt.Sprintf(
		"Equipment ID: %d, Name: %s", e.ID, e.Name))
	return nil
}

func (s *service) AttachImage(ctx context.Context, p *access.Principal, id int64, data []byte, filename string) (string, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	key, err := s.images.UploadImage(ctx, data, filename)
	if err != nil {
		return "", err
	}
	ok, err := s.r.SetImageURL(ctx, id, key)
	if err != nil || !ok {
		_ = s.images.RemoveImage(ctx, key)
		if err != nil {
			return "", err
		}
		return "", makeErr(ErrNotFound)
	}
	if old := e.ImageURL; old != nil && *old != key {
		_ = s.images.RemoveImage(ctx, *old)
	}

	s.activity.Record(ctx, p, "EQUIPMENT_UPDATED", fmt.Sprintf(
		"Equipment ID: %d, Image: %s", id, key))
	return key, nil
}
