package payment

import (
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestCheckAmount(t *testing.T) {
	require.NoError(t, CheckAmount(100, 100))
	require.NoError(t, CheckAmount(150, 100))
	require.NoError(t, CheckAmount(0, 0))

	err := CheckAmount(99.99, 100)
	require.Error(t, err)
	require.Equal(t, ErrAmountTooLow, Code(err))
	require.Equal(t, 100.0, RequiredAmount(err))
}

func TestExistingPaymentID(t *testing.T) {
	err := error(duplicateError{existingID: 7})
	require.Equal(t, ErrDuplicatePayment, Code(err))
	require.Equal(t, int64(7), ExistingPaymentID(err))

	// a race lost to the unique index carries no id
	require.Equal(t, int64(0), ExistingPaymentID(duplicateError{}))
	require.Equal(t, int64(0), ExistingPaymentID(makeErr(ErrNotFound)))
}

func TestMapUniqueErr(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "payments_booking_id_key",
	}
	require.Equal(t, ErrDuplicatePayment, Code(mapUniqueErr(pgErr)))

	other := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	require.Equal(t, ErrCode(""), Code(mapUniqueErr(other)))
}
