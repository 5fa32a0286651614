package shift

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newOpenShift(t *testing.T) *Shift {
	t.Helper()
	s, err := NewShift(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromFloat(200), baseTime)
	require.NoError(t, err)
	return s
}

func TestNewShift(t *testing.T) {
	t.Run("creates open shift with rounded opening balance", func(t *testing.T) {
		s, err := NewShift(uuid.New(), uuid.New(), uuid.New(), decimal.RequireFromString("200.005"), baseTime)
		require.NoError(t, err)

		assert.True(t, s.OpeningBalance.Equal(decimal.RequireFromString("200.01")))
		assert.False(t, s.IsClosed)
		assert.Nil(t, s.ClosedAt)
		assert.Equal(t, baseTime, s.OpenedAt)
		assert.Equal(t, baseTime, s.LastActivityAt)
		assert.Equal(t, 1, s.Version)
		require.Len(t, s.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeShiftOpened, s.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects negative opening balance", func(t *testing.T) {
		_, err := NewShift(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(-1), baseTime)
		assert.ErrorIs(t, err, ErrInvalidOpeningBalance)
	})

	t.Run("rejects missing identity", func(t *testing.T) {
		_, err := NewShift(uuid.Nil, uuid.New(), uuid.New(), decimal.Zero, baseTime)
		assert.Error(t, err)
	})
}

func TestShift_Close(t *testing.T) {
	t.Run("sets balances and difference against expected", func(t *testing.T) {
		s := newOpenShift(t)
		closedAt := baseTime.Add(8 * time.Hour)
		totals := Totals{Cash: decimal.NewFromInt(300), Card: decimal.NewFromInt(120), Orders: decimal.NewFromInt(420)}

		err := s.Close(decimal.NewFromInt(490), decimal.NewFromInt(500), totals, "  short by ten ", closedAt)
		require.NoError(t, err)

		assert.True(t, s.IsClosed)
		require.NotNil(t, s.ClosedAt)
		assert.Equal(t, closedAt, *s.ClosedAt)
		assert.True(t, s.ClosingBalance.Equal(decimal.NewFromInt(490)))
		assert.True(t, s.ExpectedBalance.Equal(decimal.NewFromInt(500)))
		assert.True(t, s.Difference.Equal(decimal.NewFromInt(-10)))
		assert.True(t, s.TotalCash.Equal(decimal.NewFromInt(300)))
		assert.True(t, s.TotalCard.Equal(decimal.NewFromInt(120)))
		assert.True(t, s.TotalOrders.Equal(decimal.NewFromInt(420)))
		assert.Equal(t, "short by ten", s.Notes)
		assert.Equal(t, 2, s.Version)
		assert.False(t, s.IsForceClosed)
	})

	t.Run("rejects closing twice", func(t *testing.T) {
		s := newOpenShift(t)
		require.NoError(t, s.Close(decimal.NewFromInt(200), decimal.NewFromInt(200), Totals{}, "", baseTime.Add(time.Hour)))

		err := s.Close(decimal.NewFromInt(200), decimal.NewFromInt(200), Totals{}, "", baseTime.Add(2*time.Hour))
		assert.ErrorIs(t, err, ErrShiftAlreadyClosed)
		assert.Equal(t, 2, s.Version)
	})

	t.Run("rejects negative closing balance", func(t *testing.T) {
		s := newOpenShift(t)
		err := s.Close(decimal.NewFromInt(-5), decimal.Zero, Totals{}, "", baseTime)
		assert.ErrorIs(t, err, ErrInvalidClosingBalance)
		assert.False(t, s.IsClosed)
	})
}

func TestShift_ForceClose(t *testing.T) {
	t.Run("requires a reason", func(t *testing.T) {
		s := newOpenShift(t)
		err := s.ForceClose(ForceCloseParams{Reason: "   "}, baseTime)
		assert.ErrorIs(t, err, ErrForceCloseReasonRequired)
		assert.False(t, s.IsClosed)
		assert.Equal(t, 1, s.Version)
	})

	t.Run("defaults closing balance to opening plus cash", func(t *testing.T) {
		s := newOpenShift(t)
		actor := uuid.New()
		err := s.ForceClose(ForceCloseParams{
			Reason:          "drawer abandoned",
			ActorID:         &actor,
			ActorName:       "Manager",
			ExpectedBalance: decimal.NewFromInt(450),
			Totals:          Totals{Cash: decimal.NewFromInt(250)},
		}, baseTime.Add(3*time.Hour))
		require.NoError(t, err)

		assert.True(t, s.IsClosed)
		assert.True(t, s.IsForceClosed)
		assert.True(t, s.ClosingBalance.Equal(decimal.NewFromInt(450)))
		assert.True(t, s.Difference.IsZero())
		assert.Equal(t, &actor, s.ForceClosedByUserID)
		assert.Equal(t, "Manager", s.ForceClosedByUserName)
		assert.Equal(t, "drawer abandoned", s.ForceCloseReason)
		assert.False(t, s.IsSystemClosed())
	})

	t.Run("uses counted balance when supplied", func(t *testing.T) {
		s := newOpenShift(t)
		counted := decimal.NewFromInt(180)
		err := s.ForceClose(ForceCloseParams{
			Reason:          "audit",
			ActualBalance:   &counted,
			ExpectedBalance: decimal.NewFromInt(200),
		}, baseTime)
		require.NoError(t, err)
		assert.True(t, s.ClosingBalance.Equal(counted))
		assert.True(t, s.Difference.Equal(decimal.NewFromInt(-20)))
	})

	t.Run("nil actor is recorded as system", func(t *testing.T) {
		s := newOpenShift(t)
		require.NoError(t, s.ForceClose(ForceCloseParams{Reason: "timeout"}, baseTime))
		assert.Nil(t, s.ForceClosedByUserID)
		assert.Equal(t, SystemActorName, s.ForceClosedByUserName)
		assert.True(t, s.IsSystemClosed())
	})

	t.Run("rejects already force-closed before already closed", func(t *testing.T) {
		s := newOpenShift(t)
		require.NoError(t, s.ForceClose(ForceCloseParams{Reason: "timeout"}, baseTime))
		err := s.ForceClose(ForceCloseParams{Reason: "again"}, baseTime)
		assert.ErrorIs(t, err, ErrShiftAlreadyForceClosed)
	})

	t.Run("rejects normally closed shift", func(t *testing.T) {
		s := newOpenShift(t)
		require.NoError(t, s.Close(decimal.NewFromInt(200), decimal.NewFromInt(200), Totals{}, "", baseTime))
		err := s.ForceClose(ForceCloseParams{Reason: "late"}, baseTime)
		assert.ErrorIs(t, err, ErrShiftAlreadyClosed)
	})
}

func TestShift_Handover(t *testing.T) {
	t.Run("reassigns custody without closing", func(t *testing.T) {
		s := newOpenShift(t)
		from := s.UserID
		to := uuid.New()
		at := baseTime.Add(4 * time.Hour)

		err := s.Handover(from, to, decimal.NewFromInt(350), " evening crew ", at)
		require.NoError(t, err)

		assert.Equal(t, to, s.UserID)
		assert.True(t, s.IsHandedOver)
		assert.False(t, s.IsClosed)
		require.NotNil(t, s.HandedOverFromUserID)
		assert.Equal(t, from, *s.HandedOverFromUserID)
		assert.Equal(t, &to, s.HandedOverToUserID)
		assert.True(t, s.HandoverBalance.Equal(decimal.NewFromInt(350)))
		assert.Equal(t, "evening crew", s.HandoverNotes)
		assert.Equal(t, at, s.LastActivityAt)
		assert.Equal(t, 2, s.Version)
	})

	tests := []struct {
		name    string
		prepare func(s *Shift) (from, to uuid.UUID)
		wantErr error
	}{
		{
			name:    "target required",
			prepare: func(s *Shift) (uuid.UUID, uuid.UUID) { return s.UserID, uuid.Nil },
			wantErr: ErrHandoverUserRequired,
		},
		{
			name:    "same user",
			prepare: func(s *Shift) (uuid.UUID, uuid.UUID) { return s.UserID, s.UserID },
			wantErr: ErrHandoverToSameUser,
		},
		{
			name: "closed shift",
			prepare: func(s *Shift) (uuid.UUID, uuid.UUID) {
				_ = s.Close(decimal.Zero, decimal.Zero, Totals{}, "", baseTime)
				return s.UserID, uuid.New()
			},
			wantErr: ErrCannotHandoverClosed,
		},
		{
			name: "already handed over",
			prepare: func(s *Shift) (uuid.UUID, uuid.UUID) {
				_ = s.Handover(s.UserID, uuid.New(), decimal.Zero, "", baseTime)
				return s.UserID, uuid.New()
			},
			wantErr: ErrShiftAlreadyHandedOver,
		},
		{
			name:    "caller is not the custodian",
			prepare: func(s *Shift) (uuid.UUID, uuid.UUID) { return uuid.New(), uuid.New() },
			wantErr: ErrHandoverNotCustodian,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newOpenShift(t)
			from, to := tt.prepare(s)
			custodian := s.UserID
			err := s.Handover(from, to, decimal.Zero, "", baseTime)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr != ErrShiftAlreadyHandedOver {
				assert.Equal(t, custodian, s.UserID)
				assert.False(t, s.IsHandedOver)
			}
		})
	}
}

func TestShift_TouchActivity(t *testing.T) {
	s := newOpenShift(t)
	at := baseTime.Add(time.Hour)

	assert.True(t, s.TouchActivity(at))
	assert.Equal(t, at, s.LastActivityAt)
	assert.Equal(t, 2, s.Version)

	require.NoError(t, s.Close(decimal.Zero, decimal.Zero, Totals{}, "", at))
	assert.False(t, s.TouchActivity(at.Add(time.Hour)))
	assert.Equal(t, at, s.LastActivityAt)
	assert.Equal(t, 3, s.Version)
}

func TestShift_WarningLevel(t *testing.T) {
	th := DefaultThresholds()
	s := newOpenShift(t)

	assert.Equal(t, WarningLevelNone, s.WarningLevel(baseTime.Add(11*time.Hour+59*time.Minute), th))
	assert.Equal(t, WarningLevelWarning, s.WarningLevel(baseTime.Add(12*time.Hour), th))
	assert.Equal(t, WarningLevelWarning, s.WarningLevel(baseTime.Add(13*time.Hour), th))
	assert.Equal(t, WarningLevelCritical, s.WarningLevel(baseTime.Add(24*time.Hour), th))
	assert.Equal(t, 13.5, s.HoursOpen(baseTime.Add(13*time.Hour+30*time.Minute)))

	require.NoError(t, s.Close(decimal.Zero, decimal.Zero, Totals{}, "", baseTime.Add(30*time.Hour)))
	assert.Equal(t, WarningLevelNone, s.WarningLevel(baseTime.Add(40*time.Hour), th))
}
