package onboarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvitedRequest(t *testing.T) *Request {
	t.Helper()
	inviter := uint(7)
	r, err := NewRequest("jane.doe@example.com", "Jane Doe", "student", &inviter, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	return r
}

func pendingRequest(t *testing.T) *Request {
	t.Helper()
	r := newInvitedRequest(t)
	require.NoError(t, r.SubmitUserPayload(map[string]any{"first_name": "Jane"}))
	return r
}

func TestNewRequest(t *testing.T) {
	t.Run("normalizes email and role code", func(t *testing.T) {
		r, err := NewRequest("  Jane.Doe@Example.COM ", "Jane", "student", nil, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", r.Email())
		assert.Equal(t, "STUDENT", r.RoleCode())
		assert.Equal(t, StatusInvited, r.Status())
		assert.NotEmpty(t, r.RID())
		assert.NotEmpty(t, r.Nonce())
		assert.Empty(t, r.Code())
	})

	t.Run("rejects missing email", func(t *testing.T) {
		_, err := NewRequest("", "Jane", "STUDENT", nil, time.Now().Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewRequest("not-an-email", "Jane", "STUDENT", nil, time.Now().Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("rejects missing role code", func(t *testing.T) {
		_, err := NewRequest("jane@example.com", "Jane", "", nil, time.Now().Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("rejects past expiry", func(t *testing.T) {
		_, err := NewRequest("jane@example.com", "Jane", "STUDENT", nil, time.Now().Add(-time.Minute))
		assert.Error(t, err)
	})
}

func TestRequestAssignCode(t *testing.T) {
	r := newInvitedRequest(t)
	require.NoError(t, r.AssignCode("ONB00042"))
	assert.Equal(t, "ONB00042", r.Code())

	err := r.AssignCode("ONB00043")
	assert.Error(t, err, "code must be assigned only once")
	assert.Equal(t, "ONB00042", r.Code())
}

func TestRequestExpiry(t *testing.T) {
	r := newInvitedRequest(t)
	assert.False(t, r.ExpiredAt(time.Now()))
	assert.True(t, r.ExpiredAt(time.Now().Add(72*time.Hour)))

	t.Run("submitted requests never expire", func(t *testing.T) {
		p := pendingRequest(t)
		assert.False(t, p.ExpiredAt(time.Now().Add(1000*time.Hour)))
	})
}

func TestRequestMatchesNonce(t *testing.T) {
	r := newInvitedRequest(t)
	assert.True(t, r.MatchesNonce(r.Nonce()))
	assert.False(t, r.MatchesNonce("tampered"))
	assert.False(t, r.MatchesNonce(""))
}

func TestRequestSubmitUserPayload(t *testing.T) {
	t.Run("invited to pending approval", func(t *testing.T) {
		r := newInvitedRequest(t)
		err := r.SubmitUserPayload(map[string]any{"first_name": "Jane"})
		require.NoError(t, err)
		assert.Equal(t, StatusPendingApproval, r.Status())
		assert.NotNil(t, r.SubmittedAt())
		assert.NotNil(t, r.TokenUsedAt())
	})

	t.Run("resubmission overwrites payload", func(t *testing.T) {
		r := pendingRequest(t)
		err := r.SubmitUserPayload(map[string]any{"first_name": "Janet"})
		require.NoError(t, err)
		assert.Equal(t, StatusPendingApproval, r.Status())
		assert.Equal(t, "Janet", r.UserPayload()["first_name"])
	})

	t.Run("rejected in terminal states", func(t *testing.T) {
		r := pendingRequest(t)
		require.NoError(t, r.Approve(1, 99))
		assert.Error(t, r.SubmitUserPayload(map[string]any{}))

		d := newInvitedRequest(t)
		require.NoError(t, d.Drop(nil, "expired"))
		assert.Error(t, d.SubmitUserPayload(map[string]any{}))
	})
}

func TestRequestSetAdminPayload(t *testing.T) {
	t.Run("does not change status", func(t *testing.T) {
		r := newInvitedRequest(t)
		require.NoError(t, r.SetAdminPayload(map[string]any{"profile.batch": "B-12"}))
		assert.Equal(t, StatusInvited, r.Status())

		p := pendingRequest(t)
		require.NoError(t, p.SetAdminPayload(map[string]any{"profile.batch": "B-12"}))
		assert.Equal(t, StatusPendingApproval, p.Status())
	})

	t.Run("rejected once terminal", func(t *testing.T) {
		r := pendingRequest(t)
		require.NoError(t, r.Approve(1, 99))
		assert.Error(t, r.SetAdminPayload(map[string]any{}))
	})
}

func TestRequestApprove(t *testing.T) {
	t.Run("only from pending approval", func(t *testing.T) {
		r := newInvitedRequest(t)
		assert.Error(t, r.Approve(1, 99))

		p := pendingRequest(t)
		require.NoError(t, p.Approve(1, 99))
		assert.Equal(t, StatusOnboarded, p.Status())
		require.NotNil(t, p.ProvisionedUserID())
		assert.Equal(t, uint(99), *p.ProvisionedUserID())
		require.NotNil(t, p.DecidedBy())
		assert.Equal(t, uint(1), *p.DecidedBy())
		assert.NotNil(t, p.DecidedAt())
	})

	t.Run("terminal state is immutable", func(t *testing.T) {
		p := pendingRequest(t)
		require.NoError(t, p.Approve(1, 99))
		assert.Error(t, p.Approve(2, 100))
		assert.Error(t, p.Drop(nil, "late"))
	})
}

func TestRequestSendBack(t *testing.T) {
	t.Run("rotates nonce and reopens window", func(t *testing.T) {
		p := pendingRequest(t)
		oldNonce := p.Nonce()
		newExpiry := time.Now().Add(48 * time.Hour)
		require.NoError(t, p.SendBack(3, "missing date of birth", newExpiry))
		assert.Equal(t, StatusInvited, p.Status())
		assert.NotEqual(t, oldNonce, p.Nonce())
		assert.Equal(t, "missing date of birth", p.DecisionReason())
		assert.WithinDuration(t, newExpiry, p.ExpiresAt(), time.Second)
	})

	t.Run("requires a reason", func(t *testing.T) {
		p := pendingRequest(t)
		assert.Error(t, p.SendBack(3, "", time.Now().Add(time.Hour)))
	})

	t.Run("only from pending approval", func(t *testing.T) {
		r := newInvitedRequest(t)
		assert.Error(t, r.SendBack(3, "reason", time.Now().Add(time.Hour)))
	})
}

func TestRequestDrop(t *testing.T) {
	t.Run("from invited", func(t *testing.T) {
		r := newInvitedRequest(t)
		admin := uint(5)
		require.NoError(t, r.Drop(&admin, "candidate declined"))
		assert.Equal(t, StatusDropped, r.Status())
		assert.Equal(t, "candidate declined", r.DecisionReason())
	})

	t.Run("from pending approval", func(t *testing.T) {
		p := pendingRequest(t)
		require.NoError(t, p.Drop(nil, "duplicate"))
		assert.Equal(t, StatusDropped, p.Status())
	})

	t.Run("not from terminal", func(t *testing.T) {
		p := pendingRequest(t)
		require.NoError(t, p.Approve(1, 99))
		assert.Error(t, p.Drop(nil, "too late"))
	})
}

func TestRequestMarkProvisioningFailed(t *testing.T) {
	p := pendingRequest(t)
	p.MarkProvisioningFailed("email already registered")
	assert.Equal(t, StatusDropped, p.Status())
	assert.Equal(t, "email already registered", p.LastError())
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusInvited, StatusPendingApproval, true},
		{StatusInvited, StatusDropped, true},
		{StatusInvited, StatusOnboarded, false},
		{StatusPendingApproval, StatusOnboarded, true},
		{StatusPendingApproval, StatusDropped, true},
		{StatusPendingApproval, StatusInvited, true},
		{StatusOnboarded, StatusDropped, false},
		{StatusDropped, StatusInvited, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
