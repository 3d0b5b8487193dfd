package onboarding

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"instra/internal/shared/id"
)

// Request is the onboarding aggregate. It tracks an invited person from the
// initial invite through self-registration to the approval decision. The
// nonce is embedded in the signed registration token and compared against
// the stored value on every public access, so rotating it invalidates all
// previously issued links.
type Request struct {
	id                uint
	rid               string
	code              string
	email             string
	name              string
	roleCode          string
	status            Status
	nonce             string
	userPayload       map[string]any
	adminPayload      map[string]any
	invitedBy         *uint
	expiresAt         time.Time
	submittedAt       *time.Time
	tokenUsedAt       *time.Time
	decidedBy         *uint
	decidedAt         *time.Time
	decisionReason    string
	provisionedUserID *uint
	lastError         string
	createdAt         time.Time
	updatedAt         time.Time
}

func NewRequest(email, name, roleCode string, invitedBy *uint, expiresAt time.Time) (*Request, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email format")
	}
	roleCode = strings.ToUpper(strings.TrimSpace(roleCode))
	if roleCode == "" {
		return nil, fmt.Errorf("role code is required")
	}
	if !expiresAt.After(time.Now()) {
		return nil, fmt.Errorf("expiry must be in the future")
	}

	now := time.Now()
	return &Request{
		rid:       uuid.NewString(),
		email:     email,
		name:      name,
		roleCode:  roleCode,
		status:    StatusInvited,
		nonce:     id.MustGenerate(id.NonceLength),
		invitedBy: invitedBy,
		expiresAt: expiresAt,
		createdAt: now,
		updatedAt: now,
	}, nil
}

type RequestState struct {
	ID                uint
	RID               string
	Code              string
	Email             string
	Name              string
	RoleCode          string
	Status            Status
	Nonce             string
	UserPayload       map[string]any
	AdminPayload      map[string]any
	InvitedBy         *uint
	ExpiresAt         time.Time
	SubmittedAt       *time.Time
	TokenUsedAt       *time.Time
	DecidedBy         *uint
	DecidedAt         *time.Time
	DecisionReason    string
	ProvisionedUserID *uint
	LastError         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructRequest(state RequestState) (*Request, error) {
	if state.ID == 0 {
		return nil, fmt.Errorf("request ID cannot be zero")
	}
	if !state.Status.IsValid() {
		return nil, fmt.Errorf("invalid onboarding status: %s", state.Status)
	}
	return &Request{
		id:                state.ID,
		rid:               state.RID,
		code:              state.Code,
		email:             state.Email,
		name:              state.Name,
		roleCode:          state.RoleCode,
		status:            state.Status,
		nonce:             state.Nonce,
		userPayload:       state.UserPayload,
		adminPayload:      state.AdminPayload,
		invitedBy:         state.InvitedBy,
		expiresAt:         state.ExpiresAt,
		submittedAt:       state.SubmittedAt,
		tokenUsedAt:       state.TokenUsedAt,
		decidedBy:         state.DecidedBy,
		decidedAt:         state.DecidedAt,
		decisionReason:    state.DecisionReason,
		provisionedUserID: state.ProvisionedUserID,
		lastError:         state.LastError,
		createdAt:         state.CreatedAt,
		updatedAt:         state.UpdatedAt,
	}, nil
}

func (r *Request) ID() uint                  { return r.id }
func (r *Request) RID() string               { return r.rid }
func (r *Request) Code() string              { return r.code }
func (r *Request) Email() string             { return r.email }
func (r *Request) Name() string              { return r.name }
func (r *Request) RoleCode() string          { return r.roleCode }
func (r *Request) Status() Status            { return r.status }
func (r *Request) Nonce() string             { return r.nonce }
func (r *Request) UserPayload() map[string]any  { return r.userPayload }
func (r *Request) AdminPayload() map[string]any { return r.adminPayload }
func (r *Request) InvitedBy() *uint          { return r.invitedBy }
func (r *Request) ExpiresAt() time.Time      { return r.expiresAt }
func (r *Request) SubmittedAt() *time.Time   { return r.submittedAt }
func (r *Request) TokenUsedAt() *time.Time   { return r.tokenUsedAt }
func (r *Request) DecidedBy() *uint          { return r.decidedBy }
func (r *Request) DecidedAt() *time.Time     { return r.decidedAt }
func (r *Request) DecisionReason() string    { return r.decisionReason }
func (r *Request) ProvisionedUserID() *uint  { return r.provisionedUserID }
func (r *Request) LastError() string         { return r.lastError }
func (r *Request) CreatedAt() time.Time      { return r.createdAt }
func (r *Request) UpdatedAt() time.Time      { return r.updatedAt }

func (r *Request) SetID(reqID uint) error {
	if r.id != 0 {
		return fmt.Errorf("request ID is already set")
	}
	if reqID == 0 {
		return fmt.Errorf("request ID cannot be zero")
	}
	r.id = reqID
	return nil
}

// AssignCode sets the human-facing display code. It is assigned exactly
// once, right after the first save produces the primary key.
func (r *Request) AssignCode(code string) error {
	if r.code != "" {
		return fmt.Errorf("request code is already assigned")
	}
	if code == "" {
		return fmt.Errorf("request code cannot be empty")
	}
	r.code = code
	r.updatedAt = time.Now()
	return nil
}

// ExpiredAt reports whether the invite window has lapsed. Expiry only
// applies while the request still waits on the invitee; once submitted,
// the admin review queue owns its fate.
func (r *Request) ExpiredAt(now time.Time) bool {
	return r.status == StatusInvited && now.After(r.expiresAt)
}

// MatchesNonce compares a token-embedded nonce against the stored one.
func (r *Request) MatchesNonce(nonce string) bool {
	return nonce != "" && r.nonce == nonce
}

// SubmitUserPayload records the invitee's registration form. Legal while
// INVITED or PENDING_APPROVAL; a resubmission before the decision simply
// overwrites the previous payload.
func (r *Request) SubmitUserPayload(payload map[string]any) error {
	if r.status != StatusInvited && r.status != StatusPendingApproval {
		return fmt.Errorf("cannot submit registration in status %s", r.status)
	}
	now := time.Now()
	r.userPayload = payload
	r.submittedAt = &now
	r.tokenUsedAt = &now
	r.status = StatusPendingApproval
	r.updatedAt = now
	return nil
}

// SetAdminPayload stores admin corrections. Allowed in any non-terminal
// state and never changes the status.
func (r *Request) SetAdminPayload(payload map[string]any) error {
	if r.status.IsTerminal() {
		return fmt.Errorf("cannot edit request in terminal status %s", r.status)
	}
	r.adminPayload = payload
	r.updatedAt = time.Now()
	return nil
}

// Approve moves the request to ONBOARDED, recording the decision and the
// identity that provisioning created.
func (r *Request) Approve(decidedBy uint, provisionedUserID uint) error {
	if !r.status.CanTransitionTo(StatusOnboarded) {
		return fmt.Errorf("cannot approve request in status %s", r.status)
	}
	now := time.Now()
	r.status = StatusOnboarded
	r.decidedBy = &decidedBy
	r.decidedAt = &now
	r.provisionedUserID = &provisionedUserID
	r.lastError = ""
	r.updatedAt = now
	return nil
}

// SendBack returns a submitted request to the invitee for correction. The
// nonce is rotated and the invite window reopened, so the old link dies and
// the correction email carries a fresh one.
func (r *Request) SendBack(decidedBy uint, reason string, newExpiry time.Time) error {
	if !r.status.CanTransitionTo(StatusInvited) {
		return fmt.Errorf("cannot send back request in status %s", r.status)
	}
	if reason == "" {
		return fmt.Errorf("send-back reason is required")
	}
	now := time.Now()
	r.status = StatusInvited
	r.decidedBy = &decidedBy
	r.decisionReason = reason
	r.nonce = id.MustGenerate(id.NonceLength)
	r.expiresAt = newExpiry
	r.updatedAt = now
	return nil
}

// Drop terminates the request. Legal from any non-terminal state.
func (r *Request) Drop(decidedBy *uint, reason string) error {
	if !r.status.CanTransitionTo(StatusDropped) {
		return fmt.Errorf("cannot drop request in status %s", r.status)
	}
	now := time.Now()
	r.status = StatusDropped
	r.decidedBy = decidedBy
	r.decidedAt = &now
	r.decisionReason = reason
	r.updatedAt = now
	return nil
}

// MarkProvisioningFailed drops the request and records why provisioning
// blew up, so the failure is visible in the admin queue.
func (r *Request) MarkProvisioningFailed(errMsg string) {
	now := time.Now()
	r.status = StatusDropped
	r.decisionReason = "provisioning failed"
	r.lastError = errMsg
	r.decidedAt = &now
	r.updatedAt = now
}
