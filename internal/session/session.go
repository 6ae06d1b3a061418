package session

import (
	"time"

	"TR_telegram_taskbot/internal/model"

	"github.com/google/uuid"
)

// State is the wizard the chat is currently inside, if any. Each concrete
// state carries only the fields valid for that wizard, so a session cannot
// hold a half-built task draft and a profile step at the same time.
type State interface {
	isState()
}

type ProfileStep int

const (
	ProfileStepTelegram ProfileStep = iota
	ProfileStepTwitter
	ProfileStepWallet
)

type ProfileState struct {
	Step ProfileStep
}

type TaskCreateStep int

const (
	TaskCreateStepTitle TaskCreateStep = iota
	TaskCreateStepDescription
	TaskCreateStepLink
	TaskCreateStepReward
)

type TaskCreateState struct {
	Step  TaskCreateStep
	Draft model.TaskDraft
}

type TaskEditState struct {
	TaskID uuid.UUID
}

type SettingState struct {
	Key string
}

type BroadcastState struct{}

type VerificationStep int

// VerificationStepMembership is deliberately the zero value: a verification
// state that was never explicitly routed into the manual-proof flow must stay
// inert to typed text and photos.
const (
	VerificationStepMembership VerificationStep = iota
	VerificationStepTwitterHandle
	VerificationStepScreenshot
)

// VerificationState tracks an in-flight task proof: either a pending telegram
// membership check or the handle-then-screenshot manual flow.
type VerificationState struct {
	TaskID       uuid.UUID
	TargetChat   string
	Step         VerificationStep
	TwitterProof string
}

func (ProfileState) isState()      {}
func (TaskCreateState) isState()   {}
func (TaskEditState) isState()     {}
func (SettingState) isState()      {}
func (BroadcastState) isState()    {}
func (VerificationState) isState() {}

// Session is the transient per-chat state. Created with defaults on first
// contact, cleared piecewise as wizards finish, evicted after an hour idle.
type Session struct {
	ChatID int64

	IsAdmin          bool
	AwaitingPassword bool

	CaptchaAnswer string
	CaptchaSolved bool

	Verified map[string]bool

	ReferralID *int64

	State State

	LastActivity time.Time
}

func (s *Session) AllVerified(required []string) bool {
	for _, name := range required {
		if !s.Verified[name] {
			return false
		}
	}
	return true
}

func (s *Session) ClearState() {
	s.State = nil
}
