package auditlog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrInvalidState     = errors.New("invalid state")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
	ErrCancelled        = errors.New("purge cancelled")
)

const maxPhraseAttempts = 3

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// State 批量删除流程状态
type State int

const (
	StateIdle State = iota
	StateSelected
	StateAwaitingPhrase
	StateAwaitingPIN
)

func (s State) String() string {
	switch s {
	case StateSelected:
		return "selected"
	case StateAwaitingPhrase:
		return "awaiting_phrase"
	case StateAwaitingPIN:
		return "awaiting_pin"
	}
	return "idle"
}

// Deleter 审计日志批量删除接口（client.Client 实现）
type Deleter interface {
	DeleteAuditLogs(ctx context.Context, ids []int64, pin string) error
}

type remoteError interface {
	ServerMessage() string
}

// Purge 审计日志批量删除的双重确认流程：
// Idle -> Selected -> AwaitingPhrase -> AwaitingPIN -> Idle
type Purge struct {
	mu       sync.Mutex
	state    State
	selected map[int64]struct{}
	attempts int
	busy     bool
	message  string

	deleter Deleter
	actor   domain.Actor
	phrase  string
	logger  *zap.Logger
}

func NewPurge(deleter Deleter, actor domain.Actor, phrase string, logger *zap.Logger) *Purge {
	return &Purge{
		selected: make(map[int64]struct{}),
		deleter:  deleter,
		actor:    actor,
		phrase:   phrase,
		logger:   logger,
	}
}

// Select 选中日志（可多次调用累加）
func (p *Purge) Select(ids ...int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.actor.IsAdmin() {
		return p.fail(fmt.Errorf("%w: only administrators can delete audit logs", ErrPermissionDenied))
	}
	if p.state != StateIdle && p.state != StateSelected {
		return p.fail(fmt.Errorf("%w: selection is locked while confirming", ErrInvalidState))
	}
	for _, id := range ids {
		p.selected[id] = struct{}{}
	}
	if len(p.selected) > 0 {
		p.state = StateSelected
	}
	return nil
}

// Deselect 取消选中；选择为空时回到 Idle
func (p *Purge) Deselect(ids ...int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle && p.state != StateSelected {
		return p.fail(fmt.Errorf("%w: selection is locked while confirming", ErrInvalidState))
	}
	for _, id := range ids {
		delete(p.selected, id)
	}
	if len(p.selected) == 0 {
		p.state = StateIdle
	}
	return nil
}

// Begin Selected -> AwaitingPhrase
func (p *Purge) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateSelected || len(p.selected) == 0 {
		return p.fail(fmt.Errorf("%w: select at least one log first", ErrInvalidState))
	}
	p.state = StateAwaitingPhrase
	p.attempts = 0
	p.message = ""
	return nil
}

// ConfirmPhrase 确认短语必须完全一致；连续三次错误取消流程
func (p *Purge) ConfirmPhrase(phrase string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateAwaitingPhrase {
		return p.fail(fmt.Errorf("%w: not awaiting confirmation phrase", ErrInvalidState))
	}
	if phrase != p.phrase {
		p.attempts++
		if p.attempts >= maxPhraseAttempts {
			p.reset()
			return p.fail(fmt.Errorf("%w: too many wrong confirmation phrases", ErrCancelled))
		}
		return p.fail(fmt.Errorf("%w: confirmation phrase does not match (%d/%d)", ErrValidation, p.attempts, maxPhraseAttempts))
	}
	p.state = StateAwaitingPIN
	p.message = ""
	return nil
}

// SubmitPIN 提交 PIN 并执行删除，成功后回到 Idle 并返回删除条数
func (p *Purge) SubmitPIN(ctx context.Context, pin string) (int, error) {
	p.mu.Lock()
	if p.state != StateAwaitingPIN || p.busy {
		err := p.fail(fmt.Errorf("%w: not awaiting PIN", ErrInvalidState))
		p.mu.Unlock()
		return 0, err
	}
	if !pinPattern.MatchString(pin) {
		err := p.fail(fmt.Errorf("%w: PIN must be 4 to 8 digits", ErrValidation))
		p.mu.Unlock()
		return 0, err
	}
	ids := p.selectedIDs()
	p.busy = true
	p.mu.Unlock()

	err := p.deleter.DeleteAuditLogs(ctx, ids, pin)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	if err != nil {
		var re remoteError
		if errors.As(err, &re) {
			p.message = re.ServerMessage()
		} else {
			p.message = err.Error()
		}
		p.logger.Warn("Audit log purge failed", zap.Int("count", len(ids)), zap.Error(err))
		return 0, err
	}

	p.logger.Info("Audit logs purged",
		zap.String("username", p.actor.Username),
		zap.Int("count", len(ids)),
	)
	p.reset()
	return len(ids), nil
}

// Cancel 任意状态回到 Idle
func (p *Purge) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return
	}
	p.reset()
}

func (p *Purge) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Selected 已选中的日志 ID（升序）
func (p *Purge) Selected() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedIDs()
}

func (p *Purge) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

func (p *Purge) selectedIDs() []int64 {
	ids := make([]int64, 0, len(p.selected))
	for id := range p.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (p *Purge) reset() {
	p.state = StateIdle
	p.selected = make(map[int64]struct{})
	p.attempts = 0
}

func (p *Purge) fail(err error) error {
	p.message = err.Error()
	return err
}
