package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

// Mode 编辑器模式
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "viewing"
}

// RecordStore 档案持久化接口（client.Client 实现）
type RecordStore interface {
	UpdateDoctor(ctx context.Context, id int64, payload map[string]any) (*domain.Doctor, error)
}

// CurpChecker CURP 重复检查接口（client.Client 实现）
type CurpChecker interface {
	CheckCURP(ctx context.Context, curp string) (*domain.CurpCheck, error)
}

// CluesLookup CLUES 查询接口（client.Client 实现）
type CluesLookup interface {
	LookupClues(ctx context.Context, code string) (*domain.CluesInfo, error)
}

// Controller 档案编辑控制器
//
// 持有已持久化的档案和编辑中的暂存副本，根据 estatus 决定字段组的可见性与清理。
// 所有状态转换由 mu 串行化；网络调用期间不持有锁。
type Controller struct {
	mu      sync.Mutex
	record  *domain.Doctor
	staged  *domain.Doctor
	mode    Mode
	saving  bool
	cleared map[string]struct{}
	session uint64
	message string

	store      RecordStore
	clues      CluesLookup
	curpCheck  CurpChecker
	actor      domain.Actor
	listeners  []func(id int64)
	logger     *zap.Logger
	hidden     HiddenFieldPolicy
	deriveCURP bool
	now        func() time.Time
}

// Option 控制器选项
type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithHiddenFieldPolicy(p HiddenFieldPolicy) Option {
	return func(c *Controller) { c.hidden = p }
}

// WithCURPDerivation 修改 curp 时自动推导出生日期和性别
func WithCURPDerivation(enabled bool) Option {
	return func(c *Controller) { c.deriveCURP = enabled }
}

// WithChangeListener 保存成功后调用（每次保存每个 listener 调用一次）
func WithChangeListener(fn func(id int64)) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, fn) }
}

func WithCluesLookup(l CluesLookup) Option {
	return func(c *Controller) { c.clues = l }
}

// WithCURPCheck 保存前检查修改后的 CURP 是否已被其他档案使用
func WithCURPCheck(checker CurpChecker) Option {
	return func(c *Controller) { c.curpCheck = checker }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New 创建控制器，初始为 Viewing 模式
func New(record *domain.Doctor, store RecordStore, actor domain.Actor, opts ...Option) *Controller {
	c := &Controller{
		record: record.Clone(),
		store:  store,
		actor:  actor,
		logger: zap.NewNop(),
		hidden: HiddenOmit,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Edit Viewing -> Editing
func (c *Controller) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeEditing {
		return c.fail(newError(ErrInvalidState, "already editing"))
	}
	if c.record == nil {
		return c.fail(newError(ErrInvalidState, "no record loaded"))
	}
	if status := c.record.Status(); status.Locked() && !c.actor.CanOverrideLock() {
		return c.fail(newError(ErrPermissionDenied,
			fmt.Sprintf("records with status %q can only be edited by an administrator", status)))
	}

	staged := c.record.Clone()
	staged.FillEmpty()
	c.staged = staged
	c.cleared = make(map[string]struct{})
	c.mode = ModeEditing
	c.session++
	c.message = ""
	return nil
}

// Cancel Editing -> Viewing，丢弃暂存副本
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkEditable(); err != nil {
		return err
	}
	c.endSession()
	c.message = ""
	return nil
}

// SetField 修改暂存副本中的字段（value 为表单原始字符串）
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkEditable(); err != nil {
		return err
	}

	field, ok := domain.LookupField(name)
	if !ok || !field.Editable() {
		return c.fail(newError(ErrValidation, fmt.Sprintf("field %q is not editable", name)))
	}
	if field.Date && value != "" {
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return c.fail(newError(ErrValidation, fmt.Sprintf("field %q expects a date as YYYY-MM-DD", name)))
		}
	}

	switch {
	case name == "estatus":
		for _, f := range domain.ApplyStatusTransition(c.staged, domain.Status(value)) {
			c.cleared[f] = struct{}{}
		}
	case name == "curp" && c.deriveCURP:
		c.setCURP(value)
	default:
		_ = c.staged.SetValue(name, domain.StringPtr(value))
	}
	return nil
}

func (c *Controller) setCURP(value string) {
	value = strings.ToUpper(value)
	c.staged.CURP = domain.StringPtr(value)

	info, ok := domain.ParseCURP(value, c.now())
	if !ok {
		c.staged.FechaNacimiento = domain.StringPtr("")
		c.staged.Sexo = domain.StringPtr("")
		return
	}
	c.staged.FechaNacimiento = domain.StringPtr(info.BirthDate)
	c.staged.Sexo = domain.StringPtr(info.Sex)
}

// Save 提交暂存副本。成功后用服务端返回的档案整体替换当前档案并回到 Viewing；
// 失败时保持 Editing 和暂存副本不变。
func (c *Controller) Save(ctx context.Context) (*domain.Doctor, error) {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return nil, newError(ErrInvalidState, "a save is already in progress")
	}
	if c.mode != ModeEditing || c.staged == nil {
		err := c.fail(newError(ErrInvalidState, "not editing"))
		c.mu.Unlock()
		return nil, err
	}
	if c.record == nil || c.record.ID == 0 {
		err := c.fail(newError(ErrInvalidState, "record has no identity"))
		c.mu.Unlock()
		return nil, err
	}
	id := c.record.ID
	payload := BuildPayload(c.staged, c.cleared, c.hidden)
	curp := c.changedCURP()
	c.saving = true
	c.mu.Unlock()

	if curp != "" && c.curpCheck != nil {
		if err := c.checkDuplicateCURP(ctx, id, curp); err != nil {
			return nil, err
		}
	}

	updated, err := c.store.UpdateDoctor(ctx, id, payload)

	c.mu.Lock()
	c.saving = false
	if err == nil && updated == nil {
		err = fmt.Errorf("empty response for doctor %d", id)
	}
	if err != nil {
		perr := toPersistenceError(err)
		c.message = perr.Message
		c.mu.Unlock()
		c.logger.Warn("Failed to save doctor",
			zap.Int64("doctor_id", id),
			zap.Int("status_code", perr.StatusCode),
			zap.Error(err),
		)
		return nil, perr
	}

	c.record = updated.Clone()
	c.endSession()
	c.message = ""
	listeners := c.listeners
	c.mu.Unlock()

	c.logger.Info("Doctor saved", zap.Int64("doctor_id", id), zap.Int("fields", len(payload)))
	for _, fn := range listeners {
		fn(id)
	}
	return updated.Clone(), nil
}

// changedCURP 返回本次会话修改过的完整 CURP，未修改或长度不足时返回 ""（调用方持有锁）
func (c *Controller) changedCURP() string {
	var staged, original string
	if c.staged.CURP != nil {
		staged = strings.ToUpper(strings.TrimSpace(*c.staged.CURP))
	}
	if c.record.CURP != nil {
		original = strings.ToUpper(strings.TrimSpace(*c.record.CURP))
	}
	if staged == original || len(staged) != domain.CurpLength {
		return ""
	}
	return staged
}

// checkDuplicateCURP 已被使用时结束本次保存并返回 ValidationError；检查本身失败时不阻止保存
func (c *Controller) checkDuplicateCURP(ctx context.Context, id int64, curp string) error {
	check, err := c.curpCheck.CheckCURP(ctx, curp)
	if err != nil {
		c.logger.Warn("CURP duplicate check failed, saving anyway", zap.Int64("doctor_id", id), zap.Error(err))
		return nil
	}
	if check == nil || !check.Exists {
		return nil
	}

	msg := check.Message
	if msg == "" {
		msg = domain.CurpTakenMessage
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	return c.fail(newError(ErrValidation, msg))
}

// ApplyClues 按 CLUES 编码查询机构并填充暂存副本中的机构字段
func (c *Controller) ApplyClues(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	c.mu.Lock()
	if err := c.checkEditable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.clues == nil {
		err := c.fail(newError(ErrInvalidState, "CLUES lookup is not configured"))
		c.mu.Unlock()
		return err
	}
	if len(code) != domain.CluesLength {
		err := c.fail(newError(ErrValidation, fmt.Sprintf("CLUES must have %d characters", domain.CluesLength)))
		c.mu.Unlock()
		return err
	}
	session := c.session
	c.mu.Unlock()

	info, err := c.clues.LookupClues(ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != session || c.mode != ModeEditing || c.saving {
		c.logger.Debug("Dropping CLUES result for finished session", zap.String("clues", code))
		return newError(ErrInvalidState, "edit session ended before CLUES lookup completed")
	}
	if err != nil {
		if isNotFound(err) {
			return c.fail(newError(ErrValidation, "CLUES no encontrada."))
		}
		return c.fail(toPersistenceError(err))
	}
	if info == nil {
		return c.fail(newError(ErrValidation, "CLUES no encontrada."))
	}
	if info.Full() {
		return c.fail(newError(ErrValidation,
			fmt.Sprintf("La entidad %s ha alcanzado su cupo máximo (%d/%d).", info.Entidad, info.Actual, info.Maximo)))
	}
	if info.Clues == "" {
		info.Clues = code
	}
	info.ApplyTo(c.staged)
	return nil
}

// Record 当前已持久化档案的副本
func (c *Controller) Record() *domain.Doctor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.Clone()
}

// Staged 暂存副本的拷贝；不在编辑中时为 nil
func (c *Controller) Staged() *domain.Doctor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged.Clone()
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Saving 保存请求进行中（界面据此禁用保存按钮）
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// Message 最近一次失败的用户可见信息
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// VisibleGroup 当前状态下显示的字段组（编辑中以暂存副本为准）
func (c *Controller) VisibleGroup() domain.FieldGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.FieldGroupFor(c.current().Status())
}

// VisibleFields 当前应显示的字段（通用字段 + 状态对应字段组）
func (c *Controller) VisibleFields() []domain.FieldSpec {
	c.mu.Lock()
	status := c.current().Status()
	c.mu.Unlock()

	var out []domain.FieldSpec
	for _, f := range domain.EditableFields() {
		if domain.IsVisible(f.Group, status) {
			out = append(out, f)
		}
	}
	return out
}

func (c *Controller) current() *domain.Doctor {
	if c.mode == ModeEditing {
		return c.staged
	}
	return c.record
}

func (c *Controller) checkEditable() error {
	if c.mode != ModeEditing {
		return c.fail(newError(ErrInvalidState, "not editing"))
	}
	if c.saving {
		return newError(ErrInvalidState, "a save is in progress")
	}
	return nil
}

func (c *Controller) endSession() {
	c.staged = nil
	c.cleared = nil
	c.mode = ModeViewing
	c.session++
}

// fail 记录用户可见信息并返回 err（调用方持有锁）
func (c *Controller) fail(err error) error {
	c.message = err.Error()
	return err
}
