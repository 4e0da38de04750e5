// Package trash 档案删除与恢复（后端软删除，管理员可从回收站恢复）
package trash

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"doctor-registry/internal/domain"
	"doctor-registry/internal/notify"

	"go.uber.org/zap"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
)

// Store 删除/恢复接口（client.Client 实现）
type Store interface {
	DeleteDoctor(ctx context.Context, id int64) error
	RestoreDoctor(ctx context.Context, id int64) error
}

// ChangeFunc 删除或恢复成功后调用，typ 为 notify 事件类型
type ChangeFunc func(typ string, id int64)

// Failure 单条失败记录
type Failure struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// Result 批量恢复结果；单条失败不中断其余恢复
type Result struct {
	Restored []int64   `json:"restored"`
	Failed   []Failure `json:"failed"`
}

// Message 汇总信息
func (r Result) Message() string {
	var parts []string
	if len(r.Failed) > 0 {
		errs := make([]string, len(r.Failed))
		for i, f := range r.Failed {
			errs[i] = fmt.Sprintf("ID %d: %s", f.ID, f.Message)
		}
		parts = append(parts, "Errores durante la restauración: "+strings.Join(errs, "; "))
	}
	if len(r.Restored) > 0 {
		parts = append(parts, fmt.Sprintf("%d doctor(es) restaurado(s) exitosamente.", len(r.Restored)))
	}
	return strings.Join(parts, " ")
}

type Service struct {
	store    Store
	actor    domain.Actor
	onChange []ChangeFunc
	logger   *zap.Logger
}

func NewService(store Store, actor domain.Actor, logger *zap.Logger, onChange ...ChangeFunc) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, actor: actor, onChange: onChange, logger: logger}
}

// Delete 删除一条档案
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid doctor id %d", ErrValidation, id)
	}
	if err := s.store.DeleteDoctor(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Doctor deleted", zap.Int64("doctor_id", id), zap.String("username", s.actor.Username))
	s.changed(notify.EventDoctorDeleted, id)
	return nil
}

// Restore 逐条恢复（仅管理员）；返回的 error 只表示无法开始
func (s *Service) Restore(ctx context.Context, ids []int64) (Result, error) {
	if !s.actor.IsAdmin() {
		return Result{}, fmt.Errorf("%w: only administrators can restore doctors", ErrPermissionDenied)
	}
	ids = uniqueSorted(ids)
	if len(ids) == 0 {
		return Result{}, fmt.Errorf("%w: select at least one doctor", ErrValidation)
	}

	res := Result{Restored: []int64{}, Failed: []Failure{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Message: err.Error()})
			continue
		}
		if err := s.store.RestoreDoctor(ctx, id); err != nil {
			s.logger.Warn("Failed to restore doctor", zap.Int64("doctor_id", id), zap.Error(err))
			res.Failed = append(res.Failed, Failure{ID: id, Message: serverMessage(err)})
			continue
		}
		res.Restored = append(res.Restored, id)
		s.changed(notify.EventDoctorRestored, id)
	}
	s.logger.Info("Doctors restored",
		zap.String("username", s.actor.Username),
		zap.Int("restored", len(res.Restored)),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func (s *Service) changed(typ string, id int64) {
	for _, fn := range s.onChange {
		fn(typ, id)
	}
}

type remoteError interface {
	ServerMessage() string
}

func serverMessage(err error) string {
	var re remoteError
	if errors.As(err, &re) {
		return re.ServerMessage()
	}
	return err.Error()
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
