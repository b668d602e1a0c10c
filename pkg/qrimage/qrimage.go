package qrimage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Oomaryaser/QREventScanner/config"
)

// Client 外部二维码图片生成服务的客户端
// 图片渲染完全委托给外部服务，这里只负责拼请求、取回 PNG 字节
type Client struct {
	httpClient *http.Client
	endpoint   string
	size       int
	logger     *zap.Logger
}

// NewClient 创建客户端
func NewClient(cfg *config.QRImageConfig, logger *zap.Logger) *Client {
	size := cfg.Size
	if size <= 0 {
		size = 200
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		size:       size,
		logger:     logger,
	}
}

// Generate 为给定载荷生成二维码 PNG
func (c *Client) Generate(ctx context.Context, data string) ([]byte, error) {
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", c.size, c.size))
	q.Set("data", data)
	q.Set("format", "png")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("构造二维码请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("请求二维码服务失败",
			zap.String("endpoint", c.endpoint), zap.Error(err))
		return nil, fmt.Errorf("请求二维码服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("二维码服务返回异常状态",
			zap.String("endpoint", c.endpoint), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("二维码服务返回异常状态: %d", resp.StatusCode)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取二维码图片失败: %w", err)
	}

	return img, nil
}
