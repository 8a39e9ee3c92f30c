package mirai

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrepresentable 表示收到的消息节点没有可以发送回去的形式（语音、商城表情、文件、短视频）。
var ErrUnrepresentable = errors.New("cannot convert to outgoing message")

// RemoteError 是 mirai-api-http 返回的 {code, msg} 错误
type RemoteError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("mirai error %d: %s", e.Code, e.Message)
}

// CheckRemoteError 如果 data 是 code 不为 0 的错误结构则返回 *RemoteError，否则返回 nil。
// 成功的响应也可能带 code: 0，这种情况不算错误。
func CheckRemoteError(data []byte) error {
	var probe struct {
		Code *int   `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil
	}
	if probe.Code == nil || *probe.Code == 0 {
		return nil
	}
	return &RemoteError{Code: *probe.Code, Message: probe.Msg}
}
