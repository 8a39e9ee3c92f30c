package adapter

import (
	"errors"
	"fmt"
)

// ErrUnsupported 当前传输方式不支持该操作（websocket 不能上传文件）
var ErrUnsupported = errors.New("operation not supported by this transport")

// TransportError 请求没有到达服务器，或者没有拿到完整的响应
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError 响应不是预期的 JSON
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("invalid json from %s: %v", e.Op, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
