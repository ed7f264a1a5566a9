package errs

import (
	"errors"
	"fmt"
)

type PingErr struct {
	msg  string
	code int64
	err  error
}

// Error 输出格式：
// [错误码] 错误类型描述 ( => 包含错误详细描述 )
// 解释：(xxx) 表示可选内容
func (pe *PingErr) Error() string {
	details := fmt.Sprintf("[%d] %s", pe.code, pe.msg)
	if pe.err != nil {
		details += fmt.Sprintf(" => %s", pe.err)
	}

	return details
}

func (pe *PingErr) Code() int64 {
	return pe.code
}

func (pe *PingErr) Unwrap() error {
	return pe.err
}

func (pe *PingErr) WithErr(err error) *PingErr {
	pe.err = err
	return pe
}

func GetCode(err error) int64 {
	var pe *PingErr
	if errors.As(err, &pe) {
		return pe.code
	}
	return UnknownErrCode
}

const (
	UnknownErrCode      = 0
	InvalidParamErrCode = 100001
	ReadConfigErrCode   = 100002
	ConnectionErrCode   = 100003
	BindErrCode         = 100004
	AcceptErrCode       = 100005
	ReadSocketErrCode   = 100006
	WriteSocketErrCode  = 100007
	CloseSocketErrCode  = 100008
	DecodeErrCode       = 100009
)

func NewInvalidParamErr() *PingErr {
	return &PingErr{msg: "invalid params", code: InvalidParamErrCode}
}

func NewReadConfigErr() *PingErr {
	return &PingErr{msg: "read config failed", code: ReadConfigErrCode}
}

func NewConnectionErr() *PingErr {
	return &PingErr{msg: "connect to remote failed", code: ConnectionErrCode}
}

func NewBindErr() *PingErr {
	return &PingErr{msg: "bind address failed", code: BindErrCode}
}

func NewAcceptErr() *PingErr {
	return &PingErr{msg: "accept connection failed", code: AcceptErrCode}
}

func NewReadSocketErr() *PingErr {
	return &PingErr{msg: "read socket failed", code: ReadSocketErrCode}
}

func NewWriteSocketErr() *PingErr {
	return &PingErr{msg: "write socket failed", code: WriteSocketErrCode}
}

func NewCloseSocketErr() *PingErr {
	return &PingErr{msg: "close socket failed", code: CloseSocketErrCode}
}

func NewDecodeErr() *PingErr {
	return &PingErr{msg: "payload is not valid utf-8 text", code: DecodeErrCode}
}
