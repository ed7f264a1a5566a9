package message

import (
	"unicode/utf8"

	"github.com/Trinoooo/pingpong/errs"
)

// Message 固定字面量，ASCII编码，无长度前缀也无分隔符
type Message string

const (
	Ping Message = "ping"
	Pong Message = "pong"
)

func (m Message) Bytes() []byte {
	return []byte(m)
}

func (m Message) String() string {
	return string(m)
}

// Decode 将收到的字节按utf-8解码为文本
func Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errs.NewDecodeErr()
	}
	return string(data), nil
}

// Validate reports whether data is exactly the expected literal.
// Decode failures, empty reads, partial and concatenated messages are all just "no match".
func Validate(expected Message, data []byte) bool {
	text, err := Decode(data)
	if err != nil {
		return false
	}
	return text == string(expected)
}

func IsPing(data []byte) bool {
	return Validate(Ping, data)
}

func IsPong(data []byte) bool {
	return Validate(Pong, data)
}
