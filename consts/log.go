package consts

const (
	LogFieldRole       = "role"
	LogFieldExchangeId = "exchange_id"
	LogFieldAddr       = "addr"
	LogFieldRemoteAddr = "remote_addr"
	LogFieldPayload    = "payload"
	LogFieldState      = "state"
	LogFieldParams     = "params"
	LogFieldValue      = "value"
)
