package consts

const (
	B = 1 << (iota * 10)
	KB
	MB
)

const HelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .VisibleFlags}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}{{end}}{{if .Version}}
VERSION:
   {{.Version}}
   {{end}}
`

const (
	Version = "0.0.1.261019_alpha"

	DefaultHost    = "127.0.0.1"
	DefaultPort    = 10001
	DefaultBacklog = 3

	// ReadBufferSize 单次读取的上限，消息远小于该值，不做多次读取拼装
	ReadBufferSize = 4 * KB
)

const (
	RoleInitiator = "initiator"
	RoleResponder = "responder"
)
