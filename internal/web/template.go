package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/hub-io/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Hub IO</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Hub IO</h1>

<h2>Button</h2>
<table>
<tr><th>State</th><td class="{{if eq (stateOrUnknown (printf "%s" .Button)) "PRESSED"}}pressed{{else if eq (stateOrUnknown (printf "%s" .Button)) "RELEASED"}}released{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Button)}}</td></tr>
<tr><th>Time in state</th><td>{{.TimeInStateMs}}ms</td></tr>
<tr><th>Pin</th><td>{{.Config.Pin}} on {{.Config.Chip}}{{if .Config.ActiveLow}} (active low){{end}}</td></tr>
<tr><th>Mode</th><td>{{if .Config.EdgeDriven}}edge-driven{{else}}polled{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Wifi}}<tr><th>WiFi</th><td>{{.Wifi.Status}}{{if .Wifi.SSID}} — {{.Wifi.SSID}}{{end}}</td></tr>
<tr><th>IP</th><td>{{.Wifi.IP}}</td></tr>{{end}}
</table>

<h2>Gesture Counts</h2>
<table>
<tr><th>Down</th><td>{{.Counts.Down}}</td></tr>
<tr><th>Up</th><td>{{.Counts.Up}}</td></tr>
<tr><th>Press</th><td>{{.Counts.Press}}</td></tr>
<tr><th>Double press</th><td>{{.Counts.DoublePress}}</td></tr>
<tr><th>Long press</th><td>{{.Counts.LongPress}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Double press</th><td>{{.Config.DoublePressMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/log">Log</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
