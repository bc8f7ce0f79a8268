package server

import (
	"context"
	"fmt"
	"io"

	"sensor-dashboard/src/models"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Dashboard page
// -----------------------------------------------------------------------------

// chartOrder fixes the page layout: temperature on top, CO2 below.
var chartOrder = []string{models.ChannelTemperature, models.ChannelCO2}

func (s *DashboardServer) getPage(c *gin.Context) {
	templ.Handler(s.page()).ServeHTTP(c.Writer, c.Request)
}

// page renders the selector, the two chart panels and the websocket script.
func (s *DashboardServer) page() templ.Component {
	intervals := s.Controller.ListIntervals()
	selected := s.Controller.Selected().Name
	frames := s.Controller.Frames()

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		fmt.Fprintf(w, "<h1>%s</h1>\n", templ.EscapeString(s.Config.Name))
		io.WriteString(w, `<label for="interval">Interval</label> <select id="interval">`)
		for _, in := range intervals {
			attr := ""
			if in.Name == selected {
				attr = " selected"
			}
			fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
				templ.EscapeString(in.Name), attr, templ.EscapeString(in.Label))
		}
		io.WriteString(w, "</select>\n")

		for _, name := range chartOrder {
			chart, ok := s.Charts[name]
			if !ok {
				continue
			}
			frame := frames[name]
			heading := frame.Heading
			if heading == "" {
				heading = chart.Channel.Label
			}
			ch := templ.EscapeString(name)
			fmt.Fprintf(w, `<section class="chart">
<h2 id="heading-%[1]s">%[2]s</h2>
<img id="chart-%[1]s" src="/charts/%[1]s/svg?v=%[3]d" width="%[4]d" height="%[5]d" alt="%[2]s">
<p><a href="/charts/%[1]s/interactive" target="_blank">interactive</a></p>
<ul class="tooltip" id="tooltip-%[1]s"></ul>
</section>
`, ch, templ.EscapeString(heading), frame.Version, chart.Width, chart.Height)
		}

		_, err := io.WriteString(w, pageScript)
		return err
	})
}

// -----------------------------------------------------------------------------

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sensor Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2em; }
section.chart { margin-top: 1.5em; }
ul.tooltip { list-style: none; padding: 0; font-size: 0.9em; color: #444; }
ul.tooltip li { display: inline; margin-right: 1em; }
</style>
</head>
<body>
`

const pageScript = `<script>
(function () {
  var select = document.getElementById("interval");
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");

  function show(frame) {
    var heading = document.getElementById("heading-" + frame.channel);
    var img = document.getElementById("chart-" + frame.channel);
    var tip = document.getElementById("tooltip-" + frame.channel);
    if (!img) { return; }
    heading.textContent = frame.heading;
    img.src = "/charts/" + frame.channel + "/svg?v=" + frame.version;
    tip.innerHTML = "";
    var candles = frame.candles || [];
    if (candles.length === 0) { return; }
    var last = candles[candles.length - 1];
    var head = document.createElement("li");
    head.textContent = last.timestamp;
    tip.appendChild(head);
    last.tooltip.forEach(function (l) {
      var li = document.createElement("li");
      li.textContent = l.name + ": " + l.value;
      li.style.color = last.color;
      tip.appendChild(li);
    });
  }

  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "ERROR") { console.warn(msg.error); return; }
    if (!msg.frames) { return; }
    if (msg.interval) { select.value = msg.interval; }
    Object.keys(msg.frames).forEach(function (k) { show(msg.frames[k]); });
  };

  select.onchange = function () {
    ws.send(JSON.stringify({ command: "select_interval", interval: select.value }));
  };
})();
</script>
</body>
</html>
`
