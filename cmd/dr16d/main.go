package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/NewLearnStream/dr16/pkg/dr16"
	"github.com/NewLearnStream/dr16/pkg/dr16/msgs"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
	"github.com/NewLearnStream/dr16/pkg/publish"
	"github.com/NewLearnStream/dr16/pkg/publish/mqtt"
	"github.com/NewLearnStream/dr16/pkg/publish/stream"
	"github.com/NewLearnStream/dr16/pkg/publish/websocket"
	"github.com/NewLearnStream/dr16/pkg/receiver"
)

var (
	wsAddr        string
	toStdout      bool
	onlyChanges   bool
	interval      time.Duration
	statsInterval = 5 * time.Second
)

func init() {
	receiver.SetupFlags()
	mqtt.SetupFlags()
	flag.StringVar(&wsAddr, "ws", wsAddr, "Listen address of the websocket server, e.g. :8016.")
	flag.BoolVar(&toStdout, "stdout", toStdout, "Write length-prefixed packets to stdout.")
	flag.BoolVar(&onlyChanges, "only-changes", onlyChanges, "Skip frames identical to the last published one.")
	flag.DurationVar(&interval, "interval", interval, "Minimum interval between published frames.")
	flag.DurationVar(&statsInterval, "stats", statsInterval, "Interval of publishing receiver stats, 0 to disable.")
}

func statsLoop(device *dr16.Device, pub *publish.Publisher) fx.Runnable {
	return fx.NamedRun("stats", fx.RunFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			if err := pub.PublishMsg(msgs.NewReceiverStats(device.Stats())); err != nil {
				log.Printf("publish stats error: %v", err)
			}
		}
	}))
}

func main() {
	flag.Parse()
	if err := receiver.LoadConfigFile(); err != nil {
		log.Fatalln(err)
	}

	rcv, err := receiver.NewConfig().Open()
	if err != nil {
		log.Fatalln(err)
	}
	runner := fx.NewRunner().HandleSignals()

	var states, stats publish.WriterMux
	if mqttConf := mqtt.NewConfig(); mqttConf.BrokerURL != "" {
		reg, err := mqttConf.NewRegistrar(mqtt.ReceiverMeta{
			Description: "DR16 receiver",
			Port:        rcv.Port,
			BaudRate:    rcv.BaudRate,
		})
		if err != nil {
			log.Fatalln(err)
		}
		states.Add(reg.StateWriter())
		stats.Add(reg.StatsWriter())
		runner.Go(reg)
		log.Printf("publishing to %s%s", mqttConf.BrokerURL, reg.Info.Topic(mqtt.StateTopic))
	}
	if wsAddr != "" {
		srv := websocket.NewServer()
		states.Add(srv)
		httpSrv := &http.Server{Addr: wsAddr, Handler: srv}
		runner.Go(fx.NamedRun("websocket", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, httpSrv, httpSrv.ListenAndServe)
		})))
		log.Printf("websocket listening on %s", wsAddr)
	}
	if toStdout {
		states.Add(stream.NewWriter(os.Stdout))
	}

	pub := publish.NewPublisher(&states)
	pub.OnlyChanges, pub.Interval = onlyChanges, interval
	rcv.Device.Handler = pub
	if statsInterval > 0 && len(stats.Writers) > 0 {
		runner.Go(statsLoop(rcv.Device, publish.NewPublisher(&stats)))
	}
	runner.Go(rcv.Runnables()...)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
