package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"

	"github.com/NewLearnStream/dr16/pkg/dr16/msgs"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
	"github.com/NewLearnStream/dr16/pkg/publish"
	"github.com/NewLearnStream/dr16/pkg/publish/mqtt"
	"github.com/NewLearnStream/dr16/pkg/publish/stream"
	"github.com/NewLearnStream/dr16/pkg/publish/websocket"
)

var (
	wsURL      string
	fromStdin  bool
	listOnly   bool
	outputJSON bool
	topic      = "+/+/" + mqtt.StateTopic
)

func init() {
	mqtt.SetupFlags()
	flag.StringVar(&wsURL, "ws", wsURL, "Websocket URL of dr16d, e.g. ws://host:8016/.")
	flag.BoolVar(&fromStdin, "stdin", fromStdin, "Read length-prefixed packets from stdin.")
	flag.BoolVar(&listOnly, "list", listOnly, "List receivers announced on MQTT.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print messages in JSON.")
	flag.StringVar(&topic, "topic", topic, "MQTT topic to subscribe.")
}

func printMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	serializable := msg.(msgs.SerializableMessage).Serializable()
	if outputJSON {
		out, err := json.Marshal(serializable)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	log.Printf("#%d [%s] %s", typed.Sequence,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		serializable.String())
	return nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	runner := fx.NewRunner().HandleSignals()
	handler := publish.HandleTypedMsgFunc(printMsg)
	switch {
	case wsURL != "":
		rw, err := websocket.Dial(wsURL, "http://localhost/")
		if err != nil {
			log.Fatalln(err)
		}
		runner.Go(publish.NewSubscriber(rw, handler))
	case fromStdin:
		runner.Go(publish.NewSubscriber(stream.New(os.Stdin), handler))
	default:
		q, err := mqtt.NewQueueFromURL(mqtt.NewConfig().BrokerURL)
		if err != nil {
			log.Fatalln(err)
		}
		if token := q.Connect(); token.Wait() && token.Error() != nil {
			log.Fatalln(token.Error())
		}
		defer q.Close()
		if listOnly {
			infos, err := mqtt.Discover(runner.Context, q, mqtt.DefaultDiscoverTimeout)
			if err != nil {
				log.Fatalln(err)
			}
			for _, info := range infos {
				fmt.Printf("%s/%s port=%s %s\n", info.Name, info.ID, info.Meta.Port, info.Meta.Description)
			}
			return
		}
		reader := mqtt.NewReader(q, topic)
		runner.Go(reader, publish.NewSubscriber(reader, handler))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
