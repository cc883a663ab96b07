package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/xbee.go/pkg/bridge"
	"github.com/robotalks/xbee.go/pkg/bridge/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/xbee/"
)

func init() {
	if val := os.Getenv("XBEE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub(mqtt.RxTopicPrefix+"#", func(topic string, payload []byte) {
		var msg bridge.Received
		if err := msg.Unmarshal(payload); err != nil {
			log.Printf("%s: bad envelope: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, &msg)
	})
	q.Sub(mqtt.TxTopic, func(topic string, payload []byte) {
		var req bridge.TransmitRequest
		if err := req.Unmarshal(payload); err != nil {
			log.Printf("%s: bad envelope: %v", topic, err)
			return
		}
		log.Printf("%s: to %s [% X]", topic, req.Dest, req.Data)
	})
	<-(chan struct{})(nil)
}
