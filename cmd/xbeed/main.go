package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/xbee.go/pkg/bridge"
	"github.com/robotalks/xbee.go/pkg/bridge/mqtt"
	"github.com/robotalks/xbee.go/pkg/bridge/websocket"
	"github.com/robotalks/xbee.go/pkg/env"
	fx "github.com/robotalks/xbee.go/pkg/framework"
	"github.com/robotalks/xbee.go/pkg/metrics"
	"github.com/robotalks/xbee.go/pkg/uart"
	"github.com/robotalks/xbee.go/pkg/xbee"
)

func init() {
	env.SetupFlags()
}

func serveHTTP(addr string, handler http.Handler) fx.Runnable {
	srv := &http.Server{Addr: addr, Handler: handler}
	return fx.NamedRun("http", fx.RunFunc(func(ctx context.Context) error {
		glog.Infof("serving http on %s", addr)
		return fx.RunWithContextCancel(ctx, func() {
			srv.Shutdown(context.Background())
		}, srv.ListenAndServe)
	}))
}

func main() {
	flag.Parse()
	conf := env.NewConfig()

	port, err := uart.Open(&conf.Serial)
	if err != nil {
		log.Fatalln(err)
	}

	reg := metrics.NewRegistry()
	link := xbee.NewLink(port, xbee.WithEventHandler(metrics.NewLinkMetrics(reg)))
	link.Init()
	metrics.RegisterLinkStats(reg, link)

	hub := bridge.NewHub(link)
	metrics.RegisterPeers(reg, "hub", hub.Len)
	dispatcher := bridge.NewDispatcher(link).Add(hub)
	dispatcher.Timeout = conf.RxTimeout

	runner := fx.NewRunner().HandleSignals()
	runner.Go(port.Pump(link.RxHandler()), dispatcher)

	if conf.MQTTBrokerURL != "" {
		b, err := mqtt.NewBridgeFromURL(conf.MQTTBrokerURL, "xbee-"+conf.NodeID, link)
		if err != nil {
			log.Fatalln(err)
		}
		dispatcher.Add(b)
		runner.Go(b)
	}
	if conf.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", websocket.Handler(hub))
		mux.Handle("/metrics", metrics.Handler(reg))
		runner.Go(serveHTTP(conf.HTTPAddr, mux))
	}
	if conf.TCPAddr != "" {
		ln, err := net.Listen("tcp", conf.TCPAddr)
		if err != nil {
			log.Fatalln(err)
		}
		glog.Infof("serving envelope streams on %s", ln.Addr())
		runner.Go(fx.NamedRun("tcp", fx.RunFunc(func(ctx context.Context) error {
			return hub.ServeListener(ctx, ln)
		})))
	}

	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
