package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/xbee.go/pkg/bridge"
	"github.com/robotalks/xbee.go/pkg/cli"
	"github.com/robotalks/xbee.go/pkg/env"
	fx "github.com/robotalks/xbee.go/pkg/framework"
	"github.com/robotalks/xbee.go/pkg/uart"
	"github.com/robotalks/xbee.go/pkg/xbee"
)

func init() {
	env.SetupFlags()
	cli.SetupFlags()
}

func main() {
	flag.Parse()
	conf := env.NewConfig()

	port, err := uart.Open(&conf.Serial)
	if err != nil {
		log.Fatalln(err)
	}
	link := xbee.NewLink(port)
	link.Init()

	sh := cli.NewInteractive(link)
	dispatcher := bridge.NewDispatcher(link).Add(sh)
	dispatcher.Timeout = conf.RxTimeout

	runner := fx.NewRunner()
	runner.Go(port.Pump(link.RxHandler()), dispatcher)
	sh.Run(flag.Args()...)

	runner.Stop()
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
