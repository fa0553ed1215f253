package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/NewLearnStream/dr16/pkg/cli/sh"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
	"github.com/NewLearnStream/dr16/pkg/receiver"
)

func init() {
	receiver.SetupFlags()
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
	runner := fx.NewRunner().Go(rcv.Runnables()...)
	sh.New(rcv.Device).Run(flag.Args()...)
	runner.Stop()
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
