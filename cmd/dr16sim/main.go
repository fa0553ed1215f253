package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"io"
	"log"
	"os"

	fx "github.com/NewLearnStream/dr16/pkg/framework"
	"github.com/NewLearnStream/dr16/pkg/link/serial"
	"github.com/NewLearnStream/dr16/pkg/sim"
)

var (
	toStdout bool
	count    int
	gen      = sim.NewGenerator()
)

func init() {
	serial.SetupFlags()
	flag.BoolVar(&toStdout, "stdout", toStdout, "Write frames to stdout instead of the serial port.")
	flag.IntVar(&count, "count", count, "Number of frames, 0 for unlimited.")
	flag.DurationVar(&gen.Period, "period", gen.Period, "Frame period.")
	flag.Float64Var(&gen.Amplitude, "amplitude", gen.Amplitude, "Stick amplitude.")
}

func main() {
	flag.Parse()

	var w io.Writer = os.Stdout
	if !toStdout {
		port, name, err := serial.NewConfig().OpenPort()
		if err != nil {
			log.Fatalln(err)
		}
		defer port.Close()
		log.Printf("writing frames to %s", name)
		w = port
	}
	streamer := &sim.Streamer{Writer: w, Generator: gen, Count: count}
	if err := fx.NewRunner().HandleSignals().Go(streamer).Wait(); err != nil {
		log.Fatalln(err)
	}
}
