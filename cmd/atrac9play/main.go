// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command atrac9play reads a RIFF/AT9 container, decodes its ATRAC9
// stream and either plays it live (via oto) or writes a WAV file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	atrac9 "github.com/RPCSX/LibAtrac9"
	"github.com/RPCSX/LibAtrac9/cmd/atrac9play/at9container"
)

var (
	logPath = flag.String("log", "", "rotate diagnostic logs to this file instead of stderr")
	wavOut  = flag.String("wav", "", "write decoded PCM to this WAV file instead of playing it live")
)

func newLogger() *zap.Logger {
	if *logPath == "" {
		l, _ := zap.NewDevelopment()
		return l
	}
	ws := zapcore.AddSync(&lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), ws, zap.InfoLevel)
	return zap.New(core)
}

func run() error {
	flag.Parse()
	fp := "sample.at9"
	if flag.NArg() > 0 {
		fp = flag.Arg(0)
	}

	log := newLogger()
	defer log.Sync()

	f, err := os.Open(fp)
	if err != nil {
		return errors.Wrap(err, "atrac9play: open input")
	}
	defer f.Close()

	container, err := at9container.Parse(f)
	if err != nil {
		return errors.Wrap(err, "atrac9play: parse container")
	}

	dec, err := atrac9.NewDecoder(container.ConfigData, atrac9.WithLogger(log))
	if err != nil {
		return errors.Wrap(err, "atrac9play: new decoder")
	}
	log.Info("decoder ready",
		zap.Int("sampleRate", dec.SampleRate()),
		zap.Int("channelCount", dec.ChannelCount()),
		zap.Int("frameCount", len(container.Frames)),
	)

	if *wavOut != "" {
		return writeWav(dec, container, *wavOut)
	}
	return playLive(dec, container)
}

func decodeAll(dec *atrac9.Decoder, container *at9container.Container) ([]float64, error) {
	var pcm []float64
	for i, raw := range container.Frames {
		frame, _, err := dec.DecodeFrame(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "atrac9play: decode frame %d", i)
		}
		pcm = append(pcm, frame...)
	}
	return pcm, nil
}

func playLive(dec *atrac9.Decoder, container *at9container.Container) error {
	pcm, err := decodeAll(dec, container)
	if err != nil {
		return err
	}
	samples := atrac9.ToS16(pcm)

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[2*i] = byte(s)
		buf[2*i+1] = byte(s >> 8)
	}

	c, ready, err := oto.NewContext(dec.SampleRate(), dec.ChannelCount(), 2)
	if err != nil {
		return errors.Wrap(err, "atrac9play: new audio context")
	}
	<-ready

	p := c.NewPlayer(newByteReader(buf))
	defer p.Close()
	p.Play()

	fmt.Printf("Duration: %v\n", time.Duration(len(samples)/dec.ChannelCount())*time.Second/time.Duration(dec.SampleRate()))
	for p.IsPlaying() {
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
