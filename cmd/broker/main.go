package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	mqttv2 "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
)

// Standalone broker for sites without an existing MQTT installation. The
// inline subscription mirrors controller traffic to the broker log.
func main() {
	address := flag.String("address", ":1883", "tcp listen address")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := mqttv2.New(&mqttv2.Options{
		InlineClient: true,
	})

	// Allow all connections.
	_ = server.AddHook(new(auth.AllowHook), nil)

	tcp := listeners.NewTCP(listeners.Config{ID: "t1", Address: *address})
	err := server.AddListener(tcp)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		err := server.Serve()
		if err != nil {
			log.Fatal(err)
		}
	}()

	err = server.Subscribe("nordfrost/#", 1, func(cl *mqttv2.Client, sub packets.Subscription, pk packets.Packet) {
		server.Log.Info("controller traffic", "client", cl.ID, "topic", pk.TopicName, "payload", string(pk.Payload))
	})
	if err != nil {
		log.Fatal(err)
	}

	<-ctx.Done()
	server.Close()
}
