package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	log.SetFlags(0)

	args, err := getArgs(os.Args)
	if err != nil {
		log.Fatal(err)
	}

	config, err := newServerConfig(args)
	if err != nil {
		log.Fatal(err)
	}

	server := NewServer(config)
	reactor := NewReactor(server)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Printf("received %s, shutting down", sig)
		server.requestShutdown()
	}()

	if err := reactor.Run(); err != nil {
		log.Fatal(err)
	}

	log.Printf("server shutdown cleanly")
}
