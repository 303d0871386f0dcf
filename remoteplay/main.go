package main

import (
	"flag"
	"log"
	"time"

	"github.com/jauhararifin/blockfall/keymap"
)

func main() {
	isServer := flag.Bool("server", false, "run server")
	addr := flag.String("addr", ":8123", "address the server listens on")
	gravity := flag.Duration("gravity", 750*time.Millisecond, "server side interval between move-down commands, 0 disables")
	host := flag.String("host", "localhost:8123", "host")
	name := flag.String("name", "player", "name shown to the server")
	keymapPath := flag.String("keymap", "", "yaml file with key bindings")
	strict := flag.Bool("strict", false, "check collisions on move-up and rotate")
	flag.Parse()

	if *isServer {
		if err := startServer(*addr, *gravity); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
		return
	}

	km, err := keymap.Load(*keymapPath)
	if err != nil {
		log.Fatalf("cannot load keymap: %v", err)
	}
	if err := startClient(*host, *name, km, *strict); err != nil {
		log.Fatalf("client stopped: %v", err)
	}
}
