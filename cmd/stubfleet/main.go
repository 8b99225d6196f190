package main

import (
	"flag"
	"log"
	"net/http"

	"go.uber.org/zap"

	"servicemon/internal/stubfleet"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8089", "listen address")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	srv := stubfleet.NewServer(logger)
	logger.Info("stubfleet_listen", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		log.Fatal(err)
	}
}
