package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PhantomInTheWire/image-toolbox/pkg/config"
	"github.com/PhantomInTheWire/image-toolbox/pkg/logger"
	"github.com/PhantomInTheWire/image-toolbox/pkg/server"
	"github.com/gin-gonic/gin"
)

var log = logger.New("[main]")

func main() {
	path := flag.String("config", "", "TOML config file")
	flag.Parse()

	conf, err := config.Load(*path)
	if err != nil {
		log.Fatalln("get config:", err)
	}

	if os.Getenv(logger.VerboseEnv) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    conf.Server.Addr,
		Handler: server.New(conf).Handler(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalln("listen:", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	log.Println("started on", conf.Server.Addr, "editor at", conf.Server.WSPath)
	sig := <-sigs
	log.Println("exiting with", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("shutdown:", err)
	}
}
