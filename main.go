package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
)

func processError(err error) {
	fmt.Println(err.Error())
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] [browse|serve]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	configFile := flag.String("config", defaultConfigFile, "JSON configuration file")
	flag.Usage = usage
	flag.Parse()

	mode := "browse"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}

	cfg := defaultConfig()
	if err := loadConfig(*configFile, &cfg); err != nil {
		processError(err)
	}
	if cfg.Pixabay.Key == "" {
		processError(fmt.Errorf("no Pixabay key: set pixabay.com.key in %s or PIXABAY_KEY", *configFile))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch mode {
	case "browse":
		if err := browse(ctx, &cfg); err != nil {
			processError(err)
		}
	case "serve":
		if err := serve(ctx, &cfg); err != nil {
			processError(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func browse(ctx context.Context, cfg *Config) error {
	// The terminal belongs to the UI from here on.
	logOutput = io.Discard
	if cfg.Browse.LogFile != "" {
		f, err := os.OpenFile(cfg.Browse.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOutput = f
	}
	logger := newLogger("(browse) ")

	api, err := NewPixabayApi(cfg, NewHttpClient(cfg), nil)
	if err != nil {
		return err
	}
	pager := NewPager(api, cfg.Pixabay.Key, cfg.Browse.Placeholders)
	return runBrowser(ctx, pager, func(hit *Hit) {
		logger.Println("Selected", hit.Id, hit.LargeImageUrl)
	})
}

func serve(ctx context.Context, cfg *Config) error {
	client := NewHttpClient(cfg)
	api, err := NewPixabayApi(cfg, client, NewReqCache(cfg, client))
	if err != nil {
		return err
	}
	logger := newLogger("(main) ")
	srv := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: NewServer(cfg, api, api.PageSize()).Handler(),
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	logger.Println("Starting", api.Type(), "proxy on", cfg.Server.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
