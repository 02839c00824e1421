package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/tbxark/lifeprompt/assistant"
	"github.com/tbxark/lifeprompt/config"
	"github.com/tbxark/lifeprompt/life"
	"github.com/tbxark/lifeprompt/web"
)

func main() {
	confPath := flag.String("config", "", "path to JSON config file")
	addr := flag.String("addr", "", "listen address, overrides LIFEPROMPT_ADDR")
	flag.Parse()
	conf, err := config.Load(*confPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		conf.Addr = *addr
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := startServer(ctx, conf); err != nil {
		log.Fatalf("start server: %v", err)
	}
}

func startServer(ctx context.Context, conf *config.Config) error {
	slog.SetLogLoggerLevel(conf.SlogLevel())
	handler, err := newHandler(ctx, conf)
	if err != nil {
		return err
	}
	srv, err := web.NewServer(web.Config{Addr: conf.Addr}, handler)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

func newHandler(ctx context.Context, conf *config.Config) (*web.Handler, error) {
	scorer := life.NewScorer(life.WithGenerations(conf.Generations))
	responder, err := newResponder(ctx, conf, scorer)
	if err != nil {
		return nil, err
	}
	agent := assistant.NewAgent("LifePrompt", "Answers questions about words in Conway's game of life", responder)
	return web.NewHandler(assistant.NewRunnerResponder(ctx, agent), ""), nil
}

func newResponder(ctx context.Context, conf *config.Config, scorer *life.Scorer) (assistant.Responder, error) {
	local := assistant.NewLocalResponder(scorer)
	if conf.Responder == "local" {
		return local, nil
	}
	if !conf.HasModel() {
		slog.Warn("No API key configured, answering without a chat model")
		return local, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	var responder assistant.Responder
	switch conf.Responder {
	case "extract":
		responder, err = assistant.NewExtractingResponder(cm, scorer)
	case "tools", "":
		responder, err = assistant.NewToolBasedResponder(ctx, cm, scorer)
	default:
		return nil, fmt.Errorf("unknown responder %q", conf.Responder)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Using chat model", "config", conf.String(), "responder", conf.Responder, "local_fallback", conf.LocalFallback)
	if conf.LocalFallback {
		return assistant.NewFailbackResponder(responder, local), nil
	}
	return responder, nil
}
