package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tbxark/lifeprompt/config"
	"github.com/tbxark/lifeprompt/submit"
)

func main() {
	confPath := flag.String("config", "", "path to JSON config file")
	serverURL := flag.String("server", "", "server base url, overrides LIFEPROMPT_SERVER_URL")
	timeout := flag.Duration("timeout", 0, "per request timeout, 0 waits for the server")
	flag.Parse()
	conf, err := config.Load(*confPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *serverURL != "" {
		conf.ServerURL = *serverURL
	}
	if err := startApp(context.Background(), conf, *timeout, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, conf *config.Config, timeout time.Duration, in io.Reader, out io.Writer) error {
	slog.SetLogLoggerLevel(conf.SlogLevel())
	form := submit.NewFieldSet()
	area := &stdoutArea{w: out}
	button := &spinnerButton{w: out}
	handler, err := submit.NewHandler(conf.ServerURL, form, button, area, submit.WithTimeout(timeout))
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	fmt.Fprintln(out, "Ask about any word (Ctrl-D to quit):")
	for {
		fmt.Fprint(out, "> ")
		line, rErr := reader.ReadString('\n')
		if rErr != nil && (!errors.Is(rErr, io.EOF) || line == "") {
			return nil
		}
		form.Set(submit.UserInputField, strings.TrimSpace(line))
		if err := handler.HandleSubmit(ctx, nil); err != nil {
			slog.Debug("Submission failed", "error", err)
		}
		if rErr != nil {
			return nil
		}
	}
}

type stdoutArea struct {
	mu sync.Mutex
	w  io.Writer
}

func (a *stdoutArea) SetTextContent(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.w, "\n%s\n======\n", text)
}

type spinnerButton struct {
	mu sync.Mutex
	w  io.Writer
}

func (b *spinnerButton) AddClass(name string) {
	if name != submit.LoadingClass {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprint(b.w, "…")
}

func (b *spinnerButton) RemoveClass(name string) {
	if name != submit.LoadingClass {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprint(b.w, "\r\033[K")
}
