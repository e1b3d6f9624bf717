/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command evloopd is a cobra/viper CLI wrapping httpserver.Server: flags
// or a config file set the resource bounds, a static root can be
// published under a URI stem, and a small set of example handlers
// exercise the registry end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sabouaram/evloop/channel"
	"github.com/sabouaram/evloop/handler"
	"github.com/sabouaram/evloop/httpserver"
	"github.com/sabouaram/evloop/httpserver/static"
	"github.com/sabouaram/evloop/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "evloopd",
		Short: "A single-threaded event-loop HTTP/SSE server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfgFile)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "127.0.0.1:8080", "address to bind the listening socket")
	flags.Int("max-request-size", 1<<20, "content-size ceiling before a connection is too_big")
	flags.Duration("max-request-age", 30*time.Second, "wall-clock age ceiling before a connection is too_old")
	flags.Int("max-buffer-tries", 1000, "read-attempt ceiling before a connection is too_needy")
	flags.Duration("max-session-idle", 30*time.Minute, "idle ceiling before a session expires")
	flags.Uint32("clean-sessions-every", 1000, "session-table sweep interval, in New() calls")
	flags.StringToString("static", nil, "stem=path pairs to publish as static file trees")
	flags.StringVar(&cfgFile, "config", "", "optional YAML/JSON/TOML config file; flags override its values")

	return cmd
}

func run(cmd *cobra.Command, cfgFile string) error {
	v := viper.New()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("evloopd: reading config %s: %w", cfgFile, err)
		}
	}

	log := logger.New("evloopd")
	reg := handler.NewRegistry(log)
	registerExampleHandlers(reg)

	if err := registerStaticStems(reg, v.GetStringMapString("static")); err != nil {
		return err
	}

	srv, err := httpserver.New(httpserver.Config{
		Listen:             v.GetString("listen"),
		MaxRequestSize:     v.GetInt("max-request-size"),
		MaxRequestAge:      v.GetDuration("max-request-age"),
		MaxBufferTries:     v.GetInt("max-buffer-tries"),
		MaxSessionIdle:     v.GetDuration("max-session-idle"),
		CleanSessionsEvery: v.GetUint32("clean-sessions-every"),
		Registry:           reg,
		Channels:           channel.NewManager(),
		Logger:             log,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}
	log.Logf(logger.InfoLevel, "evloopd: listening on %s", srv.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return srv.Shutdown()
}

// bindFlags mirrors every declared flag into v under the same name, so
// viper.Get* sees the flag default unless a config file or the flag
// itself overrides it.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	var firstErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if firstErr != nil {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			firstErr = err
		}
	})
	return firstErr
}

// eventsChannel is the single SSE room the events/broadcast example pair
// publishes and subscribes against.
const eventsChannel = "events"

// registerExampleHandlers installs the handlers used to smoke-test a
// fresh deployment: a root greeting, an add-user endpoint that mints a
// fresh UUID per call, an events stream that subscribes its socket to
// eventsChannel, and a broadcast endpoint that publishes into it.
func registerExampleHandlers(reg *handler.Registry) {
	reg.Register(handler.Closing(handler.URIFor("root"), "text/plain", nil,
		func(env *handler.Env) (interface{}, error) {
			return "evloopd is listening", nil
		}))

	reg.Register(handler.JSON(handler.URIFor("add-user"),
		[]handler.ParamSpec{{Name: "name", Type: "string"}},
		func(env *handler.Env) (interface{}, error) {
			name, _ := env.Bound["name"].(string)
			return map[string]string{
				"id":   uuid.New().String(),
				"name": strings.TrimSpace(name),
			}, nil
		}))

	reg.Register(handler.Stream(handler.URIFor("events"), nil,
		func(env *handler.Env) (interface{}, error) {
			env.Subscribe(eventsChannel)
			return "connected", nil
		}))

	reg.Register(handler.Closing(handler.URIFor("broadcast"), "text/plain",
		[]handler.ParamSpec{{Name: "message", Type: "string"}},
		func(env *handler.Env) (interface{}, error) {
			message, _ := env.Bound["message"].(string)
			if err := env.Publish(eventsChannel, message); err != nil {
				return nil, err
			}
			return "sent", nil
		}))
}

func registerStaticStems(reg *handler.Registry, stems map[string]string) error {
	for stem, root := range stems {
		if err := static.Register(reg, root, stem, static.DefaultPathSecurity()); err != nil {
			return fmt.Errorf("evloopd: static stem %s -> %s: %w", stem, root, err)
		}
	}
	return nil
}
