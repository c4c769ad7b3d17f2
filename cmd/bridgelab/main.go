// Command bridgelab drives the full bridge stack against the simulated
// runtime: it loads a script that registers callbacks through the native
// API table, then pushes commands and transport events across the bridge
// and prints what the script side receives.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/logging"
	"github.com/medialink/cef-bridge/mediasession"
	"github.com/medialink/cef-bridge/plugin"
	"github.com/medialink/cef-bridge/relay"
	"github.com/medialink/cef-bridge/simcef"
)

// defaultScript is what runs when no -script file is given: it registers
// both callbacks and enables the session, echoing everything it receives.
const defaultScript = `
medialink.initialize()
medialink.register_event_callback(function(payload)
	print("[event] " .. payload)
end)
medialink.register_logger(function(entry)
	print("[log] " .. entry)
end)
print("[script] enable: " .. medialink.dispatch('{"type":"Enable"}'))
`

func main() {
	var (
		scriptFile  = flag.String("script", "", "Lua script to load instead of the built-in one")
		interactive = flag.Bool("i", false, "Interactive TUI mode")
		timeout     = flag.Duration("timeout", 30*time.Second, "Watchdog for the scripted run")
	)
	flag.Parse()

	script := defaultScript
	if *scriptFile != "" {
		data, err := os.ReadFile(*scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading script: %v\n", err)
			os.Exit(1)
		}
		script = string(data)
	}

	if *interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Interactive mode needs a terminal")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(script); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runScripted(script, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// lab is one booted bridge stack.
type lab struct {
	rt      *simcef.Runtime
	ctx     *simcef.Context
	session *mediasession.Session
	host    *plugin.Host
}

// boot wires the runtime, the session and the native API table, then
// runs the script. out receives script print output; nil discards it
// until SetOutput redirects it.
func boot(script string, out io.Writer) (*lab, error) {
	cfg, err := logging.FromEnv()
	if err != nil {
		return nil, err
	}
	logs := relay.NewRegistry("logger", nil)
	core := logging.NewRelayCore(logs, 0)
	logger, err := logging.Init(cfg, core)
	if err != nil {
		return nil, err
	}

	rt := simcef.New()
	rt.Install()
	rt.SetOutput(out)

	session := mediasession.NewSession(logger)
	host := plugin.NewHost(session, logs, core, logger)
	ctx := rt.NewContext("bridgelab")

	err = host.RegisterAll(plugin.ProcessRenderer, func(api plugin.API) error {
		ctx.Bind(api.Name, api.Invoke)
		return nil
	})
	if err != nil {
		ctx.Release()
		rt.Shutdown()
		capi.Reset()
		return nil, err
	}

	if _, err := rt.Eval(ctx, script); err != nil {
		ctx.Release()
		rt.Shutdown()
		capi.Reset()
		return nil, fmt.Errorf("script failed: %w", err)
	}

	return &lab{rt: rt, ctx: ctx, session: session, host: host}, nil
}

// close tears the stack down and reports leaks.
func (l *lab) close() (objects, strings int64) {
	l.session.Reset()
	for _, api := range l.host.APIs() {
		if api.Name == plugin.APIShutdown {
			api.Fn(nil)
		}
	}
	l.ctx.Release()
	l.rt.Shutdown()
	capi.Reset()
	return l.rt.LiveObjects(), l.rt.LiveStrings()
}

// dispatch routes a command document through the script side, so the
// result travels the same path the real frontend sees.
func (l *lab) dispatch(command string) {
	l.rt.MustEval(l.ctx, fmt.Sprintf("print('[result] ' .. medialink.dispatch(%q))", command))
}

func runScripted(script string, timeout time.Duration) error {
	watchdog := time.AfterFunc(timeout, func() {
		fmt.Fprintln(os.Stderr, "bridgelab: watchdog timeout")
		os.Exit(1)
	})
	defer watchdog.Stop()

	l, err := boot(script, os.Stdout)
	if err != nil {
		return err
	}

	commands := []string{
		`{"type":"Metadata","payload":{"title":"Digital Love","artist":"Daft Punk","album":"Discovery","coverUrl":"https://img/discovery.jpg","trackId":1042}}`,
		`{"type":"PlayState","payload":{"status":"Playing"}}`,
		`{"type":"Timeline","payload":{"currentTime":42.5,"totalTime":301}}`,
		`{"type":"PlayMode","payload":{"isShuffling":true,"repeatMode":"List"}}`,
	}
	for _, cmd := range commands {
		l.dispatch(cmd)
	}
	fmt.Printf("session: %s\n", l.session.Snapshot())

	events := []func() error{
		l.session.Play,
		l.session.NextTrack,
		l.session.ToggleShuffle,
		func() error { return l.session.Seek(95000) },
		l.session.Pause,
	}
	for _, emit := range events {
		if err := emit(); err != nil {
			return err
		}
	}
	l.rt.Barrier()

	objects, strs := l.close()
	fmt.Printf("leaks: objects=%d strings=%d\n", objects, strs)
	return nil
}

func runInteractive(script string) error {
	l, err := boot(script, nil)
	if err != nil {
		return err
	}
	m := newLabModel(l)
	l.rt.SetOutput(m.writer())

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	l.close()
	return err
}
